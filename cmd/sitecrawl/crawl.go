package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/nao1215/sitecrawl/internal/config"
	"github.com/nao1215/sitecrawl/internal/crawler"
	"github.com/nao1215/sitecrawl/internal/database"
	"github.com/nao1215/sitecrawl/internal/log"
	"github.com/nao1215/sitecrawl/internal/model"
	"github.com/nao1215/sitecrawl/internal/pipeline"
	"github.com/nao1215/sitecrawl/internal/report"
	"github.com/nao1215/sitecrawl/internal/socks"
	"github.com/nao1215/sitecrawl/internal/urlfilter"
)

// runCrawlCmd executes a crawl for the seed URL in args.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	logger := log.NewLogger(cmd.ErrOrStderr(), level)
	if cfg.LogFormat == config.LogFormatJSON {
		logger = log.NewJSONLogger(cmd.ErrOrStderr(), level)
	}

	return runCrawl(cmd.Context(), cfg, logger, cmd.OutOrStdout())
}

// buildConfig creates a Config from the config file and command flags.
// File settings for the seed's host are applied first; flags that were set
// explicitly override them, and keyword flags are appended.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	if len(args) > 0 {
		cfg.SeedURL = args[0]
	}

	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case explicitConfigPath:
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	if u, err := url.Parse(cfg.SeedURL); err == nil {
		cfg.ApplySiteConfig(cfg.SiteConfigs.GetSiteConfig(u.Hostname()))
	}

	if flags.Changed("output") {
		output, err := flags.GetString("output")
		if err != nil {
			return nil, err
		}
		cfg.OutputFormat = model.OutputFormat(output)
	}

	negativeCrawl, err := flags.GetStringArray("negative-crawl")
	if err != nil {
		return nil, err
	}
	cfg.NegativeCrawl = append(cfg.NegativeCrawl, negativeCrawl...)

	negativeSave, err := flags.GetStringArray("negative-save")
	if err != nil {
		return nil, err
	}
	cfg.NegativeSave = append(cfg.NegativeSave, negativeSave...)

	cfg.LogLevel, err = flags.GetString("log-level")
	if err != nil {
		return nil, err
	}
	cfg.LogFormat, err = flags.GetString("log-format")
	if err != nil {
		return nil, err
	}
	cfg.Language, err = flags.GetString("lang")
	if err != nil {
		return nil, err
	}

	if flags.Changed("dir") {
		if cfg.OutputDir, err = flags.GetString("dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("render") {
		if cfg.Render, err = flags.GetBool("render"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.PageTimeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("checkpoint-every") {
		if cfg.CheckpointEvery, err = flags.GetInt("checkpoint-every"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.Proxy, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("tor") {
		if cfg.Tor, err = flags.GetBool("tor"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("tor-timeout") {
		if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("chrome-path") {
		if cfg.ChromePath, err = flags.GetString("chrome-path"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("follow-external") {
		if cfg.FollowExternal, err = flags.GetBool("follow-external"); err != nil {
			return nil, err
		}
	}

	if cfg.HonorHistory, err = flags.GetBool("honor-history"); err != nil {
		return nil, err
	}

	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// runCrawl wires the page source, saver, engine and pipeline for cfg and
// runs them until the crawl ends or SIGINT/SIGTERM arrives.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	seed, err := cfg.Seed()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	var db *database.CrawlDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Debug("database opened", "path", db.Path())
	}

	source, closeSource, err := newPageSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	filter := urlfilter.New(seed.MainURL(), seed.NegativeCrawlKeywords(), seed.NegativeSaveKeywords())
	filter.Logger = logger

	saver, err := report.NewSaver(cfg.OutputDir, seed.Hostname(), seed.OutputFormat(), filter,
		report.WithSaverLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to prepare output: %w", err)
	}

	engineOpts := []crawler.EngineOption{
		crawler.WithLogger(logger),
		crawler.WithCheckpointEvery(cfg.CheckpointEvery),
		crawler.WithCooldown(cfg.RevisitCooldown),
		crawler.WithPageTimeout(cfg.PageTimeout),
		crawler.WithFollowExternal(cfg.FollowExternal),
	}
	if db != nil {
		engineOpts = append(engineOpts, crawler.WithVisitRecorder(visitRecorder(db)))

		if cfg.HonorHistory {
			since := time.Now().Add(-cfg.RevisitCooldown)
			visits, err := db.LoadVisits(ctx, seed.Hostname(), since)
			if err != nil {
				return fmt.Errorf("failed to load visit history: %w", err)
			}
			logger.Info("loaded visit history", "hostname", seed.Hostname(), "urls", len(visits))
			engineOpts = append(engineOpts, crawler.WithHistory(visits))
		}
	}

	engine := crawler.NewEngine(seed, source, saver, engineOpts...)

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddStep(pipeline.NewCrawlStep(engine))
	if db != nil {
		p.AddFinalStep(pipeline.NewRecordRunStep(db, pipeline.WithRecordLogger(logger)))
	}
	p.AddFinalStep(pipeline.NewSummaryStep(stdout, report.WithLanguage(language.Make(cfg.Language))))
	if cfg.ReportFile != "" {
		p.AddFinalStep(pipeline.NewMarkdownReportStep(cfg.ReportFile))
	}

	logger.Debug("pipeline ready", "steps", p.StepNames())

	run := engine.Summary()
	if err := executeWithSignals(ctx, p, run, logger); err != nil {
		return fmt.Errorf("crawl interrupted: %w", err)
	}
	return nil
}

// executeWithSignals runs p in one goroutine and watches for SIGINT/SIGTERM
// in another. A signal cancels the crawl; the pipeline's final steps still
// run before Execute returns.
func executeWithSignals(ctx context.Context, p *pipeline.Pipeline, run *model.CrawlRun, logger *slog.Logger) error {
	crawlCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	var g errgroup.Group

	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.Warn("received signal, stopping crawl", "signal", sig.String())
			cancel()
		case <-done:
		}
		return nil
	})

	g.Go(func() error {
		defer close(done)
		return p.Execute(crawlCtx, run)
	})

	return g.Wait()
}

// newPageSource returns the browser or HTTP page source for cfg and a
// function that releases it together with any Tor daemon it started.
func newPageSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (crawler.PageSource, func(), error) {
	proxyClient, stopProxy, err := newProxyClient(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.Render {
		opts := []crawler.HTTPSourceOption{
			crawler.WithUserAgent(cfg.UserAgent),
			crawler.WithMaxBodySize(cfg.MaxBodySize),
		}
		if proxyClient != nil {
			opts = append(opts, crawler.WithHTTPClient(proxyClient.NewHTTPClient()))
		}
		return crawler.NewHTTPSource(opts...), stopProxy, nil
	}

	browserOpts := []crawler.BrowserOption{
		crawler.WithBrowserUserAgent(cfg.UserAgent),
		crawler.WithBrowserLogger(logger),
		crawler.WithExecPath(cfg.ChromePath),
	}
	if proxyClient != nil {
		browserOpts = append(browserOpts, crawler.WithBrowserProxy(proxyClient.URL()))
	}
	browser := crawler.NewBrowserSource(browserOpts...)
	if err := browser.Open(ctx); err != nil {
		stopProxy()
		return nil, nil, err
	}
	return browser, func() {
		if err := browser.Close(); err != nil {
			logger.Warn("failed to close browser", "error", err)
		}
		stopProxy()
	}, nil
}

// newProxyClient returns a nil client when neither a proxy nor Tor is
// configured. With --tor a private Tor daemon is started first and the
// returned stop function shuts it down. In both cases the SOCKS5 port must
// answer a handshake before the crawl starts.
func newProxyClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*socks.Client, func(), error) {
	noop := func() {}

	switch {
	case cfg.Tor:
		daemon := socks.NewTorDaemon(socks.WithTorStartupTimeout(cfg.TorStartupTimeout))
		logger.Info("starting tor daemon, this may take a few minutes", "timeout", cfg.TorStartupTimeout)
		if err := daemon.Start(ctx); err != nil {
			return nil, nil, err
		}
		stop := func() {
			logger.Info("stopping tor daemon")
			if err := daemon.Stop(); err != nil {
				logger.Warn("failed to stop tor daemon", "error", err)
			}
		}

		client, err := daemon.NewClient(0)
		if err != nil {
			stop()
			return nil, nil, err
		}
		if err := client.CheckConnection(ctx).Error(); err != nil {
			stop()
			return nil, nil, fmt.Errorf("tor proxy %s unavailable: %w", client.Address(), err)
		}
		logger.Info("tor daemon ready", "socks", client.Address())
		return client, stop, nil

	case cfg.Proxy != "":
		client, err := socks.NewClient(cfg.Proxy, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("configuration error: %w", err)
		}
		if err := client.CheckConnection(ctx).Error(); err != nil {
			return nil, nil, fmt.Errorf("proxy %s unavailable: %w", cfg.Proxy, err)
		}
		logger.Info("using SOCKS5 proxy", "address", client.Address())
		return client, noop, nil

	default:
		return nil, noop, nil
	}
}

// visitRecorder stores each expansion time under the page's own hostname.
func visitRecorder(db *database.CrawlDB) crawler.VisitRecorder {
	return func(ctx context.Context, pageURL string, at time.Time) error {
		rec, err := model.NewURLRecord(pageURL)
		if err != nil {
			return err
		}
		if !rec.IsAbsolute() {
			return fmt.Errorf("cannot record visit of %q: no host", pageURL)
		}
		return db.RecordVisit(ctx, pageURL, rec.Hostname, at)
	}
}
