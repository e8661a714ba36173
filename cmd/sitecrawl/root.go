package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/sitecrawl/internal/config"
)

// NewRootCmd creates the root command. Running it with a seed URL starts
// a crawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitecrawl [flags] <seed-url>",
		Short: "Recursively crawl a website and save every discovered URL",
		Long: `sitecrawl starts from a seed URL, follows every link on the seed's host
depth-first, and writes the URLs it finds to <hostname>.txt or <hostname>.json.

The output file is rewritten every --checkpoint-every pages and once more
when the crawl ends, so an interrupted crawl keeps its progress.

Examples:
  # Crawl a site and write example.com.txt in the current directory
  sitecrawl https://example.com

  # JSON output, skipping logout links and not saving admin pages
  sitecrawl -o json --negative-crawl logout --negative-save /admin/ https://example.com

  # Render pages in a headless browser before extracting links
  sitecrawl --render https://example.com

  # Crawl through a local SOCKS5 proxy
  sitecrawl --proxy 127.0.0.1:1080 https://example.com

  # Crawl through a private Tor daemon
  sitecrawl --tor https://example.com

Configuration file (.sitecrawl) example:
  defaults:
    negativeCrawl: ["logout"]
  sites:
    example.com:
      negativeSave: ["/tag/"]
      render: true`,
		Version:       getVersion(),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCrawlCmd,
	}

	cmd.SetGlobalNormalizationFunc(underscoreToDash)

	cmd.Flags().StringP("output", "o", string(config.DefaultOutputFormat),
		"Output format: json or txt")
	cmd.Flags().StringArray("negative-crawl", nil,
		"Skip URLs containing this keyword during crawling (repeatable, taken literally)")
	cmd.Flags().StringArray("negative-save", nil,
		"Skip URLs containing this keyword when saving (repeatable, taken literally)")
	cmd.Flags().String("log-level", config.DefaultLogLevel,
		"Log level: debug or info")
	cmd.Flags().String("log-format", config.LogFormatText,
		"Log encoding on stderr (text, json)")
	cmd.Flags().String("lang", config.DefaultLanguage,
		"Language tag used to format numbers in the run summary (e.g. en, de)")
	cmd.Flags().StringP("dir", "d", config.DefaultOutputDir,
		"Directory for the output file")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitecrawl in current, XDG config or home directory)")
	cmd.Flags().Bool("render", false,
		"Render pages in a headless browser before extracting links")
	cmd.Flags().DurationP("timeout", "t", config.DefaultPageTimeout,
		"Per-page fetch timeout (0 disables)")
	cmd.Flags().Int("checkpoint-every", config.DefaultCheckpointEvery,
		"Number of pages between output file writes")
	cmd.Flags().Bool("honor-history", false,
		"Skip URLs expanded by earlier runs within the revisit cooldown")
	cmd.Flags().Bool("follow-external", false,
		"Also expand URLs on other hosts")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (host:port) for all requests")
	cmd.Flags().Bool("tor", false,
		"Start a private Tor daemon and crawl through it")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Maximum time to wait for the Tor daemon to bootstrap")
	cmd.Flags().String("chrome-path", "",
		"Chrome or Chromium binary used with --render (default: looked up on PATH)")
	cmd.Flags().Bool("no-db", false,
		"Do not record visits and runs in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
	cmd.Flags().String("report", "",
		"Write a Markdown run summary to this path")

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// underscoreToDash lets --negative_crawl and --log_level work as aliases.
func underscoreToDash(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
