package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/sitecrawl/internal/config"
	"github.com/nao1215/sitecrawl/internal/ledger"
	"github.com/nao1215/sitecrawl/internal/model"
	"github.com/nao1215/sitecrawl/internal/report"
	"github.com/nao1215/sitecrawl/internal/urlfilter"
)

// Checkpointer persists the frontier. report.Saver implements it.
type Checkpointer interface {
	Save(urls []string) (*report.SaveResult, error)
}

// VisitRecorder is called after every expansion with the visit time.
// Errors are logged and otherwise ignored.
type VisitRecorder func(ctx context.Context, pageURL string, at time.Time) error

// Engine runs one crawl from one seed. It is not safe for concurrent use.
type Engine struct {
	seed   config.SeedConfig
	base   *url.URL
	source PageSource
	saver  Checkpointer
	filter *urlfilter.Filter
	ledger *ledger.Ledger
	logger *slog.Logger
	clock  func() time.Time

	checkpointEvery int
	cooldown        time.Duration
	pageTimeout     time.Duration
	history         map[string]time.Time
	recordVisit     VisitRecorder
	followExternal  bool

	counter  int
	seedDone bool
	current  string
	finished bool
	run      *model.CrawlRun
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithCheckpointEvery sets how many expansions pass between checkpoints.
// Non-positive values keep the default of 10.
func WithCheckpointEvery(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.checkpointEvery = n
		}
	}
}

// WithCooldown sets the revisit cooldown. Zero disables it.
func WithCooldown(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.cooldown = d
	}
}

// WithPageTimeout bounds each PageSource call. Zero means no bound.
func WithPageTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.pageTimeout = d
	}
}

// WithHistory imports visit times from earlier runs so that recently
// expanded URLs are not discovered again.
func WithHistory(visits map[string]time.Time) EngineOption {
	return func(e *Engine) {
		e.history = visits
	}
}

// WithVisitRecorder registers a callback for every expansion.
func WithVisitRecorder(fn VisitRecorder) EngineOption {
	return func(e *Engine) {
		e.recordVisit = fn
	}
}

// WithFollowExternal allows expanding URLs on other hosts.
func WithFollowExternal(follow bool) EngineOption {
	return func(e *Engine) {
		e.followExternal = follow
	}
}

// NewEngine creates an Engine for seed. saver may be nil, in which case no
// checkpoints are written.
func NewEngine(seed config.SeedConfig, source PageSource, saver Checkpointer, opts ...EngineOption) *Engine {
	e := &Engine{
		seed:            seed,
		base:            seed.MainURL(),
		source:          source,
		saver:           saver,
		logger:          slog.New(slog.DiscardHandler),
		clock:           time.Now,
		checkpointEvery: config.DefaultCheckpointEvery,
		cooldown:        ledger.DefaultCooldown,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.filter = urlfilter.New(e.base, seed.NegativeCrawlKeywords(), seed.NegativeSaveKeywords())
	e.ledger = ledger.New(e.cooldown)
	for u, at := range e.history {
		e.ledger.Seed(u, at)
	}
	e.run = model.NewCrawlRun(seed.MainURLString(), seed.Hostname(), seed.OutputFormat(), e.clock())
	return e
}

// Run expands URLs until none are pending or ctx is done, writes a final
// checkpoint and returns the run summary. When ctx is cancelled the summary
// has status cancelled and ctx.Err() is returned.
func (e *Engine) Run(ctx context.Context) (*model.CrawlRun, error) {
	if e.finished {
		return e.run, ErrEngineFinished
	}
	if e.counter == 0 {
		e.run.StartedAt = e.clock()
	}

	e.logger.Info("starting crawl",
		"url", e.seed.MainURLString(),
		"hostname", e.seed.Hostname(),
		"cooldown", e.ledger.Cooldown(),
	)

	var runErr error
	for {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if _, ok := e.Step(ctx); !ok {
			break
		}
	}
	if runErr == nil {
		runErr = ctx.Err()
	}

	e.checkpoint()
	e.finished = true

	status := model.RunCompleted
	if runErr != nil {
		status = model.RunCancelled
		e.logger.Warn("crawl interrupted", "reason", runErr, "expanded", e.counter)
	}
	e.syncRun()
	e.run.Finish(status, e.clock(), runErr)

	e.logger.Info("crawl finished",
		"status", string(status),
		"expanded", e.run.Expanded,
		"unique", e.run.Discovered,
		"leaves", e.ledger.LeafLen(),
		"saved", e.run.Saved,
	)
	return e.run, runErr
}

// Step expands exactly one URL: the seed on the first call, then the most
// recently discovered pending URL. It returns false when nothing is left.
func (e *Engine) Step(ctx context.Context) (model.Expansion, bool) {
	pageURL, ok := e.next()
	if !ok {
		return model.Expansion{}, false
	}

	e.current = pageURL
	exp := e.expand(ctx, pageURL)
	e.current = ""
	return exp, true
}

func (e *Engine) next() (string, bool) {
	if !e.seedDone {
		e.seedDone = true
		return e.seed.MainURLString(), true
	}
	return e.ledger.NextPending()
}

func (e *Engine) expand(ctx context.Context, pageURL string) model.Expansion {
	exp := model.Expansion{
		URL:     pageURL,
		Skipped: make(map[model.SkipReason]int),
	}

	fetchCtx := ctx
	if e.pageTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, e.pageTimeout)
		defer cancel()
	}

	hrefs, err := e.source.FetchLinks(fetchCtx, pageURL)
	now := e.clock()
	exp.At = now

	if err != nil {
		exp.Err = err
		if ctx.Err() != nil {
			// Interrupted rather than failed; the URL stays discovered.
			exp.Count = e.counter
			return exp
		}
		e.run.FetchFailures++
		e.logger.Error("failed to fetch page", "url", pageURL, "error", err)
	} else {
		exp.RawLinks = len(hrefs)
		for _, href := range hrefs {
			e.discover(href, now, &exp)
		}
	}

	e.ledger.MarkVisited(pageURL, now)
	if e.recordVisit != nil {
		if err := e.recordVisit(ctx, pageURL, now); err != nil {
			e.logger.Warn("failed to record visit", "url", pageURL, "error", err)
		}
	}

	e.counter++
	exp.Count = e.counter
	if e.counter%e.checkpointEvery == 0 {
		exp.Checkpointed = e.checkpoint()
	}

	e.logger.Info("crawling page",
		"count", e.counter,
		"unique", e.ledger.Len(),
		"pending", e.ledger.PendingLen(),
		"skipped", exp.SkippedTotal(),
		"url", pageURL,
	)
	return exp
}

// discover runs one raw href through resolution, the crawl filter, the
// duplicate check and the revisit check, in that order.
func (e *Engine) discover(href string, now time.Time, exp *model.Expansion) {
	abs, err := urlfilter.Resolve(e.base, href)
	if err != nil {
		e.skip(exp, model.SkipUnparseable, href)
		return
	}
	if !e.filter.AcceptCrawl(abs) {
		e.skip(exp, model.SkipNegativeCrawl, abs)
		return
	}
	if e.ledger.Contains(abs) {
		e.skip(exp, model.SkipDuplicate, abs)
		return
	}
	if e.ledger.ShouldSkipRevisit(abs, now) {
		last, _ := e.ledger.LastVisited(abs)
		e.logger.Debug("visited within cooldown", "url", abs, "last_visited", last)
		e.skip(exp, model.SkipRecentlyVisited, abs)
		return
	}

	if e.expandable(abs) {
		e.ledger.RecordDiscovery(abs)
	} else {
		e.ledger.RecordLeaf(abs)
	}
	exp.Discovered = append(exp.Discovered, abs)
	e.logger.Debug("found url", "url", abs)
}

func (e *Engine) skip(exp *model.Expansion, reason model.SkipReason, u string) {
	exp.Skipped[reason]++
	e.logger.Debug("skipping url", "url", u, "reason", string(reason))
}

// expandable reports whether abs may be fetched: an http(s) URL on the
// seed's host, or on any host when following external links.
func (e *Engine) expandable(abs string) bool {
	u, err := url.Parse(abs)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if e.followExternal {
		return u.Host != ""
	}
	return sameSite(u, e.base)
}

// sameSite compares hostnames case-insensitively and ports after filling in
// the scheme's default, so https://example.com:443/ and https://example.com/a
// are one site. The URL strings themselves are left untouched.
func sameSite(a, b *url.URL) bool {
	if !strings.EqualFold(a.Hostname(), b.Hostname()) {
		return false
	}
	return effectivePort(a) == effectivePort(b)
}

func effectivePort(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		return "80"
	case "https":
		return "443"
	default:
		return ""
	}
}

// checkpoint writes the frontier and reports whether the write succeeded.
func (e *Engine) checkpoint() bool {
	if e.saver == nil {
		return false
	}
	res, err := e.saver.Save(e.ledger.Snapshot())
	if err != nil {
		e.run.CheckpointFailures++
		e.logger.Error("failed to save checkpoint", "error", err)
		return false
	}
	e.run.Checkpoints++
	e.run.Saved = res.Saved
	e.run.OutputPath = res.Path
	return true
}

func (e *Engine) syncRun() {
	e.run.Expanded = e.counter
	e.run.Discovered = e.ledger.Len()
}

// State reports where u is in its lifecycle.
//
// Leaves never move past StateDiscovered because they are never fetched.
// The seed is Expanded once its step ran, whether or not a page links back
// to it; with a positive cooldown such a link is skipped as recently
// visited, so the seed usually does not appear in the frontier at all.
func (e *Engine) State(u string) model.URLState {
	switch {
	case u == e.current:
		return model.StateExpanding
	case e.ledger.IsVisited(u):
		return model.StateExpanded
	case u == e.seed.MainURLString() && e.seedDone:
		return model.StateExpanded
	case e.ledger.Contains(u):
		return model.StateDiscovered
	default:
		return model.StateUndiscovered
	}
}

// Frontier returns every discovered URL in discovery order.
func (e *Engine) Frontier() []string {
	return e.ledger.Snapshot()
}

// Counter returns the number of expansions so far.
func (e *Engine) Counter() int {
	return e.counter
}

// PendingLen returns the number of URLs waiting to be expanded.
func (e *Engine) PendingLen() int {
	return e.ledger.PendingLen()
}

// Summary returns the current run summary. Counts are refreshed on each call.
func (e *Engine) Summary() *model.CrawlRun {
	e.syncRun()
	return e.run
}
