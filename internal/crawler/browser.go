package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chromedp/chromedp"
)

// hrefScript returns the raw href attribute of every anchor, like
// Parser.Hrefs does for static HTML.
const hrefScript = `Array.from(document.querySelectorAll('a[href]')).map(a => a.getAttribute('href'))`

// BrowserSource renders pages in one headless Chrome session and reads the
// links from the live DOM. The session is started by Open, reused for
// every page, and must be released with Close.
type BrowserSource struct {
	userAgent string
	execPath  string
	proxy     string
	logger    *slog.Logger

	mu            sync.Mutex
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// BrowserOption configures a BrowserSource.
type BrowserOption func(*BrowserSource)

// WithBrowserUserAgent sets the browser's User-Agent.
func WithBrowserUserAgent(ua string) BrowserOption {
	return func(b *BrowserSource) {
		b.userAgent = ua
	}
}

// WithExecPath sets the Chrome binary. Empty means chromedp's lookup.
func WithExecPath(path string) BrowserOption {
	return func(b *BrowserSource) {
		b.execPath = path
	}
}

// WithBrowserProxy routes browser traffic through a proxy server,
// e.g. "socks5://127.0.0.1:1080".
func WithBrowserProxy(proxyURL string) BrowserOption {
	return func(b *BrowserSource) {
		b.proxy = proxyURL
	}
}

// WithBrowserLogger sets the logger for browser events.
func WithBrowserLogger(logger *slog.Logger) BrowserOption {
	return func(b *BrowserSource) {
		b.logger = logger
	}
}

// NewBrowserSource creates a BrowserSource. No browser is started until Open.
func NewBrowserSource(opts ...BrowserOption) *BrowserSource {
	b := &BrowserSource{
		userAgent: defaultUserAgent,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Open launches the browser. The session lives until Close is called or
// ctx is cancelled.
func (b *BrowserSource) Open(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx != nil {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)
	if b.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.userAgent))
	}
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}
	if b.proxy != "" {
		opts = append(opts, chromedp.ProxyServer(b.proxy))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Run with no actions starts the browser and opens the first tab.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("failed to start browser: %w", err)
	}

	b.browserCtx = browserCtx
	b.browserCancel = browserCancel
	b.allocCancel = allocCancel
	b.logger.Debug("browser session started", "exec_path", b.execPath)
	return nil
}

// FetchLinks navigates the session's tab to pageURL, waits for the body and
// returns the href attribute of every anchor.
func (b *BrowserSource) FetchLinks(ctx context.Context, pageURL string) ([]string, error) {
	b.mu.Lock()
	browserCtx := b.browserCtx
	b.mu.Unlock()
	if browserCtx == nil {
		return nil, ErrBrowserNotOpen
	}

	runCtx, cancel := context.WithCancel(browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var hrefs []string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(hrefScript, &hrefs),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to render %s: %w", pageURL, err)
	}
	return hrefs, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (b *BrowserSource) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx == nil {
		return nil
	}
	b.browserCancel()
	b.allocCancel()
	b.browserCtx = nil
	b.browserCancel = nil
	b.allocCancel = nil
	b.logger.Debug("browser session closed")
	return nil
}
