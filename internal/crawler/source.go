package crawler

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// PageSource returns the raw href values of the <a href> elements on a page.
// Implementations must honour ctx cancellation.
type PageSource interface {
	FetchLinks(ctx context.Context, pageURL string) ([]string, error)
}

const (
	defaultUserAgent   = "sitecrawl/1.0 (+https://github.com/nao1215/sitecrawl)"
	defaultMaxBodySize = 5 * 1024 * 1024
)

// HTTPSource fetches pages over plain HTTP and parses the returned HTML.
type HTTPSource struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	parser      *Parser
}

// HTTPSourceOption configures an HTTPSource.
type HTTPSourceOption func(*HTTPSource)

// WithHTTPClient sets the client used for requests.
func WithHTTPClient(client *http.Client) HTTPSourceOption {
	return func(s *HTTPSource) {
		s.client = client
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPSourceOption {
	return func(s *HTTPSource) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithMaxBodySize limits how many response bytes are parsed.
// Non-positive values keep the default.
func WithMaxBodySize(n int64) HTTPSourceOption {
	return func(s *HTTPSource) {
		if n > 0 {
			s.maxBodySize = n
		}
	}
}

// NewHTTPSource creates an HTTPSource. The default client follows redirects
// and has no overall timeout; the engine's page timeout bounds each fetch.
func NewHTTPSource(opts ...HTTPSourceOption) *HTTPSource {
	s := &HTTPSource{
		client:      &http.Client{},
		userAgent:   defaultUserAgent,
		maxBodySize: defaultMaxBodySize,
		parser:      NewParser(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchLinks GETs pageURL and returns its hrefs. Responses that are not
// HTML yield no links and no error. Non-2xx responses return a *StatusError.
func (s *HTTPSource) FetchLinks(ctx context.Context, pageURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return nil, &StatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	if !isHTML(resp.Header.Get("Content-Type")) {
		return nil, nil
	}

	hrefs, err := s.parser.Hrefs(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}
	return hrefs, nil
}

// isHTML reports whether a Content-Type header denotes an HTML document.
// A missing header is treated as HTML.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
