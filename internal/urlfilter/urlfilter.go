package urlfilter

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
)

// ErrUnparseableHref is returned by Resolve when an href is not a valid URL reference.
var ErrUnparseableHref = errors.New("unparseable href")

// Resolve returns the absolute form of href.
// Surrounding whitespace is trimmed, as browsers do. An href that already
// names a scheme and host is then returned unchanged; anything else is
// resolved against base.
func Resolve(base *url.URL, href string) (string, error) {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrUnparseableHref, href, err)
	}
	if ref.Scheme != "" && ref.Host != "" {
		return href, nil
	}
	if base == nil {
		return ref.String(), nil
	}
	return base.ResolveReference(ref).String(), nil
}

// ContainsAny reports whether s contains any of keywords as a literal,
// case-sensitive substring, and returns the first keyword that matched.
// Empty keywords are ignored.
func ContainsAny(s string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(s, kw) {
			return kw, true
		}
	}
	return "", false
}

// Filter applies the crawl-time and save-time keyword rules for one seed.
type Filter struct {
	// Base is the URL relative references are resolved against.
	Base *url.URL

	// CrawlKeywords exclude URLs from the frontier at discovery time.
	CrawlKeywords []string

	// SaveKeywords exclude URLs from the saved artifact.
	SaveKeywords []string

	// Logger receives one debug record per URL dropped by ForSave. Optional.
	Logger *slog.Logger
}

// New creates a Filter. Keyword slices are copied.
func New(base *url.URL, crawlKeywords, saveKeywords []string) *Filter {
	return &Filter{
		Base:          base,
		CrawlKeywords: slices.Clone(crawlKeywords),
		SaveKeywords:  slices.Clone(saveKeywords),
	}
}

// AcceptCrawl reports whether absURL may enter the frontier.
func (f *Filter) AcceptCrawl(absURL string) bool {
	_, hit := ContainsAny(absURL, f.CrawlKeywords)
	return !hit
}

// ForSave returns the URLs that should be persisted, in input order.
// Each entry is resolved against Base a second time, then entries matching
// a save keyword are dropped. The input slice is not modified.
// ForSave(ForSave(x)) equals ForSave(x).
func (f *Filter) ForSave(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if kw, hit := ContainsAny(u, f.SaveKeywords); hit {
			f.debug("skipping url due to negative save keyword", u, kw)
			continue
		}
		abs, err := Resolve(f.Base, u)
		if err != nil {
			f.debug("skipping unparseable url", u, "")
			continue
		}
		if kw, hit := ContainsAny(abs, f.SaveKeywords); hit {
			f.debug("skipping url due to negative save keyword", abs, kw)
			continue
		}
		out = append(out, abs)
	}
	return out
}

func (f *Filter) debug(msg, u, keyword string) {
	if f.Logger == nil {
		return
	}
	if keyword == "" {
		f.Logger.Debug(msg, "url", u)
		return
	}
	f.Logger.Debug(msg, "url", u, "keyword", keyword)
}
