package config

import (
	"fmt"
	"net/url"
	"slices"

	"github.com/nao1215/sitecrawl/internal/model"
)

// SeedConfig is the immutable description of one crawl: where it starts,
// how results are written, and which keywords exclude URLs.
// It is constructed once at startup and only read afterwards; accessors
// return copies so callers cannot mutate it.
type SeedConfig struct {
	mainURL       *url.URL
	raw           string
	format        model.OutputFormat
	negativeCrawl []string
	negativeSave  []string
}

// NewSeedConfig validates rawURL and builds a SeedConfig.
// The two keyword sets are independent and may differ.
func NewSeedConfig(rawURL string, format model.OutputFormat, negativeCrawl, negativeSave []string) (SeedConfig, error) {
	if rawURL == "" {
		return SeedConfig{}, ErrNoSeedURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return SeedConfig{}, fmt.Errorf("%w: %w", ErrInvalidSeedURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return SeedConfig{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, rawURL)
	}
	if u.Hostname() == "" {
		return SeedConfig{}, fmt.Errorf("%w: %q", ErrMissingHost, rawURL)
	}

	f, err := model.ParseOutputFormat(string(format))
	if err != nil {
		return SeedConfig{}, fmt.Errorf("%w: %w", ErrInvalidOutputFormat, err)
	}

	return SeedConfig{
		mainURL:       u,
		raw:           rawURL,
		format:        f,
		negativeCrawl: slices.Clone(negativeCrawl),
		negativeSave:  slices.Clone(negativeSave),
	}, nil
}

// MainURL returns a copy of the parsed seed URL, used as the resolution base.
func (s SeedConfig) MainURL() *url.URL {
	if s.mainURL == nil {
		return nil
	}
	u := *s.mainURL
	return &u
}

// MainURLString returns the seed URL exactly as given.
func (s SeedConfig) MainURLString() string {
	return s.raw
}

// Hostname returns the seed's hostname without port.
func (s SeedConfig) Hostname() string {
	if s.mainURL == nil {
		return ""
	}
	return s.mainURL.Hostname()
}

// OutputFormat returns the artifact format.
func (s SeedConfig) OutputFormat() model.OutputFormat {
	return s.format
}

// NegativeCrawlKeywords returns the keywords that skip a URL before it is visited.
func (s SeedConfig) NegativeCrawlKeywords() []string {
	return slices.Clone(s.negativeCrawl)
}

// NegativeSaveKeywords returns the keywords that skip a URL before it is persisted.
func (s SeedConfig) NegativeSaveKeywords() []string {
	return slices.Clone(s.negativeSave)
}
