package model

import (
	"fmt"
	"net/url"
)

// URLRecord is a discovered URL together with the fields derived from it.
// The crawler keeps raw strings in its frontier; records are built on demand
// for logging, history and reports.
type URLRecord struct {
	// URL is the string exactly as discovered (after href resolution).
	URL string `json:"url"`

	// Hostname is the host without port. Empty for relative URLs.
	Hostname string `json:"hostname,omitempty"`

	// Path is the URL path component.
	Path string `json:"path,omitempty"`
}

// NewURLRecord parses raw and fills the derived fields.
func NewURLRecord(raw string) (URLRecord, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return URLRecord{}, fmt.Errorf("failed to parse url %q: %w", raw, err)
	}
	return URLRecord{
		URL:      raw,
		Hostname: u.Hostname(),
		Path:     u.Path,
	}, nil
}

// IsAbsolute reports whether the record carries a host component.
func (r URLRecord) IsAbsolute() bool {
	return r.Hostname != ""
}
