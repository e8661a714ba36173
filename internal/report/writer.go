package report

import (
	"fmt"
	"io"

	"github.com/nao1215/sitecrawl/internal/model"
)

// URLSet is the content of a URL artifact.
type URLSet struct {
	// Hostname is the seed's hostname.
	Hostname string `json:"website_hostname"`

	// URLs are the persisted URLs in frontier order.
	URLs []string `json:"all_urls"`
}

// NewURLSet creates a URLSet. A nil urls slice becomes an empty one so that
// the JSON form always has an array.
func NewURLSet(hostname string, urls []string) *URLSet {
	if urls == nil {
		urls = []string{}
	}
	return &URLSet{Hostname: hostname, URLs: urls}
}

// Writer serializes a URLSet.
type Writer interface {
	// Write outputs set and returns the number of bytes written.
	Write(set *URLSet) (int, error)

	// Extension returns the file extension of the format, without a dot.
	Extension() string
}

// NewWriter returns the Writer for format.
func NewWriter(format model.OutputFormat, output io.Writer) (Writer, error) {
	switch format {
	case model.FormatStructured:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case model.FormatLineDelimited:
		return NewTextWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// baseWriter provides common functionality for writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
