package model

import (
	"fmt"
	"strings"
)

// OutputFormat selects how the URL artifact is serialized.
type OutputFormat string

const (
	// FormatStructured writes a single JSON object with the hostname and URL list.
	FormatStructured OutputFormat = "json"

	// FormatLineDelimited writes one URL per line.
	FormatLineDelimited OutputFormat = "txt"
)

// ParseOutputFormat converts a user supplied value ("json" or "txt") to an
// OutputFormat. Matching is case-insensitive.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatStructured:
		return FormatStructured, nil
	case FormatLineDelimited:
		return FormatLineDelimited, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected json or txt)", s)
	}
}

// Extension returns the file extension used for the artifact, without a dot.
func (f OutputFormat) Extension() string {
	return string(f)
}

// String implements fmt.Stringer.
func (f OutputFormat) String() string {
	return string(f)
}
