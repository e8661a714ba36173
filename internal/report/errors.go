package report

import "errors"

var (
	// ErrUnsupportedFormat is returned by NewWriter for an unknown output format.
	ErrUnsupportedFormat = errors.New("unsupported output format")

	// ErrNoHostname is returned by NewSaver when the hostname is empty.
	ErrNoHostname = errors.New("hostname is required to name the output file")
)
