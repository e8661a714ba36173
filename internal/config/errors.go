package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate and NewSeedConfig so callers
// can use errors.Is to tell them apart.
var (
	// ErrNoSeedURL is returned when no seed URL was given.
	ErrNoSeedURL = errors.New("no seed url specified: provide the url to start crawling from")

	// ErrInvalidSeedURL is returned when the seed URL cannot be parsed.
	ErrInvalidSeedURL = errors.New("invalid seed url")

	// ErrUnsupportedScheme is returned when the seed URL is not http or https.
	ErrUnsupportedScheme = errors.New("unsupported seed url scheme: must be http or https")

	// ErrMissingHost is returned when the seed URL has no host component.
	// The host names the output artifact, so it is required.
	ErrMissingHost = errors.New("seed url has no host")

	// ErrInvalidOutputFormat is returned for formats other than json and txt.
	ErrInvalidOutputFormat = errors.New("invalid output format: must be json or txt")

	// ErrInvalidLogLevel is returned for log levels other than debug and info.
	ErrInvalidLogLevel = errors.New("invalid log level: must be debug or info")

	// ErrInvalidLogFormat is returned for log formats other than text and json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrInvalidLanguage is returned when the summary language is not a BCP 47 tag.
	ErrInvalidLanguage = errors.New("invalid language: must be a BCP 47 tag such as en or de")

	// ErrInvalidCheckpointInterval is returned when the checkpoint interval is not positive.
	ErrInvalidCheckpointInterval = errors.New("invalid checkpoint interval: must be positive")

	// ErrInvalidTimeout is returned when the page timeout is negative.
	// Zero disables the timeout.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidCooldown is returned when the revisit cooldown is negative.
	ErrInvalidCooldown = errors.New("invalid revisit cooldown: must be non-negative")

	// ErrProxyConflict is returned when both a SOCKS5 proxy and Tor are requested.
	ErrProxyConflict = errors.New("proxy and tor cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
