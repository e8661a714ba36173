package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/text/language"

	"github.com/nao1215/sitecrawl/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "sitecrawl"

	// DefaultOutputFormat writes one URL per line.
	DefaultOutputFormat = model.FormatLineDelimited

	// DefaultLogLevel is the console verbosity.
	DefaultLogLevel = "info"

	// DefaultLanguage formats numbers in the run summary.
	DefaultLanguage = "en"

	// LogFormatText and LogFormatJSON select the console log encoding.
	LogFormatText = "text"
	LogFormatJSON = "json"

	// DefaultCheckpointEvery is the number of expansions between checkpoint writes.
	DefaultCheckpointEvery = 10

	// DefaultRevisitCooldown is how long an expanded URL is kept from being
	// expanded again.
	DefaultRevisitCooldown = 24 * time.Hour

	// DefaultPageTimeout of zero means a fetch may block indefinitely.
	DefaultPageTimeout = time.Duration(0)

	// DefaultOutputDir is where <hostname>.<ext> is written.
	DefaultOutputDir = "."

	// DefaultUserAgent identifies sitecrawl in HTTP requests.
	DefaultUserAgent = "sitecrawl/1.0 (+https://github.com/nao1215/sitecrawl)"

	// DefaultMaxBodySize limits how much of a response body is parsed for links.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultTorStartupTimeout is how long the embedded Tor daemon may take
	// to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// Config holds all options for one sitecrawl invocation.
// It is populated from CLI flags and the config file, validated once, and
// then converted into a SeedConfig for the engine.
type Config struct {
	// SeedURL is the absolute URL the crawl starts from.
	SeedURL string

	// OutputFormat selects json or txt artifacts.
	OutputFormat model.OutputFormat

	// NegativeCrawl are substrings that keep a URL out of the frontier.
	NegativeCrawl []string

	// NegativeSave are substrings that keep a URL out of the artifact.
	NegativeSave []string

	// LogLevel is "debug" or "info".
	LogLevel string

	// LogFormat is LogFormatText or LogFormatJSON.
	LogFormat string

	// Language is a BCP 47 tag for the run summary, e.g. "en" or "de".
	Language string

	// OutputDir is the directory receiving the artifact.
	OutputDir string

	// ConfigFilePath is the path to the YAML configuration file.
	// If empty, .sitecrawl is searched in the current and home directories.
	ConfigFilePath string

	// SiteConfigs holds the parsed configuration file.
	SiteConfigs *File

	// Render switches the page source to the headless browser.
	Render bool

	// PageTimeout bounds a single page fetch. Zero disables it.
	PageTimeout time.Duration

	// CheckpointEvery is the number of expansions between checkpoint writes.
	CheckpointEvery int

	// RevisitCooldown is the window in which an expanded URL is not expanded again.
	RevisitCooldown time.Duration

	// HonorHistory seeds the visit ledger with visit times stored by earlier runs.
	HonorHistory bool

	// FollowExternal allows expanding URLs on hosts other than the seed's.
	FollowExternal bool

	// SaveToDB records visits and run summaries in the SQLite database.
	SaveToDB bool

	// DBDir is the directory holding the SQLite database.
	DBDir string

	// ReportFile is an optional path for a Markdown run summary.
	ReportFile string

	// UserAgent is sent with every HTTP request and by the browser.
	UserAgent string

	// MaxBodySize is the maximum number of response bytes parsed per page.
	MaxBodySize int64

	// Proxy is an optional SOCKS5 proxy address ("host:port").
	Proxy string

	// Tor starts a private Tor daemon and crawls through its SOCKS5 port.
	// It cannot be combined with Proxy.
	Tor bool

	// TorStartupTimeout bounds Tor's bootstrap.
	TorStartupTimeout time.Duration

	// ChromePath is the browser binary for Render. Empty means a PATH lookup.
	ChromePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		OutputFormat:    DefaultOutputFormat,
		LogLevel:        DefaultLogLevel,
		LogFormat:       LogFormatText,
		Language:        DefaultLanguage,
		OutputDir:       DefaultOutputDir,
		PageTimeout:     DefaultPageTimeout,
		CheckpointEvery: DefaultCheckpointEvery,
		RevisitCooldown: DefaultRevisitCooldown,
		SaveToDB:        true,
		DBDir:           XDGDataDir(),
		UserAgent:       DefaultUserAgent,
		MaxBodySize:     DefaultMaxBodySize,

		TorStartupTimeout: DefaultTorStartupTimeout,
	}
}

// XDGDataDir returns the XDG data directory for sitecrawl.
// On Linux: ~/.local/share/sitecrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitecrawl.
// On Linux: ~/.config/sitecrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after flags are parsed, before any crawling begins.
func (c *Config) Validate() error {
	if c.SeedURL == "" {
		return ErrNoSeedURL
	}
	if _, err := model.ParseOutputFormat(string(c.OutputFormat)); err != nil {
		return ErrInvalidOutputFormat
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" {
		return ErrInvalidLogLevel
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return ErrInvalidLogFormat
	}
	if _, err := language.Parse(c.Language); err != nil {
		return ErrInvalidLanguage
	}
	if c.CheckpointEvery <= 0 {
		return ErrInvalidCheckpointInterval
	}
	if c.PageTimeout < 0 {
		return ErrInvalidTimeout
	}
	if c.RevisitCooldown < 0 {
		return ErrInvalidCooldown
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	// Tor supplies its own SOCKS5 port, so an explicit proxy would be ignored.
	if c.Tor && c.Proxy != "" {
		return ErrProxyConflict
	}
	if c.TorStartupTimeout < 0 {
		return ErrInvalidTimeout
	}
	if _, err := c.Seed(); err != nil {
		return err
	}
	return nil
}

// Seed builds the immutable SeedConfig for the engine.
func (c *Config) Seed() (SeedConfig, error) {
	return NewSeedConfig(c.SeedURL, c.OutputFormat, c.NegativeCrawl, c.NegativeSave)
}

// ApplySiteConfig merges file settings into c. Keywords are appended,
// scalar settings replace the current value when they are set in sc.
// Call it before applying explicitly set CLI flags so that flags win.
func (c *Config) ApplySiteConfig(sc SiteConfig) {
	c.NegativeCrawl = appendUnique(c.NegativeCrawl, sc.NegativeCrawl...)
	c.NegativeSave = appendUnique(c.NegativeSave, sc.NegativeSave...)

	if sc.Output != "" {
		c.OutputFormat = model.OutputFormat(sc.Output)
	}
	if sc.OutputDir != "" {
		c.OutputDir = sc.OutputDir
	}
	if sc.CheckpointEvery > 0 {
		c.CheckpointEvery = sc.CheckpointEvery
	}
	if sc.Timeout > 0 {
		c.PageTimeout = sc.Timeout
	}
	if sc.UserAgent != "" {
		c.UserAgent = sc.UserAgent
	}
	if sc.Proxy != "" {
		c.Proxy = sc.Proxy
	}
	if sc.Tor {
		c.Tor = true
	}
	if sc.ChromePath != "" {
		c.ChromePath = sc.ChromePath
	}
	if sc.Render {
		c.Render = true
	}
	if sc.FollowExternal {
		c.FollowExternal = true
	}
}

// appendUnique appends values that are not already present in dst.
func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}
