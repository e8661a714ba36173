package config

import "time"

// SiteConfig holds settings for one site from the configuration file.
type SiteConfig struct {
	// NegativeCrawl are extra keywords that keep URLs out of the frontier.
	NegativeCrawl []string `yaml:"negativeCrawl,omitempty"`

	// NegativeSave are extra keywords that keep URLs out of the artifact.
	NegativeSave []string `yaml:"negativeSave,omitempty"`

	// Output is "json" or "txt".
	Output string `yaml:"output,omitempty"`

	// OutputDir is the directory for the artifact.
	OutputDir string `yaml:"outputDir,omitempty"`

	// CheckpointEvery overrides the checkpoint interval. Zero keeps the default.
	CheckpointEvery int `yaml:"checkpointEvery,omitempty"`

	// Timeout bounds each page fetch, e.g. "30s". Zero keeps the default.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Proxy is a SOCKS5 proxy address for this site.
	Proxy string `yaml:"proxy,omitempty"`

	// Tor crawls this site through a private Tor daemon.
	Tor bool `yaml:"tor,omitempty"`

	// ChromePath is the Chrome or Chromium binary used when rendering.
	ChromePath string `yaml:"chromePath,omitempty"`

	// Render selects the headless browser page source.
	Render bool `yaml:"render,omitempty"`

	// FollowExternal allows expanding off-site URLs.
	FollowExternal bool `yaml:"followExternal,omitempty"`
}

// File represents the structure of the .sitecrawl configuration file.
type File struct {
	// Sites maps hostnames to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the settings for hostname merged over the defaults.
// Keyword lists from the site are appended to the default lists; scalar
// settings replace the defaults when set.
func (cf *File) GetSiteConfig(hostname string) SiteConfig {
	result := cf.Defaults
	result.NegativeCrawl = append([]string(nil), cf.Defaults.NegativeCrawl...)
	result.NegativeSave = append([]string(nil), cf.Defaults.NegativeSave...)

	site, ok := cf.Sites[hostname]
	if !ok {
		return result
	}

	result.NegativeCrawl = appendUnique(result.NegativeCrawl, site.NegativeCrawl...)
	result.NegativeSave = appendUnique(result.NegativeSave, site.NegativeSave...)
	if site.Output != "" {
		result.Output = site.Output
	}
	if site.OutputDir != "" {
		result.OutputDir = site.OutputDir
	}
	if site.CheckpointEvery != 0 {
		result.CheckpointEvery = site.CheckpointEvery
	}
	if site.Timeout != 0 {
		result.Timeout = site.Timeout
	}
	if site.UserAgent != "" {
		result.UserAgent = site.UserAgent
	}
	if site.Proxy != "" {
		result.Proxy = site.Proxy
	}
	if site.Tor {
		result.Tor = true
	}
	if site.ChromePath != "" {
		result.ChromePath = site.ChromePath
	}
	if site.Render {
		result.Render = true
	}
	if site.FollowExternal {
		result.FollowExternal = true
	}

	return result
}
