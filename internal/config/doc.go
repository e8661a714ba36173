// Package config provides configuration structures and utilities for sitecrawl.
// It defines the run options assembled from CLI flags and the optional YAML
// file, and the immutable SeedConfig handed to the crawl engine.
package config
