package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sitecrawl/internal/config"
	"github.com/nao1215/sitecrawl/internal/model"
	"github.com/nao1215/sitecrawl/internal/socks"
)

// writeConfig writes a .sitecrawl file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".sitecrawl")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults without config file content", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		if err := cmd.ParseFlags([]string{"-c", writeConfig(t, "")}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.SeedURL != "https://example.com" {
			t.Errorf("unexpected seed %q", cfg.SeedURL)
		}
		if cfg.OutputFormat != model.FormatLineDelimited {
			t.Errorf("expected txt, got %s", cfg.OutputFormat)
		}
		if cfg.CheckpointEvery != config.DefaultCheckpointEvery {
			t.Errorf("expected default checkpoint interval, got %d", cfg.CheckpointEvery)
		}
		if !cfg.SaveToDB {
			t.Error("expected database to be enabled by default")
		}
	})

	t.Run("site config applies and flags win", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `
defaults:
  negativeCrawl: ["logout"]
sites:
  example.com:
    negativeSave: ["/admin/"]
    output: json
    checkpointEvery: 5
    timeout: 30s
`)
		cmd := NewRootCmd()
		err := cmd.ParseFlags([]string{
			"-c", path,
			"--negative_crawl", "tag",
			"--checkpoint-every", "3",
			"--log_level", "debug",
			"--no-db",
		})
		if err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com/start"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := []string{"logout", "tag"}; !slices.Equal(cfg.NegativeCrawl, want) {
			t.Errorf("negative crawl = %v, want %v", cfg.NegativeCrawl, want)
		}
		if want := []string{"/admin/"}; !slices.Equal(cfg.NegativeSave, want) {
			t.Errorf("negative save = %v, want %v", cfg.NegativeSave, want)
		}
		if cfg.OutputFormat != model.FormatStructured {
			t.Errorf("expected json from site config, got %s", cfg.OutputFormat)
		}
		if cfg.CheckpointEvery != 3 {
			t.Errorf("expected flag to override checkpoint interval, got %d", cfg.CheckpointEvery)
		}
		if cfg.PageTimeout != 30*time.Second {
			t.Errorf("expected 30s timeout, got %s", cfg.PageTimeout)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("expected debug log level, got %q", cfg.LogLevel)
		}
		if cfg.SaveToDB {
			t.Error("expected --no-db to disable the database")
		}
	})

	t.Run("keywords are taken literally, one per flag", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		err := cmd.ParseFlags([]string{
			"-c", writeConfig(t, ""),
			"--negative_crawl", "a,b",
			"--negative-crawl", "c",
			"--negative-save", `say"hi`,
		})
		if err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := []string{"a,b", "c"}; !slices.Equal(cfg.NegativeCrawl, want) {
			t.Errorf("negative crawl = %q, want %q", cfg.NegativeCrawl, want)
		}
		if want := []string{`say"hi`}; !slices.Equal(cfg.NegativeSave, want) {
			t.Errorf("negative save = %q, want %q", cfg.NegativeSave, want)
		}
	})

	t.Run("tor and chrome flags", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		err := cmd.ParseFlags([]string{
			"-c", writeConfig(t, "defaults:\n  chromePath: /opt/chrome\n"),
			"--tor",
			"--tor-timeout", "90s",
			"--chrome-path", "/usr/bin/chromium",
		})
		if err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.Tor {
			t.Error("expected --tor to enable the daemon")
		}
		if cfg.TorStartupTimeout != 90*time.Second {
			t.Errorf("expected 90s tor timeout, got %s", cfg.TorStartupTimeout)
		}
		if cfg.ChromePath != "/usr/bin/chromium" {
			t.Errorf("expected flag to override chromePath, got %q", cfg.ChromePath)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		missing := filepath.Join(t.TempDir(), "nope.yaml")
		if err := cmd.ParseFlags([]string{"-c", missing}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		if _, err := buildConfig(cmd, []string{"https://example.com"}); !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

func TestRunCrawlCmdRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"unknown output format", []string{"-o", "xml", "https://example.com"}, config.ErrInvalidOutputFormat},
		{"unknown log level", []string{"--log-level", "trace", "https://example.com"}, config.ErrInvalidLogLevel},
		{"unknown log format", []string{"--log-format", "logfmt", "https://example.com"}, config.ErrInvalidLogFormat},
		{"malformed language", []string{"--lang", "not a tag", "https://example.com"}, config.ErrInvalidLanguage},
		{"non-http seed", []string{"ftp://example.com"}, config.ErrUnsupportedScheme},
		{"zero checkpoint interval", []string{"--checkpoint-every", "0", "https://example.com"}, config.ErrInvalidCheckpointInterval},
		{"proxy without port", []string{"--proxy", "localhost", "https://example.com"}, socks.ErrInvalidAddress},
		{"proxy and tor together", []string{"--tor", "--proxy", "127.0.0.1:1080", "https://example.com"}, config.ErrProxyConflict},
		{"unreachable proxy", []string{"--proxy", "127.0.0.1:1", "https://example.com"}, socks.ErrCannotConnect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := NewRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(append([]string{"-c", writeConfig(t, ""), "--no-db"}, tt.args...))

			if err := cmd.Execute(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// newTestSite serves a small link graph:
//
//	/       -> /a /b /logout https://other.example/x
//	/a      -> /b /a/deep
//	/b      -> (none)
//	/a/deep -> (none)
func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()

	pages := map[string][]string{
		"/":       {"/a", "/b", "/logout", "https://other.example/x"},
		"/a":      {"/b", "/a/deep"},
		"/b":      nil,
		"/a/deep": nil,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		links, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body>")
		for _, l := range links {
			fmt.Fprintf(w, `<a href="%s">link</a>`, l)
		}
		fmt.Fprint(w, "</body></html>")
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCrawlEndToEnd(t *testing.T) {
	t.Parallel()

	server := newTestSite(t)
	outDir := t.TempDir()
	dbDir := t.TempDir()
	reportPath := filepath.Join(t.TempDir(), "report.md")

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{
		"-c", writeConfig(t, ""),
		"-o", "json",
		"-d", outDir,
		"--db-dir", dbDir,
		"--negative_crawl", "logout",
		"--negative-save", "deep",
		"--report", reportPath,
		server.URL,
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("crawl failed: %v\n%s", err, stderr.String())
	}

	data, err := os.ReadFile(filepath.Join(outDir, "127.0.0.1.json"))
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}

	var got struct {
		Hostname string   `json:"website_hostname"`
		URLs     []string `json:"all_urls"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid json output: %v\n%s", err, data)
	}
	if got.Hostname != "127.0.0.1" {
		t.Errorf("unexpected hostname %q", got.Hostname)
	}
	want := []string{
		server.URL + "/a",
		server.URL + "/b",
		"https://other.example/x",
	}
	if !slices.Equal(got.URLs, want) {
		t.Errorf("all_urls = %v, want %v", got.URLs, want)
	}

	if !strings.Contains(stdout.String(), "Crawl summary for 127.0.0.1") {
		t.Errorf("expected summary on stdout:\n%s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "crawling page") {
		t.Errorf("expected progress logs on stderr:\n%s", stderr.String())
	}

	md, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("expected markdown report: %v", err)
	}
	if !strings.Contains(string(md), "Crawl Report: 127.0.0.1") {
		t.Errorf("unexpected report:\n%s", md)
	}

	// The run is now in the history database.
	var history bytes.Buffer
	historyCmd := NewRootCmd()
	historyCmd.SetOut(&history)
	historyCmd.SetArgs([]string{"history", "127.0.0.1", "--db-dir", dbDir})
	if err := historyCmd.Execute(); err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(history.String(), "completed") || !strings.Contains(history.String(), server.URL) {
		t.Errorf("expected recorded run in history:\n%s", history.String())
	}
}

func TestCrawlJSONLogs(t *testing.T) {
	t.Parallel()

	server := newTestSite(t)

	var stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{
		"-c", writeConfig(t, ""),
		"-d", t.TempDir(),
		"--no-db",
		"--log-format", "json",
		"--log-level", "debug",
		server.URL,
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("crawl failed: %v\n%s", err, stderr.String())
	}

	var sawSteps bool
	for line := range strings.Lines(stderr.String()) {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("log line is not json: %v\n%s", err, line)
		}
		if rec["msg"] == "pipeline ready" {
			sawSteps = true
			steps, _ := rec["steps"].([]any)
			if len(steps) != 2 || steps[0] != "crawl" {
				t.Errorf("unexpected steps %v", rec["steps"])
			}
		}
	}
	if !sawSteps {
		t.Errorf("expected a pipeline ready record:\n%s", stderr.String())
	}
}

func TestCrawlHonorHistory(t *testing.T) {
	t.Parallel()

	server := newTestSite(t)
	dbDir := t.TempDir()
	cfgPath := writeConfig(t, "")

	crawl := func(extra ...string) []string {
		t.Helper()

		outDir := t.TempDir()
		cmd := NewRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		args := append([]string{"-c", cfgPath, "-d", outDir, "--db-dir", dbDir}, extra...)
		cmd.SetArgs(append(args, server.URL))
		if err := cmd.Execute(); err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		data, err := os.ReadFile(filepath.Join(outDir, "127.0.0.1.txt"))
		if err != nil {
			t.Fatalf("expected output file: %v", err)
		}
		return strings.Fields(string(data))
	}

	// /logout returns 404 but still counts as expanded.
	first := crawl()
	if len(first) != 5 {
		t.Fatalf("expected 5 urls on the first run, got %v", first)
	}

	// Every same-host page was expanded moments ago, so only the off-host
	// URL, which is never expanded, is discovered again.
	second := crawl("--honor-history")
	if want := []string{"https://other.example/x"}; !slices.Equal(second, want) {
		t.Errorf("second run = %v, want %v", second, want)
	}
}
