package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
)

func TestParser(t *testing.T) {
	t.Parallel()

	t.Run("extracts title", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title>Test Page</title></head><body></body></html>`
		result, err := NewParser().Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if result.Title != "Test Page" {
			t.Errorf("expected title 'Test Page', got %q", result.Title)
		}
	})

	t.Run("returns hrefs unresolved in document order", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/internal">Internal</a>
			<a href="https://example.com/same">Same</a>
			<a href="../up">Up</a>
			<a href="mailto:someone@example.com">Mail</a>
		</body></html>`

		hrefs, err := NewParser().Hrefs(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		want := []string{"/internal", "https://example.com/same", "../up", "mailto:someone@example.com"}
		if !slices.Equal(hrefs, want) {
			t.Errorf("expected %v, got %v", want, hrefs)
		}
	})

	t.Run("keeps empty href and ignores anchors without href", func(t *testing.T) {
		t.Parallel()

		html := `<a href="">empty</a><a name="top">no href</a><a href="/x">x</a>`
		hrefs, err := NewParser().Hrefs(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		want := []string{"", "/x"}
		if !slices.Equal(hrefs, want) {
			t.Errorf("expected %v, got %v", want, hrefs)
		}
	})

	t.Run("no links yields empty slice", func(t *testing.T) {
		t.Parallel()

		hrefs, err := NewParser().Hrefs(strings.NewReader(`<p>nothing here</p>`))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if hrefs == nil || len(hrefs) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", hrefs)
		}
	})
}

func TestHTTPSource(t *testing.T) {
	t.Parallel()

	t.Run("returns hrefs of an html page", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<html><body><a href="/a">A</a><a href="/b">B</a></body></html>`))
		}))
		defer server.Close()

		hrefs, err := NewHTTPSource().FetchLinks(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(hrefs, []string{"/a", "/b"}) {
			t.Errorf("unexpected hrefs: %v", hrefs)
		}
	})

	t.Run("sends user agent", func(t *testing.T) {
		t.Parallel()

		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "text/html")
		}))
		defer server.Close()

		src := NewHTTPSource(WithUserAgent("test-agent/1.0"))
		if _, err := src.FetchLinks(context.Background(), server.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "test-agent/1.0" {
			t.Errorf("expected user agent test-agent/1.0, got %q", got)
		}
	})

	t.Run("non-2xx returns StatusError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewHTTPSource().FetchLinks(context.Background(), server.URL)
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("expected *StatusError, got %v", err)
		}
		if statusErr.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", statusErr.StatusCode)
		}
		if !strings.Contains(statusErr.Error(), "404") {
			t.Errorf("error message should mention status: %q", statusErr.Error())
		}
	})

	t.Run("non-html yields no links", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte(`<a href="/hidden">not html</a>`))
		}))
		defer server.Close()

		hrefs, err := NewHTTPSource().FetchLinks(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hrefs) != 0 {
			t.Errorf("expected no links, got %v", hrefs)
		}
	})

	t.Run("body beyond limit is not parsed", func(t *testing.T) {
		t.Parallel()

		body := `<a href="/first">1</a>` + strings.Repeat(" ", 200) + `<a href="/second">2</a>`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(body))
		}))
		defer server.Close()

		hrefs, err := NewHTTPSource(WithMaxBodySize(100)).FetchLinks(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(hrefs, []string{"/first"}) {
			t.Errorf("expected only /first, got %v", hrefs)
		}
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := NewHTTPSource().FetchLinks(ctx, server.URL); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestIsHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        bool
	}{
		{"", true},
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"application/xhtml+xml", true},
		{"application/json", false},
		{"image/png", false},
		{";;;", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			t.Parallel()

			if got := isHTML(tt.contentType); got != tt.want {
				t.Errorf("isHTML(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestBrowserSource(t *testing.T) {
	t.Parallel()

	t.Run("fetch before open fails", func(t *testing.T) {
		t.Parallel()

		_, err := NewBrowserSource().FetchLinks(context.Background(), "https://example.com")
		if !errors.Is(err, ErrBrowserNotOpen) {
			t.Errorf("expected ErrBrowserNotOpen, got %v", err)
		}
	})

	t.Run("close without open is a no-op", func(t *testing.T) {
		t.Parallel()

		b := NewBrowserSource(WithExecPath("/nonexistent/chrome"))
		if err := b.Close(); err != nil {
			t.Errorf("first close: %v", err)
		}
		if err := b.Close(); err != nil {
			t.Errorf("second close: %v", err)
		}
	})
}
