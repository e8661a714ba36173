package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestCompareCmd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	previous := writeArtifact(t, dir, "example.com.txt",
		"https://example.com/a\nhttps://example.com/b\n")
	current := writeArtifact(t, dir, "example.com.json",
		`{"website_hostname":"example.com","all_urls":["https://example.com/a","https://example.com/c"]}`)

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := NewCompareCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		err := cmd.Execute()
		return out.String(), err
	}

	t.Run("text output mixes formats", func(t *testing.T) {
		t.Parallel()

		out, err := run(previous, current)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"[+] https://example.com/c", "[-] https://example.com/b", "Unchanged: 1"} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %q in:\n%s", want, out)
			}
		}
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()

		out, err := run("--json", previous, current)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var got struct {
			Added   []string `json:"added"`
			Removed []string `json:"removed"`
		}
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("invalid json: %v\n%s", err, out)
		}
		if len(got.Added) != 1 || len(got.Removed) != 1 {
			t.Errorf("unexpected diff: %+v", got)
		}
	})

	t.Run("markdown output", func(t *testing.T) {
		t.Parallel()

		out, err := run("-m", previous, current)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "# URL Comparison: example.com") {
			t.Errorf("unexpected markdown:\n%s", out)
		}
	})

	t.Run("json and markdown are exclusive", func(t *testing.T) {
		t.Parallel()

		if _, err := run("-j", "-m", previous, current); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := run(filepath.Join(dir, "nope.txt"), current); err == nil {
			t.Error("expected an error")
		}
	})
}
