package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/sitecrawl/internal/model"
)

// ReadURLSet parses an artifact previously written in format.
// Text artifacts carry no hostname; blank lines are ignored.
func ReadURLSet(r io.Reader, format model.OutputFormat) (*URLSet, error) {
	switch format {
	case model.FormatStructured:
		var set URLSet
		if err := json.NewDecoder(r).Decode(&set); err != nil {
			return nil, fmt.Errorf("failed to decode url set: %w", err)
		}
		return NewURLSet(set.Hostname, set.URLs), nil
	case model.FormatLineDelimited:
		urls := make([]string, 0)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				urls = append(urls, line)
			}
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("failed to read url list: %w", err)
		}
		return NewURLSet("", urls), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ReadURLSetFile reads an artifact, choosing the format from its extension.
// Files without a .json extension are read as text. A text artifact's
// hostname is taken from its file name.
func ReadURLSetFile(path string) (*URLSet, error) {
	f, err := os.Open(path) //nolint:gosec // reading a user-selected artifact is intended
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	format := model.FormatLineDelimited
	if strings.EqualFold(ext, model.FormatStructured.Extension()) {
		format = model.FormatStructured
	}

	set, err := ReadURLSet(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if set.Hostname == "" {
		set.Hostname = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return set, nil
}
