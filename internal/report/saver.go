package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/sitecrawl/internal/model"
	"github.com/nao1215/sitecrawl/internal/urlfilter"
)

// artifactPerm is the mode of the written artifact.
const artifactPerm = 0o644

// SaveResult describes one successful artifact write.
type SaveResult struct {
	// Path is the artifact location.
	Path string

	// Saved is the number of URLs written.
	Saved int

	// Dropped is the number of URLs removed by the save-time filter.
	Dropped int

	// Bytes is the artifact size.
	Bytes int

	// At is when the write completed.
	At time.Time
}

// Saver persists the URL set of one site to <dir>/<hostname>.<ext>.
// Every Save fully replaces the previous artifact.
type Saver struct {
	dir      string
	hostname string
	format   model.OutputFormat
	filter   *urlfilter.Filter
	logger   *slog.Logger
	now      func() time.Time
}

// SaverOption configures a Saver.
type SaverOption func(*Saver)

// WithSaverLogger sets the logger for save and filter records.
func WithSaverLogger(logger *slog.Logger) SaverOption {
	return func(s *Saver) {
		s.logger = logger
	}
}

// WithSaverClock overrides the time source used for SaveResult.At.
func WithSaverClock(now func() time.Time) SaverOption {
	return func(s *Saver) {
		s.now = now
	}
}

// NewSaver creates a Saver. filter may be nil, in which case URLs are
// written unfiltered. An empty dir means the current directory.
func NewSaver(dir, hostname string, format model.OutputFormat, filter *urlfilter.Filter, opts ...SaverOption) (*Saver, error) {
	if hostname == "" {
		return nil, ErrNoHostname
	}
	if _, err := NewWriter(format, nil); err != nil {
		return nil, err
	}
	if dir == "" {
		dir = "."
	}

	s := &Saver{
		dir:      dir,
		hostname: hostname,
		format:   format,
		filter:   filter,
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the artifact location.
func (s *Saver) Path() string {
	return filepath.Join(s.dir, s.hostname+"."+s.format.Extension())
}

// Save applies the save-time filter to urls and replaces the artifact with
// the result. The file is written to a temporary name in the same directory
// and renamed, so readers never see a partial artifact.
func (s *Saver) Save(urls []string) (*SaveResult, error) {
	kept := urls
	if s.filter != nil {
		kept = s.filter.ForSave(urls)
	}
	set := NewURLSet(s.hostname, kept)

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+s.hostname+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	w, err := NewWriter(s.format, tmp)
	if err != nil {
		_ = tmp.Close()
		return nil, err
	}
	n, err := w.Write(set)
	if err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("failed to write %s: %w", s.Path(), err)
	}
	if err = tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err = os.Chmod(tmpName, artifactPerm); err != nil {
		return nil, fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, s.Path()); err != nil {
		return nil, fmt.Errorf("failed to replace %s: %w", s.Path(), err)
	}

	result := &SaveResult{
		Path:    s.Path(),
		Saved:   len(set.URLs),
		Dropped: len(urls) - len(set.URLs),
		Bytes:   n,
		At:      s.now(),
	}
	s.logger.Info("saved urls to file", "count", result.Saved, "path", result.Path)
	return result, nil
}
