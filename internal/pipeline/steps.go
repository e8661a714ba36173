package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/sitecrawl/internal/model"
	"github.com/nao1215/sitecrawl/internal/report"
)

// Runner runs a crawl to completion. *crawler.Engine implements it.
type Runner interface {
	Run(ctx context.Context) (*model.CrawlRun, error)
}

// CrawlStep runs the crawl engine and copies its summary into the run.
type CrawlStep struct {
	engine Runner
}

// NewCrawlStep creates a CrawlStep for engine.
func NewCrawlStep(engine Runner) *CrawlStep {
	return &CrawlStep{engine: engine}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl. A cancelled crawl still fills run, with status
// cancelled, before the context error is returned.
func (s *CrawlStep) Do(ctx context.Context, run *model.CrawlRun) error {
	result, err := s.engine.Run(ctx)
	if result != nil {
		id := run.ID
		*run = *result
		run.ID = id
	}
	return err
}

// RunStore persists run summaries. *database.CrawlDB implements it.
type RunStore interface {
	SaveRun(ctx context.Context, run *model.CrawlRun) error
}

// RecordRunStep writes the run summary to the history database.
type RecordRunStep struct {
	store  RunStore
	logger *slog.Logger
}

// RecordRunStepOption configures a RecordRunStep.
type RecordRunStepOption func(*RecordRunStep)

// WithRecordLogger sets a custom logger for the record step.
func WithRecordLogger(logger *slog.Logger) RecordRunStepOption {
	return func(s *RecordRunStep) {
		s.logger = logger
	}
}

// NewRecordRunStep creates a RecordRunStep.
func NewRecordRunStep(store RunStore, opts ...RecordRunStepOption) *RecordRunStep {
	s := &RecordRunStep{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *RecordRunStep) Name() string {
	return "record_run"
}

// Do saves run. Runs that never finished are recorded as failed.
func (s *RecordRunStep) Do(ctx context.Context, run *model.CrawlRun) error {
	if run.Status == model.RunInProgress {
		run.Status = model.RunFailed
	}
	if err := s.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	s.logger.Debug("recorded run", "id", run.ID, "hostname", run.Hostname, "status", string(run.Status))
	return nil
}

// SummaryStep prints a plain-text run summary.
type SummaryStep struct {
	writer *report.SimpleWriter
}

// NewSummaryStep creates a SummaryStep that writes to w.
func NewSummaryStep(w io.Writer, opts ...report.SimpleWriterOption) *SummaryStep {
	return &SummaryStep{writer: report.NewSimpleWriter(w, opts...)}
}

// Name returns the step name.
func (s *SummaryStep) Name() string {
	return "summary"
}

// Do writes the summary.
func (s *SummaryStep) Do(_ context.Context, run *model.CrawlRun) error {
	if _, err := s.writer.WriteRun(run); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// MarkdownReportStep writes a Markdown run report to a file.
type MarkdownReportStep struct {
	path string
}

// NewMarkdownReportStep creates a MarkdownReportStep writing to path.
func NewMarkdownReportStep(path string) *MarkdownReportStep {
	return &MarkdownReportStep{path: path}
}

// Name returns the step name.
func (s *MarkdownReportStep) Name() string {
	return "markdown_report"
}

// Do writes the report, creating parent directories as needed.
func (s *MarkdownReportStep) Do(_ context.Context, run *model.CrawlRun) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if _, err := report.NewMarkdownWriter(f).WriteRun(run); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return f.Close()
}
