package report

import (
	"io"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/sitecrawl/internal/model"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// SimpleWriter prints plain-text run summaries for the terminal.
// Counts are grouped with thousands separators for the writer's language.
type SimpleWriter struct {
	baseWriter

	printer *message.Printer
	title   cases.Caser
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithLanguage selects the language used to format numbers.
func WithLanguage(tag language.Tag) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.printer = message.NewPrinter(tag)
		w.title = cases.Title(tag)
	}
}

// NewSimpleWriter creates a SimpleWriter. The default language is English.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
		title:      cases.Title(language.English),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteRun outputs a summary of run.
func (w *SimpleWriter) WriteRun(run *model.CrawlRun) (int, error) {
	var sb strings.Builder
	p := w.printer

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")
	p.Fprintf(&sb, "Crawl summary for %s\n", run.Hostname)
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")

	p.Fprintf(&sb, "Seed URL:        %s\n", run.SeedURL)
	p.Fprintf(&sb, "Status:          %s\n", w.statusText(run))
	p.Fprintf(&sb, "Started:         %s\n", run.StartedAt.Format(timeLayout))
	if !run.FinishedAt.IsZero() {
		p.Fprintf(&sb, "Duration:        %s\n", run.Duration().Round(time.Millisecond))
	}
	p.Fprintf(&sb, "Pages expanded:  %d\n", run.Expanded)
	p.Fprintf(&sb, "Fetch failures:  %d\n", run.FetchFailures)
	p.Fprintf(&sb, "URLs discovered: %d\n", run.Discovered)
	p.Fprintf(&sb, "URLs saved:      %d\n", run.Saved)
	p.Fprintf(&sb, "Checkpoints:     %d", run.Checkpoints)
	if run.CheckpointFailures > 0 {
		p.Fprintf(&sb, " (%d failed)", run.CheckpointFailures)
	}
	sb.WriteString("\n")
	if run.OutputPath != "" {
		p.Fprintf(&sb, "Output:          %s\n", run.OutputPath)
	}
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// WriteHistory outputs one line per run, newest first as given.
func (w *SimpleWriter) WriteHistory(runs []*model.CrawlRun) (int, error) {
	var sb strings.Builder
	p := w.printer

	if len(runs) == 0 {
		sb.WriteString("No crawl runs recorded.\n")
		return io.WriteString(w.output, sb.String())
	}

	p.Fprintf(&sb, "%-6s %-22s %-10s %9s %9s %9s  %s\n",
		"ID", "STARTED", "STATUS", "EXPANDED", "FOUND", "SAVED", "SEED")
	for _, r := range runs {
		p.Fprintf(&sb, "%-6d %-22s %-10s %9d %9d %9d  %s\n",
			r.ID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			string(r.Status),
			r.Expanded,
			r.Discovered,
			r.Saved,
			r.SeedURL,
		)
	}
	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) statusText(run *model.CrawlRun) string {
	s := w.title.String(string(run.Status))
	if run.ErrorMessage != "" {
		s += " (" + run.ErrorMessage + ")"
	}
	return s
}

// WriteDiff outputs the comparison of two artifacts.
func (w *SimpleWriter) WriteDiff(diff *URLSetDiff) (int, error) {
	var sb strings.Builder
	p := w.printer

	p.Fprintf(&sb, "URL comparison for %s\n", diff.Hostname)
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")
	p.Fprintf(&sb, "Previous:  %d URLs\n", diff.PreviousCount)
	p.Fprintf(&sb, "Current:   %d URLs (%s)\n", diff.CurrentCount, formatDelta(diff.Delta()))
	p.Fprintf(&sb, "Unchanged: %d\n", diff.Unchanged)

	if len(diff.Added) > 0 {
		p.Fprintf(&sb, "\nAdded (%d):\n", len(diff.Added))
		for _, u := range diff.Added {
			sb.WriteString("  [+] " + u + "\n")
		}
	}
	if len(diff.Removed) > 0 {
		p.Fprintf(&sb, "\nRemoved (%d):\n", len(diff.Removed))
		for _, u := range diff.Removed {
			sb.WriteString("  [-] " + u + "\n")
		}
	}

	return io.WriteString(w.output, sb.String())
}
