package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sitecrawl/internal/model"
)

// MarkdownWriter renders run summaries and run history as Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// WriteRun outputs a report for a single run.
func (w *MarkdownWriter) WriteRun(run *model.CrawlRun) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl Report: " + run.Hostname)
	md.PlainText("")

	finished := "-"
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.Format(timeLayout)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", "`" + run.SeedURL + "`"},
			{"Format", run.Format.String()},
			{"Started", run.StartedAt.Format(timeLayout)},
			{"Finished", finished},
			{"Duration", run.Duration().Round(time.Millisecond).String()},
			{"Status", statusBadge(run)},
		},
	})
	md.PlainText("")

	md.H2("Results")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Pages expanded", strconv.Itoa(run.Expanded)},
			{"Fetch failures", strconv.Itoa(run.FetchFailures)},
			{"URLs discovered", strconv.Itoa(run.Discovered)},
			{"URLs saved", strconv.Itoa(run.Saved)},
			{"Checkpoints written", strconv.Itoa(run.Checkpoints)},
			{"Checkpoint failures", strconv.Itoa(run.CheckpointFailures)},
		},
	})
	md.PlainText("")

	if run.Expanded > 0 {
		w.writeFetchChart(md, run)
	}
	w.writeAlert(md, run)

	if run.OutputPath != "" {
		md.PlainTextf("Artifact: `%s`", run.OutputPath)
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// WriteHistory outputs a table of runs for hostname. An empty hostname
// means all hosts.
func (w *MarkdownWriter) WriteHistory(hostname string, runs []*model.CrawlRun) (int, error) {
	md := markdown.NewMarkdown(w.output)

	title := "Crawl History"
	if hostname != "" {
		title += ": " + hostname
	}
	md.H1(title)
	md.PlainText("")

	if len(runs) == 0 {
		md.Note("No crawl runs recorded.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			strconv.FormatInt(r.ID, 10),
			r.StartedAt.Format(timeLayout),
			string(r.Status),
			strconv.Itoa(r.Expanded),
			strconv.Itoa(r.Discovered),
			strconv.Itoa(r.Saved),
			"`" + r.SeedURL + "`",
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Status", "Expanded", "Discovered", "Saved", "Seed"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeFetchChart(md *markdown.Markdown, run *model.CrawlRun) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Fetch Outcomes"),
		piechart.WithShowData(true),
	)
	if ok := run.Expanded - run.FetchFailures; ok > 0 {
		chart.LabelAndIntValue("Fetched", uint64(ok))
	}
	if run.FetchFailures > 0 {
		chart.LabelAndIntValue("Failed", uint64(run.FetchFailures))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, run *model.CrawlRun) {
	switch {
	case run.Status == model.RunFailed:
		md.Cautionf("The crawl failed: %s", run.ErrorMessage)
	case run.CheckpointFailures > 0:
		md.Warningf("%d checkpoint write(s) failed. The artifact may be out of date.", run.CheckpointFailures)
	case run.Status == model.RunCancelled:
		md.Importantf("The crawl was cancelled after %d page(s). Results are partial.", run.Expanded)
	case run.Expanded > 0 && run.FetchFailures == run.Expanded:
		md.Warningf("All %d page fetch(es) failed.", run.FetchFailures)
	case run.FetchFailures > 0:
		md.Note(strconv.Itoa(run.FetchFailures) + " page(s) could not be fetched and were skipped.")
	default:
		md.Tip("Every discovered page was fetched successfully.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sitecrawl](https://github.com/nao1215/sitecrawl)*")
}

func statusBadge(run *model.CrawlRun) string {
	switch run.Status {
	case model.RunCompleted:
		return "✅ Completed"
	case model.RunCancelled:
		return "⚠️ Cancelled (partial results)"
	case model.RunFailed:
		return "❌ Failed - " + run.ErrorMessage
	default:
		return string(run.Status)
	}
}

// WriteDiff outputs the comparison of two artifacts.
func (w *MarkdownWriter) WriteDiff(diff *URLSetDiff) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("URL Comparison: " + diff.Hostname)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Previous URLs", strconv.Itoa(diff.PreviousCount)},
			{"Current URLs", strconv.Itoa(diff.CurrentCount)},
			{"Change", formatDelta(diff.Delta())},
			{"Added", strconv.Itoa(len(diff.Added))},
			{"Removed", strconv.Itoa(len(diff.Removed))},
			{"Unchanged", strconv.Itoa(diff.Unchanged)},
		},
	})
	md.PlainText("")

	if len(diff.Added) == 0 && len(diff.Removed) == 0 {
		md.Tip("No URLs were added or removed.")
		md.PlainText("")
	}
	if len(diff.Added) > 0 {
		md.H2("Added URLs")
		md.PlainText("")
		md.BulletList(codeSpans(diff.Added)...)
		md.PlainText("")
	}
	if len(diff.Removed) > 0 {
		md.H2("Removed URLs")
		md.PlainText("")
		md.BulletList(codeSpans(diff.Removed)...)
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

func codeSpans(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = "`" + v + "`"
	}
	return out
}

// formatDelta formats a signed count: "+3", "-2" or "0".
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
