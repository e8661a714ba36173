// Package report writes crawl results.
//
// Two kinds of output live here:
//   - URL artifacts: the accumulated URL set for one site, written by a
//     Writer (JSONWriter or TextWriter) and persisted to disk by a Saver.
//   - Run summaries: human-readable descriptions of a model.CrawlRun,
//     written by SimpleWriter for the terminal and MarkdownWriter for files.
package report
