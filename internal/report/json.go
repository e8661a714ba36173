package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nao1215/sitecrawl/internal/model"
)

// JSONWriter writes a URLSet as {"website_hostname": ..., "all_urls": [...]}.
// HTML characters in URLs (&, <, >) are written as is, not \u-escaped.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output with the given prefix and indent.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter. Output is compact unless an indent
// option is given.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs set followed by a newline.
func (w *JSONWriter) Write(set *URLSet) (int, error) {
	return w.writeJSON(NewURLSet(set.Hostname, set.URLs))
}

// WriteRun outputs a run summary as JSON.
func (w *JSONWriter) WriteRun(run *model.CrawlRun) (int, error) {
	return w.writeJSON(run)
}

// WriteDiff outputs an artifact comparison as JSON.
func (w *JSONWriter) WriteDiff(diff *URLSetDiff) (int, error) {
	return w.writeJSON(diff)
}

// Extension returns "json".
func (w *JSONWriter) Extension() string {
	return model.FormatStructured.Extension()
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.indent {
		enc.SetIndent(w.indentPrefix, w.indentString)
	}
	if err := enc.Encode(v); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
