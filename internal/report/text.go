package report

import (
	"bufio"
	"io"

	"github.com/nao1215/sitecrawl/internal/model"
)

// TextWriter writes one URL per line, each terminated by "\n".
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the URLs of set. The hostname is not written.
func (w *TextWriter) Write(set *URLSet) (int, error) {
	bw := bufio.NewWriter(w.output)
	total := 0
	for _, u := range set.URLs {
		n, err := bw.WriteString(u + "\n")
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}

// Extension returns "txt".
func (w *TextWriter) Extension() string {
	return model.FormatLineDelimited.Extension()
}
