package output

import (
	"bufio"
	"io"

	"github.com/jmylchreest/dutyroster/internal/report"
	"github.com/jmylchreest/dutyroster/pkg/roster"
)

// TextWriter writes the plain-text duty report.
type TextWriter struct {
	w    *bufio.Writer
	docs []roster.Document
}

// NewTextWriter creates a text report writer.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w)}
}

// Write buffers a document.
func (w *TextWriter) Write(doc roster.Document) error {
	w.docs = append(w.docs, doc)
	return nil
}

// WriteAll buffers documents.
func (w *TextWriter) WriteAll(docs []roster.Document) error {
	w.docs = append(w.docs, docs...)
	return nil
}

// Close renders the report for all buffered documents.
func (w *TextWriter) Close() error {
	if _, err := w.w.WriteString(report.Text(w.docs)); err != nil {
		return err
	}
	return w.w.Flush()
}
