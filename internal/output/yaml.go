package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/dutyroster/pkg/roster"
)

// YAMLWriter writes all documents as a YAML sequence on Close.
type YAMLWriter struct {
	w    *bufio.Writer
	docs []roster.Document
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{
		w:    bufio.NewWriter(w),
		docs: make([]roster.Document, 0),
	}
}

// Write buffers a document.
func (w *YAMLWriter) Write(doc roster.Document) error {
	w.docs = append(w.docs, doc)
	return nil
}

// WriteAll buffers documents.
func (w *YAMLWriter) WriteAll(docs []roster.Document) error {
	w.docs = append(w.docs, docs...)
	return nil
}

// Close writes the buffered documents.
func (w *YAMLWriter) Close() error {
	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)

	if err := encoder.Encode(w.docs); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	return w.w.Flush()
}
