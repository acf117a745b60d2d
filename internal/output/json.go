package output

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/jmylchreest/dutyroster/pkg/roster"
)

// JSONWriter writes all documents as one JSON array on Close.
type JSONWriter struct {
	w      *bufio.Writer
	pretty bool
	indent string
	docs   []roster.Document
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		pretty: pretty,
		indent: indent,
		docs:   make([]roster.Document, 0),
	}
}

// Write buffers a document.
func (w *JSONWriter) Write(doc roster.Document) error {
	w.docs = append(w.docs, doc)
	return nil
}

// WriteAll buffers documents.
func (w *JSONWriter) WriteAll(docs []roster.Document) error {
	w.docs = append(w.docs, docs...)
	return nil
}

// Close writes the buffered documents as a JSON array.
func (w *JSONWriter) Close() error {
	var (
		data []byte
		err  error
	)
	if w.pretty {
		data, err = json.MarshalIndent(w.docs, "", w.indent)
	} else {
		data, err = json.Marshal(w.docs)
	}
	if err != nil {
		return err
	}

	if _, err := w.w.Write(data); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}
	return w.w.Flush()
}

// JSONLWriter writes one document per line as it arrives.
type JSONLWriter struct {
	w *bufio.Writer
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{
		w: bufio.NewWriter(w),
	}
}

// Write writes a single document as a JSON line.
func (w *JSONLWriter) Write(doc roster.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	if _, err := w.w.Write(data); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}
	return w.w.Flush()
}

// WriteAll writes documents as JSON lines.
func (w *JSONLWriter) WriteAll(docs []roster.Document) error {
	for _, doc := range docs {
		if err := w.Write(doc); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.w.Flush()
}
