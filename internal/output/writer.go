// Package output writes parsed calendar documents in the supported formats.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/dutyroster/pkg/roster"
)

// Format represents output format types.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Formats lists every supported format, for flag help.
var Formats = []Format{FormatText, FormatJSON, FormatJSONL, FormatYAML}

// Writer serializes calendar documents.
type Writer interface {
	// Write outputs (or buffers) a single document.
	Write(doc roster.Document) error

	// WriteAll outputs multiple documents.
	WriteAll(docs []roster.Document) error

	// Close flushes buffered documents.
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty bool
	indent string
}

// WithPretty enables pretty-printing (JSON only).
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the indentation string (JSON only).
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// ParseFormat validates a format name. Matching is case-insensitive and
// "txt" is accepted as an alias for text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "txt":
		return FormatText, nil
	case FormatText, FormatJSON, FormatJSONL, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// FormatForPath guesses a format from a file extension, defaulting to text.
func FormatForPath(path string) Format {
	switch {
	case strings.HasSuffix(path, ".jsonl"):
		return FormatJSONL
	case strings.HasSuffix(path, ".json"):
		return FormatJSON
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return FormatYAML
	default:
		return FormatText
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		pretty: true,
		indent: "  ",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatText:
		return NewTextWriter(w), nil
	case FormatJSON:
		return NewJSONWriter(w, cfg.pretty, cfg.indent), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
