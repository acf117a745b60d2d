// Package fetcher retrieves the HTML of the clinic information page.
// The static fetcher covers plain server-rendered pages; the dynamic
// fetcher drives a headless browser for pages that build the calendar
// with JavaScript.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Fetcher abstracts page fetching strategies.
type Fetcher interface {
	// Fetch retrieves page content from a URL.
	Fetch(ctx context.Context, url string, opts Options) (Content, error)

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns a string identifying the fetcher type (e.g., "static", "dynamic").
	Type() string
}

// Options controls a single fetch.
type Options struct {
	UserAgent       string
	Timeout         time.Duration
	WaitForSelector string // CSS selector to wait for (dynamic only)
	Headers         map[string]string
}

// Content represents fetched page data.
type Content struct {
	URL         string
	HTML        string
	Title       string
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}

// Config configures either fetcher.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Fetch modes accepted by New.
const (
	ModeStatic  = "static"
	ModeDynamic = "dynamic"
)

// Chrome user agent for better compatibility
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var (
	// ErrUnknownMode is returned by New for an unrecognised fetch mode.
	ErrUnknownMode = errors.New("unknown fetch mode")
	// ErrHTTPStatus indicates the server answered with a non-2xx status.
	ErrHTTPStatus = errors.New("unexpected HTTP status")
)

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: defaultUserAgent,
		Timeout:   30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.UserAgent == "" {
		c.UserAgent = def.UserAgent
	}
	if c.Timeout == 0 {
		c.Timeout = def.Timeout
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// New returns the fetcher for mode. An empty mode selects the static fetcher.
func New(mode string, cfg Config) (Fetcher, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeStatic:
		return NewStatic(cfg), nil
	case ModeDynamic:
		return NewDynamic(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
