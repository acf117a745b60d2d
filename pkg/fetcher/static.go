package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// StaticFetcher uses Colly for plain HTTP fetching.
type StaticFetcher struct {
	config Config
	log    *slog.Logger
}

// NewStatic creates a new static fetcher.
func NewStatic(cfg Config) *StaticFetcher {
	cfg = cfg.withDefaults()
	return &StaticFetcher{config: cfg, log: cfg.Logger}
}

// Fetch retrieves page content using Colly. Response bodies are decoded to
// UTF-8 from whatever charset the page declares or colly detects.
func (f *StaticFetcher) Fetch(ctx context.Context, targetURL string, opts Options) (Content, error) {
	f.log.Debug("static fetch starting", "url", targetURL)

	result := Content{
		URL:       targetURL,
		FetchedAt: time.Now(),
	}

	// Create a new collector for each request
	userAgent := coalesce(opts.UserAgent, f.config.UserAgent)
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.DetectCharset(),
		colly.StdlibContext(ctx),
	)

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = f.config.Timeout
	}
	c.SetRequestTimeout(timeout)
	f.log.Debug("static fetch configured", "user_agent", userAgent, "timeout", timeout)

	if len(opts.Headers) > 0 {
		c.OnRequest(func(r *colly.Request) {
			for k, v := range opts.Headers {
				r.Headers.Set(k, v)
			}
		})
	}

	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
		result.ContentType = r.Headers.Get("Content-Type")
		result.HTML = string(r.Body)
		f.log.Debug("static fetch response received",
			"status", r.StatusCode,
			"content_type", result.ContentType,
			"body_size", len(r.Body))
	})

	// colly reports non-2xx responses here
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			result.StatusCode = r.StatusCode
			fetchErr = fmt.Errorf("%w: %d from %s", ErrHTTPStatus, r.StatusCode, targetURL)
		} else {
			fetchErr = fmt.Errorf("fetch error: %w", err)
		}
		f.log.Debug("static fetch error", "status", result.StatusCode, "error", err)
	})

	if err := c.Visit(targetURL); err != nil && fetchErr == nil {
		f.log.Debug("static fetch visit failed", "url", targetURL, "error", err)
		return result, fmt.Errorf("failed to visit URL: %w", err)
	}
	if fetchErr != nil {
		return result, fetchErr
	}

	if result.HTML != "" {
		result.Title = pageTitle(result.HTML)
	}

	f.log.Debug("static fetch complete", "url", targetURL, "title", result.Title)
	return result, nil
}

// Close releases resources.
func (f *StaticFetcher) Close() error {
	return nil
}

// Type returns the fetcher type.
func (f *StaticFetcher) Type() string {
	return ModeStatic
}

// pageTitle returns the document <title>, or "" if it cannot be read.
func pageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
