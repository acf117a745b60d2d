package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
)

// Common Chrome/Chromium binary names across different systems
var chromeBinaryNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	"/snap/bin/chromium",
}

// DynamicFetcher uses chromedp for JavaScript-rendered pages.
type DynamicFetcher struct {
	config    Config
	log       *slog.Logger
	allocCtx  context.Context
	cancelCtx context.CancelFunc
}

// NewDynamic starts a headless browser allocator. The browser itself is
// launched lazily on the first fetch.
func NewDynamic(cfg Config) (*DynamicFetcher, error) {
	cfg = cfg.withDefaults()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if chromePath := FindChromePath(cfg.Logger); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	cfg.Logger.Debug("dynamic fetcher created", "timeout", cfg.Timeout)

	return &DynamicFetcher{
		config:    cfg,
		log:       cfg.Logger,
		allocCtx:  allocCtx,
		cancelCtx: cancel,
	}, nil
}

// Fetch renders the page in a fresh browser tab and captures its HTML.
func (f *DynamicFetcher) Fetch(ctx context.Context, targetURL string, opts Options) (Content, error) {
	result := Content{
		URL:       targetURL,
		FetchedAt: time.Now(),
	}

	browserCtx, cancelBrowser := chromedp.NewContext(f.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			f.log.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)
	defer cancelBrowser()

	// Propagate cancellation of the caller's context into the tab.
	stop := context.AfterFunc(ctx, cancelBrowser)
	defer stop()

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = f.config.Timeout
	}
	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	waitFor := coalesce(opts.WaitForSelector, "body")

	var html, title string
	actions := []chromedp.Action{
		chromedp.Navigate(targetURL),
		// WaitVisible polls forever on some pages; WaitReady does not.
		chromedp.WaitReady(waitFor),
		chromedp.OuterHTML("html", &html),
		chromedp.Title(&title),
	}

	f.log.Debug("chromedp executing actions", "url", targetURL, "wait_for", waitFor, "timeout", timeout)

	if err := chromedp.Run(timeoutCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("browser fetch cancelled: %w", ctx.Err())
		}
		return result, fmt.Errorf("browser automation failed: %w", err)
	}

	result.HTML = html
	result.Title = title
	result.StatusCode = 200 // chromedp doesn't easily expose status codes

	f.log.Debug("dynamic fetch complete", "url", targetURL, "title", title, "html_size", len(html))
	return result, nil
}

// Close shuts down the browser.
func (f *DynamicFetcher) Close() error {
	if f.cancelCtx != nil {
		f.cancelCtx()
	}
	return nil
}

// Type returns the fetcher type.
func (f *DynamicFetcher) Type() string {
	return ModeDynamic
}

// FindChromePath searches PATH and common install locations for a
// Chrome/Chromium binary. It returns "" when none is found.
func FindChromePath(log *slog.Logger) string {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	for _, name := range chromeBinaryNames {
		if path, err := exec.LookPath(name); err == nil {
			log.Debug("found Chrome binary", "name", name, "path", path)
			return path
		}
	}
	log.Warn("no Chrome binary found - dynamic fetch mode may not work")
	return ""
}
