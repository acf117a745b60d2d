// Package updater runs one fetch, parse and publish cycle.
package updater

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jmylchreest/dutyroster/internal/htmldoc"
	"github.com/jmylchreest/dutyroster/internal/report"
	"github.com/jmylchreest/dutyroster/pkg/fetcher"
	"github.com/jmylchreest/dutyroster/pkg/roster"
)

// ErrNoCalendars is returned when the page has no duty calendar.
var ErrNoCalendars = errors.New("no calendars found")

// Publisher receives the rendered report lines.
type Publisher interface {
	Publish(ctx context.Context, lines []string) error
}

// Updater wires the fetcher, parser and publisher together.
type Updater struct {
	Fetcher   fetcher.Fetcher
	Parser    *roster.Parser
	Publisher Publisher // may be nil for Collect-only use
	SourceURL string
	Logger    *slog.Logger
}

// Result describes a completed run.
type Result struct {
	RunID     string
	Documents []roster.Document
	Lines     []string
	Duration  time.Duration
}

func (u *Updater) logger() *slog.Logger {
	if u.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return u.Logger
}

// Collect fetches the source page and parses every calendar on it.
func (u *Updater) Collect(ctx context.Context) ([]roster.Document, error) {
	return u.collect(ctx, u.logger())
}

func (u *Updater) collect(ctx context.Context, log *slog.Logger) ([]roster.Document, error) {
	log.Info("fetching calendar page", "url", u.SourceURL, "fetcher", u.Fetcher.Type())
	content, err := u.Fetcher.Fetch(ctx, u.SourceURL, fetcher.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u.SourceURL, err)
	}

	root, err := htmldoc.Load(strings.NewReader(content.HTML))
	if err != nil {
		return nil, err
	}

	parser := u.Parser
	if parser == nil {
		opts := roster.DefaultOptions()
		opts.Logger = log
		parser = roster.NewParser(opts)
	}

	docs := parser.Parse(root)
	if len(docs) == 0 {
		return nil, ErrNoCalendars
	}
	for _, d := range docs {
		log.Info("calendar parsed", "title", d.Title, "entries", len(d.Entries))
	}
	return docs, nil
}

// Run performs a full update: fetch, parse, render and publish.
func (u *Updater) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{RunID: uuid.NewString()}
	log := u.logger().With("run_id", res.RunID)

	if u.Publisher == nil {
		return res, errors.New("updater has no publisher")
	}

	log.Info("roster update starting")

	docs, err := u.collect(ctx, log)
	if err != nil {
		log.Error("roster update failed", "stage", "collect", "error", err)
		return res, err
	}
	res.Documents = docs
	res.Lines = report.Lines(docs)

	if err := u.Publisher.Publish(ctx, res.Lines); err != nil {
		log.Error("roster update failed", "stage", "publish", "error", err)
		return res, fmt.Errorf("failed to publish: %w", err)
	}

	res.Duration = time.Since(start)
	log.Info("roster update complete", "calendars", len(docs), "lines", len(res.Lines), "duration", res.Duration)
	return res, nil
}
