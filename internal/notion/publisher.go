package notion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

// ErrBlocksRemain is returned by Clear when blocks survive every pass.
var ErrBlocksRemain = errors.New("page still has blocks after clearing")

// Options tunes the publisher. Zero values take the defaults below.
type Options struct {
	ArchiveBatch   int           // blocks archived per batch (20)
	ArchiveWorkers int           // concurrent archive calls per batch (5)
	ClearPasses    int           // batched passes before the sequential sweep (3)
	AppendBatch    int           // paragraphs per append call (MaxBatch)
	BatchPause     time.Duration // pause between archive batches (300ms)
	PassPause      time.Duration // pause between passes (1s)
	Settle         time.Duration // wait after clearing before the final check (2s)
	Attempts       uint          // attempts per list/append call (3)
	RetryDelay     time.Duration // delay between attempts (1s)
	Now            func() time.Time
	Logger         *slog.Logger
}

// DefaultOptions returns the production pacing.
func DefaultOptions() Options {
	return Options{
		ArchiveBatch:   20,
		ArchiveWorkers: 5,
		ClearPasses:    3,
		AppendBatch:    MaxBatch,
		BatchPause:     300 * time.Millisecond,
		PassPause:      time.Second,
		Settle:         2 * time.Second,
		Attempts:       3,
		RetryDelay:     time.Second,
		Now:            time.Now,
	}
}

// Publisher clears a page and writes the report to it.
type Publisher struct {
	api    BlockAPI
	pageID string
	opts   Options
	log    *slog.Logger
}

// NewPublisher returns a publisher for pageID. Non-positive counts in opts
// fall back to DefaultOptions; durations are used as given so tests can
// run without pauses.
func NewPublisher(api BlockAPI, pageID string, opts Options) *Publisher {
	def := DefaultOptions()
	if opts.ArchiveBatch <= 0 {
		opts.ArchiveBatch = def.ArchiveBatch
	}
	if opts.ArchiveWorkers <= 0 {
		opts.ArchiveWorkers = def.ArchiveWorkers
	}
	if opts.ClearPasses <= 0 {
		opts.ClearPasses = def.ClearPasses
	}
	if opts.AppendBatch <= 0 || opts.AppendBatch > MaxBatch {
		opts.AppendBatch = def.AppendBatch
	}
	if opts.Attempts == 0 {
		opts.Attempts = def.Attempts
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Publisher{api: api, pageID: pageID, opts: opts, log: log.With("page_id", pageID)}
}

// Publish replaces the page contents with the stamped report lines.
func (p *Publisher) Publish(ctx context.Context, lines []string) error {
	if err := p.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear page: %w", err)
	}

	paragraphs := Compose(lines, p.opts.Now())
	batches := Batches(paragraphs, p.opts.AppendBatch)
	for i, batch := range batches {
		err := p.withRetry(ctx, "append", func() error {
			return p.api.Append(ctx, p.pageID, batch)
		})
		if err != nil {
			return fmt.Errorf("failed to append batch %d/%d: %w", i+1, len(batches), err)
		}
		p.log.Info("batch appended", "batch", i+1, "blocks", len(batch))
	}

	p.log.Info("page updated", "blocks", humanize.Comma(int64(len(paragraphs))), "batches", len(batches))
	return nil
}

// Clear archives every child block of the page. Archiving is eventually
// consistent on Notion's side, so it re-lists after each pass, then sweeps
// leftovers one at a time and checks once more after a settle delay.
func (p *Publisher) Clear(ctx context.Context) error {
	ids, err := p.listAll(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		p.log.Info("page already empty")
		return nil
	}
	p.log.Info("clearing page", "blocks", humanize.Comma(int64(len(ids))))

	var archived int64
	for pass := 1; pass <= p.opts.ClearPasses; pass++ {
		current, err := p.listAll(ctx)
		if err != nil {
			return err
		}
		if len(current) == 0 {
			break
		}
		p.log.Debug("clear pass", "pass", pass, "remaining", len(current))

		n, err := p.archiveBatches(ctx, current)
		archived += n
		if err != nil {
			return err
		}

		remaining, err := p.listAll(ctx)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			break
		}
		p.log.Info("blocks remain after pass", "pass", pass, "remaining", len(remaining))
		if pass < p.opts.ClearPasses {
			if err := sleep(ctx, p.opts.PassPause); err != nil {
				return err
			}
		}
	}

	leftovers, err := p.listAll(ctx)
	if err != nil {
		return err
	}
	if len(leftovers) > 0 {
		p.log.Warn("archiving leftovers individually", "blocks", len(leftovers))
		for _, id := range leftovers {
			if err := p.api.Archive(ctx, id); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.log.Error("archive failed", "block_id", id, "error", err)
				continue
			}
			archived++
		}
	}

	if err := sleep(ctx, p.opts.Settle); err != nil {
		return err
	}

	final, err := p.listAll(ctx)
	if err != nil {
		return err
	}
	if len(final) > 0 {
		return fmt.Errorf("%w: %d left", ErrBlocksRemain, len(final))
	}

	p.log.Info("page cleared", "archived", humanize.Comma(archived))
	return nil
}

// archiveBatches archives ids in batches with bounded concurrency. Failed
// archives are logged and left for the next pass.
func (p *Publisher) archiveBatches(ctx context.Context, ids []string) (int64, error) {
	var ok atomic.Int64
	for start := 0; start < len(ids); start += p.opts.ArchiveBatch {
		batch := ids[start:min(start+p.opts.ArchiveBatch, len(ids))]

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.opts.ArchiveWorkers)
		for _, id := range batch {
			g.Go(func() error {
				if err := p.api.Archive(gctx, id); err != nil {
					p.log.Debug("archive failed", "block_id", id, "error", err)
					return nil
				}
				ok.Add(1)
				return nil
			})
		}
		_ = g.Wait()
		if err := ctx.Err(); err != nil {
			return ok.Load(), err
		}

		p.log.Debug("archive batch done", "archived", ok.Load(), "of", len(ids))
		if err := sleep(ctx, p.opts.BatchPause); err != nil {
			return ok.Load(), err
		}
	}
	return ok.Load(), nil
}

// listAll follows pagination and returns every child block ID.
func (p *Publisher) listAll(ctx context.Context) ([]string, error) {
	var (
		all    []string
		cursor string
	)
	for {
		var (
			ids  []string
			next string
		)
		err := p.withRetry(ctx, "list", func() error {
			var err error
			ids, next, err = p.api.ListChildren(ctx, p.pageID, cursor)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list page blocks: %w", err)
		}
		all = append(all, ids...)
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}

func (p *Publisher) withRetry(ctx context.Context, op string, fn func() error) error {
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(p.opts.Attempts),
		retry.Delay(p.opts.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			p.log.Warn("notion call failed, retrying", "op", op, "attempt", n+1, "error", err)
		}),
	)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
