package notion

import (
	"context"

	"golang.org/x/time/rate"
)

// Notion allows an average of three requests per second per integration.
const (
	DefaultRate  = rate.Limit(3)
	DefaultBurst = 3
)

type limitedAPI struct {
	next    BlockAPI
	limiter *rate.Limiter
}

// RateLimited wraps api so every call first waits on a shared limiter.
func RateLimited(api BlockAPI, r rate.Limit, burst int) BlockAPI {
	return &limitedAPI{next: api, limiter: rate.NewLimiter(r, burst)}
}

func (l *limitedAPI) ListChildren(ctx context.Context, parentID, cursor string) ([]string, string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}
	return l.next.ListChildren(ctx, parentID, cursor)
}

func (l *limitedAPI) Archive(ctx context.Context, blockID string) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}
	return l.next.Archive(ctx, blockID)
}

func (l *limitedAPI) Append(ctx context.Context, parentID string, paragraphs []Paragraph) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}
	return l.next.Append(ctx, parentID, paragraphs)
}
