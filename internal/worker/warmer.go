package worker

import (
	"context"
	"log/slog"
	"time"
)

// Refresher re-fetches the addons of one parent plugin into the cache.
type Refresher interface {
	Refresh(ctx context.Context, slug string) error
}

// CacheWarmer keeps the entries of a fixed set of slugs fresh, so page
// renders for them never wait on the remote API. The interval should be
// shorter than the cache TTL.
type CacheWarmer struct {
	refresher Refresher
	slugs     []string
	interval  time.Duration
}

// NewCacheWarmer creates a warmer for slugs.
func NewCacheWarmer(refresher Refresher, slugs []string, interval time.Duration) *CacheWarmer {
	return &CacheWarmer{refresher: refresher, slugs: slugs, interval: interval}
}

// Run warms every slug at start and then on every tick. A failed refresh is
// logged and the previous entry stays in place.
func (w *CacheWarmer) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.warm(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.warm(ctx)
		}
	}
}

func (w *CacheWarmer) warm(ctx context.Context) {
	for _, slug := range w.slugs {
		if ctx.Err() != nil {
			return
		}
		if err := w.refresher.Refresh(ctx, slug); err != nil {
			slog.WarnContext(ctx, "cache warm failed", "slug", slug, "error", err)
		}
	}
}
