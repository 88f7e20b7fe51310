package worker

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Runner manages a set of workers, cancelling all on first error.
type Runner struct {
	workers []Worker
}

// NewRunner creates a Runner with the given workers.
func NewRunner(workers ...Worker) *Runner {
	return &Runner{workers: workers}
}

// Len returns the number of managed workers.
func (r *Runner) Len() int { return len(r.workers) }

// Run starts all workers in parallel and blocks until they all return.
// The first non-nil error cancels the others and is returned.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, w := range r.workers {
		slog.InfoContext(ctx, "worker started", "type", workerName(w))
		g.Go(func() error {
			return w.Run(ctx)
		})
	}
	return g.Wait()
}

func workerName(w Worker) string {
	switch w.(type) {
	case *TransientSweeper:
		return "transient_sweeper"
	case *CacheWarmer:
		return "cache_warmer"
	default:
		return "unknown"
	}
}
