package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/eugener/wpaddons/internal/telemetry"
)

// ExpiredDeleter is the persistence interface consumed by TransientSweeper.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// TransientSweeper periodically removes expired transients so the store does
// not grow with slugs that are never requested again.
type TransientSweeper struct {
	store    ExpiredDeleter
	interval time.Duration
	metrics  *telemetry.Metrics // nil = no metrics
}

// NewTransientSweeper creates a sweeper running every interval.
func NewTransientSweeper(store ExpiredDeleter, interval time.Duration, metrics *telemetry.Metrics) *TransientSweeper {
	return &TransientSweeper{store: store, interval: interval, metrics: metrics}
}

// Run sweeps once at start and then on every tick until ctx is cancelled.
func (w *TransientSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *TransientSweeper) sweep(ctx context.Context) {
	n, err := w.store.DeleteExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.ErrorContext(ctx, "transient sweep failed", "error", err)
		}
		return
	}
	if n > 0 {
		slog.DebugContext(ctx, "expired transients removed", "count", n)
		if w.metrics != nil {
			w.metrics.TransientsSwept.Add(float64(n))
		}
	}
}
