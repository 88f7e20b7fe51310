package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/eugener/wpaddons/internal/telemetry"
)

type fakeDeleter struct {
	calls atomic.Int32
	n     int64
	err   error
}

func (d *fakeDeleter) DeleteExpired(context.Context) (int64, error) {
	d.calls.Add(1)
	return d.n, d.err
}

func TestTransientSweeper_SweepsOnStart(t *testing.T) {
	t.Parallel()
	store := &fakeDeleter{n: 3}
	m := telemetry.NewMetrics(prometheus.NewRegistry())
	w := NewTransientSweeper(store, time.Hour, m)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for store.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(m.TransientsSwept); got != 3 {
		t.Errorf("swept = %v, want 3", got)
	}
}

func TestTransientSweeper_ErrorDoesNotStop(t *testing.T) {
	t.Parallel()
	store := &fakeDeleter{err: errors.New("disk I/O error")}
	w := NewTransientSweeper(store, 10*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if store.calls.Load() < 2 {
		t.Errorf("calls = %d, want repeated sweeps", store.calls.Load())
	}
}
