package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeWorker struct {
	runFn func(ctx context.Context) error
}

func (f *fakeWorker) Run(ctx context.Context) error {
	if f.runFn != nil {
		return f.runFn(ctx)
	}
	<-ctx.Done()
	return nil
}

func TestRunner_StopOnCancel(t *testing.T) {
	t.Parallel()
	r := NewRunner(&fakeWorker{}, &fakeWorker{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}
}

func TestRunner_PropagateError(t *testing.T) {
	t.Parallel()
	testErr := errors.New("worker failed")
	var sawCancel atomic.Bool
	r := NewRunner(
		&fakeWorker{runFn: func(context.Context) error { return testErr }},
		&fakeWorker{runFn: func(ctx context.Context) error { <-ctx.Done(); sawCancel.Store(true); return nil }},
	)

	err := r.Run(t.Context())
	if !errors.Is(err, testErr) {
		t.Errorf("err = %v, want %v", err, testErr)
	}
	if !sawCancel.Load() {
		t.Error("sibling worker should be cancelled")
	}
}

func TestRunner_Empty(t *testing.T) {
	t.Parallel()
	r := NewRunner()
	if r.Len() != 0 {
		t.Errorf("Len = %d", r.Len())
	}
	if err := r.Run(t.Context()); err != nil {
		t.Errorf("empty runner: %v", err)
	}
}

func TestWorkerName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		w    Worker
		want string
	}{
		{&TransientSweeper{}, "transient_sweeper"},
		{&CacheWarmer{}, "cache_warmer"},
		{&fakeWorker{}, "unknown"},
	}
	for _, tt := range tests {
		if got := workerName(tt.w); got != tt.want {
			t.Errorf("workerName(%T) = %q, want %q", tt.w, got, tt.want)
		}
	}
}
