package testutil

import (
	"context"
	"sync"
)

// FakeFetcher is a configurable addons fetcher that counts calls per slug.
type FakeFetcher struct {
	// FetchFn produces the response; nil returns `{}`.
	FetchFn func(ctx context.Context, slug string) ([]byte, error)

	mu    sync.Mutex
	calls map[string]int
}

// PluginAddons records the call and delegates to FetchFn.
func (f *FakeFetcher) PluginAddons(ctx context.Context, slug string) ([]byte, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[slug]++
	f.mu.Unlock()

	if f.FetchFn != nil {
		return f.FetchFn(ctx, slug)
	}
	return []byte(`{}`), nil
}

// Calls returns how many times slug was fetched.
func (f *FakeFetcher) Calls(slug string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[slug]
}

// TotalCalls returns the number of fetches across all slugs.
func (f *FakeFetcher) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}
