// Package testutil provides configurable test fakes for the wpaddons interfaces.
package testutil

import (
	"context"
	"sync"
	"time"
)

// CacheEntry is a value held by FakeCache together with the TTL it was
// stored with.
type CacheEntry struct {
	Value []byte
	TTL   time.Duration
}

// FakeCache is an in-memory cache that records every call. Entries never
// expire on their own; use Expire to simulate a TTL running out.
type FakeCache struct {
	mu      sync.Mutex
	entries map[string]CacheEntry
	Gets    int
	Sets    int
	Deletes int
}

// NewFakeCache returns an empty FakeCache.
func NewFakeCache() *FakeCache {
	return &FakeCache{entries: make(map[string]CacheEntry)}
}

// Get returns the stored value.
func (c *FakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Gets++
	e, ok := c.entries[key]
	return e.Value, ok
}

// Set stores a value and records its TTL.
func (c *FakeCache) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sets++
	c.entries[key] = CacheEntry{Value: append([]byte(nil), val...), TTL: ttl}
}

// Delete removes a value.
func (c *FakeCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Deletes++
	delete(c.entries, key)
}

// Purge removes every value.
func (c *FakeCache) Purge(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Entry returns the raw entry for key, bypassing call counters.
func (c *FakeCache) Entry(key string) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}

// Expire drops key as if its TTL had elapsed.
func (c *FakeCache) Expire(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries.
func (c *FakeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
