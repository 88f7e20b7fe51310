package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/maypok86/otter/v2"
)

var _ Cache = (*Memory)(nil)

// entry wraps a cached payload with its expiration time.
type entry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is an in-memory W-TinyLFU cache backed by otter. Entries expire at
// their own deadline; maxTTL bounds how long otter keeps any entry around.
type Memory struct {
	cache *otter.Cache[string, entry]
	now   func() time.Time
}

// NewMemory creates an in-memory cache holding at most maxSize payloads.
func NewMemory(maxSize int, maxTTL time.Duration) (*Memory, error) {
	c, err := otter.New[string, entry](&otter.Options[string, entry]{
		MaximumSize:      maxSize,
		ExpiryCalculator: otter.ExpiryWriting[string, entry](maxTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	return &Memory{cache: c, now: time.Now}, nil
}

// Get returns the payload stored under key if it has not expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	e, ok := m.cache.GetIfPresent(key)
	if !ok {
		return nil, false
	}
	if !m.now().Before(e.expiresAt) {
		m.cache.Invalidate(key)
		return nil, false
	}
	return e.data, true
}

// Set stores a payload that expires after ttl.
func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	m.cache.Set(key, entry{
		data:      val,
		expiresAt: m.now().Add(ttl),
	})
}

// Delete removes a payload.
func (m *Memory) Delete(_ context.Context, key string) {
	m.cache.Invalidate(key)
}

// Purge removes every payload.
func (m *Memory) Purge(_ context.Context) {
	m.cache.InvalidateAll()
}
