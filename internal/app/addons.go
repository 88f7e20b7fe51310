// Package app holds the application services of the wpaddons service.
package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	addons "github.com/eugener/wpaddons/internal"
	"github.com/eugener/wpaddons/internal/remote"
	"github.com/eugener/wpaddons/internal/telemetry"
)

// Cache is the TTL key/value store consumed by AddonService.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// Fetcher retrieves the raw addons document of a parent plugin.
type Fetcher interface {
	PluginAddons(ctx context.Context, slug string) ([]byte, error)
}

// AddonService returns addon listings from cache, falling back to the remote
// API on a miss. Concurrent misses for the same slug each hit the network;
// the store is last-writer-wins.
type AddonService struct {
	cache   Cache
	fetcher Fetcher
	metrics *telemetry.Metrics // nil = no metrics
	tracer  trace.Tracer
}

// NewAddonService returns an AddonService. metrics may be nil.
func NewAddonService(cache Cache, fetcher Fetcher, metrics *telemetry.Metrics) *AddonService {
	return &AddonService{
		cache:   cache,
		fetcher: fetcher,
		metrics: metrics,
		tracer:  telemetry.Tracer("github.com/eugener/wpaddons/internal/app"),
	}
}

// Addons returns the addons document for opts.ParentPluginSlug. It never
// fails: any transport, status or decode error yields addons.EmptyPayload,
// which is not cached so the next call retries the network.
func (s *AddonService) Addons(ctx context.Context, opts addons.Options) addons.Payload {
	ctx, span := s.tracer.Start(ctx, "addons.get", trace.WithAttributes(
		attribute.String("wpaddons.slug", opts.ParentPluginSlug),
		attribute.Bool("wpaddons.debug_mode", opts.DebugMode),
	))
	defer span.End()

	key := opts.CacheKey()

	if opts.DebugMode {
		s.cache.Delete(ctx, key)
		s.countInvalidation("debug")
	}

	if data, ok := s.cache.Get(ctx, key); ok {
		span.SetAttributes(attribute.Bool("wpaddons.cache_hit", true))
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		return data
	}
	span.SetAttributes(attribute.Bool("wpaddons.cache_hit", false))
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	data, err := s.fetch(ctx, opts.ParentPluginSlug)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		slog.WarnContext(ctx, "addons fetch failed",
			"slug", opts.ParentPluginSlug,
			"request_id", addons.RequestIDFromContext(ctx),
			"error", err,
		)
		return addons.EmptyPayload
	}

	s.cache.Set(ctx, key, data, addons.TransientTTL)
	return data
}

// Refresh fetches slug unconditionally and replaces the cached entry. Unlike
// Addons it reports failures, and leaves the existing entry in place.
func (s *AddonService) Refresh(ctx context.Context, slug string) error {
	ctx, span := s.tracer.Start(ctx, "addons.refresh", trace.WithAttributes(
		attribute.String("wpaddons.slug", slug),
	))
	defer span.End()

	data, err := s.fetch(ctx, slug)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "refresh failed")
		return fmt.Errorf("refresh %q: %w", slug, err)
	}
	s.cache.Set(ctx, addons.CacheKey(slug), data, addons.TransientTTL)
	return nil
}

// Invalidate drops the cached entry of slug.
func (s *AddonService) Invalidate(ctx context.Context, slug string) {
	s.cache.Delete(ctx, addons.CacheKey(slug))
	s.countInvalidation("admin")
}

// fetch calls the remote API and returns the compacted document.
func (s *AddonService) fetch(ctx context.Context, slug string) ([]byte, error) {
	start := time.Now()
	body, err := s.fetcher.PluginAddons(ctx, slug)
	if err == nil {
		var buf bytes.Buffer
		if cerr := json.Compact(&buf, body); cerr != nil {
			err = fmt.Errorf("%w: %v", addons.ErrInvalidPayload, cerr)
		} else {
			body = buf.Bytes()
		}
	}

	if s.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			s.metrics.UpstreamErrors.WithLabelValues(errorReason(err)).Inc()
		}
		s.metrics.UpstreamDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *AddonService) countInvalidation(source string) {
	if s.metrics != nil {
		s.metrics.CacheInvalidations.WithLabelValues(source).Inc()
	}
}

// errorReason classifies a fetch error into a bounded metric label.
func errorReason(err error) string {
	var apiErr *remote.APIError
	switch {
	case errors.As(err, &apiErr):
		return "status"
	case errors.Is(err, addons.ErrInvalidPayload):
		return "decode"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "transport"
	}
}
