// Package addons defines domain types for the wpaddons service.
// This package has no project imports -- it is the dependency root.
package addons

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// --- Options ---

// Default option values applied when a field is not supplied.
const (
	DefaultView = "wordpress-plugins"

	// CacheKeyPrefix namespaces cache entries so slugs never collide with
	// unrelated keys in a shared store.
	CacheKeyPrefix = "wpaddonsio_"

	// TransientTTL is how long a successful remote response stays cached.
	TransientTTL = 6 * time.Hour
)

// Options configures a single addons rendering. It is built once per
// shortcode invocation and not mutated afterwards.
type Options struct {
	// DebugMode forces a fresh fetch by invalidating the cached entry first.
	DebugMode bool
	// ParentPluginSlug identifies the plugin whose addons are listed.
	ParentPluginSlug string
	// View names the template that renders the addons.
	View string
}

// WithDefaults returns a copy of o with missing fields set to their defaults.
func (o Options) WithDefaults() Options {
	if o.View == "" {
		o.View = DefaultView
	}
	return o
}

// CacheKey returns the cache key for these options.
func (o Options) CacheKey() string { return CacheKey(o.ParentPluginSlug) }

// CacheKey returns the cache key for a parent plugin slug.
func CacheKey(slug string) string { return CacheKeyPrefix + slug }

// WrapClass returns the CSS class of the container wrapping a rendered view.
// Underscores in the slug become dashes.
func WrapClass(slug string) string {
	return strings.ReplaceAll(slug, "_", "-") + "-wrap"
}

// --- Payload ---

// Payload is the JSON document returned by the remote addons API. Its schema
// belongs to the remote service and is not validated beyond being JSON.
type Payload = json.RawMessage

// EmptyPayload is returned whenever no data is available.
var EmptyPayload = Payload(`{}`)

// IsEmpty reports whether p carries no data.
func IsEmpty(p Payload) bool {
	s := strings.TrimSpace(string(p))
	return s == "" || s == "{}" || s == "null"
}

// --- Context keys ---

type contextKey int

const ctxKeyMeta contextKey = 0

// requestMeta bundles per-request values into a single context allocation.
type requestMeta struct {
	RequestID string
}

func metaFromContext(ctx context.Context) *requestMeta {
	m, _ := ctx.Value(ctxKeyMeta).(*requestMeta)
	return m
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if m := metaFromContext(ctx); m != nil {
		return m.RequestID
	}
	return ""
}

// ContextWithRequestID returns a context carrying the given request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyMeta, &requestMeta{RequestID: id})
}
