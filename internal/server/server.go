// Package server implements the HTTP transport layer for the wpaddons service.
package server

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	addons "github.com/eugener/wpaddons/internal"
	"github.com/eugener/wpaddons/internal/telemetry"
)

// ReadyChecker reports whether the system is ready to serve traffic.
type ReadyChecker func(ctx context.Context) error

// AddonService resolves addon payloads, from cache or the remote API.
type AddonService interface {
	Addons(ctx context.Context, opts addons.Options) addons.Payload
	Invalidate(ctx context.Context, slug string)
}

// Renderer turns payloads into HTML.
type Renderer interface {
	Render(w io.Writer, opts addons.Options, payload addons.Payload) error
	Page(w io.Writer, opts addons.Options, payload addons.Payload) error
	HasView(name string) bool
}

// Deps holds all dependencies for the HTTP server.
type Deps struct {
	Addons         AddonService
	Renderer       Renderer
	Stylesheet     []byte             // served at /assets/wpaddons-io.css
	AdminKey       string             // "" = admin endpoints open
	ReadyCheck     ReadyChecker       // nil = always ready (for tests)
	Metrics        *telemetry.Metrics // nil = no request metrics
	MetricsHandler http.Handler       // nil = no /metrics endpoint
}

// New creates an http.Handler with all routes and middleware wired.
func New(deps Deps) http.Handler {
	s := &server{deps: deps}

	r := chi.NewRouter()

	// Global middleware
	r.Use(s.recovery)
	r.Use(s.requestID)
	r.Use(s.logging)
	if deps.Metrics != nil {
		r.Use(metricsMiddleware(deps.Metrics))
	}

	// System endpoints
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// Static stylesheet linked from rendered pages
	r.Get("/assets/wpaddons-io.css", s.handleStylesheet)

	// Rendering
	r.Get("/addons/{slug}", s.handlePage)
	r.Get("/v1/shortcode", s.handleShortcode)
	r.Post("/v1/render", s.handleRenderContent)

	// Raw payloads
	r.Get("/v1/plugins/{slug}/addons", s.handleGetAddons)

	// Admin
	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Delete("/v1/plugins/{slug}/addons/cache", s.handleInvalidate)
	})

	return r
}

type server struct {
	deps Deps
}
