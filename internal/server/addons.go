package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	addons "github.com/eugener/wpaddons/internal"
	"github.com/eugener/wpaddons/internal/shortcode"
)

// maxContentBody caps the post content accepted by /v1/render.
const maxContentBody = 1 << 20

var errInternal = errors.New("internal server error")

// queryAtts collects the shortcode attributes present in the query string.
func queryAtts(r *http.Request) map[string]string {
	q := r.URL.Query()
	raw := make(map[string]string, 3)
	for _, name := range []string{"plugin", "view", "debug_mode"} {
		if q.Has(name) {
			raw[name] = q.Get(name)
		}
	}
	return raw
}

// handleGetAddons returns the raw addons document of a plugin. Failures on
// the remote side surface as an empty object, never as an error status.
func (s *server) handleGetAddons(w http.ResponseWriter, r *http.Request) {
	atts := shortcode.NewAtts(queryAtts(r))
	opts := addons.Options{
		ParentPluginSlug: chi.URLParam(r, "slug"),
		DebugMode:        atts.DebugMode,
	}
	payload := s.deps.Addons.Addons(r.Context(), opts)

	w.Header()["Content-Type"] = jsonCT
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// handleShortcode renders one shortcode invocation described by the query
// string, using the shortcode defaults.
func (s *server) handleShortcode(w http.ResponseWriter, r *http.Request) {
	s.renderFragment(w, r, shortcode.NewAtts(queryAtts(r)).Options())
}

// handlePage renders a standalone page for a plugin, stylesheet included.
func (s *server) handlePage(w http.ResponseWriter, r *http.Request) {
	atts := shortcode.NewAtts(queryAtts(r))
	opts := addons.Options{
		ParentPluginSlug: chi.URLParam(r, "slug"),
		DebugMode:        atts.DebugMode,
	}
	if r.URL.Query().Has("view") {
		opts.View = atts.View
	}
	opts = opts.WithDefaults()
	if !s.deps.Renderer.HasView(opts.View) {
		writeError(w, fmt.Errorf("%w: %q", addons.ErrUnknownView, opts.View))
		return
	}

	payload := s.deps.Addons.Addons(r.Context(), opts)
	var buf bytes.Buffer
	if err := s.deps.Renderer.Page(&buf, opts, payload); err != nil {
		s.renderFailed(w, r, opts, err)
		return
	}
	writeHTML(w, buf.Bytes())
}

// handleRenderContent expands every [wpaddons] shortcode in the posted
// content. A shortcode that fails to render expands to nothing.
func (s *server) handleRenderContent(w http.ResponseWriter, r *http.Request) {
	content, err := io.ReadAll(io.LimitReader(r.Body, maxContentBody+1))
	if err != nil {
		writeError(w, fmt.Errorf("%w: read body: %v", addons.ErrBadRequest, err))
		return
	}
	if len(content) > maxContentBody {
		writeError(w, fmt.Errorf("%w: content exceeds %d bytes", addons.ErrBadRequest, maxContentBody))
		return
	}

	out := shortcode.Expand(string(content), func(atts shortcode.Atts) string {
		opts := atts.Options().WithDefaults()
		if !s.deps.Renderer.HasView(opts.View) {
			slog.WarnContext(r.Context(), "shortcode with unknown view", "view", opts.View)
			return ""
		}
		var buf bytes.Buffer
		if err := s.deps.Renderer.Render(&buf, opts, s.deps.Addons.Addons(r.Context(), opts)); err != nil {
			slog.ErrorContext(r.Context(), "shortcode render failed",
				"slug", opts.ParentPluginSlug, "view", opts.View, "error", err)
			return ""
		}
		return buf.String()
	})
	writeHTML(w, []byte(out))
}

func (s *server) renderFragment(w http.ResponseWriter, r *http.Request, opts addons.Options) {
	opts = opts.WithDefaults()
	if !s.deps.Renderer.HasView(opts.View) {
		writeError(w, fmt.Errorf("%w: %q", addons.ErrUnknownView, opts.View))
		return
	}

	payload := s.deps.Addons.Addons(r.Context(), opts)
	var buf bytes.Buffer
	if err := s.deps.Renderer.Render(&buf, opts, payload); err != nil {
		s.renderFailed(w, r, opts, err)
		return
	}
	writeHTML(w, buf.Bytes())
}

func (s *server) renderFailed(w http.ResponseWriter, r *http.Request, opts addons.Options, err error) {
	if errors.Is(err, addons.ErrUnknownView) {
		writeError(w, err)
		return
	}
	slog.ErrorContext(r.Context(), "render failed",
		"slug", opts.ParentPluginSlug, "view", opts.View, "error", err)
	writeError(w, errInternal)
}

// handleStylesheet serves the CSS of the built-in views.
func (s *server) handleStylesheet(w http.ResponseWriter, _ *http.Request) {
	w.Header()["Content-Type"] = cssCT
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(s.deps.Stylesheet)
}

// handleInvalidate drops the cached payload of a plugin.
func (s *server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	s.deps.Addons.Invalidate(r.Context(), slug)
	slog.InfoContext(r.Context(), "addons cache invalidated", "slug", slug)
	w.WriteHeader(http.StatusNoContent)
}
