package addons

import (
	"context"
	"testing"
	"time"
)

func TestOptionsWithDefaults(t *testing.T) {
	t.Parallel()

	got := Options{}.WithDefaults()
	if got.DebugMode {
		t.Error("debug mode should default to false")
	}
	if got.ParentPluginSlug != "" {
		t.Errorf("slug = %q, want empty", got.ParentPluginSlug)
	}
	if got.View != DefaultView {
		t.Errorf("view = %q, want %q", got.View, DefaultView)
	}

	got = Options{DebugMode: true, ParentPluginSlug: "my-plugin", View: "list"}.WithDefaults()
	if !got.DebugMode || got.ParentPluginSlug != "my-plugin" || got.View != "list" {
		t.Errorf("explicit values should be kept, got %+v", got)
	}
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	if got := CacheKey("my-plugin"); got != "wpaddonsio_my-plugin" {
		t.Errorf("CacheKey = %q", got)
	}
	if CacheKey("a") == CacheKey("b") {
		t.Error("different slugs must not collide")
	}
	if got := (Options{ParentPluginSlug: "x"}).CacheKey(); got != "wpaddonsio_x" {
		t.Errorf("Options.CacheKey = %q", got)
	}
	if TransientTTL != 6*time.Hour {
		t.Errorf("TransientTTL = %v", TransientTTL)
	}
}

func TestWrapClass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		slug string
		want string
	}{
		{"my_plugin", "my-plugin-wrap"},
		{"plain", "plain-wrap"},
		{"", "-wrap"},
	}
	for _, tt := range tests {
		if got := WrapClass(tt.slug); got != tt.want {
			t.Errorf("WrapClass(%q) = %q, want %q", tt.slug, got, tt.want)
		}
	}
}

func TestIsEmpty(t *testing.T) {
	t.Parallel()

	for _, p := range []string{"", "{}", " {} ", "null"} {
		if !IsEmpty(Payload(p)) {
			t.Errorf("IsEmpty(%q) = false", p)
		}
	}
	if IsEmpty(Payload(`{"items":[]}`)) {
		t.Error("non-empty object reported empty")
	}
}

func TestRequestIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("empty context id = %q", got)
	}
	ctx = ContextWithRequestID(ctx, "req-1")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("id = %q, want req-1", got)
	}
}
