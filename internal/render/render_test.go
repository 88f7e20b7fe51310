package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	addons "github.com/eugener/wpaddons/internal"
)

func newTestRenderer(t *testing.T, opts Options) *Renderer {
	t.Helper()
	r, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestViews(t *testing.T) {
	t.Parallel()
	r := newTestRenderer(t, Options{})

	want := []string{"cover-grid-half", "cover-grid-third", "list", "wordpress-plugins"}
	if got := r.Views(); !slices.Equal(got, want) {
		t.Errorf("Views = %v, want %v", got, want)
	}
	for _, name := range []string{"", "../etc/passwd", "list.html", "missing"} {
		if r.HasView(name) {
			t.Errorf("HasView(%q) = true", name)
		}
	}
}

func TestRender_WrapsView(t *testing.T) {
	t.Parallel()
	r := newTestRenderer(t, Options{})

	var buf bytes.Buffer
	payload := addons.Payload(`{"items":[{"name":"Foo","link":"https://example.com/foo","description":"Adds foo"}]}`)
	err := r.Render(&buf, addons.Options{ParentPluginSlug: "my_plugin", View: "cover-grid-third"}, payload)
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		`<div id="wpaddons-io-wrap" class="wrap my-plugin-wrap">`,
		`<a href="https://example.com/foo">Foo</a>`,
		`Adds foo`,
		`wpaddons-grid-third`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "</div>") {
		t.Error("wrapper should be closed")
	}
}

func TestRender_DefaultView(t *testing.T) {
	t.Parallel()
	r := newTestRenderer(t, Options{})

	var buf bytes.Buffer
	if err := r.Render(&buf, addons.Options{ParentPluginSlug: "p"}, addons.Payload(`[{"name":"Bar"}]`)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "plugin-card") {
		t.Errorf("default view should be wordpress-plugins:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Bar") {
		t.Error("top-level array items should render")
	}
}

func TestRender_EmptyPayload(t *testing.T) {
	t.Parallel()
	r := newTestRenderer(t, Options{})

	for _, view := range r.Views() {
		var buf bytes.Buffer
		if err := r.Render(&buf, addons.Options{ParentPluginSlug: "p", View: view}, addons.EmptyPayload); err != nil {
			t.Fatalf("%s: %v", view, err)
		}
		if !strings.Contains(buf.String(), "wpaddons-empty") {
			t.Errorf("%s: empty payload should render the empty state", view)
		}
	}
}

func TestRender_EscapesContent(t *testing.T) {
	t.Parallel()
	r := newTestRenderer(t, Options{})

	var buf bytes.Buffer
	payload := addons.Payload(`{"items":[{"name":"<script>alert(1)</script>","link":"javascript:alert(1)"}]}`)
	if err := r.Render(&buf, addons.Options{ParentPluginSlug: `"><x`, View: "list"}, payload); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>") {
		t.Error("item names must be escaped")
	}
	if strings.Contains(out, `href="javascript:`) {
		t.Error("unsafe URLs must be filtered")
	}
	if strings.Contains(out, `"><x`) {
		t.Error("slug must be escaped in the class attribute")
	}
}

func TestRender_UnknownView(t *testing.T) {
	t.Parallel()
	r := newTestRenderer(t, Options{})

	var buf bytes.Buffer
	err := r.Render(&buf, addons.Options{ParentPluginSlug: "p", View: "nope"}, addons.EmptyPayload)
	if !errors.Is(err, addons.ErrUnknownView) {
		t.Fatalf("err = %v, want ErrUnknownView", err)
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written for an unknown view")
	}
}

func TestRender_SkipsNonObjectItems(t *testing.T) {
	t.Parallel()
	r := newTestRenderer(t, Options{})

	var buf bytes.Buffer
	payload := addons.Payload(`{"items":["str",1,{"name":"Ok"}]}`)
	if err := r.Render(&buf, addons.Options{ParentPluginSlug: "p", View: "list"}, payload); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), `class="wpaddons-item"`) != 1 {
		t.Errorf("expected exactly one item:\n%s", buf.String())
	}
}

func TestPage_LinksStylesheet(t *testing.T) {
	t.Parallel()
	r := newTestRenderer(t, Options{StylesheetURL: "/static/addons.css"})

	var buf bytes.Buffer
	if err := r.Page(&buf, addons.Options{ParentPluginSlug: "p", View: "list"}, addons.EmptyPayload); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `href="/static/addons.css"`) {
		t.Error("page should link the stylesheet")
	}
	if !strings.Contains(out, `id="wpaddons-io-wrap"`) {
		t.Error("page should embed the fragment unescaped")
	}
}

func TestViewsDirOverride(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "list.html"), []byte(`<p class="custom">{{len .Items}}</p>`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "compact.html"), []byte(`<b>{{.Slug}}</b>`), 0o600); err != nil {
		t.Fatal(err)
	}
	r := newTestRenderer(t, Options{ViewsDir: dir})

	var buf bytes.Buffer
	if err := r.Render(&buf, addons.Options{ParentPluginSlug: "p", View: "list"}, addons.Payload(`[{"a":1},{"b":2}]`)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `<p class="custom">2</p>`) {
		t.Errorf("override not applied:\n%s", buf.String())
	}
	if !r.HasView("compact") {
		t.Error("new view from dir should be available")
	}
}

func TestStylesheet(t *testing.T) {
	t.Parallel()
	if !bytes.Contains(Stylesheet(), []byte("#wpaddons-io-wrap")) {
		t.Error("stylesheet should target the wrapper")
	}
}

func TestItems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		payload string
		want    int
	}{
		{`{}`, 0},
		{`null`, 0},
		{`[{"a":1}]`, 1},
		{`{"items":[{"a":1},{"b":2}]}`, 2},
		{`{"addons":[{"a":1}]}`, 1},
		{`{"items":"nope"}`, 0},
	}
	for _, tt := range tests {
		if got := len(items([]byte(tt.payload))); got != tt.want {
			t.Errorf("items(%s) = %d, want %d", tt.payload, got, tt.want)
		}
	}
}
