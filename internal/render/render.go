// Package render turns addon payloads into HTML using named view templates.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/tidwall/gjson"

	addons "github.com/eugener/wpaddons/internal"
)

var (
	//go:embed views/*.html
	viewFS embed.FS

	//go:embed layouts/*.html
	layoutFS embed.FS

	//go:embed assets/wpaddons-io.css
	stylesheet []byte
)

// DefaultStylesheetURL is where the server exposes Stylesheet.
const DefaultStylesheetURL = "/assets/wpaddons-io.css"

// Stylesheet returns the CSS shipped with the built-in views.
func Stylesheet() []byte { return stylesheet }

// Options configures a Renderer.
type Options struct {
	// ViewsDir holds extra *.html views. A file named like a built-in view
	// replaces it.
	ViewsDir string
	// StylesheetURL is linked from full pages. Defaults to DefaultStylesheetURL.
	StylesheetURL string
}

// Renderer executes view templates. It is safe for concurrent use.
type Renderer struct {
	views         *template.Template
	layouts       *template.Template
	stylesheetURL string
}

// New parses the built-in views and any overrides from opts.ViewsDir.
func New(opts Options) (*Renderer, error) {
	views, err := template.New("").ParseFS(viewFS, "views/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse views: %w", err)
	}
	if opts.ViewsDir != "" {
		extra, err := fs.Glob(os.DirFS(opts.ViewsDir), "*.html")
		if err != nil {
			return nil, fmt.Errorf("scan views dir: %w", err)
		}
		if len(extra) > 0 {
			if views, err = views.ParseFS(os.DirFS(opts.ViewsDir), "*.html"); err != nil {
				return nil, fmt.Errorf("parse views dir: %w", err)
			}
		}
	}

	layouts, err := template.New("").ParseFS(layoutFS, "layouts/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}

	url := opts.StylesheetURL
	if url == "" {
		url = DefaultStylesheetURL
	}
	return &Renderer{views: views, layouts: layouts, stylesheetURL: url}, nil
}

// Views lists the available view names, sorted.
func (r *Renderer) Views() []string {
	var names []string
	for _, t := range r.views.Templates() {
		if name, ok := strings.CutSuffix(t.Name(), ".html"); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// HasView reports whether name resolves to a view.
func (r *Renderer) HasView(name string) bool {
	return r.lookup(name) != nil
}

func (r *Renderer) lookup(name string) *template.Template {
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return nil
	}
	return r.views.Lookup(name + ".html")
}

// viewData is the scope a view executes with.
type viewData struct {
	Slug   string
	Addons any   // the decoded payload
	Items  []any // addon objects found in the payload
}

// Render writes the container element wrapping the selected view. Nothing is
// written when the view is unknown or fails to execute.
func (r *Renderer) Render(w io.Writer, opts addons.Options, payload addons.Payload) error {
	opts = opts.WithDefaults()
	fragment, err := r.fragment(opts, payload)
	if err != nil {
		return err
	}
	_, err = w.Write(fragment)
	return err
}

// Page writes a standalone HTML document that links the stylesheet and
// embeds the rendered view.
func (r *Renderer) Page(w io.Writer, opts addons.Options, payload addons.Payload) error {
	opts = opts.WithDefaults()
	fragment, err := r.fragment(opts, payload)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	err = r.layouts.ExecuteTemplate(&buf, "page.html", map[string]any{
		"Title":      opts.ParentPluginSlug + " addons",
		"Stylesheet": r.stylesheetURL,
		"Fragment":   template.HTML(fragment), //nolint:gosec // produced by html/template
	})
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

func (r *Renderer) fragment(opts addons.Options, payload addons.Payload) ([]byte, error) {
	view := r.lookup(opts.View)
	if view == nil {
		return nil, fmt.Errorf("%w: %q", addons.ErrUnknownView, opts.View)
	}

	var body bytes.Buffer
	if err := view.Execute(&body, newViewData(opts.ParentPluginSlug, payload)); err != nil {
		return nil, fmt.Errorf("render view %q: %w", opts.View, err)
	}

	var out bytes.Buffer
	err := r.layouts.ExecuteTemplate(&out, "wrap.html", map[string]any{
		"Class": addons.WrapClass(opts.ParentPluginSlug),
		"Body":  template.HTML(body.String()), //nolint:gosec // produced by html/template
	})
	if err != nil {
		return nil, fmt.Errorf("render wrapper: %w", err)
	}
	return out.Bytes(), nil
}

func newViewData(slug string, payload addons.Payload) viewData {
	d := viewData{Slug: slug}
	if len(payload) == 0 {
		return d
	}
	_ = json.Unmarshal(payload, &d.Addons)
	d.Items = items(payload)
	return d
}

// items returns the addon objects of a payload: the payload itself when it
// is an array, else its "items" or "addons" array. Non-object entries are
// skipped.
func items(payload []byte) []any {
	root := gjson.ParseBytes(payload)
	list := root
	if !root.IsArray() {
		list = root.Get("items")
		if !list.IsArray() {
			list = root.Get("addons")
		}
	}
	if !list.IsArray() {
		return nil
	}

	var out []any
	list.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		if m, ok := item.Value().(map[string]any); ok {
			out = append(out, m)
		}
		return true
	})
	return out
}
