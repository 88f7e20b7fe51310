// Package shortcode parses and expands [wpaddons] shortcodes in post content.
package shortcode

import (
	"regexp"
	"strconv"
	"strings"

	addons "github.com/eugener/wpaddons/internal"
)

// Tag is the shortcode name.
const Tag = "wpaddons"

// DefaultView is the view used when the shortcode does not name one. It
// differs from addons.DefaultView, which applies to direct API use.
const DefaultView = "cover-grid-third"

// Atts are the recognised shortcode attributes.
type Atts struct {
	Plugin    string
	View      string
	DebugMode bool
}

// Options converts the attributes into rendering options.
func (a Atts) Options() addons.Options {
	return addons.Options{
		DebugMode:        a.DebugMode,
		ParentPluginSlug: a.Plugin,
		View:             a.View,
	}
}

// NewAtts applies defaults to a raw attribute map. Unknown keys are ignored.
func NewAtts(raw map[string]string) Atts {
	a := Atts{View: DefaultView}
	if v, ok := raw["plugin"]; ok {
		a.Plugin = v
	}
	if v, ok := raw["view"]; ok && v != "" {
		a.View = v
	}
	if v, ok := raw["debug_mode"]; ok {
		a.DebugMode = truthy(v)
	}
	return a
}

// truthy accepts the flag spellings used in shortcodes: 1/true/yes/on.
func truthy(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s == "yes" || s == "on"
}

// attrPattern matches name="value", name='value' and name=value pairs, and
// bare positional values which are skipped.
var attrPattern = regexp.MustCompile(
	`([\w-]+)\s*=\s*"([^"]*)"(?:\s|$)` +
		`|([\w-]+)\s*=\s*'([^']*)'(?:\s|$)` +
		`|([\w-]+)\s*=\s*([^\s'"]+)(?:\s|$)` +
		`|"[^"]*"(?:\s|$)|'[^']*'(?:\s|$)|\S+(?:\s|$)`)

// ParseAtts parses an attribute string such as `plugin="foo" view=list`.
// Names are lower-cased; the last occurrence of a name wins.
func ParseAtts(s string) map[string]string {
	out := make(map[string]string)
	s = strings.NewReplacer("\u00a0", " ", "\u200b", " ").Replace(s)
	for _, m := range attrPattern.FindAllStringSubmatch(s, -1) {
		switch {
		case m[1] != "":
			out[strings.ToLower(m[1])] = m[2]
		case m[3] != "":
			out[strings.ToLower(m[3])] = m[4]
		case m[5] != "":
			out[strings.ToLower(m[5])] = m[6]
		}
	}
	return out
}

// tagPattern matches [wpaddons ...], [wpaddons .../] and the escaped
// [[wpaddons ...]] form.
var tagPattern = regexp.MustCompile(`\[(\[?)` + Tag + `((?:\s[^\]]*?)?)\s*(/?)\](\]?)`)

// Expand replaces every shortcode in content with the output of render.
// Escaped shortcodes lose one pair of brackets and are not rendered.
func Expand(content string, render func(Atts) string) string {
	return tagPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := tagPattern.FindStringSubmatch(match)
		if m[1] == "[" && m[4] == "]" {
			return match[1 : len(match)-1]
		}
		return m[1] + render(NewAtts(ParseAtts(m[2]))) + m[4]
	})
}

// Find returns the attributes of every unescaped shortcode in content.
func Find(content string) []Atts {
	var out []Atts
	for _, m := range tagPattern.FindAllStringSubmatch(content, -1) {
		if m[1] == "[" && m[4] == "]" {
			continue
		}
		out = append(out, NewAtts(ParseAtts(m[2])))
	}
	return out
}
