// Package render fills double-brace placeholders inside template values.
//
// A placeholder names one bound variable: "{{date}}", "{{ date }}" and
// "{{ .date }}" are equivalent. Rendering is fail-open: a string whose
// expression cannot be evaluated is kept exactly as written, so one bad
// field never spoils the rest of an event.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"demo-data-loader/internal/model"
)

const (
	openMarker  = "{{"
	closeMarker = "}}"
)

// Bindings maps variable names to the values placeholders expand to.
type Bindings map[string]any

// HasPlaceholder reports whether s contains both an opening and a closing
// marker. Strings without both are never evaluated.
func HasPlaceholder(s string) bool {
	return strings.Contains(s, openMarker) && strings.Contains(s, closeMarker)
}

// Renderer renders values against one fixed set of bindings.
type Renderer struct {
	data  map[string]any
	funcs template.FuncMap
}

// New prepares a renderer for b. Each binding is usable both as a bare
// name and as a field of the dot.
func New(b Bindings) *Renderer {
	r := &Renderer{
		data:  make(map[string]any, len(b)),
		funcs: make(template.FuncMap, len(b)),
	}
	for name, v := range b {
		r.data[name] = v
		if isIdent(name) {
			v := v
			r.funcs[name] = func() any { return v }
		}
	}
	return r
}

// String evaluates s as a template. On error the returned string is empty;
// output is buffered so a failed evaluation never leaks a partial result.
func (r *Renderer) String(s string) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = "", fmt.Errorf("render: panic: %v", p)
		}
	}()
	tpl, err := template.New("value").
		Funcs(r.funcs).
		Option("missingkey=error").
		Parse(s)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, r.data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Value returns v with every placeholder-bearing string leaf rendered.
// Containers are rebuilt with the same keys and order; all other leaves are
// returned as they are.
func (r *Renderer) Value(v any) any {
	switch t := v.(type) {
	case string:
		return r.leaf(t)
	case *model.Object:
		if t == nil {
			return t
		}
		out := model.NewObject(t.Len())
		for _, m := range t.Members() {
			out.Set(m.Key, r.Value(m.Value))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = r.Value(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = r.Value(e)
		}
		return out
	default:
		return v
	}
}

func (r *Renderer) leaf(s string) string {
	if !HasPlaceholder(s) {
		return s
	}
	out, err := r.String(s)
	if err != nil {
		return s
	}
	return out
}

// String renders a single string against b.
func String(s string, b Bindings) (string, error) {
	return New(b).String(s)
}

// Value renders v against b. See Renderer.Value.
func Value(v any, b Bindings) any {
	return New(b).Value(v)
}

func isIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		if c == '_' || unicode.IsLetter(c) || (i > 0 && unicode.IsDigit(c)) {
			continue
		}
		return false
	}
	return true
}
