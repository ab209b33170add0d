// Package processor turns raw template text into rendered items: either a
// list of structured events (a JSON array) or a list of log lines, with every
// item dated into the recent-days window.
package processor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"demo-data-loader/internal/model"
	"demo-data-loader/internal/render"
	"demo-data-loader/internal/timeline"
)

// ErrInvalidTemplate marks templates that cannot be processed at all.
var ErrInvalidTemplate = errors.New("invalid template")

// Kind tells the two template shapes apart.
type Kind int

const (
	KindEvents Kind = iota + 1 // JSON array, one event per element
	KindLines                  // text, one item per non-blank line
)

func (k Kind) String() string {
	switch k {
	case KindEvents:
		return "events"
	case KindLines:
		return "lines"
	default:
		return "unknown"
	}
}

// Mode selects how a template's shape is decided.
type Mode string

const (
	ModeAuto   Mode = "auto"   // JSON array if it parses as one, otherwise lines
	ModeEvents Mode = "events" // must be a JSON array; anything else is fatal
	ModeLines  Mode = "lines"  // always lines
)

// ParseMode validates a mode name. The empty string means ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeEvents, ModeLines:
		return m, nil
	default:
		return "", fmt.Errorf("unknown template mode %q (want auto, events or lines)", s)
	}
}

// Template is a parsed, not yet rendered, template.
type Template struct {
	Kind   Kind
	Events []any
	Lines  []string
}

// Len reports the number of items in the template.
func (t Template) Len() int {
	if t.Kind == KindEvents {
		return len(t.Events)
	}
	return len(t.Lines)
}

// Detect decides the template shape: content that starts with '[' after
// trimming and is a valid JSON array is events, everything else is lines.
func Detect(raw string) Template {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		if events, err := decodeEvents(trimmed); err == nil {
			return Template{Kind: KindEvents, Events: events}
		}
	}
	return Template{Kind: KindLines, Lines: splitLines(raw)}
}

// Parse parses raw according to mode. In ModeEvents malformed JSON and a
// non-array top level are wrapped ErrInvalidTemplate errors and no items are
// returned.
func Parse(raw string, mode Mode) (Template, error) {
	switch mode {
	case ModeAuto, "":
		return Detect(raw), nil
	case ModeLines:
		return Template{Kind: KindLines, Lines: splitLines(raw)}, nil
	case ModeEvents:
		events, err := decodeEvents(strings.TrimSpace(raw))
		if err != nil {
			return Template{}, err
		}
		return Template{Kind: KindEvents, Events: events}, nil
	default:
		return Template{}, fmt.Errorf("unknown template mode %q", mode)
	}
}

func decodeEvents(trimmed string) ([]any, error) {
	v, err := model.DecodeJSON([]byte(trimmed))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrInvalidTemplate, err)
	}
	events, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: JSON template must be an array of events", ErrInvalidTemplate)
	}
	return events, nil
}

func splitLines(raw string) []string {
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(raw), "\n") {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// Options control a processing run.
type Options struct {
	Mode Mode
	Now  time.Time // anchors the window; zero means time.Now()
}

// Result holds the rendered items of one run, in template order.
type Result struct {
	Kind   Kind
	Events []any
	Lines  []string
	Window timeline.Window
}

// Len reports the number of rendered items.
func (r Result) Len() int {
	if r.Kind == KindEvents {
		return len(r.Events)
	}
	return len(r.Lines)
}

// Process parses raw and renders every item against the day it is assigned.
func Process(raw string, opts Options) (Result, error) {
	tpl, err := Parse(raw, opts.Mode)
	if err != nil {
		return Result{}, err
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	return Render(tpl, timeline.Generate(now)), nil
}

// Render dates every item of tpl into w. Item i is rendered against
// w.Days[timeline.Assign(n, w.Len())[i]].
func Render(tpl Template, w timeline.Window) Result {
	res := Result{Kind: tpl.Kind, Window: w}
	assign := timeline.Assign(tpl.Len(), w.Len())
	renderers := make([]*render.Renderer, w.Len())
	rendererFor := func(i int) *render.Renderer {
		if i >= len(assign) {
			return render.New(nil)
		}
		idx := assign[i]
		if renderers[idx] == nil {
			renderers[idx] = render.New(w.Days[idx].Bindings())
		}
		return renderers[idx]
	}

	switch tpl.Kind {
	case KindEvents:
		res.Events = make([]any, len(tpl.Events))
		for i, ev := range tpl.Events {
			res.Events[i] = rendererFor(i).Value(ev)
		}
	case KindLines:
		res.Lines = make([]string, len(tpl.Lines))
		for i, line := range tpl.Lines {
			res.Lines[i] = line
			if !render.HasPlaceholder(line) {
				continue
			}
			out, err := rendererFor(i).String(line)
			if err != nil {
				slog.Warn("processor: failed to render line, keeping original", "line", i+1, "err", err)
				continue
			}
			res.Lines[i] = out
		}
	}
	return res
}

// WriteTo writes the rendered items: events as an indented JSON array,
// lines joined by newlines.
func (r Result) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	switch r.Kind {
	case KindEvents:
		events := r.Events
		if events == nil {
			events = []any{}
		}
		raw, err := model.Encode(events)
		if err != nil {
			return 0, err
		}
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return 0, err
		}
		buf.WriteByte('\n')
	default:
		for _, l := range r.Lines {
			buf.WriteString(l)
			buf.WriteByte('\n')
		}
	}
	return buf.WriteTo(w)
}
