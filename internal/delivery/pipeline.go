// Package delivery sends rendered items to a webhook, one call at a time,
// and accounts for every success and failure.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"demo-data-loader/internal/model"
)

const (
	// MaxErrors caps how many failure descriptions a report keeps.
	MaxErrors = 10

	DefaultBatchSize = 10
	DefaultDelay     = 50 * time.Millisecond
)

// sleep is swapped out in tests.
var sleep = time.Sleep

// Pipeline delivers items to Sink sequentially, pausing Delay between calls.
// Events always go one per call as flat JSON. Lines go in batches of
// BatchSize wrapped as {"events":[{"raw":line},...]}.
type Pipeline struct {
	Sink      Sink
	Delay     time.Duration
	BatchSize int
}

type lineEvent struct {
	Raw string `json:"raw"`
}

type lineBatch struct {
	Events []lineEvent `json:"events"`
}

// DeliverEvents posts each event on its own. It never stops early and never
// returns an error: every failure is recorded in the outcome.
func (p Pipeline) DeliverEvents(ctx context.Context, events []any) Outcome {
	out := Outcome{Total: len(events)}
	for i, ev := range events {
		n := i + 1
		body, err := model.Encode(ev)
		if err != nil {
			out.fail(1, fmt.Sprintf("item %d: encode: %v", n, err))
		} else {
			p.send(ctx, &out, body, 1, fmt.Sprintf("item %d", n))
		}
		if n%10 == 0 || n == len(events) {
			slog.Debug("delivery: progress", "sent", n, "total", len(events))
		}
		p.pause(n, len(events))
	}
	return out
}

// DeliverLines posts lines in batches. A batch's result counts for every
// line in it.
func (p Pipeline) DeliverLines(ctx context.Context, lines []string) Outcome {
	size := p.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	out := Outcome{Total: len(lines)}
	batches := (len(lines) + size - 1) / size
	for b := 0; b < batches; b++ {
		start := b * size
		end := start + size
		if end > len(lines) {
			end = len(lines)
		}
		payload := lineBatch{Events: make([]lineEvent, 0, end-start)}
		for _, l := range lines[start:end] {
			payload.Events = append(payload.Events, lineEvent{Raw: l})
		}
		label := fmt.Sprintf("batch %d", b+1)
		body, err := model.Encode(payload)
		if err != nil {
			out.fail(end-start, fmt.Sprintf("%s: encode: %v", label, err))
		} else {
			p.send(ctx, &out, body, end-start, label)
		}
		slog.Debug("delivery: batch done", "batch", b+1, "batches", batches, "lines", end-start)
		p.pause(b+1, batches)
	}
	return out
}

func (p Pipeline) send(ctx context.Context, out *Outcome, body []byte, count int, label string) {
	status, err := p.Sink.Post(ctx, body)
	switch {
	case err != nil:
		slog.Warn("delivery: request failed", "target", label, "err", err)
		out.fail(count, fmt.Sprintf("%s: %v", label, err))
	case !IsSuccess(status):
		slog.Warn("delivery: sink rejected payload", "target", label, "status", status)
		out.fail(count, fmt.Sprintf("%s: HTTP %d", label, status))
	default:
		out.Successful += count
	}
}

// pause sleeps between calls; nothing follows the last call.
func (p Pipeline) pause(done, total int) {
	if p.Delay > 0 && done < total {
		sleep(p.Delay)
	}
}

// IsSuccess reports whether an HTTP status counts as delivered.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
