// Package loader runs a whole load: fetch a template, render it into recent
// dates and deliver the result to a webhook.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"demo-data-loader/internal/delivery"
	"demo-data-loader/internal/processor"

	"github.com/google/uuid"
)

// ErrInvalidRequest marks requests rejected before any work is done.
var ErrInvalidRequest = errors.New("invalid request")

// ErrFetch marks failures to obtain the template text.
var ErrFetch = errors.New("failed to fetch template")

// MaxDelay bounds the pause a request may ask for between calls.
const MaxDelay = time.Minute

// Fetcher returns raw template text for a source.
type Fetcher interface {
	Fetch(ctx context.Context, src string) (string, error)
}

// History records finished runs.
type History interface {
	RecordRun(ctx context.Context, rep delivery.Report, finished time.Time) error
}

// Request describes one load.
type Request struct {
	Template string         // URL or local path
	Webhook  string         // delivery URL
	Delay    *time.Duration // nil selects the loader default
	Mode     processor.Mode // empty selects the loader default
}

// Loader wires fetching, processing and delivery together.
type Loader struct {
	Fetcher   Fetcher
	NewSink   func(webhookURL string) delivery.Sink
	Delay     time.Duration
	BatchSize int
	Mode      processor.Mode
	History   History // optional

	now   func() time.Time
	runID func() string
}

func (l *Loader) clock() time.Time {
	if l.now != nil {
		return l.now()
	}
	return time.Now()
}

func (l *Loader) newRunID() string {
	if l.runID != nil {
		return l.runID()
	}
	return uuid.Must(uuid.NewV7()).String()
}

// ValidateWebhookURL accepts absolute http(s) URLs with a host.
func ValidateWebhookURL(raw string) error {
	u, err := url.ParseRequestURI(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: webhook url: %v", ErrInvalidRequest, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: webhook url must be http or https", ErrInvalidRequest)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: webhook url has no host", ErrInvalidRequest)
	}
	return nil
}

// Process fetches and renders a template without delivering it.
func (l *Loader) Process(ctx context.Context, template string, mode processor.Mode) (processor.Result, error) {
	if strings.TrimSpace(template) == "" {
		return processor.Result{}, fmt.Errorf("%w: template source is required", ErrInvalidRequest)
	}
	if mode == "" {
		mode = l.Mode
	}
	raw, err := l.Fetcher.Fetch(ctx, template)
	if err != nil {
		return processor.Result{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	res, err := processor.Process(raw, processor.Options{Mode: mode, Now: l.clock()})
	if err != nil {
		return processor.Result{}, err
	}
	slog.Info("loader: template processed", "template", template, "kind", res.Kind, "items", res.Len())
	return res, nil
}

// Load runs one request end to end. Errors are only returned for failures
// before delivery starts; once items are being sent the outcome is always a
// report. Cancelling ctx stops fetching, but a run that has started
// delivering always attempts every item.
func (l *Loader) Load(ctx context.Context, req Request) (delivery.Report, error) {
	if strings.TrimSpace(req.Webhook) == "" {
		return delivery.Report{}, fmt.Errorf("%w: webhook url is required", ErrInvalidRequest)
	}
	if err := ValidateWebhookURL(req.Webhook); err != nil {
		return delivery.Report{}, err
	}
	delay := l.Delay
	if req.Delay != nil {
		if *req.Delay < 0 {
			return delivery.Report{}, fmt.Errorf("%w: delay must not be negative", ErrInvalidRequest)
		}
		if *req.Delay > MaxDelay {
			return delivery.Report{}, fmt.Errorf("%w: delay must not exceed %s", ErrInvalidRequest, MaxDelay)
		}
		delay = *req.Delay
	}

	started := l.clock()
	res, err := l.Process(ctx, req.Template, req.Mode)
	if err != nil {
		return delivery.Report{}, err
	}

	ctx = context.WithoutCancel(ctx)
	runID := l.newRunID()
	slog.Info("loader: delivering", "run_id", runID, "items", res.Len(), "kind", res.Kind, "delay", delay)
	p := delivery.Pipeline{
		Sink:      l.NewSink(req.Webhook),
		Delay:     delay,
		BatchSize: l.BatchSize,
	}
	var out delivery.Outcome
	if res.Kind == processor.KindEvents {
		out = p.DeliverEvents(ctx, res.Events)
	} else {
		out = p.DeliverLines(ctx, res.Lines)
	}
	finished := l.clock()

	rep := out.Report(req.Template)
	rep.RunID = runID
	rep.Mode = res.Kind.String()
	rep.StartedAt = started.UTC().Format(time.RFC3339)
	rep.FinishedAt = finished.UTC().Format(time.RFC3339)
	slog.Info("loader: complete", "run_id", runID, "status", rep.Status,
		"sent", rep.EventsSent, "failed", rep.EventsFailed, "total", rep.EventsTotal)

	if l.History != nil {
		if err := l.History.RecordRun(ctx, rep, finished); err != nil {
			slog.Warn("loader: failed to record run", "run_id", runID, "err", err)
		}
	}
	return rep, nil
}
