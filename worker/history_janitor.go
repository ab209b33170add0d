package worker

import (
	"context"
	"log/slog"
	"time"
)

// Pruner drops run index entries whose reports have expired.
type Pruner interface {
	PruneExpired(ctx context.Context) (int, error)
}

// HistoryJanitor periodically prunes the run history index.
type HistoryJanitor struct {
	Store    Pruner
	Interval time.Duration
}

func (w *HistoryJanitor) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = time.Hour
	}

	w.runOnce(ctx)

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *HistoryJanitor) runOnce(ctx context.Context) {
	n, err := w.Store.PruneExpired(ctx)
	if err != nil {
		slog.Error("history-janitor: prune error", "error", err)
		return
	}
	if n > 0 {
		slog.Info("history-janitor: pruned expired runs", "count", n)
	}
}
