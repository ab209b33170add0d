package cmd

import (
	"context"
	"log/slog"

	"demo-data-loader/internal/config"
	"demo-data-loader/internal/delivery"
	"demo-data-loader/internal/loader"
	"demo-data-loader/internal/processor"
	"demo-data-loader/internal/redisclient"
	"demo-data-loader/internal/source"
	"demo-data-loader/internal/storage"
)

// newLoader builds a loader from config. history may be nil.
func newLoader(cfg config.Config, d config.Durations, history *storage.RedisStore) (*loader.Loader, error) {
	mode, err := processor.ParseMode(cfg.Loader.Mode)
	if err != nil {
		return nil, err
	}
	l := &loader.Loader{
		Fetcher: source.NewFetcher(d.Timeout, cfg.Loader.MaxTemplateBytes),
		NewSink: func(u string) delivery.Sink {
			return delivery.NewClient(u, d.Timeout).WithUserAgent(cfg.Loader.UserAgent)
		},
		Delay:     d.Delay,
		BatchSize: cfg.Loader.BatchSize,
		Mode:      mode,
	}
	if history != nil {
		l.History = history
	}
	return l, nil
}

// openHistory returns the run store when history is enabled, or nil. An
// unreachable Redis is logged and history is used anyway so it recovers once
// the server is back. The returned close func is always safe to call.
func openHistory(cfg config.Config, d config.Durations) (*storage.RedisStore, func()) {
	if !cfg.History.Enabled {
		return nil, func() {}
	}
	rdb := redisclient.New(cfg.Redis)
	if _, err := redisclient.Check(context.Background(), rdb); err != nil {
		slog.Warn("history: redis unavailable", "error", err)
	}
	return storage.NewRedisStore(rdb, d.HistoryTTL, cfg.History.Limit), func() { _ = rdb.Close() }
}
