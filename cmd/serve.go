package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"demo-data-loader/internal/server"
	"demo-data-loader/worker"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		d, err := cfg.ParseDurations()
		if err != nil {
			return err
		}

		history, closeHistory := openHistory(cfg, d)
		defer closeHistory()
		l, err := newLoader(cfg, d, history)
		if err != nil {
			return err
		}

		gin.SetMode(gin.ReleaseMode)
		var srv *server.Server
		ws := []worker.Worker{}
		if history != nil {
			srv = server.NewServer(l, history, cfg.Hook)
			slog.Info("run history enabled", "redis", cfg.Redis.Addr, "ttl", d.HistoryTTL)
			ws = append(ws, &worker.HistoryJanitor{Store: history, Interval: time.Hour})
		} else {
			srv = server.NewServer(l, nil, cfg.Hook)
		}
		ws = append(ws, &worker.APIServer{Addr: cfg.Server.Addr, Handler: srv.Handler()})

		mgr := worker.NewManager(ws...)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			slog.Info("received signal, shutting down", "signal", s.String())
			cancel()
		}()

		return mgr.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
	rootCmd.AddCommand(serveCmd)
}
