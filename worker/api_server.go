package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// APIServer serves Handler on Addr until the context is cancelled.
type APIServer struct {
	Addr            string
	Handler         http.Handler
	ShutdownTimeout time.Duration

	// listener is set by tests to serve on an already bound socket.
	listener net.Listener
}

func (w *APIServer) Start(ctx context.Context) error {
	if w.ShutdownTimeout <= 0 {
		w.ShutdownTimeout = 10 * time.Second
	}
	ln := w.listener
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", w.Addr)
		if err != nil {
			return fmt.Errorf("api-server: listen %s: %w", w.Addr, err)
		}
	}
	srv := &http.Server{
		Handler:           w.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("api-server: listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api-server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), w.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("api-server: shutdown error", "error", err)
		return err
	}
	slog.Info("api-server: stopped")
	return nil
}
