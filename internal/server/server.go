package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"postboard/internal/logger"
)

type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Run serves handler until ctx is cancelled, then shuts the server down
// gracefully, waiting at most ShutdownTimeout for in-flight requests.
func Run(ctx context.Context, handler http.Handler, opts Options, log *logger.Logger) error {
	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return err
	}
	return Serve(ctx, ln, handler, opts, log)
}

// Serve is Run on an existing listener.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, opts Options, log *logger.Logger) error {
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server", "Listening on "+ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server", "Server stopped unexpectedly", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("server", "Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server", "Error during server shutdown", err)
		return err
	}
	log.Info("server", "Server stopped gracefully")
	return nil
}
