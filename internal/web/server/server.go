package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/kdex-tech/kdex-splitscreen/internal/web/middleware"
)

const readHeaderTimeout = 10 * time.Second

func New(addr string, handler http.Handler, log logr.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           middleware.WithLogger(log)(middleware.WithRecovery(handler)),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// Run serves until ctx is done and then shuts the server down, giving in-flight
// requests up to shutdownTimeout to finish.
func Run(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, log logr.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting web server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
