package builder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App is the HTTP service with the resources it owns
type App struct {
	server          *http.Server
	db              *pgxpool.Pool
	logger          *zap.Logger
	shutdownTimeout time.Duration
}

// Run serves HTTP until SIGINT/SIGTERM or a listener failure, then drains in-flight requests
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
		a.logger.Error("HTTP server failed", zap.Error(serveErr))
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	}

	if err := a.shutdown(); err != nil {
		return errors.Join(serveErr, err)
	}
	return serveErr
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	defer func() {
		if a.db != nil {
			a.db.Close()
		}
		_ = a.logger.Sync()
	}()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	a.logger.Info("application stopped")
	return nil
}
