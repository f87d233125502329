package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/AntonTsoy/book-catalog/pkg/config"
	"go.uber.org/zap"
)

type App struct {
	httpServer *http.Server
	cleanup    func() error
	log        *zap.Logger
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	infra, err := setupInfra(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	router, err := setupHTTP(cfg, infra, log)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}

	return &App{
		httpServer: &http.Server{
			Addr:              cfg.ListenAddr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		cleanup: infra.Close,
		log:     log,
	}, nil
}

// Run blocks until the server stops. A clean Shutdown is not an error. When
// the server fails on its own, Run closes the infrastructure before returning.
func (a *App) Run() error {
	a.log.Info("http server listening", zap.String("addr", a.httpServer.Addr))
	err := a.httpServer.ListenAndServe()
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	if a.cleanup != nil {
		if cerr := a.cleanup(); cerr != nil {
			a.log.Error("failed to release resources", zap.Error(cerr))
		}
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if a.cleanup != nil {
		return a.cleanup()
	}
	return nil
}
