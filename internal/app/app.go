package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/avezhnov/scholarwatch/internal/config"
	"github.com/avezhnov/scholarwatch/internal/delivery/httpapi"
	"github.com/avezhnov/scholarwatch/internal/domain"
	"github.com/avezhnov/scholarwatch/internal/infra/db"
	"github.com/avezhnov/scholarwatch/internal/infra/log"
	"github.com/avezhnov/scholarwatch/internal/infra/logicmill"
	"github.com/avezhnov/scholarwatch/internal/infra/memstore"
	"github.com/avezhnov/scholarwatch/internal/usecase"
	"go.uber.org/zap"
)

// App is the composition root: it owns the scheduler and HTTP server and
// ties their lifecycle to the process context.
type App struct {
	cfg       config.Config
	server    *http.Server
	scheduler *usecase.Scheduler
	logger    *zap.Logger
	cleanupFn func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var (
		alertRepo domain.AlertRepository
		notifRepo domain.NotificationRepository
		cleanup   func() error
	)
	switch cfg.StoreDriver {
	case "postgres":
		conn, err := db.Open(cfg, logger)
		if err != nil {
			return nil, err
		}
		alertRepo = db.NewAlertRepository(conn)
		notifRepo = db.NewNotificationRepository(conn)
		cleanup = func() error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
	case "memory":
		alertRepo, notifRepo = memstore.New()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	matcher := logicmill.NewClient(cfg.LogicMillBaseURL, cfg.LogicMillToken, cfg.LogicMillTimeout, logger)
	service := usecase.NewAlertService(alertRepo, notifRepo, matcher, logger)
	scheduler := usecase.NewScheduler(service, usecase.SchedulerOptions{
		CheckInterval: cfg.SchedulerCheckInterval,
		BatchSize:     cfg.SchedulerBatchSize,
		BatchPause:    cfg.SchedulerBatchPause,
		StopTimeout:   cfg.SchedulerStopTimeout,
	}, logger)

	handlers := httpapi.NewHandlers(service, logger)
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewRouter(handlers, cfg.CORSOrigins),
	}

	return &App{cfg: cfg, server: server, scheduler: scheduler, logger: logger, cleanupFn: cleanup}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("scholarwatch starting", zap.String("addr", a.cfg.HTTPAddr), zap.String("store", a.cfg.StoreDriver))
	a.scheduler.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (a *App) Shutdown() {
	a.logger.Info("scholarwatch shutting down")
	a.scheduler.Stop()
	if a.cleanupFn != nil {
		if err := a.cleanupFn(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
