package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"memoryjournal/internal/db"
	"memoryjournal/internal/handlers"
	"memoryjournal/internal/metrics"
	mw "memoryjournal/internal/middleware"
	"memoryjournal/internal/mood"
	"memoryjournal/internal/scheduler"
	"memoryjournal/internal/services"
	"memoryjournal/internal/store"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBConnLifetime)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := db.RunMigrations(ctx, conn); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	encKey, blindKey, err := cfg.Keys()
	if err != nil {
		return err
	}
	encSvc, err := services.NewEncryptionService(encKey, blindKey)
	if err != nil {
		return fmt.Errorf("encryption service: %w", err)
	}

	var (
		rec            metrics.Recorder = metrics.Noop{}
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New(reg)
		rec, metricsHandler = m, m.Handler()
	}

	st := store.New(conn)
	secret := []byte(cfg.JWTSecret)
	router := handlers.NewRouter(handlers.RouterDeps{
		Auth:           handlers.NewAuthHandler(st, encSvc, secret, cfg.TokenTTL, time.Now, logger),
		Users:          handlers.NewUserHandler(st, encSvc, logger),
		Journals:       handlers.NewJournalHandler(st, encSvc, mood.DefaultLexicon(), logger),
		Analytics:      handlers.NewAnalyticsHandler(st, mood.DefaultWeights(), time.Now, logger),
		Reminders:      handlers.NewReminderHandler(st, logger),
		Media:          handlers.NewMediaHandler(st, logger),
		Health:         handlers.NewHealthHandler(conn, logger),
		AuthMW:         mw.NewAuthMiddleware(secret),
		Recorder:       rec,
		MetricsHandler: metricsHandler,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	sched := scheduler.New(st, scheduler.LogNotifier{Log: logger.Named("reminders")}, rec, logger.Named("scheduler"),
		scheduler.Options{Interval: cfg.ReminderScanInterval, Horizon: cfg.ReminderHorizon})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", string(cfg.Environment)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown initiated")
	case runErr = <-serveErr:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	wg.Wait()
	logger.Info("server stopped")
	return runErr
}
