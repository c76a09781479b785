package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/lessonflow/internal/api"
	"github.com/vytor/lessonflow/internal/config"
	"github.com/vytor/lessonflow/internal/content"
	"github.com/vytor/lessonflow/internal/db"
	"github.com/vytor/lessonflow/internal/jobs"
	"github.com/vytor/lessonflow/internal/logger"
	"github.com/vytor/lessonflow/internal/metrics"
	"github.com/vytor/lessonflow/internal/repository/sqlite"
	"github.com/vytor/lessonflow/internal/scheduler"
	"github.com/vytor/lessonflow/internal/services"
	"github.com/vytor/lessonflow/internal/store"
	"github.com/vytor/lessonflow/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Lessonflow Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("content_api_url=%s", cfg.ContentAPIURL)
	log.Debug("content_api_timeout=%v", cfg.ContentAPITimeout)
	log.Debug("week_start=%s", cfg.WeekStart)
	log.Debug("persist_worker_count=%d", cfg.PersistWorkerCount)
	log.Debug("persist_queue_size=%d", cfg.PersistQueueSize)
	log.Debug("session_idle_timeout=%v", cfg.SessionIdleTimeout)
	log.Debug("session_evict_every=%v", cfg.EvictEvery)
	log.Debug("cors_allowed_origins=%v", cfg.AllowedOrigins)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	progressStore := store.New(sqlite.NewKVStore(database.DB))
	contentClient := content.New(cfg.ContentAPIURL, cfg.ContentAPITimeout)

	// Initialize worker pool
	persistPool := worker.NewPool(cfg.PersistWorkerCount, cfg.PersistQueueSize)
	queue := jobs.NewWorkerQueue(persistPool, progressStore)
	m := metrics.New(persistPool.QueueSize)

	// Initialize services
	lessonService := services.NewLessonService(contentClient, progressStore, queue, services.LessonServiceConfig{
		IdleTimeout: cfg.SessionIdleTimeout,
		Metrics:     m,
	})
	progressService := services.NewProgressService(contentClient, progressStore, cfg.WeekStart, lessonService)

	srv := &api.Server{
		DB:              database,
		LessonService:   lessonService,
		ProgressService: progressService,
		Metrics:         m,
		RequestTimeout:  cfg.RequestTimeout,
		AllowedOrigins:  cfg.AllowedOrigins,
	}

	ctx, cancel := context.WithCancel(context.Background())
	persistPool.Start(ctx)

	sched := scheduler.New(logger.NewContext(ctx, log), lessonService)
	if err := sched.Start(cfg.EvictEvery); err != nil {
		log.Error("failed to start scheduler: %v", err)
		os.Exit(1)
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	sched.Stop()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Close live sessions so their study time is queued before the pool drains.
	log.Debug("closed %d live sessions", lessonService.CloseAll(shutdownCtx))

	log.Debug("stopping persistence pool")
	persistPool.Stop()
	cancel()

	log.Info("===========================================")
	log.Info("Lessonflow Server Stopped")
	log.Info("===========================================")
}
