package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	scheduleServices "github.com/lektio/lektio/internal/scheduling/application/services"
	schedulePersistence "github.com/lektio/lektio/internal/scheduling/infrastructure/persistence"
	"github.com/lektio/lektio/internal/shared/infrastructure/eventbus"
	"github.com/lektio/lektio/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/lektio/lektio/internal/shared/infrastructure/persistence"
	"github.com/lektio/lektio/pkg/config"
	"github.com/lektio/lektio/pkg/observability"
)

func main() {
	// Setup logger
	logger := observability.NewLogger(observability.LogConfig{
		Level:       "info",
		Format:      observability.LogFormatText,
		Output:      os.Stdout,
		ServiceName: "lektio-worker",
	})

	logger.Info("starting lektio worker")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Update logger level based on config
	logCfg := observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      observability.LogFormatText,
		Output:      os.Stdout,
		ServiceName: "lektio-worker",
	}
	if cfg.IsProduction() {
		logCfg.Format = observability.LogFormatJSON
	}
	if cfg.IsDevelopment() {
		logCfg.Level = "debug"
	}
	logger = observability.NewLogger(logCfg)

	// Connect to database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Create outbox repository
	outboxRepo := outbox.NewPostgresRepository(pool)

	// Create event publisher
	var publisher eventbus.Publisher
	rabbitPublisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
			publisher = eventbus.NewNoopPublisher(logger)
		} else {
			logger.Error("failed to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
	} else {
		publisher = rabbitPublisher
		defer rabbitPublisher.Close()
	}
	logger.Info("event publisher initialized")

	// Create outbox processor
	processorConfig := outbox.ProcessorConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxRetries:   cfg.OutboxMaxRetries,
	}
	processor := outbox.NewProcessor(outboxRepo, publisher, processorConfig, logger)

	// Start processing
	logger.Info("starting outbox processor",
		"poll_interval", processorConfig.PollInterval,
		"batch_size", processorConfig.BatchSize,
		"max_retries", processorConfig.MaxRetries,
	)

	if err := processor.Start(ctx); err != nil {
		logger.Error("failed to start outbox processor", "error", err)
		os.Exit(1)
	}

	// Sweep past bookings from scheduled to completed
	bookingRepo := schedulePersistence.NewPostgresBookingRepository(pool)
	uow := sharedPersistence.NewPostgresUnitOfWork(pool)
	sweep := scheduleServices.NewCompletionSweep(bookingRepo, outboxRepo, uow, scheduleServices.SweepConfig{
		Interval:  cfg.SweepInterval,
		BatchSize: cfg.SweepBatchSize,
	}, logger)

	logger.Info("starting completion sweep", "interval", cfg.SweepInterval, "batch_size", cfg.SweepBatchSize)
	sweep.Start(ctx)

	cleanupTicker := time.NewTicker(cfg.OutboxCleanupInterval)
	defer cleanupTicker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-cleanupTicker.C:
				deleted, err := outboxRepo.DeleteOld(ctx, cfg.OutboxRetentionDays)
				if err != nil {
					logger.Error("outbox cleanup failed", "error", err)
					continue
				}
				if deleted > 0 {
					logger.Info("outbox cleanup completed", "deleted", deleted, "retention_days", cfg.OutboxRetentionDays)
				}
			}
		}
	}()

	if cfg.WorkerHealthAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			response := map[string]any{
				"status":  "ok",
				"running": processor.IsRunning(),
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(response)
		})

		mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
			checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := pool.Ping(checkCtx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"status": "not_ready",
					"error":  err.Error(),
				})
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "ready"})
		})

		healthSrv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("health server error", "error", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := healthSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	// Wait for shutdown
	<-ctx.Done()
	logger.Info("shutting down worker")

	sweep.Stop()
	processor.Stop()
	logger.Info("worker stopped")

	fmt.Println("Goodbye!")
}
