package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/lektio/lektio/adapter/cli"
	"github.com/lektio/lektio/adapter/cli/availability"
	"github.com/lektio/lektio/adapter/cli/booking"
	"github.com/lektio/lektio/adapter/cli/exercise"
	"github.com/lektio/lektio/internal/app"
	"github.com/lektio/lektio/pkg/config"
	"github.com/lektio/lektio/pkg/observability"
)

func main() {
	// Setup logger
	logger := observability.NewLogger(observability.DefaultLogConfig())

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// In development without .env, use defaults
		logger.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development", LocalMode: true}
	}

	// Update logger level based on config
	logCfg := observability.DefaultLogConfig()
	logCfg.Level = cfg.LogLevel
	if cfg.IsDevelopment() {
		logCfg.Level = "debug"
	}
	logger = observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	// Try to initialize the full container
	var cliApp *cli.App
	container, err := newContainer(ctx, cfg, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			logger.Warn("failed to initialize container, running in limited mode", "error", err)
			// In development, allow CLI to run without database
			cliApp = nil
		} else {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	} else {
		defer container.Close()

		// Start outbox processor in background (optional in CLI)
		if cfg.OutboxProcessorEnabled {
			go container.OutboxProcessor.Start(ctx)
		} else {
			logger.Info("outbox processor disabled in CLI")
		}

		// Create CLI app with handlers
		cliApp = cli.NewApp(
			container.AddWindowHandler,
			container.RemoveWindowHandler,
			container.RequestBookingHandler,
			container.CancelBookingHandler,
			container.FreeSlotsHandler,
			container.BookingsForHandler,
			container.GetBookingHandler,
			container.CreateExerciseHandler,
			container.AcceptExerciseHandler,
			container.SubmitSolutionHandler,
			container.CancelExerciseHandler,
			container.ExercisesForStudentHandler,
			container.ExercisesForTutorHandler,
			container.OpenExercisesHandler,
			container.GetExerciseHandler,
		)

		if cfg.UserID != "" {
			userID, err := uuid.Parse(cfg.UserID)
			if err != nil {
				logger.Error("invalid LEKTIO_USER_ID", "error", err)
				os.Exit(1)
			}
			cliApp.SetCurrentUserID(userID)
		}
	}

	// Set the CLI app
	cli.SetApp(cliApp)

	// Register commands
	cli.AddCommand(availability.Cmd)
	cli.AddCommand(booking.Cmd)
	cli.AddCommand(exercise.Cmd)

	// Execute CLI
	cli.Execute()
}

func newContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app.Container, error) {
	if cfg.LocalMode {
		return app.NewLocalContainer(ctx, cfg, logger)
	}
	return app.NewContainer(ctx, cfg, logger)
}
