// Package app wires repositories, handlers and infrastructure into a
// runnable container.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	exerciseCommands "github.com/lektio/lektio/internal/exercises/application/commands"
	exerciseQueries "github.com/lektio/lektio/internal/exercises/application/queries"
	exerciseDomain "github.com/lektio/lektio/internal/exercises/domain"
	exercisePersistence "github.com/lektio/lektio/internal/exercises/infrastructure/persistence"
	scheduleCommands "github.com/lektio/lektio/internal/scheduling/application/commands"
	scheduleQueries "github.com/lektio/lektio/internal/scheduling/application/queries"
	scheduleServices "github.com/lektio/lektio/internal/scheduling/application/services"
	schedulingDomain "github.com/lektio/lektio/internal/scheduling/domain"
	"github.com/lektio/lektio/internal/scheduling/infrastructure/cache"
	schedulePersistence "github.com/lektio/lektio/internal/scheduling/infrastructure/persistence"
	sharedApplication "github.com/lektio/lektio/internal/shared/application"
	"github.com/lektio/lektio/internal/shared/infrastructure/eventbus"
	"github.com/lektio/lektio/internal/shared/infrastructure/migrations"
	"github.com/lektio/lektio/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/lektio/lektio/internal/shared/infrastructure/persistence"
	"github.com/lektio/lektio/pkg/config"

	_ "modernc.org/sqlite"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database (exactly one of the two is set)
	DB       *pgxpool.Pool
	SQLiteDB *sql.DB

	// Redis (nil in local mode)
	RedisClient *redis.Client
	SlotCache   *cache.RedisSlotCache

	// Repositories
	AvailabilityRepo schedulingDomain.AvailabilityRepository
	BookingRepo      schedulingDomain.BookingRepository
	ExerciseRepo     exerciseDomain.ExerciseRepository
	OutboxRepo       outbox.Repository

	// Eventing
	EventPublisher eventbus.Publisher
	EventBus       *eventbus.InProcessEventBus

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Scheduling command handlers
	AddWindowHandler      *scheduleCommands.AddWindowHandler
	RemoveWindowHandler   *scheduleCommands.RemoveWindowHandler
	RequestBookingHandler *scheduleCommands.RequestBookingHandler
	CancelBookingHandler  *scheduleCommands.CancelBookingHandler

	// Scheduling query handlers
	FreeSlotsHandler   *scheduleQueries.FreeSlotsHandler
	BookingsForHandler *scheduleQueries.BookingsForHandler
	GetBookingHandler  *scheduleQueries.GetBookingHandler

	// Exercise command handlers
	CreateExerciseHandler *exerciseCommands.CreateExerciseHandler
	AcceptExerciseHandler *exerciseCommands.AcceptExerciseHandler
	SubmitSolutionHandler *exerciseCommands.SubmitSolutionHandler
	CancelExerciseHandler *exerciseCommands.CancelExerciseHandler

	// Exercise query handlers
	ExercisesForStudentHandler *exerciseQueries.ExercisesForStudentHandler
	ExercisesForTutorHandler   *exerciseQueries.ExercisesForTutorHandler
	OpenExercisesHandler       *exerciseQueries.OpenExercisesHandler
	GetExerciseHandler         *exerciseQueries.GetExerciseHandler

	// Background services
	OutboxProcessor *outbox.Processor
	CompletionSweep *scheduleServices.CompletionSweep
}

// NewContainer creates a production container backed by Postgres, Redis and
// RabbitMQ. Redis and RabbitMQ degrade gracefully in development.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	c.DB = pool

	c.AvailabilityRepo = schedulePersistence.NewPostgresAvailabilityRepository(pool)
	c.BookingRepo = schedulePersistence.NewPostgresBookingRepository(pool)
	c.ExerciseRepo = exercisePersistence.NewPostgresExerciseRepository(pool)
	c.OutboxRepo = outbox.NewPostgresRepository(pool)
	c.UnitOfWork = sharedPersistence.NewPostgresUnitOfWork(pool)

	c.setupRedis(ctx, cfg, logger)
	c.setupPublisher(cfg, logger)
	c.buildHandlers()

	return c, nil
}

// NewLocalContainer creates a container backed by SQLite with in-process
// eventing. No external services are required.
func NewLocalContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	db, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite serializes writers; a single connection avoids busy errors.
	db.SetMaxOpenConns(1)

	if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	c.SQLiteDB = db

	c.AvailabilityRepo = schedulePersistence.NewSQLiteAvailabilityRepository(db)
	c.BookingRepo = schedulePersistence.NewSQLiteBookingRepository(db)
	c.ExerciseRepo = exercisePersistence.NewSQLiteExerciseRepository(db)
	c.OutboxRepo = outbox.NewSQLiteRepository(db)
	c.UnitOfWork = sharedPersistence.NewSQLiteUnitOfWork(db)

	bus := eventbus.NewInProcessEventBus(logger)
	c.EventBus = bus
	c.EventPublisher = bus

	c.buildHandlers()
	return c, nil
}

func (c *Container) setupRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("invalid redis url, slot cache disabled", "error", err)
		return
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, slot cache disabled", "error", err)
		_ = client.Close()
		return
	}

	c.RedisClient = client
	c.SlotCache = cache.NewRedisSlotCache(client, cfg.SlotCacheTTL, logger)
}

func (c *Container) setupPublisher(cfg *config.Config, logger *slog.Logger) {
	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
		c.EventPublisher = eventbus.NewNoopPublisher(logger)
		return
	}
	c.EventPublisher = publisher
}

func (c *Container) buildHandlers() {
	// The interfaces stay nil unless the Redis cache is up; handlers skip a
	// nil cache.
	var invalidator scheduleCommands.SlotCacheInvalidator
	var slotCache scheduleQueries.SlotCache
	if c.SlotCache != nil {
		invalidator = c.SlotCache
		slotCache = c.SlotCache
	}

	c.AddWindowHandler = scheduleCommands.NewAddWindowHandler(c.AvailabilityRepo, c.OutboxRepo, c.UnitOfWork, invalidator)
	c.RemoveWindowHandler = scheduleCommands.NewRemoveWindowHandler(c.AvailabilityRepo, c.OutboxRepo, c.UnitOfWork, invalidator)
	c.RequestBookingHandler = scheduleCommands.NewRequestBookingHandler(c.AvailabilityRepo, c.BookingRepo, c.OutboxRepo, c.UnitOfWork, invalidator)
	c.CancelBookingHandler = scheduleCommands.NewCancelBookingHandler(c.BookingRepo, c.OutboxRepo, c.UnitOfWork, invalidator)

	c.FreeSlotsHandler = scheduleQueries.NewFreeSlotsHandler(c.AvailabilityRepo, slotCache)
	c.BookingsForHandler = scheduleQueries.NewBookingsForHandler(c.BookingRepo)
	c.GetBookingHandler = scheduleQueries.NewGetBookingHandler(c.BookingRepo)

	c.CreateExerciseHandler = exerciseCommands.NewCreateExerciseHandler(c.ExerciseRepo, c.OutboxRepo, c.UnitOfWork)
	c.AcceptExerciseHandler = exerciseCommands.NewAcceptExerciseHandler(c.ExerciseRepo, c.OutboxRepo, c.UnitOfWork)
	c.SubmitSolutionHandler = exerciseCommands.NewSubmitSolutionHandler(c.ExerciseRepo, c.OutboxRepo, c.UnitOfWork)
	c.CancelExerciseHandler = exerciseCommands.NewCancelExerciseHandler(c.ExerciseRepo, c.OutboxRepo, c.UnitOfWork)

	c.ExercisesForStudentHandler = exerciseQueries.NewExercisesForStudentHandler(c.ExerciseRepo)
	c.ExercisesForTutorHandler = exerciseQueries.NewExercisesForTutorHandler(c.ExerciseRepo)
	c.OpenExercisesHandler = exerciseQueries.NewOpenExercisesHandler(c.ExerciseRepo)
	c.GetExerciseHandler = exerciseQueries.NewGetExerciseHandler(c.ExerciseRepo)

	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval: c.Config.OutboxPollInterval,
		BatchSize:    c.Config.OutboxBatchSize,
		MaxRetries:   c.Config.OutboxMaxRetries,
	}, c.Logger)

	c.CompletionSweep = scheduleServices.NewCompletionSweep(c.BookingRepo, c.OutboxRepo, c.UnitOfWork, scheduleServices.SweepConfig{
		Interval:  c.Config.SweepInterval,
		BatchSize: c.Config.SweepBatchSize,
	}, c.Logger)
}

// Close releases all container resources.
func (c *Container) Close() {
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("failed to close event publisher", "error", err)
		}
	}
	if c.SlotCache != nil {
		if err := c.SlotCache.Close(); err != nil {
			c.Logger.Warn("failed to close slot cache", "error", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	if c.SQLiteDB != nil {
		if err := c.SQLiteDB.Close(); err != nil {
			c.Logger.Warn("failed to close sqlite database", "error", err)
		}
	}
}
