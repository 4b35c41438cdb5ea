package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lektio/lektio/internal/scheduling/domain"
	sharedApplication "github.com/lektio/lektio/internal/shared/application"
	"github.com/lektio/lektio/internal/shared/infrastructure/outbox"
)

// SweepConfig holds configuration for the completion sweep.
type SweepConfig struct {
	Interval  time.Duration
	BatchSize int
}

// DefaultSweepConfig returns sensible defaults.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Interval:  time.Minute,
		BatchSize: 100,
	}
}

// CompletionSweep periodically transitions scheduled bookings whose end has
// passed to completed. It is the external actor for the
// scheduled-to-completed transition: the transition goes through the same
// version compare-and-swap as every other write, so a sweep racing a
// cancellation simply loses and skips the booking.
type CompletionSweep struct {
	bookingRepo domain.BookingRepository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
	config      SweepConfig
	logger      *slog.Logger

	wg       sync.WaitGroup
	stopChan chan struct{}
	running  bool
	mu       sync.Mutex
}

// NewCompletionSweep creates a new completion sweep.
func NewCompletionSweep(
	bookingRepo domain.BookingRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	config SweepConfig,
	logger *slog.Logger,
) *CompletionSweep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompletionSweep{
		bookingRepo: bookingRepo,
		outboxRepo:  outboxRepo,
		uow:         uow,
		config:      config,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the sweep loop in a goroutine.
func (s *CompletionSweep) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("completion sweep started", "interval", s.config.Interval)
}

// Stop gracefully stops the sweep.
func (s *CompletionSweep) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("completion sweep stopped")
}

func (s *CompletionSweep) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("completion sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce completes one batch of ended bookings and returns how many were
// completed. Bookings that were concurrently modified are skipped; they will
// be picked up again on the next pass if still due.
func (s *CompletionSweep) SweepOnce(ctx context.Context) (int, error) {
	due, err := s.bookingRepo.DueForCompletion(ctx, s.config.BatchSize)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, booking := range due {
		if err := s.completeBooking(ctx, booking); err != nil {
			if errors.Is(err, domain.ErrVersionMismatch) || errors.Is(err, domain.ErrInvalidTransition) {
				s.logger.Debug("skipping concurrently modified booking", "booking_id", booking.ID())
				continue
			}
			return completed, err
		}
		completed++
	}

	return completed, nil
}

func (s *CompletionSweep) completeBooking(ctx context.Context, booking *domain.Booking) error {
	return sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		if err := booking.Complete(time.Now().UTC()); err != nil {
			return err
		}

		if err := s.bookingRepo.Transition(txCtx, booking.ID(), booking.Version(), domain.BookingStatusCompleted); err != nil {
			return err
		}

		events := booking.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(uuid.Nil))

		msgs, err := outbox.MessagesFromEvents(events)
		if err != nil {
			return err
		}
		return s.outboxRepo.SaveBatch(txCtx, msgs)
	})
}
