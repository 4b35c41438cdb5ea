package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lektio/lektio/internal/scheduling/domain"
	"github.com/lektio/lektio/internal/shared/infrastructure/outbox"
)

// mockBookingRepo is a mock implementation of domain.BookingRepository.
type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) Append(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) BookingsFor(ctx context.Context, tutorID uuid.UUID, timeRange domain.TimeRange) ([]*domain.Booking, error) {
	args := m.Called(ctx, tutorID, timeRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) DueForCompletion(ctx context.Context, limit int) ([]*domain.Booking, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) Transition(ctx context.Context, id uuid.UUID, expectedVersion int64, status domain.BookingStatus) error {
	args := m.Called(ctx, id, expectedVersion, status)
	return args.Error(0)
}

type noopUnitOfWork struct{}

func (noopUnitOfWork) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (noopUnitOfWork) Commit(context.Context) error                       { return nil }
func (noopUnitOfWork) Rollback(context.Context) error                     { return nil }

func endedBooking(t *testing.T, version int64) *domain.Booking {
	t.Helper()
	start := time.Now().UTC().Add(-2 * time.Hour)
	tr, err := domain.NewTimeRange(start, start.Add(time.Hour))
	require.NoError(t, err)
	return domain.RehydrateBooking(uuid.New(), uuid.New(), uuid.New(), tr,
		domain.BookingStatusScheduled, version, start, start)
}

func TestCompletionSweep_SweepOnce(t *testing.T) {
	t.Run("completes ended bookings", func(t *testing.T) {
		repo := new(mockBookingRepo)
		outboxRepo := outbox.NewInMemoryRepository()
		sweep := NewCompletionSweep(repo, outboxRepo, noopUnitOfWork{}, DefaultSweepConfig(), nil)

		first := endedBooking(t, 0)
		second := endedBooking(t, 3)

		repo.On("DueForCompletion", mock.Anything, 100).Return([]*domain.Booking{first, second}, nil)
		repo.On("Transition", mock.Anything, first.ID(), int64(0), domain.BookingStatusCompleted).Return(nil)
		repo.On("Transition", mock.Anything, second.ID(), int64(3), domain.BookingStatusCompleted).Return(nil)

		completed, err := sweep.SweepOnce(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, completed)
		repo.AssertExpectations(t)

		msgs, err := outboxRepo.GetUnpublished(context.Background(), 10)
		require.NoError(t, err)
		assert.Len(t, msgs, 2)
	})

	t.Run("skips bookings that lost the version race", func(t *testing.T) {
		repo := new(mockBookingRepo)
		sweep := NewCompletionSweep(repo, outbox.NewInMemoryRepository(), noopUnitOfWork{}, DefaultSweepConfig(), nil)

		stale := endedBooking(t, 1)
		fresh := endedBooking(t, 0)

		repo.On("DueForCompletion", mock.Anything, 100).Return([]*domain.Booking{stale, fresh}, nil)
		repo.On("Transition", mock.Anything, stale.ID(), int64(1), domain.BookingStatusCompleted).
			Return(domain.ErrVersionMismatch)
		repo.On("Transition", mock.Anything, fresh.ID(), int64(0), domain.BookingStatusCompleted).Return(nil)

		completed, err := sweep.SweepOnce(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, completed)
	})

	t.Run("nothing due", func(t *testing.T) {
		repo := new(mockBookingRepo)
		sweep := NewCompletionSweep(repo, outbox.NewInMemoryRepository(), noopUnitOfWork{}, DefaultSweepConfig(), nil)

		repo.On("DueForCompletion", mock.Anything, 100).Return([]*domain.Booking{}, nil)

		completed, err := sweep.SweepOnce(context.Background())

		require.NoError(t, err)
		assert.Zero(t, completed)
	})
}

func TestCompletionSweep_StartStop(t *testing.T) {
	repo := new(mockBookingRepo)
	config := SweepConfig{Interval: 10 * time.Millisecond, BatchSize: 10}
	sweep := NewCompletionSweep(repo, outbox.NewInMemoryRepository(), noopUnitOfWork{}, config, nil)

	repo.On("DueForCompletion", mock.Anything, 10).Return([]*domain.Booking{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweep.Start(ctx)

	assert.Eventually(t, func() bool {
		for _, call := range repo.Calls {
			if call.Method == "DueForCompletion" {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	sweep.Stop()
}
