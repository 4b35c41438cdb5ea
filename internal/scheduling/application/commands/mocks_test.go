package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/lektio/lektio/internal/scheduling/domain"
	"github.com/lektio/lektio/internal/shared/infrastructure/outbox"
)

// mockAvailabilityRepo is a mock implementation of domain.AvailabilityRepository.
type mockAvailabilityRepo struct {
	mock.Mock
}

func (m *mockAvailabilityRepo) Save(ctx context.Context, window *domain.AvailabilityWindow) error {
	args := m.Called(ctx, window)
	return args.Error(0)
}

func (m *mockAvailabilityRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.AvailabilityWindow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvailabilityWindow), args.Error(1)
}

func (m *mockAvailabilityRepo) ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]*domain.AvailabilityWindow, error) {
	args := m.Called(ctx, tutorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AvailabilityWindow), args.Error(1)
}

func (m *mockAvailabilityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

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

// mockOutboxRepo is a mock implementation of outbox.Repository.
type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, errMsg, nextRetryAt)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}

// mockUnitOfWork is a mock implementation of application.UnitOfWork.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// fakeInvalidator records invalidated tutor IDs.
type fakeInvalidator struct {
	tutors []uuid.UUID
}

func (f *fakeInvalidator) Invalidate(_ context.Context, tutorID uuid.UUID) {
	f.tutors = append(f.tutors, tutorID)
}
