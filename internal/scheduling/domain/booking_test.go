package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lektio/lektio/internal/scheduling/domain"
)

func scheduledBooking(t *testing.T) *domain.Booking {
	t.Helper()
	start := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	b, err := domain.NewBooking(uuid.New(), uuid.New(), mustRange(t, start, start.Add(time.Hour)))
	require.NoError(t, err)
	return b
}

func TestNewBooking(t *testing.T) {
	tutorID := uuid.New()
	studentID := uuid.New()
	start := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	tr := mustRange(t, start, start.Add(time.Hour))

	b, err := domain.NewBooking(tutorID, studentID, tr)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, b.ID())
	assert.Equal(t, tutorID, b.TutorID())
	assert.Equal(t, studentID, b.StudentID())
	assert.Equal(t, domain.BookingStatusScheduled, b.Status())
	assert.Equal(t, int64(0), b.Version())

	events := b.DomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, domain.RoutingKeyBookingRequested, events[0].RoutingKey())
}

func TestNewBooking_MissingRange(t *testing.T) {
	_, err := domain.NewBooking(uuid.New(), uuid.New(), domain.TimeRange{})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
}

func TestBooking_Complete(t *testing.T) {
	b := scheduledBooking(t)

	err := b.Complete(b.TimeRange().End().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCompleted, b.Status())
}

func TestBooking_Complete_BeforeEnd(t *testing.T) {
	b := scheduledBooking(t)

	err := b.Complete(b.TimeRange().Start().Add(time.Minute))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.BookingStatusScheduled, b.Status())
}

func TestBooking_Cancel(t *testing.T) {
	b := scheduledBooking(t)

	err := b.Cancel(b.StudentID(), b.TimeRange().Start().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, b.Status())
}

func TestBooking_Cancel_ByTutor(t *testing.T) {
	b := scheduledBooking(t)

	err := b.Cancel(b.TutorID(), b.TimeRange().Start().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, b.Status())
}

func TestBooking_Cancel_NonParticipant(t *testing.T) {
	b := scheduledBooking(t)

	err := b.Cancel(uuid.New(), b.TimeRange().Start().Add(-time.Hour))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, domain.BookingStatusScheduled, b.Status())
}

func TestBooking_Cancel_AfterStart(t *testing.T) {
	b := scheduledBooking(t)

	err := b.Cancel(b.StudentID(), b.TimeRange().Start())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestBooking_TerminalStatesAreFinal(t *testing.T) {
	after := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	before := time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC)

	cancelled := scheduledBooking(t)
	require.NoError(t, cancelled.Cancel(cancelled.StudentID(), before))
	assert.ErrorIs(t, cancelled.Complete(after), domain.ErrInvalidTransition)
	assert.ErrorIs(t, cancelled.Cancel(cancelled.StudentID(), before), domain.ErrInvalidTransition)

	completed := scheduledBooking(t)
	require.NoError(t, completed.Complete(after))
	assert.ErrorIs(t, completed.Cancel(completed.TutorID(), before), domain.ErrInvalidTransition)
	assert.ErrorIs(t, completed.Complete(after), domain.ErrInvalidTransition)
}

func TestBookingStatus(t *testing.T) {
	assert.True(t, domain.BookingStatusCompleted.IsTerminal())
	assert.True(t, domain.BookingStatusCancelled.IsTerminal())
	assert.False(t, domain.BookingStatusScheduled.IsTerminal())

	assert.True(t, domain.BookingStatusScheduled.Valid())
	assert.False(t, domain.BookingStatus("pending").Valid())
}

func TestRehydrateBooking(t *testing.T) {
	id := uuid.New()
	tutorID := uuid.New()
	studentID := uuid.New()
	start := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	tr := mustRange(t, start, start.Add(time.Hour))
	createdAt := start.Add(-24 * time.Hour)

	b := domain.RehydrateBooking(id, tutorID, studentID, tr, domain.BookingStatusScheduled, 3, createdAt, createdAt)

	assert.Equal(t, id, b.ID())
	assert.Equal(t, int64(3), b.Version())
	assert.Equal(t, domain.BookingStatusScheduled, b.Status())
	assert.Empty(t, b.DomainEvents())
}
