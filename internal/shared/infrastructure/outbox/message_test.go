package outbox_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lektio/lektio/internal/shared/domain"
	"github.com/lektio/lektio/internal/shared/infrastructure/outbox"
)

type bookingRequestedEvent struct {
	domain.BaseEvent
	TutorID   uuid.UUID `json:"tutor_id"`
	StudentID uuid.UUID `json:"student_id"`
}

func newTestEvent(aggregateID uuid.UUID) *bookingRequestedEvent {
	return &bookingRequestedEvent{
		BaseEvent: domain.NewBaseEvent(aggregateID, "Booking", "scheduling.booking.requested"),
		TutorID:   uuid.New(),
		StudentID: uuid.New(),
	}
}

func TestNewMessage(t *testing.T) {
	aggregateID := uuid.New()
	event := newTestEvent(aggregateID)

	msg, err := outbox.NewMessage(event)
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), msg.EventID)
	assert.Equal(t, aggregateID, msg.AggregateID)
	assert.Equal(t, "Booking", msg.AggregateType)
	assert.Equal(t, "scheduling.booking.requested", msg.RoutingKey)
	assert.Equal(t, event.OccurredAt(), msg.CreatedAt)
	assert.NotEmpty(t, msg.Payload)
	assert.False(t, msg.IsPublished())
}

func TestMessage_IsPublished(t *testing.T) {
	msg := &outbox.Message{}
	assert.False(t, msg.IsPublished())

	now := time.Now()
	msg.PublishedAt = &now
	assert.True(t, msg.IsPublished())
}

func TestMessage_CanRetry(t *testing.T) {
	msg := &outbox.Message{RetryCount: 2}

	assert.True(t, msg.CanRetry(3))
	assert.False(t, msg.CanRetry(2))
}

func TestMessagesFromEvents(t *testing.T) {
	events := []domain.DomainEvent{
		newTestEvent(uuid.New()),
		newTestEvent(uuid.New()),
	}

	msgs, err := outbox.MessagesFromEvents(events)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, events[0].EventID(), msgs[0].EventID)
	assert.Equal(t, events[1].EventID(), msgs[1].EventID)
}
