package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lektio/lektio/internal/shared/infrastructure/outbox"
)

type fakePublisher struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, routingKey)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func saveMessage(t *testing.T, repo outbox.Repository) *outbox.Message {
	t.Helper()
	msg, err := outbox.NewMessage(newTestEvent(uuid.New()))
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), msg))
	return msg
}

func TestProcessor_ProcessOnce_PublishesAndMarks(t *testing.T) {
	repo := outbox.NewInMemoryRepository()
	publisher := &fakePublisher{}
	processor := outbox.NewProcessor(repo, publisher, outbox.DefaultProcessorConfig(), nil)

	msg := saveMessage(t, repo)

	err := processor.ProcessOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"scheduling.booking.requested"}, publisher.published)

	pending, err := repo.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "message %d should be marked published", msg.ID)
}

func TestProcessor_ProcessOnce_FailureSchedulesRetry(t *testing.T) {
	repo := outbox.NewInMemoryRepository()
	publisher := &fakePublisher{err: errors.New("broker unavailable")}
	processor := outbox.NewProcessor(repo, publisher, outbox.DefaultProcessorConfig(), nil)

	saveMessage(t, repo)

	err := processor.ProcessOnce(context.Background())
	require.NoError(t, err)

	// Backoff pushes the retry into the future, so the message is not
	// immediately eligible again.
	pending, err := repo.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProcessor_DeadLettersAfterMaxRetries(t *testing.T) {
	repo := outbox.NewInMemoryRepository()
	publisher := &fakePublisher{err: errors.New("broker unavailable")}

	config := outbox.DefaultProcessorConfig()
	config.MaxRetries = 2
	config.RetryBackoffBase = 0
	processor := outbox.NewProcessor(repo, publisher, config, nil)

	msg := saveMessage(t, repo)

	ctx := context.Background()
	for range 3 {
		require.NoError(t, processor.ProcessOnce(ctx))
		// Clear the backoff so the next pass sees the message again.
		past := time.Now().Add(-time.Minute)
		require.NoError(t, repo.MarkFailed(ctx, msg.ID, "reset", past))
	}

	pending, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Empty(t, publisher.published)
}

func TestProcessor_StartStop(t *testing.T) {
	repo := outbox.NewInMemoryRepository()
	publisher := &fakePublisher{}

	config := outbox.DefaultProcessorConfig()
	config.PollInterval = 10 * time.Millisecond
	processor := outbox.NewProcessor(repo, publisher, config, nil)

	saveMessage(t, repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, processor.Start(ctx))
	assert.True(t, processor.IsRunning())

	assert.Eventually(t, func() bool {
		publisher.mu.Lock()
		defer publisher.mu.Unlock()
		return len(publisher.published) == 1
	}, time.Second, 10*time.Millisecond)

	processor.Stop()
	assert.False(t, processor.IsRunning())
}
