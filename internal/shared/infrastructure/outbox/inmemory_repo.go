package outbox

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository implements Repository in memory for tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	msgs   map[int64]*Message
}

// NewInMemoryRepository creates a new in-memory outbox repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		nextID: 1,
		msgs:   make(map[int64]*Message),
	}
}

func (r *InMemoryRepository) Save(_ context.Context, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg.ID = r.nextID
	r.nextID++
	stored := *msg
	r.msgs[msg.ID] = &stored
	return nil
}

func (r *InMemoryRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	for _, msg := range msgs {
		if err := r.Save(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *InMemoryRepository) GetUnpublished(_ context.Context, limit int) ([]*Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	result := make([]*Message, 0)
	for _, msg := range r.msgs {
		if msg.PublishedAt != nil || msg.DeadLetteredAt != nil {
			continue
		}
		if msg.NextRetryAt != nil && msg.NextRetryAt.After(now) {
			continue
		}
		copied := *msg
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *InMemoryRepository) MarkPublished(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg, ok := r.msgs[id]; ok {
		now := time.Now()
		msg.PublishedAt = &now
	}
	return nil
}

func (r *InMemoryRepository) MarkFailed(_ context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg, ok := r.msgs[id]; ok {
		msg.RetryCount++
		msg.LastError = &errMsg
		msg.NextRetryAt = &nextRetryAt
	}
	return nil
}

func (r *InMemoryRepository) MarkDead(_ context.Context, id int64, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg, ok := r.msgs[id]; ok {
		now := time.Now()
		msg.DeadLetteredAt = &now
		msg.DeadLetterReason = &reason
	}
	return nil
}

func (r *InMemoryRepository) DeleteOld(_ context.Context, olderThanDays int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	var deleted int64
	for id, msg := range r.msgs {
		if msg.PublishedAt != nil && msg.PublishedAt.Before(cutoff) {
			delete(r.msgs, id)
			deleted++
		}
	}
	return deleted, nil
}
