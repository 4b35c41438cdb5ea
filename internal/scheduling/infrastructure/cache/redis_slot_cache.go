// Package cache provides a Redis-backed cache for computed free slots.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/lektio/lektio/internal/scheduling/domain"
)

// DefaultTTL bounds how stale a cached slot list can get even without
// explicit invalidation.
const DefaultTTL = 30 * time.Second

// RedisSlotCache caches computed free slots per tutor. All slot lists for one
// tutor live in a single hash keyed by horizon, so invalidation after a
// booking or availability change is one DEL. The cache is best effort: every
// Redis failure is treated as a miss, and a circuit breaker stops hammering a
// Redis that is down.
type RedisSlotCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	ttl     time.Duration
	logger  *slog.Logger
}

// NewRedisSlotCache creates a slot cache over the given Redis client.
func NewRedisSlotCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisSlotCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "slot-cache",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A missing key is a miss, not a Redis failure.
		IsSuccessful: func(err error) bool {
			return err == nil || err == redis.Nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("slot cache circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	return &RedisSlotCache{
		client:  client,
		breaker: breaker,
		ttl:     ttl,
		logger:  logger,
	}
}

type cachedSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Get returns the cached slots for a tutor and horizon, if present.
func (c *RedisSlotCache) Get(ctx context.Context, tutorID uuid.UUID, horizon domain.TimeRange) ([]domain.TimeRange, bool) {
	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.client.HGet(ctx, tutorKey(tutorID), horizonField(horizon)).Bytes()
	})
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("slot cache read failed", slog.String("error", err.Error()))
		}
		return nil, false
	}

	var cached []cachedSlot
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.Debug("slot cache entry corrupt", slog.String("error", err.Error()))
		return nil, false
	}

	slots := make([]domain.TimeRange, 0, len(cached))
	for _, s := range cached {
		slot, err := domain.NewTimeRange(s.Start, s.End)
		if err != nil {
			return nil, false
		}
		slots = append(slots, slot)
	}
	return slots, true
}

// Set stores the slots for a tutor and horizon.
func (c *RedisSlotCache) Set(ctx context.Context, tutorID uuid.UUID, horizon domain.TimeRange, slots []domain.TimeRange) {
	cached := make([]cachedSlot, 0, len(slots))
	for _, slot := range slots {
		cached = append(cached, cachedSlot{Start: slot.Start(), End: slot.End()})
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return
	}

	_, err = c.breaker.Execute(func() ([]byte, error) {
		key := tutorKey(tutorID)
		pipe := c.client.TxPipeline()
		pipe.HSet(ctx, key, horizonField(horizon), data)
		pipe.Expire(ctx, key, c.ttl)
		_, err := pipe.Exec(ctx)
		return nil, err
	})
	if err != nil {
		c.logger.Debug("slot cache write failed", slog.String("error", err.Error()))
	}
}

// Invalidate drops all cached slot lists for a tutor.
func (c *RedisSlotCache) Invalidate(ctx context.Context, tutorID uuid.UUID) {
	_, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Del(ctx, tutorKey(tutorID)).Err()
	})
	if err != nil {
		c.logger.Debug("slot cache invalidation failed",
			slog.String("tutor_id", tutorID.String()),
			slog.String("error", err.Error()))
	}
}

// Close releases the underlying Redis client.
func (c *RedisSlotCache) Close() error {
	return c.client.Close()
}

func tutorKey(tutorID uuid.UUID) string {
	return "lektio:slots:" + tutorID.String()
}

func horizonField(horizon domain.TimeRange) string {
	return fmt.Sprintf("%d-%d", horizon.Start().Unix(), horizon.End().Unix())
}
