package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lektio/lektio/internal/scheduling/domain"
)

func validRule() domain.RecurringRule {
	return domain.RecurringRule{
		Weekday:       time.Wednesday,
		LocalStart:    "09:00",
		LocalEnd:      "11:00",
		Timezone:      "Europe/Berlin",
		EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewRecurringWindow(t *testing.T) {
	tutorID := uuid.New()

	w, err := domain.NewRecurringWindow(tutorID, validRule())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, w.ID())
	assert.Equal(t, tutorID, w.TutorID())
	assert.Equal(t, domain.WindowKindRecurring, w.Kind())
	assert.Equal(t, time.Wednesday, w.Rule().Weekday)
	assert.False(t, w.IsBlocked())
}

func TestNewRecurringWindow_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *domain.RecurringRule)
	}{
		{"inverted local times", func(r *domain.RecurringRule) {
			r.LocalStart, r.LocalEnd = "11:00", "09:00"
		}},
		{"equal local times", func(r *domain.RecurringRule) {
			r.LocalEnd = r.LocalStart
		}},
		{"malformed local time", func(r *domain.RecurringRule) {
			r.LocalStart = "9am"
		}},
		{"unknown timezone", func(r *domain.RecurringRule) {
			r.Timezone = "Mars/Olympus_Mons"
		}},
		{"missing effective-from", func(r *domain.RecurringRule) {
			r.EffectiveFrom = time.Time{}
		}},
		{"inverted effective range", func(r *domain.RecurringRule) {
			until := r.EffectiveFrom.Add(-time.Hour)
			r.EffectiveUntil = &until
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := validRule()
			tt.modify(&rule)

			_, err := domain.NewRecurringWindow(uuid.New(), rule)
			assert.ErrorIs(t, err, domain.ErrInvalidWindow)
		})
	}
}

func TestNewOneOffWindow(t *testing.T) {
	tutorID := uuid.New()
	tr := mustRange(t,
		time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 20, 11, 0, 0, 0, time.UTC))

	w, err := domain.NewOneOffWindow(tutorID, tr, false)
	require.NoError(t, err)
	assert.Equal(t, domain.WindowKindOneOff, w.Kind())
	assert.True(t, w.OneOff().Equals(tr))

	blocked, err := domain.NewOneOffWindow(tutorID, tr, true)
	require.NoError(t, err)
	assert.True(t, blocked.IsBlocked())
}

func TestNewOneOffWindow_MissingRange(t *testing.T) {
	_, err := domain.NewOneOffWindow(uuid.New(), domain.TimeRange{}, false)
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}

func TestFreeSlots_OneOffWindows(t *testing.T) {
	tutorID := uuid.New()
	day := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	horizon := mustRange(t, day, day.AddDate(0, 0, 7))

	open, err := domain.NewOneOffWindow(tutorID,
		mustRange(t, day.Add(9*time.Hour), day.Add(11*time.Hour)), false)
	require.NoError(t, err)

	slots := domain.FreeSlots([]*domain.AvailabilityWindow{open}, horizon)
	require.Len(t, slots, 1)
	assert.True(t, slots[0].Equals(mustRange(t, day.Add(9*time.Hour), day.Add(11*time.Hour))))
}

func TestFreeSlots_BlockedWindowSplitsSlot(t *testing.T) {
	tutorID := uuid.New()
	day := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	horizon := mustRange(t, day, day.AddDate(0, 0, 1))

	open, err := domain.NewOneOffWindow(tutorID,
		mustRange(t, day.Add(9*time.Hour), day.Add(17*time.Hour)), false)
	require.NoError(t, err)
	blocked, err := domain.NewOneOffWindow(tutorID,
		mustRange(t, day.Add(12*time.Hour), day.Add(13*time.Hour)), true)
	require.NoError(t, err)

	slots := domain.FreeSlots([]*domain.AvailabilityWindow{open, blocked}, horizon)
	require.Len(t, slots, 2)
	assert.True(t, slots[0].Equals(mustRange(t, day.Add(9*time.Hour), day.Add(12*time.Hour))))
	assert.True(t, slots[1].Equals(mustRange(t, day.Add(13*time.Hour), day.Add(17*time.Hour))))
}

func TestFreeSlots_MergesOverlappingWindows(t *testing.T) {
	tutorID := uuid.New()
	day := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	horizon := mustRange(t, day, day.AddDate(0, 0, 1))

	a, err := domain.NewOneOffWindow(tutorID,
		mustRange(t, day.Add(9*time.Hour), day.Add(11*time.Hour)), false)
	require.NoError(t, err)
	b, err := domain.NewOneOffWindow(tutorID,
		mustRange(t, day.Add(10*time.Hour), day.Add(12*time.Hour)), false)
	require.NoError(t, err)

	slots := domain.FreeSlots([]*domain.AvailabilityWindow{a, b}, horizon)
	require.Len(t, slots, 1)
	assert.True(t, slots[0].Equals(mustRange(t, day.Add(9*time.Hour), day.Add(12*time.Hour))))
}

func TestFreeSlots_RecurringExpansion(t *testing.T) {
	tutorID := uuid.New()
	w, err := domain.NewRecurringWindow(tutorID, domain.RecurringRule{
		Weekday:       time.Wednesday,
		LocalStart:    "09:00",
		LocalEnd:      "11:00",
		Timezone:      "UTC",
		EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// Two weeks starting Monday 2024-03-18: Wednesdays are the 20th and 27th.
	horizon := mustRange(t,
		time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

	slots := domain.FreeSlots([]*domain.AvailabilityWindow{w}, horizon)
	require.Len(t, slots, 2)
	assert.Equal(t, time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC), slots[0].Start())
	assert.Equal(t, time.Date(2024, 3, 27, 9, 0, 0, 0, time.UTC), slots[1].Start())
}

func TestFreeSlots_RecurringFollowsLocalClockAcrossDST(t *testing.T) {
	tutorID := uuid.New()
	w, err := domain.NewRecurringWindow(tutorID, domain.RecurringRule{
		Weekday:       time.Sunday,
		LocalStart:    "09:00",
		LocalEnd:      "10:00",
		Timezone:      "Europe/Berlin",
		EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// Berlin switches to CEST on Sunday 2024-03-31 at 02:00.
	horizon := mustRange(t,
		time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

	slots := domain.FreeSlots([]*domain.AvailabilityWindow{w}, horizon)
	require.Len(t, slots, 2)
	// 09:00 CET is 08:00 UTC; 09:00 CEST is 07:00 UTC.
	assert.Equal(t, time.Date(2024, 3, 24, 8, 0, 0, 0, time.UTC), slots[0].Start())
	assert.Equal(t, time.Date(2024, 3, 31, 7, 0, 0, 0, time.UTC), slots[1].Start())
}

func TestFreeSlots_RespectsEffectiveRange(t *testing.T) {
	tutorID := uuid.New()
	until := time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)
	w, err := domain.NewRecurringWindow(tutorID, domain.RecurringRule{
		Weekday:        time.Wednesday,
		LocalStart:     "09:00",
		LocalEnd:       "11:00",
		Timezone:       "UTC",
		EffectiveFrom:  time.Date(2024, 3, 19, 0, 0, 0, 0, time.UTC),
		EffectiveUntil: &until,
	})
	require.NoError(t, err)

	horizon := mustRange(t,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

	// Only 2024-03-20 falls inside [effective_from, effective_until).
	slots := domain.FreeSlots([]*domain.AvailabilityWindow{w}, horizon)
	require.Len(t, slots, 1)
	assert.Equal(t, time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC), slots[0].Start())
}

func TestFreeSlots_ClipsToHorizon(t *testing.T) {
	tutorID := uuid.New()
	day := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	open, err := domain.NewOneOffWindow(tutorID,
		mustRange(t, day.Add(9*time.Hour), day.Add(17*time.Hour)), false)
	require.NoError(t, err)

	horizon := mustRange(t, day.Add(10*time.Hour), day.Add(12*time.Hour))
	slots := domain.FreeSlots([]*domain.AvailabilityWindow{open}, horizon)
	require.Len(t, slots, 1)
	assert.True(t, slots[0].Equals(horizon))
}

func TestFreeSlots_EmptyWindows(t *testing.T) {
	horizon := mustRange(t,
		time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 27, 0, 0, 0, 0, time.UTC))

	assert.Empty(t, domain.FreeSlots(nil, horizon))
}
