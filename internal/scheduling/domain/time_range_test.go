package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lektio/lektio/internal/scheduling/domain"
)

func mustRange(t *testing.T, start, end time.Time) domain.TimeRange {
	t.Helper()
	r, err := domain.NewTimeRange(start, end)
	require.NoError(t, err)
	return r
}

func TestNewTimeRange(t *testing.T) {
	start := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	r, err := domain.NewTimeRange(start, end)
	require.NoError(t, err)
	assert.Equal(t, start, r.Start())
	assert.Equal(t, end, r.End())
	assert.Equal(t, 60, r.DurationMinutes())
}

func TestNewTimeRange_Invalid(t *testing.T) {
	start := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)

	_, err := domain.NewTimeRange(start, start)
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)

	_, err = domain.NewTimeRange(start, start.Add(-time.Minute))
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
}

func TestNewTimeRange_NormalizesToUTC(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	start := time.Date(2024, 3, 20, 10, 0, 0, 0, berlin)
	r := mustRange(t, start, start.Add(time.Hour))

	assert.Equal(t, time.UTC, r.Start().Location())
	assert.True(t, r.Start().Equal(start))
}

func TestTimeRange_Overlaps(t *testing.T) {
	base := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	at := func(startMin, endMin int) domain.TimeRange {
		return mustRange(t,
			base.Add(time.Duration(startMin)*time.Minute),
			base.Add(time.Duration(endMin)*time.Minute))
	}

	tests := []struct {
		name     string
		a, b     domain.TimeRange
		overlaps bool
	}{
		{"identical", at(0, 60), at(0, 60), true},
		{"partial", at(0, 60), at(30, 90), true},
		{"contained", at(0, 60), at(15, 45), true},
		{"adjacent ranges do not overlap", at(0, 60), at(60, 120), false},
		{"disjoint", at(0, 60), at(90, 120), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlaps, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.overlaps, tt.b.Overlaps(tt.a))
		})
	}
}

func TestTimeRange_Contains(t *testing.T) {
	base := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	outer := mustRange(t, base, base.Add(2*time.Hour))

	assert.True(t, outer.Contains(mustRange(t, base, base.Add(time.Hour))))
	assert.True(t, outer.Contains(outer))
	assert.False(t, outer.Contains(mustRange(t, base.Add(time.Hour), base.Add(3*time.Hour))))
	assert.False(t, outer.Contains(mustRange(t, base.Add(-time.Minute), base.Add(time.Hour))))
}

func TestTimeRange_Equals(t *testing.T) {
	base := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	a := mustRange(t, base, base.Add(time.Hour))
	b := mustRange(t, base, base.Add(time.Hour))
	c := mustRange(t, base, base.Add(2*time.Hour))

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}
