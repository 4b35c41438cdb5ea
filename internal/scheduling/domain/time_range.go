package domain

import (
	"time"

	sharedDomain "github.com/lektio/lektio/internal/shared/domain"
)

// TimeRange is an immutable half-open interval [Start, End) in UTC.
type TimeRange struct {
	start time.Time
	end   time.Time
}

// NewTimeRange creates a time range, normalizing both instants to UTC.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !end.After(start) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{start: start.UTC(), end: end.UTC()}, nil
}

func (r TimeRange) Start() time.Time { return r.start }
func (r TimeRange) End() time.Time   { return r.end }

// Overlaps reports whether two ranges share any instant. Ranges are
// half-open, so back-to-back ranges do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.start.Before(other.end) && other.start.Before(r.end)
}

// Contains reports whether other lies entirely within r.
func (r TimeRange) Contains(other TimeRange) bool {
	return !other.start.Before(r.start) && !other.end.After(r.end)
}

// Duration returns the length of the range.
func (r TimeRange) Duration() time.Duration {
	return r.end.Sub(r.start)
}

// DurationMinutes returns the length of the range in whole minutes.
func (r TimeRange) DurationMinutes() int {
	return int(r.Duration() / time.Minute)
}

// IsZero reports whether the range is the zero value.
func (r TimeRange) IsZero() bool {
	return r.start.IsZero() && r.end.IsZero()
}

// Equals checks if two ranges cover the same instants.
func (r TimeRange) Equals(other sharedDomain.ValueObject) bool {
	otherRange, ok := other.(TimeRange)
	return ok && r.start.Equal(otherRange.start) && r.end.Equal(otherRange.end)
}
