package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/lektio/lektio/internal/shared/domain"
)

// WindowKind distinguishes recurring weekly rules from one-off windows.
type WindowKind string

const (
	WindowKindRecurring WindowKind = "recurring"
	WindowKindOneOff    WindowKind = "one_off"
)

// RecurringRule describes a weekly availability rule in the tutor's local
// time. Local wall-clock times are kept as "HH:MM" strings and resolved
// against the rule's timezone when occurrences are expanded, so a rule
// follows the tutor's clock across DST changes.
type RecurringRule struct {
	Weekday        time.Weekday
	LocalStart     string
	LocalEnd       string
	Timezone       string
	EffectiveFrom  time.Time
	EffectiveUntil *time.Time
}

// AvailabilityWindow is a single entry in a tutor's availability set: a
// recurring weekly rule, a one-off open window, or a one-off blocked window
// that subtracts time from the computed slots.
type AvailabilityWindow struct {
	sharedDomain.BaseEntity
	tutorID uuid.UUID
	kind    WindowKind
	rule    RecurringRule
	oneOff  TimeRange
	blocked bool
}

// NewRecurringWindow creates a recurring availability window after validating
// the rule.
func NewRecurringWindow(tutorID uuid.UUID, rule RecurringRule) (*AvailabilityWindow, error) {
	if rule.Weekday < time.Sunday || rule.Weekday > time.Saturday {
		return nil, fmt.Errorf("%w: unknown weekday %d", ErrInvalidWindow, rule.Weekday)
	}

	startMin, err := parseLocalMinutes(rule.LocalStart)
	if err != nil {
		return nil, fmt.Errorf("%w: local start %q", ErrInvalidWindow, rule.LocalStart)
	}
	endMin, err := parseLocalMinutes(rule.LocalEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: local end %q", ErrInvalidWindow, rule.LocalEnd)
	}
	if startMin >= endMin {
		return nil, fmt.Errorf("%w: local end must be after local start", ErrInvalidWindow)
	}

	if _, err := time.LoadLocation(rule.Timezone); err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidWindow, rule.Timezone)
	}

	if rule.EffectiveFrom.IsZero() {
		return nil, fmt.Errorf("%w: effective-from is required", ErrInvalidWindow)
	}
	rule.EffectiveFrom = rule.EffectiveFrom.UTC()
	if rule.EffectiveUntil != nil {
		if !rule.EffectiveUntil.After(rule.EffectiveFrom) {
			return nil, fmt.Errorf("%w: effective-until must be after effective-from", ErrInvalidWindow)
		}
		until := rule.EffectiveUntil.UTC()
		rule.EffectiveUntil = &until
	}

	return &AvailabilityWindow{
		BaseEntity: sharedDomain.NewBaseEntity(),
		tutorID:    tutorID,
		kind:       WindowKindRecurring,
		rule:       rule,
	}, nil
}

// NewOneOffWindow creates a one-off window. Blocked windows carve time out of
// the free slots regardless of what rules produce.
func NewOneOffWindow(tutorID uuid.UUID, timeRange TimeRange, blocked bool) (*AvailabilityWindow, error) {
	if timeRange.IsZero() {
		return nil, fmt.Errorf("%w: missing time range", ErrInvalidWindow)
	}

	return &AvailabilityWindow{
		BaseEntity: sharedDomain.NewBaseEntity(),
		tutorID:    tutorID,
		kind:       WindowKindOneOff,
		oneOff:     timeRange,
		blocked:    blocked,
	}, nil
}

func (w *AvailabilityWindow) TutorID() uuid.UUID  { return w.tutorID }
func (w *AvailabilityWindow) Kind() WindowKind    { return w.kind }
func (w *AvailabilityWindow) Rule() RecurringRule { return w.rule }
func (w *AvailabilityWindow) OneOff() TimeRange   { return w.oneOff }
func (w *AvailabilityWindow) IsBlocked() bool     { return w.blocked }

// RehydrateAvailabilityWindow recreates a window from persisted state.
func RehydrateAvailabilityWindow(
	id uuid.UUID,
	tutorID uuid.UUID,
	kind WindowKind,
	rule RecurringRule,
	oneOff TimeRange,
	blocked bool,
	createdAt, updatedAt time.Time,
) *AvailabilityWindow {
	return &AvailabilityWindow{
		BaseEntity: sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		tutorID:    tutorID,
		kind:       kind,
		rule:       rule,
		oneOff:     oneOff,
		blocked:    blocked,
	}
}

// parseLocalMinutes parses a strict "HH:MM" wall-clock time into minutes
// since midnight.
func parseLocalMinutes(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
