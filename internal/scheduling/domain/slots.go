package domain

import (
	"sort"
	"time"
)

// FreeSlots computes a tutor's bookable slots within the horizon from their
// availability windows: recurring rules are expanded in their local timezone,
// unioned with open one-off windows, then blocked windows are subtracted.
// The result is clipped to the horizon, non-overlapping and in chronological
// order. Bookings are not considered here; the ledger guards against
// double-booking at append time.
func FreeSlots(windows []*AvailabilityWindow, horizon TimeRange) []TimeRange {
	var open, blocked []TimeRange

	for _, w := range windows {
		switch w.Kind() {
		case WindowKindRecurring:
			open = append(open, expandRule(w.Rule(), horizon)...)
		case WindowKindOneOff:
			clipped, ok := clip(w.OneOff(), horizon)
			if !ok {
				continue
			}
			if w.IsBlocked() {
				blocked = append(blocked, clipped)
			} else {
				open = append(open, clipped)
			}
		}
	}

	return subtractRanges(mergeRanges(open), mergeRanges(blocked))
}

// expandRule generates the rule's occurrences that overlap the horizon.
// Occurrences are constructed from local wall-clock times, so the UTC
// instants shift correctly across DST transitions.
func expandRule(rule RecurringRule, horizon TimeRange) []TimeRange {
	loc, err := time.LoadLocation(rule.Timezone)
	if err != nil {
		// Rules are validated at construction; an unloadable timezone here
		// means corrupted storage, and the rule contributes nothing.
		return nil
	}

	startMin, err := parseLocalMinutes(rule.LocalStart)
	if err != nil {
		return nil
	}
	endMin, err := parseLocalMinutes(rule.LocalEnd)
	if err != nil {
		return nil
	}

	var out []TimeRange

	// Walk local calendar days, starting one day early so an occurrence that
	// begins before the horizon but reaches into it is not missed.
	day := horizon.Start().In(loc).AddDate(0, 0, -1)
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	horizonEnd := horizon.End().In(loc)

	for ; !day.After(horizonEnd); day = day.AddDate(0, 0, 1) {
		if day.Weekday() != rule.Weekday {
			continue
		}

		occStart := time.Date(day.Year(), day.Month(), day.Day(), startMin/60, startMin%60, 0, 0, loc).UTC()
		occEnd := time.Date(day.Year(), day.Month(), day.Day(), endMin/60, endMin%60, 0, 0, loc).UTC()
		if !occEnd.After(occStart) {
			continue
		}

		if occStart.Before(rule.EffectiveFrom) {
			continue
		}
		if rule.EffectiveUntil != nil && !occStart.Before(*rule.EffectiveUntil) {
			continue
		}

		occ := TimeRange{start: occStart, end: occEnd}
		if clipped, ok := clip(occ, horizon); ok {
			out = append(out, clipped)
		}
	}

	return out
}

// clip intersects r with bounds; ok is false when they do not overlap.
func clip(r, bounds TimeRange) (TimeRange, bool) {
	if !r.Overlaps(bounds) {
		return TimeRange{}, false
	}
	start, end := r.start, r.end
	if start.Before(bounds.start) {
		start = bounds.start
	}
	if end.After(bounds.end) {
		end = bounds.end
	}
	return TimeRange{start: start, end: end}, true
}

// mergeRanges sorts ranges and coalesces overlapping or adjacent ones.
func mergeRanges(ranges []TimeRange) []TimeRange {
	if len(ranges) <= 1 {
		return ranges
	}

	sort.Slice(ranges, func(i, j int) bool {
		return ranges[i].start.Before(ranges[j].start)
	})

	merged := []TimeRange{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if !r.start.After(last.end) {
			if r.end.After(last.end) {
				last.end = r.end
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// subtractRanges removes blocked intervals from the open ones. Both inputs
// must be merged and sorted.
func subtractRanges(open, blocked []TimeRange) []TimeRange {
	if len(blocked) == 0 {
		return open
	}

	var out []TimeRange
	for _, o := range open {
		pieces := []TimeRange{o}
		for _, b := range blocked {
			var next []TimeRange
			for _, p := range pieces {
				if !p.Overlaps(b) {
					next = append(next, p)
					continue
				}
				if b.start.After(p.start) {
					next = append(next, TimeRange{start: p.start, end: b.start})
				}
				if b.end.Before(p.end) {
					next = append(next, TimeRange{start: b.end, end: p.end})
				}
			}
			pieces = next
		}
		out = append(out, pieces...)
	}
	return out
}
