package schedule

import (
	"fmt"
	"time"
)

// =============================================================================
// SCHEDULE EXPANDER - Weekly pattern + date range -> desired occurrences
// =============================================================================

// MaxExpandDays bounds the number of calendar days a single expansion may
// walk. Longer ranges are rejected up front rather than iterated.
const MaxExpandDays = 1830

// Slot is one desired occurrence: a local calendar date with its
// zone-resolved UTC window. StartUTC < EndUTC always; an overnight window
// ends on the calendar day after LocalDate.
type Slot struct {
	LocalDate Date
	StartUTC  time.Time
	EndUTC    time.Time
}

// Expand walks [start, end] inclusive and emits a Slot for every date
// whose weekday is enabled in the pattern, ordered by date. Each slot's
// instants are resolved independently through the zone, so a range that
// crosses a daylight-saving transition carries different UTC offsets on
// either side of it while local clock readings stay identical.
//
// Validation failures happen before any slot is produced: an inverted
// range, a pattern with zero enabled days, a range beyond MaxExpandDays,
// or an unknown zone.
func Expand(start, end Date, pattern WeeklyPattern, zone string) ([]Slot, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidDateRange, start, end)
	}
	if pattern.EnabledCount() == 0 {
		return nil, ErrNoEnabledDays
	}
	if days := start.DaysUntil(end) + 1; days > MaxExpandDays {
		return nil, fmt.Errorf("%w: %d days exceeds limit of %d", ErrRangeTooLarge, days, MaxExpandDays)
	}
	if _, err := loadZone(zone); err != nil {
		return nil, err
	}

	var slots []Slot
	for d := start; !d.After(end); d = d.AddDays(1) {
		window := pattern.Window(d.Weekday())
		if !window.Enabled {
			continue
		}
		slot, err := ResolveSlot(d, window, zone)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// ResolveSlot turns one date's window into UTC instants. The end instant
// of an overnight window is resolved on the next calendar day, which
// keeps StartUTC < EndUTC without any duration arithmetic.
func ResolveSlot(d Date, window DayWindow, zone string) (Slot, error) {
	startUTC, err := ToUTC(d, window.Start, zone)
	if err != nil {
		return Slot{}, err
	}
	endDate := d
	if CrossesMidnight(window.Start, window.End) {
		endDate = d.AddDays(1)
	}
	endUTC, err := ToUTC(endDate, window.End, zone)
	if err != nil {
		return Slot{}, err
	}
	return Slot{LocalDate: d, StartUTC: startUTC, EndUTC: endUTC}, nil
}
