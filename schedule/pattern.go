package schedule

import (
	"fmt"
	"time"
)

// =============================================================================
// WEEKLY PATTERN - Fixed 7-slot availability map, Sunday-indexed
// =============================================================================

// DayWindow is one weekday's slot in a weekly pattern. Start and End are
// wall-clock readings; End at or before Start means the shift runs
// overnight into the next calendar day.
type DayWindow struct {
	Enabled bool
	Start   ClockTime
	End     ClockTime
}

// WeeklyPattern maps weekday index (0=Sunday .. 6=Saturday) to a window.
// All seven slots are always present; a pattern is never a sparse bag.
type WeeklyPattern [7]DayWindow

// EnabledCount returns the number of enabled weekdays.
func (p WeeklyPattern) EnabledCount() int {
	n := 0
	for _, w := range p {
		if w.Enabled {
			n++
		}
	}
	return n
}

// Window returns the slot for a weekday.
func (p WeeklyPattern) Window(wd time.Weekday) DayWindow {
	return p[int(wd)]
}

// PatternEntry is the wire form of one weekday slot. Weekday must appear
// exactly once per index across a full set of seven entries.
type PatternEntry struct {
	Weekday int    `json:"weekday"`
	Enabled bool   `json:"enabled"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

// BuildPattern validates a set of wire entries into a WeeklyPattern.
// Exactly seven entries, weekdays 0-6 each present once; enabled days
// must carry parseable start and end clock times.
func BuildPattern(entries []PatternEntry) (WeeklyPattern, error) {
	var pattern WeeklyPattern
	if len(entries) != 7 {
		return pattern, &ValidationError{Code: "invalid_pattern", Message: fmt.Sprintf("weekly pattern needs exactly 7 entries, got %d", len(entries))}
	}
	seen := [7]bool{}
	for _, e := range entries {
		if e.Weekday < 0 || e.Weekday > 6 {
			return pattern, &ValidationError{Code: "invalid_pattern", Message: fmt.Sprintf("weekday %d out of range 0-6", e.Weekday)}
		}
		if seen[e.Weekday] {
			return pattern, &ValidationError{Code: "invalid_pattern", Message: fmt.Sprintf("weekday %d appears more than once", e.Weekday)}
		}
		seen[e.Weekday] = true

		window := DayWindow{Enabled: e.Enabled}
		if e.Enabled {
			start, err := ParseClock(e.Start)
			if err != nil {
				return pattern, err
			}
			end, err := ParseClock(e.End)
			if err != nil {
				return pattern, err
			}
			window.Start = start
			window.End = end
		}
		pattern[e.Weekday] = window
	}
	return pattern, nil
}

// Entries returns the wire form, always seven slots ordered by weekday.
func (p WeeklyPattern) Entries() []PatternEntry {
	entries := make([]PatternEntry, 7)
	for i, w := range p {
		entries[i] = PatternEntry{Weekday: i, Enabled: w.Enabled}
		if w.Enabled {
			entries[i].Start = w.Start.String()
			entries[i].End = w.End.String()
		}
	}
	return entries
}
