package schedule

import (
	"fmt"
	"strings"
)

// =============================================================================
// CLOCK TIME - Naive "HH:mm" wall-clock reading
// =============================================================================

type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock parses an "HH:mm" string. Both fields must be exactly two
// digits; hours run 0-23, minutes 0-59.
func ParseClock(s string) (ClockTime, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return ClockTime{}, &ValidationError{Code: "invalid_clock", Message: fmt.Sprintf("invalid clock time %q (use HH:mm)", s)}
	}
	hour, ok := parseTwoDigits(parts[0])
	if !ok {
		return ClockTime{}, &ValidationError{Code: "invalid_clock", Message: fmt.Sprintf("invalid clock time %q (use HH:mm)", s)}
	}
	minute, ok := parseTwoDigits(parts[1])
	if !ok {
		return ClockTime{}, &ValidationError{Code: "invalid_clock", Message: fmt.Sprintf("invalid clock time %q (use HH:mm)", s)}
	}
	if hour >= 24 || minute >= 60 {
		return ClockTime{}, &ValidationError{Code: "invalid_clock", Message: fmt.Sprintf("clock time %q out of range", s)}
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// parseTwoDigits accepts exactly two ASCII digits. strconv.Atoi is too
// permissive here: it would let a sign through ("+1" parses as 1).
func parseTwoDigits(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// MustClock is for tests and fixtures; it panics on a malformed string.
func MustClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c ClockTime) totalMinutes() int {
	return c.Hour*60 + c.Minute
}

// MinutesBetween returns the duration of a shift window in minutes.
// When end <= start on the clock, the window crosses midnight and 24h
// of minutes are added before subtracting. A zero-length window
// (start == end) therefore counts as a full 24 hours.
func MinutesBetween(start, end ClockTime) int {
	s, e := start.totalMinutes(), end.totalMinutes()
	if e <= s {
		e += 24 * 60
	}
	return e - s
}

// CrossesMidnight reports whether a window ending at or before its start
// rolls into the next calendar day.
func CrossesMidnight(start, end ClockTime) bool {
	return end.totalMinutes() <= start.totalMinutes()
}
