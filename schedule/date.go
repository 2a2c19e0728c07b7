/*
Package schedule provides the pure calendar and clock math underneath the
shift engine.

PURPOSE:
  Everything in this package is a side-effect-free function over immutable
  values: calendar dates, naive wall-clock readings, zone-resolved instants,
  and the expansion of a weekly pattern into concrete shift occurrences.
  Nothing here touches a store or knows what a contract is.

KEY CONCEPTS:
  - Date:       A calendar date with no time-of-day and no zone.
  - ClockTime:  A naive "HH:mm" reading with no date and no zone.
  - WeeklyPattern: A fixed 7-slot map from weekday to an enabled shift window.
  - Expand:     Turns a date range + pattern + zone into desired occurrences.

DESIGN PRINCIPLES:
  1. Dates and clocks stay naive until the moment a zone is applied.
  2. Zone offsets are resolved per calendar date, never cached globally,
     so daylight-saving transitions inside a range come out right.
  3. Overnight windows (end <= start on the clock) roll into the next
     calendar day; a zero-length window means a full 24 hours.

SEE ALSO:
  - clock.go:   ClockTime parsing and duration rules
  - zone.go:    local <-> UTC conversion
  - expand.go:  the expander itself
*/
package schedule

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar date, no time-of-day, no zone
// =============================================================================

// Date is a calendar date. The embedded time.Time is always midnight UTC;
// UTC here is only a normalization convention, not a zone claim.
type Date struct {
	t time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, &ValidationError{Code: "invalid_date", Message: fmt.Sprintf("invalid date %q (use YYYY-MM-DD)", s)}
	}
	return Date{t: t}, nil
}

// MustDate is for tests and fixtures; it panics on a malformed string.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf truncates an instant to its calendar date in the given location.
func DateOf(t time.Time, loc *time.Location) Date {
	lt := t.In(loc)
	return NewDate(lt.Year(), lt.Month(), lt.Day())
}

// Comparison
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }
func (d Date) IsZero() bool           { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// DaysUntil returns the number of calendar days from d to other.
// Negative when other is earlier.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

func (d Date) String() string { return d.t.Format(dateLayout) }

// MarshalJSON/UnmarshalJSON keep the wire form "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return &ValidationError{Code: "invalid_date", Message: "date must be a JSON string"}
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// WEEK AND RANGE HELPERS
// =============================================================================

// WeekStartSunday returns the Sunday on or before d.
func WeekStartSunday(d Date) Date {
	return d.AddDays(-int(d.Weekday()))
}

// InRange reports whether d lies in [lo, hi], inclusive on both ends.
func InRange(d, lo, hi Date) bool {
	return !d.Before(lo) && !d.After(hi)
}
