package shifts

import (
	"github.com/shopspring/decimal"
	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// PAYROLL CALCULATOR - Weekly hours and earnings with overtime split
// =============================================================================

var minutesPerHour = decimal.NewFromInt(60)

// WeeklyPayroll is the result of one week's earnings computation.
// UnattributedHours covers in-week shifts that do not belong to the
// contract (manual entries, other contracts); they never earn at the
// contract's rates and are reported separately.
type WeeklyPayroll struct {
	WeekStart         schedule.Date   `json:"week_start"`
	WeekEnd           schedule.Date   `json:"week_end"`
	Hours             decimal.Decimal `json:"hours"`
	Earnings          decimal.Decimal `json:"earnings"`
	UnattributedHours decimal.Decimal `json:"unattributed_hours"`
}

// WeekBoundaries returns the Sunday and Saturday of the week containing d.
func WeekBoundaries(d schedule.Date) (weekStart, weekEnd schedule.Date) {
	weekStart = schedule.WeekStartSunday(d)
	return weekStart, weekStart.AddDays(6)
}

// WeeklyEarnings computes total hours and earnings for the contract's
// shifts with local dates in [weekStart, weekEnd].
//
// Per-shift duration comes from wall-clock readings in the contract's
// zone: actual times when the shift is finalized, scheduled times
// otherwise. The overnight rule applies either way, so a reading pair
// with end at or before start spans midnight and start == end counts as
// a full 24 hours.
//
// Earnings: hours up to the weekly threshold earn the base rate; hours
// beyond it earn the overtime rate.
func WeeklyEarnings(c *Contract, weekStart, weekEnd schedule.Date, shifts []ShiftOccurrence) (WeeklyPayroll, error) {
	result := WeeklyPayroll{
		WeekStart:         weekStart,
		WeekEnd:           weekEnd,
		Hours:             decimal.Zero,
		Earnings:          decimal.Zero,
		UnattributedHours: decimal.Zero,
	}

	totalMinutes := 0
	unattributedMinutes := 0
	for _, shift := range shifts {
		if !schedule.InRange(shift.LocalDate, weekStart, weekEnd) {
			continue
		}
		minutes, err := shiftMinutes(&shift, c.Timezone)
		if err != nil {
			return WeeklyPayroll{}, err
		}
		if shift.ContractID == c.ID {
			totalMinutes += minutes
		} else {
			unattributedMinutes += minutes
		}
	}

	result.Hours = decimal.NewFromInt(int64(totalMinutes)).Div(minutesPerHour)
	result.UnattributedHours = decimal.NewFromInt(int64(unattributedMinutes)).Div(minutesPerHour)

	threshold := c.WeeklyHoursThreshold
	if result.Hours.LessThanOrEqual(threshold) {
		result.Earnings = result.Hours.Mul(c.BaseRate)
	} else {
		overtime := result.Hours.Sub(threshold)
		result.Earnings = threshold.Mul(c.BaseRate).Add(overtime.Mul(c.OvertimeRate))
	}
	return result, nil
}

// shiftMinutes derives a shift's duration from its wall-clock readings in
// the given zone, preserving the overnight rule for both scheduled and
// actual times.
func shiftMinutes(shift *ShiftOccurrence, zone string) (int, error) {
	start, end := shift.StartUTC, shift.EndUTC
	if shift.Finalized() {
		start, end = shift.ActualStart, shift.ActualEnd
	}
	startLocal, err := schedule.ToLocalDisplay(start, zone)
	if err != nil {
		return 0, err
	}
	endLocal, err := schedule.ToLocalDisplay(end, zone)
	if err != nil {
		return 0, err
	}
	return schedule.MinutesBetween(startLocal.Time, endLocal.Time), nil
}
