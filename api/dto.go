/*
dto.go - Request/response data structures for the REST surface

PURPOSE:
  Wire-format structs plus their conversions to and from domain types.
  Handlers never expose domain structs directly; money fields travel as
  decimal strings, dates as "YYYY-MM-DD", instants as RFC 3339.
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/shift-engine/schedule"
	"github.com/warp/shift-engine/shifts"
)

// =============================================================================
// REQUESTS
// =============================================================================

// ContractRequest is the payload for both create and update.
type ContractRequest struct {
	Facility string `json:"facility"`
	Role     string `json:"role"`

	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Timezone  string `json:"timezone"`

	Pattern []schedule.PatternEntry `json:"pattern"`

	BaseRate             string `json:"base_rate"`
	OvertimeRate         string `json:"overtime_rate"`
	WeeklyHoursThreshold string `json:"weekly_hours_threshold"`

	Status string `json:"status,omitempty"`
}

// ToInput validates the wire payload into a domain input.
func (r *ContractRequest) ToInput() (shifts.ContractInput, error) {
	var input shifts.ContractInput

	startDate, err := schedule.ParseDate(r.StartDate)
	if err != nil {
		return input, err
	}
	endDate, err := schedule.ParseDate(r.EndDate)
	if err != nil {
		return input, err
	}
	pattern, err := schedule.BuildPattern(r.Pattern)
	if err != nil {
		return input, err
	}
	baseRate, err := parseMoney("base_rate", r.BaseRate)
	if err != nil {
		return input, err
	}
	overtimeRate, err := parseMoney("overtime_rate", r.OvertimeRate)
	if err != nil {
		return input, err
	}
	threshold, err := parseMoney("weekly_hours_threshold", r.WeeklyHoursThreshold)
	if err != nil {
		return input, err
	}

	input = shifts.ContractInput{
		Facility:             r.Facility,
		Role:                 r.Role,
		StartDate:            startDate,
		EndDate:              endDate,
		Timezone:             r.Timezone,
		Pattern:              pattern,
		BaseRate:             baseRate,
		OvertimeRate:         overtimeRate,
		WeeklyHoursThreshold: threshold,
		Status:               shifts.ContractStatus(r.Status),
	}
	return input, nil
}

func parseMoney(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &schedule.ValidationError{Code: "invalid_" + field, Message: field + " must be a decimal number"}
	}
	return d, nil
}

// ManualOccurrenceRequest creates a shift not owned by any contract.
type ManualOccurrenceRequest struct {
	LocalDate string `json:"local_date"`
	StartUTC  string `json:"start_utc"`
	EndUTC    string `json:"end_utc"`
}

// CompleteRequest records actual worked times.
type CompleteRequest struct {
	ActualStart string `json:"actual_start"`
	ActualEnd   string `json:"actual_end"`
}

// =============================================================================
// RESPONSES
// =============================================================================

type ContractDTO struct {
	ID       string `json:"id"`
	Facility string `json:"facility"`
	Role     string `json:"role"`

	StartDate string                  `json:"start_date"`
	EndDate   string                  `json:"end_date"`
	Timezone  string                  `json:"timezone"`
	Pattern   []schedule.PatternEntry `json:"pattern"`

	BaseRate             string `json:"base_rate"`
	OvertimeRate         string `json:"overtime_rate"`
	WeeklyHoursThreshold string `json:"weekly_hours_threshold"`

	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toContractDTO(c *shifts.Contract) ContractDTO {
	return ContractDTO{
		ID:                   c.ID,
		Facility:             c.Facility,
		Role:                 c.Role,
		StartDate:            c.StartDate.String(),
		EndDate:              c.EndDate.String(),
		Timezone:             c.Timezone,
		Pattern:              c.Pattern.Entries(),
		BaseRate:             c.BaseRate.String(),
		OvertimeRate:         c.OvertimeRate.String(),
		WeeklyHoursThreshold: c.WeeklyHoursThreshold.String(),
		Status:               string(c.Status),
		CreatedAt:            c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            c.UpdatedAt.Format(time.RFC3339),
	}
}

type OccurrenceDTO struct {
	ID         string `json:"id"`
	ContractID string `json:"contract_id,omitempty"`
	LocalDate  string `json:"local_date"`
	StartUTC   string `json:"start_utc"`
	EndUTC     string `json:"end_utc"`
	Source     string `json:"source"`

	Completed   bool   `json:"completed"`
	ActualStart string `json:"actual_start,omitempty"`
	ActualEnd   string `json:"actual_end,omitempty"`
}

func toOccurrenceDTO(o *shifts.ShiftOccurrence) OccurrenceDTO {
	dto := OccurrenceDTO{
		ID:         o.ID,
		ContractID: o.ContractID,
		LocalDate:  o.LocalDate.String(),
		StartUTC:   o.StartUTC.Format(time.RFC3339),
		EndUTC:     o.EndUTC.Format(time.RFC3339),
		Source:     string(o.Source),
		Completed:  o.Completed,
	}
	if o.Completed {
		dto.ActualStart = o.ActualStart.Format(time.RFC3339)
		dto.ActualEnd = o.ActualEnd.Format(time.RFC3339)
	}
	return dto
}

func toOccurrenceDTOs(os []shifts.ShiftOccurrence) []OccurrenceDTO {
	dtos := make([]OccurrenceDTO, len(os))
	for i := range os {
		dtos[i] = toOccurrenceDTO(&os[i])
	}
	return dtos
}

type PayrollDTO struct {
	ContractID        string `json:"contract_id"`
	WeekStart         string `json:"week_start"`
	WeekEnd           string `json:"week_end"`
	Hours             string `json:"hours"`
	Earnings          string `json:"earnings"`
	UnattributedHours string `json:"unattributed_hours"`
}

type AuditDTO struct {
	ContractID       string   `json:"contract_id"`
	Facility         string   `json:"facility"`
	Expected         int      `json:"expected"`
	Persisted        int      `json:"persisted"`
	Missing          []string `json:"missing"`
	Duplicates       []string `json:"duplicates"`
	FinalizedTouched int      `json:"finalized_touched"`
	Clean            bool     `json:"clean"`
}

func toAuditDTO(r *shifts.AuditResult) AuditDTO {
	return AuditDTO{
		ContractID:       r.ContractID,
		Facility:         r.Facility,
		Expected:         r.Expected,
		Persisted:        r.Persisted,
		Missing:          dateStrings(r.Missing),
		Duplicates:       dateStrings(r.Duplicates),
		FinalizedTouched: r.FinalizedTouched,
		Clean:            r.Clean(),
	}
}

func dateStrings(dates []schedule.Date) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	return out
}
