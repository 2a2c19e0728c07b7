package shifts_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-engine/schedule"
	"github.com/warp/shift-engine/shifts"
)

func TestAuditContract_CleanAfterSeeding(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	contract, _, err := svc.CreateContract(ctx, baseInput())
	require.NoError(t, err)

	result, err := svc.AuditContract(ctx, contract.ID)
	require.NoError(t, err)
	assert.True(t, result.Clean())
	assert.Equal(t, 2, result.Expected)
	assert.Equal(t, 2, result.Persisted)
	assert.Empty(t, result.Missing)
	assert.Empty(t, result.Duplicates)
}

func TestAuditContract_ReportsMissing(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	contract, _, err := svc.CreateContract(ctx, baseInput())
	require.NoError(t, err)
	occurrences, err := svc.OccurrencesForContract(ctx, contract.ID)
	require.NoError(t, err)

	// Simulate drift: a record vanished behind the synchronizer's back.
	require.NoError(t, mem.DeleteOccurrence(ctx, occurrences[0].ID))

	result, err := svc.AuditContract(ctx, contract.ID)
	require.NoError(t, err)
	assert.False(t, result.Clean())
	require.Len(t, result.Missing, 1)
	assert.Equal(t, occurrences[0].LocalDate.String(), result.Missing[0].String())
}

func TestAuditContract_ReportsFinalizedAtRisk(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	contract, _, err := svc.CreateContract(ctx, baseInput())
	require.NoError(t, err)
	occurrences, err := svc.OccurrencesForContract(ctx, contract.ID)
	require.NoError(t, err)

	// Finalize the Jan 8 shift, then narrow the contract so that date
	// leaves the desired set.
	occ := occurrences[1]
	_, err = svc.CompleteOccurrence(ctx, occ.ID, occ.StartUTC, occ.EndUTC)
	require.NoError(t, err)

	input := baseInput()
	input.EndDate = schedule.MustDate("2024-01-07")
	_, _, err = svc.UpdateContract(ctx, contract.ID, input)
	require.NoError(t, err)

	result, err := svc.AuditContract(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FinalizedTouched)
	assert.Empty(t, result.Missing)

	// Audit is read-only: the stranded record is still persisted.
	after, err := mem.OccurrencesByContract(ctx, contract.ID)
	require.NoError(t, err)
	assert.Len(t, after, 2)
}

func TestAuditContract_ReportsDuplicates(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	contract, _, err := svc.CreateContract(ctx, baseInput())
	require.NoError(t, err)
	occurrences, err := svc.OccurrencesForContract(ctx, contract.ID)
	require.NoError(t, err)

	// Forge a duplicate with manual source so the store's uniqueness
	// guard doesn't reject it, then flip it back to contract-sourced.
	dup := occurrences[0]
	dup.ID = "forged-duplicate"
	dup.Source = shifts.SourceManual
	require.NoError(t, mem.CreateOccurrence(ctx, dup))
	dup.Source = shifts.SourceContract
	require.NoError(t, mem.UpdateOccurrence(ctx, dup))

	result, err := svc.AuditContract(ctx, contract.ID)
	require.NoError(t, err)
	assert.False(t, result.Clean())
	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, occurrences[0].LocalDate.String(), result.Duplicates[0].String())
}

func TestAuditAllContracts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.CreateContract(ctx, baseInput())
	require.NoError(t, err)

	second := baseInput()
	second.Facility = "St. Luke's"
	second.StartDate = schedule.MustDate("2024-02-05")
	second.EndDate = schedule.MustDate("2024-02-18")
	_, _, err = svc.CreateContract(ctx, second)
	require.NoError(t, err)

	results, err := svc.AuditAllContracts(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Clean(), "contract %s should be clean", r.ContractID)
	}
}

func TestAuditContract_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.AuditContract(context.Background(), "no-such-contract")
	require.ErrorIs(t, err, shifts.ErrContractNotFound)
}

func TestPayrollForWeek_EndToEnd(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	input := baseInput()
	input.Pattern = weekdayPattern(map[time.Weekday][2]string{
		time.Monday:    {"07:00", "19:00"},
		time.Wednesday: {"07:00", "19:00"},
		time.Friday:    {"07:00", "19:00"},
	})
	contract, _, err := svc.CreateContract(ctx, input)
	require.NoError(t, err)

	payroll, err := svc.PayrollForWeek(ctx, contract.ID, schedule.MustDate("2024-01-10"))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-07", payroll.WeekStart.String())
	assert.Equal(t, "2024-01-13", payroll.WeekEnd.String())
	// Mon/Wed/Fri at 12h each = 36 hours, under the 40h threshold.
	assert.True(t, payroll.Hours.Equal(decimal.NewFromInt(36)), "hours = %s", payroll.Hours)
	assert.True(t, payroll.Earnings.Equal(decimal.NewFromInt(1620)), "earnings = %s", payroll.Earnings)
}
