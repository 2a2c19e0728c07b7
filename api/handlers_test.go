package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-engine/schedule"
	"github.com/warp/shift-engine/shifts"
	"github.com/warp/shift-engine/shifts/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mem := store.NewMemory()
	handler := NewHandler(shifts.NewService(mem, mem))
	srv := httptest.NewServer(NewRouter(handler, RouterOptions{
		AllowedOrigins: []string{"*"},
	}))
	t.Cleanup(srv.Close)
	return srv
}

func contractBody(mutate func(map[string]any)) []byte {
	pattern := make([]map[string]any, 7)
	for i := range pattern {
		pattern[i] = map[string]any{"weekday": i, "enabled": false}
	}
	pattern[1] = map[string]any{"weekday": 1, "enabled": true, "start": "07:00", "end": "19:00"}

	body := map[string]any{
		"facility":               "Mercy General",
		"role":                   "RN",
		"start_date":             "2024-01-01",
		"end_date":               "2024-01-14",
		"timezone":               "America/Chicago",
		"pattern":                pattern,
		"base_rate":              "45",
		"overtime_rate":          "67.5",
		"weekly_hours_threshold": "40",
	}
	if mutate != nil {
		mutate(body)
	}
	b, _ := json.Marshal(body)
	return b
}

func doJSON(t *testing.T, method, url string, body []byte) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

// =============================================================================
// CONTRACT ENDPOINTS
// =============================================================================

func TestCreateContract_SeedsAndReturnsCounts(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/contracts", contractBody(nil))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	seed := body["seed_result"].(map[string]any)
	assert.Equal(t, float64(2), seed["created"])
	assert.Equal(t, float64(1), seed["enabled_days"])

	contract := body["contract"].(map[string]any)
	assert.Equal(t, "planned", contract["status"])
	assert.NotEmpty(t, contract["id"])
}

func TestCreateContract_ValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"inverted range", func(b map[string]any) {
			b["start_date"], b["end_date"] = b["end_date"], b["start_date"]
		}},
		{"no enabled weekdays", func(b map[string]any) {
			pattern := make([]map[string]any, 7)
			for i := range pattern {
				pattern[i] = map[string]any{"weekday": i, "enabled": false}
			}
			b["pattern"] = pattern
		}},
		{"unknown zone", func(b map[string]any) { b["timezone"] = "Not/AZone" }},
		{"bad clock", func(b map[string]any) {
			b["pattern"].([]map[string]any)[1]["end"] = "25:00"
		}},
		{"six pattern entries", func(b map[string]any) {
			b["pattern"] = b["pattern"].([]map[string]any)[:6]
		}},
	}
	for _, c := range cases {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/contracts", contractBody(c.mutate))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "%s: %v", c.name, body)
	}
}

func TestUpdateContract_NotFoundAndConflict(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/api/contracts/no-such-id", contractBody(nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/contracts", contractBody(nil))
	id := body["contract"].(map[string]any)["id"].(string)

	// planned -> archived skips a stage: 409
	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/contracts/"+id,
		contractBody(func(b map[string]any) { b["status"] = "archived" }))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUpdateContract_ReconcileCounts(t *testing.T) {
	srv := newTestServer(t)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/contracts", contractBody(nil))
	id := body["contract"].(map[string]any)["id"].(string)

	// Swap Monday for Wednesday.
	resp, body := doJSON(t, http.MethodPut, srv.URL+"/api/contracts/"+id,
		contractBody(func(b map[string]any) {
			pattern := b["pattern"].([]map[string]any)
			pattern[1] = map[string]any{"weekday": 1, "enabled": false}
			pattern[3] = map[string]any{"weekday": 3, "enabled": true, "start": "07:00", "end": "19:00"}
		}))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := body["update_result"].(map[string]any)
	assert.Equal(t, float64(2), result["created"])
	assert.Equal(t, float64(2), result["deleted"])
	assert.Equal(t, float64(0), result["updated"])
}

// =============================================================================
// OCCURRENCE AND PAYROLL ENDPOINTS
// =============================================================================

func TestCompleteOccurrence_Flow(t *testing.T) {
	srv := newTestServer(t)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/contracts", contractBody(nil))
	id := body["contract"].(map[string]any)["id"].(string)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/contracts/"+id+"/occurrences", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var occurrences []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&occurrences))
	require.Len(t, occurrences, 2)

	occID := occurrences[0]["id"].(string)
	complete, _ := json.Marshal(map[string]string{
		"actual_start": occurrences[0]["start_utc"].(string),
		"actual_end":   occurrences[0]["end_utc"].(string),
	})

	resp2, completed := doJSON(t, http.MethodPost, srv.URL+"/api/occurrences/"+occID+"/complete", complete)
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Equal(t, true, completed["completed"])

	// Double completion conflicts.
	resp3, _ := doJSON(t, http.MethodPost, srv.URL+"/api/occurrences/"+occID+"/complete", complete)
	assert.Equal(t, http.StatusConflict, resp3.StatusCode)
}

func TestContractPayroll(t *testing.T) {
	srv := newTestServer(t)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/contracts", contractBody(nil))
	id := body["contract"].(map[string]any)["id"].(string)

	resp, payroll := doJSON(t, http.MethodGet,
		fmt.Sprintf("%s/api/contracts/%s/payroll?date=2024-01-08", srv.URL, id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2024-01-07", payroll["week_start"])
	assert.Equal(t, "2024-01-13", payroll["week_end"])
	assert.Equal(t, "12", payroll["hours"])
	assert.Equal(t, "540", payroll["earnings"])
}

func TestAuditEndpoints(t *testing.T) {
	srv := newTestServer(t)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/contracts", contractBody(nil))
	id := body["contract"].(map[string]any)["id"].(string)

	resp, audit := doJSON(t, http.MethodGet, srv.URL+"/api/audit/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, audit["clean"])
	assert.Equal(t, float64(2), audit["expected"])

	resp2, _ := doJSON(t, http.MethodGet, srv.URL+"/api/audit/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

// =============================================================================
// VALIDATION HELPERS
// =============================================================================

func TestParseClockBounds(t *testing.T) {
	// The wire layer delegates clock validation to the schedule package;
	// this guards the contract between them.
	_, err := schedule.ParseClock("24:00")
	require.Error(t, err)
	require.True(t, shifts.IsValidation(err))
}
