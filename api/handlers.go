/*
handlers.go - HTTP handlers for the shift engine

PURPOSE:
  Exposes contract management, occurrence queries, payroll, and the audit
  surface over REST. Handlers parse and validate input, delegate to
  shifts.Service, and map domain errors to status codes.

ERROR HANDLING:
  - 400: validation failures (bad dates, clocks, zones, pattern, rates)
  - 404: contract or occurrence not found
  - 409: conflicts (illegal status transition, double completion)
  - 500: everything else

SEE ALSO:
  - dto.go: wire formats
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/shift-engine/schedule"
	"github.com/warp/shift-engine/shifts"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *shifts.Service
}

// NewHandler creates a new handler backed by the given service.
func NewHandler(service *shifts.Service) *Handler {
	return &Handler{Service: service}
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

// ListContracts returns contracts, optionally filtered by status and paged.
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	var filter shifts.ContractFilter
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := shifts.ParseStatus(s)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		filter.Status = &status
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.PerPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))

	contracts, err := h.Service.ListContracts(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]ContractDTO, len(contracts))
	for i := range contracts {
		dtos[i] = toContractDTO(&contracts[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateContract validates the payload, persists the contract, and seeds
// its occurrences.
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req ContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	input, err := req.ToInput()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	contract, seed, err := h.Service.CreateContract(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"contract":    toContractDTO(contract),
		"seed_result": seed,
	})
}

// GetContract returns a single contract.
func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	contract, err := h.Service.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(contract))
}

// UpdateContract applies the payload and reconciles occurrences.
func (h *Handler) UpdateContract(w http.ResponseWriter, r *http.Request) {
	var req ContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	input, err := req.ToInput()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	contract, result, err := h.Service.UpdateContract(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"contract":      toContractDTO(contract),
		"update_result": result,
	})
}

// =============================================================================
// OCCURRENCE HANDLERS
// =============================================================================

// ContractOccurrences lists a contract's occurrences.
func (h *Handler) ContractOccurrences(w http.ResponseWriter, r *http.Request) {
	occurrences, err := h.Service.OccurrencesForContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOccurrenceDTOs(occurrences))
}

// OccurrencesInRange lists all occurrences with local dates in [from, to].
func (h *Handler) OccurrencesInRange(w http.ResponseWriter, r *http.Request) {
	from, err := schedule.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	to, err := schedule.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	occurrences, err := h.Service.OccurrencesInRange(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOccurrenceDTOs(occurrences))
}

// CreateManualOccurrence records a shift outside any contract.
func (h *Handler) CreateManualOccurrence(w http.ResponseWriter, r *http.Request) {
	var req ManualOccurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	localDate, err := schedule.ParseDate(req.LocalDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	startUTC, err := parseInstant("start_utc", req.StartUTC)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	endUTC, err := parseInstant("end_utc", req.EndUTC)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	occ, err := h.Service.CreateManualOccurrence(r.Context(), shifts.ManualOccurrenceInput{
		LocalDate: localDate,
		StartUTC:  startUTC,
		EndUTC:    endUTC,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOccurrenceDTO(occ))
}

// CompleteOccurrence records actual worked times and finalizes the record.
func (h *Handler) CompleteOccurrence(w http.ResponseWriter, r *http.Request) {
	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	actualStart, err := parseInstant("actual_start", req.ActualStart)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	actualEnd, err := parseInstant("actual_end", req.ActualEnd)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	occ, err := h.Service.CompleteOccurrence(r.Context(), chi.URLParam(r, "id"), actualStart, actualEnd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOccurrenceDTO(occ))
}

// =============================================================================
// PAYROLL AND AUDIT HANDLERS
// =============================================================================

// ContractPayroll computes the weekly payroll for the week containing
// the ?date= query parameter.
func (h *Handler) ContractPayroll(w http.ResponseWriter, r *http.Request) {
	date, err := schedule.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	contractID := chi.URLParam(r, "id")
	payroll, err := h.Service.PayrollForWeek(r.Context(), contractID, date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PayrollDTO{
		ContractID:        contractID,
		WeekStart:         payroll.WeekStart.String(),
		WeekEnd:           payroll.WeekEnd.String(),
		Hours:             payroll.Hours.String(),
		Earnings:          payroll.Earnings.String(),
		UnattributedHours: payroll.UnattributedHours.String(),
	})
}

// AuditAll audits every contract.
func (h *Handler) AuditAll(w http.ResponseWriter, r *http.Request) {
	results, err := h.Service.AuditAllContracts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]AuditDTO, len(results))
	for i := range results {
		dtos[i] = toAuditDTO(&results[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AuditContract audits one contract.
func (h *Handler) AuditContract(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.AuditContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditDTO(result))
}

// Health is a trivial liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func parseInstant(field, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, &schedule.ValidationError{Code: "invalid_" + field, Message: field + " must be an RFC 3339 timestamp"}
	}
	return t, nil
}

// writeDomainError maps a domain error to a status code.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case shifts.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case shifts.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case shifts.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]any{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
