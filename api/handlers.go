/*
handlers.go - HTTP API handlers for the amortization service

PURPOSE:
  Exposes the amortization engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the engine and
  the configured store.

ENDPOINTS:
  Schedules:
    POST   /api/schedules              Build and store a schedule
    POST   /api/schedules/calculate    Build a schedule without storing it
    GET    /api/schedules              Summaries of all stored schedules
    GET    /api/schedules/{id}         Stored schedule with entries
    GET    /api/schedules/{id}/summary Summary of one stored schedule

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    GET    /api/scenarios/current      Currently loaded scenario
    POST   /api/scenarios/load         Load a demo scenario
    POST   /api/scenarios/reset        Delete every stored schedule

  Operations:
    GET    /healthz                    Liveness plus store ping
    GET    /metrics                    Prometheus exposition

REQUEST FLOW:
  1. Decode the body into factory.LoanJSON
  2. Validate presence, sign and size (factory) and term bounds (handler)
  3. amortization.BuildSchedule
  4. Persist when asked to
  5. Serialize with money as fixed two-decimal strings

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed or oversized body, invalid loan input (missing,
         negative or out-of-range values), term above the limit
  - 404: Schedule not found
  - 501: Store lacks a required capability (reset)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/warp/amortization-engine/amortization"
	"github.com/warp/amortization-engine/factory"
	"github.com/warp/amortization-engine/observability"
)

// errMalformedBody marks request bodies that are not valid JSON.
var errMalformedBody = errors.New("malformed request body")

// maxBodyBytes caps loan request bodies. A loan definition is well under
// a kilobyte.
const maxBodyBytes = 64 << 10

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       amortization.Store
	LoanFactory *factory.LoanFactory
	Logger      *slog.Logger

	// MaxTermMonths bounds the term accepted from callers. Zero disables
	// the check.
	MaxTermMonths int

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store amortization.Store, logger *slog.Logger, maxTermMonths int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:         store,
		LoanFactory:   factory.NewLoanFactory(),
		Logger:        logger,
		MaxTermMonths: maxTermMonths,
	}
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// CreateSchedule builds a schedule and stores it.
// POST /api/schedules
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.buildFromRequest(w, r)
	if err != nil {
		writeServiceError(w, "Failed to build schedule", err)
		return
	}

	stored, err := h.Store.Save(r.Context(), schedule)
	if err != nil {
		h.Logger.Error("failed to save schedule", "error", err)
		writeServiceError(w, "Failed to save schedule", err)
		return
	}

	h.Logger.Info("schedule stored",
		"schedule_id", stored.ID,
		"periods", len(stored.Schedule.Entries),
		"balloon", stored.Schedule.Input.HasBalloon(),
	)
	writeJSON(w, http.StatusCreated, toStoredScheduleDTO(stored))
}

// CalculateSchedule builds a schedule without storing it.
// POST /api/schedules/calculate
func (h *Handler) CalculateSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.buildFromRequest(w, r)
	if err != nil {
		writeServiceError(w, "Failed to build schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleDTO(schedule))
}

// ListSchedules returns a summary of every stored schedule.
// GET /api/schedules
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	all, err := h.Store.List(r.Context())
	if err != nil {
		writeServiceError(w, "Failed to list schedules", err)
		return
	}

	dtos := make([]SummaryDTO, len(all))
	for i, stored := range all {
		dtos[i] = toSummaryDTO(stored)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSchedule returns one stored schedule with its entries.
// GET /api/schedules/{id}
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	stored, err := h.Store.Get(r.Context(), amortization.ScheduleID(chi.URLParam(r, "id")))
	if err != nil {
		writeServiceError(w, "Failed to get schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toStoredScheduleDTO(stored))
}

// GetScheduleSummary returns the summary of one stored schedule.
// GET /api/schedules/{id}/summary
func (h *Handler) GetScheduleSummary(w http.ResponseWriter, r *http.Request) {
	stored, err := h.Store.Get(r.Context(), amortization.ScheduleID(chi.URLParam(r, "id")))
	if err != nil {
		writeServiceError(w, "Failed to get schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(stored))
}

// =============================================================================
// OPERATIONS
// =============================================================================

type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports liveness, pinging the store when it supports it.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// buildFromRequest decodes a loan from the body and builds its schedule,
// recording build metrics either way.
func (h *Handler) buildFromRequest(w http.ResponseWriter, r *http.Request) (amortization.Schedule, error) {
	var body factory.LoanJSON
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		observability.BuildErrors.WithLabelValues("malformed_body").Inc()
		return amortization.Schedule{}, fmt.Errorf("%w: %v", errMalformedBody, err)
	}

	input, err := h.LoanFactory.Build(body)
	if err != nil {
		observability.BuildErrors.WithLabelValues("invalid_input").Inc()
		return amortization.Schedule{}, err
	}
	if h.MaxTermMonths > 0 && input.TermMonths > h.MaxTermMonths {
		observability.BuildErrors.WithLabelValues("term_limit").Inc()
		return amortization.Schedule{}, &amortization.InvalidInputError{
			Field:  "term_months",
			Reason: "must not exceed " + strconv.Itoa(h.MaxTermMonths),
		}
	}

	return buildSchedule(input)
}

// buildSchedule runs the engine and records metrics.
func buildSchedule(input amortization.LoanInput) (amortization.Schedule, error) {
	schedule, err := amortization.BuildSchedule(input)
	if err != nil {
		observability.BuildErrors.WithLabelValues("invalid_input").Inc()
		return schedule, err
	}
	observability.SchedulesBuilt.WithLabelValues(strconv.FormatBool(input.HasBalloon())).Inc()
	observability.SchedulePeriods.Observe(float64(len(schedule.Entries)))
	return schedule, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError picks the status from the error chain.
func writeServiceError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errMalformedBody), amortization.IsClientError(err):
		return http.StatusBadRequest
	case amortization.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, amortization.ErrStoreRequired):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
