/*
handlers_test.go - HTTP tests for schedule, scenario and operations endpoints

Requests go through the full router (middleware included) against an
in-memory store.
*/
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/amortization-engine/amortization"
	"github.com/warp/amortization-engine/amortization/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const standardLoan = `{"loan_amount": 20000, "interest_rate": 7.5, "term_months": 12}`

func setupTestRouter(t *testing.T, st amortization.Store) (*Handler, http.Handler) {
	t.Helper()
	if st == nil {
		st = store.NewMemory()
	}
	h := NewHandler(st, slog.New(slog.NewTextHandler(io.Discard, nil)), 600)
	return h, NewRouter(h, []string{"http://localhost:5173"})
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// noResetStore hides the Reset capability of the wrapped store.
type noResetStore struct {
	amortization.Store
}

// =============================================================================
// SCHEDULE ENDPOINTS
// =============================================================================

func TestCreateSchedule_StoresAndReturnsSchedule(t *testing.T) {
	// GIVEN: an empty store
	_, router := setupTestRouter(t, nil)

	// WHEN: creating the reference loan
	rec := do(t, router, http.MethodPost, "/api/schedules", standardLoan)

	// THEN: 201 with an ID and twelve two-decimal entries
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[ScheduleDTO](t, rec)

	assert.NotEmpty(t, got.ID)
	assert.NotEmpty(t, got.CreatedAt)
	require.NotNil(t, got.Loan.LoanAmount)
	assert.Equal(t, "20000.00", *got.Loan.LoanAmount)
	require.NotNil(t, got.Loan.InterestRate)
	assert.Equal(t, "7.5", *got.Loan.InterestRate)
	assert.Equal(t, "0.00", got.Loan.DepositAmount)
	assert.Nil(t, got.Loan.BalloonPayment)

	require.Len(t, got.Entries, 12)
	assert.Equal(t, EntryDTO{
		Period:           1,
		PaymentAmount:    "1735.15",
		InterestAmount:   "125.00",
		PrincipalAmount:  "1610.15",
		RemainingBalance: "18389.85",
	}, got.Entries[0])
	assert.Equal(t, "0.00", got.Entries[11].RemainingBalance)
}

func TestCreateSchedule_ThenGetAndSummary(t *testing.T) {
	_, router := setupTestRouter(t, nil)
	created := decode[ScheduleDTO](t, do(t, router, http.MethodPost, "/api/schedules", standardLoan))

	rec := do(t, router, http.MethodGet, "/api/schedules/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[ScheduleDTO](t, rec))

	rec = do(t, router, http.MethodGet, "/api/schedules/"+created.ID+"/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[SummaryDTO](t, rec)
	assert.Equal(t, created.ID, sum.ID)
	assert.Equal(t, 12, sum.Periods)
	assert.Equal(t, "1735.15", sum.FirstPeriodPayment)
	assert.Equal(t, "821.79", sum.TotalInterest)
	assert.Equal(t, "20821.80", sum.TotalPayments)
}

func TestCreateSchedule_WithBalloon(t *testing.T) {
	_, router := setupTestRouter(t, nil)

	rec := do(t, router, http.MethodPost, "/api/schedules",
		`{"loan_amount": "20000", "interest_rate": "7.5", "balloon_payment": "10000", "term_months": 12}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[ScheduleDTO](t, rec)
	require.NotNil(t, got.Loan.BalloonPayment)
	assert.Equal(t, "10000.00", *got.Loan.BalloonPayment)
	require.Len(t, got.Entries, 12)
	assert.Equal(t, "930.07", got.Entries[0].PaymentAmount)
	assert.Equal(t, "10000.00", got.Entries[11].RemainingBalance)
}

func TestCalculateSchedule_DoesNotPersist(t *testing.T) {
	_, router := setupTestRouter(t, nil)

	rec := do(t, router, http.MethodPost, "/api/schedules/calculate",
		`{"loan_amount": 20000, "interest_rate": 7.5, "term_months": 3}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[ScheduleDTO](t, rec)
	assert.Empty(t, got.ID)
	assert.Len(t, got.Entries, 3)
	assert.Equal(t, "6750.17", got.Entries[0].PaymentAmount)

	list := decode[[]SummaryDTO](t, do(t, router, http.MethodGet, "/api/schedules", ""))
	assert.Empty(t, list)
}

func TestListSchedules_SummariesInCreationOrder(t *testing.T) {
	_, router := setupTestRouter(t, nil)
	first := decode[ScheduleDTO](t, do(t, router, http.MethodPost, "/api/schedules", standardLoan))
	second := decode[ScheduleDTO](t, do(t, router, http.MethodPost, "/api/schedules",
		`{"loan_amount": 20000, "interest_rate": 7.5, "term_months": 3}`))

	rec := do(t, router, http.MethodGet, "/api/schedules", "")

	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]SummaryDTO](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	assert.Equal(t, "250.52", list[1].TotalInterest)
	assert.Equal(t, "20250.51", list[1].TotalPayments)
}

func TestSchedules_DegenerateDeposit(t *testing.T) {
	_, router := setupTestRouter(t, nil)

	rec := do(t, router, http.MethodPost, "/api/schedules/calculate",
		`{"loan_amount": 20000, "deposit_amount": 25000, "interest_rate": 7.5, "term_months": 12}`)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[ScheduleDTO](t, rec)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, EntryDTO{
		Period:           1,
		PaymentAmount:    "-433.79",
		InterestAmount:   "-31.25",
		PrincipalAmount:  "-5000.00",
		RemainingBalance: "0.00",
	}, got.Entries[0])
}

func TestSchedules_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		body    string
		details string
	}{
		{"malformed body", "/api/schedules", `{"loan_amount": `, "malformed request body"},
		{"missing loan amount", "/api/schedules", `{"interest_rate": 7.5, "term_months": 12}`, "loan_amount"},
		{"missing rate", "/api/schedules/calculate", `{"loan_amount": 20000, "term_months": 12}`, "interest_rate"},
		{"zero term", "/api/schedules", `{"loan_amount": 20000, "interest_rate": 7.5, "term_months": 0}`, "term_months"},
		{"negative term", "/api/schedules/calculate", `{"loan_amount": 20000, "interest_rate": 7.5, "term_months": -3}`, "term_months"},
		{"term above limit", "/api/schedules", `{"loan_amount": 20000, "interest_rate": 7.5, "term_months": 601}`, "must not exceed 600"},
		{"negative rate", "/api/schedules/calculate", `{"loan_amount": "1000", "interest_rate": "-2400", "term_months": 2}`, "interest_rate must not be negative"},
		{"negative rate with balloon", "/api/schedules", `{"loan_amount": "1000", "interest_rate": "-1200", "balloon_payment": "10", "term_months": 2}`, "interest_rate must not be negative"},
		{"negative deposit", "/api/schedules", `{"loan_amount": 1000, "deposit_amount": -5, "interest_rate": 5, "term_months": 2}`, "deposit_amount must not be negative"},
		{"huge exponent", "/api/schedules/calculate", `{"loan_amount": "1e300000", "interest_rate": 7.5, "term_months": 12}`, "loan_amount must have at most"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, router := setupTestRouter(t, nil)

			rec := do(t, router, http.MethodPost, tt.path, tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			resp := decode[ErrorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
			assert.Contains(t, resp.Details, tt.details)
		})
	}
}

func TestSchedules_OversizedBodyRejected(t *testing.T) {
	// GIVEN: a body far larger than any loan definition
	_, router := setupTestRouter(t, nil)
	body := `{"loan_amount": "` + strings.Repeat("9", maxBodyBytes) + `", "interest_rate": 7.5, "term_months": 12}`

	// WHEN
	rec := do(t, router, http.MethodPost, "/api/schedules/calculate", body)

	// THEN: rejected before any decimal is parsed
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Details, "malformed request body")
}

func TestGetSchedule_NotFound(t *testing.T) {
	_, router := setupTestRouter(t, nil)

	for _, path := range []string{"/api/schedules/missing", "/api/schedules/missing/summary"} {
		rec := do(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestListScenarios(t *testing.T) {
	_, router := setupTestRouter(t, nil)

	rec := do(t, router, http.MethodGet, "/api/scenarios", "")

	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]ScenarioDTO](t, rec)
	require.Len(t, list, len(scenarios))
	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"standard-loan", "balloon-loan", "short-term", "large-deposit", "deposit-covers-loan"}, ids)
}

func TestLoadScenario_ReplacesStoredSchedules(t *testing.T) {
	// GIVEN: a store that already holds a schedule
	_, router := setupTestRouter(t, nil)
	do(t, router, http.MethodPost, "/api/schedules", standardLoan)

	// WHEN: loading the balloon scenario
	rec := do(t, router, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "balloon-loan"}`)

	// THEN: only the scenario's schedule remains
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[LoadScenarioResponse](t, rec)
	assert.Equal(t, "loaded", resp.Status)
	assert.Equal(t, "balloon-loan", resp.Scenario)
	require.Len(t, resp.Schedule.Entries, 12)
	assert.Equal(t, "10000.00", resp.Schedule.Entries[11].RemainingBalance)

	list := decode[[]SummaryDTO](t, do(t, router, http.MethodGet, "/api/schedules", ""))
	require.Len(t, list, 1)
	assert.Equal(t, resp.Schedule.ID, list[0].ID)
	assert.Equal(t, "1160.88", list[0].TotalInterest)

	current := decode[ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios/current", ""))
	assert.Equal(t, "balloon-loan", current.ID)
}

func TestLoadScenario_EveryScenarioLoads(t *testing.T) {
	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			_, router := setupTestRouter(t, nil)

			rec := do(t, router, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "`+s.ID+`"}`)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			resp := decode[LoadScenarioResponse](t, rec)
			assert.NotEmpty(t, resp.Schedule.Entries)
		})
	}
}

func TestLoadScenario_LargeDeposit(t *testing.T) {
	_, router := setupTestRouter(t, nil)

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "large-deposit"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[LoadScenarioResponse](t, rec)
	require.Len(t, resp.Schedule.Entries, 12)
	assert.Equal(t, "86.76", resp.Schedule.Entries[0].PaymentAmount)
	assert.Equal(t, "6.25", resp.Schedule.Entries[0].InterestAmount)
	assert.Equal(t, "919.49", resp.Schedule.Entries[0].RemainingBalance)
}

func TestLoadScenario_Unknown(t *testing.T) {
	_, router := setupTestRouter(t, nil)

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "nope"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetScenario_ClearsStoreAndCurrent(t *testing.T) {
	h, router := setupTestRouter(t, nil)
	do(t, router, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "short-term"}`)

	rec := do(t, router, http.MethodPost, "/api/scenarios/reset", "")

	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]SummaryDTO](t, do(t, router, http.MethodGet, "/api/schedules", ""))
	assert.Empty(t, list)
	assert.Empty(t, h.currentScenario)
	assert.Equal(t, "null\n", do(t, router, http.MethodGet, "/api/scenarios/current", "").Body.String())
}

func TestResetScenario_StoreWithoutReset(t *testing.T) {
	_, router := setupTestRouter(t, noResetStore{Store: store.NewMemory()})

	rec := do(t, router, http.MethodPost, "/api/scenarios/reset", "")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "standard-loan"}`)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

// =============================================================================
// OPERATIONS
// =============================================================================

func TestHealth(t *testing.T) {
	_, router := setupTestRouter(t, nil)

	rec := do(t, router, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetrics_ExposesBuildCounters(t *testing.T) {
	_, router := setupTestRouter(t, nil)
	do(t, router, http.MethodPost, "/api/schedules/calculate", standardLoan)

	rec := do(t, router, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "amortization_schedules_built_total")
	assert.Contains(t, body, "amortization_schedule_periods")
	assert.Contains(t, body, `http_requests_total{method="POST",route="/api/schedules/calculate",status="200"}`)
}

func TestCORS_PreflightAllowedOrigin(t *testing.T) {
	_, router := setupTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/schedules", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
