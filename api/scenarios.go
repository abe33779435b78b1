/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built loans that populate the store with a realistic
	schedule for demos. Each scenario is a JSON loan definition parsed by
	the same factory the API uses.

AVAILABLE SCENARIOS:

	standard-loan:        20000 at 7.5% over 12 months
	balloon-loan:         Same loan with a 10000 balloon
	short-term:           20000 at 7.5% over 3 months
	large-deposit:        19000 deposit leaves 1000 to amortize
	deposit-covers-loan:  Deposit above the loan, single degenerate entry

HOW SCENARIOS WORK:
 1. Reset the store (delete every schedule)
 2. Parse the scenario's loan JSON via factory
 3. Build the schedule
 4. Save it

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "balloon-loan"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description and loan JSON

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Schedule handlers
  - factory/loan.go: Loan JSON definitions
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/amortization-engine/amortization"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	loanJSON string
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "standard-loan",
			Name:        "Standard Loan",
			Description: "20000 at 7.5% over 12 months, fully amortized",
			Category:    "standard",
		},
		loanJSON: `{"loan_amount": "20000", "interest_rate": "7.5", "term_months": 12}`,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "balloon-loan",
			Name:        "Balloon Loan",
			Description: "20000 at 7.5% over 12 months with a 10000 balloon left at the end",
			Category:    "balloon",
		},
		loanJSON: `{"loan_amount": "20000", "interest_rate": "7.5", "balloon_payment": "10000", "term_months": 12}`,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "short-term",
			Name:        "Short Term",
			Description: "20000 at 7.5% repaid over 3 months",
			Category:    "standard",
		},
		loanJSON: `{"loan_amount": "20000", "interest_rate": "7.5", "term_months": 3}`,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "large-deposit",
			Name:        "Large Deposit",
			Description: "20000 loan with a 19000 deposit, 1000 amortized over 12 months",
			Category:    "deposit",
		},
		loanJSON: `{"loan_amount": "20000", "deposit_amount": "19000", "interest_rate": "7.5", "term_months": 12}`,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "deposit-covers-loan",
			Name:        "Deposit Covers Loan",
			Description: "Deposit larger than the loan; the schedule stops after one entry",
			Category:    "deposit",
		},
		loanJSON: `{"loan_amount": "20000", "deposit_amount": "25000", "interest_rate": "7.5", "term_months": 12}`,
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	s, _ := findScenario(current)
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", fmt.Errorf("scenario %q does not exist", req.ScenarioID))
		return
	}

	stored, err := h.loadScenario(r.Context(), s)
	if err != nil {
		writeServiceError(w, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.Logger.Info("scenario loaded", "scenario", s.ID, "schedule_id", stored.ID)
	writeJSON(w, http.StatusOK, LoadScenarioResponse{
		Status:   "loaded",
		Scenario: s.ID,
		Schedule: toStoredScheduleDTO(stored),
	})
}

// ResetDatabase deletes every stored schedule.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		writeServiceError(w, "Failed to reset store", err)
		return
	}
	h.Logger.Info("store reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadScenario(ctx context.Context, s scenario) (amortization.StoredSchedule, error) {
	if err := h.reset(ctx); err != nil {
		return amortization.StoredSchedule{}, err
	}

	input, err := h.LoanFactory.ParseLoan(s.loanJSON)
	if err != nil {
		return amortization.StoredSchedule{}, err
	}
	schedule, err := buildSchedule(input)
	if err != nil {
		return amortization.StoredSchedule{}, err
	}
	stored, err := h.Store.Save(ctx, schedule)
	if err != nil {
		return amortization.StoredSchedule{}, err
	}

	h.mu.Lock()
	h.currentScenario = s.ID
	h.mu.Unlock()
	return stored, nil
}

func (h *Handler) reset(ctx context.Context) error {
	if err := amortization.ResetStore(ctx, h.Store); err != nil {
		return err
	}
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()
	return nil
}
