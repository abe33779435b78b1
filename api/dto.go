/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's decimal types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ENCODING:
  Every monetary field is a string with exactly two fractional digits
  ("1735.15"). Floats never appear in responses. The interest rate is
  echoed as given ("7.5").

TYPES:
  Loans:     LoanDTO (input echo), request bodies are factory.LoanJSON
  Schedules: ScheduleDTO, EntryDTO, SummaryDTO
  Scenarios: ScenarioDTO, LoadScenarioRequest, LoadScenarioResponse

SEE ALSO:
  - handlers.go: Uses these types
  - factory/loan.go: LoanJSON request type
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/amortization-engine/amortization"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// LoanDTO echoes the loan a schedule was built from.
type LoanDTO struct {
	LoanAmount     *string `json:"loan_amount"`
	DepositAmount  string  `json:"deposit_amount"`
	InterestRate   *string `json:"interest_rate"`
	BalloonPayment *string `json:"balloon_payment,omitempty"`
	TermMonths     int     `json:"term_months"`
}

// EntryDTO is one period of a schedule.
type EntryDTO struct {
	Period           int    `json:"period"`
	PaymentAmount    string `json:"payment_amount"`
	InterestAmount   string `json:"interest_amount"`
	PrincipalAmount  string `json:"principal_amount"`
	RemainingBalance string `json:"remaining_balance"`
}

// ScheduleDTO is a computed schedule. ID and CreatedAt are empty for
// schedules that were calculated but not stored.
type ScheduleDTO struct {
	ID        string     `json:"id,omitempty"`
	CreatedAt string     `json:"created_at,omitempty"`
	Loan      LoanDTO    `json:"loan"`
	Entries   []EntryDTO `json:"entries"`
}

// SummaryDTO is the roll-up of one stored schedule.
type SummaryDTO struct {
	ID                 string  `json:"id"`
	CreatedAt          string  `json:"created_at"`
	Loan               LoanDTO `json:"loan"`
	Periods            int     `json:"periods"`
	FirstPeriodPayment string  `json:"first_period_payment"`
	TotalInterest      string  `json:"total_interest"`
	TotalPayments      string  `json:"total_payments"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"` // "standard", "balloon" or "deposit"
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// LoadScenarioResponse reports the loaded scenario and its stored schedule.
type LoadScenarioResponse struct {
	Status   string      `json:"status"`
	Scenario string      `json:"scenario"`
	Schedule ScheduleDTO `json:"schedule"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func money(d decimal.Decimal) string {
	return d.StringFixed(amortization.OutputScale)
}

func optionalMoney(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := money(d.Decimal)
	return &s
}

func toLoanDTO(in amortization.LoanInput) LoanDTO {
	dto := LoanDTO{
		LoanAmount:     optionalMoney(in.LoanAmount),
		DepositAmount:  money(in.DepositAmount),
		BalloonPayment: optionalMoney(in.BalloonPayment),
		TermMonths:     in.TermMonths,
	}
	if in.InterestRate.Valid {
		rate := in.InterestRate.Decimal.String()
		dto.InterestRate = &rate
	}
	return dto
}

func toEntryDTOs(entries []amortization.Entry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = EntryDTO{
			Period:           e.Period,
			PaymentAmount:    money(e.PaymentAmount),
			InterestAmount:   money(e.InterestAmount),
			PrincipalAmount:  money(e.PrincipalAmount),
			RemainingBalance: money(e.RemainingBalance),
		}
	}
	return dtos
}

func toScheduleDTO(s amortization.Schedule) ScheduleDTO {
	return ScheduleDTO{
		Loan:    toLoanDTO(s.Input),
		Entries: toEntryDTOs(s.Entries),
	}
}

func toStoredScheduleDTO(stored amortization.StoredSchedule) ScheduleDTO {
	dto := toScheduleDTO(stored.Schedule)
	dto.ID = string(stored.ID)
	dto.CreatedAt = stored.CreatedAt.UTC().Format(time.RFC3339)
	return dto
}

func toSummaryDTO(stored amortization.StoredSchedule) SummaryDTO {
	sum := amortization.Summarize(stored.Schedule)
	return SummaryDTO{
		ID:                 string(stored.ID),
		CreatedAt:          stored.CreatedAt.UTC().Format(time.RFC3339),
		Loan:               toLoanDTO(sum.Input),
		Periods:            len(stored.Schedule.Entries),
		FirstPeriodPayment: money(sum.FirstPeriodPayment),
		TotalInterest:      money(sum.TotalInterest),
		TotalPayments:      money(sum.TotalPayments),
	}
}
