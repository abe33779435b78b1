/*
Package amortization computes fixed-payment loan amortization schedules.

PURPOSE:
  Given a loan amount, deposit, annual interest rate, term and an optional
  balloon payment, the engine produces the period-by-period breakdown of
  payment, interest, principal and remaining balance, plus schedule-level
  totals. Everything in this package is a pure function over its inputs.

KEY CONCEPTS IN THIS FILE (types.go):
  - LoanInput: Immutable calculation input
  - Entry: One period of a schedule
  - Schedule: Input plus its ordered entries
  - Summary: Totals derived from a schedule on demand

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere, never float64
  2. Rounding only at fixed points (5, 15 and 2 fractional digits)
  3. No shared state: concurrent calls need no locking

USAGE:
  schedule, err := amortization.BuildSchedule(amortization.LoanInput{
      LoanAmount:   decimal.NewNullDecimal(decimal.NewFromInt(20000)),
      InterestRate: decimal.NewNullDecimal(decimal.RequireFromString("7.5")),
      TermMonths:   12,
  })
  summary := amortization.Summarize(schedule)

SEE ALSO:
  - schedule.go: Period expansion
  - payment.go: Rate and payment derivation
  - store.go: Persistence contract for collaborators
*/
package amortization

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUT
// =============================================================================

// LoanInput describes a loan to amortize.
//
// LoanAmount and InterestRate are nullable so that a missing value can be
// told apart from zero. An absent BalloonPayment and a zero one are
// equivalent.
type LoanInput struct {
	LoanAmount     decimal.NullDecimal `json:"loan_amount"`
	DepositAmount  decimal.Decimal     `json:"deposit_amount"`
	InterestRate   decimal.NullDecimal `json:"interest_rate"` // annual, in percent
	BalloonPayment decimal.NullDecimal `json:"balloon_payment"`
	TermMonths     int                 `json:"term_months"`
}

// Principal is the financed amount: loan amount minus deposit.
// It may be negative when the deposit exceeds the loan.
func (in LoanInput) Principal() decimal.Decimal {
	return in.LoanAmount.Decimal.Sub(in.DepositAmount)
}

// HasBalloon reports whether a non-zero balloon payment is configured.
func (in LoanInput) HasBalloon() bool {
	return in.BalloonPayment.Valid && !in.BalloonPayment.Decimal.IsZero()
}

// =============================================================================
// OUTPUT
// =============================================================================

// Entry is one period of a schedule. Monetary fields are rounded to cents.
type Entry struct {
	Period           int             `json:"period"`
	PaymentAmount    decimal.Decimal `json:"payment_amount"`
	InterestAmount   decimal.Decimal `json:"interest_amount"`
	PrincipalAmount  decimal.Decimal `json:"principal_amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// Schedule is the result of one calculation. Entries are in period order,
// 1-based without gaps, and may be shorter than the term.
type Schedule struct {
	Input   LoanInput `json:"input"`
	Entries []Entry   `json:"entries"`
}

// Summary aggregates a schedule. It is always derived, never stored.
type Summary struct {
	Input              LoanInput       `json:"input"`
	FirstPeriodPayment decimal.Decimal `json:"first_period_payment"`
	TotalInterest      decimal.Decimal `json:"total_interest"`
	TotalPayments      decimal.Decimal `json:"total_payments"`
}
