/*
schedule.go - Period-by-period expansion of a loan

ALGORITHM:
  1. Validate input
  2. Derive yearly/monthly rates (5 digits)
  3. balance := loan amount - deposit
  4. payment := MonthlyPayment(...) (15 digits, constant)
  5. For each period 1..term:
       interest  := balance * monthlyRate
       principal := min(balance, payment - interest)
       balance   -= principal
       emit entry, each field rounded to 2 digits
       stop once balance <= 0

PRECISION:
  Running values are never rounded. Rounding happens only when an entry is
  emitted, so cent-level errors do not accumulate across periods.

EARLY TERMINATION:
  A schedule may be shorter than the term: a deposit that covers the loan
  ends it after the first period.
*/
package amortization

import (
	"github.com/shopspring/decimal"
)

// BuildSchedule validates the input and expands it into a schedule.
func BuildSchedule(in LoanInput) (Schedule, error) {
	if err := Validate(in); err != nil {
		return Schedule{}, err
	}

	_, monthlyRate := ComputeRates(in.InterestRate.Decimal)
	balance := in.Principal()
	payment := MonthlyPayment(balance, monthlyRate, in.TermMonths, in.BalloonPayment)

	entries := make([]Entry, 0, in.TermMonths)
	for period := 1; period <= in.TermMonths; period++ {
		interest := balance.Mul(monthlyRate)
		principal := decimal.Min(balance, payment.Sub(interest))
		balance = balance.Sub(principal)

		entries = append(entries, Entry{
			Period:           period,
			PaymentAmount:    payment.Round(OutputScale),
			InterestAmount:   interest.Round(OutputScale),
			PrincipalAmount:  principal.Round(OutputScale),
			RemainingBalance: balance.Round(OutputScale),
		})

		if balance.Sign() <= 0 {
			break
		}
	}

	return Schedule{Input: in, Entries: entries}, nil
}
