package amortization

import (
	"github.com/shopspring/decimal"
)

// Summarize totals a schedule's already rounded entries. An empty schedule
// yields an all-zero summary.
func Summarize(s Schedule) Summary {
	summary := Summary{
		Input:              s.Input,
		FirstPeriodPayment: decimal.Zero,
		TotalInterest:      decimal.Zero,
		TotalPayments:      decimal.Zero,
	}
	if len(s.Entries) == 0 {
		return summary
	}

	for _, e := range s.Entries {
		summary.TotalInterest = summary.TotalInterest.Add(e.InterestAmount)
		summary.TotalPayments = summary.TotalPayments.Add(e.PaymentAmount)
	}
	summary.FirstPeriodPayment = s.Entries[0].PaymentAmount.Round(OutputScale)
	summary.TotalInterest = summary.TotalInterest.Round(OutputScale)
	summary.TotalPayments = summary.TotalPayments.Round(OutputScale)
	return summary
}
