package amortization_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/amortization-engine/amortization"
)

func TestSummarize_ShortTerm(t *testing.T) {
	// GIVEN: 20000 at 7.5% over 3 months, zero balloon
	in := withBalloon(loan("20000", "0", "7.5", 3), "0")
	s, err := amortization.BuildSchedule(in)
	require.NoError(t, err)

	// WHEN
	summary := amortization.Summarize(s)

	// THEN
	assert.Equal(t, "6750.17", summary.FirstPeriodPayment.StringFixed(2))
	assert.Equal(t, "250.52", summary.TotalInterest.StringFixed(2))
	assert.Equal(t, "20250.51", summary.TotalPayments.StringFixed(2))
	assert.Equal(t, in, summary.Input)
}

func TestSummarize_ReferenceSchedules(t *testing.T) {
	tests := []struct {
		name     string
		input    amortization.LoanInput
		interest string
		payments string
	}{
		{"no balloon", loan("20000", "0", "7.5", 12), "821.79", "20821.80"},
		{"balloon", withBalloon(loan("20000", "0", "7.5", 12), "10000"), "1160.88", "11160.84"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := amortization.BuildSchedule(tt.input)
			require.NoError(t, err)

			summary := amortization.Summarize(s)

			assert.Equal(t, tt.interest, summary.TotalInterest.StringFixed(2))
			assert.Equal(t, tt.payments, summary.TotalPayments.StringFixed(2))
		})
	}
}

func TestSummarize_Empty(t *testing.T) {
	in := loan("20000", "0", "7.5", 12)

	summary := amortization.Summarize(amortization.Schedule{Input: in})

	assert.True(t, summary.FirstPeriodPayment.IsZero())
	assert.True(t, summary.TotalInterest.IsZero())
	assert.True(t, summary.TotalPayments.IsZero())
	assert.Equal(t, in, summary.Input)
}

func TestSummarize_IsAdditive(t *testing.T) {
	s, err := amortization.BuildSchedule(loan("100000", "0", "5", 24))
	require.NoError(t, err)

	summary := amortization.Summarize(s)

	interest, payments := decimal.Zero, decimal.Zero
	for _, e := range s.Entries {
		interest = interest.Add(e.InterestAmount)
		payments = payments.Add(e.PaymentAmount)
	}
	assert.True(t, interest.Equal(summary.TotalInterest))
	assert.True(t, payments.Equal(summary.TotalPayments))
	assert.True(t, s.Entries[0].PaymentAmount.Equal(summary.FirstPeriodPayment))
	assert.Equal(t, "5295.62", summary.TotalInterest.StringFixed(2))
	assert.Equal(t, "105295.68", summary.TotalPayments.StringFixed(2))
}
