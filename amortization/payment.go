package amortization

import (
	"github.com/shopspring/decimal"
)

// Rounding points. Rates are cut to 5 digits before any other use, the
// periodic payment is carried at 15 digits, and emitted values at 2.
const (
	RateScale    int32 = 5
	PaymentScale int32 = 15
	OutputScale  int32 = 2

	monthsPerYear = 12
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(monthsPerYear)
)

// Validate checks the fields the calculation cannot proceed without.
func Validate(in LoanInput) error {
	if !in.LoanAmount.Valid {
		return &InvalidInputError{Field: "loan_amount", Reason: "is required"}
	}
	if !in.InterestRate.Valid {
		return &InvalidInputError{Field: "interest_rate", Reason: "is required"}
	}
	if in.TermMonths <= 0 {
		return &InvalidInputError{Field: "term_months", Reason: "must be a positive integer"}
	}
	return nil
}

// ComputeRates converts an annual percentage into yearly and monthly
// decimal rates, each rounded half-up to RateScale digits. The monthly rate
// is derived from the already rounded yearly rate.
func ComputeRates(annualPercent decimal.Decimal) (yearly, monthly decimal.Decimal) {
	yearly = annualPercent.DivRound(hundred, RateScale)
	monthly = yearly.DivRound(twelve, RateScale)
	return yearly, monthly
}

// MonthlyPayment returns the constant periodic payment, rounded half-up to
// PaymentScale digits. A balloon that is absent or zero selects the plain
// annuity formula. When a rate makes the annuity denominator zero (a zero
// rate, or a negative one that collapses (1+r)^n to 0 or 1) the financed
// amount is repaid straight-line instead.
//
// termMonths must be positive; zero is returned otherwise.
func MonthlyPayment(principal, monthlyRate decimal.Decimal, termMonths int, balloon decimal.NullDecimal) decimal.Decimal {
	if termMonths <= 0 {
		return decimal.Zero
	}
	hasBalloon := balloon.Valid && !balloon.Decimal.IsZero()
	one := decimal.NewFromInt(1)

	if monthlyRate.IsZero() {
		return straightLine(principal, balloon, hasBalloon, termMonths)
	}

	factor := compound(monthlyRate, termMonths)
	if !hasBalloon {
		denominator := factor.Sub(one)
		if denominator.IsZero() {
			return straightLine(principal, balloon, hasBalloon, termMonths)
		}
		return principal.Mul(monthlyRate).Mul(factor).DivRound(denominator, PaymentScale)
	}

	if factor.IsZero() {
		return straightLine(principal, balloon, hasBalloon, termMonths)
	}
	adjusted := principal.Sub(balloon.Decimal.DivRound(factor, PaymentScale))
	discount := one.Sub(one.DivRound(factor, PaymentScale))
	if discount.IsZero() {
		return straightLine(principal, balloon, hasBalloon, termMonths)
	}
	return adjusted.Mul(monthlyRate).DivRound(discount, PaymentScale)
}

func straightLine(principal decimal.Decimal, balloon decimal.NullDecimal, hasBalloon bool, termMonths int) decimal.Decimal {
	financed := principal
	if hasBalloon {
		financed = financed.Sub(balloon.Decimal)
	}
	return financed.DivRound(decimal.NewFromInt(int64(termMonths)), PaymentScale)
}

// compound returns (1+rate)^n exactly.
func compound(rate decimal.Decimal, n int) decimal.Decimal {
	base := rate.Add(decimal.NewFromInt(1))
	result := decimal.NewFromInt(1)
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return result
}
