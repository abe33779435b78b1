/*
Package factory provides JSON to Go loan conversion.

PURPOSE:
  Converts JSON loan definitions into amortization.LoanInput. The API
  request body, demo scenarios and any stored loan fixtures all share this
  one schema, so presence rules are enforced in one place.

JSON SCHEMA:
  {
    "loan_amount": 20000,
    "deposit_amount": 0,
    "interest_rate": 7.5,
    "balloon_payment": 10000,
    "term_months": 12
  }

  Numbers may also be sent as strings ("7.5") to avoid any client-side
  float formatting. deposit_amount and balloon_payment are optional.

VALIDATION:
  Checked with go-playground/validator and reported as
  amortization.ErrInvalidInput naming every offending field:
  - loan_amount and interest_rate are required (struct tags)
  - every decimal must be non-negative
  - every decimal must have at most MaxIntegerDigits integer digits and
    MaxFractionDigits fractional digits, so a tiny body cannot expand
    into a huge number
  Term checks stay in the engine (amortization.Validate).

USAGE:
  f := factory.NewLoanFactory()
  input, err := f.ParseLoan(`{"loan_amount": 20000, ...}`)
  schedule, err := amortization.BuildSchedule(input)

SEE ALSO:
  - amortization/types.go: LoanInput
  - api/scenarios.go: Demo loans defined as JSON
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/warp/amortization-engine/amortization"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// LoanJSON is the JSON representation of a loan. Pointers keep an absent
// field distinguishable from an explicit zero.
type LoanJSON struct {
	LoanAmount     *decimal.Decimal `json:"loan_amount" validate:"required"`
	DepositAmount  *decimal.Decimal `json:"deposit_amount,omitempty"`
	InterestRate   *decimal.Decimal `json:"interest_rate" validate:"required"`
	BalloonPayment *decimal.Decimal `json:"balloon_payment,omitempty"`
	TermMonths     int              `json:"term_months"`
}

// Bounds on every decimal in a loan definition.
const (
	MaxIntegerDigits  = 15
	MaxFractionDigits = 10
)

// Custom validation tags reported by validateLoan.
const (
	tagNonNegative = "nonnegative"
	tagRange       = "range"
)

// =============================================================================
// FACTORY
// =============================================================================

// LoanFactory converts loan JSON into engine input.
type LoanFactory struct {
	validate *validator.Validate
}

// NewLoanFactory creates a factory whose validation errors use JSON field
// names.
func NewLoanFactory() *LoanFactory {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateLoan, LoanJSON{})
	return &LoanFactory{validate: v}
}

// ParseLoan decodes and validates a JSON loan definition.
func (f *LoanFactory) ParseLoan(loanJSON string) (amortization.LoanInput, error) {
	var l LoanJSON
	if err := json.Unmarshal([]byte(loanJSON), &l); err != nil {
		return amortization.LoanInput{}, fmt.Errorf("failed to parse loan JSON: %w", err)
	}
	return f.Build(l)
}

// Build validates l and converts it.
func (f *LoanFactory) Build(l LoanJSON) (amortization.LoanInput, error) {
	if err := f.validate.Struct(l); err != nil {
		return amortization.LoanInput{}, validationError(err)
	}
	return l.ToInput(), nil
}

// ToInput converts without validation. Absent optional fields become zero
// deposit and no balloon.
func (l LoanJSON) ToInput() amortization.LoanInput {
	in := amortization.LoanInput{
		LoanAmount:     nullable(l.LoanAmount),
		DepositAmount:  decimal.Zero,
		InterestRate:   nullable(l.InterestRate),
		BalloonPayment: nullable(l.BalloonPayment),
		TermMonths:     l.TermMonths,
	}
	if l.DepositAmount != nil {
		in.DepositAmount = *l.DepositAmount
	}
	return in
}

// FromInput is the inverse of ToInput.
func FromInput(in amortization.LoanInput) LoanJSON {
	deposit := in.DepositAmount
	return LoanJSON{
		LoanAmount:     pointer(in.LoanAmount),
		DepositAmount:  &deposit,
		InterestRate:   pointer(in.InterestRate),
		BalloonPayment: pointer(in.BalloonPayment),
		TermMonths:     in.TermMonths,
	}
}

// validateLoan checks sign and size of every decimal that is present.
func validateLoan(sl validator.StructLevel) {
	l := sl.Current().Interface().(LoanJSON)

	fields := []struct {
		value     *decimal.Decimal
		name      string
		fieldName string
	}{
		{l.LoanAmount, "loan_amount", "LoanAmount"},
		{l.DepositAmount, "deposit_amount", "DepositAmount"},
		{l.InterestRate, "interest_rate", "InterestRate"},
		{l.BalloonPayment, "balloon_payment", "BalloonPayment"},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		switch {
		case !withinBounds(*f.value):
			sl.ReportError(f.value, f.name, f.fieldName, tagRange, "")
		case f.value.Sign() < 0:
			sl.ReportError(f.value, f.name, f.fieldName, tagNonNegative, "")
		}
	}
}

// withinBounds checks digit counts without rendering the number.
func withinBounds(d decimal.Decimal) bool {
	exp := int(d.Exponent())
	if exp > MaxIntegerDigits || exp < -MaxFractionDigits {
		return false
	}
	return d.NumDigits()+exp <= MaxIntegerDigits
}

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func pointer(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", amortization.ErrInvalidInput, err)
	}

	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			messages = append(messages, e.Field()+" is required")
		case tagNonNegative:
			messages = append(messages, e.Field()+" must not be negative")
		case tagRange:
			messages = append(messages, fmt.Sprintf("%s must have at most %d integer and %d fractional digits",
				e.Field(), MaxIntegerDigits, MaxFractionDigits))
		default:
			messages = append(messages, e.Field()+" failed "+e.Tag())
		}
	}
	return fmt.Errorf("%w: %s", amortization.ErrInvalidInput, strings.Join(messages, "; "))
}
