package kernel

import (
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// moneyTolerance is the maximum difference accepted when comparing a
// client-declared total against the computed one.
var moneyTolerance = decimal.NewFromFloat(0.01)

// Money is a value object for exact monetary amounts. It wraps a decimal
// to avoid binary floating point drift in line-item totals.
//
// The zero value represents 0.00 and is valid. Money is immutable.
type Money struct {
	amount decimal.Decimal
}

// NewMoneyFromString parses a decimal amount such as "10.00".
// Negative amounts are rejected.
func NewMoneyFromString(s string) (Money, error) {
	if s == "" {
		return Money{}, errs.NewValueIsRequiredError("amount")
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", err)
	}
	if amount.IsNegative() {
		return Money{}, errs.NewValueIsInvalidError("amount must not be negative")
	}
	return Money{amount: amount}, nil
}

// MoneyFromDecimal wraps an already validated decimal amount.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{amount: d}
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// MulInt returns the amount multiplied by a whole quantity.
func (m Money) MulInt(quantity int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(quantity)))}
}

// IsEqual reports exact decimal equality.
func (m Money) IsEqual(other Money) bool {
	return m.amount.Equal(other.amount)
}

// WithinTolerance reports whether the two amounts differ by at most 0.01.
func (m Money) WithinTolerance(other Money) bool {
	return m.amount.Sub(other.amount).Abs().LessThanOrEqual(moneyTolerance)
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// Decimal returns the underlying decimal amount.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// String renders the amount with two decimal places, e.g. "25.00".
func (m Money) String() string {
	return m.amount.StringFixed(2)
}
