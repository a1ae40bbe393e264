// Package core provides the bill tracking domain model along with money
// and calendar helpers shared by the aggregation layers.
//
// Monetary amounts are decimal values rounded to 2 decimal places at the
// point of user input and at every computed boundary.
package core

import (
	"github.com/shopspring/decimal"
)

// RoundToCents rounds half away from zero to 2 decimal places.
func RoundToCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ValidAmount reports whether d is usable as a money value:
// non-negative and finite (decimal values are always finite).
func ValidAmount(d decimal.Decimal) bool {
	return !d.IsNegative()
}

// ParseAmount converts a user-supplied decimal string to a money value.
// The result is rounded to cents. Returns ErrInvalidAmount for malformed
// or negative input.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return RoundToCents(d), nil
}

// Total sums a sequence of amounts.
func Total(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Average returns the arithmetic mean of amounts, or zero for an empty
// sequence.
func Average(amounts []decimal.Decimal) decimal.Decimal {
	if len(amounts) == 0 {
		return decimal.Zero
	}
	return Total(amounts).Div(decimal.NewFromInt(int64(len(amounts))))
}

// Percentage returns part/total as a whole percent, rounded half away
// from zero. A zero total yields 0 rather than a division error.
func Percentage(part, total decimal.Decimal) int64 {
	if total.IsZero() {
		return 0
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
