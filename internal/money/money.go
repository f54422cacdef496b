// Package money provides exact decimal arithmetic for monetary values.
//
// All amounts are shopspring decimals with two fractional digits (the
// smallest currency unit). Native floats are never used: repeated
// percentage and split math on binary floats drifts at the cent level.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every amount carries.
const Scale = 2

var (
	// ErrInvalidAmount indicates a malformed or out-of-range monetary value.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Zero is the zero amount at the currency scale.
var Zero = decimal.New(0, -Scale)

// Parse converts a decimal string into an amount at the currency scale.
// Digits beyond the scale are rounded half-up.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d.Round(Scale), nil
}

// ParseNonNegative is Parse with an additional sign check.
func ParseNonNegative(s string) (decimal.Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q must not be negative", ErrInvalidAmount, s)
	}
	return d, nil
}

// Cents returns the amount as an integer number of smallest currency units.
func Cents(d decimal.Decimal) int64 {
	return d.Round(Scale).Shift(Scale).IntPart()
}

// FromCents builds an amount from an integer number of smallest currency units.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -Scale)
}

// Sum adds a series of amounts exactly.
func Sum(ds ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range ds {
		total = total.Add(d)
	}
	return total
}

// Equal reports whether two amounts are exactly equal at the currency scale.
func Equal(a, b decimal.Decimal) bool {
	return a.Round(Scale).Equal(b.Round(Scale))
}

// Format renders an amount as Indonesian Rupiah, e.g. "Rp 25.000".
// Thousands are separated by dots; the fractional part is appended as
// ",cc" only when nonzero. The rendering is deterministic for a given
// amount, which the share summary relies on.
func Format(d decimal.Decimal) string {
	cents := Cents(d)
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}

	out := "Rp " + b.String()
	if frac != 0 {
		out += fmt.Sprintf(",%02d", frac)
	}
	if neg {
		out = "-" + out
	}
	return out
}
