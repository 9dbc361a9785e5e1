// Package money provides an exact two-decimal USD amount type.
//
// Every operation rounds its result to the nearest cent immediately, so
// repeated arithmetic never accumulates sub-cent error. Amounts serialize
// as fixed-point strings with exactly two fractional digits, which is the
// wire format the ledger API uses.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidFormat is returned when a serialized amount does not parse or
// carries non-zero digits beyond the second decimal place.
var ErrInvalidFormat = errors.New("invalid money format")

// Money is a USD amount held to exactly two decimal places.
// The zero value is $0.00.
type Money struct {
	d decimal.Decimal
}

// New builds a Money from a decimal, rounding to the nearest cent
// (half away from zero).
func New(d decimal.Decimal) Money {
	return Money{d: d.Round(2)}
}

// FromCents builds a Money from an integer number of cents.
func FromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -2)}
}

// Zero returns $0.00.
func Zero() Money {
	return Money{}
}

// Parse parses a fixed-point decimal string such as "12.34" or "-0.50".
// Strings with non-zero digits past the second decimal place are rejected.
func Parse(s string) (Money, error) {
	if err := checkPrecision(s); err != nil {
		return Money{}, err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return New(d), nil
}

// Decimal returns the underlying cent-exact decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

// Cents returns the amount as a signed number of cents.
func (m Money) Cents() int64 {
	return m.d.Shift(2).IntPart()
}

// Add returns m + o rounded to the nearest cent.
func (m Money) Add(o Money) Money {
	return New(m.d.Add(o.d))
}

// Sub returns m - o rounded to the nearest cent.
func (m Money) Sub(o Money) Money {
	return New(m.d.Sub(o.d))
}

// Neg returns -m.
func (m Money) Neg() Money {
	return New(m.d.Neg())
}

// Mul returns m scaled by factor, rounded to the nearest cent.
func (m Money) Mul(factor decimal.Decimal) Money {
	return New(m.d.Mul(factor))
}

// Div returns m divided by divisor, rounded to the nearest cent.
func (m Money) Div(divisor decimal.Decimal) Money {
	return New(m.d.Div(divisor))
}

// Equal reports whether two amounts have the same cent value.
func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

// IsZero reports whether the amount is exactly $0.00.
func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

// String renders the amount with exactly two fractional digits.
func (m Money) String() string {
	return m.d.StringFixed(2)
}

// MarshalJSON encodes the amount as a fixed-point decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a decimal string, rejecting sub-cent precision.
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: expected decimal string, got %s", ErrInvalidFormat, data)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// checkPrecision rejects strings whose third-and-later decimal digits are
// anything other than zeros. Trailing zeros past the cent are tolerated
// because the ledger emits amounts like "12.3400".
func checkPrecision(s string) error {
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return nil
	}
	frac := s[dot+1:]
	if len(frac) <= 2 {
		return nil
	}
	for _, c := range frac[2:] {
		if c != '0' {
			return fmt.Errorf("%w: non-zero digits beyond 2 decimal places in %q", ErrInvalidFormat, s)
		}
	}
	return nil
}
