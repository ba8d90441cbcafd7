// Package money implements fixed-point monetary arithmetic.
//
// Amounts are stored as an integer count of minor units (cents), never as a
// binary float, so repeated addition and subtraction across a long expense
// history stays exact. Parsing and formatting go through decimal strings with
// two fractional digits; that is also the wire representation.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by a Money value.
const Scale = 2

// ErrInvalidFormat is returned when a string cannot be parsed as an amount
// with at most Scale fractional digits.
var ErrInvalidFormat = errors.New("invalid money format")

// Money is an exact currency amount in minor units.
// The zero value is zero money and ready to use.
type Money struct {
	Cents int64
}

// Zero is the zero amount.
var Zero = Money{}

// FromCents builds a Money from a raw minor-unit count.
func FromCents(cents int64) Money {
	return Money{Cents: cents}
}

// Parse converts a decimal string such as "12.34" into Money.
// It accepts an optional leading sign and at most two fractional digits;
// anything that would lose precision is rejected rather than rounded.
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("%w: empty string", ErrInvalidFormat)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	cents := d.Shift(Scale)
	if !cents.IsInteger() {
		return Zero, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidFormat, s, Scale)
	}
	if !cents.BigInt().IsInt64() {
		return Zero, fmt.Errorf("%w: %q out of range", ErrInvalidFormat, s)
	}
	return Money{Cents: cents.IntPart()}, nil
}

// MustParse is Parse for tests and constants; it panics on error.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

// Abs returns the magnitude of m.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

// MulRatio returns m * num / den, rounded half away from zero on the last
// minor unit. den must be non-zero.
func (m Money) MulRatio(num, den int64) (Money, error) {
	if den == 0 {
		return Zero, errors.New("money: zero denominator")
	}
	if den < 0 {
		num, den = -num, -den
	}
	p := m.Cents * num
	q := p / den
	r := p % den
	if r != 0 {
		if 2*r >= den {
			q++
		} else if -2*r >= den {
			q--
		}
	}
	return Money{Cents: q}, nil
}

// SplitEven divides m into n parts that sum exactly to m. Integer division
// leaves a remainder of at most n-1 minor units; those units are handed out
// one at a time to the first shares, so the distribution is deterministic in
// the order the caller lists recipients.
func (m Money) SplitEven(n int) ([]Money, error) {
	if n <= 0 {
		return nil, fmt.Errorf("money: cannot split into %d parts", n)
	}
	base := m.Cents / int64(n)
	rem := m.Cents % int64(n)
	step := int64(1)
	if rem < 0 {
		rem, step = -rem, -1
	}
	parts := make([]Money, n)
	for i := range parts {
		parts[i] = Money{Cents: base}
		if int64(i) < rem {
			parts[i].Cents += step
		}
	}
	return parts, nil
}

// Cmp compares m and o: -1 if m < o, 0 if equal, +1 if m > o.
func (m Money) Cmp(o Money) int {
	switch {
	case m.Cents < o.Cents:
		return -1
	case m.Cents > o.Cents:
		return 1
	}
	return 0
}

// Min returns the smaller of m and o.
func Min(m, o Money) Money {
	if m.Cents < o.Cents {
		return m
	}
	return o
}

// IsZero reports whether m is exactly zero.
func (m Money) IsZero() bool { return m.Cents == 0 }

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool { return m.Cents > 0 }

// IsNegative reports whether m < 0.
func (m Money) IsNegative() bool { return m.Cents < 0 }

// String renders m as a decimal string with exactly Scale fractional digits,
// e.g. "12.30" or "-0.05".
func (m Money) String() string {
	return decimal.New(m.Cents, -Scale).StringFixed(Scale)
}

// MarshalJSON encodes m as a quoted decimal string; monetary values never
// cross a boundary as binary floats.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON decodes a quoted decimal string into m. Bare JSON numbers
// are rejected: a client sending binary floats has already lost exactness.
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: expected a decimal string, got %s", ErrInvalidFormat, data)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
