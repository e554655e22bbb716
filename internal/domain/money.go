package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is an amount of minor currency units (cents).
// The zero value is 0.00.
type Money struct {
	cents int64
}

// Zero is the zero amount.
var Zero = Money{}

// MoneyFrom creates a Money value from a number of cents.
func MoneyFrom(cents int64) Money {
	return Money{cents: cents}
}

// Cents returns the amount in minor units.
func (m Money) Cents() int64 {
	return m.cents
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

// Subtract returns m - other.
func (m Money) Subtract(other Money) Money {
	return Money{cents: m.cents - other.cents}
}

// Percentage returns p percent of m, rounded half away from zero.
func (m Money) Percentage(p int64) Money {
	return m.Scale(p, 100)
}

// Scale returns m * num / den rounded half away from zero to whole cents.
// den must be positive.
func (m Money) Scale(num, den int64) Money {
	return Money{cents: divRound(m.cents*num, den)}
}

// IsZero reports whether m is 0.00.
func (m Money) IsZero() bool {
	return m.cents == 0
}

// String renders the amount with two decimal places, e.g. "29.00".
func (m Money) String() string {
	sign := ""
	cents := m.cents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MarshalJSON encodes the amount as a decimal string so clients never see a float.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// UnmarshalJSON accepts the decimal string produced by MarshalJSON.
func (m *Money) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("%w: money must be a quoted decimal", ErrInvalidInput)
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMoney parses an amount such as "29", "29.5" or "-29.00".
// More than two decimal places is an error.
func ParseMoney(s string) (Money, error) {
	invalid := fmt.Errorf("%w: malformed amount %q", ErrInvalidInput, s)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" || (hasFrac && (frac == "" || len(frac) > 2)) {
		return Money{}, invalid
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseUint(whole, 10, 62)
	if err != nil {
		return Money{}, invalid
	}
	cents, err := strconv.ParseUint(frac, 10, 8)
	if err != nil {
		return Money{}, invalid
	}
	if units > (math.MaxInt64-cents)/100 {
		return Money{}, invalid
	}

	total := int64(units)*100 + int64(cents)
	if neg {
		total = -total
	}
	return Money{cents: total}, nil
}

// divRound divides n by d (d > 0) rounding half away from zero.
func divRound(n, d int64) int64 {
	q, r := n/d, n%d
	switch {
	case r*2 >= d:
		q++
	case r*2 <= -d:
		q--
	}
	return q
}
