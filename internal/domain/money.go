package domain

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Money is an amount in integer cents.
type Money int64

// Dollars builds a Money from whole dollars and cents.
func Dollars(dollars, cents int64) Money {
	if dollars < 0 {
		return Money(dollars*100 - cents)
	}
	return Money(dollars*100 + cents)
}

// MulRatio returns m * num / den rounded half to even.
func (m Money) MulRatio(num, den int64) Money {
	return Money(DivRoundHalfEven(int64(m)*num, den))
}

// MulBasisPoints scales m by bp/10000 (10000 bp = 1.0).
func (m Money) MulBasisPoints(bp int64) Money {
	return m.MulRatio(bp, 10000)
}

// String renders m with exactly two decimals, e.g. "1234.50".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	v, err := ParseMoney(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMoney parses a decimal amount with at most two fractional digits.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse money: empty amount")
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, hasFrac := strings.Cut(s, ".")
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, fmt.Errorf("parse money %q: expected at most two decimals", s)
	}
	if !allDigits(whole) || !allDigits(frac) || whole == "" {
		return 0, fmt.Errorf("parse money %q: expected digits", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", s, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", s, err)
	}

	v := Money(w*100 + f)
	if neg {
		v = -v
	}
	return v, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// DivRoundHalfEven divides n by d (d != 0) rounding ties to the even quotient.
func DivRoundHalfEven(n, d int64) int64 {
	if d < 0 {
		n, d = -n, -d
	}
	q, r := n/d, n%d
	if r == 0 {
		return q
	}
	if r < 0 {
		r = -r
	}
	twice := 2 * r
	if twice > d || (twice == d && q%2 != 0) {
		if n < 0 {
			q--
		} else {
			q++
		}
	}
	return q
}
