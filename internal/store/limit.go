// ABOUTME: Limit type for spec/control limit values with exact 3-decimal semantics
// ABOUTME: Parses decimal literals, rounds half-up, renders with fixed 3 fractional digits

package store

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Limit is a parameter limit value stored in thousandths. Keeping the value
// as a scaled integer makes the 3-decimal rounding exact and the ordering
// comparisons free of float noise.
type Limit int64

// ErrNotANumber is returned when a value cannot be parsed as a finite number
// or its magnitude does not fit the scaled representation.
var ErrNotANumber = errors.New("not a finite number")

// maxWholePart is the largest whole-number magnitude that still fits after
// scaling to thousandths, leaving room for the fractional digits and the
// rounding carry.
const maxWholePart = (math.MaxInt64 - 1000) / 1000

// ParseLimit parses a decimal literal (as it appears in JSON or CSV) and
// rounds it to three fractional digits, half away from zero. Parsing the
// literal directly means "100.0005" rounds to 100.001 even though the nearest
// float64 sits just below the midpoint.
func ParseLimit(s string) (Limit, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrNotANumber
	}

	// Exponent forms are rare in hand-entered limits; let the float path
	// handle them rather than growing the decimal parser.
	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, ErrNotANumber
		}
		return LimitFromFloat(f)
	}

	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return 0, ErrNotANumber
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return 0, ErrNotANumber
	}

	var milli int64
	if intPart != "" {
		n, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil || n > maxWholePart {
			return 0, ErrNotANumber
		}
		milli = n * 1000
	}

	// First three fractional digits contribute directly; the fourth decides
	// the half-up rounding. Digits beyond the fourth only matter when the
	// fourth is exactly 5 and something nonzero follows, but half-up rounds
	// up on an exact 5 anyway, so they can be ignored.
	for i := 0; i < 3; i++ {
		var d int64
		if i < len(fracPart) {
			d = int64(fracPart[i] - '0')
		}
		milli += d * pow10(2-i)
	}
	if len(fracPart) > 3 && fracPart[3] >= '5' {
		milli++
	}

	if neg {
		milli = -milli
	}
	return Limit(milli), nil
}

// LimitFromFloat converts a float64 to a Limit, rounding half away from zero.
// Returns ErrNotANumber for NaN or infinities.
func LimitFromFloat(f float64) (Limit, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNotANumber
	}
	scaled := math.Round(f * 1000)
	// Strict bounds: float64(MaxInt64) is 2^63 exactly, so >= catches the
	// values whose int64 conversion would overflow
	if scaled >= math.MaxInt64 || scaled <= math.MinInt64 {
		return 0, ErrNotANumber
	}
	return Limit(scaled), nil
}

// LimitFromInt converts a whole number to a Limit, rejecting magnitudes that
// overflow the scaled representation.
func LimitFromInt(n int64) (Limit, error) {
	if n > maxWholePart || n < -maxWholePart {
		return 0, ErrNotANumber
	}
	return Limit(n * 1000), nil
}

// Float64 returns the limit as a float64.
func (l Limit) Float64() float64 {
	return float64(l) / 1000
}

// String renders the limit with exactly three fractional digits, e.g. "100.000".
func (l Limit) String() string {
	milli := int64(l)
	sign := ""
	if milli < 0 {
		sign = "-"
		milli = -milli
	}
	return fmt.Sprintf("%s%d.%03d", sign, milli/1000, milli%1000)
}

// MarshalJSON renders the limit as a JSON number with three fractional digits.
func (l Limit) MarshalJSON() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalJSON parses a JSON number (or numeric string) into a Limit.
func (l *Limit) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseLimit(s)
	if err != nil {
		return fmt.Errorf("parsing limit %q: %w", s, err)
	}
	*l = parsed
	return nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func pow10(n int) int64 {
	switch n {
	case 0:
		return 1
	case 1:
		return 10
	default:
		return 100
	}
}
