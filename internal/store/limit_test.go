// ABOUTME: Tests for the Limit type covering parsing, rounding, and rendering
// ABOUTME: Exercises half-up midpoints, negatives, and malformed literals

package store

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"integer", "100", "100.000"},
		{"three decimals", "12.345", "12.345"},
		{"rounds down below midpoint", "100.00049", "100.000"},
		{"rounds up at midpoint", "100.0005", "100.001"},
		{"rounds up above midpoint", "100.00051", "100.001"},
		{"negative midpoint rounds away from zero", "-0.0005", "-0.001"},
		{"negative value", "-42.1", "-42.100"},
		{"leading plus", "+3.14159", "3.142"},
		{"bare fraction", ".5", "0.500"},
		{"trailing dot", "7.", "7.000"},
		{"whitespace trimmed", " 1.5 ", "1.500"},
		{"exponent form", "1e3", "1000.000"},
		{"zero", "0", "0.000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLimit(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseLimitRejectsNonNumbers(t *testing.T) {
	for _, input := range []string{"", "abc", "1.2.3", "12a", "--5", "NaN", "Inf", "-"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseLimit(input)
			assert.ErrorIs(t, err, ErrNotANumber)
		})
	}
}

func TestParseLimitRejectsOverflowingMagnitudes(t *testing.T) {
	// Largest whole part that survives scaling to thousandths
	l, err := ParseLimit("9223372036854774")
	require.NoError(t, err)
	assert.Equal(t, "9223372036854774.000", l.String())

	// 1e16 fits int64 but wraps when scaled; the rest sit at or past the
	// scaling boundary
	for _, input := range []string{
		"10000000000000000",
		"-10000000000000000",
		"9223372036854775",
		"9223372036854775807",
		"99999999999999999999",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseLimit(input)
			assert.ErrorIs(t, err, ErrNotANumber)
		})
	}
}

func TestLimitFromIntBounds(t *testing.T) {
	l, err := LimitFromInt(500)
	require.NoError(t, err)
	assert.Equal(t, "500.000", l.String())

	_, err = LimitFromInt(1e16)
	assert.ErrorIs(t, err, ErrNotANumber)

	_, err = LimitFromInt(-1e16)
	assert.ErrorIs(t, err, ErrNotANumber)
}

func TestLimitFromFloat(t *testing.T) {
	l, err := LimitFromFloat(90.0)
	require.NoError(t, err)
	assert.Equal(t, "90.000", l.String())

	_, err = LimitFromFloat(math.NaN())
	assert.ErrorIs(t, err, ErrNotANumber)

	_, err = LimitFromFloat(math.Inf(1))
	assert.ErrorIs(t, err, ErrNotANumber)
}

func TestLimitJSONRoundTrip(t *testing.T) {
	l, err := ParseLimit("100.0005")
	require.NoError(t, err)

	data, err := json.Marshal(l)
	require.NoError(t, err)
	assert.Equal(t, "100.001", string(data))

	var back Limit
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, l, back)
}

func TestLimitUnmarshalRejectsGarbage(t *testing.T) {
	var l Limit
	assert.Error(t, json.Unmarshal([]byte(`"not a number"`), &l))
}
