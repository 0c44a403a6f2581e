package exporter

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{name: "zero value", input: 0.0, expected: "0"},
		{name: "positive integer", input: 123.0, expected: "123"},
		{name: "negative integer", input: -456.0, expected: "-456"},
		{name: "trailing zeros dropped", input: 123.456000, expected: "123.456"},
		{name: "small decimal", input: 0.001234, expected: "0.001234"},
		{name: "large value without exponent", input: 1.5e12, expected: "1500000000000"},
		{name: "tiny value without exponent", input: 1e-7, expected: "0.0000001"},
		{name: "binary fraction kept whole", input: 0.30000000000000004, expected: "0.30000000000000004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input))
		})
	}
}

func TestFormatFloat_RoundTrip(t *testing.T) {
	values := []float64{math.Pi, -math.E, 1.0 / 3.0, 250, -100900, math.SmallestNonzeroFloat64, math.MaxFloat64 / 3}
	for _, v := range values {
		got, err := strconv.ParseFloat(formatFloat(v), 64)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestFormatOptional(t *testing.T) {
	assert.Equal(t, "", formatOptional(nil))
	assert.Equal(t, "12.5", formatOptional(ptr(12.5)))

	v, err := parseOptional("")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = parseOptional(" 12.5 ")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 12.5, *v)

	_, err = parseOptional("abc")
	assert.Error(t, err)
}

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "2023", formatInt(2023))
	assert.Equal(t, "-1", formatInt(-1))
}

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		places   int
		expected float64
	}{
		{name: "two places", value: 123.456, places: 2, expected: 123.46},
		{name: "half away from zero", value: 0.125, places: 2, expected: 0.13},
		{name: "negative half away from zero", value: -2.5, places: 0, expected: -3},
		{name: "positive half", value: 2.5, places: 0, expected: 3},
		{name: "four places", value: 0.987654, places: 4, expected: 0.9877},
		{name: "already rounded", value: 250, places: 2, expected: 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Round(tt.value, tt.places), 1e-12)
		})
	}

	assert.True(t, math.IsNaN(Round(math.NaN(), 2)))
	assert.True(t, math.IsInf(Round(math.Inf(1), 2), 1))
}
