package currency

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "$.00", expected: "0"},
		{input: "", expected: "0"},
		{input: ".", expected: "0"},
		{input: "$0.00", expected: "0"},
		{input: "-$59,026.66", expected: "-59026.66"},
		{input: "-.50", expected: "-0.5"},
		{input: ".50", expected: "0.5"},
		{input: "$1,234,567.89", expected: "1234567.89"},
		{input: " $12.30 ", expected: "12.3"},
	}

	for _, test := range testCases {
		value, err := Parse(test.input)
		require.NoError(t, err, "input: %q", test.input)
		expected, err := decimal.NewFromString(test.expected)
		require.NoError(t, err)
		require.True(
			t, value.Equal(expected),
			"input: %q parsed: %s expected: %s",
			test.input, value, expected,
		)
	}
}

func TestParseInvalid(t *testing.T) {
	for _, input := range []string{"N/A", "$12..50", "abc", "$-"} {
		_, err := Parse(input)
		require.Error(t, err, "input: %q", input)

		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
		require.Equal(t, input, formatErr.Text)
	}
}

func TestFormat(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "0", expected: "$0.00"},
		{input: "-59026.66", expected: "-$59,026.66"},
		{input: "-0.5", expected: "-$0.50"},
		{input: "1234567.89", expected: "$1,234,567.89"},
		{input: "1000", expected: "$1,000.00"},
		{input: "999.9", expected: "$999.90"},
	}

	for _, test := range testCases {
		value, err := decimal.NewFromString(test.input)
		require.NoError(t, err)
		require.Equal(t, test.expected, Format(value))
	}
}

func TestRoundTrip(t *testing.T) {
	rndm := rand.New(rand.NewSource(5))

	for i := 0; i < 10000; i++ {
		cents := rndm.Int63n(2_000_000_000_00) - 1_000_000_000_00
		value := decimal.New(cents, -2)

		parsed, err := Parse(Format(value))
		require.NoError(t, err)
		require.True(
			t, parsed.Equal(value),
			"value: %s formatted: %s parsed: %s",
			value, Format(value), parsed,
		)
	}
}
