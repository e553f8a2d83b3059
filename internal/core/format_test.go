package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		n       float64
		minFrac int
		want    string
	}{
		{0, 0, "0"},
		{5, 0, "5"},
		{1234.5, 0, "1234,5"},
		{1234.5, 2, "1234,50"},
		{12345.678, 0, "12.345,68"},
		{1234567.891, 0, "1.234.567,89"},
		{999999, 0, "999.999"},
		{-12345.5, 2, "-12.345,50"},
		{-0.001, 0, "0"},
		{0.1, 0, "0,1"},
		{100, 2, "100,00"},
	}

	for _, tt := range tests {
		got := formatDecimal(tt.n, tt.minFrac, maxFractionDigits)
		assert.Equal(t, tt.want, got, "formatDecimal(%v, %d)", tt.n, tt.minFrac)
	}
}

func TestFormatPrice(t *testing.T) {
	t.Run("no currency is plain decimal", func(t *testing.T) {
		assert.Equal(t, "1234,5", FormatPrice(NumberValue(1234.5), ""))
		assert.Equal(t, "12.345,68", FormatPrice(NumberValue(12345.678), ""))
	})

	t.Run("known currency uses minor digits and symbol", func(t *testing.T) {
		got := FormatPrice(NumberValue(1234.5), "EUR")
		assert.True(t, strings.HasPrefix(got, "1234,50\u00a0"), "got %q", got)
		assert.Greater(t, len(got), len("1234,50\u00a0"))

		got = FormatPrice(NumberValue(12345.678), "USD")
		assert.True(t, strings.HasPrefix(got, "12.345,68\u00a0"), "got %q", got)
	})

	t.Run("zero-digit currency keeps up to two fraction digits", func(t *testing.T) {
		got := FormatPrice(NumberValue(1500), "JPY")
		assert.True(t, strings.HasPrefix(got, "1500\u00a0"), "got %q", got)
	})

	t.Run("unlisted three-letter code formats as currency", func(t *testing.T) {
		assert.Equal(t, "1234,50\u00a0ABC", FormatPrice(NumberValue(1234.5), "ABC"))
		assert.Equal(t, "12.345,00\u00a0QQQ", FormatPrice(NumberValue(12345), "qqq"))
	})

	t.Run("malformed code falls back to decimal and code", func(t *testing.T) {
		assert.Equal(t, "10,5 ABCD", FormatPrice(NumberValue(10.5), "ABCD"))
		assert.Equal(t, "3 $", FormatPrice(NumberValue(3), "$"))
		assert.Equal(t, "7 A1C", FormatPrice(NumberValue(7), "A1C"))
	})

	t.Run("more than two minor digits falls back", func(t *testing.T) {
		assert.Equal(t, "1,5 BHD", FormatPrice(NumberValue(1.5), "BHD"))
	})

	t.Run("non-numeric values are not decorated", func(t *testing.T) {
		assert.Equal(t, "consultar", FormatPrice(TextValue("consultar"), "EUR"))
		assert.Equal(t, "", FormatPrice(Value{}, "EUR"))
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "ñá", Truncate("ñáé", 2))
	assert.Equal(t, "", Truncate("abc", 0))

	long := strings.Repeat("é", ContextDisplayLimit+40)
	assert.Equal(t, ContextDisplayLimit, len([]rune(Truncate(long, ContextDisplayLimit))))
}
