package core

import (
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// displayLocale is the locale prices are formatted for.
var displayLocale = language.MustParse("es-ES")

const (
	maxFractionDigits = 2
	// es-ES only groups thousands once the integer part has this many digits.
	minGroupingDigits = 5
	groupSeparator    = "."
	decimalSeparator  = ","
	nbsp              = "\u00a0"
)

// FormatPrice renders a value for display in the es-ES locale.
//
// Numeric values with a recognised ISO 4217 code are printed as currency,
// numeric values without a code as plain decimals with up to two fraction
// digits. A well-formed three-letter code the currency tables do not list is
// printed with two fraction digits and the upper-cased code as its symbol.
// Malformed codes, and codes with more than two minor digits, fall back to
// the decimal form followed by the raw code. Non-numeric values are returned
// as-is.
func FormatPrice(v Value, code string) string {
	n, ok := v.Number()
	if !ok {
		return v.String()
	}
	if code == "" {
		return formatDecimal(n, 0, maxFractionDigits)
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		if isCurrencyCode(code) {
			return formatDecimal(n, maxFractionDigits, maxFractionDigits) + nbsp + strings.ToUpper(code)
		}
		return formatDecimal(n, 0, maxFractionDigits) + " " + code
	}
	scale, _ := currency.Standard.Rounding(unit)
	if scale > maxFractionDigits {
		return formatDecimal(n, 0, maxFractionDigits) + " " + code
	}

	return formatDecimal(n, scale, maxFractionDigits) + nbsp + currencySymbol(unit)
}

// isCurrencyCode reports whether code has the shape of an ISO 4217 code.
func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

func currencySymbol(unit currency.Unit) string {
	sym := message.NewPrinter(displayLocale).Sprint(currency.Symbol(unit))
	if sym == "" {
		return unit.String()
	}
	return sym
}

// formatDecimal prints n with between minFrac and maxFrac fraction digits
// using es-ES separators.
func formatDecimal(n float64, minFrac, maxFrac int) string {
	s := strconv.FormatFloat(n, 'f', maxFrac, 64)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	for len(frac) > minFrac && strings.HasSuffix(frac, "0") {
		frac = frac[:len(frac)-1]
	}

	if neg && strings.Trim(intPart+frac, "0") == "" {
		neg = false
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(groupThousands(intPart))
	if frac != "" {
		b.WriteString(decimalSeparator)
		b.WriteString(frac)
	}
	return b.String()
}

func groupThousands(digits string) string {
	if len(digits) < minGroupingDigits {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(groupSeparator)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
