package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds a monetary value to cents, half away from zero.
func Round2(value float64) float64 {
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}

// Sum adds amounts in decimal space so long lists of user-entered items don't drift.
func Sum[T any](items []T, amount func(T) float64) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(amount(item)))
	}
	return total.InexactFloat64()
}

// Sub returns a - sum(bs) computed on cent-rounded operands.
func Sub(a float64, bs ...float64) float64 {
	out := decimal.NewFromFloat(a).Round(2)
	for _, b := range bs {
		out = out.Sub(decimal.NewFromFloat(b).Round(2))
	}
	return out.InexactFloat64()
}

// Format renders "DOP 1,234.56".
func Format(value float64) string {
	return "DOP " + Plain(value)
}

// Plain renders "1,234.56" without currency.
func Plain(value float64) string {
	fixed := decimal.NewFromFloat(value).StringFixed(2)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if negative {
		return "-" + out
	}
	return out
}

var (
	currencyPrefix = regexp.MustCompile(`(?i)^(RD\$|DOP)\s*`)
	dotThousands   = regexp.MustCompile(`^-?\d{1,3}\.\d{3}$`)
)

// ParseAmount reads bank-statement style amounts: "RD$ 1.234,56", "1,234.56",
// "1.500" (thousands) or "12,5" (decimal comma). A lone "-" or empty cell is not an amount.
func ParseAmount(raw string) (float64, bool) {
	value := strings.TrimSpace(raw)
	if value == "" || value == "-" {
		return 0, false
	}
	value = currencyPrefix.ReplaceAllString(value, "")
	value = strings.ReplaceAll(value, " ", "")

	hasDot := strings.Contains(value, ".")
	hasComma := strings.Contains(value, ",")
	switch {
	case hasDot && hasComma:
		if strings.LastIndex(value, ",") > strings.LastIndex(value, ".") {
			value = strings.ReplaceAll(value, ".", "")
			value = strings.Replace(value, ",", ".", 1)
		} else {
			value = strings.ReplaceAll(value, ",", "")
		}
	case hasComma:
		if strings.Count(value, ",") > 1 {
			value = strings.ReplaceAll(value, ",", "")
		} else {
			value = strings.Replace(value, ",", ".", 1)
		}
	case hasDot:
		if strings.Count(value, ".") > 1 || dotThousands.MatchString(value) {
			value = strings.ReplaceAll(value, ".", "")
		}
	}

	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return 0, false
	}
	return parsed.InexactFloat64(), true
}
