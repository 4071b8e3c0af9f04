// Package calc contains the small numeric and formatting helpers shared by
// the services and the CLI.
package calc

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// SafeDivide returns numerator / denominator, or fallback when the
// denominator is zero.
//
// Example:
//
//	SafeDivide(5, 0, 0.0) // returns 0.0
//	SafeDivide(6, 3, 0.0) // returns 2.0
func SafeDivide(numerator, denominator, fallback float64) float64 {
	if denominator == 0 {
		return fallback
	}
	return numerator / denominator
}

// SafeDivideDecimal is SafeDivide for decimal values. The quotient keeps
// decimal.DivisionPrecision digits.
func SafeDivideDecimal(numerator, denominator, fallback decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return fallback
	}
	return numerator.Div(denominator)
}

// PercentageChange returns (newValue - oldValue) / oldValue as a ratio, or
// 0 when oldValue is zero.
func PercentageChange(oldValue, newValue float64) float64 {
	return SafeDivide(newValue-oldValue, oldValue, 0)
}

// Round rounds value to the given number of decimals, half away from zero.
//
// Example:
//
//	Round(0.66666, 3) // returns 0.667
func Round(value float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(value*p) / p
}

// FormatCurrency renders amount in the given ISO currency using the
// currency's symbol, grouping and minor units. Unknown codes fall back to
// "<amount> <code>" with two decimals.
//
// Example:
//
//	FormatCurrency(decimal.NewFromFloat(1234.5), "USD") // "$1,234.50"
func FormatCurrency(amount decimal.Decimal, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = money.USD
	}
	cur := money.GetCurrency(code)
	if cur == nil {
		return fmt.Sprintf("%s %s", amount.StringFixed(2), code)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}

// FormatPercentage renders a ratio as a percentage with the given decimals.
//
// Example:
//
//	FormatPercentage(0.1234, 2) // "12.34%"
func FormatPercentage(ratio float64, decimals int) string {
	return fmt.Sprintf("%.*f%%", decimals, ratio*100)
}
