package calc

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSafeDivide(t *testing.T) {
	tests := []struct {
		name        string
		numerator   float64
		denominator float64
		fallback    float64
		want        float64
	}{
		{"zero denominator returns fallback", 5, 0, 0.0, 0.0},
		{"custom fallback", 5, 0, -1, -1},
		{"regular division", 6, 3, 0, 2},
		{"zero numerator", 0, 4, 9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeDivide(tt.numerator, tt.denominator, tt.fallback); got != tt.want {
				t.Errorf("SafeDivide(%v, %v, %v) = %v, want %v", tt.numerator, tt.denominator, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestSafeDivideDecimal(t *testing.T) {
	got := SafeDivideDecimal(decimal.NewFromInt(5), decimal.Zero, decimal.Zero)
	if !got.IsZero() {
		t.Errorf("Expected 0 for zero denominator, got %s", got)
	}

	got = SafeDivideDecimal(decimal.NewFromInt(1), decimal.NewFromInt(4), decimal.Zero)
	if !got.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("Expected 0.25, got %s", got)
	}
}

func TestPercentageChange(t *testing.T) {
	if got := PercentageChange(100, 110); Round(got, 4) != 0.1 {
		t.Errorf("Expected 0.1, got %v", got)
	}
	if got := PercentageChange(0, 110); got != 0 {
		t.Errorf("Expected 0 when old value is zero, got %v", got)
	}
}

func TestRound(t *testing.T) {
	if got := Round(2.0/3.0, 3); got != 0.667 {
		t.Errorf("Expected 0.667, got %v", got)
	}
	if got := Round(123.456789, 2); got != 123.46 {
		t.Errorf("Expected 123.46, got %v", got)
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"1234.5", "USD", "$1,234.50"},
		{"0", "usd", "$0.00"},
		{"10", "", "$10.00"},
		{"99.999", "XXQ", "100.00 XXQ"},
	}

	for _, tt := range tests {
		t.Run(tt.currency+" "+tt.amount, func(t *testing.T) {
			got := FormatCurrency(decimal.RequireFromString(tt.amount), tt.currency)
			if got != tt.want {
				t.Errorf("FormatCurrency(%s, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
			}
		})
	}
}

func TestFormatPercentage(t *testing.T) {
	if got := FormatPercentage(0.1234, 2); got != "12.34%" {
		t.Errorf("Expected 12.34%%, got %s", got)
	}
	if got := FormatPercentage(-0.05, 1); got != "-5.0%" {
		t.Errorf("Expected -5.0%%, got %s", got)
	}
}
