package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
)

func TestNormalizeSymbol(t *testing.T) {
	valid := map[string]string{
		"aapl":     "AAPL",
		" msft ":   "MSFT",
		"BRK.B":    "BRK.B",
		"^GSPC":    "^GSPC",
		"EURUSD=X": "EURUSD=X",
		"asml.as":  "ASML.AS",
	}
	for in, want := range valid {
		t.Run(in, func(t *testing.T) {
			got, err := NormalizeSymbol(in)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != want {
				t.Errorf("Expected %s, got %s", want, got)
			}
		})
	}

	for _, in := range []string{"", "   ", "AA PL", "AAPL;DROP", "ABCDEFGHIJKLMNOP"} {
		t.Run("invalid "+in, func(t *testing.T) {
			if _, err := NormalizeSymbol(in); !errors.Is(err, apperrors.ErrInvalidSymbol) {
				t.Errorf("Expected ErrInvalidSymbol, got %v", err)
			}
		})
	}
}

func TestNormalizeSymbols(t *testing.T) {
	got, err := NormalizeSymbols("aapl, msft,AAPL,,googl")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []string{"AAPL", "MSFT", "GOOGL"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
		}
	}

	if _, err := NormalizeSymbols(" , "); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Expected validation error for empty list, got %v", err)
	}
}

func TestValidatePeriod(t *testing.T) {
	if p, err := ValidatePeriod(""); err != nil || p != "1y" {
		t.Errorf("Expected default 1y, got %q (%v)", p, err)
	}
	if p, err := ValidatePeriod("ytd"); err != nil || p != "ytd" {
		t.Errorf("Expected ytd, got %q (%v)", p, err)
	}
	if _, err := ValidatePeriod("3w"); !errors.Is(err, apperrors.ErrInvalidPeriod) {
		t.Errorf("Expected ErrInvalidPeriod, got %v", err)
	}
}

func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID("5f0c5c8e-3f8a-4b6e-9b1a-2d9c4f0e7a11"); err != nil {
		t.Errorf("Expected valid UUID, got %v", err)
	}
	if err := ValidateUUID(""); !errors.Is(err, apperrors.ErrEmptyID) {
		t.Errorf("Expected ErrEmptyID, got %v", err)
	}
	if err := ValidateUUID("not-a-uuid"); !errors.Is(err, apperrors.ErrInvalidUUID) {
		t.Errorf("Expected ErrInvalidUUID, got %v", err)
	}
}

func TestValidateCreatePortfolio(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		err := ValidateCreatePortfolio(request.CreatePortfolioRequest{OwnerID: "user-1", Name: "Growth"})
		if err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		err := ValidateCreatePortfolio(request.CreatePortfolioRequest{})
		var vErr *Error
		if !errors.As(err, &vErr) {
			t.Fatalf("Expected *Error, got %v", err)
		}
		if _, ok := vErr.Fields["name"]; !ok {
			t.Error("Expected name field error")
		}
		if _, ok := vErr.Fields["ownerId"]; !ok {
			t.Error("Expected ownerId field error")
		}
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Error("Expected error to unwrap to ErrValidation")
		}
	})
}

func TestValidateAddPosition(t *testing.T) {
	ten := decimal.NewFromInt(10)
	zero := decimal.Zero
	negative := decimal.NewFromInt(-1)

	tests := []struct {
		name      string
		req       request.AddPositionRequest
		wantField string
	}{
		{"valid", request.AddPositionRequest{Symbol: "AAPL", Shares: &ten, Price: &ten}, ""},
		{"free shares", request.AddPositionRequest{Symbol: "AAPL", Shares: &ten, Price: &zero}, ""},
		{"missing shares", request.AddPositionRequest{Symbol: "AAPL", Price: &ten}, "shares"},
		{"zero shares", request.AddPositionRequest{Symbol: "AAPL", Shares: &zero, Price: &ten}, "shares"},
		{"negative price", request.AddPositionRequest{Symbol: "AAPL", Shares: &ten, Price: &negative}, "price"},
		{"bad symbol", request.AddPositionRequest{Symbol: "A A", Shares: &ten, Price: &ten}, "symbol"},
		{"bad date", request.AddPositionRequest{Symbol: "AAPL", Shares: &ten, Price: &ten, AcquiredAt: "01/02/2024"}, "acquiredAt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddPosition(tt.req)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			var vErr *Error
			if !errors.As(err, &vErr) {
				t.Fatalf("Expected *Error, got %v", err)
			}
			if _, ok := vErr.Fields[tt.wantField]; !ok {
				t.Errorf("Expected %s field error, got %v", tt.wantField, vErr.Fields)
			}
		})
	}
}
