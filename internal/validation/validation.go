package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/yahoo"
)

// DateLayout is the calendar date format accepted in requests.
const DateLayout = "2006-01-02"

// Ticker symbols: letters, digits, and the punctuation Yahoo uses for
// share classes (BRK.B), exchanges (ASML.AS), indices (^GSPC), currencies
// (EURUSD=X) and futures (CL=F).
var symbolPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=^]{0,14}$`)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.ErrEmptyID
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidUUID, id)
	}
	return nil
}

// NormalizeSymbol trims and upper-cases a ticker and checks its shape.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", fmt.Errorf("%w: symbol is required", apperrors.ErrInvalidSymbol)
	}
	if !symbolPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %s", apperrors.ErrInvalidSymbol, symbol)
	}
	return s, nil
}

// NormalizeSymbols normalizes a comma separated symbol list, dropping
// duplicates while keeping the first occurrence order.
func NormalizeSymbols(list string) ([]string, error) {
	seen := make(map[string]bool)
	var symbols []string
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		s, err := NormalizeSymbol(part)
		if err != nil {
			return nil, err
		}
		if !seen[s] {
			seen[s] = true
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: at least one symbol is required", apperrors.ErrInvalidSymbol)
	}
	return symbols, nil
}

// ValidatePeriod returns the period, defaulting an empty one to "1y".
func ValidatePeriod(period string) (string, error) {
	if period == "" {
		return "1y", nil
	}
	if !yahoo.ValidPeriods[period] {
		return "", fmt.Errorf("%w: %s", apperrors.ErrInvalidPeriod, period)
	}
	return period, nil
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, &Error{Fields: map[string]string{field: "must be a date in YYYY-MM-DD format"}}
	}
	return t, nil
}

// ValidateDateRange checks that end is not before start.
func ValidateDateRange(start, end time.Time) error {
	if end.Before(start) {
		return apperrors.ErrInvalidDateRange
	}
	return nil
}
