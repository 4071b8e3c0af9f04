package request

import (
	"errors"
	"net/url"
	"testing"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"default", "", DefaultNewsLimit, false},
		{"explicit", "25", 25, false},
		{"upper bound", "100", 100, false},
		{"too large", "101", 0, true},
		{"zero", "0", 0, true},
		{"not a number", "ten", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := url.Values{}
			if tt.raw != "" {
				query.Set("limit", tt.raw)
			}
			got, err := ParseLimit(query)
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrValidation) {
					t.Errorf("Expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestParseHeadlinesParams(t *testing.T) {
	t.Run("parses lists and paging", func(t *testing.T) {
		query := url.Values{"sources": {"bbc-news, reuters"}, "page_size": {"5"}, "page": {"2"}}
		params, err := ParseHeadlinesParams(query)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(params.Sources) != 2 || params.Sources[1] != "reuters" {
			t.Errorf("Unexpected sources %v", params.Sources)
		}
		if params.PageSize != 5 || params.Page != 2 {
			t.Errorf("Expected paging 5/2, got %d/%d", params.PageSize, params.Page)
		}
	})

	t.Run("sources with country is rejected", func(t *testing.T) {
		query := url.Values{"sources": {"bbc-news"}, "country": {"us"}}
		if _, err := ParseHeadlinesParams(query); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("bad page size", func(t *testing.T) {
		query := url.Values{"page_size": {"abc"}}
		if _, err := ParseHeadlinesParams(query); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}

func TestParseEverythingParams(t *testing.T) {
	t.Run("parses dates", func(t *testing.T) {
		query := url.Values{"q": {"apple"}, "from": {"2024-01-01"}, "to": {"2024-01-31T00:00:00Z"}}
		params, err := ParseEverythingParams(query)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if params.From == nil || params.From.Format("2006-01-02") != "2024-01-01" {
			t.Errorf("Unexpected from %v", params.From)
		}
		if params.To == nil || params.To.Day() != 31 {
			t.Errorf("Unexpected to %v", params.To)
		}
	})

	t.Run("to before from", func(t *testing.T) {
		query := url.Values{"q": {"apple"}, "from": {"2024-02-01"}, "to": {"2024-01-01"}}
		if _, err := ParseEverythingParams(query); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("invalid date", func(t *testing.T) {
		query := url.Values{"q": {"apple"}, "from": {"yesterday"}}
		if _, err := ParseEverythingParams(query); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("requires a query", func(t *testing.T) {
		if _, err := ParseEverythingParams(url.Values{}); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}
