package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/upstream"
)

func TestSummarize(t *testing.T) {
	t.Run("returns candidate text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, ":generateContent") {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Apple beat estimates."}]}}]}`)) //nolint:errcheck
		}))
		defer server.Close()

		s := NewSummarizer(Config{
			Token:   upstream.StaticToken(upstream.ProviderGemini, "key"),
			BaseURL: server.URL,
		})
		got, err := s.Summarize(context.Background(), "Apple reported results above expectations.")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got != "Apple beat estimates." {
			t.Errorf("Unexpected summary %q", got)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		s := NewSummarizer(Config{})
		if _, err := s.Summarize(context.Background(), ""); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		s := NewSummarizer(Config{})
		if _, err := s.Summarize(context.Background(), "text"); !errors.Is(err, apperrors.ErrCredentialMissing) {
			t.Errorf("Expected ErrCredentialMissing, got %v", err)
		}
	})
}
