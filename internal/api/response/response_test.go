package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondJSON(t *testing.T) {
	t.Run("sets content-type and status code correctly", func(t *testing.T) {
		w := httptest.NewRecorder()

		RespondJSON(w, http.StatusOK, map[string]string{"message": "success"})

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if w.Header().Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type 'application/json', got '%s'", w.Header().Get("Content-Type"))
		}
	})

	t.Run("handles nil data without error", func(t *testing.T) {
		w := httptest.NewRecorder()

		RespondJSON(w, http.StatusNoContent, nil)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected status 204, got %d", w.Code)
		}
		if w.Body.Len() != 0 {
			t.Errorf("Expected empty body, got %q", w.Body.String())
		}
	})

	t.Run("handles un-encodable data gracefully", func(t *testing.T) {
		w := httptest.NewRecorder()

		// Channels cannot be JSON encoded
		RespondJSON(w, http.StatusOK, map[string]any{"channel": make(chan int)})

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})
}

func TestRespondError(t *testing.T) {
	t.Run("omits empty details", func(t *testing.T) {
		w := httptest.NewRecorder()

		RespondError(w, http.StatusNotFound, "portfolio not found", nil)

		var body map[string]any
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&body)

		if body["error"] != "portfolio not found" {
			t.Errorf("Expected error message, got %v", body["error"])
		}
		if _, ok := body["details"]; ok {
			t.Error("Expected details to be omitted")
		}
	})

	t.Run("includes field details", func(t *testing.T) {
		w := httptest.NewRecorder()

		RespondError(w, http.StatusBadRequest, "validation failed", map[string]string{"name": "name is required"})

		var body ErrorResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&body)

		details, ok := body.Details.(map[string]any)
		if !ok || details["name"] != "name is required" {
			t.Errorf("Expected field details, got %v", body.Details)
		}
	})
}
