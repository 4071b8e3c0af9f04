package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/api/response"
	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// parseJSON decodes a JSON request body into T, rejecting unknown fields.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	if r.Body == nil {
		return req, errors.New("request body is required")
	}

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, err
	}
	return req, nil
}

// statusForError maps a service error onto an HTTP status. Validation and
// rate limiting are checked first since a quote failure is joined with
// its upstream cause.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, apperrors.ErrCredentialMissing),
		errors.Is(err, apperrors.ErrCredentialStoreDisabled),
		errors.Is(err, apperrors.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperrors.ErrQuoteUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicateEntry):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrUpstreamRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with the status from statusForError.
// Validation failures use a fixed message and carry their field map as
// details; everything else uses message.
func respondServiceError(w http.ResponseWriter, message string, err error) {
	status := statusForError(err)

	if status == http.StatusBadRequest {
		var vErr *validation.Error
		if errors.As(err, &vErr) {
			response.RespondError(w, status, "validation failed", vErr.Fields)
			return
		}
		response.RespondError(w, status, "validation failed", err.Error())
		return
	}

	response.RespondError(w, status, message, err.Error())
}

// parseDateRange reads start_date and end_date query parameters. Dates
// accept YYYY-MM-DD or RFC3339. A missing start defaults to defaultStart
// and a missing end to today.
func parseDateRange(r *http.Request, defaultStart time.Time) (time.Time, time.Time, error) {
	query := r.URL.Query()

	startDate := defaultStart
	if raw := query.Get("start_date"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date: %v: %w", err, apperrors.ErrValidation)
		}
		startDate = t
	}

	endDate := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := query.Get("end_date"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date: %v: %w", err, apperrors.ErrValidation)
		}
		endDate = t
	}

	if err := validation.ValidateDateRange(startDate, endDate); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return startDate, endDate, nil
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse(validation.DateLayout, raw)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse %q as a date", raw)
	}
	return t.UTC(), nil
}
