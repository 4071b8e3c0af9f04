package request

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/newsapi"
)

// Limits for the limit query parameter on news searches.
const (
	DefaultNewsLimit = 10
	MaxNewsLimit     = 100
)

// ParseLimit reads the limit parameter, applying the default and the
// upper bound.
func ParseLimit(query url.Values) (int, error) {
	raw := query.Get("limit")
	if raw == "" {
		return DefaultNewsLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("limit must be a number: %w", apperrors.ErrValidation)
	}
	if limit < 1 || limit > MaxNewsLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d: %w", MaxNewsLimit, apperrors.ErrValidation)
	}
	return limit, nil
}

// ParseHeadlinesParams converts /news/headlines query parameters.
// The combination rules are checked by HeadlinesParams.Validate.
func ParseHeadlinesParams(query url.Values) (newsapi.HeadlinesParams, error) {
	pageSize, page, err := parsePaging(query)
	if err != nil {
		return newsapi.HeadlinesParams{}, err
	}
	params := newsapi.HeadlinesParams{
		Query:    query.Get("q"),
		Sources:  splitList(query.Get("sources")),
		Category: strings.ToLower(query.Get("category")),
		Country:  strings.ToLower(query.Get("country")),
		Language: strings.ToLower(query.Get("language")),
		PageSize: pageSize,
		Page:     page,
	}
	return params, params.Validate()
}

// ParseEverythingParams converts /news/everything query parameters.
// from and to accept YYYY-MM-DD or RFC3339.
func ParseEverythingParams(query url.Values) (newsapi.EverythingParams, error) {
	pageSize, page, err := parsePaging(query)
	if err != nil {
		return newsapi.EverythingParams{}, err
	}
	params := newsapi.EverythingParams{
		Query:    query.Get("q"),
		Sources:  splitList(query.Get("sources")),
		Domains:  splitList(query.Get("domains")),
		Language: strings.ToLower(query.Get("language")),
		SortBy:   query.Get("sort_by"),
		PageSize: pageSize,
		Page:     page,
	}

	if from := query.Get("from"); from != "" {
		t, err := parseFilterTime(from)
		if err != nil {
			return newsapi.EverythingParams{}, fmt.Errorf("invalid from: %v: %w", err, apperrors.ErrValidation)
		}
		params.From = &t
	}
	if to := query.Get("to"); to != "" {
		t, err := parseFilterTime(to)
		if err != nil {
			return newsapi.EverythingParams{}, fmt.Errorf("invalid to: %v: %w", err, apperrors.ErrValidation)
		}
		params.To = &t
	}

	return params, params.Validate()
}

// ParseSourcesParams converts /news/sources query parameters.
func ParseSourcesParams(query url.Values) (newsapi.SourcesParams, error) {
	params := newsapi.SourcesParams{
		Category: strings.ToLower(query.Get("category")),
		Language: strings.ToLower(query.Get("language")),
		Country:  strings.ToLower(query.Get("country")),
	}
	return params, params.Validate()
}

func parsePaging(query url.Values) (int, int, error) {
	pageSize, err := optionalInt(query, "page_size")
	if err != nil {
		return 0, 0, err
	}
	page, err := optionalInt(query, "page")
	if err != nil {
		return 0, 0, err
	}
	return pageSize, page, nil
}

func optionalInt(query url.Values, key string) (int, error) {
	raw := query.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, apperrors.ErrValidation)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseFilterTime accepts YYYY-MM-DD, RFC3339, and RFC3339 with milliseconds.
func parseFilterTime(str string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05.000Z07:00"} {
		if t, err := time.Parse(layout, str); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date or datetime", str)
}
