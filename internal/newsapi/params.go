package newsapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
)

// Page size limits enforced by NewsAPI.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ValidCategories are the top-headlines categories NewsAPI supports.
var ValidCategories = map[string]bool{
	"business": true, "entertainment": true, "general": true, "health": true,
	"science": true, "sports": true, "technology": true,
}

// ValidSortBy are the accepted everything sort orders.
var ValidSortBy = map[string]bool{
	"relevancy": true, "popularity": true, "publishedAt": true,
}

// HeadlinesParams are the query parameters of /top-headlines.
type HeadlinesParams struct {
	Query    string
	Sources  []string
	Category string
	Country  string
	Language string
	PageSize int
	Page     int
}

// EverythingParams are the query parameters of /everything.
// From and To are inclusive dates.
type EverythingParams struct {
	Query    string
	Sources  []string
	Domains  []string
	From     *time.Time
	To       *time.Time
	Language string
	SortBy   string
	PageSize int
	Page     int
}

// SourcesParams are the query parameters of /top-headlines/sources.
type SourcesParams struct {
	Category string
	Language string
	Country  string
}

// Validate checks the parameter combination NewsAPI would reject.
// Sources cannot be combined with country or category.
func (p HeadlinesParams) Validate() error {
	fields := map[string]string{}

	if len(p.Sources) > 0 && (p.Country != "" || p.Category != "") {
		fields["sources"] = "sources cannot be combined with country or category"
	}
	if p.Category != "" && !ValidCategories[p.Category] {
		fields["category"] = fmt.Sprintf("invalid category: %s", p.Category)
	}
	validatePaging(fields, p.PageSize, p.Page)

	return paramError(fields)
}

// Validate checks page bounds, sort order and date ordering.
func (p EverythingParams) Validate() error {
	fields := map[string]string{}

	if strings.TrimSpace(p.Query) == "" && len(p.Sources) == 0 && len(p.Domains) == 0 {
		fields["q"] = "one of q, sources or domains is required"
	}
	if p.SortBy != "" && !ValidSortBy[p.SortBy] {
		fields["sort_by"] = fmt.Sprintf("invalid sort_by: %s", p.SortBy)
	}
	if p.From != nil && p.To != nil && p.To.Before(*p.From) {
		fields["to"] = "to must not be before from"
	}
	validatePaging(fields, p.PageSize, p.Page)

	return paramError(fields)
}

// Validate checks the category.
func (p SourcesParams) Validate() error {
	fields := map[string]string{}
	if p.Category != "" && !ValidCategories[p.Category] {
		fields["category"] = fmt.Sprintf("invalid category: %s", p.Category)
	}
	return paramError(fields)
}

func validatePaging(fields map[string]string, pageSize, page int) {
	if pageSize < 0 || pageSize > MaxPageSize {
		fields["page_size"] = fmt.Sprintf("page_size must be between 1 and %d", MaxPageSize)
	}
	if page < 0 {
		fields["page"] = "page must be positive"
	}
}

// ParamError lists invalid request parameters. It unwraps to apperrors.ErrValidation.
type ParamError struct {
	Fields map[string]string
}

func (e *ParamError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	return "invalid news parameters: " + strings.Join(msgs, "; ")
}

func (e *ParamError) Unwrap() error { return apperrors.ErrValidation }

func paramError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ParamError{Fields: fields}
}

func (p HeadlinesParams) values() url.Values {
	v := url.Values{}
	setIf(v, "q", p.Query)
	setIf(v, "sources", strings.Join(p.Sources, ","))
	setIf(v, "category", p.Category)
	setIf(v, "country", p.Country)
	if p.Language == "" && len(p.Sources) == 0 {
		p.Language = "en"
	}
	setIf(v, "language", p.Language)
	setPaging(v, p.PageSize, p.Page)
	return v
}

func (p EverythingParams) values() url.Values {
	v := url.Values{}
	setIf(v, "q", p.Query)
	setIf(v, "sources", strings.Join(p.Sources, ","))
	setIf(v, "domains", strings.Join(p.Domains, ","))
	if p.From != nil {
		v.Set("from", p.From.Format("2006-01-02"))
	}
	if p.To != nil {
		v.Set("to", p.To.Format("2006-01-02"))
	}
	if p.Language == "" {
		p.Language = "en"
	}
	setIf(v, "language", p.Language)
	setIf(v, "sortBy", p.SortBy)
	setPaging(v, p.PageSize, p.Page)
	return v
}

func (p SourcesParams) values() url.Values {
	v := url.Values{}
	setIf(v, "category", p.Category)
	setIf(v, "language", p.Language)
	setIf(v, "country", p.Country)
	return v
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setPaging(v url.Values, pageSize, page int) {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if page == 0 {
		page = 1
	}
	v.Set("pageSize", strconv.Itoa(pageSize))
	v.Set("page", strconv.Itoa(page))
}
