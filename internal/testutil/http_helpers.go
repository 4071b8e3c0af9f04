package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
)

// WithURLParams attaches chi route parameters to req so handlers calling
// chi.URLParam can be exercised without a router.
func WithURLParams(req *http.Request, params map[string]string) *http.Request {
	if len(params) == 0 {
		return req
	}
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// NewRequestWithURLParams builds a body-less request carrying chi route
// parameters, e.g. {"symbol": "AAPL"} for /api/market/quote/AAPL.
func NewRequestWithURLParams(method, path string, params map[string]string) *http.Request {
	return WithURLParams(httptest.NewRequest(method, path, nil), params)
}

// NewJSONRequest builds a request with a JSON body and chi route parameters.
//
//	req := testutil.NewJSONRequest(
//	    http.MethodPost,
//	    "/api/portfolio/"+id+"/positions",
//	    `{"symbol":"AAPL","shares":"10","price":"150"}`,
//	    map[string]string{"uuid": id},
//	)
func NewJSONRequest(method, path, body string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return WithURLParams(req, params)
}

// NewRequestWithQueryParams builds a GET-style request with an encoded query,
// e.g. {"start_date": "2024-01-01", "end_date": "2024-12-31"}.
func NewRequestWithQueryParams(method, path string, queryParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if len(queryParams) == 0 {
		return req
	}

	q := req.URL.Query()
	for key, value := range queryParams {
		q.Add(key, value)
	}
	req.URL.RawQuery = q.Encode()
	return req
}
