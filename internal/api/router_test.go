package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ndewijer/portfolio-tracker/internal/api/middleware"
	"github.com/ndewijer/portfolio-tracker/internal/config"
	"github.com/ndewijer/portfolio-tracker/internal/metrics"
	"github.com/ndewijer/portfolio-tracker/internal/service"
	"github.com/ndewijer/portfolio-tracker/internal/testutil"
)

func setupRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	quotes := testutil.NewMockQuoteProvider().WithPrice("AAPL", 150)

	svc := Services{
		System:     testutil.NewTestSystemService(t, db),
		Portfolio:  testutil.NewTestPortfolioService(t, db, quotes),
		Market:     testutil.NewTestMarketService(t, db, testutil.NewMockYahooClient()),
		News:       testutil.NewTestNewsService(t, testutil.NewMockNewsProvider()),
		Analysis:   service.NewAnalysisService(&testutil.MockClassifier{}, &testutil.MockSummarizer{}, nil),
		Credential: testutil.NewTestCredentialService(t, db),
		Scheduler:  testutil.NewTestSchedulerService(t, db, quotes),
	}
	return NewRouter(svc, metrics.NewMetrics(prometheus.NewRegistry()), cfg)
}

func TestNewRouter(t *testing.T) {
	cfg := &config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}}
	router := setupRouter(t, cfg)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"health", http.MethodGet, "/api/system/health", "", http.StatusOK},
		{"breakers", http.MethodGet, "/api/system/breakers", "", http.StatusOK},
		{"list portfolios", http.MethodGet, "/api/portfolio", "", http.StatusOK},
		{"invalid portfolio uuid", http.MethodGet, "/api/portfolio/not-a-uuid", "", http.StatusBadRequest},
		{"unknown portfolio", http.MethodGet, "/api/portfolio/550e8400-e29b-41d4-a716-446655440000/value", "", http.StatusNotFound},
		{"overview requires owner", http.MethodGet, "/api/portfolio/overview", "", http.StatusBadRequest},
		{"quote", http.MethodGet, "/api/market/quote/TEST", "", http.StatusOK},
		{"keyword sentiment", http.MethodPost, "/api/analysis/sentiment", `{"text":"shares rally"}`, http.StatusOK},
		{"headlines without newsapi", http.MethodGet, "/api/news/headlines", "", http.StatusServiceUnavailable},
		{"credentials", http.MethodGet, "/api/credentials", "", http.StatusOK},
		{"prometheus metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestNewRouter_CredentialsRequireAPIKey(t *testing.T) {
	cfg := &config.Config{Security: config.SecurityConfig{InternalAPIKey: "internal-key"}}
	router := setupRouter(t, cfg)

	t.Run("rejects write without key", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/credentials/newsapi", strings.NewReader(`{"token":"abc"}`)))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("rejects listing without key", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/credentials", nil))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("accepts key and time token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/credentials/newsapi", strings.NewReader(`{"token":"abc"}`))
		req.Header.Set("X-API-Key", "internal-key")
		req.Header.Set("X-Time-Token", middleware.GenerateTimeToken("internal-key"))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("other routes stay open", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/system/health", nil))

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})
}

func TestNewRouter_CredentialWritesNeedConfiguredKey(t *testing.T) {
	router := setupRouter(t, &config.Config{})

	tests := []struct {
		name   string
		method string
		body   string
	}{
		{"store token", http.MethodPut, `{"token":"abc"}`},
		{"delete token", http.MethodDelete, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, "/api/credentials/newsapi", strings.NewReader(tt.body)))

			if w.Code != http.StatusNotFound && w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected write route to be unmounted, got %d: %s", w.Code, w.Body.String())
			}
		})
	}

	t.Run("listing is mounted", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/credentials", nil))

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})
}
