package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/testutil"
)

func setupMarketHandler(t *testing.T, mock *testutil.MockYahooClient, quotes *testutil.MockQuoteProvider) (*MarketHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ms := testutil.NewTestMarketService(t, db, mock)
	ss := testutil.NewTestSchedulerService(t, db, quotes)
	return NewMarketHandler(ms, ss), db
}

func TestMarketHandler_Quote(t *testing.T) {
	t.Run("returns quote", func(t *testing.T) {
		handler, _ := setupMarketHandler(t, testutil.NewMockYahooClient(), testutil.NewMockQuoteProvider())

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/market/quote/test", map[string]string{"symbol": "test"})
		w := httptest.NewRecorder()

		handler.Quote(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var quote model.Quote
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&quote)

		if quote.Symbol != "TEST" || quote.Price.String() != "102.25" {
			t.Errorf("Unexpected quote: %+v", quote)
		}
	})

	t.Run("invalid symbol returns 400", func(t *testing.T) {
		handler, _ := setupMarketHandler(t, testutil.NewMockYahooClient(), testutil.NewMockQuoteProvider())

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/market/quote/a%20b", map[string]string{"symbol": "a b"})
		w := httptest.NewRecorder()

		handler.Quote(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("upstream failures map to status codes", func(t *testing.T) {
		tests := []struct {
			err  error
			want int
		}{
			{apperrors.ErrSymbolNotFound, http.StatusNotFound},
			{apperrors.ErrRateLimited, http.StatusTooManyRequests},
			{apperrors.ErrUpstreamUnavailable, http.StatusServiceUnavailable},
			{apperrors.ErrUpstreamRejected, http.StatusBadGateway},
		}

		for _, tt := range tests {
			handler, _ := setupMarketHandler(t, testutil.NewMockYahooClient().WithError(tt.err), testutil.NewMockQuoteProvider())

			req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/market/quote/TEST", map[string]string{"symbol": "TEST"})
			w := httptest.NewRecorder()

			handler.Quote(w, req)

			if w.Code != tt.want {
				t.Errorf("%v: expected %d, got %d", tt.err, tt.want, w.Code)
			}
		}
	})
}

func TestMarketHandler_History(t *testing.T) {
	mock := testutil.NewMockYahooClient()
	handler, _ := setupMarketHandler(t, mock, testutil.NewMockQuoteProvider())

	t.Run("defaults period", func(t *testing.T) {
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/market/history/TEST", map[string]string{"symbol": "TEST"})
		w := httptest.NewRecorder()

		handler.History(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var history model.PriceHistory
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&history)

		if history.Period != "1y" || len(history.Bars) != 5 {
			t.Errorf("Unexpected history: period=%s bars=%d", history.Period, len(history.Bars))
		}
	})

	t.Run("invalid period returns 400", func(t *testing.T) {
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/market/history/TEST?period=3w", map[string]string{"symbol": "TEST"})
		w := httptest.NewRecorder()

		handler.History(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestMarketHandler_Metrics(t *testing.T) {
	resp := testutil.CreateMockYahooResponseFromCloses(100)
	handler, _ := setupMarketHandler(t, testutil.NewMockYahooClient().WithResponse(resp), testutil.NewMockQuoteProvider())

	req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/market/metrics/TEST", map[string]string{"symbol": "TEST"})
	w := httptest.NewRecorder()

	handler.Metrics(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for insufficient history, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMarketHandler_InfoAndStocks(t *testing.T) {
	mock := testutil.NewMockYahooClient().WithSummary(testutil.CreateMockQuoteSummary("AAPL", "Apple Inc.", 190))
	handler, _ := setupMarketHandler(t, mock, testutil.NewMockQuoteProvider())

	req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/market/info/AAPL", map[string]string{"symbol": "AAPL"})
	w := httptest.NewRecorder()

	handler.Info(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	handler.Stocks(w, httptest.NewRequest(http.MethodGet, "/api/market/stocks", nil))

	var stocks []model.Stock
	//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
	json.NewDecoder(w.Body).Decode(&stocks)

	if len(stocks) != 1 || stocks[0].Symbol != "AAPL" {
		t.Errorf("Expected AAPL stored, got %+v", stocks)
	}
}

func TestMarketHandler_StoredPricesAndBackfill(t *testing.T) {
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)
	start := yesterday.AddDate(0, 0, -4).Format("2006-01-02")
	end := yesterday.Format("2006-01-02")

	handler, _ := setupMarketHandler(t, testutil.NewMockYahooClient(), testutil.NewMockQuoteProvider())

	t.Run("backfill requires start_date", func(t *testing.T) {
		req := testutil.NewRequestWithURLParams(http.MethodPost, "/api/market/prices/TEST/backfill", map[string]string{"symbol": "TEST"})
		w := httptest.NewRecorder()

		handler.Backfill(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("backfill stores missing days", func(t *testing.T) {
		url := "/api/market/prices/test/backfill?start_date=" + start + "&end_date=" + end
		req := testutil.NewRequestWithURLParams(http.MethodPost, url, map[string]string{"symbol": "test"})
		w := httptest.NewRecorder()

		handler.Backfill(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var result BackfillResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&result)

		if result.Symbol != "TEST" || result.Added != 5 {
			t.Errorf("Unexpected result: %+v", result)
		}
	})

	t.Run("stored prices are listed", func(t *testing.T) {
		url := "/api/market/prices/TEST?start_date=" + start + "&end_date=" + end
		req := testutil.NewRequestWithURLParams(http.MethodGet, url, map[string]string{"symbol": "TEST"})
		w := httptest.NewRecorder()

		handler.StoredPrices(w, req)

		var prices []model.StoredPrice
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&prices)

		if len(prices) != 5 {
			t.Errorf("Expected 5 prices, got %d", len(prices))
		}
	})
}

func TestMarketHandler_Refresh(t *testing.T) {
	quotes := testutil.NewMockQuoteProvider().WithPrice("AAPL", 180)
	handler, db := setupMarketHandler(t, testutil.NewMockYahooClient(), quotes)
	portfolio := testutil.NewPortfolio().Build(t, db)
	testutil.NewPosition(portfolio.ID).WithSymbol("AAPL").Build(t, db)

	w := httptest.NewRecorder()
	handler.Refresh(w, httptest.NewRequest(http.MethodPost, "/api/market/refresh", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result model.PriceRefreshResult
	//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
	json.NewDecoder(w.Body).Decode(&result)

	if !result.Success || result.TotalUpdated != 1 || result.SnapshotsWritten != 1 {
		t.Errorf("Unexpected result: %+v", result)
	}
}
