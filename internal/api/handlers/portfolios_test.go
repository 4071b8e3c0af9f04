package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/api/response"
	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/testutil"
)

func setupPortfolioHandler(t *testing.T, quotes *testutil.MockQuoteProvider) (*PortfolioHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ps := testutil.NewTestPortfolioService(t, db, quotes)
	return NewPortfolioHandler(ps), db
}

func TestPortfolioHandler_Portfolios(t *testing.T) {
	t.Run("returns empty array when no portfolios exist", func(t *testing.T) {
		handler, _ := setupPortfolioHandler(t, testutil.NewMockQuoteProvider())

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
		w := httptest.NewRecorder()

		handler.Portfolios(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var portfolios []model.Portfolio
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&portfolios)

		if portfolios == nil || len(portfolios) != 0 {
			t.Errorf("Expected empty array, got %v", portfolios)
		}
	})

	t.Run("filters by owner", func(t *testing.T) {
		handler, db := setupPortfolioHandler(t, testutil.NewMockQuoteProvider())
		testutil.NewPortfolio().WithOwner("alice").Build(t, db)
		testutil.NewPortfolio().WithOwner("bob").Build(t, db)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/portfolio", map[string]string{"owner_id": "alice"})
		w := httptest.NewRecorder()

		handler.Portfolios(w, req)

		var portfolios []model.Portfolio
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&portfolios)

		if len(portfolios) != 1 || portfolios[0].OwnerID != "alice" {
			t.Errorf("Expected alice's portfolio only, got %+v", portfolios)
		}
	})

	t.Run("returns 500 on database error", func(t *testing.T) {
		handler, db := setupPortfolioHandler(t, testutil.NewMockQuoteProvider())
		db.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
		w := httptest.NewRecorder()

		handler.Portfolios(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPortfolioHandler_CreatePortfolio(t *testing.T) {
	t.Run("creates portfolio", func(t *testing.T) {
		handler, db := setupPortfolioHandler(t, testutil.NewMockQuoteProvider())

		body := `{"ownerId":"alice","name":"Growth","description":"Long term"}`
		req := httptest.NewRequest(http.MethodPost, "/api/portfolio", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreatePortfolio(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var created model.Portfolio
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&created)

		if created.ID == "" || created.Name != "Growth" {
			t.Errorf("Unexpected portfolio: %+v", created)
		}
		if n := testutil.CountRows(t, db, "portfolio"); n != 1 {
			t.Errorf("Expected 1 portfolio row, got %d", n)
		}
	})

	t.Run("returns 400 with field details on validation failure", func(t *testing.T) {
		handler, _ := setupPortfolioHandler(t, testutil.NewMockQuoteProvider())

		req := httptest.NewRequest(http.MethodPost, "/api/portfolio", strings.NewReader(`{"ownerId":"alice"}`))
		w := httptest.NewRecorder()

		handler.CreatePortfolio(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}

		var errResp response.ErrorResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&errResp)

		details, ok := errResp.Details.(map[string]any)
		if !ok || details["name"] == nil {
			t.Errorf("Expected name field error, got %v", errResp.Details)
		}
	})

	t.Run("returns 400 on malformed body", func(t *testing.T) {
		handler, _ := setupPortfolioHandler(t, testutil.NewMockQuoteProvider())

		req := httptest.NewRequest(http.MethodPost, "/api/portfolio", strings.NewReader(`not json`))
		w := httptest.NewRecorder()

		handler.CreatePortfolio(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestPortfolioHandler_GetPortfolio(t *testing.T) {
	t.Run("returns portfolio", func(t *testing.T) {
		handler, db := setupPortfolioHandler(t, testutil.NewMockQuoteProvider())
		portfolio := testutil.NewPortfolio().Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+portfolio.ID, map[string]string{"uuid": portfolio.ID})
		w := httptest.NewRecorder()

		handler.GetPortfolio(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 when portfolio not found", func(t *testing.T) {
		handler, _ := setupPortfolioHandler(t, testutil.NewMockQuoteProvider())
		id := testutil.MakeID()

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+id, map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		handler.GetPortfolio(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPortfolioHandler_DeletePortfolio(t *testing.T) {
	handler, db := setupPortfolioHandler(t, testutil.NewMockQuoteProvider())
	portfolio := testutil.NewPortfolio().Build(t, db)
	testutil.NewPosition(portfolio.ID).Build(t, db)

	req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/portfolio/"+portfolio.ID, map[string]string{"uuid": portfolio.ID})
	w := httptest.NewRecorder()

	handler.DeletePortfolio(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d: %s", w.Code, w.Body.String())
	}
	if n := testutil.CountRows(t, db, "position"); n != 0 {
		t.Errorf("Expected positions to cascade, got %d rows", n)
	}

	w = httptest.NewRecorder()
	handler.DeletePortfolio(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on second delete, got %d", w.Code)
	}
}

// TestPortfolioHandler_AddPosition tests position creation over HTTP.
//
// WHY: The merge policy decides between averaging and a 409, so the
// handler must pass duplicate errors through with the right status.
func TestPortfolioHandler_AddPosition(t *testing.T) {
	post := func(handler *PortfolioHandler, portfolioID, body string) *httptest.ResponseRecorder {
		req := testutil.NewJSONRequest(http.MethodPost, "/api/portfolio/"+portfolioID+"/positions", body, map[string]string{"uuid": portfolioID})
		w := httptest.NewRecorder()
		handler.AddPosition(w, req)
		return w
	}

	t.Run("creates and merges positions", func(t *testing.T) {
		handler, db := setupPortfolioHandler(t, testutil.NewMockQuoteProvider())
		portfolio := testutil.NewPortfolio().Build(t, db)

		w := post(handler, portfolio.ID, `{"symbol":"aapl","shares":"10","price":"100","acquiredAt":"2024-01-10"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		w = post(handler, portfolio.ID, `{"symbol":"AAPL","shares":30,"price":200}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var position model.Position
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&position)

		if position.Symbol != "AAPL" || position.Shares.String() != "40" {
			t.Errorf("Expected 40 AAPL shares, got %s %s", position.Shares, position.Symbol)
		}
		if position.CostBasisPerShare.String() != "175" {
			t.Errorf("Expected cost basis 175, got %s", position.CostBasisPerShare)
		}
		if n := testutil.CountRows(t, db, "transaction"); n != 2 {
			t.Errorf("Expected 2 transactions, got %d", n)
		}
	})

	t.Run("returns 409 when merging is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		ps := testutil.NewTestPortfolioServiceWithPolicy(t, db, testutil.NewMockQuoteProvider(), "reject")
		handler := NewPortfolioHandler(ps)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewPosition(portfolio.ID).WithSymbol("AAPL").Build(t, db)

		w := post(handler, portfolio.ID, `{"symbol":"AAPL","shares":"1","price":"100"}`)
		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 for invalid shares", func(t *testing.T) {
		handler, db := setupPortfolioHandler(t, testutil.NewMockQuoteProvider())
		portfolio := testutil.NewPortfolio().Build(t, db)

		w := post(handler, portfolio.ID, `{"symbol":"AAPL","shares":"0","price":"100"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for unknown portfolio", func(t *testing.T) {
		handler, _ := setupPortfolioHandler(t, testutil.NewMockQuoteProvider())

		w := post(handler, testutil.MakeID(), `{"symbol":"AAPL","shares":"1","price":"100"}`)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPortfolioHandler_RemovePosition(t *testing.T) {
	handler, db := setupPortfolioHandler(t, testutil.NewMockQuoteProvider())
	portfolio := testutil.NewPortfolio().Build(t, db)
	testutil.NewPosition(portfolio.ID).WithSymbol("MSFT").Build(t, db)

	params := map[string]string{"uuid": portfolio.ID, "symbol": "msft"}
	req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/portfolio/"+portfolio.ID+"/positions/msft", params)
	w := httptest.NewRecorder()

	handler.RemovePosition(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	handler.RemovePosition(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for absent position, got %d", w.Code)
	}
}

func TestPortfolioHandler_Value(t *testing.T) {
	t.Run("values positions at fresh quotes", func(t *testing.T) {
		quotes := testutil.NewMockQuoteProvider().WithPrice("AAPL", 150)
		handler, db := setupPortfolioHandler(t, quotes)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewPosition(portfolio.ID).WithSymbol("AAPL").WithShares(10).WithCostBasis(125).Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+portfolio.ID+"/value", map[string]string{"uuid": portfolio.ID})
		w := httptest.NewRecorder()

		handler.Value(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var valuation model.Valuation
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&valuation)

		if valuation.CurrentValue.String() != "1500" {
			t.Errorf("Expected 1500, got %s", valuation.CurrentValue)
		}
	})

	t.Run("rate limited quote returns 429", func(t *testing.T) {
		quotes := testutil.NewMockQuoteProvider().WithError("AAPL", apperrors.ErrRateLimited)
		handler, db := setupPortfolioHandler(t, quotes)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewPosition(portfolio.ID).WithSymbol("AAPL").Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+portfolio.ID+"/value", map[string]string{"uuid": portfolio.ID})
		w := httptest.NewRecorder()

		handler.Value(w, req)

		if w.Code != http.StatusTooManyRequests {
			t.Errorf("Expected 429, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejected quote returns 502", func(t *testing.T) {
		quotes := testutil.NewMockQuoteProvider().WithError("AAPL", apperrors.ErrUpstreamRejected)
		handler, db := setupPortfolioHandler(t, quotes)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewPosition(portfolio.ID).WithSymbol("AAPL").Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+portfolio.ID+"/value", map[string]string{"uuid": portfolio.ID})
		w := httptest.NewRecorder()

		handler.Value(w, req)

		if w.Code != http.StatusBadGateway {
			t.Errorf("Expected 502, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPortfolioHandler_Performance(t *testing.T) {
	t.Run("empty portfolio reports zero return", func(t *testing.T) {
		handler, db := setupPortfolioHandler(t, testutil.NewMockQuoteProvider())
		portfolio := testutil.NewPortfolio().Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+portfolio.ID+"/performance", map[string]string{"uuid": portfolio.ID})
		w := httptest.NewRecorder()

		handler.Performance(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var performance model.Performance
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&performance)

		if performance.Period != "1y" || !performance.TotalReturnPct.IsZero() {
			t.Errorf("Unexpected performance: %+v", performance)
		}
	})

	t.Run("invalid period returns 400", func(t *testing.T) {
		handler, db := setupPortfolioHandler(t, testutil.NewMockQuoteProvider())
		portfolio := testutil.NewPortfolio().Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+portfolio.ID+"/performance?period=7w", map[string]string{"uuid": portfolio.ID})
		w := httptest.NewRecorder()

		handler.Performance(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPortfolioHandler_Overview(t *testing.T) {
	t.Run("requires owner_id", func(t *testing.T) {
		handler, _ := setupPortfolioHandler(t, testutil.NewMockQuoteProvider())

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/overview", nil)
		w := httptest.NewRecorder()

		handler.Overview(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("sums portfolios of owner", func(t *testing.T) {
		quotes := testutil.NewMockQuoteProvider().WithPrice("AAPL", 110)
		handler, db := setupPortfolioHandler(t, quotes)
		p1 := testutil.NewPortfolio().WithOwner("alice").Build(t, db)
		p2 := testutil.NewPortfolio().WithOwner("alice").Build(t, db)
		testutil.NewPosition(p1.ID).WithSymbol("AAPL").Build(t, db)
		testutil.NewPosition(p2.ID).WithSymbol("AAPL").Build(t, db)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/portfolio/overview", map[string]string{"owner_id": "alice"})
		w := httptest.NewRecorder()

		handler.Overview(w, req)

		var overview model.PortfolioOverview
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&overview)

		if overview.PortfolioCount != 2 || overview.CurrentValue.String() != "2200" {
			t.Errorf("Unexpected overview: %+v", overview)
		}
	})
}

func TestPortfolioHandler_History(t *testing.T) {
	handler, db := setupPortfolioHandler(t, testutil.NewMockQuoteProvider())
	portfolio := testutil.NewPortfolio().Build(t, db)
	testutil.NewSnapshot(portfolio.ID).WithDate(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)).Build(t, db)
	testutil.NewSnapshot(portfolio.ID).WithDate(time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)).Build(t, db)

	t.Run("filters by date range", func(t *testing.T) {
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+portfolio.ID+"/history?start_date=2024-01-01&end_date=2024-01-31", map[string]string{"uuid": portfolio.ID})
		w := httptest.NewRecorder()

		handler.History(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var history []model.ValuationSnapshot
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&history)

		if len(history) != 1 {
			t.Errorf("Expected 1 snapshot, got %d", len(history))
		}
	})

	t.Run("inverted range returns 400", func(t *testing.T) {
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+portfolio.ID+"/history?start_date=2024-03-01&end_date=2024-01-31", map[string]string{"uuid": portfolio.ID})
		w := httptest.NewRecorder()

		handler.History(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestPortfolioHandler_Transactions(t *testing.T) {
	handler, _ := setupPortfolioHandler(t, testutil.NewMockQuoteProvider())
	id := testutil.MakeID()

	req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+id+"/transactions", map[string]string{"uuid": id})
	w := httptest.NewRecorder()

	handler.Transactions(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}
}
