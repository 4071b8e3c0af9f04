package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-tracker/internal/api/response"
	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/service"
)

// MarketHandler handles quote, history and stored price endpoints.
type MarketHandler struct {
	marketService    *service.MarketService
	schedulerService *service.SchedulerService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketService *service.MarketService, schedulerService *service.SchedulerService) *MarketHandler {
	return &MarketHandler{
		marketService:    marketService,
		schedulerService: schedulerService,
	}
}

// Quote returns the latest price of a symbol.
//
// Endpoint: GET /api/market/quote/{symbol}
// Response: 200 OK with model.Quote
// Error: 400 Bad Request if the symbol is malformed
// Error: 404 Not Found if Yahoo does not know the symbol
// Error: 429/502/503 on upstream failures
func (h *MarketHandler) Quote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.marketService.GetQuote(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveQuote.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, quote)
}

// History returns daily bars for a chart range.
//
// Endpoint: GET /api/market/history/{symbol}?period=
// Response: 200 OK with model.PriceHistory
// Error: 400 Bad Request if the symbol or period is invalid
func (h *MarketHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.marketService.GetHistory(r.Context(), chi.URLParam(r, "symbol"), r.URL.Query().Get("period"))
	if err != nil {
		respondServiceError(w, "failed to retrieve price history", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, history)
}

// Info returns company details and stores them in the stock table.
//
// Endpoint: GET /api/market/info/{symbol}
// Response: 200 OK with model.CompanyInfo
func (h *MarketHandler) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.marketService.GetCompanyInfo(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		respondServiceError(w, "failed to retrieve company info", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, info)
}

// Metrics returns return, volatility, Sharpe ratio and drawdown over a period.
//
// Endpoint: GET /api/market/metrics/{symbol}?period=
// Response: 200 OK with model.StockMetrics
// Error: 400 Bad Request if there are fewer than two bars
func (h *MarketHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.marketService.GetMetrics(r.Context(), chi.URLParam(r, "symbol"), r.URL.Query().Get("period"))
	if err != nil {
		respondServiceError(w, "failed to calculate metrics", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, metrics)
}

// Stocks lists every stock whose company info has been stored.
//
// Endpoint: GET /api/market/stocks
// Response: 200 OK with array of model.Stock
func (h *MarketHandler) Stocks(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.marketService.ListStocks(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve stocks", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, stocks)
}

// StoredPrices returns stored daily closes. Without start_date the last
// 30 days are returned.
//
// Endpoint: GET /api/market/prices/{symbol}?start_date=&end_date=
// Response: 200 OK with array of model.StoredPrice
// Error: 400 Bad Request if a date is malformed or the range is inverted
func (h *MarketHandler) StoredPrices(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := parseDateRange(r, time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -30))
	if err != nil {
		respondServiceError(w, "invalid date range", err)
		return
	}

	prices, err := h.marketService.GetStoredPrices(r.Context(), chi.URLParam(r, "symbol"), startDate, endDate)
	if err != nil {
		respondServiceError(w, "failed to retrieve stored prices", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, prices)
}

// BackfillResponse reports how many prices a backfill stored.
type BackfillResponse struct {
	Symbol string `json:"symbol"`
	Added  int    `json:"added"`
}

// Backfill stores missing daily closes for a date range.
//
// Endpoint: POST /api/market/prices/{symbol}/backfill?start_date=&end_date=
// Response: 200 OK with BackfillResponse
// Error: 400 Bad Request if start_date is missing or the range is invalid
func (h *MarketHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("start_date") == "" {
		response.RespondError(w, http.StatusBadRequest, "validation failed", "start_date is required")
		return
	}

	startDate, endDate, err := parseDateRange(r, time.Time{})
	if err != nil {
		respondServiceError(w, "invalid date range", err)
		return
	}

	symbol := chi.URLParam(r, "symbol")
	added, err := h.marketService.BackfillPrices(r.Context(), symbol, startDate, endDate)
	if err != nil {
		respondServiceError(w, "failed to backfill prices", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, BackfillResponse{Symbol: strings.ToUpper(strings.TrimSpace(symbol)), Added: added})
}

// Refresh runs the scheduled price refresh immediately. Symbols that fail
// are listed in the result; only storage failures return an error status.
//
// Endpoint: POST /api/market/refresh
// Response: 200 OK with model.PriceRefreshResult
// Error: 500 Internal Server Error if prices or snapshots cannot be stored
func (h *MarketHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.schedulerService.RunOnce(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRefreshPrices.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
