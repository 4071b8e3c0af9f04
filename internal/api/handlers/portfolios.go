package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-tracker/internal/api/response"
	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/service"
	"github.com/ndewijer/portfolio-tracker/internal/validation"
)

// PortfolioHandler handles portfolio-related HTTP requests.
// Portfolio IDs are validated by middleware before these handlers run.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Portfolios lists portfolios, optionally filtered by owner.
//
// Endpoint: GET /api/portfolio?owner_id=
// Response: 200 OK with array of model.Portfolio
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.portfolioService.ListPortfolios(r.Context(), r.URL.Query().Get("owner_id"))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePortfolios.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolios)
}

// CreatePortfolio handles POST requests to create an empty portfolio.
//
// Endpoint: POST /api/portfolio
// Request Body: CreatePortfolioRequest (ownerId, name, description)
// Response: 201 Created with model.Portfolio
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if creation fails
func (h *PortfolioHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreatePortfolioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreatePortfolio(req); err != nil {
		respondServiceError(w, "validation failed", err)
		return
	}

	portfolio, err := h.portfolioService.CreatePortfolio(r.Context(), req)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create portfolio", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, portfolio)
}

// GetPortfolio handles GET requests for a single portfolio.
//
// Endpoint: GET /api/portfolio/{uuid}
// Response: 200 OK with model.Portfolio
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolioService.GetPortfolio(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrievePortfolios.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// DeletePortfolio removes a portfolio with its positions, transactions and snapshots.
//
// Endpoint: DELETE /api/portfolio/{uuid}
// Response: 204 No Content on successful deletion
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	if err := h.portfolioService.DeletePortfolio(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, "failed to delete portfolio", err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Positions lists the positions of a portfolio.
//
// Endpoint: GET /api/portfolio/{uuid}/positions
// Response: 200 OK with array of model.Position
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) Positions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.portfolioService.GetPositions(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrievePositions.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, positions)
}

// AddPosition buys shares of a symbol into a portfolio. A held symbol is
// merged or rejected according to the configured merge policy.
//
// Endpoint: POST /api/portfolio/{uuid}/positions
// Request Body: AddPositionRequest (symbol, shares, price, acquiredAt)
// Response: 201 Created with the resulting model.Position
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the portfolio does not exist
// Error: 409 Conflict if the symbol is held and merging is disabled
func (h *PortfolioHandler) AddPosition(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.AddPositionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	position, err := h.portfolioService.AddPosition(r.Context(), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, "failed to add position", err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, position)
}

// RemovePosition sells the whole position held in a symbol.
//
// Endpoint: DELETE /api/portfolio/{uuid}/positions/{symbol}
// Response: 204 No Content on success
// Error: 404 Not Found if the portfolio or position does not exist
func (h *PortfolioHandler) RemovePosition(w http.ResponseWriter, r *http.Request) {
	err := h.portfolioService.RemovePosition(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "symbol"))
	if err != nil {
		respondServiceError(w, "failed to remove position", err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Value prices every position at a fresh quote.
//
// Endpoint: GET /api/portfolio/{uuid}/value
// Response: 200 OK with model.Valuation
// Error: 404 Not Found if the portfolio does not exist
// Error: 429/502/503 if a quote cannot be fetched
func (h *PortfolioHandler) Value(w http.ResponseWriter, r *http.Request) {
	valuation, err := h.portfolioService.GetValuation(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToValuePortfolio.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, valuation)
}

// Performance reports the return of a portfolio against its cost basis.
//
// Endpoint: GET /api/portfolio/{uuid}/performance?period=
// Response: 200 OK with model.Performance
// Error: 400 Bad Request if period is not a valid range
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) Performance(w http.ResponseWriter, r *http.Request) {
	performance, err := h.portfolioService.GetPerformance(r.Context(), chi.URLParam(r, "uuid"), r.URL.Query().Get("period"))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToValuePortfolio.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, performance)
}

// Overview sums the valuations of every portfolio an owner holds.
//
// Endpoint: GET /api/portfolio/overview?owner_id=
// Response: 200 OK with model.PortfolioOverview
// Error: 400 Bad Request if owner_id is missing
func (h *PortfolioHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.portfolioService.GetOverview(r.Context(), r.URL.Query().Get("owner_id"))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToValuePortfolio.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, overview)
}

// Transactions lists the position audit trail of a portfolio.
//
// Endpoint: GET /api/portfolio/{uuid}/transactions
// Response: 200 OK with array of model.Transaction
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.portfolioService.GetTransactions(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveTransactions.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// History returns stored daily valuation snapshots. A missing start_date
// means all history, a missing end_date means today.
//
// Endpoint: GET /api/portfolio/{uuid}/history?start_date=&end_date=
// Response: 200 OK with array of model.ValuationSnapshot
// Error: 400 Bad Request if a date is malformed or the range is inverted
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) History(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := parseDateRange(r, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		respondServiceError(w, "invalid date range", err)
		return
	}

	history, err := h.portfolioService.GetHistory(r.Context(), chi.URLParam(r, "uuid"), startDate, endDate)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToGetPortfolioHistory.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, history)
}
