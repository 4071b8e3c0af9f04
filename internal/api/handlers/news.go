package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-tracker/internal/api/response"
	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/service"
)

// NewsHandler handles news search and sentiment endpoints.
type NewsHandler struct {
	newsService   *service.NewsService
	marketService *service.MarketService
}

// NewNewsHandler creates a new NewsHandler. marketService supplies stored
// company names when a request does not name the company.
func NewNewsHandler(newsService *service.NewsService, marketService *service.MarketService) *NewsHandler {
	return &NewsHandler{
		newsService:   newsService,
		marketService: marketService,
	}
}

// News searches financial news.
//
// Endpoint: GET /api/news?query=&limit=
// Response: 200 OK with []model.NewsArticle
// Error: 400 Bad Request if limit is out of range
func (h *NewsHandler) News(w http.ResponseWriter, r *http.Request) {
	limit, err := request.ParseLimit(r.URL.Query())
	if err != nil {
		respondServiceError(w, "invalid limit", err)
		return
	}

	articles, err := h.newsService.GetFinancialNews(r.Context(), r.URL.Query().Get("query"), limit)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveNews.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, articles)
}

// CompanyNews searches news mentioning a company.
//
// Endpoint: GET /api/news/company/{company}?limit=
// Response: 200 OK with []model.NewsArticle
func (h *NewsHandler) CompanyNews(w http.ResponseWriter, r *http.Request) {
	limit, err := request.ParseLimit(r.URL.Query())
	if err != nil {
		respondServiceError(w, "invalid limit", err)
		return
	}

	articles, err := h.newsService.GetCompanyNews(r.Context(), chi.URLParam(r, "company"), limit)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveNews.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, articles)
}

// MarketNews returns deduplicated general market news.
//
// Endpoint: GET /api/news/market?limit=
// Response: 200 OK with []model.NewsArticle
func (h *NewsHandler) MarketNews(w http.ResponseWriter, r *http.Request) {
	limit, err := request.ParseLimit(r.URL.Query())
	if err != nil {
		respondServiceError(w, "invalid limit", err)
		return
	}

	articles, err := h.newsService.GetMarketNews(r.Context(), limit)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveNews.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, articles)
}

// StockNews returns news about a symbol.
//
// Endpoint: GET /api/news/stock/{symbol}?company=
// Response: 200 OK with []model.NewsArticle
// Error: 400 Bad Request if the symbol is malformed
func (h *NewsHandler) StockNews(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	articles, err := h.newsService.GetStockNews(r.Context(), symbol, h.company(r, symbol))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveNews.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, articles)
}

// Summary scores the news of a symbol.
//
// Endpoint: GET /api/news/summary/{symbol}?company=
// Response: 200 OK with model.NewsSummary
// Error: 404 Not Found if no articles mention the symbol
func (h *NewsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	summary, err := h.newsService.Summary(r.Context(), symbol, h.company(r, symbol))
	if err != nil {
		respondServiceError(w, "failed to summarize news", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// Compare ranks the news sentiment of several symbols.
//
// Endpoint: GET /api/news/compare?symbols=AAPL:Apple,MSFT
// Response: 200 OK with []model.SentimentComparison
// Error: 400 Bad Request if symbols is empty or malformed
func (h *NewsHandler) Compare(w http.ResponseWriter, r *http.Request) {
	targets, err := service.ParseNewsTargets(r.URL.Query().Get("symbols"))
	if err != nil {
		respondServiceError(w, "invalid symbols", err)
		return
	}
	for i := range targets {
		if targets[i].Company == "" && h.marketService != nil {
			targets[i].Company = h.marketService.CompanyName(r.Context(), targets[i].Symbol)
		}
	}

	rows, err := h.newsService.Compare(r.Context(), targets)
	if err != nil {
		respondServiceError(w, "failed to compare news sentiment", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, rows)
}

// Headlines proxies NewsAPI top headlines.
//
// Endpoint: GET /api/news/headlines?q=&sources=&category=&country=&language=&page_size=&page=
// Response: 200 OK with model.NewsPage
// Error: 400 Bad Request if sources is combined with country or category
// Error: 503 Service Unavailable if no NewsAPI token is configured
func (h *NewsHandler) Headlines(w http.ResponseWriter, r *http.Request) {
	params, err := request.ParseHeadlinesParams(r.URL.Query())
	if err != nil {
		respondServiceError(w, "invalid headline parameters", err)
		return
	}

	page, err := h.newsService.Headlines(r.Context(), params)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveNews.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, page)
}

// Everything proxies the NewsAPI article search.
//
// Endpoint: GET /api/news/everything?q=&sources=&domains=&from=&to=&language=&sort_by=&page_size=&page=
// Response: 200 OK with model.NewsPage
func (h *NewsHandler) Everything(w http.ResponseWriter, r *http.Request) {
	params, err := request.ParseEverythingParams(r.URL.Query())
	if err != nil {
		respondServiceError(w, "invalid search parameters", err)
		return
	}

	page, err := h.newsService.Everything(r.Context(), params)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveNews.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, page)
}

// Sources lists NewsAPI publishers.
//
// Endpoint: GET /api/news/sources?category=&language=&country=
// Response: 200 OK with []model.NewsSource
func (h *NewsHandler) Sources(w http.ResponseWriter, r *http.Request) {
	params, err := request.ParseSourcesParams(r.URL.Query())
	if err != nil {
		respondServiceError(w, "invalid source parameters", err)
		return
	}

	sources, err := h.newsService.Sources(r.Context(), params)
	if err != nil {
		respondServiceError(w, "failed to retrieve news sources", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, sources)
}

// company returns the company query parameter, or the stored name of the
// symbol when it is omitted.
func (h *NewsHandler) company(r *http.Request, symbol string) string {
	if company := r.URL.Query().Get("company"); company != "" {
		return company
	}
	if h.marketService == nil {
		return ""
	}
	return h.marketService.CompanyName(r.Context(), symbol)
}
