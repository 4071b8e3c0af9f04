package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ndewijer/portfolio-tracker/internal/api/handlers"
	custommiddleware "github.com/ndewijer/portfolio-tracker/internal/api/middleware"
	"github.com/ndewijer/portfolio-tracker/internal/config"
	"github.com/ndewijer/portfolio-tracker/internal/metrics"
	"github.com/ndewijer/portfolio-tracker/internal/service"
)

// Services bundles the services the HTTP API is built on.
type Services struct {
	System     *service.SystemService
	Portfolio  *service.PortfolioService
	Market     *service.MarketService
	News       *service.NewsService
	Analysis   *service.AnalysisService
	Credential *service.CredentialService
	Scheduler  *service.SchedulerService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, m *metrics.Metrics, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(m))
	r.Use(middleware.Recoverer)

	r.Use(custommiddleware.CORS(cfg.CORS.AllowedOrigins))

	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
			r.Get("/breakers", systemHandler.Breakers)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio)
			r.Get("/", portfolioHandler.Portfolios)
			r.Post("/", portfolioHandler.CreatePortfolio)
			r.Get("/overview", portfolioHandler.Overview)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", portfolioHandler.GetPortfolio)
				r.Delete("/", portfolioHandler.DeletePortfolio)
				r.Get("/positions", portfolioHandler.Positions)
				r.Post("/positions", portfolioHandler.AddPosition)
				r.Delete("/positions/{symbol}", portfolioHandler.RemovePosition)
				r.Get("/value", portfolioHandler.Value)
				r.Get("/performance", portfolioHandler.Performance)
				r.Get("/transactions", portfolioHandler.Transactions)
				r.Get("/history", portfolioHandler.History)
			})
		})

		r.Route("/market", func(r chi.Router) {
			marketHandler := handlers.NewMarketHandler(svc.Market, svc.Scheduler)
			r.Get("/quote/{symbol}", marketHandler.Quote)
			r.Get("/history/{symbol}", marketHandler.History)
			r.Get("/info/{symbol}", marketHandler.Info)
			r.Get("/metrics/{symbol}", marketHandler.Metrics)
			r.Get("/stocks", marketHandler.Stocks)
			r.Get("/prices/{symbol}", marketHandler.StoredPrices)
			r.Post("/prices/{symbol}/backfill", marketHandler.Backfill)
			r.Post("/refresh", marketHandler.Refresh)
		})

		r.Route("/news", func(r chi.Router) {
			newsHandler := handlers.NewNewsHandler(svc.News, svc.Market)
			r.Get("/", newsHandler.News)
			r.Get("/company/{company}", newsHandler.CompanyNews)
			r.Get("/market", newsHandler.MarketNews)
			r.Get("/stock/{symbol}", newsHandler.StockNews)
			r.Get("/summary/{symbol}", newsHandler.Summary)
			r.Get("/compare", newsHandler.Compare)
			r.Get("/headlines", newsHandler.Headlines)
			r.Get("/everything", newsHandler.Everything)
			r.Get("/sources", newsHandler.Sources)
		})

		r.Route("/analysis", func(r chi.Router) {
			analysisHandler := handlers.NewAnalysisHandler(svc.Analysis)
			r.Post("/sentiment", analysisHandler.Sentiment)
			r.Post("/sentiment/model", analysisHandler.ModelSentiment)
			r.Post("/summarize", analysisHandler.Summarize)
		})

		r.Route("/credentials", func(r chi.Router) {
			credentialHandler := handlers.NewCredentialHandler(svc.Credential)

			// Without an internal key the store is read-only over HTTP.
			if cfg.Security.InternalAPIKey == "" {
				r.Get("/", credentialHandler.Credentials)
				return
			}
			r.Use(custommiddleware.APIKey(cfg.Security.InternalAPIKey))
			r.Get("/", credentialHandler.Credentials)
			r.Put("/{provider}", credentialHandler.SetCredential)
			r.Delete("/{provider}", credentialHandler.DeleteCredential)
		})
	})

	return r
}
