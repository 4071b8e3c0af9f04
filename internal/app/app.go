// Package app wires configuration, storage and upstream clients into the
// services shared by the HTTP server and the CLI.
package app

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ndewijer/portfolio-tracker/internal/api"
	"github.com/ndewijer/portfolio-tracker/internal/config"
	"github.com/ndewijer/portfolio-tracker/internal/gemini"
	"github.com/ndewijer/portfolio-tracker/internal/googlenews"
	"github.com/ndewijer/portfolio-tracker/internal/huggingface"
	"github.com/ndewijer/portfolio-tracker/internal/metrics"
	"github.com/ndewijer/portfolio-tracker/internal/newsapi"
	"github.com/ndewijer/portfolio-tracker/internal/repository"
	"github.com/ndewijer/portfolio-tracker/internal/service"
	"github.com/ndewijer/portfolio-tracker/internal/upstream"
	"github.com/ndewijer/portfolio-tracker/internal/yahoo"
)

// NewServices builds every service on top of db. m may be nil.
func NewServices(cfg *config.Config, db *sql.DB, m *metrics.Metrics) (api.Services, error) {
	guardConfig := upstream.DefaultConfig()
	guardConfig.MaxRetries = cfg.Upstream.MaxRetries
	guardConfig.BreakerTimeout = cfg.Upstream.BreakerTimeout
	guard := upstream.NewGuard(guardConfig, m)

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	stockRepo := repository.NewStockRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)

	credentialService, err := service.NewCredentialService(credentialRepo, cfg.Security.EncryptionKey)
	if err != nil {
		return api.Services{}, fmt.Errorf("failed to create credential store: %w", err)
	}
	if !credentialService.Enabled() {
		slog.Warn("credential store disabled, provider tokens come from the environment only")
	}

	// Create upstream clients
	yahooClient := yahoo.NewFinanceClient(yahoo.Config{
		BaseURL: cfg.Market.YahooBaseURL,
		Timeout: cfg.Upstream.Timeout,
	})
	newsAPIClient := newsapi.NewClient(newsapi.Config{
		BaseURL: cfg.News.NewsAPIBaseURL,
		Timeout: cfg.Upstream.Timeout,
		Token:   credentialService.TokenFunc(upstream.ProviderNewsAPI, cfg.News.NewsAPIKey),
	})
	hfClient := huggingface.NewClient(huggingface.Config{
		BaseURL:        cfg.Inference.HuggingFaceBaseURL,
		Timeout:        cfg.Upstream.Timeout,
		Token:          credentialService.TokenFunc(upstream.ProviderHuggingFace, cfg.Inference.HuggingFaceToken),
		SentimentModel: cfg.Inference.SentimentModel,
		SummaryModel:   cfg.Inference.SummaryModel,
	})

	var (
		newsProvider service.NewsProvider = newsAPIClient
		providerName                      = upstream.ProviderNewsAPI
	)
	if cfg.News.Provider == config.NewsProviderGoogleNews {
		newsProvider = googlenews.NewClient(googlenews.Config{
			BaseURL: cfg.News.GoogleNewsBaseURL,
			Timeout: cfg.Upstream.Timeout,
		})
		providerName = upstream.ProviderGoogleNews
	}

	var summarizer service.Summarizer = hfClient
	if cfg.Inference.Summarizer == config.SummarizerGemini {
		summarizer = gemini.NewSummarizer(gemini.Config{
			Model: cfg.Inference.GeminiModel,
			Token: credentialService.TokenFunc(upstream.ProviderGemini, cfg.Inference.GeminiAPIKey),
		})
	}

	// Create services
	marketService := service.NewMarketService(yahooClient, guard, stockRepo)
	svc := api.Services{
		System: service.NewSystemService(db, guard),
		Portfolio: service.NewPortfolioService(
			db,
			portfolioRepo,
			positionRepo,
			transactionRepo,
			snapshotRepo,
			marketService,
			service.PortfolioServiceConfig{
				MergePolicy:          cfg.Portfolio.MergePolicy,
				ValuationConcurrency: cfg.Portfolio.ValuationConcurrency,
			},
			m,
		),
		Market: marketService,
		News: service.NewNewsService(newsProvider, newsAPIClient, guard, service.NewsServiceConfig{
			ProviderName: providerName,
			QueryDelay:   cfg.News.QueryDelay,
			CompareDelay: cfg.News.CompareDelay,
		}),
		Analysis:   service.NewAnalysisService(hfClient, summarizer, guard),
		Credential: credentialService,
		Scheduler: service.NewSchedulerService(
			db,
			portfolioRepo,
			positionRepo,
			stockRepo,
			snapshotRepo,
			marketService,
			m,
		),
	}

	slog.Debug("services created",
		"news_provider", providerName,
		"summarizer", summarizer.Name(),
		"merge_policy", cfg.Portfolio.MergePolicy,
	)
	return svc, nil
}
