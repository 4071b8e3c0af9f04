package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/newsapi"
	"github.com/ndewijer/portfolio-tracker/internal/sentiment"
	"github.com/ndewijer/portfolio-tracker/internal/upstream"
	"github.com/ndewijer/portfolio-tracker/internal/validation"
)

// News query defaults.
const (
	DefaultNewsQuery    = "financial markets"
	DefaultNewsLimit    = 10
	MaxNewsLimit        = 100
	MaxStockNewsResults = 15
	SummaryHeadlines    = 5
)

// marketQueries are searched in order by GetMarketNews.
var marketQueries = []string{"stock market", "Wall Street", "S&P 500"}

// NewsProvider searches a news source for articles matching a query.
type NewsProvider interface {
	Search(ctx context.Context, query string, limit int) ([]model.NewsArticle, error)
}

// NewsTarget names a symbol and optional company for news lookups.
type NewsTarget struct {
	Symbol  string
	Company string
}

// NewsServiceConfig configures a NewsService.
type NewsServiceConfig struct {
	ProviderName string        // breaker name of the search provider
	QueryDelay   time.Duration // pause between query variants
	CompareDelay time.Duration // pause between symbols in Compare
}

// NewsService handles news search and sentiment aggregation.
// Multi-query operations run sequentially with a delay between calls.
type NewsService struct {
	provider     NewsProvider
	newsAPI      *newsapi.Client
	guard        *upstream.Guard
	providerName string
	queryDelay   time.Duration
	compareDelay time.Duration
}

// NewNewsService creates a NewsService. newsAPI serves the headline,
// everything and sources endpoints and may be nil when NewsAPI is not used.
func NewNewsService(provider NewsProvider, newsAPI *newsapi.Client, guard *upstream.Guard, cfg NewsServiceConfig) *NewsService {
	if cfg.ProviderName == "" {
		cfg.ProviderName = upstream.ProviderNewsAPI
	}
	return &NewsService{
		provider:     provider,
		newsAPI:      newsAPI,
		guard:        guard,
		providerName: cfg.ProviderName,
		queryDelay:   cfg.QueryDelay,
		compareDelay: cfg.CompareDelay,
	}
}

func (s *NewsService) search(ctx context.Context, query string, limit int) ([]model.NewsArticle, error) {
	articles, err := upstream.Call(ctx, s.guard, s.providerName, func(ctx context.Context) ([]model.NewsArticle, error) {
		return s.provider.Search(ctx, query, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("news search %q: %w", query, err)
	}
	return articles, nil
}

func normalizeLimit(limit int) (int, error) {
	if limit == 0 {
		return DefaultNewsLimit, nil
	}
	if limit < 1 || limit > MaxNewsLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d: %w", MaxNewsLimit, apperrors.ErrValidation)
	}
	return limit, nil
}

// GetFinancialNews searches for query, defaulting to DefaultNewsQuery.
func (s *NewsService) GetFinancialNews(ctx context.Context, query string, limit int) ([]model.NewsArticle, error) {
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		query = DefaultNewsQuery
	}
	return s.search(ctx, query, limit)
}

// GetCompanyNews searches for articles about a company name or symbol.
func (s *NewsService) GetCompanyNews(ctx context.Context, company string, limit int) ([]model.NewsArticle, error) {
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, fmt.Errorf("company is required: %w", apperrors.ErrValidation)
	}
	return s.search(ctx, company, limit)
}

// GetMarketNews runs the general market queries in order and returns up to
// limit distinct articles.
func (s *NewsService) GetMarketNews(ctx context.Context, limit int) ([]model.NewsArticle, error) {
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}

	var all []model.NewsArticle
	for i, query := range marketQueries {
		if i > 0 {
			if err := sleep(ctx, s.queryDelay); err != nil {
				return nil, err
			}
		}
		articles, err := s.search(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		all = append(all, articles...)
	}

	all = sentiment.Dedupe(all)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// GetStockNews searches the symbol, the company name and both combined,
// and returns at most MaxStockNewsResults articles with distinct titles.
func (s *NewsService) GetStockNews(ctx context.Context, symbol, company string) ([]model.NewsArticle, error) {
	symbol, err := validation.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	queries := []string{symbol}
	if company = strings.TrimSpace(company); company != "" {
		queries = append(queries, company, symbol+" "+company)
	}

	var all []model.NewsArticle
	for i, query := range queries {
		if i > 0 {
			if err := sleep(ctx, s.queryDelay); err != nil {
				return nil, err
			}
		}
		articles, err := s.search(ctx, query, DefaultNewsLimit)
		if err != nil {
			return nil, err
		}
		all = append(all, articles...)
	}

	unique := sentiment.Dedupe(all)
	if len(unique) > MaxStockNewsResults {
		unique = unique[:MaxStockNewsResults]
	}
	return unique, nil
}

// Summary scores the stock news of a symbol. A symbol without any articles
// yields apperrors.ErrNewsNotFound.
func (s *NewsService) Summary(ctx context.Context, symbol, company string) (model.NewsSummary, error) {
	articles, err := s.GetStockNews(ctx, symbol, company)
	if err != nil {
		return model.NewsSummary{}, err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if len(articles) == 0 {
		return model.NewsSummary{}, fmt.Errorf("%w: no news found for %s", apperrors.ErrNewsNotFound, symbol)
	}

	agg := sentiment.Aggregate(articles)
	return model.NewsSummary{
		Symbol:             symbol,
		CompanyName:        strings.TrimSpace(company),
		RecentHeadlines:    sentiment.Headlines(agg.Articles, SummaryHeadlines),
		SentimentAggregate: agg,
	}, nil
}

// Compare summarises each target in turn. Targets without news are left
// out; any other failure aborts the comparison.
func (s *NewsService) Compare(ctx context.Context, targets []NewsTarget) ([]model.SentimentComparison, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("at least one symbol is required: %w", apperrors.ErrValidation)
	}

	rows := make([]model.SentimentComparison, 0, len(targets))
	for i, target := range targets {
		if i > 0 {
			if err := sleep(ctx, s.compareDelay); err != nil {
				return nil, err
			}
		}

		summary, err := s.Summary(ctx, target.Symbol, target.Company)
		if errors.Is(err, apperrors.ErrNewsNotFound) {
			slog.Info("no news for symbol, skipping", "symbol", target.Symbol)
			continue
		}
		if err != nil {
			return nil, err
		}

		rows = append(rows, model.SentimentComparison{
			Symbol:           summary.Symbol,
			CompanyName:      summary.CompanyName,
			TotalArticles:    summary.TotalArticles,
			OverallSentiment: summary.OverallSentiment,
			AverageScore:     summary.AverageScore,
			Positive:         summary.Distribution.Positive,
			Negative:         summary.Distribution.Negative,
			Neutral:          summary.Distribution.Neutral,
		})
	}
	return rows, nil
}

func (s *NewsService) requireNewsAPI() error {
	if s.newsAPI == nil {
		return fmt.Errorf("%s: client not configured: %w", upstream.ProviderNewsAPI, apperrors.ErrCredentialMissing)
	}
	return nil
}

// Headlines returns NewsAPI top headlines.
func (s *NewsService) Headlines(ctx context.Context, params newsapi.HeadlinesParams) (model.NewsPage, error) {
	if err := s.requireNewsAPI(); err != nil {
		return model.NewsPage{}, err
	}
	return upstream.Call(ctx, s.guard, upstream.ProviderNewsAPI, func(ctx context.Context) (model.NewsPage, error) {
		return s.newsAPI.TopHeadlines(ctx, params)
	})
}

// Everything searches every article NewsAPI has indexed.
func (s *NewsService) Everything(ctx context.Context, params newsapi.EverythingParams) (model.NewsPage, error) {
	if err := s.requireNewsAPI(); err != nil {
		return model.NewsPage{}, err
	}
	return upstream.Call(ctx, s.guard, upstream.ProviderNewsAPI, func(ctx context.Context) (model.NewsPage, error) {
		return s.newsAPI.Everything(ctx, params)
	})
}

// Sources lists NewsAPI publishers.
func (s *NewsService) Sources(ctx context.Context, params newsapi.SourcesParams) ([]model.NewsSource, error) {
	if err := s.requireNewsAPI(); err != nil {
		return nil, err
	}
	return upstream.Call(ctx, s.guard, upstream.ProviderNewsAPI, func(ctx context.Context) ([]model.NewsSource, error) {
		return s.newsAPI.Sources(ctx, params)
	})
}

// ParseNewsTargets parses "AAPL:Apple,MSFT" into targets, keeping order and
// dropping repeated symbols.
func ParseNewsTargets(raw string) ([]NewsTarget, error) {
	var targets []NewsTarget
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		symbol, company, _ := strings.Cut(part, ":")
		symbol, err := validation.NormalizeSymbol(symbol)
		if err != nil {
			return nil, err
		}
		if seen[symbol] {
			continue
		}
		seen[symbol] = true
		targets = append(targets, NewsTarget{Symbol: symbol, Company: strings.TrimSpace(company)})
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("at least one symbol is required: %w", apperrors.ErrValidation)
	}
	return targets, nil
}
