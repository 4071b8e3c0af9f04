package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// MockQuoteProvider is a mock implementation of service.QuoteProvider.
// Symbols without a configured price or error return ErrSymbolNotFound.
// It is safe for concurrent use.
type MockQuoteProvider struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	errors map[string]error
	calls  map[string]int
}

// NewMockQuoteProvider creates an empty MockQuoteProvider.
func NewMockQuoteProvider() *MockQuoteProvider {
	return &MockQuoteProvider{
		prices: make(map[string]decimal.Decimal),
		errors: make(map[string]error),
		calls:  make(map[string]int),
	}
}

// WithPrice configures the quote of a symbol.
func (m *MockQuoteProvider) WithPrice(symbol string, price float64) *MockQuoteProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = decimal.NewFromFloat(price)
	return m
}

// WithError makes quotes for symbol fail with err.
func (m *MockQuoteProvider) WithError(symbol string, err error) *MockQuoteProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[symbol] = err
	return m
}

// GetQuote returns the configured quote, dated yesterday.
func (m *MockQuoteProvider) GetQuote(_ context.Context, symbol string) (model.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[symbol]++
	if err, ok := m.errors[symbol]; ok {
		return model.Quote{}, err
	}
	price, ok := m.prices[symbol]
	if !ok {
		return model.Quote{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}
	return model.Quote{
		Symbol:   symbol,
		Price:    price,
		Currency: "USD",
		AsOf:     time.Now().UTC().AddDate(0, 0, -1),
	}, nil
}

// Calls returns how often symbol was quoted.
func (m *MockQuoteProvider) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

// TotalCalls returns the number of GetQuote calls across all symbols.
func (m *MockQuoteProvider) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// MockNewsProvider is a mock implementation of service.NewsProvider.
// Queries without configured articles return an empty list.
type MockNewsProvider struct {
	Articles map[string][]model.NewsArticle
	Errors   map[string]error
	Queries  []string
}

// NewMockNewsProvider creates an empty MockNewsProvider.
func NewMockNewsProvider() *MockNewsProvider {
	return &MockNewsProvider{
		Articles: make(map[string][]model.NewsArticle),
		Errors:   make(map[string]error),
	}
}

// WithArticles configures the result of a query. Titles become articles
// with the query recorded.
func (m *MockNewsProvider) WithArticles(query string, titles ...string) *MockNewsProvider {
	for _, title := range titles {
		m.Articles[query] = append(m.Articles[query], model.NewsArticle{
			Source: "Test Wire",
			Title:  title,
			URL:    "https://example.com/" + MakeID(),
			Query:  query,
		})
	}
	return m
}

// WithError makes a query fail with err.
func (m *MockNewsProvider) WithError(query string, err error) *MockNewsProvider {
	m.Errors[query] = err
	return m
}

// Search records the query and returns up to limit configured articles.
func (m *MockNewsProvider) Search(_ context.Context, query string, limit int) ([]model.NewsArticle, error) {
	m.Queries = append(m.Queries, query)
	if err, ok := m.Errors[query]; ok {
		return nil, err
	}
	articles := m.Articles[query]
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

// MockClassifier is a mock implementation of service.Classifier.
type MockClassifier struct {
	Labels []model.Classification
	Err    error
	Calls  int
}

// Classify returns the configured labels.
func (m *MockClassifier) Classify(_ context.Context, _ string) ([]model.Classification, error) {
	m.Calls++
	return m.Labels, m.Err
}

// MockSummarizer is a mock implementation of service.Summarizer.
type MockSummarizer struct {
	Backend string
	Result  string
	Err     error
	Calls   int
}

// Summarize returns the configured summary.
func (m *MockSummarizer) Summarize(_ context.Context, _ string) (string, error) {
	m.Calls++
	return m.Result, m.Err
}

// Name returns the configured backend name.
func (m *MockSummarizer) Name() string {
	if m.Backend == "" {
		return "mock"
	}
	return m.Backend
}
