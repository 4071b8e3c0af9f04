package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/ndewijer/portfolio-tracker/internal/config"
	"github.com/ndewijer/portfolio-tracker/internal/repository"
	"github.com/ndewijer/portfolio-tracker/internal/service"
	"github.com/ndewijer/portfolio-tracker/internal/yahoo"
)

// NewTestPortfolioService creates a PortfolioService using the average
// merge policy and the given quote provider.
func NewTestPortfolioService(t *testing.T, db *sql.DB, quotes service.QuoteProvider) *service.PortfolioService {
	t.Helper()
	return NewTestPortfolioServiceWithPolicy(t, db, quotes, config.MergeAverage)
}

// NewTestPortfolioServiceWithPolicy creates a PortfolioService with a
// specific merge policy.
func NewTestPortfolioServiceWithPolicy(t *testing.T, db *sql.DB, quotes service.QuoteProvider, policy string) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(
		db,
		repository.NewPortfolioRepository(db),
		repository.NewPositionRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewSnapshotRepository(db),
		quotes,
		service.PortfolioServiceConfig{MergePolicy: policy, ValuationConcurrency: 2},
		nil,
	)
}

// NewTestMarketService creates a MarketService backed by a mock Yahoo client
// without circuit breakers.
func NewTestMarketService(t *testing.T, db *sql.DB, mockYahoo yahoo.Client) *service.MarketService {
	t.Helper()
	return service.NewMarketService(mockYahoo, nil, repository.NewStockRepository(db))
}

// NewTestNewsService creates a NewsService with no delays between queries.
func NewTestNewsService(t *testing.T, provider service.NewsProvider) *service.NewsService {
	t.Helper()
	return service.NewNewsService(provider, nil, nil, service.NewsServiceConfig{})
}

// NewTestSchedulerService creates a SchedulerService with the given quotes.
func NewTestSchedulerService(t *testing.T, db *sql.DB, quotes service.QuoteProvider) *service.SchedulerService {
	t.Helper()

	return service.NewSchedulerService(
		db,
		repository.NewPortfolioRepository(db),
		repository.NewPositionRepository(db),
		repository.NewStockRepository(db),
		repository.NewSnapshotRepository(db),
		quotes,
		nil,
	)
}

// NewTestCredentialService creates an enabled CredentialService with a
// freshly generated key.
func NewTestCredentialService(t *testing.T, db *sql.DB) *service.CredentialService {
	t.Helper()

	svc, err := service.NewCredentialService(repository.NewCredentialRepository(db), MakeEncryptionKey(t))
	if err != nil {
		t.Fatalf("Failed to create credential service: %v", err)
	}
	return svc
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()
	return service.NewSystemService(db, nil)
}

// MakeEncryptionKey generates a base64 fernet key.
func MakeEncryptionKey(t *testing.T) string {
	t.Helper()

	var key fernet.Key
	if err := key.Generate(); err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	return key.Encode()
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol generates a stock ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("AAPL")
//	// Returns: "AAPL1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakePortfolioName generates a unique portfolio name for testing.
//
// Example usage:
//
//	name := testutil.MakePortfolioName("MyPortfolio")
//	// Returns: "MyPortfolio ABC123"
func MakePortfolioName(base string) string {
	if base == "" {
		base = "Portfolio"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
