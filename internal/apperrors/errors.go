package apperrors

import (
	"errors"
	"fmt"
)

// Category errors. Every domain error below wraps exactly one of these so
// callers can classify failures with errors.Is without knowing the entity.
var (
	// ErrValidation indicates the caller supplied invalid input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrUpstreamUnavailable indicates a provider could not be reached, answered
	// with a server error, or its circuit breaker is open.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrRateLimited indicates a provider refused the call because of rate limiting.
	ErrRateLimited = errors.New("upstream rate limited")

	// ErrUpstreamRejected indicates a provider rejected the request (4xx other than 404/429).
	ErrUpstreamRejected = errors.New("upstream rejected request")
)

// Domain entity errors represent missing entities in the system.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = fmt.Errorf("portfolio %w", ErrNotFound)

	// ErrPositionNotFound indicates the portfolio holds no position in the symbol.
	ErrPositionNotFound = fmt.Errorf("position %w", ErrNotFound)

	// ErrSymbolNotFound indicates that a symbol lookup returned no results
	ErrSymbolNotFound = fmt.Errorf("symbol %w", ErrNotFound)

	// ErrNewsNotFound indicates a news search produced no articles.
	ErrNewsNotFound = fmt.Errorf("news %w", ErrNotFound)

	// ErrCredentialNotFound indicates no stored credential exists for a provider.
	ErrCredentialNotFound = fmt.Errorf("credential %w", ErrNotFound)
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrPositionExists is returned when the merge policy rejects adding to a held symbol.
	ErrPositionExists = fmt.Errorf("position already exists: %w", ErrDuplicateEntry)

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = fmt.Errorf("invalid date range: %w", ErrValidation)

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = fmt.Errorf("invalid UUID format: %w", ErrValidation)

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = fmt.Errorf("ID cannot be empty: %w", ErrValidation)

	ErrInvalidSymbol = fmt.Errorf("invalid symbol: %w", ErrValidation)
	ErrInvalidPeriod = fmt.Errorf("invalid period: %w", ErrValidation)
	ErrEmptyText     = fmt.Errorf("text cannot be empty: %w", ErrValidation)

	// ErrInsufficientHistory indicates too few price bars to compute metrics.
	ErrInsufficientHistory = fmt.Errorf("insufficient price history: %w", ErrValidation)
)

// Upstream and configuration errors.
var (
	// ErrQuoteUnavailable indicates a quote needed for a valuation could not be fetched.
	// It is always joined with the underlying cause.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrCredentialMissing indicates no API token is configured for a provider.
	ErrCredentialMissing = errors.New("credential missing")

	// ErrCredentialStoreDisabled indicates no encryption key was configured.
	ErrCredentialStoreDisabled = errors.New("credential store disabled")
)

// Operation failure errors used as stable client-facing messages.
var (
	ErrFailedToRetrievePortfolios   = errors.New("failed to retrieve portfolios")
	ErrFailedToRetrievePositions    = errors.New("failed to retrieve positions")
	ErrFailedToValuePortfolio       = errors.New("failed to value portfolio")
	ErrFailedToGetPortfolioHistory  = errors.New("failed to get portfolio history")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveQuote        = errors.New("failed to retrieve quote")
	ErrFailedToRetrieveNews         = errors.New("failed to retrieve news")
	ErrFailedToAnalyze              = errors.New("failed to analyze text")
	ErrFailedToRefreshPrices        = errors.New("failed to refresh prices")
)
