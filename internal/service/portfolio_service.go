package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/portfolio-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/calc"
	"github.com/ndewijer/portfolio-tracker/internal/config"
	"github.com/ndewijer/portfolio-tracker/internal/metrics"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/repository"
	"github.com/ndewijer/portfolio-tracker/internal/validation"
)

// QuoteProvider returns a fresh quote for a symbol. Implementations must not
// serve cached prices.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
}

// PortfolioServiceConfig holds position and valuation behaviour.
type PortfolioServiceConfig struct {
	MergePolicy          string // config.MergeAverage or config.MergeReject
	ValuationConcurrency int
}

// PortfolioService handles portfolio-related business logic operations.
// It owns position bookkeeping and values portfolios against live quotes.
type PortfolioService struct {
	db              *sql.DB
	portfolioRepo   *repository.PortfolioRepository
	positionRepo    *repository.PositionRepository
	transactionRepo *repository.TransactionRepository
	snapshotRepo    *repository.SnapshotRepository
	quotes          QuoteProvider
	config          PortfolioServiceConfig
	metrics         *metrics.Metrics
}

// NewPortfolioService creates a new PortfolioService with the provided repository dependencies.
// m may be nil.
func NewPortfolioService(
	db *sql.DB,
	portfolioRepo *repository.PortfolioRepository,
	positionRepo *repository.PositionRepository,
	transactionRepo *repository.TransactionRepository,
	snapshotRepo *repository.SnapshotRepository,
	quotes QuoteProvider,
	cfg PortfolioServiceConfig,
	m *metrics.Metrics,
) *PortfolioService {
	if cfg.MergePolicy == "" {
		cfg.MergePolicy = config.MergeAverage
	}
	if cfg.ValuationConcurrency < 1 {
		cfg.ValuationConcurrency = 4
	}
	return &PortfolioService{
		db:              db,
		portfolioRepo:   portfolioRepo,
		positionRepo:    positionRepo,
		transactionRepo: transactionRepo,
		snapshotRepo:    snapshotRepo,
		quotes:          quotes,
		config:          cfg,
		metrics:         m,
	}
}

// CreatePortfolio stores a new, empty portfolio.
func (s *PortfolioService) CreatePortfolio(ctx context.Context, req request.CreatePortfolioRequest) (model.Portfolio, error) {
	portfolio := model.Portfolio{
		ID:          uuid.New().String(),
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}

	if err := s.portfolioRepo.InsertPortfolio(ctx, portfolio); err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to create portfolio: %w", err)
	}
	return portfolio, nil
}

// GetPortfolio retrieves a single portfolio by ID.
func (s *PortfolioService) GetPortfolio(ctx context.Context, portfolioID string) (model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolio(ctx, portfolioID)
}

// ListPortfolios returns the portfolios of an owner, or every portfolio
// when ownerID is empty.
func (s *PortfolioService) ListPortfolios(ctx context.Context, ownerID string) ([]model.Portfolio, error) {
	return s.portfolioRepo.ListPortfolios(ctx, ownerID)
}

// DeletePortfolio removes a portfolio with its positions, transactions and snapshots.
func (s *PortfolioService) DeletePortfolio(ctx context.Context, portfolioID string) error {
	return s.portfolioRepo.DeletePortfolio(ctx, portfolioID)
}

// GetPositions returns the positions of a portfolio ordered by symbol.
func (s *PortfolioService) GetPositions(ctx context.Context, portfolioID string) ([]model.Position, error) {
	if _, err := s.portfolioRepo.GetPortfolio(ctx, portfolioID); err != nil {
		return nil, err
	}
	return s.positionRepo.GetPositions(ctx, portfolioID)
}

// AddPosition buys shares of a symbol into a portfolio.
//
// A symbol that is already held is merged according to the merge policy:
// with "average" the shares are summed, the cost basis becomes the
// share-weighted average and the earliest acquisition date is kept; with
// "reject" the call fails with apperrors.ErrPositionExists.
//
// The position change and its "add" transaction are written in one
// database transaction.
func (s *PortfolioService) AddPosition(ctx context.Context, portfolioID string, req request.AddPositionRequest) (model.Position, error) {
	if err := validation.ValidateAddPosition(req); err != nil {
		return model.Position{}, err
	}
	symbol, err := validation.NormalizeSymbol(req.Symbol)
	if err != nil {
		return model.Position{}, err
	}

	now := time.Now().UTC()
	acquiredAt := now.Truncate(24 * time.Hour)
	if req.AcquiredAt != "" {
		acquiredAt, err = validation.ParseDate("acquiredAt", req.AcquiredAt)
		if err != nil {
			return model.Position{}, err
		}
	}
	shares, price := *req.Shares, *req.Price

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Position{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := s.portfolioRepo.WithTx(tx).GetPortfolio(ctx, portfolioID); err != nil {
		return model.Position{}, err
	}

	positionRepo := s.positionRepo.WithTx(tx)
	existing, err := positionRepo.GetPosition(ctx, portfolioID, symbol)

	var position model.Position
	switch {
	case errors.Is(err, apperrors.ErrPositionNotFound):
		position = model.Position{
			ID:                uuid.New().String(),
			PortfolioID:       portfolioID,
			Symbol:            symbol,
			Shares:            shares,
			CostBasisPerShare: price,
			AcquiredAt:        acquiredAt,
		}
		if err := positionRepo.InsertPosition(ctx, position); err != nil {
			return model.Position{}, err
		}

	case err != nil:
		return model.Position{}, err

	case s.config.MergePolicy == config.MergeReject:
		return model.Position{}, fmt.Errorf("%w: %s", apperrors.ErrPositionExists, symbol)

	default:
		position = mergePosition(existing, shares, price, acquiredAt)
		if err := positionRepo.UpdatePosition(ctx, position); err != nil {
			return model.Position{}, err
		}
	}

	err = s.transactionRepo.WithTx(tx).InsertTransaction(ctx, model.Transaction{
		ID:          uuid.New().String(),
		PortfolioID: portfolioID,
		Symbol:      symbol,
		Type:        model.TransactionAdd,
		Shares:      shares,
		Price:       price,
		Date:        acquiredAt,
		CreatedAt:   now,
	})
	if err != nil {
		return model.Position{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Position{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("position added",
		"portfolio_id", portfolioID,
		"symbol", symbol,
		"shares", shares.String(),
		"merged", position.ID == existing.ID)

	return position, nil
}

// mergePosition adds shares bought at price to an existing position.
func mergePosition(existing model.Position, shares, price decimal.Decimal, acquiredAt time.Time) model.Position {
	totalShares := existing.Shares.Add(shares)
	totalCost := existing.InvestedValue().Add(shares.Mul(price))

	merged := existing
	merged.Shares = totalShares
	merged.CostBasisPerShare = calc.SafeDivideDecimal(totalCost, totalShares, decimal.Zero)
	if acquiredAt.Before(existing.AcquiredAt) {
		merged.AcquiredAt = acquiredAt
	}
	return merged
}

// RemovePosition sells the whole position a portfolio holds in symbol and
// records a "remove" transaction at the held cost basis.
// Returns ErrPositionNotFound if the symbol is not held.
func (s *PortfolioService) RemovePosition(ctx context.Context, portfolioID, symbol string) error {
	symbol, err := validation.NormalizeSymbol(symbol)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := s.portfolioRepo.WithTx(tx).GetPortfolio(ctx, portfolioID); err != nil {
		return err
	}

	positionRepo := s.positionRepo.WithTx(tx)
	position, err := positionRepo.GetPosition(ctx, portfolioID, symbol)
	if err != nil {
		return err
	}
	if err := positionRepo.DeletePosition(ctx, portfolioID, symbol); err != nil {
		return err
	}

	now := time.Now().UTC()
	err = s.transactionRepo.WithTx(tx).InsertTransaction(ctx, model.Transaction{
		ID:          uuid.New().String(),
		PortfolioID: portfolioID,
		Symbol:      symbol,
		Type:        model.TransactionRemove,
		Shares:      position.Shares,
		Price:       position.CostBasisPerShare,
		Date:        now.Truncate(24 * time.Hour),
		CreatedAt:   now,
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("position removed", "portfolio_id", portfolioID, "symbol", symbol)
	return nil
}

// GetTransactions returns the position audit trail of a portfolio.
func (s *PortfolioService) GetTransactions(ctx context.Context, portfolioID string) ([]model.Transaction, error) {
	if _, err := s.portfolioRepo.GetPortfolio(ctx, portfolioID); err != nil {
		return nil, err
	}
	return s.transactionRepo.GetTransactions(ctx, portfolioID)
}

// GetTotalValue returns the market value of a portfolio.
func (s *PortfolioService) GetTotalValue(ctx context.Context, portfolioID string) (decimal.Decimal, error) {
	valuation, err := s.GetValuation(ctx, portfolioID)
	if err != nil {
		return decimal.Zero, err
	}
	return valuation.CurrentValue, nil
}

// GetValuation prices every position of a portfolio against a fresh quote.
//
// Valuation is all-or-nothing: if any quote fails the whole call fails with
// apperrors.ErrQuoteUnavailable wrapping the upstream cause. An empty
// portfolio values to zero without contacting the quote provider.
func (s *PortfolioService) GetValuation(ctx context.Context, portfolioID string) (model.Valuation, error) {
	if _, err := s.portfolioRepo.GetPortfolio(ctx, portfolioID); err != nil {
		return model.Valuation{}, err
	}

	positions, err := s.positionRepo.GetPositions(ctx, portfolioID)
	if err != nil {
		return model.Valuation{}, err
	}

	valuation, err := s.value(ctx, portfolioID, positions)
	if err != nil {
		s.metrics.RecordValuation("error")
		return model.Valuation{}, err
	}
	s.metrics.RecordValuation("success")
	return valuation, nil
}

// value fetches quotes concurrently, bounded by ValuationConcurrency. The
// first failure cancels the remaining fetches.
func (s *PortfolioService) value(ctx context.Context, portfolioID string, positions []model.Position) (model.Valuation, error) {
	valuation := model.Valuation{
		PortfolioID:   portfolioID,
		CurrentValue:  decimal.Zero,
		InvestedValue: decimal.Zero,
		GainLoss:      decimal.Zero,
		Positions:     make([]model.PositionValuation, len(positions)),
		ValuedAt:      time.Now().UTC(),
	}
	if len(positions) == 0 {
		return valuation, nil
	}

	quotes := make([]model.Quote, len(positions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.ValuationConcurrency)

	for i, p := range positions {
		g.Go(func() error {
			quote, err := s.quotes.GetQuote(gctx, p.Symbol)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", apperrors.ErrQuoteUnavailable, p.Symbol, err)
			}
			quotes[i] = quote
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Warn("portfolio valuation failed", "portfolio_id", portfolioID, "error", err)
		return model.Valuation{}, err
	}

	for i, p := range positions {
		valuation.Positions[i] = valuePosition(p, quotes[i])
		valuation.CurrentValue = valuation.CurrentValue.Add(valuation.Positions[i].CurrentValue)
		valuation.InvestedValue = valuation.InvestedValue.Add(valuation.Positions[i].InvestedValue)
	}
	valuation.GainLoss = valuation.CurrentValue.Sub(valuation.InvestedValue)

	return valuation, nil
}

func valuePosition(p model.Position, q model.Quote) model.PositionValuation {
	current := p.Shares.Mul(q.Price)
	invested := p.InvestedValue()
	gain := current.Sub(invested)

	return model.PositionValuation{
		Symbol:            p.Symbol,
		Shares:            p.Shares,
		CostBasisPerShare: p.CostBasisPerShare,
		Price:             q.Price,
		Currency:          q.Currency,
		CurrentValue:      current,
		InvestedValue:     invested,
		GainLoss:          gain,
		ReturnPct:         returnPct(gain, invested),
		QuotedAt:          q.AsOf,
	}
}

// returnPct is gain / invested × 100 rounded to two decimals, or 0 when
// nothing was invested.
func returnPct(gain, invested decimal.Decimal) decimal.Decimal {
	return calc.SafeDivideDecimal(gain, invested, decimal.Zero).Mul(hundred).Round(2)
}

// GetPerformance reports the return of a portfolio against its cost basis.
// The period must be a valid chart range and is echoed back; an empty
// period defaults to "1y". An empty portfolio reports a 0 return.
func (s *PortfolioService) GetPerformance(ctx context.Context, portfolioID, period string) (model.Performance, error) {
	period, err := validation.ValidatePeriod(period)
	if err != nil {
		return model.Performance{}, err
	}

	valuation, err := s.GetValuation(ctx, portfolioID)
	if err != nil {
		return model.Performance{}, err
	}

	totalReturn := calc.SafeDivideDecimal(valuation.GainLoss, valuation.InvestedValue, decimal.Zero)

	return model.Performance{
		PortfolioID:    portfolioID,
		Period:         period,
		CurrentValue:   valuation.CurrentValue,
		InvestedValue:  valuation.InvestedValue,
		GainLoss:       valuation.GainLoss,
		TotalReturn:    totalReturn.Round(6),
		TotalReturnPct: totalReturn.Mul(hundred).Round(2),
	}, nil
}

// GetOverview sums the valuations of every portfolio an owner holds. Like a
// single valuation it fails as a whole if any quote cannot be fetched.
func (s *PortfolioService) GetOverview(ctx context.Context, ownerID string) (model.PortfolioOverview, error) {
	if ownerID == "" {
		return model.PortfolioOverview{}, fmt.Errorf("owner_id is required: %w", apperrors.ErrValidation)
	}

	portfolios, err := s.portfolioRepo.ListPortfolios(ctx, ownerID)
	if err != nil {
		return model.PortfolioOverview{}, err
	}

	positions := make([][]model.Position, len(portfolios))
	for i, p := range portfolios {
		positions[i], err = s.positionRepo.GetPositions(ctx, p.ID)
		if err != nil {
			return model.PortfolioOverview{}, err
		}
	}

	overview := model.PortfolioOverview{
		OwnerID:        ownerID,
		PortfolioCount: len(portfolios),
		CurrentValue:   decimal.Zero,
		InvestedValue:  decimal.Zero,
		GainLoss:       decimal.Zero,
		TotalReturnPct: decimal.Zero,
		Portfolios:     make([]model.Valuation, 0, len(portfolios)),
	}

	for i, p := range portfolios {
		valuation, err := s.value(ctx, p.ID, positions[i])
		if err != nil {
			s.metrics.RecordValuation("error")
			return model.PortfolioOverview{}, err
		}
		s.metrics.RecordValuation("success")

		overview.CurrentValue = overview.CurrentValue.Add(valuation.CurrentValue)
		overview.InvestedValue = overview.InvestedValue.Add(valuation.InvestedValue)
		overview.Portfolios = append(overview.Portfolios, valuation)
	}

	overview.GainLoss = overview.CurrentValue.Sub(overview.InvestedValue)
	overview.TotalReturnPct = returnPct(overview.GainLoss, overview.InvestedValue)

	return overview, nil
}

// GetHistory returns the stored daily snapshots of a portfolio between
// startDate and endDate inclusive.
func (s *PortfolioService) GetHistory(ctx context.Context, portfolioID string, startDate, endDate time.Time) ([]model.ValuationSnapshot, error) {
	if err := validation.ValidateDateRange(startDate, endDate); err != nil {
		return nil, err
	}
	if _, err := s.portfolioRepo.GetPortfolio(ctx, portfolioID); err != nil {
		return nil, err
	}

	snapshots := []model.ValuationSnapshot{}
	err := s.snapshotRepo.GetSnapshots(ctx, portfolioID, startDate, endDate, func(snapshot model.ValuationSnapshot) error {
		snapshots = append(snapshots, snapshot)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}
