package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-tracker/internal/metrics"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/repository"
)

// SchedulerService refreshes stored closing prices for every held symbol
// and writes a valuation snapshot per portfolio.
type SchedulerService struct {
	db            *sql.DB
	portfolioRepo *repository.PortfolioRepository
	positionRepo  *repository.PositionRepository
	stockRepo     *repository.StockRepository
	snapshotRepo  *repository.SnapshotRepository
	quotes        QuoteProvider
	metrics       *metrics.Metrics

	mu   sync.Mutex // serialises refresh runs
	cron *cron.Cron
}

// NewSchedulerService creates a SchedulerService. m may be nil.
func NewSchedulerService(
	db *sql.DB,
	portfolioRepo *repository.PortfolioRepository,
	positionRepo *repository.PositionRepository,
	stockRepo *repository.StockRepository,
	snapshotRepo *repository.SnapshotRepository,
	quotes QuoteProvider,
	m *metrics.Metrics,
) *SchedulerService {
	return &SchedulerService{
		db:            db,
		portfolioRepo: portfolioRepo,
		positionRepo:  positionRepo,
		stockRepo:     stockRepo,
		snapshotRepo:  snapshotRepo,
		quotes:        quotes,
		metrics:       m,
	}
}

// Start schedules RunOnce on a standard five-field cron spec. Runs use ctx,
// so cancelling it aborts an in-flight refresh.
func (s *SchedulerService) Start(ctx context.Context, spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		result, err := s.RunOnce(ctx)
		if err != nil {
			slog.Error("scheduled price refresh failed", "error", err)
			return
		}
		slog.Info("scheduled price refresh finished",
			"updated", result.TotalUpdated,
			"errors", result.TotalErrors,
			"snapshots", result.SnapshotsWritten)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	s.cron = c
	c.Start()
	slog.Info("price refresh scheduled", "spec", spec)
	return nil
}

// Stop halts the schedule and returns a context that is done once a
// running job has finished.
func (s *SchedulerService) Stop() context.Context {
	if s.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return s.cron.Stop()
}

// RunOnce fetches one quote per held symbol, stores it for the quote date
// and snapshots every portfolio whose symbols all priced. A symbol that
// fails is reported in the result and skips the snapshot of every
// portfolio holding it. Only database failures return an error.
func (s *SchedulerService) RunOnce(ctx context.Context) (model.PriceRefreshResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := model.PriceRefreshResult{
		UpdatedSymbols: []model.UpdatedSymbol{},
		Errors:         []model.UpdatedSymbolError{},
	}

	symbols, err := s.positionRepo.HeldSymbols(ctx)
	if err != nil {
		return result, err
	}

	prices := make(map[string]decimal.Decimal, len(symbols))
	for _, symbol := range symbols {
		price, date, err := s.refreshSymbol(ctx, symbol)
		if err != nil {
			slog.Warn("price refresh failed", "symbol", symbol, "error", err)
			s.metrics.RecordPriceRefresh("error")
			result.Errors = append(result.Errors, model.UpdatedSymbolError{Symbol: symbol, Error: err.Error()})
			continue
		}

		s.metrics.RecordPriceRefresh("success")
		prices[symbol] = price
		result.UpdatedSymbols = append(result.UpdatedSymbols, model.UpdatedSymbol{
			Symbol: symbol,
			Price:  price.String(),
			Date:   date.Format(repository.DateLayout),
		})
	}
	result.TotalUpdated = len(result.UpdatedSymbols)
	result.TotalErrors = len(result.Errors)

	written, err := s.writeSnapshots(ctx, prices)
	if err != nil {
		return result, err
	}
	result.SnapshotsWritten = written
	result.Success = result.TotalErrors == 0

	return result, nil
}

func (s *SchedulerService) refreshSymbol(ctx context.Context, symbol string) (decimal.Decimal, time.Time, error) {
	quote, err := s.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return decimal.Zero, time.Time{}, err
	}

	date := quote.AsOf.UTC().Truncate(24 * time.Hour)
	if quote.AsOf.IsZero() {
		date = time.Now().UTC().Truncate(24 * time.Hour)
	}

	err = s.stockRepo.UpsertPrice(ctx, model.StoredPrice{
		Symbol:   symbol,
		Price:    quote.Price,
		Currency: quote.Currency,
		Date:     date,
	})
	if err != nil {
		return decimal.Zero, time.Time{}, err
	}
	return quote.Price, date, nil
}

// writeSnapshots values each portfolio from prices and upserts today's
// snapshot in one transaction. Portfolios holding an unpriced symbol are
// skipped.
func (s *SchedulerService) writeSnapshots(ctx context.Context, prices map[string]decimal.Decimal) (int, error) {
	portfolios, err := s.portfolioRepo.ListPortfolios(ctx, "")
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)

	var snapshots []model.ValuationSnapshot
	for _, p := range portfolios {
		positions, err := s.positionRepo.GetPositions(ctx, p.ID)
		if err != nil {
			return 0, err
		}

		snapshot, ok := snapshotFor(p.ID, positions, prices)
		if !ok {
			slog.Warn("skipping valuation snapshot, symbol not priced", "portfolio_id", p.ID)
			continue
		}
		snapshot.Date = today
		snapshot.CalculatedAt = now
		snapshots = append(snapshots, snapshot)
	}
	if len(snapshots) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	snapshotRepo := s.snapshotRepo.WithTx(tx)
	for _, snapshot := range snapshots {
		if err := snapshotRepo.UpsertSnapshot(ctx, snapshot); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(snapshots), nil
}

// snapshotFor values positions at prices; ok is false when any symbol has
// no price.
func snapshotFor(portfolioID string, positions []model.Position, prices map[string]decimal.Decimal) (model.ValuationSnapshot, bool) {
	snapshot := model.ValuationSnapshot{
		PortfolioID:   portfolioID,
		CurrentValue:  decimal.Zero,
		InvestedValue: decimal.Zero,
	}
	for _, pos := range positions {
		price, ok := prices[pos.Symbol]
		if !ok {
			return model.ValuationSnapshot{}, false
		}
		snapshot.CurrentValue = snapshot.CurrentValue.Add(pos.Shares.Mul(price))
		snapshot.InvestedValue = snapshot.InvestedValue.Add(pos.InvestedValue())
	}
	return snapshot, true
}
