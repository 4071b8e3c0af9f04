package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/repository"
	"github.com/ndewijer/portfolio-tracker/internal/upstream"
	"github.com/ndewijer/portfolio-tracker/internal/validation"
	"github.com/ndewijer/portfolio-tracker/internal/yahoo"
)

// MarketService serves quotes, price history and company data from Yahoo
// Finance and keeps the stock and stock_price tables.
// Every Yahoo call goes through the upstream guard.
type MarketService struct {
	yahooClient yahoo.Client
	guard       *upstream.Guard
	stockRepo   *repository.StockRepository
}

// NewMarketService creates a MarketService. guard may be nil.
func NewMarketService(yahooClient yahoo.Client, guard *upstream.Guard, stockRepo *repository.StockRepository) *MarketService {
	return &MarketService{
		yahooClient: yahooClient,
		guard:       guard,
		stockRepo:   stockRepo,
	}
}

func (s *MarketService) chart(ctx context.Context, symbol string, query func(ctx context.Context) (yahoo.Response, error)) (yahoo.PriceChart, error) {
	raw, err := upstream.Call(ctx, s.guard, upstream.ProviderYahoo, query)
	if err != nil {
		return yahoo.PriceChart{}, err
	}
	chart, err := s.yahooClient.ParseChart(raw)
	if err != nil {
		return yahoo.PriceChart{}, fmt.Errorf("failed to parse chart for %s: %w", symbol, err)
	}
	return chart, nil
}

// GetQuote returns the latest regular-market price of a symbol, falling
// back to the most recent non-null daily close. Quotes are never cached.
func (s *MarketService) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	symbol, err := validation.NormalizeSymbol(symbol)
	if err != nil {
		return model.Quote{}, err
	}

	chart, err := s.chart(ctx, symbol, func(ctx context.Context) (yahoo.Response, error) {
		return s.yahooClient.QueryYahooFiveDaySymbol(ctx, symbol)
	})
	if err != nil {
		return model.Quote{}, err
	}

	price, asOf, ok := chart.LatestPrice()
	if !ok {
		return model.Quote{}, fmt.Errorf("%w: no price for %s", apperrors.ErrSymbolNotFound, symbol)
	}

	return model.Quote{
		Symbol:   symbol,
		Price:    decimal.NewFromFloat(price),
		Currency: chart.Currency,
		AsOf:     asOf,
	}, nil
}

// GetHistory returns daily bars for a chart range such as "1y".
// Days without a close are skipped.
func (s *MarketService) GetHistory(ctx context.Context, symbol, period string) (model.PriceHistory, error) {
	symbol, err := validation.NormalizeSymbol(symbol)
	if err != nil {
		return model.PriceHistory{}, err
	}
	period, err = validation.ValidatePeriod(period)
	if err != nil {
		return model.PriceHistory{}, err
	}

	chart, err := s.chart(ctx, symbol, func(ctx context.Context) (yahoo.Response, error) {
		return s.yahooClient.QueryYahooSymbolByPeriod(ctx, symbol, period)
	})
	if err != nil {
		return model.PriceHistory{}, err
	}

	bars := make([]model.PriceBar, 0, len(chart.Indicators))
	for _, ind := range chart.Indicators {
		bars = append(bars, model.PriceBar{
			Date:   ind.Date,
			Open:   decimal.NewFromFloat(ind.PriceOpen),
			High:   decimal.NewFromFloat(ind.PriceHigh),
			Low:    decimal.NewFromFloat(ind.PriceLow),
			Close:  decimal.NewFromFloat(ind.PriceClose),
			Volume: ind.Volume,
		})
	}

	return model.PriceHistory{
		Symbol:   symbol,
		Currency: chart.Currency,
		Period:   period,
		Bars:     bars,
	}, nil
}

// GetCompanyInfo fetches profile and valuation data for a symbol and
// stores the descriptive fields in the stock table.
func (s *MarketService) GetCompanyInfo(ctx context.Context, symbol string) (model.CompanyInfo, error) {
	symbol, err := validation.NormalizeSymbol(symbol)
	if err != nil {
		return model.CompanyInfo{}, err
	}

	raw, err := upstream.Call(ctx, s.guard, upstream.ProviderYahoo, func(ctx context.Context) (yahoo.QuoteSummaryResponse, error) {
		return s.yahooClient.QueryQuoteSummary(ctx, symbol)
	})
	if err != nil {
		return model.CompanyInfo{}, err
	}

	info := companyInfo(symbol, raw.QuoteSummary.Result[0])

	err = s.stockRepo.UpsertStock(ctx, model.Stock{
		Symbol:      symbol,
		CompanyName: info.Name,
		Sector:      info.Sector,
		Industry:    info.Industry,
		Currency:    info.Currency,
		Exchange:    info.Exchange,
	})
	if err != nil {
		return model.CompanyInfo{}, err
	}

	return info, nil
}

func companyInfo(symbol string, r yahoo.QuoteSummaryResult) model.CompanyInfo {
	name := r.Price.LongName
	if name == "" {
		name = r.Price.ShortName
	}

	return model.CompanyInfo{
		Symbol:           symbol,
		Name:             name,
		Sector:           r.AssetProfile.Sector,
		Industry:         r.AssetProfile.Industry,
		Currency:         r.Price.Currency,
		Exchange:         r.Price.ExchangeName,
		MarketCap:        rawInt(r.Price.MarketCap),
		CurrentPrice:     rawDecimal(r.Price.RegularMarketPrice),
		FiftyTwoWeekHigh: rawDecimal(r.SummaryDetail.FiftyTwoWeekHigh),
		FiftyTwoWeekLow:  rawDecimal(r.SummaryDetail.FiftyTwoWeekLow),
		TrailingPE:       r.SummaryDetail.TrailingPE.Raw,
		DividendYield:    r.SummaryDetail.DividendYield.Raw,
		Volume:           rawInt(r.SummaryDetail.Volume),
		Beta:             r.SummaryDetail.Beta.Raw,
	}
}

func rawDecimal(v yahoo.RawValue) *decimal.Decimal {
	if v.Raw == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v.Raw)
	return &d
}

func rawInt(v yahoo.RawValue) *int64 {
	if v.Raw == nil {
		return nil
	}
	n := int64(*v.Raw)
	return &n
}

// GetMetrics computes return and risk statistics over a chart range.
// Fewer than two bars yields apperrors.ErrInsufficientHistory.
func (s *MarketService) GetMetrics(ctx context.Context, symbol, period string) (model.StockMetrics, error) {
	history, err := s.GetHistory(ctx, symbol, period)
	if err != nil {
		return model.StockMetrics{}, err
	}
	return calculateStockMetrics(history)
}

// ListStocks returns every stock whose company info has been looked up.
func (s *MarketService) ListStocks(ctx context.Context) ([]model.Stock, error) {
	return s.stockRepo.ListStocks(ctx)
}

// GetStoredPrices returns closing prices recorded by the refresh job.
func (s *MarketService) GetStoredPrices(ctx context.Context, symbol string, startDate, endDate time.Time) ([]model.StoredPrice, error) {
	symbol, err := validation.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateDateRange(startDate, endDate); err != nil {
		return nil, err
	}
	return s.stockRepo.GetPrices(ctx, symbol, startDate, endDate)
}

// BackfillPrices stores daily closes for every date between startDate and
// endDate that has no stored price yet. It returns the number of prices
// added; a range with nothing missing makes no upstream call.
func (s *MarketService) BackfillPrices(ctx context.Context, symbol string, startDate, endDate time.Time) (int, error) {
	symbol, err := validation.NormalizeSymbol(symbol)
	if err != nil {
		return 0, err
	}
	if err := validation.ValidateDateRange(startDate, endDate); err != nil {
		return 0, err
	}

	existing, err := s.stockRepo.GetPrices(ctx, symbol, startDate, endDate)
	if err != nil {
		return 0, err
	}

	missingDates := buildMissingDatesMap(existing, startDate, endDate)
	if len(missingDates) == 0 {
		return 0, nil
	}

	// period2 is exclusive on Yahoo's side.
	chart, err := s.chart(ctx, symbol, func(ctx context.Context) (yahoo.Response, error) {
		return s.yahooClient.QueryYahooSymbolByDateRange(ctx, symbol, startDate, endDate.AddDate(0, 0, 1))
	})
	if err != nil {
		return 0, err
	}

	added := 0
	for _, ind := range chart.Indicators {
		date := ind.Date.UTC().Truncate(24 * time.Hour)
		if !missingDates[date.Format(repository.DateLayout)] {
			continue
		}
		err := s.stockRepo.UpsertPrice(ctx, model.StoredPrice{
			Symbol:   symbol,
			Price:    decimal.NewFromFloat(ind.PriceClose),
			Currency: chart.Currency,
			Date:     date,
		})
		if err != nil {
			return added, err
		}
		added++
	}

	slog.Info("backfilled prices", "symbol", symbol, "added", added)
	return added, nil
}

// buildMissingDatesMap lists the dates in [startDate, endDate] without a
// stored price.
func buildMissingDatesMap(existing []model.StoredPrice, startDate, endDate time.Time) map[string]bool {
	existingDates := make(map[string]bool, len(existing))
	for _, p := range existing {
		existingDates[p.Date.UTC().Format(repository.DateLayout)] = true
	}

	missingDates := make(map[string]bool)
	for d := startDate.UTC().Truncate(24 * time.Hour); !d.After(endDate); d = d.AddDate(0, 0, 1) {
		key := d.Format(repository.DateLayout)
		if !existingDates[key] {
			missingDates[key] = true
		}
	}
	return missingDates
}

// CompanyName returns the stored company name of a symbol, or "" when the
// symbol has never been looked up.
func (s *MarketService) CompanyName(ctx context.Context, symbol string) string {
	stock, err := s.stockRepo.GetStock(ctx, strings.ToUpper(strings.TrimSpace(symbol)))
	if err != nil {
		return ""
	}
	return stock.CompanyName
}
