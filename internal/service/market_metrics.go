package service

import (
	"fmt"
	"math"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/calc"
	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// Annualisation inputs for history metrics.
const (
	TradingDaysPerYear = 252
	RiskFreeRate       = 0.02
)

// calculateStockMetrics derives return and risk statistics from daily closes.
//
//   - total return: (last - first) / first × 100
//   - volatility: sample standard deviation of daily returns × √252 × 100
//   - Sharpe ratio: mean(daily return - 0.02/252) / σ × √252
//   - max drawdown: the deepest fall of cumulative returns below their
//     running peak, as a negative percentage
//
// Percentages are rounded to 2 decimals and the Sharpe ratio to 3.
func calculateStockMetrics(history model.PriceHistory) (model.StockMetrics, error) {
	bars := history.Bars
	if len(bars) < 2 {
		return model.StockMetrics{}, fmt.Errorf("%w: %s has %d bars", apperrors.ErrInsufficientHistory, history.Symbol, len(bars))
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close.InexactFloat64()
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns = append(returns, calc.PercentageChange(closes[i-1], closes[i]))
	}

	first, last := closes[0], closes[len(closes)-1]
	sigma := stdDev(returns)

	excess := 0.0
	for _, r := range returns {
		excess += r - RiskFreeRate/TradingDaysPerYear
	}
	excess /= float64(len(returns))

	return model.StockMetrics{
		Symbol:               history.Symbol,
		Period:               history.Period,
		CurrentPrice:         bars[len(bars)-1].Close.Round(2),
		TotalReturnPct:       calc.Round(calc.PercentageChange(first, last)*100, 2),
		AnnualizedVolatility: calc.Round(sigma*math.Sqrt(TradingDaysPerYear)*100, 2),
		SharpeRatio:          calc.Round(calc.SafeDivide(excess, sigma, 0)*math.Sqrt(TradingDaysPerYear), 3),
		MaxDrawdownPct:       calc.Round(maxDrawdown(returns)*100, 2),
		TradingDays:          len(bars),
		PeriodStart:          bars[0].Date,
		PeriodEnd:            bars[len(bars)-1].Date,
	}, nil
}

// stdDev is the sample (n-1) standard deviation; fewer than two values give 0.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	sum := 0.0
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// maxDrawdown compounds returns and reports the most negative
// (value - peak) / peak, or 0 for a series that never falls.
func maxDrawdown(returns []float64) float64 {
	cumulative, peak, worst := 1.0, 0.0, 0.0
	for i, r := range returns {
		cumulative *= 1 + r
		if i == 0 || cumulative > peak {
			peak = cumulative
		}
		if dd := (cumulative - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return worst
}
