package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/upstream"
)

// DefaultBaseURL is the Yahoo Finance query host.
const DefaultBaseURL = "https://query2.finance.yahoo.com"

// ValidPeriods contains the chart ranges Yahoo accepts.
var ValidPeriods = map[string]bool{
	"1d": true, "5d": true, "1mo": true, "3mo": true, "6mo": true, "1y": true,
	"2y": true, "5y": true, "10y": true, "ytd": true, "max": true,
}

// Client defines the interface for fetching financial data from Yahoo Finance.
// This interface enables dependency injection and testing with mock implementations.
type Client interface {
	QueryYahooFiveDaySymbol(ctx context.Context, symbol string) (Response, error)
	QueryYahooSymbolByPeriod(ctx context.Context, symbol, period string) (Response, error)
	QueryYahooSymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error)
	QueryQuoteSummary(ctx context.Context, symbol string) (QuoteSummaryResponse, error)
	ParseChart(yahooResult Response) (PriceChart, error)
}

// Config configures a FinanceClient. Zero values select the defaults.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
// It wraps an HTTP client and provides convenient methods for querying stock prices
// and related financial data.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewFinanceClient creates a new Yahoo Finance client.
func NewFinanceClient(cfg Config) *FinanceClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &FinanceClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// ParseChart converts a raw Yahoo Finance API response into a structured price chart.
// This method extracts price data (open, close, high, low, volume) and metadata
// (symbol, currency, exchange) from the Yahoo response format.
//
// Days with a null close are skipped; other null fields read as zero.
//
// Returns an error if the response has no result, no timestamps, or arrays of
// mismatched length.
func (c *FinanceClient) ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, fmt.Errorf("no chart result returned: %w", apperrors.ErrSymbolNotFound)
	}
	result := yahooResult.Chart.Result[0]

	chart := PriceChart{
		Symbol:             result.Meta.Symbol,
		Currency:           result.Meta.Currency,
		ExchangeName:       result.Meta.ExchangeName,
		FullExchangeName:   result.Meta.FullExchangeName,
		LongName:           result.Meta.LongName,
		Shortname:          result.Meta.Shortname,
		RegularMarketPrice: result.Meta.RegularMarketPrice,
	}
	if result.Meta.RegularMarketTime > 0 {
		chart.RegularMarketTime = time.Unix(result.Meta.RegularMarketTime, 0).UTC()
	}

	if len(result.Timestamp) == 0 {
		if chart.RegularMarketPrice != nil {
			return chart, nil
		}
		return PriceChart{}, fmt.Errorf("no price data returned")
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned")
	}

	quote := result.Indicators.Quote[0]
	if len(quote.Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	indicators := make([]Indicators, 0, len(result.Timestamp))
	for i, v := range result.Timestamp {
		if quote.Close[i] == nil {
			continue
		}
		indicators = append(indicators, Indicators{
			Date:       time.Unix(v, 0).UTC(),
			PriceOpen:  floatAt(quote.Open, i),
			PriceClose: *quote.Close[i],
			Volume:     intAt(quote.Volume, i),
			PriceHigh:  floatAt(quote.High, i),
			PriceLow:   floatAt(quote.Low, i),
		})
	}
	chart.Indicators = indicators

	return chart, nil
}

func floatAt(values []*float64, i int) float64 {
	if i < len(values) && values[i] != nil {
		return *values[i]
	}
	return 0
}

func intAt(values []*int64, i int) int64 {
	if i < len(values) && values[i] != nil {
		return *values[i]
	}
	return 0
}

// GetIndicatorForDate searches for price data matching a specific date.
// The method performs date-only comparison by truncating both the target and
// indicator dates to midnight UTC, ignoring time components.
func (c PriceChart) GetIndicatorForDate(target time.Time) (Indicators, bool) {
	targetDay := target.UTC().Truncate(24 * time.Hour)
	for _, ind := range c.Indicators {
		if ind.Date.UTC().Truncate(24 * time.Hour).Equal(targetDay) {
			return ind, true
		}
	}
	return Indicators{}, false
}

// LatestPrice returns the regular market price, falling back to the most
// recent close.
func (c PriceChart) LatestPrice() (float64, time.Time, bool) {
	if c.RegularMarketPrice != nil {
		at := c.RegularMarketTime
		if at.IsZero() && len(c.Indicators) > 0 {
			at = c.Indicators[len(c.Indicators)-1].Date
		}
		return *c.RegularMarketPrice, at, true
	}
	if len(c.Indicators) == 0 {
		return 0, time.Time{}, false
	}
	last := c.Indicators[len(c.Indicators)-1]
	return last.PriceClose, last.Date, true
}

// QueryYahooFiveDaySymbol fetches the last 5 days of daily price data for a symbol.
// The meta block carries the latest regular-market price, which is what a
// quote needs.
func (c *FinanceClient) QueryYahooFiveDaySymbol(ctx context.Context, symbol string) (Response, error) {
	return c.QueryYahooSymbolByPeriod(ctx, symbol, "5d")
}

// QueryYahooSymbolByPeriod fetches daily bars for a named range such as "1y".
func (c *FinanceClient) QueryYahooSymbolByPeriod(ctx context.Context, symbol, period string) (Response, error) {
	if !ValidPeriods[period] {
		return Response{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidPeriod, period)
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s", c.baseURL, url.PathEscape(symbol), period)
	return c.queryChart(ctx, symbol, u)
}

// QueryYahooSymbolByDateRange fetches daily price data for a symbol within a specific date range.
// The method uses Yahoo Finance's period-based query format with Unix timestamps.
func (c *FinanceClient) QueryYahooSymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error) {
	if endDate.Before(startDate) {
		return Response{}, apperrors.ErrInvalidDateRange
	}
	u := fmt.Sprintf(
		"%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL,
		url.PathEscape(symbol),
		startDate.Unix(),
		endDate.Unix(),
	)
	return c.queryChart(ctx, symbol, u)
}

// QueryQuoteSummary fetches company profile and valuation modules.
func (c *FinanceClient) QueryQuoteSummary(ctx context.Context, symbol string) (QuoteSummaryResponse, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=price,summaryDetail,assetProfile", c.baseURL, url.PathEscape(symbol))

	var response QuoteSummaryResponse
	if err := c.queryYahoo(ctx, symbol, u, &response); err != nil {
		return QuoteSummaryResponse{}, err
	}
	if response.QuoteSummary.Error != nil {
		return QuoteSummaryResponse{}, fmt.Errorf("yahoo error %s: %s: %w",
			response.QuoteSummary.Error.Code, response.QuoteSummary.Error.Description, apperrors.ErrUpstreamRejected)
	}
	if len(response.QuoteSummary.Result) == 0 {
		return QuoteSummaryResponse{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}
	return response, nil
}

func (c *FinanceClient) queryChart(ctx context.Context, symbol, u string) (Response, error) {
	var response Response
	if err := c.queryYahoo(ctx, symbol, u, &response); err != nil {
		return Response{}, err
	}
	if response.Chart.Error != nil {
		return Response{}, fmt.Errorf("yahoo error %s: %s: %w",
			response.Chart.Error.Code, response.Chart.Error.Description, apperrors.ErrUpstreamRejected)
	}
	if len(response.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}
	return response, nil
}

// queryYahoo executes a GET against Yahoo Finance and decodes the JSON body into out.
//
// The method sets required headers:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
func (c *FinanceClient) queryYahoo(ctx context.Context, symbol, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return upstream.TransportError(upstream.ProviderYahoo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}
	if err := upstream.CheckResponse(upstream.ProviderYahoo, resp); err != nil {
		return err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return upstream.TransportError(upstream.ProviderYahoo, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode yahoo response: %v: %w", err, apperrors.ErrUpstreamRejected)
	}
	return nil
}
