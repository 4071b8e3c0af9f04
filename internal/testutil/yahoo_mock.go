package testutil

import (
	"context"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/yahoo"
)

// MockYahooClient implements yahoo.Client with canned chart and quoteSummary
// responses. Every query increments QueryCount.
type MockYahooClient struct {
	MockResponse yahoo.Response
	MockSummary  yahoo.QuoteSummaryResponse
	MockError    error
	QueryCount   int
	// LastPeriod records the range passed to QueryYahooSymbolByPeriod.
	LastPeriod string
}

// NewMockYahooClient returns a mock serving five daily bars of TEST.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{MockResponse: CreateMockYahooResponse(5)}
}

func (m *MockYahooClient) chart() (yahoo.Response, error) {
	m.QueryCount++
	if m.MockError != nil {
		return yahoo.Response{}, m.MockError
	}
	return m.MockResponse, nil
}

func (m *MockYahooClient) QueryYahooFiveDaySymbol(_ context.Context, _ string) (yahoo.Response, error) {
	return m.chart()
}

func (m *MockYahooClient) QueryYahooSymbolByPeriod(_ context.Context, _, period string) (yahoo.Response, error) {
	m.LastPeriod = period
	return m.chart()
}

func (m *MockYahooClient) QueryYahooSymbolByDateRange(_ context.Context, _ string, _, _ time.Time) (yahoo.Response, error) {
	return m.chart()
}

func (m *MockYahooClient) QueryQuoteSummary(_ context.Context, _ string) (yahoo.QuoteSummaryResponse, error) {
	m.QueryCount++
	if m.MockError != nil {
		return yahoo.QuoteSummaryResponse{}, m.MockError
	}
	return m.MockSummary, nil
}

// ParseChart uses the real parser; it has no side effects.
func (m *MockYahooClient) ParseChart(yahooResult yahoo.Response) (yahoo.PriceChart, error) {
	return yahoo.NewFinanceClient(yahoo.Config{}).ParseChart(yahooResult)
}

// WithError makes every query fail with err, e.g. apperrors.ErrSymbolNotFound.
func (m *MockYahooClient) WithError(err error) *MockYahooClient {
	m.MockError = err
	return m
}

func (m *MockYahooClient) WithResponse(resp yahoo.Response) *MockYahooClient {
	m.MockResponse = resp
	return m
}

func (m *MockYahooClient) WithSummary(resp yahoo.QuoteSummaryResponse) *MockYahooClient {
	m.MockSummary = resp
	return m
}

// CreateMockYahooResponse builds `days` daily bars of TEST ending yesterday.
// Bar i opens at 100+0.5i and closes 0.25 higher, so five bars end at 102.25.
func CreateMockYahooResponse(days int) yahoo.Response {
	closes := make([]float64, days)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5 + 0.25
	}
	resp := CreateMockYahooResponseFromCloses(closes...)

	q := &resp.Chart.Result[0].Indicators.Quote[0]
	q.Open = make([]*float64, days)
	q.High = make([]*float64, days)
	q.Low = make([]*float64, days)
	q.Volume = make([]*int64, days)
	for i := range closes {
		open := closes[i] - 0.25
		high := open + 1.0
		low := open - 0.5
		volume := int64(1_000_000 + i*10_000)
		q.Open[i], q.High[i], q.Low[i], q.Volume[i] = &open, &high, &low, &volume
	}

	meta := &resp.Chart.Result[0].Meta
	meta.ExchangeName = "NMS"
	meta.FullExchangeName = "NASDAQ"
	meta.LongName = "Test Corp."
	meta.Shortname = "TEST"
	return resp
}

// CreateMockYahooResponseFromCloses builds one daily bar per close ending
// yesterday, with open/high/low equal to the close.
func CreateMockYahooResponseFromCloses(closes ...float64) yahoo.Response {
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)

	n := len(closes)
	timestamps := make([]int64, n)
	values := make([]*float64, n)
	for i := range closes {
		timestamps[i] = yesterday.AddDate(0, 0, -n+i+1).Unix()
		values[i] = &closes[i]
	}

	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{{
				Meta:      yahoo.Meta{Symbol: "TEST", Currency: "USD"},
				Timestamp: timestamps,
				Indicators: yahoo.IndicatorsContainer{
					Quote: []yahoo.Quote{{Open: values, High: values, Low: values, Close: values}},
				},
			}},
		},
	}
}

// CreateMockQuoteSummary builds a quoteSummary answer for a company.
func CreateMockQuoteSummary(symbol, name string, price float64) yahoo.QuoteSummaryResponse {
	var resp yahoo.QuoteSummaryResponse
	result := yahoo.QuoteSummaryResult{}
	result.Price.Symbol = symbol
	result.Price.LongName = name
	result.Price.Currency = "USD"
	result.Price.ExchangeName = "NasdaqGS"
	result.Price.RegularMarketPrice = yahoo.RawValue{Raw: &price}
	result.AssetProfile.Sector = "Technology"
	result.AssetProfile.Industry = "Consumer Electronics"
	resp.QuoteSummary.Result = []yahoo.QuoteSummaryResult{result}
	return resp
}
