package yahoo

import "time"

// Response represents the raw JSON response structure from the Yahoo Finance chart API.
// This type maps directly to the chart API response format, containing nested
// structures for metadata, timestamps, and price indicators.
//
// Price and volume arrays hold pointers because Yahoo reports null for days
// without trades.
type Response struct {
	Chart Chart `json:"chart"`
}

// Chart is the top-level chart envelope.
type Chart struct {
	Result []Result    `json:"result"`
	Error  *ChartError `json:"error"`
}

// ChartError is the error object Yahoo returns instead of results.
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Result is the chart data for one symbol.
type Result struct {
	Meta       Meta                `json:"meta"`
	Timestamp  []int64             `json:"timestamp"`
	Indicators IndicatorsContainer `json:"indicators"`
}

// Meta holds symbol metadata and the latest regular-market trade.
type Meta struct {
	Currency           string   `json:"currency"`
	Symbol             string   `json:"symbol"`
	ExchangeName       string   `json:"exchangeName"`
	FullExchangeName   string   `json:"fullExchangeName"`
	LongName           string   `json:"longName"`
	Shortname          string   `json:"shortName"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	RegularMarketTime  int64    `json:"regularMarketTime"`
}

// IndicatorsContainer wraps the quote arrays.
type IndicatorsContainer struct {
	Quote []Quote `json:"quote"`
}

// Quote holds the OHLCV arrays, aligned with Result.Timestamp.
type Quote struct {
	Open   []*float64 `json:"open"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
}

// PriceChart represents a parsed and structured price chart from Yahoo Finance.
// This is the application's internal representation after parsing the raw Response.
type PriceChart struct {
	Currency           string       `json:"currency"`
	Symbol             string       `json:"symbol"`
	ExchangeName       string       `json:"exchangeName"`
	FullExchangeName   string       `json:"fullExchangeName"`
	LongName           string       `json:"longName"`
	Shortname          string       `json:"shortName"`
	RegularMarketPrice *float64     `json:"regularMarketPrice,omitempty"`
	RegularMarketTime  time.Time    `json:"regularMarketTime"`
	Indicators         []Indicators `json:"indicators"`
}

// Indicators represents a single day's price data for a financial instrument.
// Each Indicators instance corresponds to one trading day and contains the
// standard OHLCV (Open, High, Low, Close, Volume) data.
type Indicators struct {
	Date       time.Time
	PriceOpen  float64
	PriceClose float64
	Volume     int64
	PriceHigh  float64
	PriceLow   float64
}

// QuoteSummaryResponse is the raw v10 quoteSummary response.
type QuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []QuoteSummaryResult `json:"result"`
		Error  *ChartError          `json:"error"`
	} `json:"quoteSummary"`
}

// QuoteSummaryResult holds the modules requested by QueryQuoteSummary.
type QuoteSummaryResult struct {
	Price struct {
		Symbol             string   `json:"symbol"`
		LongName           string   `json:"longName"`
		ShortName          string   `json:"shortName"`
		Currency           string   `json:"currency"`
		ExchangeName       string   `json:"exchangeName"`
		RegularMarketPrice RawValue `json:"regularMarketPrice"`
		MarketCap          RawValue `json:"marketCap"`
	} `json:"price"`
	SummaryDetail struct {
		FiftyTwoWeekHigh RawValue `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow  RawValue `json:"fiftyTwoWeekLow"`
		TrailingPE       RawValue `json:"trailingPE"`
		DividendYield    RawValue `json:"dividendYield"`
		Volume           RawValue `json:"volume"`
		Beta             RawValue `json:"beta"`
	} `json:"summaryDetail"`
	AssetProfile struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"assetProfile"`
}

// RawValue is Yahoo's {"raw": 1.23, "fmt": "1.23"} number wrapper.
type RawValue struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}
