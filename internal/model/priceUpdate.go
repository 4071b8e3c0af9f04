package model

// PriceRefreshResult reports a scheduled or manual price refresh run.
// Success is true if at least one symbol was updated.
type PriceRefreshResult struct {
	Success          bool                 `json:"success"`
	UpdatedSymbols   []UpdatedSymbol      `json:"updatedSymbols"`
	Errors           []UpdatedSymbolError `json:"errors"`
	TotalUpdated     int                  `json:"totalUpdated"`
	TotalErrors      int                  `json:"totalErrors"`
	SnapshotsWritten int                  `json:"snapshotsWritten"`
}

// UpdatedSymbol is a symbol whose closing price was stored.
type UpdatedSymbol struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
	Date   string `json:"date"`
}

// UpdatedSymbolError is a symbol that could not be refreshed.
type UpdatedSymbolError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}
