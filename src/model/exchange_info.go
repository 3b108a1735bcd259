package model

const (
	FilterTypePrice   = "PRICE_FILTER"
	FilterTypeLotSize = "LOT_SIZE"

	SymbolStatusTrading = "TRADING"
)

// SymbolFilter is one entry of a symbol's filter list. Only the filter
// kinds we consume are mapped; the exchange sends more.
type SymbolFilter struct {
	FilterType string `json:"filterType"`
	TickSize   string `json:"tickSize,omitempty"`
	StepSize   string `json:"stepSize,omitempty"`
	MinQty     string `json:"minQty,omitempty"`
	MinPrice   string `json:"minPrice,omitempty"`
}

// SymbolInfo describes one trading pair from the exchange metadata.
type SymbolInfo struct {
	Symbol     string         `json:"symbol"`
	Status     string         `json:"status"`
	BaseAsset  string         `json:"baseAsset"`
	QuoteAsset string         `json:"quoteAsset"`
	Filters    []SymbolFilter `json:"filters"`
}

// Tradable reports whether orders can currently be placed on the pair.
func (s SymbolInfo) Tradable() bool {
	return s.Status == SymbolStatusTrading
}

// ExchangeInfo is the exchange metadata snapshot returned by the gateway.
type ExchangeInfo struct {
	ServerTime int64        `json:"serverTime"`
	Symbols    []SymbolInfo `json:"symbols"`
}

// FindSymbol returns the metadata entry for symbol, or nil when absent.
func (e *ExchangeInfo) FindSymbol(symbol string) *SymbolInfo {
	for i := range e.Symbols {
		if e.Symbols[i].Symbol == symbol {
			return &e.Symbols[i]
		}
	}
	return nil
}
