package sniper

import (
	"strings"

	logger "github.com/sirupsen/logrus"

	"listingsniper/src/model"
)

// DefaultPrecision is used when a symbol does not declare a filter of the
// required kind. A documented fallback, not a silent zero: six places is
// the exchange's most common grid for small-cap listings.
const DefaultPrecision = 6

// SymbolFilters hold the per-pair rounding rules, each expressed as a
// count of significant decimal places. Resolved once per run, immutable
// afterwards.
type SymbolFilters struct {
	PricePrecision    int32
	QuantityPrecision int32
}

// ResolveFilters extracts the decimal-place counts from the symbol's
// declared tick size and step size. Pure: no I/O, deterministic for a
// given snapshot.
func ResolveFilters(info *model.SymbolInfo) SymbolFilters {
	filters := SymbolFilters{
		PricePrecision:    DefaultPrecision,
		QuantityPrecision: DefaultPrecision,
	}

	priceSeen, qtySeen := false, false
	for _, f := range info.Filters {
		switch f.FilterType {
		case model.FilterTypePrice:
			if places, ok := decimalPlaces(f.TickSize); ok {
				filters.PricePrecision = places
				priceSeen = true
			}
		case model.FilterTypeLotSize:
			if places, ok := decimalPlaces(f.StepSize); ok {
				filters.QuantityPrecision = places
				qtySeen = true
			}
		}
	}

	if !priceSeen {
		logger.WithField("symbol", info.Symbol).Warn("No usable PRICE_FILTER, defaulting price precision")
	}
	if !qtySeen {
		logger.WithField("symbol", info.Symbol).Warn("No usable LOT_SIZE filter, defaulting quantity precision")
	}

	return filters
}

// decimalPlaces counts the significant fractional digits of a decimal
// string as the exchange declares it: "0.01000000" has two, "1.00000000"
// has zero. Returns ok=false for empty or non-numeric input.
func decimalPlaces(size string) (int32, bool) {
	s := strings.TrimSpace(size)
	if s == "" {
		return 0, false
	}

	intPart, fracPart, found := strings.Cut(s, ".")
	for _, r := range intPart {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	if !found {
		return 0, intPart != ""
	}
	for _, r := range fracPart {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	return int32(len(strings.TrimRight(fracPart, "0"))), true
}
