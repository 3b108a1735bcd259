package sniper

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"listingsniper/src/model"
)

// fakeGateway implements Gateway with per-call hooks so each test scripts
// exactly the exchange behavior it needs.
type fakeGateway struct {
	serverTime     func(ctx context.Context) (time.Time, error)
	exchangeInfo   func(ctx context.Context) (*model.ExchangeInfo, error)
	tickerPrice    func(ctx context.Context, symbol string) (decimal.Decimal, error)
	freeBalance    func(ctx context.Context, asset string) (decimal.Decimal, error)
	placeLimitSell func(ctx context.Context, symbol, quantity, price, clientOrderID string) (*model.Order, error)
	queryOrder     func(ctx context.Context, symbol string, orderID int64, clientOrderID string) (*model.Order, error)
	cancelOrder    func(ctx context.Context, symbol string, orderID int64) (*model.Order, error)
}

var errFakeUnscripted = errors.New("fake gateway call not scripted")

func (f *fakeGateway) ServerTime(ctx context.Context) (time.Time, error) {
	if f.serverTime == nil {
		return time.Time{}, errFakeUnscripted
	}
	return f.serverTime(ctx)
}

func (f *fakeGateway) ExchangeInfo(ctx context.Context) (*model.ExchangeInfo, error) {
	if f.exchangeInfo == nil {
		return nil, errFakeUnscripted
	}
	return f.exchangeInfo(ctx)
}

func (f *fakeGateway) TickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if f.tickerPrice == nil {
		return decimal.Zero, errFakeUnscripted
	}
	return f.tickerPrice(ctx, symbol)
}

func (f *fakeGateway) FreeBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	if f.freeBalance == nil {
		return decimal.Zero, errFakeUnscripted
	}
	return f.freeBalance(ctx, asset)
}

func (f *fakeGateway) PlaceLimitSell(ctx context.Context, symbol, quantity, price, clientOrderID string) (*model.Order, error) {
	if f.placeLimitSell == nil {
		return nil, errFakeUnscripted
	}
	return f.placeLimitSell(ctx, symbol, quantity, price, clientOrderID)
}

func (f *fakeGateway) QueryOrder(ctx context.Context, symbol string, orderID int64, clientOrderID string) (*model.Order, error) {
	if f.queryOrder == nil {
		return nil, errFakeUnscripted
	}
	return f.queryOrder(ctx, symbol, orderID, clientOrderID)
}

func (f *fakeGateway) CancelOrder(ctx context.Context, symbol string, orderID int64) (*model.Order, error) {
	if f.cancelOrder == nil {
		return nil, errFakeUnscripted
	}
	return f.cancelOrder(ctx, symbol, orderID)
}

// altInfo is a metadata snapshot containing a tradable ALTUSDT with a
// 0.01 tick and 0.1 step grid.
func altInfo() *model.ExchangeInfo {
	return &model.ExchangeInfo{
		Symbols: []model.SymbolInfo{
			{
				Symbol:     "ALTUSDT",
				Status:     model.SymbolStatusTrading,
				BaseAsset:  "ALT",
				QuoteAsset: "USDT",
				Filters: []model.SymbolFilter{
					{FilterType: model.FilterTypePrice, TickSize: "0.01000000"},
					{FilterType: model.FilterTypeLotSize, StepSize: "0.10000000"},
				},
			},
		},
	}
}

// altIntent is a TradeIntent with short poll intervals for fast tests.
func altIntent() TradeIntent {
	return TradeIntent{
		Symbol:             "ALTUSDT",
		Quantity:           decimal.RequireFromString("100"),
		OffsetPercent:      decimal.RequireFromString("1.0"),
		OrderTimeout:       200 * time.Millisecond,
		ListingInterval:    5 * time.Millisecond,
		StatusPollInterval: 5 * time.Millisecond,
		PriceRetryCount:    3,
		PriceRetryDelay:    time.Millisecond,
		SubmitAttempts:     3,
		SubmitBackoff:      time.Millisecond,
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }
