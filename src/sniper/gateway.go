package sniper

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"listingsniper/src/model"
)

// Gateway is the exchange surface the pipeline consumes. The production
// implementation is connectors.BinanceConnector; tests substitute fakes.
// The gateway is treated as an unreliable, latent, rate-limited service:
// every call takes a context and can fail.
type Gateway interface {
	ServerTime(ctx context.Context) (time.Time, error)
	ExchangeInfo(ctx context.Context) (*model.ExchangeInfo, error)
	TickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	FreeBalance(ctx context.Context, asset string) (decimal.Decimal, error)
	PlaceLimitSell(ctx context.Context, symbol, quantity, price, clientOrderID string) (*model.Order, error)
	QueryOrder(ctx context.Context, symbol string, orderID int64, clientOrderID string) (*model.Order, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) (*model.Order, error)
}
