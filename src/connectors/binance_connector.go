// REST API CLIENT FOR BINANCE SPOT
// RESTY ONLY, HMAC-SHA256 SIGNED QUERIES
package connectors

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"listingsniper/src/model"
)

type serverTimeResponse struct {
	ServerTime int64 `json:"serverTime"`
}

type tickerPriceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

type accountResponse struct {
	Balances []model.AssetBalance `json:"balances"`
}

type apiErrorBody struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// BinanceConnector is an authenticated Binance spot REST client. It is the
// single shared gateway resource of a run: acquired once at startup and
// released through Close on every exit path.
type BinanceConnector struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	recvWindow int64
	http       *resty.Client
}

// NewBinanceConnector builds a connector from credentials and the package
// config. Transport-level retry stays off here: each pipeline stage owns
// its retry policy, and a hidden duplicate POST could double-place orders.
func NewBinanceConnector(apiKey, apiSecret string) *BinanceConnector {
	config := GetConfig()

	httpClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.HTTPTimeout)

	return &BinanceConnector{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    config.BaseURL,
		recvWindow: config.RecvWindow,
		http:       httpClient,
	}
}

// signQuery appends timestamp, recvWindow and the HMAC-SHA256 signature
// required by Binance SIGNED endpoints.
func (c *BinanceConnector) signQuery(values url.Values) string {
	values.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	values.Set("recvWindow", strconv.FormatInt(c.recvWindow, 10))

	encoded := values.Encode()
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(encoded))

	return encoded + "&signature=" + hex.EncodeToString(mac.Sum(nil))
}

func (c *BinanceConnector) doRequest(ctx context.Context, method, path string, values url.Values, signed bool, out interface{}) error {
	req := c.http.R().SetContext(ctx)

	query := ""
	if values != nil {
		query = values.Encode()
	}
	if signed {
		if values == nil {
			values = url.Values{}
		}
		// The signature covers the exact query string sent, so it is
		// appended to the URL verbatim instead of letting resty
		// re-encode and reorder the parameters.
		query = c.signQuery(values)
		req.SetHeader("X-MBX-APIKEY", c.apiKey)
	}
	if query != "" {
		path = path + "?" + query
	}

	logger.WithFields(logger.Fields{
		"method": method,
		"path":   path,
	}).Debug("Binance HTTP request")

	resp, err := req.Execute(method, path)
	if err != nil {
		logger.WithError(err).WithField("path", path).Error("Binance HTTP request failed")
		return fmt.Errorf("http %s %s: %w", method, path, err)
	}

	raw := resp.Body()

	logger.WithFields(logger.Fields{
		"status": resp.StatusCode(),
		"path":   path,
	}).Debug("Binance HTTP response")

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		var body apiErrorBody
		if err := json.Unmarshal(raw, &body); err != nil {
			return &APIError{StatusCode: resp.StatusCode(), Msg: string(raw)}
		}
		apiErr := &APIError{StatusCode: resp.StatusCode(), Code: body.Code, Msg: body.Msg}
		logger.WithFields(logger.Fields{
			"status": apiErr.StatusCode,
			"code":   apiErr.Code,
			"name":   ErrorCodeName(apiErr.Code),
			"msg":    apiErr.Msg,
		}).Error("Binance API returned error code")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		logger.WithError(err).Error("Failed to unmarshal Binance response")
		return fmt.Errorf("unmarshal binance response: %w", err)
	}
	return nil
}

// Ping checks basic connectivity to the exchange.
func (c *BinanceConnector) Ping(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodGet, "/api/v3/ping", nil, false, nil); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// ServerTime returns the exchange's authoritative clock. Launch timing is
// decided against this, never against the local process clock.
func (c *BinanceConnector) ServerTime(ctx context.Context) (time.Time, error) {
	var out serverTimeResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v3/time", nil, false, &out); err != nil {
		return time.Time{}, fmt.Errorf("get server time: %w", err)
	}
	return time.UnixMilli(out.ServerTime).UTC(), nil
}

// ExchangeInfo fetches the full exchange metadata snapshot.
func (c *BinanceConnector) ExchangeInfo(ctx context.Context) (*model.ExchangeInfo, error) {
	var out model.ExchangeInfo
	if err := c.doRequest(ctx, http.MethodGet, "/api/v3/exchangeInfo", nil, false, &out); err != nil {
		return nil, fmt.Errorf("get exchange info: %w", err)
	}
	return &out, nil
}

// TickerPrice returns the latest traded price for symbol.
func (c *BinanceConnector) TickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	values := url.Values{}
	values.Set("symbol", symbol)

	var out tickerPriceResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v3/ticker/price", values, false, &out); err != nil {
		return decimal.Zero, fmt.Errorf("get ticker price: %w", err)
	}

	price, err := decimal.NewFromString(out.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse ticker price %q: %w", out.Price, err)
	}
	return price, nil
}

// FreeBalance returns the free (unlocked) balance of one asset, zero when
// the asset does not appear on the balance sheet.
func (c *BinanceConnector) FreeBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	var out accountResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v3/account", url.Values{}, true, &out); err != nil {
		return decimal.Zero, fmt.Errorf("get account balances: %w", err)
	}

	for _, b := range out.Balances {
		if b.Asset != asset {
			continue
		}
		free, err := decimal.NewFromString(b.Free)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse free balance %q: %w", b.Free, err)
		}
		return free, nil
	}
	return decimal.Zero, nil
}

// PlaceLimitSell submits a GTC limit sell. Quantity and price must already
// be rounded onto the symbol's tick grid; the exchange rejects anything
// off-grid. clientOrderID identifies the attempt so an ambiguous failure
// can be reconciled afterwards.
func (c *BinanceConnector) PlaceLimitSell(ctx context.Context, symbol, quantity, price, clientOrderID string) (*model.Order, error) {
	values := url.Values{}
	values.Set("symbol", symbol)
	values.Set("side", model.OrderSideSell)
	values.Set("type", model.OrderTypeLimit)
	values.Set("timeInForce", model.TimeInForceGTC)
	values.Set("quantity", quantity)
	values.Set("price", price)
	values.Set("newClientOrderId", clientOrderID)
	values.Set("newOrderRespType", "FULL")

	logger.WithFields(logger.Fields{
		"symbol":        symbol,
		"quantity":      quantity,
		"price":         price,
		"clientOrderId": clientOrderID,
	}).Info("Placing Binance limit sell order")

	var out model.Order
	if err := c.doRequest(ctx, http.MethodPost, "/api/v3/order", values, true, &out); err != nil {
		return nil, fmt.Errorf("place limit sell: %w", err)
	}
	return &out, nil
}

// QueryOrder fetches an order by exchange ID or, when orderID is zero, by
// the client order ID of the placement attempt.
func (c *BinanceConnector) QueryOrder(ctx context.Context, symbol string, orderID int64, clientOrderID string) (*model.Order, error) {
	values := url.Values{}
	values.Set("symbol", symbol)
	if orderID > 0 {
		values.Set("orderId", strconv.FormatInt(orderID, 10))
	} else {
		values.Set("origClientOrderId", clientOrderID)
	}

	var out model.Order
	if err := c.doRequest(ctx, http.MethodGet, "/api/v3/order", values, true, &out); err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return &out, nil
}

// CancelOrder cancels a resting order.
func (c *BinanceConnector) CancelOrder(ctx context.Context, symbol string, orderID int64) (*model.Order, error) {
	values := url.Values{}
	values.Set("symbol", symbol)
	values.Set("orderId", strconv.FormatInt(orderID, 10))

	logger.WithFields(logger.Fields{
		"symbol":  symbol,
		"orderId": orderID,
	}).Info("Cancelling Binance order")

	var out model.Order
	if err := c.doRequest(ctx, http.MethodDelete, "/api/v3/order", values, true, &out); err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	return &out, nil
}

// Balances returns every non-zero balance row of the account.
func (c *BinanceConnector) Balances(ctx context.Context) ([]model.AssetBalance, error) {
	var out accountResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v3/account", url.Values{}, true, &out); err != nil {
		return nil, fmt.Errorf("get account balances: %w", err)
	}

	balances := make([]model.AssetBalance, 0, len(out.Balances))
	for _, b := range out.Balances {
		free, ferr := decimal.NewFromString(b.Free)
		locked, lerr := decimal.NewFromString(b.Locked)
		// Unparsable rows are kept so they surface instead of vanishing.
		if ferr == nil && lerr == nil && free.IsZero() && locked.IsZero() {
			continue
		}
		balances = append(balances, b)
	}
	return balances, nil
}

// Close releases the connector's idle transport connections.
func (c *BinanceConnector) Close() {
	c.http.GetClient().CloseIdleConnections()
	logger.Debug("Binance connector closed")
}
