package connectors

// Test index:
//  1. TestSignQuery validates the HMAC-SHA256 signature over the encoded query.
//  2. TestServerTime checks decoding of the exchange clock endpoint.
//  3. TestTickerPrice covers price retrieval and decimal parsing.
//  4. TestFreeBalance verifies balance lookup for present and absent assets.
//  5. TestPlaceLimitSell ensures the order endpoint receives the expected form.
//  6. TestQueryOrderByClientID checks lookup by client order id.
//  7. TestCancelOrder covers the cancel endpoint wiring.
//  8. TestAPIErrorDecoding asserts business rejections surface as APIError.
//  9. TestRetryHelpers exercises IsRetryable/IsUnknownOrder/IsAmbiguousPlacement.
// 10. TestBalancesSkipsZeroRows checks zero filtering across number formats.

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
)

func newTestConnector(baseURL string) *BinanceConnector {
	restyClient := resty.New()
	restyClient.SetBaseURL(baseURL)

	return &BinanceConnector{
		apiKey:     "test-key",
		apiSecret:  "test-secret",
		baseURL:    baseURL,
		recvWindow: 5000,
		http:       restyClient,
	}
}

// TestSignQuery ensures the signature is the HMAC of the exact encoded query.
func TestSignQuery(t *testing.T) {
	c := newTestConnector("http://unused")

	values := url.Values{}
	values.Set("symbol", "ALTUSDT")
	signed := c.signQuery(values)

	payload, sig, found := strings.Cut(signed, "&signature=")
	if !found {
		t.Fatalf("expected signature parameter, got %q", signed)
	}

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write([]byte(payload))
	if expected := hex.EncodeToString(mac.Sum(nil)); sig != expected {
		t.Fatalf("expected signature %s, got %s", expected, sig)
	}

	parsed, err := url.ParseQuery(payload)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if parsed.Get("symbol") != "ALTUSDT" || parsed.Get("timestamp") == "" || parsed.Get("recvWindow") != "5000" {
		t.Fatalf("unexpected signed payload: %q", payload)
	}
}

func TestServerTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/time" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"serverTime": 1748520000000}`)
	}))
	defer server.Close()

	c := newTestConnector(server.URL)
	got, err := c.ServerTime(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UnixMilli() != 1748520000000 {
		t.Fatalf("unexpected server time: %s", got)
	}
}

func TestTickerPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "ALTUSDT" {
			t.Errorf("missing symbol query: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"symbol":"ALTUSDT","price":"0.52310000"}`)
	}))
	defer server.Close()

	c := newTestConnector(server.URL)
	price, err := c.TickerPrice(context.Background(), "ALTUSDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price.String() != "0.5231" {
		t.Fatalf("unexpected price: %s", price)
	}
}

func TestFreeBalance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-MBX-APIKEY") != "test-key" {
			t.Errorf("missing api key header")
		}
		if !strings.Contains(r.URL.RawQuery, "signature=") {
			t.Errorf("account endpoint must be signed, query: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"balances":[
			{"asset":"ALT","free":"42.50000000","locked":"0.00000000"},
			{"asset":"USDT","free":"100.00000000","locked":"0.00000000"}
		]}`)
	}))
	defer server.Close()

	c := newTestConnector(server.URL)

	free, err := c.FreeBalance(context.Background(), "ALT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if free.String() != "42.5" {
		t.Fatalf("unexpected balance: %s", free)
	}

	missing, err := c.FreeBalance(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !missing.IsZero() {
		t.Fatalf("absent asset must report zero, got %s", missing)
	}
}

func TestPlaceLimitSell(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v3/order" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("side") != "SELL" || q.Get("type") != "LIMIT" || q.Get("timeInForce") != "GTC" {
			t.Errorf("unexpected order form: %s", r.URL.RawQuery)
		}
		if q.Get("quantity") != "42.5" || q.Get("price") != "99" {
			t.Errorf("unexpected quantity/price: %s", r.URL.RawQuery)
		}
		fmt.Fprintf(w, `{"symbol":"ALTUSDT","orderId":7,"clientOrderId":%q,"status":"NEW","price":"99","origQty":"42.5"}`, q.Get("newClientOrderId"))
	}))
	defer server.Close()

	c := newTestConnector(server.URL)
	order, err := c.PlaceLimitSell(context.Background(), "ALTUSDT", "42.5", "99", "snipe-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.OrderID != 7 || order.ClientOrderID != "snipe-1" {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestQueryOrderByClientID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("origClientOrderId") != "snipe-1" {
			t.Errorf("expected client order id lookup, query: %s", r.URL.RawQuery)
		}
		if q.Get("orderId") != "" {
			t.Errorf("orderId must be omitted for client id lookup")
		}
		fmt.Fprint(w, `{"symbol":"ALTUSDT","orderId":7,"clientOrderId":"snipe-1","status":"PARTIALLY_FILLED"}`)
	}))
	defer server.Close()

	c := newTestConnector(server.URL)
	order, err := c.QueryOrder(context.Background(), "ALTUSDT", 0, "snipe-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status.Terminal() {
		t.Fatalf("partially filled must be non-terminal: %+v", order)
	}
}

func TestCancelOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		if r.URL.Query().Get("orderId") != "7" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"symbol":"ALTUSDT","orderId":7,"status":"CANCELED"}`)
	}))
	defer server.Close()

	c := newTestConnector(server.URL)
	order, err := c.CancelOrder(context.Background(), "ALTUSDT", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !order.Status.Terminal() {
		t.Fatalf("expected terminal canceled status, got %+v", order)
	}
}

func TestAPIErrorDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"code":-2010,"msg":"Account has insufficient balance for requested action."}`)
	}))
	defer server.Close()

	c := newTestConnector(server.URL)
	_, err := c.PlaceLimitSell(context.Background(), "ALTUSDT", "42.5", "99", "snipe-1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != -2010 || apiErr.StatusCode != 400 {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
	if !strings.Contains(apiErr.Error(), "NEW_ORDER_REJECTED") {
		t.Fatalf("expected symbolic code name in message, got %s", apiErr.Error())
	}
}

func TestBalancesSkipsZeroRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"balances":[
			{"asset":"ALT","free":"42.50000000","locked":"0.00000000"},
			{"asset":"USDT","free":"0.00000000","locked":"0.00000000"},
			{"asset":"BTC","free":"0","locked":"0"},
			{"asset":"ETH","free":"0.00","locked":"0.0"},
			{"asset":"BNB","free":"0.00000000","locked":"1.5"}
		]}`)
	}))
	defer server.Close()

	c := newTestConnector(server.URL)
	balances, err := c.Balances(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(balances) != 2 {
		t.Fatalf("expected only the non-zero rows, got %+v", balances)
	}
	if balances[0].Asset != "ALT" || balances[1].Asset != "BNB" {
		t.Fatalf("unexpected rows survived the filter: %+v", balances)
	}
}

func TestRetryHelpers(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		retryable bool
		unknown   bool
		ambiguous bool
	}{
		{name: "transport error", err: errors.New("dial tcp: refused"), retryable: true, ambiguous: true},
		{name: "rate limited", err: &APIError{StatusCode: 429, Code: -1003}, retryable: true},
		{name: "server error", err: &APIError{StatusCode: 502}, retryable: true, ambiguous: true},
		{name: "clock drift", err: &APIError{StatusCode: 400, Code: -1021}, retryable: true},
		{name: "unknown execution status", err: &APIError{StatusCode: 400, Code: -1006}, retryable: true, ambiguous: true},
		{name: "insufficient balance", err: &APIError{StatusCode: 400, Code: -2010}},
		{name: "cancel rejected", err: &APIError{StatusCode: 400, Code: -2011}, unknown: true},
		{name: "no such order", err: &APIError{StatusCode: 400, Code: -2013}, unknown: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.retryable {
				t.Fatalf("IsRetryable = %v, expected %v", got, tc.retryable)
			}
			if got := IsUnknownOrder(tc.err); got != tc.unknown {
				t.Fatalf("IsUnknownOrder = %v, expected %v", got, tc.unknown)
			}
			if got := IsAmbiguousPlacement(tc.err); got != tc.ambiguous {
				t.Fatalf("IsAmbiguousPlacement = %v, expected %v", got, tc.ambiguous)
			}
		})
	}
}
