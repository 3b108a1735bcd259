package connectors

import (
	"errors"
	"fmt"
)

// BinanceErrorCodes maps Binance API error codes to their symbolic names.
var BinanceErrorCodes = map[int]string{
	-1000: "UNKNOWN",
	-1001: "DISCONNECTED",             // Internal error; unable to process request
	-1002: "UNAUTHORIZED",             // Not authorized to execute the request
	-1003: "TOO_MANY_REQUESTS",        // Request weight / order rate limit exceeded
	-1006: "UNEXPECTED_RESP",          // Execution status unknown
	-1007: "TIMEOUT",                  // Timeout waiting for backend response
	-1013: "INVALID_MESSAGE",          // Filter failure (PRICE_FILTER, LOT_SIZE, ...)
	-1015: "TOO_MANY_ORDERS",          // Too many new orders
	-1021: "INVALID_TIMESTAMP",        // Timestamp outside recvWindow
	-1022: "INVALID_SIGNATURE",        // Signature for the request is not valid
	-1100: "ILLEGAL_CHARS",            // Illegal characters in a parameter
	-1102: "MANDATORY_PARAM_EMPTY",    // Mandatory parameter missing or empty
	-1121: "BAD_SYMBOL",               // Invalid symbol
	-2010: "NEW_ORDER_REJECTED",       // e.g. insufficient balance
	-2011: "CANCEL_REJECTED",          // Unknown order sent on cancel
	-2013: "NO_SUCH_ORDER",            // Order does not exist
	-2014: "BAD_API_KEY_FMT",          // API key format invalid
	-2015: "REJECTED_MBX_KEY",         // Invalid API key, IP, or permissions
	-2018: "BALANCE_NOT_SUFFICIENT",   // Balance insufficient
	-2020: "UNABLE_TO_FILL",           // Unable to fill
	-2021: "ORDER_WOULD_IMMEDIATELY_TRIGGER",
}

// ErrorCodeName returns the symbolic name for a Binance error code, or a
// generic label including the code when unknown.
func ErrorCodeName(code int) string {
	if name, ok := BinanceErrorCodes[code]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_BINANCE_ERROR_%d", code)
}

// APIError is a business-level rejection decoded from an exchange response.
type APIError struct {
	StatusCode int
	Code       int
	Msg        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance api error: status=%d code=%d (%s) msg=%q",
		e.StatusCode, e.Code, ErrorCodeName(e.Code), e.Msg)
}

// IsRetryable reports whether the failure is transient enough to be worth
// another attempt: transport-level trouble, throttling, or a clock drift
// rejection that a resigned request can clear.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		// Transport errors, timeouts, malformed bodies.
		return true
	}
	if apiErr.StatusCode == 429 || apiErr.StatusCode == 408 || apiErr.StatusCode >= 500 {
		return true
	}
	switch apiErr.Code {
	case -1003, -1006, -1007, -1015, -1021:
		return true
	}
	return false
}

// IsUnknownOrder reports whether the exchange says the referenced order no
// longer exists. On cancel this is the benign race where the order resolved
// naturally between the last status poll and the cancel attempt.
func IsUnknownOrder(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == -2011 || apiErr.Code == -2013
}

// IsAmbiguousPlacement reports whether a failed order placement may still
// have produced a resting order. Binance documents -1006/-1007 (and any
// transport failure after the request left the process) as "execution
// status unknown": the request can have succeeded server-side.
func IsAmbiguousPlacement(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return true
	}
	if apiErr.StatusCode >= 500 {
		return true
	}
	return apiErr.Code == -1006 || apiErr.Code == -1007
}
