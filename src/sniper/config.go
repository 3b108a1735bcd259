package sniper

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// launchTimeLayout is the wall-clock format of LAUNCH_TIME, interpreted as UTC.
const launchTimeLayout = "2006-01-02 15:04:05"

type Config struct {
	Pair               string        `envconfig:"PAIR"`
	Quantity           string        `envconfig:"QUANTITY"`
	PriceOffsetPercent string        `envconfig:"PRICE_OFFSET_PERCENT" default:"1.0"`
	OrderTimeout       time.Duration `envconfig:"ORDER_TIMEOUT" default:"30s"`
	PairCheckInterval  time.Duration `envconfig:"PAIR_CHECK_INTERVAL" default:"500ms"`
	StatusPollInterval time.Duration `envconfig:"STATUS_POLL_INTERVAL" default:"500ms"`
	PriceRetryCount    int           `envconfig:"PRICE_RETRY_COUNT" default:"3"`
	PriceRetryDelay    time.Duration `envconfig:"PRICE_RETRY_DELAY" default:"500ms"`
	OrderRetryCount    int           `envconfig:"ORDER_RETRY_COUNT" default:"3"`
	OrderRetryDelay    time.Duration `envconfig:"ORDER_RETRY_DELAY" default:"500ms"`
	LaunchTime         string        `envconfig:"LAUNCH_TIME"`
	LaunchLead         time.Duration `envconfig:"LAUNCH_LEAD" default:"10s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// TradeIntent is the validated, immutable input of one run. The launch
// instant is a fixed point in time, resolved once from config and never
// recomputed afterwards.
type TradeIntent struct {
	Symbol             string
	Quantity           decimal.Decimal
	OffsetPercent      decimal.Decimal
	OrderTimeout       time.Duration
	ListingInterval    time.Duration
	StatusPollInterval time.Duration
	PriceRetryCount    int
	PriceRetryDelay    time.Duration
	SubmitAttempts     int
	SubmitBackoff      time.Duration
	LaunchAt           time.Time // zero means no launch wait
	LaunchLead         time.Duration
}

// NewTradeIntent validates the config and freezes it into a TradeIntent.
func NewTradeIntent(config Config) (TradeIntent, error) {
	if config.Pair == "" {
		return TradeIntent{}, fmt.Errorf("PAIR is required")
	}

	quantity, err := decimal.NewFromString(config.Quantity)
	if err != nil {
		return TradeIntent{}, fmt.Errorf("parse QUANTITY %q: %w", config.Quantity, err)
	}
	if !quantity.IsPositive() {
		return TradeIntent{}, fmt.Errorf("QUANTITY must be positive, got %s", quantity)
	}

	offset, err := decimal.NewFromString(config.PriceOffsetPercent)
	if err != nil {
		return TradeIntent{}, fmt.Errorf("parse PRICE_OFFSET_PERCENT %q: %w", config.PriceOffsetPercent, err)
	}
	if offset.IsNegative() || offset.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return TradeIntent{}, fmt.Errorf("PRICE_OFFSET_PERCENT must be in [0,100), got %s", offset)
	}

	var launchAt time.Time
	if config.LaunchTime != "" {
		launchAt, err = time.ParseInLocation(launchTimeLayout, config.LaunchTime, time.UTC)
		if err != nil {
			return TradeIntent{}, fmt.Errorf("parse LAUNCH_TIME %q: %w", config.LaunchTime, err)
		}
	}

	if config.PairCheckInterval <= 0 || config.StatusPollInterval <= 0 {
		return TradeIntent{}, fmt.Errorf("poll intervals must be positive")
	}
	if config.OrderTimeout <= 0 {
		return TradeIntent{}, fmt.Errorf("ORDER_TIMEOUT must be positive, got %s", config.OrderTimeout)
	}
	// Zero would make the bounded poll loops unbounded.
	if config.PriceRetryCount <= 0 {
		return TradeIntent{}, fmt.Errorf("PRICE_RETRY_COUNT must be positive, got %d", config.PriceRetryCount)
	}
	if config.OrderRetryCount <= 0 {
		return TradeIntent{}, fmt.Errorf("ORDER_RETRY_COUNT must be positive, got %d", config.OrderRetryCount)
	}

	return TradeIntent{
		Symbol:             config.Pair,
		Quantity:           quantity,
		OffsetPercent:      offset,
		OrderTimeout:       config.OrderTimeout,
		ListingInterval:    config.PairCheckInterval,
		StatusPollInterval: config.StatusPollInterval,
		PriceRetryCount:    config.PriceRetryCount,
		PriceRetryDelay:    config.PriceRetryDelay,
		SubmitAttempts:     config.OrderRetryCount,
		SubmitBackoff:      config.OrderRetryDelay,
		LaunchAt:           launchAt,
		LaunchLead:         config.LaunchLead,
	}, nil
}
