package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BaseURL     string        `envconfig:"BINANCE_BASE_URL" default:"https://api.binance.com"`
	HTTPTimeout time.Duration `envconfig:"BINANCE_HTTP_TIMEOUT" default:"10s"`
	RecvWindow  int64         `envconfig:"BINANCE_RECV_WINDOW" default:"5000"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
