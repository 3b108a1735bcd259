package balance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"listingsniper/src/connectors"
	"listingsniper/src/report"
)

type Config struct {
	APIKey    string `envconfig:"BINANCE_API_KEY"`
	APISecret string `envconfig:"BINANCE_API_SECRET"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

type Balance struct{}

// Start prints every non-zero balance of the configured account.
func (b *Balance) Start() error {
	config := GetConfig()
	if config.APIKey == "" || config.APISecret == "" {
		return errors.New("BINANCE_API_KEY and BINANCE_API_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	client := connectors.NewBinanceConnector(config.APIKey, config.APISecret)
	defer client.Close()

	balances, err := client.Balances(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch balances")
		return err
	}

	report.PrintBalances(os.Stdout, balances)
	return nil
}
