package sniper

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"listingsniper/src/connectors"
	"listingsniper/src/database"
	"listingsniper/src/repository"
	core "listingsniper/src/sniper"
)

type Sniper struct{}

// Start wires one snipe run: signal-aware context, journal init, the
// shared gateway connection, and the pipeline. The gateway is released in
// exactly one deferred block so every exit path, including abort and
// panic unwinds, closes it.
func (s *Sniper) Start() error {
	config := GetConfig()
	if config.APIKey == "" || config.APISecret == "" {
		return errors.New("BINANCE_API_KEY and BINANCE_API_SECRET must be set")
	}

	intent, err := core.NewTradeIntent(core.GetConfig())
	if err != nil {
		logrus.WithError(err).Error("Invalid trade configuration")
		return err
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	// Journal init failures degrade to a run without history, never to a
	// failed run.
	if err := database.InitDB(); err != nil {
		logrus.WithError(err).Warn("Journal database unavailable, continuing without it")
	}

	client := connectors.NewBinanceConnector(config.APIKey, config.APISecret)
	defer client.Close()

	logrus.WithFields(logrus.Fields{
		"symbol":   intent.Symbol,
		"quantity": intent.Quantity.String(),
	}).Info("Starting listing snipe run")

	runner := &core.Runner{
		Gateway: client,
		Intent:  intent,
		Journal: repository.NewExecutionLogRepository(),
	}

	if err := runner.Run(ctx); err != nil {
		logrus.WithError(err).Error("Snipe run failed")
		return err
	}

	logrus.Info("Snipe run completed")
	return nil
}
