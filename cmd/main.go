package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"listingsniper/cmd/balance"
	"listingsniper/cmd/history"
	"listingsniper/cmd/sniper"
)

var Version string

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()

	app := cli.NewApp()
	app.Name = "listingsniper"
	app.Usage = "Time a limit sell against a new pair listing"
	app.Version = Version

	app.Commands = []cli.Command{
		snipeCMD,
		balanceCMD,
		historyCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	snipeCMD = cli.Command{
		Name:        "snipe",
		Usage:       "run the listing snipe pipeline",
		Action:      snipeAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Wait for launch, detect the listing, place and supervise the sell order`,
	}
	balanceCMD = cli.Command{
		Name:        "balance",
		Usage:       "show non-zero account balances",
		Action:      balanceAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Print every non-zero spot balance of the configured account`,
	}
	historyCMD = cli.Command{
		Name:        "history",
		Usage:       "show recent execution journal rows",
		Action:      historyAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Print recent rows of the local execution journal`,
	}
)

func snipeAction(_ *cli.Context) error {
	logrus.WithField("cmd", "snipe").Info("Starting snipe CMD")

	s := &sniper.Sniper{}
	if err := s.Start(); err != nil {
		logrus.WithError(err).Error("Snipe CMD failed")
		return err
	}
	return nil
}

func balanceAction(_ *cli.Context) error {
	logrus.WithField("cmd", "balance").Info("Starting balance CMD")

	b := &balance.Balance{}
	if err := b.Start(); err != nil {
		logrus.WithError(err).Error("Balance CMD failed")
		return err
	}
	return nil
}

func historyAction(_ *cli.Context) error {
	logrus.WithField("cmd", "history").Info("Starting history CMD")

	h := &history.History{}
	if err := h.Start(); err != nil {
		logrus.WithError(err).Error("History CMD failed")
		return err
	}
	return nil
}
