package history

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"listingsniper/src/database"
	"listingsniper/src/report"
	"listingsniper/src/repository"
)

type Config struct {
	Limit int `envconfig:"HISTORY_LIMIT" default:"50"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

type History struct{}

// Start prints the most recent execution journal rows.
func (h *History) Start() error {
	config := GetConfig()

	if err := database.InitDB(); err != nil {
		logrus.WithError(err).Error("Failed to open journal database")
		return err
	}

	repo := repository.NewExecutionLogRepository()
	if repo == nil {
		return errors.New("journaling is disabled (ENABLE_DB=false), no history available")
	}

	rows, err := repo.ListRecent(context.Background(), config.Limit)
	if err != nil {
		logrus.WithError(err).Error("Failed to list journal rows")
		return err
	}

	report.PrintExecutionLogs(os.Stdout, rows)
	return nil
}
