package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"listingsniper/src/database"
	"listingsniper/src/model"
)

// ExecutionLogRepository handles read/write operations for the execution
// journal.
type ExecutionLogRepository struct {
	db *gorm.DB
}

// NewExecutionLogRepository creates a repository over the journal DB, or
// nil when journaling is disabled.
func NewExecutionLogRepository() *ExecutionLogRepository {
	if database.DB == nil {
		return nil
	}
	return &ExecutionLogRepository{db: database.DB}
}

// WithDB allows overriding the underlying *gorm.DB instance. Useful for
// tests or when using a specific session/transaction.
func (r *ExecutionLogRepository) WithDB(db *gorm.DB) *ExecutionLogRepository {
	return &ExecutionLogRepository{db: db}
}

// Create inserts a journal row. The given row is updated with the
// generated ID and timestamp.
func (r *ExecutionLogRepository) Create(ctx context.Context, row *model.ExecutionLog) error {
	logger.WithFields(logger.Fields{
		"repo":    "ExecutionLogRepository",
		"op":      "Create",
		"phase":   row.Phase,
		"symbol":  row.Symbol,
		"outcome": row.Outcome,
	}).Debug("Creating journal row")

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		logger.WithFields(logger.Fields{
			"repo": "ExecutionLogRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create journal row")
		return err
	}
	return nil
}

// ListRecent returns the newest journal rows, most recent first.
func (r *ExecutionLogRepository) ListRecent(ctx context.Context, limit int) ([]model.ExecutionLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []model.ExecutionLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo": "ExecutionLogRepository",
			"op":   "ListRecent",
		}).WithError(err).Error("Failed to list journal rows")
		return nil, err
	}
	return rows, nil
}
