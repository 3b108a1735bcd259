package model

import "time"

// ExecutionPhase constants label which pipeline stage produced a journal row.
const (
	PhaseLaunch     = "launch"
	PhaseListing    = "listing"
	PhasePlanning   = "planning"
	PhaseSubmission = "submission"
	PhaseSupervised = "supervision"
)

// ExecutionOutcome constants represent the conclusion of a journal row.
const (
	OutcomeOK          = "ok"
	OutcomeFilled      = "filled"
	OutcomeClosed      = "closed"
	OutcomeCanceled    = "canceled"
	OutcomeCancelError = "canceled_error"
	OutcomeError       = "error"
	OutcomeAborted     = "aborted"
)

// ExecutionLog stores the history of each interaction with the exchange and
// the final conclusion of a run. Journaling is a side effect only: nothing
// in the trade path reads it back.
type ExecutionLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Phase  string `gorm:"size:50;index" json:"phase"`
	Symbol string `gorm:"size:100" json:"symbol"`

	ExchangeOrderID int64  `gorm:"index" json:"exchange_order_id"`
	ClientOrderID   string `gorm:"size:255" json:"client_order_id"`

	Price    string `gorm:"size:64" json:"price"`
	Quantity string `gorm:"size:64" json:"quantity"`

	Status       string  `gorm:"size:50" json:"status"`
	Outcome      string  `gorm:"size:50;not null" json:"outcome"`
	ErrorMessage *string `json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName controls the exact table name for journal rows.
func (ExecutionLog) TableName() string {
	return "execution_logs"
}
