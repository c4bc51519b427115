package models

import "time"

// SyncJob statuses. Transitions are monotonic: SUBMITTED -> PROCESSING ->
// {COMPLETED, FAILED}; a terminal status never changes again.
const (
	JobSubmitted  = "SUBMITTED"
	JobProcessing = "PROCESSING"
	JobCompleted  = "COMPLETED"
	JobFailed     = "FAILED"
)

// SyncJob tracks one asynchronous bank-sync request. The idempotency key is
// globally unique so concurrent submissions with the same key collapse onto
// a single row. Jobs are never deleted.
type SyncJob struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"jobId"`
	IdempotencyKey string    `gorm:"size:255;not null;uniqueIndex" json:"idempotencyKey"`
	Status         string    `gorm:"size:16;not null" json:"status"`
	Result         *string   `gorm:"type:text" json:"result"`
	BankAccountID  uint      `gorm:"not null" json:"bankAccountId"`
	UserID         uint      `gorm:"index;not null" json:"userId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
