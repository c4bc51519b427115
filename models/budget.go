package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget periods.
const (
	BudgetWeekly  = "WEEKLY"
	BudgetMonthly = "MONTHLY"
	BudgetYearly  = "YEARLY"
)

// Budget is a per-category spending limit. At most one budget exists per
// (user, category) pair.
type Budget struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	UserID     uint            `gorm:"not null;uniqueIndex:idx_budget_user_category" json:"userId"`
	CategoryID uint            `gorm:"not null;uniqueIndex:idx_budget_user_category" json:"categoryId"`
	Category   Category        `json:"category"`
	Amount     decimal.Decimal `gorm:"type:numeric(19,2);not null" json:"amount"`
	Period     string          `gorm:"size:8;not null" json:"period"`
}
