package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types.
const (
	TransactionIncome  = "INCOME"
	TransactionExpense = "EXPENSE"
)

// Transaction is a single income or expense entry on a bank account.
// Rows are created once and never updated.
type Transaction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time       `json:"createdAt"`
	BankAccountID uint            `gorm:"index;not null" json:"bankAccountId"`
	CategoryID    uint            `gorm:"index;not null" json:"categoryId"`
	Category      Category        `json:"category"`
	Type          string          `gorm:"size:8;not null;index" json:"type"`
	Amount        decimal.Decimal `gorm:"type:numeric(19,2);not null" json:"amount"`
	Description   string          `gorm:"size:255;default:'Transaction'" json:"description"`
	Manual        bool            `gorm:"not null;default:false" json:"manual"`
	Date          time.Time       `gorm:"not null;index" json:"date"`
}
