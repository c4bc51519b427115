package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account types accepted when linking a bank account.
const (
	AccountTypeChecking = "CHECKING"
	AccountTypeSavings  = "SAVINGS"
	AccountTypeCredit   = "CREDIT"
)

// BankAccount represents a linked bank account owned by exactly one user.
// Balance is mutated only inside a locked DB transaction (sync or manual
// transaction creation) so it always equals the seed balance plus the signed
// sum of the account's transactions.
type BankAccount struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	UserID      uint            `gorm:"index;not null" json:"userId"`
	BankName    string          `gorm:"size:64;not null" json:"bankName"`
	NickName    string          `gorm:"size:64;not null" json:"nickName"`
	AccountType string          `gorm:"size:16;not null" json:"accountType"`
	AccountNum  string          `gorm:"size:12;not null" json:"accountNum"`
	Balance     decimal.Decimal `gorm:"type:numeric(19,2);not null" json:"balance"`
	LastSync    time.Time       `gorm:"not null" json:"lastSync"`
}
