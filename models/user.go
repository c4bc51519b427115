package models

import (
	"time"
)

// User model
type User struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
	DeletedAt      *time.Time    `gorm:"index" json:"-"`
	Name           string        `gorm:"size:255;not null" json:"name"`
	Email          string        `gorm:"size:255;not null;uniqueIndex" json:"email"`
	HashedPassword []byte        `gorm:"not null" json:"-"`
	Accounts       []BankAccount `json:"-"`
}
