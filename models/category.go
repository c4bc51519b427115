package models

import "time"

// Category groups transactions. Rows with a nil UserID are the shared
// defaults seeded at startup; custom categories belong to one user.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Name      string    `gorm:"size:30;not null;index" json:"name"`
	Icon      string    `gorm:"size:10" json:"icon"`
	Color     string    `gorm:"size:16" json:"color"`
	Custom    bool      `gorm:"not null;default:false" json:"custom"`
	UserID    *uint     `gorm:"index" json:"userId"`
}
