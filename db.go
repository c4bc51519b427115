package main

import (
	"log"
	"os"
	"strings"

	"github.com/Ayman-Hesham/Fintrack/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.User{}); err != nil {
			log.Printf("migration warning (users): %v", err)
		}
		if err := db.AutoMigrate(&models.Category{}); err != nil {
			log.Printf("migration warning (categories): %v", err)
		}
		if err := db.AutoMigrate(&models.BankAccount{}); err != nil {
			log.Printf("migration warning (bank_accounts): %v", err)
		}
		if err := db.AutoMigrate(&models.Transaction{}); err != nil {
			log.Printf("migration warning (transactions): %v", err)
		}
		if err := db.AutoMigrate(&models.Budget{}); err != nil {
			log.Printf("migration warning (budgets): %v", err)
		}
		if err := db.AutoMigrate(&models.SyncJob{}); err != nil {
			log.Printf("migration warning (sync_jobs): %v", err)
		}
	}
	seedDB()
}

// defaultCategories are the shared rows every user sees (user_id NULL).
// "Other" doubles as the fallback when a generated transaction references an
// unknown category, so it must stay in this list.
var defaultCategories = []models.Category{
	{Name: "Groceries", Icon: "🛒", Color: "#4CAF50"},
	{Name: "Transport", Icon: "🚌", Color: "#2196F3"},
	{Name: "Entertainment", Icon: "🎬", Color: "#9C27B0"},
	{Name: "Utilities", Icon: "💡", Color: "#FF9800"},
	{Name: "Dining", Icon: "🍽️", Color: "#F44336"},
	{Name: "Health", Icon: "💊", Color: "#00BCD4"},
	{Name: "Salary", Icon: "💰", Color: "#8BC34A"},
	{Name: "Other", Icon: "📦", Color: "#9E9E9E"},
}

func seedDB() {
	for _, c := range defaultCategories {
		var cnt int64
		db.Model(&models.Category{}).Where("name = ? AND user_id IS NULL", c.Name).Count(&cnt)
		if cnt == 0 {
			cat := c
			if err := db.Create(&cat).Error; err != nil {
				log.Printf("failed to seed category %s: %v", c.Name, err)
			}
		}
	}
}
