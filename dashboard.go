package main

import (
	"net/http"
	"sort"

	"github.com/Ayman-Hesham/Fintrack/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type categoryExpense struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Color    string          `json:"color"`
}

// dashboardHandler aggregates the caller's financial picture: lifetime
// totals, linked accounts, the ten most recent transactions and expense
// totals per category.
func dashboardHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var txns []models.Transaction
	if err := db.Model(&models.Transaction{}).Preload("Category").
		Joins("JOIN bank_accounts ON bank_accounts.id = transactions.bank_account_id").
		Where("bank_accounts.user_id = ?", user.ID).
		Order("transactions.date desc, transactions.id desc").
		Find(&txns).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	totalIncome := decimal.Zero
	totalExpenses := decimal.Zero
	byCategory := map[string]*categoryExpense{}
	for _, t := range txns {
		if t.Type == models.TransactionIncome {
			totalIncome = totalIncome.Add(t.Amount)
			continue
		}
		totalExpenses = totalExpenses.Add(t.Amount)
		if e, found := byCategory[t.Category.Name]; found {
			e.Amount = e.Amount.Add(t.Amount)
		} else {
			byCategory[t.Category.Name] = &categoryExpense{
				Category: t.Category.Name,
				Amount:   t.Amount,
				Color:    t.Category.Color,
			}
		}
	}
	expensesByCategory := make([]categoryExpense, 0, len(byCategory))
	for _, e := range byCategory {
		expensesByCategory = append(expensesByCategory, *e)
	}
	sort.Slice(expensesByCategory, func(i, j int) bool {
		return expensesByCategory[i].Amount.GreaterThan(expensesByCategory[j].Amount)
	})

	var accounts []models.BankAccount
	if err := db.Where("user_id = ?", user.ID).Order("id").Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	recent := txns
	if len(recent) > 10 {
		recent = recent[:10]
	}

	c.JSON(http.StatusOK, gin.H{
		"totalIncome":        totalIncome,
		"totalExpenses":      totalExpenses,
		"totalSavings":       totalIncome.Sub(totalExpenses),
		"accounts":           accounts,
		"recentTransactions": recent,
		"expensesByCategory": expensesByCategory,
	})
}
