package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Ayman-Hesham/Fintrack/models"
	"github.com/Ayman-Hesham/Fintrack/pkg/genclient"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// wholeDays returns the number of whole days between two instants,
// truncating toward zero.
func wholeDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// syncTransactions generates and records account activity since the last
// sync, adjusting the balance in the same commit. It returns the created
// transactions.
func syncTransactions(bankAccountID uint, user *models.User) ([]models.Transaction, error) {
	var account models.BankAccount
	if err := db.First(&account, bankAccountID).Error; err != nil {
		return nil, fmt.Errorf("bank account %d not found", bankAccountID)
	}
	if account.UserID != user.ID {
		return nil, fmt.Errorf("bank account does not belong to user")
	}

	now := time.Now()
	days := wholeDays(account.LastSync, now)
	if days <= 0 {
		// Same-day re-sync is a deliberate no-op.
		return []models.Transaction{}, nil
	}

	budgets, err := budgetsWithSpend(user.ID)
	if err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	categories, err := categoriesForUser(user.ID)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("user has no categories to classify transactions into")
	}

	prompt := buildSyncPrompt(days, account.LastSync, now, account.Balance, categories, budgets)

	raw, err := genClient.Generate(context.Background(), prompt)
	if err != nil {
		return nil, fmt.Errorf("generate transactions: %w", err)
	}
	descriptors, err := genclient.ParseTransactions(raw)
	if err != nil {
		return nil, fmt.Errorf("parse generated transactions: %w", err)
	}

	byID := make(map[uint]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	fallback := fallbackCategory(categories)

	totalIncome := decimal.Zero
	totalExpense := decimal.Zero
	txns := make([]models.Transaction, 0, len(descriptors))
	for _, d := range descriptors {
		category := fallback
		if d.CategoryID != nil {
			if c, ok := byID[*d.CategoryID]; ok {
				category = c
			}
		}
		txns = append(txns, models.Transaction{
			BankAccountID: account.ID,
			CategoryID:    category.ID,
			Type:          d.Type,
			Amount:        d.Amount,
			Description:   d.Description,
			Manual:        false,
			Date:          d.Date,
		})
		if d.Type == models.TransactionIncome {
			totalIncome = totalIncome.Add(d.Amount)
		} else {
			totalExpense = totalExpense.Add(d.Amount)
		}
	}

	net := totalIncome.Sub(totalExpense)
	if err := applyToAccount(account.ID, txns, net, &now); err != nil {
		return nil, fmt.Errorf("commit synced transactions: %w", err)
	}
	return txns, nil
}

// fallbackCategory picks "Other" when present, else the first category. It is
// the target for generated transactions whose categoryId is missing or
// unrecognized.
func fallbackCategory(categories []models.Category) models.Category {
	for _, c := range categories {
		if c.Name == "Other" {
			return c
		}
	}
	return categories[0]
}

// applyToAccount persists new transactions and the matching balance delta as
// one commit. The account row stays locked for the duration, so concurrent
// mutations of the same account serialize instead of losing updates, and no
// reader ever sees transactions without the balance change or vice versa.
func applyToAccount(accountID uint, txns []models.Transaction, net decimal.Decimal, lastSync *time.Time) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var account models.BankAccount
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&account, accountID).Error; err != nil {
			return err
		}
		newBalance := account.Balance.Add(net)
		if newBalance.IsNegative() {
			return fmt.Errorf("balance of account %d cannot go negative", accountID)
		}
		if len(txns) > 0 {
			if err := tx.Create(&txns).Error; err != nil {
				return err
			}
		}
		updates := map[string]interface{}{"balance": newBalance}
		if lastSync != nil {
			updates["last_sync"] = *lastSync
		}
		return tx.Model(&models.BankAccount{}).Where("id = ?", accountID).Updates(updates).Error
	})
}

// budgetSpend pairs a budget with the amount already spent in its category.
type budgetSpend struct {
	Budget models.Budget
	Spent  decimal.Decimal
}

func budgetsWithSpend(userID uint) ([]budgetSpend, error) {
	var budgets []models.Budget
	if err := db.Preload("Category").Where("user_id = ?", userID).Find(&budgets).Error; err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return nil, nil
	}
	spent, err := spendByCategory(userID)
	if err != nil {
		return nil, err
	}
	out := make([]budgetSpend, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, budgetSpend{Budget: b, Spent: spent[b.CategoryID]})
	}
	return out, nil
}

// spendByCategory recomputes the user's expense total per category on every
// call. Call volume is per-request, so no cache.
func spendByCategory(userID uint) (map[uint]decimal.Decimal, error) {
	rows, err := db.Model(&models.Transaction{}).
		Select("transactions.category_id, SUM(transactions.amount) as total").
		Joins("JOIN bank_accounts ON bank_accounts.id = transactions.bank_account_id").
		Where("bank_accounts.user_id = ? AND transactions.type = ?", userID, models.TransactionExpense).
		Group("transactions.category_id").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint]decimal.Decimal)
	for rows.Next() {
		var categoryID uint
		var total decimal.Decimal
		if err := rows.Scan(&categoryID, &total); err != nil {
			return nil, err
		}
		out[categoryID] = total
	}
	return out, rows.Err()
}

// categoriesForUser returns the shared default categories plus the user's own.
func categoriesForUser(userID uint) ([]models.Category, error) {
	var categories []models.Category
	err := db.Where("user_id = ? OR user_id IS NULL", userID).Order("id").Find(&categories).Error
	return categories, err
}

// buildSyncPrompt describes the sync window, balance, categories and budget
// state for the generation client. The wording is a contract with the model:
// it pins the descriptor fields and bans markdown fencing.
func buildSyncPrompt(days int, from, to time.Time, balance decimal.Decimal, categories []models.Category, budgets []budgetSpend) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a JSON array of mock bank transactions for the last %d days (from %s to %s). ",
		days, from.Format("2006-01-02"), to.Format("2006-01-02"))
	fmt.Fprintf(&b, "The user has a bank account balance of %s. ", balance)

	b.WriteString("The user has the following categories available:\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "%d: %s, ", c.ID, c.Name)
	}
	b.WriteString("\n")

	if len(budgets) == 0 {
		b.WriteString("The user has no specific budgets set. Generate realistic transactions based on the available categories and balance. ")
	} else {
		b.WriteString("The user has the following budgets per category along with how much they have spent: ")
		for _, bs := range budgets {
			fmt.Fprintf(&b, "%s: %s: spent-%s, ", bs.Budget.Category.Name, bs.Budget.Amount, bs.Spent)
		}
		b.WriteString(". Generate realistic transactions (expenses and potentially income) based on these budgets and the balance. ")
	}

	b.WriteString("If the date range includes the start of a month, include a salary income transaction. ")
	b.WriteString("Each transaction object should have: 'amount' (number), 'date' (YYYY-MM-DD), 'description' (string), ")
	b.WriteString("'type' ('INCOME' or 'EXPENSE'), and 'categoryId' (integer, referring to the ID of the category from the provided list). ")
	b.WriteString("Output ONLY the JSON array. Do not wrap the response in code fences.")
	return b.String()
}
