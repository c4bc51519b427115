package main

import (
	"strings"
	"testing"
	"time"

	"github.com/Ayman-Hesham/Fintrack/models"

	"github.com/shopspring/decimal"
)

func TestWholeDays(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		lastSync time.Time
		want     int
	}{
		{now.Add(-2 * time.Hour), 0},
		{now.AddDate(0, 0, -1), 1},
		{now.AddDate(0, 0, -3), 3},
		{now.Add(-36 * time.Hour), 1},
		{now.Add(2 * time.Hour), 0}, // clock skew: lastSync in the future
	}
	for _, tc := range cases {
		if got := wholeDays(tc.lastSync, now); got != tc.want {
			t.Fatalf("wholeDays(%v) = %d, want %d", tc.lastSync, got, tc.want)
		}
	}
}

func TestFallbackCategoryPrefersOther(t *testing.T) {
	categories := []models.Category{
		{ID: 1, Name: "Groceries"},
		{ID: 8, Name: "Other"},
		{ID: 3, Name: "Transport"},
	}
	if got := fallbackCategory(categories); got.ID != 8 {
		t.Fatalf("expected Other (id 8) got %+v", got)
	}
}

func TestFallbackCategoryFirstWhenNoOther(t *testing.T) {
	categories := []models.Category{
		{ID: 4, Name: "Dining"},
		{ID: 5, Name: "Health"},
	}
	if got := fallbackCategory(categories); got.ID != 4 {
		t.Fatalf("expected first category got %+v", got)
	}
}

func TestBuildSyncPromptNoBudgets(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	categories := []models.Category{
		{ID: 1, Name: "Groceries"},
		{ID: 8, Name: "Other"},
	}
	prompt := buildSyncPrompt(3, from, to, decimal.NewFromFloat(7250.50), categories, nil)

	for _, want := range []string{
		"last 3 days",
		"from 2025-03-01 to 2025-03-04",
		"balance of 7250.5",
		"1: Groceries",
		"8: Other",
		"no specific budgets",
		"'INCOME' or 'EXPENSE'",
		"Output ONLY the JSON array",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "budgets per category along") {
		t.Fatalf("no-budget prompt should not mention budget list:\n%s", prompt)
	}
}

func TestBuildSyncPromptWithBudgets(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	categories := []models.Category{{ID: 1, Name: "Groceries"}}
	budgets := []budgetSpend{
		{
			Budget: models.Budget{
				CategoryID: 1,
				Category:   models.Category{ID: 1, Name: "Groceries"},
				Amount:     decimal.NewFromInt(400),
				Period:     models.BudgetMonthly,
			},
			Spent: decimal.NewFromFloat(123.45),
		},
	}
	prompt := buildSyncPrompt(1, from, to, decimal.NewFromInt(5000), categories, budgets)

	if !strings.Contains(prompt, "budgets per category along with how much they have spent") {
		t.Fatalf("prompt missing budget preamble:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Groceries: 400: spent-123.45") {
		t.Fatalf("prompt missing budget line:\n%s", prompt)
	}
	if strings.Contains(prompt, "no specific budgets") {
		t.Fatalf("budget prompt should not use the no-budget variant:\n%s", prompt)
	}
}

func TestBatchTotalsExactDecimal(t *testing.T) {
	// 0.1 + 0.2 style sums must come out exact, not float-drifted.
	income := decimal.Zero
	expense := decimal.Zero
	for _, amt := range []string{"0.10", "0.20", "1999.99"} {
		d, err := decimal.NewFromString(amt)
		if err != nil {
			t.Fatal(err)
		}
		expense = expense.Add(d)
	}
	income = income.Add(decimal.NewFromInt(2500))
	net := income.Sub(expense)
	if net.String() != "499.71" {
		t.Fatalf("expected exact net 499.71 got %s", net)
	}
}
