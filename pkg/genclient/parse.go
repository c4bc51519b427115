package genclient

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionData is one generated transaction descriptor.
type TransactionData struct {
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	Type        string // INCOME or EXPENSE
	CategoryID  *uint
}

type rawTransaction struct {
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	CategoryID  *uint           `json:"categoryId"`
}

// StripFences removes a ```json ... ``` wrapper the model sometimes adds
// despite being told not to.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseTransactions decodes a generated JSON array of transaction
// descriptors, stripping any markdown fencing first. Every descriptor must
// carry a positive amount, a YYYY-MM-DD date and a known type; one bad row
// rejects the whole batch.
func ParseTransactions(raw string) ([]TransactionData, error) {
	clean := StripFences(raw)
	var rows []rawTransaction
	if err := json.Unmarshal([]byte(clean), &rows); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	out := make([]TransactionData, 0, len(rows))
	for i, r := range rows {
		if !r.Amount.IsPositive() {
			return nil, fmt.Errorf("transaction %d: amount must be positive, got %s", i, r.Amount)
		}
		if r.Type != "INCOME" && r.Type != "EXPENSE" {
			return nil, fmt.Errorf("transaction %d: unknown type %q", i, r.Type)
		}
		date, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: bad date %q", i, r.Date)
		}
		out = append(out, TransactionData{
			Amount:      r.Amount,
			Date:        date,
			Description: r.Description,
			Type:        r.Type,
			CategoryID:  r.CategoryID,
		})
	}
	return out, nil
}
