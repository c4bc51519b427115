package genclient

import (
	"strings"
	"testing"
)

func TestStripFencesJSONBlock(t *testing.T) {
	raw := "```json\n[{\"amount\": 12.50}]\n```"
	got := StripFences(raw)
	if got != `[{"amount": 12.50}]` {
		t.Fatalf("unexpected strip result: %q", got)
	}
}

func TestStripFencesBareBlock(t *testing.T) {
	raw := "```\n[]\n```"
	if got := StripFences(raw); got != "[]" {
		t.Fatalf("expected [] got %q", got)
	}
}

func TestStripFencesNoFence(t *testing.T) {
	raw := "  [1, 2, 3]  "
	if got := StripFences(raw); got != "[1, 2, 3]" {
		t.Fatalf("expected untouched JSON got %q", got)
	}
}

func TestParseTransactions(t *testing.T) {
	raw := "```json\n" + `[
		{"amount": 42.75, "date": "2025-03-02", "description": "Groceries run", "type": "EXPENSE", "categoryId": 1},
		{"amount": 2500, "date": "2025-03-01", "description": "Salary", "type": "INCOME", "categoryId": 7},
		{"amount": 9.99, "date": "2025-03-03", "description": "Streaming", "type": "EXPENSE"}
	]` + "\n```"

	txns, err := ParseTransactions(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("expected 3 transactions got %d", len(txns))
	}
	if txns[0].Amount.String() != "42.75" || txns[0].Type != "EXPENSE" {
		t.Fatalf("unexpected first transaction: %+v", txns[0])
	}
	if txns[0].CategoryID == nil || *txns[0].CategoryID != 1 {
		t.Fatalf("expected categoryId 1 got %v", txns[0].CategoryID)
	}
	if txns[1].Date.Format("2006-01-02") != "2025-03-01" {
		t.Fatalf("unexpected date: %v", txns[1].Date)
	}
	if txns[2].CategoryID != nil {
		t.Fatalf("expected nil categoryId for missing field got %v", *txns[2].CategoryID)
	}
}

func TestParseTransactionsRejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"negative amount": `[{"amount": -5, "date": "2025-03-02", "description": "x", "type": "EXPENSE"}]`,
		"zero amount":     `[{"amount": 0, "date": "2025-03-02", "description": "x", "type": "EXPENSE"}]`,
		"unknown type":    `[{"amount": 5, "date": "2025-03-02", "description": "x", "type": "TRANSFER"}]`,
		"bad date":        `[{"amount": 5, "date": "02/03/2025", "description": "x", "type": "EXPENSE"}]`,
		"not an array":    `{"amount": 5}`,
	}
	for name, raw := range cases {
		if _, err := ParseTransactions(raw); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParseTransactionsEmptyArray(t *testing.T) {
	txns, err := ParseTransactions("[]")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("expected empty batch got %d", len(txns))
	}
}

func TestParseTransactionsGarbage(t *testing.T) {
	_, err := ParseTransactions("I could not generate transactions today.")
	if err == nil || !strings.Contains(err.Error(), "decode transactions") {
		t.Fatalf("expected decode error got %v", err)
	}
}
