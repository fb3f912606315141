package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Recurrence frequencies. Stored and validated but not yet processed by
// any background job.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyYearly  = "yearly"
)

// ValidType reports whether t is a known transaction type.
func ValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

// ValidFrequency reports whether f is a known recurrence frequency.
func ValidFrequency(f string) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

type Transaction struct {
	ID            int             `json:"id"`
	UserID        int             `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Type          string          `json:"transaction_type"`
	CategoryID    *int            `json:"category"`
	Date          Date            `json:"date"`
	IsRecurring   bool            `json:"is_recurring"`
	Frequency     *string         `json:"frequency"`
	EndDate       *Date           `json:"end_date"`
	LastProcessed *Date           `json:"last_processed"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TransactionFilter narrows a user's transaction set. Zero values mean
// "not filtered". The date range applies only when both bounds are set.
type TransactionFilter struct {
	StartDate  *Date
	EndDate    *Date
	Type       string
	CategoryID int
}
