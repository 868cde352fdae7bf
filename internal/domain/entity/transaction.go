package entity

import (
	"math"
	"strings"
	"time"
)

// Categories is the fixed set of spending categories offered by the dashboard
// and compared against budgets. The store accepts any category string.
var Categories = []string{"Food", "Rent", "Transport", "Shopping", "Utilities", "Other"}

// IsKnownCategory reports whether category is one of Categories
func IsKnownCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Transaction represents one recorded spending event
type Transaction struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ReasonMissingFields is the ValidationError reason used when required fields are absent
const ReasonMissingFields = "missing required fields"

// TransactionInput carries the client-supplied fields of a transaction.
// Amount is a pointer so that an omitted amount can be told apart from zero.
type TransactionInput struct {
	Amount      *float64 `json:"amount"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
}

// Validate ensures every required field is present
func (in TransactionInput) Validate() error {
	var missing []string

	if in.Amount == nil {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(in.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(in.Category) == "" {
		missing = append(missing, "category")
	}

	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Reason: ReasonMissingFields}
	}
	if !IsFinite(*in.Amount) {
		return &ValidationError{Fields: []string{"amount"}, Reason: "amount must be a finite number"}
	}
	return nil
}

// IsFinite reports whether v is neither NaN nor an infinity
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Apply copies the input fields onto tx. The input must already be valid.
func (in TransactionInput) Apply(tx *Transaction) {
	tx.Amount = *in.Amount
	tx.Date = in.Date
	tx.Description = in.Description
	tx.Category = in.Category
}
