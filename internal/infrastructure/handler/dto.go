package handler

import (
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/domain/summary"
)

// TransactionRequest represents the request body for creating or updating a transaction
type TransactionRequest struct {
	Amount      *float64 `json:"amount"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
}

func (r TransactionRequest) toInput() entity.TransactionInput {
	return entity.TransactionInput{
		Amount:      r.Amount,
		Date:        r.Date,
		Description: r.Description,
		Category:    r.Category,
	}
}

// TransactionResponse represents one transaction in API responses
type TransactionResponse struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newTransactionResponse(tx *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID,
		Amount:      tx.Amount,
		Date:        tx.Date,
		Description: tx.Description,
		Category:    tx.Category,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

// TransactionEnvelope wraps a single transaction
type TransactionEnvelope struct {
	Data TransactionResponse `json:"data"`
}

// TransactionListEnvelope wraps a list of transactions
type TransactionListEnvelope struct {
	Data []TransactionResponse `json:"data"`
}

// SummaryEnvelope wraps a summary report
type SummaryEnvelope struct {
	Data summary.Report `json:"data"`
}

// BudgetRequest represents the request body for setting a category budget
type BudgetRequest struct {
	Amount *float64 `json:"amount"`
}

// BudgetEnvelope wraps a single budget
type BudgetEnvelope struct {
	Data entity.Budget `json:"data"`
}

// BudgetsEnvelope wraps every budget keyed by category
type BudgetsEnvelope struct {
	Data map[string]float64 `json:"data"`
}

// HealthResponse reports whether the store is reachable
type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}
