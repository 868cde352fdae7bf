package repository

import (
	"context"
)

// BudgetRepository defines the interface for per-category budget storage
type BudgetRepository interface {
	// Budgets returns every stored budget keyed by category
	Budgets(ctx context.Context) (map[string]float64, error)

	// SetBudget stores the budget for a category, replacing any previous value
	SetBudget(ctx context.Context, category string, amount float64) error
}
