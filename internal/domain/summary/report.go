package summary

import (
	"fmt"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
)

// MonthOrder selects how ByMonth results are ordered in a Report
type MonthOrder string

const (
	// FirstSeen keeps months in the order they first appear in the list
	FirstSeen MonthOrder = "first_seen"
	// ChronologicalOrder sorts months from oldest to newest
	ChronologicalOrder MonthOrder = "chronological"
)

// ParseMonthOrder converts a query value into a MonthOrder, defaulting to FirstSeen
func ParseMonthOrder(value string) (MonthOrder, error) {
	switch MonthOrder(value) {
	case "", FirstSeen:
		return FirstSeen, nil
	case ChronologicalOrder:
		return ChronologicalOrder, nil
	default:
		return "", &entity.ValidationError{
			Fields: []string{"month_order"},
			Reason: fmt.Sprintf("unsupported month order %q", value),
		}
	}
}

// Report gathers every derived view of a transaction list
type Report struct {
	TotalSpent     float64             `json:"totalSpent"`
	ByMonth        []MonthTotal        `json:"byMonth"`
	ByCategory     []CategoryTotal     `json:"byCategory"`
	BudgetVsActual []BudgetComparison  `json:"budgetVsActual"`
	Insights       Insights            `json:"insights"`
	MostRecent     *entity.Transaction `json:"mostRecent"`
	Count          int                 `json:"count"`
}

// Build computes a Report over list using budgets for the known categories
func Build(list []entity.Transaction, budgets map[string]float64, order MonthOrder) Report {
	months := ByMonth(list)
	if order == ChronologicalOrder {
		months = Chronological(months)
	}

	comparison := BudgetVsActual(entity.Categories, budgets, list)

	return Report{
		TotalSpent:     TotalSpent(list),
		ByMonth:        months,
		ByCategory:     ByCategory(list),
		BudgetVsActual: comparison,
		Insights:       ComputeInsights(comparison),
		MostRecent:     MostRecent(list),
		Count:          len(list),
	}
}
