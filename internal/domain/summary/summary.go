// Package summary derives totals and budget comparisons from a list of transactions.
// Every function is pure and recomputes its result from the full list it is given.
package summary

import (
	"sort"
	"strings"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// monthLabelLayout renders dates as "Jan 2024"
const monthLabelLayout = "Jan 2006"

// dateLayouts are the date formats a transaction date is parsed with, in order
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// MonthTotal is the amount spent in one calendar month
type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`

	start time.Time
}

// CategoryTotal is the amount spent in one category
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// BudgetComparison pairs a category budget with the actual amount spent
type BudgetComparison struct {
	Category string  `json:"category"`
	Budget   float64 `json:"budget"`
	Actual   float64 `json:"actual"`
}

// Overspent reports whether actual spending exceeds the budget
func (c BudgetComparison) Overspent() bool {
	return c.Actual > c.Budget
}

// Insights partitions categories by whether they stayed within budget
type Insights struct {
	Overspent    []string `json:"overspent"`
	WithinBudget []string `json:"withinBudget"`
}

// ParseDate parses a transaction date. The second result is false when the
// date matches none of the accepted layouts.
func ParseDate(date string) (time.Time, bool) {
	date = strings.TrimSpace(date)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// TotalSpent sums the amount of every transaction
func TotalSpent(list []entity.Transaction) float64 {
	sum := decimal.Zero
	for _, tx := range list {
		sum = sum.Add(decimal.NewFromFloat(tx.Amount))
	}
	return sum.InexactFloat64()
}

// ByMonth totals transactions per calendar month in first-seen order.
// Transactions whose date cannot be parsed are left out.
func ByMonth(list []entity.Transaction) []MonthTotal {
	sums := make(map[string]decimal.Decimal)
	starts := make(map[string]time.Time)
	var order []string

	for _, tx := range list {
		date, ok := ParseDate(tx.Date)
		if !ok {
			continue
		}

		label := date.Format(monthLabelLayout)
		if _, seen := sums[label]; !seen {
			order = append(order, label)
			starts[label] = time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
		}
		sums[label] = sums[label].Add(decimal.NewFromFloat(tx.Amount))
	}

	months := make([]MonthTotal, 0, len(order))
	for _, label := range order {
		months = append(months, MonthTotal{
			Month: label,
			Total: sums[label].InexactFloat64(),
			start: starts[label],
		})
	}
	return months
}

// Chronological returns a copy of months sorted from oldest to newest
func Chronological(months []MonthTotal) []MonthTotal {
	sorted := make([]MonthTotal, len(months))
	copy(sorted, months)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].start.Before(sorted[j].start)
	})
	return sorted
}

// ByCategory totals transactions per category string in first-seen order.
// Transactions with a blank category are left out.
func ByCategory(list []entity.Transaction) []CategoryTotal {
	sums := make(map[string]decimal.Decimal)
	var order []string

	for _, tx := range list {
		if strings.TrimSpace(tx.Category) == "" {
			continue
		}
		if _, seen := sums[tx.Category]; !seen {
			order = append(order, tx.Category)
		}
		sums[tx.Category] = sums[tx.Category].Add(decimal.NewFromFloat(tx.Amount))
	}

	totals := make([]CategoryTotal, 0, len(order))
	for _, category := range order {
		totals = append(totals, CategoryTotal{Category: category, Total: sums[category].InexactFloat64()})
	}
	return totals
}

// BudgetVsActual compares the budget of each listed category with what was
// actually spent on it. Categories without a budget compare against 0, and
// transactions in unlisted categories are ignored.
func BudgetVsActual(categories []string, budgets map[string]float64, list []entity.Transaction) []BudgetComparison {
	actuals := make(map[string]decimal.Decimal, len(categories))
	for _, tx := range list {
		actuals[tx.Category] = actuals[tx.Category].Add(decimal.NewFromFloat(tx.Amount))
	}

	rows := make([]BudgetComparison, 0, len(categories))
	for _, category := range categories {
		rows = append(rows, BudgetComparison{
			Category: category,
			Budget:   budgets[category],
			Actual:   actuals[category].InexactFloat64(),
		})
	}
	return rows
}

// ComputeInsights splits the compared categories into overspent and within budget.
// Spending exactly the budget counts as within budget.
func ComputeInsights(rows []BudgetComparison) Insights {
	insights := Insights{Overspent: []string{}, WithinBudget: []string{}}
	for _, row := range rows {
		if row.Overspent() {
			insights.Overspent = append(insights.Overspent, row.Category)
		} else {
			insights.WithinBudget = append(insights.WithinBudget, row.Category)
		}
	}
	return insights
}

// MostRecent returns the first transaction of a most-recent-first list
func MostRecent(list []entity.Transaction) *entity.Transaction {
	if len(list) == 0 {
		return nil
	}
	tx := list[0]
	return &tx
}
