package service

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/domain/repository"
	"github.com/damon-houk/finance-tracker/internal/domain/summary"
)

// ReportCache stores computed reports between requests. Put ignores a report
// whose generation predates the latest Clear.
type ReportCache interface {
	Get(key string) (summary.Report, bool)
	Generation() uint64
	Put(key string, report summary.Report, generation uint64)
	Clear()
}

// SummaryService computes spending summaries and manages budgets
type SummaryService struct {
	txRepo     repository.TransactionRepository
	budgetRepo repository.BudgetRepository
	cache      ReportCache
}

// NewSummaryService creates a new summary service. cache may be nil.
func NewSummaryService(txRepo repository.TransactionRepository, budgetRepo repository.BudgetRepository, cache ReportCache) *SummaryService {
	return &SummaryService{
		txRepo:     txRepo,
		budgetRepo: budgetRepo,
		cache:      cache,
	}
}

// GetSummary computes the report over every stored transaction
func (s *SummaryService) GetSummary(ctx context.Context, order summary.MonthOrder) (summary.Report, error) {
	var generation uint64
	if s.cache != nil {
		generation = s.cache.Generation()
	}

	budgets, err := s.budgetRepo.Budgets(ctx)
	if err != nil {
		return summary.Report{}, err
	}

	key := cacheKey(order, budgets)
	if s.cache != nil {
		if report, ok := s.cache.Get(key); ok {
			return report, nil
		}
	}

	list, err := s.txRepo.List(ctx)
	if err != nil {
		return summary.Report{}, err
	}

	report := summary.Build(list, budgets, order)
	if s.cache != nil {
		s.cache.Put(key, report, generation)
	}
	return report, nil
}

// Summarize computes a report over an already loaded list
func (s *SummaryService) Summarize(ctx context.Context, list []entity.Transaction) (summary.Report, map[string]float64, error) {
	budgets, err := s.budgetRepo.Budgets(ctx)
	if err != nil {
		return summary.Report{}, nil, err
	}
	return summary.Build(list, budgets, summary.FirstSeen), budgets, nil
}

// GetBudgets returns the budget of every known category, 0 when unset
func (s *SummaryService) GetBudgets(ctx context.Context) (map[string]float64, error) {
	stored, err := s.budgetRepo.Budgets(ctx)
	if err != nil {
		return nil, err
	}

	budgets := make(map[string]float64, len(entity.Categories))
	for _, category := range entity.Categories {
		budgets[category] = stored[category]
	}
	return budgets, nil
}

// SetBudget validates and stores the budget of a category
func (s *SummaryService) SetBudget(ctx context.Context, budget entity.Budget) error {
	if err := budget.Validate(); err != nil {
		return err
	}

	if err := s.budgetRepo.SetBudget(ctx, budget.Category, budget.Amount); err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Clear()
	}
	return nil
}

// cacheKey identifies a report by month order and the budgets it was built with
func cacheKey(order summary.MonthOrder, budgets map[string]float64) string {
	categories := make([]string, 0, len(budgets))
	for category := range budgets {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var b strings.Builder
	b.WriteString(string(order))
	for _, category := range categories {
		b.WriteString("|")
		b.WriteString(category)
		b.WriteString("=")
		b.WriteString(strconv.FormatFloat(budgets[category], 'g', -1, 64))
	}
	return b.String()
}
