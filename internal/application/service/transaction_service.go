package service

import (
	"context"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/domain/repository"
)

// Invalidator drops derived data after the transaction set changes
type Invalidator interface {
	Clear()
}

type noopInvalidator struct{}

func (noopInvalidator) Clear() {}

// TransactionService handles business logic for transactions
type TransactionService struct {
	repo        repository.TransactionRepository
	invalidator Invalidator
}

// NewTransactionService creates a new transaction service. invalidator may be nil.
func NewTransactionService(repo repository.TransactionRepository, invalidator Invalidator) *TransactionService {
	if invalidator == nil {
		invalidator = noopInvalidator{}
	}
	return &TransactionService{repo: repo, invalidator: invalidator}
}

// ListTransactions returns every transaction, most recent first
func (s *TransactionService) ListTransactions(ctx context.Context) ([]entity.Transaction, error) {
	return s.repo.List(ctx)
}

// CreateTransaction validates and stores a new transaction
func (s *TransactionService) CreateTransaction(ctx context.Context, input entity.TransactionInput) (*entity.Transaction, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	s.invalidator.Clear()
	return tx, nil
}

// GetTransaction retrieves a transaction by ID
func (s *TransactionService) GetTransaction(ctx context.Context, id string) (*entity.Transaction, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateTransaction validates and replaces the fields of an existing transaction
func (s *TransactionService) UpdateTransaction(ctx context.Context, id string, input entity.TransactionInput) (*entity.Transaction, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.repo.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}

	s.invalidator.Clear()
	return tx, nil
}

// DeleteTransaction removes a transaction
func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidator.Clear()
	return nil
}
