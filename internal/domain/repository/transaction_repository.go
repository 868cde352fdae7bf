// Package repository declares the storage contracts of the finance tracker
package repository

import (
	"context"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
)

// TransactionRepository defines the interface for transaction storage
type TransactionRepository interface {
	// List returns every stored transaction, most recent first
	List(ctx context.Context) ([]entity.Transaction, error)

	// Create persists a new transaction, assigning its ID and timestamps
	Create(ctx context.Context, input entity.TransactionInput) (*entity.Transaction, error)

	// FindByID retrieves a transaction by its unique identifier
	FindByID(ctx context.Context, id string) (*entity.Transaction, error)

	// Update replaces the client-supplied fields of an existing transaction
	Update(ctx context.Context, id string, input entity.TransactionInput) (*entity.Transaction, error)

	// Delete removes a transaction
	Delete(ctx context.Context, id string) error
}
