package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
)

const (
	transactionPrefix = "tx:"
	budgetPrefix      = "budget:"
)

// NewBadgerConnector returns a connector that opens a badger database in dir
func NewBadgerConnector(dir string, timeout time.Duration, log logger.Logger) *Connector[*badger.DB] {
	return NewConnector("badger", func(ctx context.Context) (*badger.DB, error) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		opts := badger.DefaultOptions(dir)
		opts.Logger = nil // Badger's own logger bypasses ours

		return badger.Open(opts)
	}, func(ctx context.Context, db *badger.DB) error {
		return db.Close()
	}, timeout, log)
}

// BadgerTransactionRepository implements the transaction repository interface using BadgerDB
type BadgerTransactionRepository struct {
	conn *Connector[*badger.DB]

	clockMu sync.Mutex
	last    time.Time
	now     func() time.Time
}

// NewBadgerTransactionRepository creates a new BadgerDB transaction repository
func NewBadgerTransactionRepository(conn *Connector[*badger.DB]) *BadgerTransactionRepository {
	return &BadgerTransactionRepository{conn: conn, now: time.Now}
}

// stamp returns a creation time strictly after every previous one, so that
// records created within the same clock tick keep their insertion order
func (r *BadgerTransactionRepository) stamp() time.Time {
	r.clockMu.Lock()
	defer r.clockMu.Unlock()

	t := r.now().UTC()
	if !t.After(r.last) {
		t = r.last.Add(time.Nanosecond)
	}
	r.last = t
	return t
}

func transactionKey(id string) []byte {
	return []byte(transactionPrefix + id)
}

// List returns every stored transaction, most recent first
func (r *BadgerTransactionRepository) List(ctx context.Context) ([]entity.Transaction, error) {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return nil, &entity.StoreError{Op: "list", Err: err}
	}

	var list []entity.Transaction
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(transactionPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var tx entity.Transaction
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &tx)
			}); err != nil {
				return fmt.Errorf("failed to unmarshal transaction: %w", err)
			}
			list = append(list, tx)
		}
		return nil
	})
	if err != nil {
		return nil, &entity.StoreError{Op: "list", Err: err}
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	if list == nil {
		list = []entity.Transaction{}
	}
	return list, nil
}

// Create persists a new transaction, assigning its ID and timestamps
func (r *BadgerTransactionRepository) Create(ctx context.Context, input entity.TransactionInput) (*entity.Transaction, error) {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return nil, &entity.StoreError{Op: "create", Err: err}
	}

	now := r.stamp()
	tx := &entity.Transaction{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	input.Apply(tx)

	if err := r.put(db, tx); err != nil {
		return nil, &entity.StoreError{Op: "create", Err: err}
	}
	return tx, nil
}

// FindByID retrieves a transaction by its unique identifier
func (r *BadgerTransactionRepository) FindByID(ctx context.Context, id string) (*entity.Transaction, error) {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return nil, &entity.StoreError{Op: "find", Err: err}
	}

	var tx *entity.Transaction
	err = db.View(func(txn *badger.Txn) error {
		var err error
		tx, err = getTransaction(txn, id)
		return err
	})
	if err != nil {
		return nil, wrapBadgerError("find", id, err)
	}
	return tx, nil
}

// Update replaces the client-supplied fields of an existing transaction
func (r *BadgerTransactionRepository) Update(ctx context.Context, id string, input entity.TransactionInput) (*entity.Transaction, error) {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return nil, &entity.StoreError{Op: "update", Err: err}
	}

	var tx *entity.Transaction
	err = db.Update(func(txn *badger.Txn) error {
		var err error
		tx, err = getTransaction(txn, id)
		if err != nil {
			return err
		}

		input.Apply(tx)
		tx.UpdatedAt = r.now().UTC()

		data, err := json.Marshal(tx)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction: %w", err)
		}
		return txn.Set(transactionKey(id), data)
	})
	if err != nil {
		return nil, wrapBadgerError("update", id, err)
	}
	return tx, nil
}

// Delete removes a transaction
func (r *BadgerTransactionRepository) Delete(ctx context.Context, id string) error {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return &entity.StoreError{Op: "delete", Err: err}
	}

	err = db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(transactionKey(id)); err != nil {
			return err
		}
		return txn.Delete(transactionKey(id))
	})
	if err != nil {
		return wrapBadgerError("delete", id, err)
	}
	return nil
}

func (r *BadgerTransactionRepository) put(db *badger.DB, tx *entity.Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	return db.Update(func(txn *badger.Txn) error {
		return txn.Set(transactionKey(tx.ID), data)
	})
}

func getTransaction(txn *badger.Txn, id string) (*entity.Transaction, error) {
	item, err := txn.Get(transactionKey(id))
	if err != nil {
		return nil, err
	}

	var tx entity.Transaction
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &tx)
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	return &tx, nil
}

func wrapBadgerError(op, id string, err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", entity.ErrNotFound, id)
	}
	return &entity.StoreError{Op: op, Err: err}
}

// BadgerBudgetRepository implements the budget repository interface using BadgerDB
type BadgerBudgetRepository struct {
	conn *Connector[*badger.DB]
}

// NewBadgerBudgetRepository creates a new BadgerDB budget repository
func NewBadgerBudgetRepository(conn *Connector[*badger.DB]) *BadgerBudgetRepository {
	return &BadgerBudgetRepository{conn: conn}
}

// Budgets returns every stored budget keyed by category
func (r *BadgerBudgetRepository) Budgets(ctx context.Context) (map[string]float64, error) {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return nil, &entity.StoreError{Op: "budgets", Err: err}
	}

	budgets := make(map[string]float64)
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(budgetPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var b entity.Budget
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &b)
			}); err != nil {
				return fmt.Errorf("failed to unmarshal budget: %w", err)
			}
			budgets[b.Category] = b.Amount
		}
		return nil
	})
	if err != nil {
		return nil, &entity.StoreError{Op: "budgets", Err: err}
	}
	return budgets, nil
}

// SetBudget stores the budget for a category, replacing any previous value
func (r *BadgerBudgetRepository) SetBudget(ctx context.Context, category string, amount float64) error {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return &entity.StoreError{Op: "set budget", Err: err}
	}

	data, err := json.Marshal(entity.Budget{Category: category, Amount: amount})
	if err != nil {
		return fmt.Errorf("failed to marshal budget: %w", err)
	}

	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(budgetPrefix+category), data)
	})
	if err != nil {
		return &entity.StoreError{Op: "set budget", Err: err}
	}
	return nil
}
