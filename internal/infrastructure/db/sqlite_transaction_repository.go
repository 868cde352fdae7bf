package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

const sqliteTimeLayout = time.RFC3339Nano

// NewSQLiteConnector returns a connector that opens and migrates the sqlite file at path
func NewSQLiteConnector(path string, timeout time.Duration, log logger.Logger) *Connector[*sql.DB] {
	return NewConnector("sqlite", func(ctx context.Context) (*sql.DB, error) {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}

		if err := RunMigrations(path); err != nil {
			return nil, err
		}

		db, err := sql.Open("sqlite", path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}

		// One connection serialises writers so sqlite never reports a busy database
		db.SetMaxOpenConns(1)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		return db, nil
	}, func(ctx context.Context, db *sql.DB) error {
		return db.Close()
	}, timeout, log)
}

// SQLiteTransactionRepository implements the transaction repository interface using sqlite
type SQLiteTransactionRepository struct {
	conn *Connector[*sql.DB]
	now  func() time.Time
}

// NewSQLiteTransactionRepository creates a new sqlite transaction repository
func NewSQLiteTransactionRepository(conn *Connector[*sql.DB]) *SQLiteTransactionRepository {
	return &SQLiteTransactionRepository{conn: conn, now: time.Now}
}

const selectTransaction = `SELECT id, amount, date, description, category, created_at, updated_at FROM transactions`

// List returns every stored transaction, most recent first
func (r *SQLiteTransactionRepository) List(ctx context.Context) ([]entity.Transaction, error) {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return nil, &entity.StoreError{Op: "list", Err: err}
	}

	rows, err := db.QueryContext(ctx, selectTransaction+` ORDER BY seq DESC`)
	if err != nil {
		return nil, &entity.StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	list := []entity.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, &entity.StoreError{Op: "list", Err: err}
		}
		list = append(list, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, &entity.StoreError{Op: "list", Err: err}
	}
	return list, nil
}

// Create persists a new transaction, assigning its ID and timestamps
func (r *SQLiteTransactionRepository) Create(ctx context.Context, input entity.TransactionInput) (*entity.Transaction, error) {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return nil, &entity.StoreError{Op: "create", Err: err}
	}

	now := r.now().UTC()
	tx := &entity.Transaction{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	input.Apply(tx)

	_, err = db.ExecContext(ctx,
		`INSERT INTO transactions (id, amount, date, description, category, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Amount, tx.Date, tx.Description, tx.Category,
		tx.CreatedAt.Format(sqliteTimeLayout), tx.UpdatedAt.Format(sqliteTimeLayout))
	if err != nil {
		return nil, &entity.StoreError{Op: "create", Err: err}
	}
	return tx, nil
}

// FindByID retrieves a transaction by its unique identifier
func (r *SQLiteTransactionRepository) FindByID(ctx context.Context, id string) (*entity.Transaction, error) {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return nil, &entity.StoreError{Op: "find", Err: err}
	}

	tx, err := scanTransaction(db.QueryRowContext(ctx, selectTransaction+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", entity.ErrNotFound, id)
	}
	if err != nil {
		return nil, &entity.StoreError{Op: "find", Err: err}
	}
	return tx, nil
}

// Update replaces the client-supplied fields of an existing transaction
func (r *SQLiteTransactionRepository) Update(ctx context.Context, id string, input entity.TransactionInput) (*entity.Transaction, error) {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return nil, &entity.StoreError{Op: "update", Err: err}
	}

	res, err := db.ExecContext(ctx,
		`UPDATE transactions SET amount = ?, date = ?, description = ?, category = ?, updated_at = ? WHERE id = ?`,
		*input.Amount, input.Date, input.Description, input.Category,
		r.now().UTC().Format(sqliteTimeLayout), id)
	if err != nil {
		return nil, &entity.StoreError{Op: "update", Err: err}
	}

	if err := requireAffected(res, "update", id); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Delete removes a transaction
func (r *SQLiteTransactionRepository) Delete(ctx context.Context, id string) error {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return &entity.StoreError{Op: "delete", Err: err}
	}

	res, err := db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return &entity.StoreError{Op: "delete", Err: err}
	}

	return requireAffected(res, "delete", id)
}

// requireAffected reports ErrNotFound when the statement touched no row
func requireAffected(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return &entity.StoreError{Op: op, Err: err}
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", entity.ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*entity.Transaction, error) {
	var (
		tx                   entity.Transaction
		createdAt, updatedAt string
	)

	if err := row.Scan(&tx.ID, &tx.Amount, &tx.Date, &tx.Description, &tx.Category, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if tx.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if tx.UpdatedAt, err = time.Parse(sqliteTimeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &tx, nil
}

// SQLiteBudgetRepository implements the budget repository interface using sqlite
type SQLiteBudgetRepository struct {
	conn *Connector[*sql.DB]
}

// NewSQLiteBudgetRepository creates a new sqlite budget repository
func NewSQLiteBudgetRepository(conn *Connector[*sql.DB]) *SQLiteBudgetRepository {
	return &SQLiteBudgetRepository{conn: conn}
}

// Budgets returns every stored budget keyed by category
func (r *SQLiteBudgetRepository) Budgets(ctx context.Context) (map[string]float64, error) {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return nil, &entity.StoreError{Op: "budgets", Err: err}
	}

	rows, err := db.QueryContext(ctx, `SELECT category, amount FROM budgets`)
	if err != nil {
		return nil, &entity.StoreError{Op: "budgets", Err: err}
	}
	defer rows.Close()

	budgets := make(map[string]float64)
	for rows.Next() {
		var (
			category string
			amount   float64
		)
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, &entity.StoreError{Op: "budgets", Err: err}
		}
		budgets[category] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, &entity.StoreError{Op: "budgets", Err: err}
	}
	return budgets, nil
}

// SetBudget stores the budget for a category, replacing any previous value
func (r *SQLiteBudgetRepository) SetBudget(ctx context.Context, category string, amount float64) error {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return &entity.StoreError{Op: "set budget", Err: err}
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO budgets (category, amount) VALUES (?, ?) ON CONFLICT(category) DO UPDATE SET amount = excluded.amount`,
		category, amount)
	if err != nil {
		return &entity.StoreError{Op: "set budget", Err: err}
	}
	return nil
}
