package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func input(amount float64, date, description, category string) entity.TransactionInput {
	return entity.TransactionInput{Amount: &amount, Date: date, Description: description, Category: category}
}

// openTestStores opens a store of the given scheme in a temp dir
func openTestStores(t *testing.T, scheme string) *Stores {
	t.Helper()

	uri := scheme + t.TempDir()
	if scheme == "sqlite:" {
		uri += "/finance.db"
	}

	stores, err := Open(Options{URI: uri, ConnectTimeout: 10 * time.Second}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = stores.Close(context.Background())
	})
	return stores
}

// exerciseTransactionRepository runs the shared repository contract checks
func exerciseTransactionRepository(t *testing.T, repo repository.TransactionRepository) {
	ctx := context.Background()

	t.Run("Empty list", func(t *testing.T) {
		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	var created []*entity.Transaction
	t.Run("Create echoes fields", func(t *testing.T) {
		inputs := []entity.TransactionInput{
			input(50, "2024-01-15", "Coffee", "Food"),
			input(1200, "2024-01-01", "January rent", "Rent"),
			input(7.5, "not a date", "Mystery", "Gifts"),
		}
		for _, in := range inputs {
			tx, err := repo.Create(ctx, in)
			require.NoError(t, err)
			assert.NotEmpty(t, tx.ID)
			assert.Equal(t, *in.Amount, tx.Amount)
			assert.Equal(t, in.Date, tx.Date)
			assert.Equal(t, in.Description, tx.Description)
			assert.Equal(t, in.Category, tx.Category)
			assert.False(t, tx.CreatedAt.IsZero())
			assert.Equal(t, tx.CreatedAt, tx.UpdatedAt)
			created = append(created, tx)
		}
	})

	t.Run("List is most recent first", func(t *testing.T) {
		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, created[2].ID, list[0].ID)
		assert.Equal(t, created[1].ID, list[1].ID)
		assert.Equal(t, created[0].ID, list[2].ID)
		assert.Equal(t, "not a date", list[0].Date)
	})

	t.Run("FindByID", func(t *testing.T) {
		tx, err := repo.FindByID(ctx, created[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "Coffee", tx.Description)
		assert.True(t, created[0].CreatedAt.Equal(tx.CreatedAt))

		_, err = repo.FindByID(ctx, "missing")
		assert.True(t, errors.Is(err, entity.ErrNotFound))
	})

	t.Run("Update", func(t *testing.T) {
		tx, err := repo.Update(ctx, created[0].ID, input(55, "2024-01-16", "Coffee and cake", "Food"))
		require.NoError(t, err)
		assert.Equal(t, created[0].ID, tx.ID)
		assert.Equal(t, 55.0, tx.Amount)
		assert.Equal(t, "Coffee and cake", tx.Description)
		assert.True(t, created[0].CreatedAt.Equal(tx.CreatedAt))

		_, err = repo.Update(ctx, "missing", input(1, "2024-01-01", "x", "Other"))
		assert.True(t, errors.Is(err, entity.ErrNotFound))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, created[0].ID, list[2].ID, "update keeps the creation order")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, created[1].ID))
		assert.True(t, errors.Is(repo.Delete(ctx, created[1].ID), entity.ErrNotFound))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}

func exerciseBudgetRepository(t *testing.T, repo repository.BudgetRepository) {
	ctx := context.Background()

	budgets, err := repo.Budgets(ctx)
	require.NoError(t, err)
	assert.Empty(t, budgets)

	require.NoError(t, repo.SetBudget(ctx, "Food", 100))
	require.NoError(t, repo.SetBudget(ctx, "Rent", 1200))
	require.NoError(t, repo.SetBudget(ctx, "Food", 150))

	budgets, err = repo.Budgets(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Food": 150, "Rent": 1200}, budgets)
}

func TestBadgerTransactionRepository(t *testing.T) {
	stores := openTestStores(t, "badger:")
	assert.Equal(t, "badger", stores.Backend)
	exerciseTransactionRepository(t, stores.Transactions)
}

func TestBadgerBudgetRepository(t *testing.T) {
	stores := openTestStores(t, "badger:")
	exerciseBudgetRepository(t, stores.Budgets)
}

func TestBadgerStampIsStrictlyIncreasing(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &BadgerTransactionRepository{now: func() time.Time { return fixed }}

	first := repo.stamp()
	second := repo.stamp()
	assert.Equal(t, fixed, first)
	assert.True(t, second.After(first))
}

func TestOpenRejectsBadURI(t *testing.T) {
	_, err := Open(Options{URI: ""}, testLogger())
	var cerr *entity.ConfigurationError
	require.True(t, errors.As(err, &cerr))

	_, err = Open(Options{URI: "redis://localhost"}, testLogger())
	assert.True(t, errors.As(err, &cerr))
}

func TestStoresPingAndClose(t *testing.T) {
	stores := openTestStores(t, "badger:")
	ctx := context.Background()

	require.NoError(t, stores.Ping(ctx))
	require.NoError(t, stores.Close(ctx))

	_, err := stores.Transactions.List(ctx)
	var serr *entity.StoreError
	require.True(t, errors.As(err, &serr))
	assert.ErrorIs(t, err, ErrConnectorClosed)
}
