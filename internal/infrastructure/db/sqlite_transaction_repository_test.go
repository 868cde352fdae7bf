package db

import (
	"errors"
	"testing"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestSQLiteTransactionRepository(t *testing.T) {
	stores := openTestStores(t, "sqlite:")
	assert.Equal(t, "sqlite", stores.Backend)
	exerciseTransactionRepository(t, stores.Transactions)
}

func TestSQLiteBudgetRepository(t *testing.T) {
	stores := openTestStores(t, "sqlite:")
	exerciseBudgetRepository(t, stores.Budgets)
}

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestRequireAffected(t *testing.T) {
	assert.NoError(t, requireAffected(fakeResult{rows: 1}, "update", "tx-1"))

	err := requireAffected(fakeResult{rows: 0}, "update", "tx-1")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	cause := errors.New("driver does not report rows")
	err = requireAffected(fakeResult{err: cause}, "delete", "tx-1")
	var serr *entity.StoreError
	assert.True(t, errors.As(err, &serr))
	assert.Equal(t, "delete", serr.Op)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, entity.ErrNotFound)
}
