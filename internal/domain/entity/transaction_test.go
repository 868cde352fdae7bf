package entity

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amountPtr(v float64) *float64 {
	return &v
}

func TestTransactionInputValidate(t *testing.T) {
	t.Run("All fields present", func(t *testing.T) {
		in := TransactionInput{Amount: amountPtr(50), Date: "2024-01-15", Description: "Coffee", Category: "Food"}
		assert.NoError(t, in.Validate())
	})

	t.Run("Zero amount is present", func(t *testing.T) {
		in := TransactionInput{Amount: amountPtr(0), Date: "2024-01-15", Description: "Refund", Category: "Other"}
		assert.NoError(t, in.Validate())
	})

	t.Run("Unknown category accepted", func(t *testing.T) {
		in := TransactionInput{Amount: amountPtr(3), Date: "2024-01-15", Description: "Gift", Category: "Gifts"}
		assert.NoError(t, in.Validate())
	})

	t.Run("Missing fields are listed", func(t *testing.T) {
		in := TransactionInput{Date: "  ", Description: "Coffee"}
		err := in.Validate()
		require.Error(t, err)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{"amount", "date", "category"}, verr.Fields)
		assert.Contains(t, err.Error(), "missing required fields")
	})

	t.Run("Non-finite amounts rejected", func(t *testing.T) {
		for _, amount := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
			in := TransactionInput{Amount: amountPtr(amount), Date: "2024-01-15", Description: "Coffee", Category: "Food"}
			err := in.Validate()

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "amount %v", amount)
			assert.Equal(t, []string{"amount"}, verr.Fields)
		}
	})
}

func TestTransactionInputApply(t *testing.T) {
	in := TransactionInput{Amount: amountPtr(12.5), Date: "2024-02-01", Description: "Bus", Category: "Transport"}
	tx := Transaction{ID: "keep-me"}
	in.Apply(&tx)

	assert.Equal(t, "keep-me", tx.ID)
	assert.Equal(t, 12.5, tx.Amount)
	assert.Equal(t, "2024-02-01", tx.Date)
	assert.Equal(t, "Bus", tx.Description)
	assert.Equal(t, "Transport", tx.Category)
}

func TestBudgetValidate(t *testing.T) {
	assert.NoError(t, Budget{Category: "Food", Amount: 100}.Validate())
	assert.NoError(t, Budget{Category: "Rent", Amount: 0}.Validate())
	assert.Error(t, Budget{Category: "Gifts", Amount: 10}.Validate())
	assert.Error(t, Budget{Category: "Food", Amount: -1}.Validate())
	assert.Error(t, Budget{Category: "Food", Amount: math.NaN()}.Validate())
	assert.Error(t, Budget{Category: "Food", Amount: math.Inf(1)}.Validate())
}

func TestStoreErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &StoreError{Op: "list", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "store list: connection refused", err.Error())
}
