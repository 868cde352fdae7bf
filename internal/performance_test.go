package internal

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/damon-houk/finance-tracker/internal/application/service"
	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/domain/summary"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/cache"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/db"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformance(t *testing.T) {
	// Skip in short mode or CI
	if testing.Short() {
		t.Skip("Skipping performance test in short mode")
	}

	log := logger.NewJSONLogger(io.Discard, logger.ErrorLevel)
	stores, err := db.Open(db.Options{URI: "badger:" + t.TempDir(), ConnectTimeout: 5 * time.Second}, log)
	require.NoError(t, err)
	defer stores.Close(context.Background())

	summaryCache := cache.NewSummaryCache(time.Minute)
	txService := service.NewTransactionService(stores.Transactions, summaryCache)
	summaryService := service.NewSummaryService(stores.Transactions, stores.Budgets, summaryCache)

	// Performance test configuration
	numTransactions := 100
	concurrency := 10
	txPerWorker := numTransactions / concurrency

	t.Log("Preloading test data...")
	txIDs := preloadTestData(t, txService, numTransactions)

	t.Run("Transaction Creation", func(t *testing.T) {
		startTime := time.Now()

		var wg sync.WaitGroup
		wg.Add(concurrency)

		for i := 0; i < concurrency; i++ {
			go func(workerID int) {
				defer wg.Done()

				ctx := context.Background()
				for j := 0; j < txPerWorker; j++ {
					_, err := txService.CreateTransaction(ctx, randomInput(fmt.Sprintf("Test transaction %d-%d", workerID, j)))
					if err != nil {
						t.Errorf("Error creating transaction: %v", err)
					}
				}
			}(i)
		}

		wg.Wait()
		duration := time.Since(startTime)

		throughput := float64(numTransactions) / duration.Seconds()
		t.Logf("Transaction creation: %d transactions in %v (%.2f tx/sec)",
			numTransactions, duration, throughput)

		list, err := txService.ListTransactions(context.Background())
		require.NoError(t, err)
		assert.Len(t, list, 2*numTransactions)

		ids := make(map[string]struct{}, len(list))
		for i, tx := range list {
			ids[tx.ID] = struct{}{}
			if i > 0 {
				assert.False(t, tx.CreatedAt.After(list[i-1].CreatedAt), "list must be most recent first")
			}
		}
		assert.Len(t, ids, len(list), "ids must be unique")
	})

	t.Run("Transaction Retrieval", func(t *testing.T) {
		startTime := time.Now()

		var wg sync.WaitGroup
		wg.Add(concurrency)

		for i := 0; i < concurrency; i++ {
			go func(workerID int) {
				defer wg.Done()

				ctx := context.Background()
				for j := 0; j < txPerWorker; j++ {
					idx := (workerID*txPerWorker + j) % len(txIDs)
					if _, err := txService.GetTransaction(ctx, txIDs[idx]); err != nil {
						t.Errorf("Error retrieving transaction: %v", err)
					}
				}
			}(i)
		}

		wg.Wait()
		duration := time.Since(startTime)

		throughput := float64(numTransactions) / duration.Seconds()
		t.Logf("Transaction retrieval: %d transactions in %v (%.2f tx/sec)",
			numTransactions, duration, throughput)
	})

	t.Run("Summary", func(t *testing.T) {
		startTime := time.Now()

		var wg sync.WaitGroup
		wg.Add(concurrency)

		for i := 0; i < concurrency; i++ {
			go func() {
				defer wg.Done()

				ctx := context.Background()
				for j := 0; j < txPerWorker; j++ {
					report, err := summaryService.GetSummary(ctx, summary.FirstSeen)
					if err != nil {
						t.Errorf("Error computing summary: %v", err)
						continue
					}
					if report.Count != 2*numTransactions {
						t.Errorf("summary counted %d transactions, want %d", report.Count, 2*numTransactions)
					}
				}
			}()
		}

		wg.Wait()
		duration := time.Since(startTime)

		throughput := float64(numTransactions) / duration.Seconds()
		t.Logf("Summary: %d reports in %v (%.2f reports/sec)",
			numTransactions, duration, throughput)
	})
}

func randomInput(description string) entity.TransactionInput {
	amount := 1.0 + float64(rand.Intn(10000))/100.0
	return entity.TransactionInput{
		Amount:      &amount,
		Date:        time.Now().AddDate(0, 0, -rand.Intn(90)).Format("2006-01-02"),
		Description: description,
		Category:    entity.Categories[rand.Intn(len(entity.Categories))],
	}
}

// preloadTestData creates test transactions and returns their IDs
func preloadTestData(t *testing.T, txService *service.TransactionService, count int) []string {
	ids := make([]string, count)
	ctx := context.Background()

	for i := 0; i < count; i++ {
		tx, err := txService.CreateTransaction(ctx, randomInput(fmt.Sprintf("Preloaded transaction %d", i)))
		if err != nil {
			t.Fatalf("Failed to preload test data: %v", err)
		}
		ids[i] = tx.ID
	}

	return ids
}
