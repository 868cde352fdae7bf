package db

import (
	"context"
	"strings"
	"time"

	"github.com/damon-houk/finance-tracker/internal/config"
	"github.com/damon-houk/finance-tracker/internal/domain/repository"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
)

// Options selects and tunes a store backend
type Options struct {
	URI            string
	MongoDatabase  string
	ConnectTimeout time.Duration
}

// Stores bundles the repositories of one backend with the connection they share
type Stores struct {
	Backend      string
	Transactions repository.TransactionRepository
	Budgets      repository.BudgetRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping checks that the backend is reachable
func (s *Stores) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the backend connection
func (s *Stores) Close(ctx context.Context) error {
	return s.close(ctx)
}

// Open builds the repositories for the backend named by opts.URI. No
// connection is made until the first store operation or Ping.
func Open(opts Options, log logger.Logger) (*Stores, error) {
	if err := config.ValidateStoreURI(opts.URI); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	switch {
	case strings.HasPrefix(opts.URI, config.SchemeBadger):
		conn := NewBadgerConnector(strings.TrimPrefix(opts.URI, config.SchemeBadger), opts.ConnectTimeout, log)
		return &Stores{
			Backend:      "badger",
			Transactions: NewBadgerTransactionRepository(conn),
			Budgets:      NewBadgerBudgetRepository(conn),
			ping:         conn.Ping,
			close:        conn.Close,
		}, nil

	case strings.HasPrefix(opts.URI, config.SchemeSQLite):
		conn := NewSQLiteConnector(strings.TrimPrefix(opts.URI, config.SchemeSQLite), opts.ConnectTimeout, log)
		return &Stores{
			Backend:      "sqlite",
			Transactions: NewSQLiteTransactionRepository(conn),
			Budgets:      NewSQLiteBudgetRepository(conn),
			ping: func(ctx context.Context) error {
				db, err := conn.Get(ctx)
				if err != nil {
					return err
				}
				return db.PingContext(ctx)
			},
			close: conn.Close,
		}, nil

	default:
		conn := NewMongoConnector(opts.URI, opts.ConnectTimeout, log)
		return &Stores{
			Backend:      "mongodb",
			Transactions: NewMongoTransactionRepository(conn, opts.MongoDatabase),
			Budgets:      NewMongoBudgetRepository(conn, opts.MongoDatabase),
			ping: func(ctx context.Context) error {
				client, err := conn.Get(ctx)
				if err != nil {
					return err
				}
				return client.Ping(ctx, nil)
			},
			close: conn.Close,
		}, nil
	}
}
