package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iyhunko/inventory-manager/internal/repository"
)

// Store implements repository.Store. A Store created with NewStore runs every call on
// the pool; the Store handed to WithinTransaction runs every call on one *sql.Tx.
type Store struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewStore creates a Store backed by the connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Products() repository.ProductRepository {
	return &ProductRepository{db: s.db, txn: s.txn}
}

func (s *Store) Customers() repository.CustomerRepository {
	return &CustomerRepository{db: s.db, txn: s.txn}
}

func (s *Store) Transactions() repository.TransactionRepository {
	return &TransactionRepository{db: s.db, txn: s.txn}
}

func (s *Store) Reports() repository.ReportRepository {
	return &ReportRepository{db: s.db, txn: s.txn}
}

func (s *Store) Events() repository.EventRepository {
	return &EventRepository{db: s.db, txn: s.txn}
}

// WithinTransaction executes fn within a database transaction. Nested calls reuse
// the outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.txn != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&Store{db: s.db, txn: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
