package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iyhunko/inventory-manager/internal/model"
	"github.com/iyhunko/inventory-manager/internal/repository"
)

// CustomerRepository implements repository.CustomerRepository on PostgreSQL.
type CustomerRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewCustomerRepository creates a new CustomerRepository instance.
func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) getExecutor() dbExecutor {
	return executor(r.db, r.txn)
}

// FindByID retrieves a single customer by ID.
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	query := `SELECT id, name, category, email FROM customers WHERE id = $1`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	var (
		customer model.Customer
		category sql.NullString
		email    sql.NullString
	)
	err = stmt.QueryRowContext(ctx, id).Scan(&customer.ID, &customer.Name, &category, &email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}
	customer.Category = model.CustomerCategory(category.String)
	customer.Email = email.String

	return &customer, nil
}
