package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iyhunko/inventory-manager/internal/model"
	"github.com/iyhunko/inventory-manager/internal/repository"
)

// TransactionRepository implements repository.TransactionRepository on PostgreSQL.
type TransactionRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewTransactionRepository creates a new TransactionRepository instance.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) getExecutor() dbExecutor {
	return executor(r.db, r.txn)
}

// Create inserts a transaction. A duplicate id yields *repository.UniqueConstraintError.
func (r *TransactionRepository) Create(ctx context.Context, txn *model.Transaction) error {
	query := `INSERT INTO transactions (id, product_id, customer_id, quantity, type, unit_price, total_amount,
	                                    discount_percentage, discount_amount, final_amount, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		txn.ID, txn.ProductID, txn.CustomerID, txn.Quantity, txn.Type, txn.UnitPrice, txn.TotalAmount,
		txn.DiscountPercentage, txn.DiscountAmount, txn.FinalAmount, txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", mapError(err))
	}

	return nil
}

// ListByProduct returns a page of a product's transactions, newest first.
func (r *TransactionRepository) ListByProduct(ctx context.Context, productID string, page repository.Page) ([]model.TransactionHistoryEntry, error) {
	query := `SELECT t.id, t.product_id, t.customer_id, t.quantity, t.type, t.unit_price, t.total_amount,
	                 t.discount_percentage, t.discount_amount, t.final_amount, t.created_at,
	                 p.name, c.name, c.category
	          FROM transactions t
	          LEFT JOIN products p ON t.product_id = p.id
	          LEFT JOIN customers c ON t.customer_id = c.id
	          WHERE t.product_id = $1
	          ORDER BY t.created_at DESC, t.id DESC
	          LIMIT $2 OFFSET $3`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, productID, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	history := []model.TransactionHistoryEntry{}
	for rows.Next() {
		var (
			entry            model.TransactionHistoryEntry
			customerID       sql.NullString
			productName      sql.NullString
			customerName     sql.NullString
			customerCategory sql.NullString
		)
		err := rows.Scan(
			&entry.ID, &entry.ProductID, &customerID, &entry.Quantity, &entry.Type, &entry.UnitPrice, &entry.TotalAmount,
			&entry.DiscountPercentage, &entry.DiscountAmount, &entry.FinalAmount, &entry.CreatedAt,
			&productName, &customerName, &customerCategory,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if customerID.Valid {
			entry.CustomerID = &customerID.String
		}
		if productName.Valid {
			entry.ProductName = &productName.String
		}
		if customerName.Valid {
			entry.CustomerName = &customerName.String
		}
		if customerCategory.Valid {
			category := model.CustomerCategory(customerCategory.String)
			entry.CustomerCategory = &category
		}
		history = append(history, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return history, nil
}

// CountByProduct returns the number of transactions for a product.
func (r *TransactionRepository) CountByProduct(ctx context.Context, productID string) (int, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE product_id = $1`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare count statement: %w", err)
	}
	defer stmt.Close()

	var total int
	if err := stmt.QueryRowContext(ctx, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return total, nil
}
