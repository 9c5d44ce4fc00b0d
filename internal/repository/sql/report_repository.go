package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iyhunko/inventory-manager/internal/model"
	"github.com/iyhunko/inventory-manager/internal/repository"
)

// ReportRepository implements repository.ReportRepository on PostgreSQL.
type ReportRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewReportRepository creates a new ReportRepository instance.
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) getExecutor() dbExecutor {
	return executor(r.db, r.txn)
}

// dateConditions renders the half-open window on column as SQL conditions,
// numbering placeholders after the args already collected.
func dateConditions(column string, window repository.DateRange, args []any) ([]string, []any) {
	var conditions []string
	if window.Start != nil {
		args = append(args, *window.Start)
		conditions = append(conditions, fmt.Sprintf("%s >= $%d", column, len(args)))
	}
	if window.End != nil {
		args = append(args, *window.End)
		conditions = append(conditions, fmt.Sprintf("%s < $%d", column, len(args)))
	}
	return conditions, args
}

func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}

// InventoryValue sums price × stock over every product.
func (r *ReportRepository) InventoryValue(ctx context.Context) (*model.InventoryValue, error) {
	query := `SELECT COALESCE(SUM(price * stock), 0), COUNT(*), COALESCE(SUM(stock), 0) FROM products`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	var value model.InventoryValue
	if err := stmt.QueryRowContext(ctx).Scan(&value.TotalValue, &value.TotalProducts, &value.TotalItems); err != nil {
		return nil, fmt.Errorf("failed to query inventory value: %w", err)
	}

	return &value, nil
}

// MonthlySales sums final amounts of every transaction per calendar month, oldest first.
func (r *ReportRepository) MonthlySales(ctx context.Context, window repository.DateRange) ([]model.MonthlySales, error) {
	conditions, args := dateConditions("created_at", window, nil)
	query := `SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month, SUM(final_amount) AS sales
	          FROM transactions` + whereClause(conditions) + `
	          GROUP BY month
	          ORDER BY month ASC`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly sales: %w", err)
	}
	defer rows.Close()

	result := []model.MonthlySales{}
	for rows.Next() {
		var row model.MonthlySales
		if err := rows.Scan(&row.Month, &row.Sales); err != nil {
			return nil, fmt.Errorf("failed to scan monthly sales: %w", err)
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// CategorySales sums final amounts of sales per product category, highest first.
func (r *ReportRepository) CategorySales(ctx context.Context, window repository.DateRange) ([]model.CategorySales, error) {
	args := []any{model.TransactionTypeSale}
	conditions, args := dateConditions("t.created_at", window, args)
	conditions = append([]string{"t.type = $1"}, conditions...)

	query := `SELECT p.category, SUM(t.final_amount) AS sales, COUNT(*) AS transaction_count
	          FROM transactions t
	          JOIN products p ON t.product_id = p.id` + whereClause(conditions) + `
	          GROUP BY p.category
	          ORDER BY sales DESC, p.category ASC`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category sales: %w", err)
	}
	defer rows.Close()

	result := []model.CategorySales{}
	for rows.Next() {
		var row model.CategorySales
		if err := rows.Scan(&row.Category, &row.Sales, &row.TransactionCount); err != nil {
			return nil, fmt.Errorf("failed to scan category sales: %w", err)
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// TopProducts returns the limit best-selling products by sale revenue.
func (r *ReportRepository) TopProducts(ctx context.Context, window repository.DateRange, limit int) ([]model.TopProduct, error) {
	args := []any{model.TransactionTypeSale}
	conditions, args := dateConditions("t.created_at", window, args)
	conditions = append([]string{"t.type = $1"}, conditions...)
	args = append(args, limit)

	query := `SELECT p.id, p.name, SUM(t.final_amount) AS sales, SUM(t.quantity) AS quantity_sold
	          FROM transactions t
	          JOIN products p ON t.product_id = p.id` + whereClause(conditions) + `
	          GROUP BY p.id, p.name
	          ORDER BY sales DESC, p.id ASC
	          LIMIT $` + fmt.Sprint(len(args))

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer rows.Close()

	result := []model.TopProduct{}
	for rows.Next() {
		var row model.TopProduct
		if err := rows.Scan(&row.ID, &row.Name, &row.Sales, &row.QuantitySold); err != nil {
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}
