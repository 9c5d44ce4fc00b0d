package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iyhunko/inventory-manager/internal/model"
	"github.com/iyhunko/inventory-manager/internal/repository"
)

const productColumns = "id, name, price, stock, category, created_at, updated_at"

// ProductRepository implements repository.ProductRepository on PostgreSQL.
type ProductRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// getExecutor returns the active executor (transaction if exists, otherwise db)
func (r *ProductRepository) getExecutor() dbExecutor {
	return executor(r.db, r.txn)
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) error {
	query := `INSERT INTO products (id, name, price, stock, category, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, product.ID, product.Name, product.Price, product.Stock, product.Category, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", mapError(err))
	}

	return nil
}

// FindByID retrieves a single product by ID.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	product, err := scanProduct(stmt.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return product, nil
}

// MaxSequentialID returns the highest numeric suffix of PROD<digits> ids.
func (r *ProductRepository) MaxSequentialID(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(MAX(CAST(SUBSTRING(id FROM 5) AS BIGINT)), 0)
	          FROM products
	          WHERE id ~ '^PROD[0-9]+$'`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	var maxID int64
	if err := stmt.QueryRowContext(ctx).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("failed to query max product id: %w", err)
	}

	return maxID, nil
}

// Update applies the non-nil fields of update. Zero matched rows yield repository.ErrNotFound.
func (r *ProductRepository) Update(ctx context.Context, id string, update model.ProductUpdate, now time.Time) error {
	var (
		sets []string
		args []any
	)
	if update.Name != nil {
		args = append(args, *update.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if update.Price != nil {
		args = append(args, *update.Price)
		sets = append(sets, fmt.Sprintf("price = $%d", len(args)))
	}
	if update.Category != nil {
		args = append(args, *update.Category)
		sets = append(sets, fmt.Sprintf("category = $%d", len(args)))
	}
	if len(sets) == 0 {
		return errors.New("no fields to update")
	}
	args = append(args, now)
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare update statement: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", mapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
	}

	return nil
}

// List returns one page of products ordered by name.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + productColumns + " FROM products")

	var args []any
	if filter.Category != "" {
		args = append(args, filter.Category)
		queryBuilder.WriteString(fmt.Sprintf(" WHERE category = $%d", len(args)))
	}

	// id breaks ties so pages never overlap
	queryBuilder.WriteString(" ORDER BY name ASC, id ASC")

	page := filter.Page
	if page.Limit <= 0 {
		page = repository.NewPage(page.Number, page.Limit)
	}
	args = append(args, page.Limit, page.Offset())
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)))

	stmt, err := r.getExecutor().PrepareContext(ctx, queryBuilder.String())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// Count returns the number of products, optionally restricted to one category.
func (r *ProductRepository) Count(ctx context.Context, category string) (int, error) {
	query := `SELECT COUNT(*) FROM products`
	var args []any
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare count statement: %w", err)
	}
	defer stmt.Close()

	var total int
	if err := stmt.QueryRowContext(ctx, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return total, nil
}

// ListLowStock returns every product with stock <= threshold, lowest stock first.
func (r *ProductRepository) ListLowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE stock <= $1 ORDER BY stock ASC, id ASC`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// Categories returns the distinct product categories in alphabetical order.
func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT category FROM products ORDER BY category`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return categories, nil
}

// AdjustStock changes stock by delta only if the result stays non-negative.
func (r *ProductRepository) AdjustStock(ctx context.Context, id string, delta int, now time.Time) (int, error) {
	query := `UPDATE products
	          SET stock = stock + $1, updated_at = $2
	          WHERE id = $3 AND stock + $1 >= 0
	          RETURNING stock`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare update statement: %w", err)
	}
	defer stmt.Close()

	var newStock int
	if err := stmt.QueryRowContext(ctx, delta, now, id).Scan(&newStock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("product %s delta %d: %w", id, delta, repository.ErrStockConditionFailed)
		}
		return 0, fmt.Errorf("failed to adjust stock: %w", mapError(err))
	}

	return newStock, nil
}

// Stock returns the current stock of a product.
func (r *ProductRepository) Stock(ctx context.Context, id string) (int, error) {
	query := `SELECT stock FROM products WHERE id = $1`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	var stock int
	if err := stmt.QueryRowContext(ctx, id).Scan(&stock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to query stock: %w", err)
	}

	return stock, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var p model.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Category, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProducts(rows *sql.Rows) ([]model.Product, error) {
	products := []model.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return products, nil
}
