package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-manager/internal/model"
)

var (
	// ErrNotFound is returned when a lookup or a keyed write matches no row.
	ErrNotFound = errors.New("resource not found")
	// ErrStockConditionFailed is returned when a conditional stock update matched no row,
	// either because the product is missing or because stock would go negative.
	ErrStockConditionFailed = errors.New("stock condition failed")
	// ErrOutOfRange is returned when a write produces a value its column cannot hold.
	ErrOutOfRange = errors.New("value out of range")
)

// ProductRepository persists products and their stock levels.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	// MaxSequentialID returns the largest numeric suffix among PROD<digits> ids, 0 when there are none.
	MaxSequentialID(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, update model.ProductUpdate, now time.Time) error
	List(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	Count(ctx context.Context, category string) (int, error)
	ListLowStock(ctx context.Context, threshold int) ([]model.Product, error)
	Categories(ctx context.Context) ([]string, error)
	// AdjustStock adds delta to the stock of a product in one conditional statement
	// and returns the new level. It fails with ErrStockConditionFailed when the
	// product does not exist or the result would be negative, and with ErrOutOfRange
	// when it would overflow the stock column.
	AdjustStock(ctx context.Context, id string, delta int, now time.Time) (int, error)
	Stock(ctx context.Context, id string) (int, error)
}

// CustomerRepository reads customers.
type CustomerRepository interface {
	FindByID(ctx context.Context, id string) (*model.Customer, error)
}

// TransactionRepository persists transactions.
type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) error
	ListByProduct(ctx context.Context, productID string, page Page) ([]model.TransactionHistoryEntry, error)
	CountByProduct(ctx context.Context, productID string) (int, error)
}

// ReportRepository runs read-only aggregations.
type ReportRepository interface {
	InventoryValue(ctx context.Context) (*model.InventoryValue, error)
	MonthlySales(ctx context.Context, window DateRange) ([]model.MonthlySales, error)
	// CategorySales returns sale revenue per category, highest first. Percentage is left at 0.
	CategorySales(ctx context.Context, window DateRange) ([]model.CategorySales, error)
	TopProducts(ctx context.Context, window DateRange, limit int) ([]model.TopProduct, error)
}

// EventRepository is the outbox.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	ListPending(ctx context.Context, limit int) ([]model.Event, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) error
}

// Store groups the repositories that share one connection or transaction.
type Store interface {
	Products() ProductRepository
	Customers() CustomerRepository
	Transactions() TransactionRepository
	Reports() ReportRepository
	Events() EventRepository
	// WithinTransaction runs fn with a Store bound to a single database transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
}

// UniqueConstraintError represents a database unique constraint violation error.
type UniqueConstraintError struct {
	Detail string
}

func (u *UniqueConstraintError) Error() string {
	return "resource must be unique: " + u.Detail
}

// IsUniqueConstraint reports whether err wraps a *UniqueConstraintError.
func IsUniqueConstraint(err error) bool {
	var uniqueErr *UniqueConstraintError
	return errors.As(err, &uniqueErr)
}
