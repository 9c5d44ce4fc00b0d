package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductIDPrefix prefixes every generated product id.
const ProductIDPrefix = "PROD"

// Product represents a sellable item and its stock level.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Stock     int
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InitMeta sets the creation and update timestamps.
func (p *Product) InitMeta(now time.Time) {
	p.CreatedAt = now
	p.UpdatedAt = now
}

// Value returns price × stock.
func (p *Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
}

// NewProduct carries the caller-supplied fields of a product. Nil pointers mean
// the field was absent from the request.
type NewProduct struct {
	Name     string
	Price    *decimal.Decimal
	Stock    *int
	Category string
}

// ProductUpdate lists the mutable product fields. Nil means "leave unchanged".
type ProductUpdate struct {
	Name     *string
	Price    *decimal.Decimal
	Category *string
}

// IsEmpty reports whether no field is set.
func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Price == nil && u.Category == nil
}

// ProductUpdateResult echoes the applied update set.
type ProductUpdateResult struct {
	ProductID string
	Updates   ProductUpdate
}

// ProductPage is one page of products plus its pagination envelope.
type ProductPage struct {
	Products   []Product
	Pagination Pagination
}

// StockChange describes a successful stock adjustment.
type StockChange struct {
	ProductID string
	OldStock  int
	NewStock  int
	Change    int
	Reason    TransactionType
}
