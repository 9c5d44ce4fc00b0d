package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a stock movement.
type TransactionType string

const (
	TransactionTypePurchase TransactionType = "purchase"
	TransactionTypeSale     TransactionType = "sale"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypePurchase || t == TransactionTypeSale
}

// Delta returns the signed stock change a transaction of this type and quantity causes.
func (t TransactionType) Delta(quantity int) int {
	if t == TransactionTypeSale {
		return -quantity
	}
	return quantity
}

// Transaction is an immutable record of a purchase or sale.
type Transaction struct {
	ID                 string
	ProductID          string
	CustomerID         *string
	Quantity           int
	Type               TransactionType
	UnitPrice          decimal.Decimal
	TotalAmount        decimal.Decimal
	DiscountPercentage int
	DiscountAmount     decimal.Decimal
	FinalAmount        decimal.Decimal
	CreatedAt          time.Time
}

// ApplyPricing fills the amounts from the unit price, quantity and discount percentage.
// The discount amount is rounded to cents and the final amount is derived from it,
// so FinalAmount + DiscountAmount == TotalAmount holds exactly.
func (t *Transaction) ApplyPricing(unitPrice decimal.Decimal, discountPercentage int) {
	t.UnitPrice = unitPrice
	t.DiscountPercentage = discountPercentage
	t.TotalAmount = unitPrice.Mul(decimal.NewFromInt(int64(t.Quantity)))
	t.DiscountAmount = t.TotalAmount.
		Mul(decimal.NewFromInt(int64(discountPercentage))).
		Div(decimal.NewFromInt(100)).
		Round(2)
	t.FinalAmount = t.TotalAmount.Sub(t.DiscountAmount)
}

// NewTransaction is the caller input of a transaction.
type NewTransaction struct {
	ID         string
	ProductID  string
	Quantity   int
	Type       TransactionType
	CustomerID string
}

// TransactionResult is returned from transaction creation.
type TransactionResult struct {
	Transaction Transaction
	StockChange StockChange
}

// TransactionHistoryEntry is a transaction joined with its product and customer names.
type TransactionHistoryEntry struct {
	Transaction
	ProductName      *string
	CustomerName     *string
	CustomerCategory *CustomerCategory
}

// ProductHistory is one page of a product's transactions, newest first.
type ProductHistory struct {
	ProductID  string
	History    []TransactionHistoryEntry
	Pagination Pagination
}
