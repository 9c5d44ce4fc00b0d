package model

import "github.com/shopspring/decimal"

// InventoryValue aggregates the whole catalogue.
type InventoryValue struct {
	TotalValue    decimal.Decimal
	TotalProducts int
	TotalItems    int
}

// MonthlySales is the sum of final amounts for one YYYY-MM month.
type MonthlySales struct {
	Month string
	Sales decimal.Decimal
}

// CategorySales is the sale revenue of one product category.
type CategorySales struct {
	Category         string
	Sales            decimal.Decimal
	TransactionCount int
	Percentage       int
}

// TopProduct is a best-selling product within a date window.
type TopProduct struct {
	ID           string
	Name         string
	Sales        decimal.Decimal
	QuantitySold int
}

// LowStockReport lists products at or below Threshold, ascending by stock.
type LowStockReport struct {
	Products  []Product
	Threshold int
	Count     int
}
