package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iyhunko/inventory-manager/internal/apperror"
	"github.com/iyhunko/inventory-manager/internal/model"
	"github.com/iyhunko/inventory-manager/internal/repository"
	"github.com/shopspring/decimal"
)

// DefaultTopProductsLimit is used when no positive limit is requested.
const DefaultTopProductsLimit = 10

// InventoryValue sums price × stock over the catalogue.
func (s *InventoryService) InventoryValue(ctx context.Context) (*model.InventoryValue, error) {
	value, err := s.store.Reports().InventoryValue(ctx)
	if err != nil {
		return nil, fail("getInventoryValue", err)
	}
	return value, nil
}

// MonthlySales sums final amounts per calendar month within window, oldest first.
func (s *InventoryService) MonthlySales(ctx context.Context, window repository.DateRange) ([]model.MonthlySales, error) {
	sales, err := s.store.Reports().MonthlySales(ctx, window)
	if err != nil {
		return nil, fail("getMonthlySales", err, slog.Any("window", window))
	}
	return sales, nil
}

// CategorySales reports sale revenue per category, each with its rounded share of the total.
func (s *InventoryService) CategorySales(ctx context.Context, window repository.DateRange) ([]model.CategorySales, error) {
	sales, err := s.store.Reports().CategorySales(ctx, window)
	if err != nil {
		return nil, fail("getCategorySales", err, slog.Any("window", window))
	}

	total := decimal.Zero
	for _, row := range sales {
		total = total.Add(row.Sales)
	}
	hundred := decimal.NewFromInt(100)
	for i := range sales {
		if !total.IsPositive() {
			sales[i].Percentage = 0
			continue
		}
		sales[i].Percentage = int(sales[i].Sales.Div(total).Mul(hundred).Round(0).IntPart())
	}

	return sales, nil
}

// TopProducts returns the best-selling products by sale revenue.
func (s *InventoryService) TopProducts(ctx context.Context, window repository.DateRange, limit int) ([]model.TopProduct, error) {
	if limit <= 0 {
		limit = DefaultTopProductsLimit
	}
	limit = min(limit, repository.MaxPaginationLimit)

	products, err := s.store.Reports().TopProducts(ctx, window, limit)
	if err != nil {
		return nil, fail("getTopProducts", err, slog.Any("window", window), slog.Int("limit", limit))
	}
	return products, nil
}

// ProductHistory returns a page of a product's transactions, newest first. An unknown
// product fails before any transaction is read.
func (s *InventoryService) ProductHistory(ctx context.Context, productID string, page, limit int) (*model.ProductHistory, error) {
	p := repository.NewPage(page, limit)
	attrs := []any{slog.String("product_id", productID), slog.Int("page", p.Number), slog.Int("limit", p.Limit)}

	if _, err := s.store.Products().FindByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fail("getProductHistory", apperror.ProductNotFound(productID), attrs...)
		}
		return nil, fail("getProductHistory", err, attrs...)
	}

	transactions := s.store.Transactions()
	history, err := transactions.ListByProduct(ctx, productID, p)
	if err != nil {
		return nil, fail("getProductHistory", err, attrs...)
	}
	total, err := transactions.CountByProduct(ctx, productID)
	if err != nil {
		return nil, fail("getProductHistory", err, attrs...)
	}

	return &model.ProductHistory{
		ProductID:  productID,
		History:    history,
		Pagination: model.NewPagination(p.Number, p.Limit, total),
	}, nil
}
