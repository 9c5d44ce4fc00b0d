package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iyhunko/inventory-manager/internal/apperror"
	"github.com/iyhunko/inventory-manager/internal/metrics"
	"github.com/iyhunko/inventory-manager/internal/model"
	"github.com/iyhunko/inventory-manager/internal/repository"
)

// UpdateStock applies a purchase (adds quantity) or a sale (removes quantity) to a
// product. A sale never drives stock below zero.
func (s *InventoryService) UpdateStock(ctx context.Context, productID string, quantity int, txType model.TransactionType) (*model.StockChange, error) {
	attrs := []any{slog.String("product_id", productID), slog.Int("quantity", quantity), slog.String("type", string(txType))}

	if productID == "" || txType == "" {
		return nil, fail("updateStock", apperror.Validation("Product ID, quantity, and transaction type are required"), attrs...)
	}
	if quantity <= 0 {
		return nil, fail("updateStock", apperror.Validation("Quantity must be greater than 0"), attrs...)
	}
	if err := validateCount("Quantity", quantity); err != nil {
		return nil, fail("updateStock", err, attrs...)
	}
	if !txType.Valid() {
		return nil, fail("updateStock", apperror.InvalidTransaction(fmt.Sprintf("Invalid transaction type: %s", txType)), attrs...)
	}

	change, err := s.adjustStock(ctx, s.store.Products(), productID, quantity, txType)
	if err != nil {
		return nil, fail("updateStock", err, attrs...)
	}

	s.afterStockChange(change)
	return change, nil
}

// adjustStock runs the conditional update and explains a failed condition by
// re-reading the current stock.
func (s *InventoryService) adjustStock(ctx context.Context, products repository.ProductRepository, productID string, quantity int, txType model.TransactionType) (*model.StockChange, error) {
	delta := txType.Delta(quantity)

	newStock, err := products.AdjustStock(ctx, productID, delta, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrOutOfRange) {
			return nil, apperror.Validation(fmt.Sprintf("Stock of product %s cannot exceed %d", productID, maxCount)).WithError(err)
		}
		if !errors.Is(err, repository.ErrStockConditionFailed) {
			return nil, err
		}
		available, stockErr := products.Stock(ctx, productID)
		if stockErr != nil {
			if errors.Is(stockErr, repository.ErrNotFound) {
				return nil, apperror.ProductNotFound(productID)
			}
			return nil, stockErr
		}
		metrics.StockRejections.Inc()
		return nil, apperror.InsufficientStock(productID, quantity, available)
	}

	return &model.StockChange{
		ProductID: productID,
		OldStock:  newStock - delta,
		NewStock:  newStock,
		Change:    quantity,
		Reason:    txType,
	}, nil
}

// afterStockChange writes the audit record and raises a low-stock alert on every
// update that leaves stock at or below the threshold.
func (s *InventoryService) afterStockChange(change *model.StockChange) {
	slog.Info("Stock changed",
		slog.String("product_id", change.ProductID),
		slog.Int("old_stock", change.OldStock),
		slog.Int("new_stock", change.NewStock),
		slog.Int("change", change.NewStock-change.OldStock),
		slog.String("reason", string(change.Reason)),
	)

	if change.NewStock > s.threshold {
		return
	}
	metrics.LowStockAlerts.Inc()
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyLowStock(model.LowStockAlert{
		ProductID:    change.ProductID,
		CurrentStock: change.NewStock,
		Threshold:    s.threshold,
		Reason:       string(change.Reason),
		RaisedAt:     s.now(),
	})
}
