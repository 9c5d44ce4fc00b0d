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

// CreateTransaction records a purchase or sale and applies its stock change. The
// product and customer lookups, the stock change and the transaction row share one
// database transaction, so a rejected sale leaves nothing behind.
func (s *InventoryService) CreateTransaction(ctx context.Context, in model.NewTransaction) (*model.TransactionResult, error) {
	attrs := []any{
		slog.String("transaction_id", in.ID),
		slog.String("product_id", in.ProductID),
		slog.Int("quantity", in.Quantity),
		slog.String("type", string(in.Type)),
		slog.String("customer_id", in.CustomerID),
	}

	if in.ID == "" || in.ProductID == "" || in.Quantity == 0 || in.Type == "" {
		return nil, fail("createTransaction", apperror.Validation("Transaction ID, product ID, quantity, and type are required"), attrs...)
	}
	if in.Quantity < 0 {
		return nil, fail("createTransaction", apperror.Validation("Quantity must be greater than 0"), attrs...)
	}
	if err := validateCount("Quantity", in.Quantity); err != nil {
		return nil, fail("createTransaction", err, attrs...)
	}
	if !in.Type.Valid() {
		return nil, fail("createTransaction", apperror.InvalidTransaction(fmt.Sprintf("Invalid transaction type: %s", in.Type)), attrs...)
	}

	var result model.TransactionResult
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		product, err := tx.Products().FindByID(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperror.ProductNotFound(in.ProductID)
			}
			return err
		}

		txn := model.Transaction{
			ID:        in.ID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Type:      in.Type,
			CreatedAt: s.now(),
		}

		var customer *model.Customer
		if in.CustomerID != "" {
			customer, err = tx.Customers().FindByID(ctx, in.CustomerID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return apperror.CustomerNotFound(in.CustomerID)
				}
				return err
			}
			txn.CustomerID = &customer.ID
		}

		txn.ApplyPricing(product.Price, saleDiscount(customer, in.Quantity, in.Type))

		// stock first: an oversell aborts before the row is written
		change, err := s.adjustStock(ctx, tx.Products(), in.ProductID, in.Quantity, in.Type)
		if err != nil {
			return err
		}

		if err := tx.Transactions().Create(ctx, &txn); err != nil {
			if repository.IsUniqueConstraint(err) {
				return apperror.InvalidTransaction(fmt.Sprintf("Transaction with ID %s already exists", in.ID)).WithError(err)
			}
			if errors.Is(err, repository.ErrOutOfRange) {
				return apperror.Validation("Transaction amount exceeds the supported range").WithError(err)
			}
			return err
		}

		result = model.TransactionResult{Transaction: txn, StockChange: *change}
		return nil
	})
	if err != nil {
		return nil, fail("createTransaction", err, attrs...)
	}

	s.afterStockChange(&result.StockChange)
	metrics.TransactionsCreated.WithLabelValues(string(in.Type)).Inc()

	txn := result.Transaction
	slog.Info("Transaction created",
		slog.String("transaction_id", txn.ID),
		slog.String("product_id", txn.ProductID),
		slog.Int("quantity", txn.Quantity),
		slog.String("type", string(txn.Type)),
		slog.String("customer_id", in.CustomerID),
		slog.Int("discount_percentage", txn.DiscountPercentage),
		slog.String("final_amount", txn.FinalAmount.StringFixed(2)),
	)

	return &result, nil
}
