package service

import (
	"context"
	"log/slog"

	"github.com/iyhunko/inventory-manager/internal/model"
)

// MaxDiscountPercentage caps every discount.
const MaxDiscountPercentage = 25

var categoryDiscount = map[model.CustomerCategory]int{
	model.CustomerCategoryVIP:     15,
	model.CustomerCategoryPremium: 10,
	model.CustomerCategoryRegular: 5,
}

// DiscountPercentage returns the tier discount of a customer category plus the
// quantity surcharge, capped at MaxDiscountPercentage.
func DiscountPercentage(category model.CustomerCategory, quantity int) int {
	percentage := categoryDiscount[category]
	switch {
	case quantity >= 10:
		percentage += 5
	case quantity >= 5:
		percentage += 2
	}
	return min(percentage, MaxDiscountPercentage)
}

// saleDiscount is the discount a transaction earns: only sales to a known customer
// are discounted.
func saleDiscount(customer *model.Customer, quantity int, txType model.TransactionType) int {
	if customer == nil || txType != model.TransactionTypeSale {
		return 0
	}
	return DiscountPercentage(customer.Category, quantity)
}

// CalculateDiscount looks the customer up and returns the discount a sale of quantity
// units earns. It returns 0 for purchases, anonymous sales and any lookup failure, so
// a discount problem never blocks a sale.
func (s *InventoryService) CalculateDiscount(ctx context.Context, customerID string, quantity int, txType model.TransactionType) int {
	if customerID == "" || txType != model.TransactionTypeSale {
		return 0
	}

	customer, err := s.store.Customers().FindByID(ctx, customerID)
	if err != nil {
		slog.Error("Error calculating discount, applying none",
			slog.String("customer_id", customerID),
			slog.Int("quantity", quantity),
			slog.String("type", string(txType)),
			slog.Any("err", err))
		return 0
	}

	return saleDiscount(customer, quantity, txType)
}
