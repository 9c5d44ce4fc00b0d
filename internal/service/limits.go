package service

import (
	"fmt"
	"math"

	"github.com/iyhunko/inventory-manager/internal/apperror"
	"github.com/shopspring/decimal"
)

// Column bounds of the products and transactions tables: prices are NUMERIC(12,2),
// stock and quantities INTEGER.
const maxCount = math.MaxInt32

var maxPrice = decimal.New(1, 10)

func validatePrice(price decimal.Decimal) error {
	switch {
	case !price.IsPositive():
		return apperror.Validation("Price must be greater than 0")
	case !price.Equal(price.Round(2)):
		return apperror.Validation("Price cannot have more than 2 decimal places")
	case price.GreaterThanOrEqual(maxPrice):
		return apperror.Validation(fmt.Sprintf("Price must be less than %s", maxPrice))
	}
	return nil
}

// validateCount rejects values an INTEGER column cannot hold. field is capitalised,
// as in "Quantity".
func validateCount(field string, value int) error {
	if value > maxCount {
		return apperror.Validation(fmt.Sprintf("%s cannot exceed %d", field, maxCount))
	}
	return nil
}
