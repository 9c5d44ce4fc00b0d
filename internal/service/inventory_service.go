package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iyhunko/inventory-manager/internal/apperror"
	"github.com/iyhunko/inventory-manager/internal/metrics"
	"github.com/iyhunko/inventory-manager/internal/model"
	"github.com/iyhunko/inventory-manager/internal/repository"
)

// productIDAttempts bounds id generation retries when a concurrent insert took the id.
const productIDAttempts = 3

// LowStockNotifier receives an alert every time a stock update leaves a product at or
// below the threshold. Implementations must not block the caller.
type LowStockNotifier interface {
	NotifyLowStock(alert model.LowStockAlert)
}

// Options configures an InventoryService.
type Options struct {
	// LowStockThreshold is the stock level at or below which alerts are raised.
	LowStockThreshold int
	// Notifier receives low-stock alerts. Nil disables notifications.
	Notifier LowStockNotifier
	// Now overrides the clock in tests.
	Now func() time.Time
}

// InventoryService holds the product, stock, transaction and reporting rules.
type InventoryService struct {
	store     repository.Store
	threshold int
	notifier  LowStockNotifier
	now       func() time.Time
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(store repository.Store, opts Options) *InventoryService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &InventoryService{
		store:     store,
		threshold: opts.LowStockThreshold,
		notifier:  opts.Notifier,
		now:       now,
	}
}

// LowStockThreshold returns the configured threshold.
func (s *InventoryService) LowStockThreshold() int {
	return s.threshold
}

// fail logs a failed operation and converts unexpected errors into an internal error.
func fail(operation string, err error, attrs ...any) error {
	appErr, ok := apperror.As(err)
	if !ok {
		appErr = apperror.Internal(err)
	}
	attrs = append(attrs, slog.String("operation", operation), slog.Any("err", err))
	if appErr.Kind == apperror.KindInternal {
		slog.Error("Operation failed", attrs...)
	} else {
		slog.Warn("Operation rejected", attrs...)
	}
	return appErr
}

// AddProduct validates and stores a new product under a generated PROD id.
func (s *InventoryService) AddProduct(ctx context.Context, in model.NewProduct) (*model.Product, error) {
	attrs := []any{
		slog.String("name", in.Name),
		slog.Any("price", in.Price),
		slog.Any("stock", in.Stock),
		slog.String("category", in.Category),
	}

	if in.Name == "" || in.Price == nil || in.Stock == nil || in.Category == "" {
		return nil, fail("addProduct", apperror.Validation("All product fields are required"), attrs...)
	}
	if err := validatePrice(*in.Price); err != nil {
		return nil, fail("addProduct", err, attrs...)
	}
	if *in.Stock < 0 {
		return nil, fail("addProduct", apperror.Validation("Stock cannot be negative"), attrs...)
	}
	if err := validateCount("Stock", *in.Stock); err != nil {
		return nil, fail("addProduct", err, attrs...)
	}

	products := s.store.Products()
	var lastErr error
	for attempt := 1; attempt <= productIDAttempts; attempt++ {
		product := &model.Product{
			ID:       s.nextProductID(ctx, products),
			Name:     in.Name,
			Price:    *in.Price,
			Stock:    *in.Stock,
			Category: in.Category,
		}
		product.InitMeta(s.now())

		err := products.Create(ctx, product)
		if err == nil {
			metrics.ProductsCreated.Inc()
			slog.Info("Product added successfully",
				slog.String("product_id", product.ID),
				slog.String("name", product.Name),
				slog.String("price", product.Price.String()),
				slog.Int("stock", product.Stock),
				slog.String("category", product.Category))
			return product, nil
		}
		if !repository.IsUniqueConstraint(err) {
			return nil, fail("addProduct", err, attrs...)
		}
		slog.Debug("Product id taken, retrying", slog.String("product_id", product.ID), slog.Int("attempt", attempt))
		lastErr = err
	}

	return nil, fail("addProduct", fmt.Errorf("no free product id after %d attempts: %w", productIDAttempts, lastErr), attrs...)
}

// nextProductID returns PROD followed by the next sequential number, zero padded to
// three digits. When the lookup fails it degrades to PROD<unix millis>.
func (s *InventoryService) nextProductID(ctx context.Context, products repository.ProductRepository) string {
	maxID, err := products.MaxSequentialID(ctx)
	if err != nil {
		slog.Error("Error generating product ID, falling back to timestamp", slog.Any("err", err))
		return fmt.Sprintf("%s%d", model.ProductIDPrefix, s.now().UnixMilli())
	}
	return fmt.Sprintf("%s%03d", model.ProductIDPrefix, maxID+1)
}

// GetProduct returns one product.
func (s *InventoryService) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	product, err := s.store.Products().FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fail("getProduct", apperror.ProductNotFound(productID), slog.String("product_id", productID))
		}
		return nil, fail("getProduct", err, slog.String("product_id", productID))
	}
	return product, nil
}

// UpdateProduct changes the name, price or category of a product.
func (s *InventoryService) UpdateProduct(ctx context.Context, productID string, update model.ProductUpdate) (*model.ProductUpdateResult, error) {
	attrs := []any{slog.String("product_id", productID), slog.Any("updates", update)}

	if update.IsEmpty() {
		return nil, fail("updateProduct", apperror.Validation("No valid fields to update"), attrs...)
	}
	if update.Name != nil && *update.Name == "" {
		return nil, fail("updateProduct", apperror.Validation("Name cannot be empty"), attrs...)
	}
	if update.Category != nil && *update.Category == "" {
		return nil, fail("updateProduct", apperror.Validation("Category cannot be empty"), attrs...)
	}
	if update.Price != nil {
		if err := validatePrice(*update.Price); err != nil {
			return nil, fail("updateProduct", err, attrs...)
		}
	}

	if err := s.store.Products().Update(ctx, productID, update, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fail("updateProduct", apperror.ProductNotFound(productID), attrs...)
		}
		return nil, fail("updateProduct", err, attrs...)
	}

	slog.Info("Product updated successfully", attrs...)
	return &model.ProductUpdateResult{ProductID: productID, Updates: update}, nil
}

// ListProducts returns a page of products ordered by name, optionally for one category.
func (s *InventoryService) ListProducts(ctx context.Context, page, limit int, category string) (*model.ProductPage, error) {
	p := repository.NewPage(page, limit)
	attrs := []any{slog.Int("page", p.Number), slog.Int("limit", p.Limit), slog.String("category", category)}

	products := s.store.Products()
	items, err := products.List(ctx, repository.ProductFilter{Category: category, Page: p})
	if err != nil {
		return nil, fail("getAllProducts", err, attrs...)
	}
	total, err := products.Count(ctx, category)
	if err != nil {
		return nil, fail("getAllProducts", err, attrs...)
	}

	return &model.ProductPage{
		Products:   items,
		Pagination: model.NewPagination(p.Number, p.Limit, total),
	}, nil
}

// ListProductsByCategory returns a page of the products of one category.
func (s *InventoryService) ListProductsByCategory(ctx context.Context, category string, page, limit int) (*model.ProductPage, error) {
	if category == "" {
		return nil, fail("getProductsByCategory", apperror.Validation("Category is required"))
	}
	return s.ListProducts(ctx, page, limit, category)
}

// LowStockProducts lists products with stock <= threshold. A nil threshold means the
// configured one.
func (s *InventoryService) LowStockProducts(ctx context.Context, threshold *int) (*model.LowStockReport, error) {
	effective := s.threshold
	if threshold != nil {
		effective = *threshold
	}
	if effective < 0 {
		return nil, fail("getLowStockProducts", apperror.Validation("Threshold cannot be negative"), slog.Int("threshold", effective))
	}
	if err := validateCount("Threshold", effective); err != nil {
		return nil, fail("getLowStockProducts", err, slog.Int("threshold", effective))
	}

	products, err := s.store.Products().ListLowStock(ctx, effective)
	if err != nil {
		return nil, fail("getLowStockProducts", err, slog.Int("threshold", effective))
	}

	return &model.LowStockReport{
		Products:  products,
		Threshold: effective,
		Count:     len(products),
	}, nil
}

// Categories returns the distinct product categories.
func (s *InventoryService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.store.Products().Categories(ctx)
	if err != nil {
		return nil, fail("getCategories", err)
	}
	return categories, nil
}
