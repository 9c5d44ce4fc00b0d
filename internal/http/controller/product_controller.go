package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-manager/internal/apperror"
	"github.com/iyhunko/inventory-manager/internal/model"
	"github.com/shopspring/decimal"
)

// ProductService is the product side of the inventory service.
type ProductService interface {
	AddProduct(ctx context.Context, in model.NewProduct) (*model.Product, error)
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
	UpdateProduct(ctx context.Context, productID string, update model.ProductUpdate) (*model.ProductUpdateResult, error)
	ListProducts(ctx context.Context, page, limit int, category string) (*model.ProductPage, error)
	ListProductsByCategory(ctx context.Context, category string, page, limit int) (*model.ProductPage, error)
	UpdateStock(ctx context.Context, productID string, quantity int, txType model.TransactionType) (*model.StockChange, error)
	ProductHistory(ctx context.Context, productID string, page, limit int) (*model.ProductHistory, error)
	Categories(ctx context.Context) ([]string, error)
}

// ProductController handles HTTP requests for product operations.
type ProductController struct {
	productService ProductService
}

// NewProductController creates a new ProductController with the given product service.
func NewProductController(productService ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// CreateProductRequest represents the request body for creating a product.
// Presence checks are left to the service so every missing field yields the same message.
type CreateProductRequest struct {
	Name     string           `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	Stock    *int             `json:"stock"`
	Category string           `json:"category"`
}

// CreateProductResponse represents the response body of a created product.
type CreateProductResponse struct {
	Success   bool    `json:"success"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	Category  string  `json:"category"`
}

// ListProductsResponse represents the response body for listing products.
type ListProductsResponse struct {
	Products   []ProductResponse  `json:"products"`
	Pagination PaginationResponse `json:"pagination"`
}

// UpdateProductResponse echoes the applied update set.
type UpdateProductResponse struct {
	Success   bool                `json:"success"`
	ProductID string              `json:"productId"`
	Updates   ProductUpdateFields `json:"updates"`
}

// ProductUpdateFields lists the fields an update changed.
type ProductUpdateFields struct {
	Name     *string  `json:"name,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Category *string  `json:"category,omitempty"`
}

// UpdateStockRequest represents the request body of a stock adjustment.
type UpdateStockRequest struct {
	Quantity int    `json:"quantity"`
	Type     string `json:"type"`
}

// UpdateStockResponse describes the applied stock change.
type UpdateStockResponse struct {
	Success   bool   `json:"success"`
	ProductID string `json:"productId"`
	OldStock  int    `json:"oldStock"`
	NewStock  int    `json:"newStock"`
	Change    int    `json:"change"`
}

// HistoryEntryResponse is one transaction in a product history.
type HistoryEntryResponse struct {
	ID                 string  `json:"id"`
	ProductID          string  `json:"product_id"`
	CustomerID         *string `json:"customer_id"`
	Quantity           int     `json:"quantity"`
	Type               string  `json:"type"`
	UnitPrice          float64 `json:"unit_price"`
	TotalAmount        float64 `json:"total_amount"`
	DiscountPercentage int     `json:"discount_percentage"`
	DiscountAmount     float64 `json:"discount_amount"`
	FinalAmount        float64 `json:"final_amount"`
	CreatedAt          string  `json:"created_at"`
	ProductName        *string `json:"product_name"`
	CustomerName       *string `json:"customer_name"`
	CustomerCategory   *string `json:"customer_category"`
}

// ProductHistoryResponse is a page of a product's transactions.
type ProductHistoryResponse struct {
	ProductID  string                 `json:"productId"`
	History    []HistoryEntryResponse `json:"history"`
	Pagination PaginationResponse     `json:"pagination"`
}

// CreateProduct handles the HTTP POST request for creating a new product.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.Validation("Invalid request body").WithError(err))
		return
	}

	product, err := pc.productService.AddProduct(c.Request.Context(), model.NewProduct{
		Name:     req.Name,
		Price:    req.Price,
		Stock:    req.Stock,
		Category: req.Category,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateProductResponse{
		Success:   true,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     money(product.Price),
		Stock:     product.Stock,
		Category:  product.Category,
	})
}

// GetProduct handles the HTTP GET request for one product.
func (pc *ProductController) GetProduct(c *gin.Context) {
	product, err := pc.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product))
}

// ListProducts handles the HTTP GET request for listing products with pagination.
func (pc *ProductController) ListProducts(c *gin.Context) {
	page, err := pc.productService.ListProducts(c.Request.Context(),
		queryInt(c.Query("page")), queryInt(c.Query("limit")), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toListProductsResponse(page))
}

// ListProductsByCategory handles the HTTP GET request for the products of one category.
func (pc *ProductController) ListProductsByCategory(c *gin.Context) {
	page, err := pc.productService.ListProductsByCategory(c.Request.Context(),
		c.Param("category"), queryInt(c.Query("page")), queryInt(c.Query("limit")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toListProductsResponse(page))
}

// UpdateProduct handles the HTTP PUT request for a product. Only name, price and
// category are read from the body; other keys are ignored.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, apperror.Validation("Invalid request body").WithError(err))
		return
	}

	update, err := parseProductUpdate(body)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := pc.productService.UpdateProduct(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		respondError(c, err)
		return
	}

	fields := ProductUpdateFields{
		Name:     result.Updates.Name,
		Category: result.Updates.Category,
	}
	if result.Updates.Price != nil {
		price := money(*result.Updates.Price)
		fields.Price = &price
	}
	c.JSON(http.StatusOK, UpdateProductResponse{
		Success:   true,
		ProductID: result.ProductID,
		Updates:   fields,
	})
}

// UpdateStock handles the HTTP PATCH request adjusting a product's stock.
func (pc *ProductController) UpdateStock(c *gin.Context) {
	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.Validation("Invalid request body").WithError(err))
		return
	}

	change, err := pc.productService.UpdateStock(c.Request.Context(), c.Param("id"), req.Quantity, model.TransactionType(req.Type))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, UpdateStockResponse{
		Success:   true,
		ProductID: change.ProductID,
		OldStock:  change.OldStock,
		NewStock:  change.NewStock,
		Change:    change.Change,
	})
}

// ProductHistory handles the HTTP GET request for a product's transaction history.
func (pc *ProductController) ProductHistory(c *gin.Context) {
	history, err := pc.productService.ProductHistory(c.Request.Context(),
		c.Param("id"), queryInt(c.Query("page")), queryInt(c.Query("limit")))
	if err != nil {
		respondError(c, err)
		return
	}

	entries := make([]HistoryEntryResponse, 0, len(history.History))
	for _, entry := range history.History {
		entries = append(entries, toHistoryEntryResponse(entry))
	}
	c.JSON(http.StatusOK, ProductHistoryResponse{
		ProductID:  history.ProductID,
		History:    entries,
		Pagination: toPaginationResponse(history.Pagination),
	})
}

// Categories handles the HTTP GET request for the distinct product categories.
func (pc *ProductController) Categories(c *gin.Context) {
	categories, err := pc.productService.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func parseProductUpdate(body map[string]json.RawMessage) (model.ProductUpdate, error) {
	var update model.ProductUpdate
	if raw, ok := body["name"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return update, invalidField("name", err)
		}
		update.Name = &name
	}
	if raw, ok := body["price"]; ok {
		var price decimal.Decimal
		if err := json.Unmarshal(raw, &price); err != nil {
			return update, invalidField("price", err)
		}
		update.Price = &price
	}
	if raw, ok := body["category"]; ok {
		var category string
		if err := json.Unmarshal(raw, &category); err != nil {
			return update, invalidField("category", err)
		}
		update.Category = &category
	}
	return update, nil
}

func invalidField(field string, err error) error {
	return apperror.Validation(fmt.Sprintf("Invalid value for %s", field)).WithError(err)
}

func toListProductsResponse(page *model.ProductPage) ListProductsResponse {
	return ListProductsResponse{
		Products:   toProductResponses(page.Products),
		Pagination: toPaginationResponse(page.Pagination),
	}
}

func toHistoryEntryResponse(entry model.TransactionHistoryEntry) HistoryEntryResponse {
	response := HistoryEntryResponse{
		ID:                 entry.ID,
		ProductID:          entry.ProductID,
		CustomerID:         entry.CustomerID,
		Quantity:           entry.Quantity,
		Type:               string(entry.Type),
		UnitPrice:          money(entry.UnitPrice),
		TotalAmount:        money(entry.TotalAmount),
		DiscountPercentage: entry.DiscountPercentage,
		DiscountAmount:     money(entry.DiscountAmount),
		FinalAmount:        money(entry.FinalAmount),
		CreatedAt:          formatTime(entry.CreatedAt),
		ProductName:        entry.ProductName,
		CustomerName:       entry.CustomerName,
	}
	if entry.CustomerCategory != nil {
		category := string(*entry.CustomerCategory)
		response.CustomerCategory = &category
	}
	return response
}
