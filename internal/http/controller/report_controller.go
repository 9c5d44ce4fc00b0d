package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-manager/internal/apperror"
	"github.com/iyhunko/inventory-manager/internal/model"
	"github.com/iyhunko/inventory-manager/internal/repository"
)

const (
	reportInventoryValue = "inventory_value"
	reportLowStock       = "low_stock_products"
	reportMonthlySales   = "monthly_sales"
	reportCategorySales  = "category_sales"
	reportTopProducts    = "top_products"
)

// ReportService produces the read-only reports.
type ReportService interface {
	InventoryValue(ctx context.Context) (*model.InventoryValue, error)
	LowStockProducts(ctx context.Context, threshold *int) (*model.LowStockReport, error)
	MonthlySales(ctx context.Context, window repository.DateRange) ([]model.MonthlySales, error)
	CategorySales(ctx context.Context, window repository.DateRange) ([]model.CategorySales, error)
	TopProducts(ctx context.Context, window repository.DateRange, limit int) ([]model.TopProduct, error)
}

// ReportController handles HTTP requests for reports.
type ReportController struct {
	reportService ReportService
	now           func() time.Time
}

// NewReportController creates a new ReportController.
func NewReportController(reportService ReportService) *ReportController {
	return &ReportController{
		reportService: reportService,
		now:           time.Now,
	}
}

// ReportResponse wraps every report.
type ReportResponse struct {
	Report      string `json:"report"`
	Data        any    `json:"data"`
	GeneratedAt string `json:"generated_at"`
}

// InventoryValueResponse is the data of the inventory value report.
type InventoryValueResponse struct {
	TotalValue    float64 `json:"totalValue"`
	TotalProducts int     `json:"totalProducts"`
	TotalItems    int     `json:"totalItems"`
}

// LowStockResponse is the data of the low-stock report.
type LowStockResponse struct {
	Products  []ProductResponse `json:"products"`
	Threshold int               `json:"threshold"`
	Count     int               `json:"count"`
}

// MonthlySalesResponse is one month of the monthly sales report.
type MonthlySalesResponse struct {
	Month string  `json:"month"`
	Sales float64 `json:"sales"`
}

// CategorySalesResponse is one category of the category sales report.
type CategorySalesResponse struct {
	Category         string  `json:"category"`
	Sales            float64 `json:"sales"`
	TransactionCount int     `json:"transactionCount"`
	Percentage       int     `json:"percentage"`
}

// TopProductResponse is one row of the top products report.
type TopProductResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Sales    float64 `json:"sales"`
	Quantity int     `json:"quantity"`
}

// InventoryValue handles GET /reports/inventory.
func (rc *ReportController) InventoryValue(c *gin.Context) {
	value, err := rc.reportService.InventoryValue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	rc.respondReport(c, reportInventoryValue, InventoryValueResponse{
		TotalValue:    money(value.TotalValue),
		TotalProducts: value.TotalProducts,
		TotalItems:    value.TotalItems,
	})
}

// LowStock handles GET /reports/low-stock.
func (rc *ReportController) LowStock(c *gin.Context) {
	var threshold *int
	if raw := c.Query("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperror.Validation("Threshold must be an integer").WithError(err))
			return
		}
		threshold = &n
	}

	report, err := rc.reportService.LowStockProducts(c.Request.Context(), threshold)
	if err != nil {
		respondError(c, err)
		return
	}

	rc.respondReport(c, reportLowStock, LowStockResponse{
		Products:  toProductResponses(report.Products),
		Threshold: report.Threshold,
		Count:     report.Count,
	})
}

// MonthlySales handles GET /reports/monthly-sales.
func (rc *ReportController) MonthlySales(c *gin.Context) {
	window, ok := dateRange(c)
	if !ok {
		return
	}

	sales, err := rc.reportService.MonthlySales(c.Request.Context(), window)
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]MonthlySalesResponse, 0, len(sales))
	for _, row := range sales {
		data = append(data, MonthlySalesResponse{Month: row.Month, Sales: money(row.Sales)})
	}
	rc.respondReport(c, reportMonthlySales, data)
}

// CategorySales handles GET /reports/category-sales.
func (rc *ReportController) CategorySales(c *gin.Context) {
	window, ok := dateRange(c)
	if !ok {
		return
	}

	sales, err := rc.reportService.CategorySales(c.Request.Context(), window)
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]CategorySalesResponse, 0, len(sales))
	for _, row := range sales {
		data = append(data, CategorySalesResponse{
			Category:         row.Category,
			Sales:            money(row.Sales),
			TransactionCount: row.TransactionCount,
			Percentage:       row.Percentage,
		})
	}
	rc.respondReport(c, reportCategorySales, data)
}

// TopProducts handles GET /reports/top-products.
func (rc *ReportController) TopProducts(c *gin.Context) {
	window, ok := dateRange(c)
	if !ok {
		return
	}

	products, err := rc.reportService.TopProducts(c.Request.Context(), window, queryInt(c.Query("limit")))
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]TopProductResponse, 0, len(products))
	for _, row := range products {
		data = append(data, TopProductResponse{
			ID:       row.ID,
			Name:     row.Name,
			Sales:    money(row.Sales),
			Quantity: row.QuantitySold,
		})
	}
	rc.respondReport(c, reportTopProducts, data)
}

func (rc *ReportController) respondReport(c *gin.Context, report string, data any) {
	c.JSON(http.StatusOK, ReportResponse{
		Report:      report,
		Data:        data,
		GeneratedAt: formatTime(rc.now()),
	})
}

// dateRange reads the startDate/endDate window. On a malformed value it writes
// the error response and returns false.
func dateRange(c *gin.Context) (repository.DateRange, bool) {
	window, err := repository.ParseDateRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondError(c, apperror.Validation(err.Error()).WithError(err))
		return repository.DateRange{}, false
	}
	return window, true
}
