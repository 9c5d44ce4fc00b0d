package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-manager/internal/http/controller"
	"github.com/iyhunko/inventory-manager/internal/http/middleware"
)

// Controllers groups the handlers the router mounts.
type Controllers struct {
	General     *controller.Controller
	Product     *controller.ProductController
	Transaction *controller.TransactionController
	Report      *controller.ReportController
}

func InitRouter(server *gin.Engine, ctrs Controllers) *gin.Engine {
	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(middleware.Recovery(), middleware.Logger(), middleware.Metrics(), middleware.CORS())

	server.GET("/health", ctrs.General.Health)
	server.GET("/health/ready", ctrs.General.Ready)
	server.NoRoute(ctrs.General.NotFound)

	// Product endpoints
	products := server.Group("/products")
	{
		products.POST("", ctrs.Product.CreateProduct)
		products.GET("", ctrs.Product.ListProducts)
		products.GET("/:id", ctrs.Product.GetProduct)
		products.PUT("/:id", ctrs.Product.UpdateProduct)
		products.PATCH("/:id/stock", ctrs.Product.UpdateStock)
		products.GET("/:id/history", ctrs.Product.ProductHistory)
	}

	server.POST("/transactions", ctrs.Transaction.CreateTransaction)

	categories := server.Group("/categories")
	{
		categories.GET("", ctrs.Product.Categories)
		categories.GET("/:category/products", ctrs.Product.ListProductsByCategory)
	}

	reports := server.Group("/reports")
	{
		reports.GET("/inventory", ctrs.Report.InventoryValue)
		reports.GET("/low-stock", ctrs.Report.LowStock)
		reports.GET("/monthly-sales", ctrs.Report.MonthlySales)
		reports.GET("/category-sales", ctrs.Report.CategorySales)
		reports.GET("/top-products", ctrs.Report.TopProducts)
	}

	return server
}
