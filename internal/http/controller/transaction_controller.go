package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-manager/internal/apperror"
	"github.com/iyhunko/inventory-manager/internal/model"
)

// TransactionService records purchases and sales.
type TransactionService interface {
	CreateTransaction(ctx context.Context, in model.NewTransaction) (*model.TransactionResult, error)
}

// TransactionController handles HTTP requests for transactions.
type TransactionController struct {
	transactionService TransactionService
}

// NewTransactionController creates a new TransactionController.
func NewTransactionController(transactionService TransactionService) *TransactionController {
	return &TransactionController{
		transactionService: transactionService,
	}
}

// CreateTransactionRequest represents the request body for creating a transaction.
type CreateTransactionRequest struct {
	TransactionID string `json:"transactionId"`
	ProductID     string `json:"productId"`
	Quantity      int    `json:"quantity"`
	Type          string `json:"type"`
	CustomerID    string `json:"customerId"`
}

// CreateTransactionResponse exposes every computed field of a new transaction.
type CreateTransactionResponse struct {
	Success            bool    `json:"success"`
	TransactionID      string  `json:"transactionId"`
	ProductID          string  `json:"productId"`
	Quantity           int     `json:"quantity"`
	Type               string  `json:"type"`
	CustomerID         *string `json:"customerId,omitempty"`
	UnitPrice          float64 `json:"unitPrice"`
	TotalAmount        float64 `json:"totalAmount"`
	DiscountPercentage int     `json:"discountPercentage"`
	DiscountAmount     float64 `json:"discountAmount"`
	FinalAmount        float64 `json:"finalAmount"`
	NewStock           int     `json:"newStock"`
}

// CreateTransaction handles the HTTP POST request for recording a transaction.
func (tc *TransactionController) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.Validation("Invalid request body").WithError(err))
		return
	}

	result, err := tc.transactionService.CreateTransaction(c.Request.Context(), model.NewTransaction{
		ID:         req.TransactionID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		Type:       model.TransactionType(req.Type),
		CustomerID: req.CustomerID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	txn := result.Transaction
	c.JSON(http.StatusCreated, CreateTransactionResponse{
		Success:            true,
		TransactionID:      txn.ID,
		ProductID:          txn.ProductID,
		Quantity:           txn.Quantity,
		Type:               string(txn.Type),
		CustomerID:         txn.CustomerID,
		UnitPrice:          money(txn.UnitPrice),
		TotalAmount:        money(txn.TotalAmount),
		DiscountPercentage: txn.DiscountPercentage,
		DiscountAmount:     money(txn.DiscountAmount),
		FinalAmount:        money(txn.FinalAmount),
		NewStock:           result.StockChange.NewStock,
	})
}
