// Package apperror defines the error kinds the inventory module raises and the
// HTTP status each of them maps to.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation         Kind = "VALIDATION_ERROR"
	KindProductNotFound    Kind = "PRODUCT_NOT_FOUND"
	KindCustomerNotFound   Kind = "CUSTOMER_NOT_FOUND"
	KindInsufficientStock  Kind = "INSUFFICIENT_STOCK"
	KindInvalidTransaction Kind = "INVALID_TRANSACTION"
	KindInternal           Kind = "INTERNAL_ERROR"
)

// Error is the single error type returned by the service layer.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Details    map[string]any
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match when target is an *Error of the same kind, so
// errors.Is(err, &apperror.Error{Kind: KindValidation}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithError attaches the underlying cause.
func (e *Error) WithError(err error) *Error {
	e.Err = err
	return e
}

func newError(kind Kind, message string, statusCode int) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Validation(message string) *Error {
	return newError(KindValidation, "Validation error: "+message, http.StatusBadRequest)
}

func ProductNotFound(productID string) *Error {
	e := newError(KindProductNotFound, fmt.Sprintf("Product with ID %s not found", productID), http.StatusNotFound)
	e.Details = map[string]any{"productId": productID}
	return e
}

func CustomerNotFound(customerID string) *Error {
	e := newError(KindCustomerNotFound, fmt.Sprintf("Customer with ID %s not found", customerID), http.StatusNotFound)
	e.Details = map[string]any{"customerId": customerID}
	return e
}

func InsufficientStock(productID string, requested, available int) *Error {
	e := newError(KindInsufficientStock,
		fmt.Sprintf("Insufficient stock for product %s. Requested: %d, Available: %d", productID, requested, available),
		http.StatusBadRequest)
	e.Details = map[string]any{
		"productId": productID,
		"requested": requested,
		"available": available,
	}
	return e
}

func InvalidTransaction(message string) *Error {
	return newError(KindInvalidTransaction, "Invalid transaction: "+message, http.StatusBadRequest)
}

// Internal wraps an unexpected failure. The message is safe to show to clients.
func Internal(err error) *Error {
	return newError(KindInternal, "Internal Server Error", http.StatusInternalServerError).WithError(err)
}

// As extracts an *Error from the chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// StatusCode returns the HTTP status for err, 500 for anything that is not an *Error.
func StatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
