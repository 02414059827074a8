package errors

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetail returns a copy of e with extra context appended to the message.
// The original sentinel is left untouched so errors.Is comparisons keep working
// against the base value via Unwrap.
func (e *Error) WithDetail(detail string) *Error {
	return &Error{
		Code:    e.Code,
		Message: fmt.Sprintf("%s: %s", e.Message, detail),
		Err:     e,
	}
}

// Common error types
var (
	ErrBadRequest         = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized       = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrNotFound           = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer     = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "Service unavailable", nil)
)

// Validation error types
var (
	ErrValidation      = New(http.StatusBadRequest, "Validation error", nil)
	ErrInvalidQuantity = New(http.StatusBadRequest, "Invalid quantity", nil)
)

// Catalog and inventory conflicts
var (
	ErrProductNotFound   = New(http.StatusNotFound, "Product not found", nil)
	ErrInsufficientStock = New(http.StatusBadRequest, "Insufficient stock", nil)
	ErrStockUnavailable  = New(http.StatusConflict, "Stock unavailable", nil)
)

// State-machine violations
var (
	ErrInvalidTransition   = New(http.StatusConflict, "Invalid status transition", nil)
	ErrInvalidPaymentState = New(http.StatusConflict, "Invalid payment state", nil)
)

// Payment gateway errors
var (
	ErrGatewayUnavailable = New(http.StatusBadGateway, "Payment gateway unavailable", nil)
	ErrUnknownTransaction = New(http.StatusNotFound, "Unknown transaction reference", nil)
)

// Database error types
var (
	ErrDatabaseQuery       = New(http.StatusInternalServerError, "Database query error", nil)
	ErrDatabaseTransaction = New(http.StatusInternalServerError, "Database transaction error", nil)
)

// AsError extracts an *Error from err, falling back to ErrInternalServer.
func AsError(err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return New(http.StatusInternalServerError, "Internal server error", err)
}

// Respond writes err to the gin context as a JSON error response.
func Respond(c *gin.Context, err error) {
	appErr := AsError(err)
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}
