package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeStoreNotConfigured = "STORE_NOT_CONFIGURED"
	ErrCodeMissingCustomer    = "MISSING_CUSTOMER"
	ErrCodeInvalidImage       = "INVALID_IMAGE"
	ErrCodeImageTooLarge      = "IMAGE_TOO_LARGE"
	ErrCodeNotLoaded          = "NOT_LOADED"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound           = NewDomainError(ErrCodeNotFound, "Record not found")
	ErrInvalidQuantity    = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrEmptyCart          = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrStoreNotConfigured = NewDomainError(ErrCodeStoreNotConfigured, "Store configuration is not loaded")
	ErrMissingCustomer    = NewDomainError(ErrCodeMissingCustomer, "Customer name and phone are required")
	ErrInvalidImage       = NewDomainError(ErrCodeInvalidImage, "Only image files are accepted")
	ErrImageTooLarge      = NewDomainError(ErrCodeImageTooLarge, "Image must be at most 5MB")
	ErrNotLoaded          = NewDomainError(ErrCodeNotLoaded, "Store data has not been loaded")
	ErrUnauthorised       = NewDomainError(ErrCodeUnauthorised, "Admin login required")
)

// ErrInvalidInput builds a validation error carrying the offending detail.
func ErrInvalidInput(message string) *DomainError {
	return NewDomainError(ErrCodeInvalidInput, message)
}

// CodeOf returns the domain code carried by err, or ErrCodeInternalError.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternalError
}
