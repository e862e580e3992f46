package model

import (
	"fmt"
	"time"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"requestId,omitempty"`
}

// MessageResponse is returned by endpoints that acknowledge an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeInvalidID        = "INVALID_ID"
	ErrCodeValidation       = "VALIDATION_FAILED"
	ErrCodeInvalidName      = "INVALID_NAME"
	ErrCodeInvalidPrice     = "INVALID_PRICE"
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"
	ErrCodeCategoryNotFound = "CATEGORY_NOT_FOUND"
	ErrCodeCategoryInUse    = "CATEGORY_IN_USE"
	ErrCodeCategoryExists   = "CATEGORY_EXISTS"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped copies with a more specific
// message still satisfy errors.Is against the common values below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewCategoryNotFoundError reports a category ID that does not exist.
func NewCategoryNotFoundError(id int64) *DomainError {
	return NewDomainError(ErrCodeCategoryNotFound, fmt.Sprintf("category with id=%d not found", id))
}

// Common domain errors
var (
	ErrInvalidName      = NewDomainError(ErrCodeInvalidName, "name: must not be blank")
	ErrInvalidPrice     = NewDomainError(ErrCodeInvalidPrice, "price: must not be negative")
	ErrPriceTooLarge    = NewDomainError(ErrCodeInvalidPrice, "price: must be less than 10000000000")
	ErrPriceTooPrecise  = NewDomainError(ErrCodeInvalidPrice, "price: must have at most 2 decimal places")
	ErrProductNotFound  = NewDomainError(ErrCodeProductNotFound, "product not found")
	ErrCategoryNotFound = NewDomainError(ErrCodeCategoryNotFound, "category not found")
	ErrCategoryInUse    = NewDomainError(ErrCodeCategoryInUse, "category is used by one or more products")
	ErrCategoryExists   = NewDomainError(ErrCodeCategoryExists, "category with this name already exists")
)
