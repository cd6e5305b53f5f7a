// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"

	// Validation errors (400)
	CodeValidation       = "VALIDATION_ERROR"
	CodeInvalidLineInput = "INVALID_LINE_INPUT"

	// Business rule violations (422)
	CodeBusinessRule          = "BUSINESS_RULE_VIOLATION"
	CodeDocumentNotEditable   = "DOCUMENT_NOT_EDITABLE"
	CodeNoCompatibleDocuments = "NO_COMPATIBLE_DOCUMENTS"
	CodeInvalidTransition     = "INVALID_TRANSITION"

	// Totals engine defects (500) - never tolerated, always abort the transaction
	CodeUnbalancedTotals        = "UNBALANCED_TOTALS"
	CodeTotalsComputationFailed = "TOTALS_COMPUTATION_FAILED"

	// Concurrency (409)
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeOverFulfillment        = "OVER_FULFILLMENT"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Forbidden (403)
	CodeForbidden = "FORBIDDEN"

	// Conflict (409)
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewInvalidLineInput rejects a malformed document line before any computation.
func NewInvalidLineInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidLineInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewUnbalancedTotals reports a broken totals invariant. This is a defect:
// the enclosing transaction must roll back, never continue.
func NewUnbalancedTotals(expected, actual string) *AppError {
	return &AppError{
		Code:       CodeUnbalancedTotals,
		Message:    "document totals do not balance",
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"expected": expected, "actual": actual},
	}
}

// NewTotalsComputationFailed wraps an UnbalancedTotals raised during a transformation.
func NewTotalsComputationFailed(err error) *AppError {
	return &AppError{
		Code:       CodeTotalsComputationFailed,
		Message:    "totals computation failed during transformation",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewNoCompatibleDocuments is a normal user-facing outcome: nothing to transform.
func NewNoCompatibleDocuments() *AppError {
	return &AppError{
		Code:       CodeNoCompatibleDocuments,
		Message:    "no compatible source documents to transform",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewOverFulfillment reports the concurrent-modification guard tripping at
// commit time. Surfaced to the caller as "please retry, quantities changed".
func NewOverFulfillment(lineID any, requested, remaining string) *AppError {
	return &AppError{
		Code:       CodeOverFulfillment,
		Message:    "quantities changed, please retry",
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"line_id":   lineID,
			"requested": requested,
			"remaining": remaining,
		},
	}
}

// NewDocumentNotEditable rejects writes against a frozen document.
func NewDocumentNotEditable(docID any) *AppError {
	return &AppError{
		Code:       CodeDocumentNotEditable,
		Message:    "document is no longer editable",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"document_id": docID},
	}
}

// NewConcurrentModification creates an optimistic locking error
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified by another user. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewForbidden creates a forbidden error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeNotFound
	}
	return false
}

// IsCode checks if error carries a specific code.
func IsCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsConcurrentModification checks if error is CodeConcurrentModification
func IsConcurrentModification(err error) bool {
	return IsCode(err, CodeConcurrentModification)
}
