// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/urdf-visualizer/backend/internal/kinematics"
	"github.com/urdf-visualizer/backend/internal/mesh"
	"github.com/urdf-visualizer/backend/internal/parser"
	"github.com/urdf-visualizer/backend/internal/session"
	"github.com/urdf-visualizer/backend/internal/storage"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// FromError maps domain errors onto API errors. message describes the
// failed operation.
func FromError(message string, err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	code, status := "INTERNAL_ERROR", http.StatusInternalServerError
	switch {
	case errors.Is(err, parser.ErrNotFound),
		errors.Is(err, storage.ErrFileNotFound),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, mesh.ErrPackageRootNotFound):
		code, status = "NOT_FOUND", http.StatusNotFound
	case errors.Is(err, parser.ErrMalformedDocument):
		code, status = "MALFORMED_DOCUMENT", http.StatusUnprocessableEntity
	case errors.Is(err, parser.ErrInvalidNumericLiteral):
		code, status = "INVALID_NUMERIC_LITERAL", http.StatusUnprocessableEntity
	case errors.Is(err, kinematics.ErrCyclicTopology):
		code, status = "CYCLIC_TOPOLOGY", http.StatusUnprocessableEntity
	case errors.Is(err, mesh.ErrTreeTooLarge):
		code, status = "TREE_TOO_LARGE", http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrValidation):
		code, status = "VALIDATION_ERROR", http.StatusBadRequest
	case errors.Is(err, session.ErrHistoryDisabled):
		code, status = "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable
	}

	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: err.Error(),
	}
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		apiErr = FromError("An unexpected error occurred", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(apiErr.Status)
		return
	}
	_ = c.JSON(apiErr.Status, apiErr)
}
