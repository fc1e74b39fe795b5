package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/urdf-visualizer/backend/internal/kinematics"
	"github.com/urdf-visualizer/backend/internal/mesh"
	"github.com/urdf-visualizer/backend/internal/parser"
	"github.com/urdf-visualizer/backend/internal/session"
	"github.com/urdf-visualizer/backend/internal/storage"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		err        error
		wantCode   string
		wantStatus int
	}{
		{parser.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
		{fmt.Errorf("open: %w", storage.ErrFileNotFound), "NOT_FOUND", http.StatusNotFound},
		{session.ErrSessionNotFound, "NOT_FOUND", http.StatusNotFound},
		{mesh.ErrPackageRootNotFound, "NOT_FOUND", http.StatusNotFound},
		{fmt.Errorf("joint %q: %w", "j", parser.ErrMalformedDocument), "MALFORMED_DOCUMENT", http.StatusUnprocessableEntity},
		{parser.ErrInvalidNumericLiteral, "INVALID_NUMERIC_LITERAL", http.StatusUnprocessableEntity},
		{kinematics.ErrCyclicTopology, "CYCLIC_TOPOLOGY", http.StatusUnprocessableEntity},
		{mesh.ErrTreeTooLarge, "TREE_TOO_LARGE", http.StatusUnprocessableEntity},
		{session.ErrValidation, "VALIDATION_ERROR", http.StatusBadRequest},
		{session.ErrHistoryDisabled, "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable},
		{errors.New("disk on fire"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode+"/"+tt.err.Error(), func(t *testing.T) {
			apiErr := FromError("failed", tt.err)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantStatus, apiErr.Status)
			assert.Equal(t, "failed", apiErr.Message)
			assert.Equal(t, tt.err.Error(), apiErr.Details)
		})
	}

	original := NewValidationError("name")
	assert.Same(t, original, FromError("ignored", fmt.Errorf("wrap: %w", original)))
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"api error", NewNotFoundError("robot", "r1"), http.StatusNotFound, `"code":"NOT_FOUND"`},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed, `"code":"HTTP_ERROR"`},
		{"plain error", kinematics.ErrCyclicTopology, http.StatusUnprocessableEntity, `"code":"CYCLIC_TOPOLOGY"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			ErrorHandler(tt.err, c)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodHead, "/", nil), rec)
	ErrorHandler(NewInternalError("boom", nil), c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())
}
