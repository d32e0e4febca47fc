package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/runavault/runavault/internal/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandleErrorGin(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"NotFound", apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
		{"Conflict", apperrors.ErrConflict, http.StatusConflict, "conflict"},
		{"InvalidInput", apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input"},
		{"Unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"Forbidden", apperrors.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"Unknown", apperrors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{"WrappedForbidden", apperrors.Wrap(apperrors.ErrForbidden, "role check"), http.StatusForbidden, "forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)

			HandleErrorGin(c, tt.err, nil)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error)
		})
	}
}

func TestHandleValidationErrorGin(t *testing.T) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	HandleValidationErrorGin(c, apperrors.New("site is required"), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "site is required")
}

func TestHandleBadRequestGin(t *testing.T) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	HandleBadRequestGin(c, apperrors.New("malformed json"), nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "malformed json")
}
