package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"petition-backend/internal/shared/apperror"
)

func serve(t *testing.T, err error) (int, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) { FromError(c, err, "something went wrong") })

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return resp.Code, body
}

func TestFromErrorValidation(t *testing.T) {
	status, body := serve(t, apperror.Validation("Arquivo vazio"))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "validation_error", body.Error.Code)
	require.Equal(t, "Arquivo vazio", body.Error.Message)
}

func TestFromErrorNotFound(t *testing.T) {
	status, body := serve(t, apperror.NotFound("cases.get", "case not found"))
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "not_found", body.Error.Code)
}

func TestFromErrorTransientHidesCause(t *testing.T) {
	err := apperror.Transient(apperror.CodeBackendUnavailable, "db.ping", errors.New("dial tcp 10.0.0.5:5432"))
	status, body := serve(t, err)
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "backend_unavailable", body.Error.Code)
	require.Equal(t, "something went wrong", body.Error.Message)
}

func TestFromErrorUnknown(t *testing.T) {
	status, body := serve(t, errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "internal_error", body.Error.Code)
	require.Equal(t, "something went wrong", body.Error.Message)
}
