package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"petition-backend/internal/shared/apperror"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("code", code),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("request_id", c.GetString("requestId")),
	}
	if status >= http.StatusInternalServerError {
		zap.L().Error("http.error", fields...)
	} else {
		zap.L().Info("http.error", fields...)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// FromError maps err onto a status and error code and writes the response.
// Server-side failures hide the cause behind fallback.
func FromError(c *gin.Context, err error, fallback string) {
	status := apperror.HTTPStatus(err)
	message := fallback
	if status < http.StatusInternalServerError {
		message = publicMessage(err)
	} else {
		zap.L().Error("request failed", zap.String("request_id", c.GetString("requestId")), zap.Error(err))
	}
	Error(c, status, errorCode(err, status), message, nil)
}

func errorCode(err error, status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusServiceUnavailable:
		if apperror.CodeOf(err) == apperror.CodeBackendUnavailable {
			return "backend_unavailable"
		}
		return "unavailable"
	default:
		return "internal_error"
	}
}

func publicMessage(err error) string {
	if ae, ok := apperror.As(err); ok && ae.Message != "" {
		return ae.Message
	}
	return err.Error()
}
