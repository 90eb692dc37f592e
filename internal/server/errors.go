package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	analyticsdomain "github.com/spitfire8790/landiqr/internal/analytics/domain"
	"github.com/spitfire8790/landiqr/internal/crm"
	matrixdomain "github.com/spitfire8790/landiqr/internal/matrix/domain"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not_found")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

// APIError is the uniform error envelope returned by every endpoint.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return e.Message }

func newValidationError(field, code, message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    code,
		Field:   field,
		Message: message,
	}
}

func invalidRequestError() *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_request",
		Message: "invalid request body",
	}
}

// AbortWithError maps domain errors onto HTTP statuses and writes the
// error envelope. Unknown errors become opaque 500s.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"
	message := "internal error"

	switch {
	case errors.Is(err, ErrUnauthorized):
		status, code, message = http.StatusUnauthorized, "unauthorized", "unauthorized"
	case errors.Is(err, ErrNotFound), errors.Is(err, matrixdomain.ErrNotFound):
		status, code, message = http.StatusNotFound, "not_found", "resource not found"
	case errors.Is(err, ErrTooManyRequests), errors.Is(err, crm.ErrRateLimited):
		status, code, message = http.StatusTooManyRequests, "too_many_requests", "rate limit exceeded"
	case errors.Is(err, ErrServiceUnavailable), errors.Is(err, analyticsdomain.ErrSessionUnavailable):
		status, code, message = http.StatusServiceUnavailable, "service_unavailable", "data session unavailable"
	case isMatrixValidationError(err):
		status, code, message = http.StatusBadRequest, err.Error(), "validation failed"
	case errors.Is(err, matrixdomain.ErrDuplicateAllocation):
		status, code, message = http.StatusConflict, "duplicate_allocation", "person already allocated to task"
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{
		"code":    code,
		"message": message,
	}})
}

func isMatrixValidationError(err error) bool {
	switch {
	case errors.Is(err, matrixdomain.ErrInvalidName),
		errors.Is(err, matrixdomain.ErrInvalidEmail),
		errors.Is(err, matrixdomain.ErrInvalidGroup),
		errors.Is(err, matrixdomain.ErrInvalidCategory):
		return true
	default:
		return false
	}
}
