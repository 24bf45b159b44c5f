package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobboard/internal/middleware"
	"github.com/justsurfingit/jobboard/internal/repository"
	"github.com/justsurfingit/jobboard/internal/services"
	"github.com/justsurfingit/jobboard/internal/validation"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error     string             `json:"error"`
	Code      string             `json:"code"`
	Details   []validation.Issue `json:"details,omitempty"`
	RequestID string             `json:"request_id,omitempty"`
}

// requestError wraps a body or query that could not be decoded.
type requestError struct{ err error }

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error { return &requestError{err: err} }

// respondError maps service and repository errors onto HTTP statuses. Only
// unexpected errors are logged here; the request logger records the rest.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var reqErr *requestError
	failure, isFailure := validation.AsFailure(err)
	switch {
	case errors.As(err, &reqErr):
		write(c, http.StatusBadRequest, "bad_request", err.Error(), nil)
	case errors.Is(err, services.ErrMalformedDraft):
		var details []validation.Issue
		if isFailure {
			details = failure.Details
		}
		write(c, http.StatusBadGateway, "malformed_draft", err.Error(), details)
	case isFailure:
		write(c, http.StatusBadRequest, "validation_error", failure.Message, failure.Details)
	case repository.IsNotFound(err):
		write(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case repository.IsInvalidField(err):
		write(c, http.StatusBadRequest, "invalid_field", err.Error(), nil)
	case repository.IsConstraintViolation(err):
		write(c, http.StatusConflict, "conflict", "the request conflicts with existing data", nil)
	case errors.Is(err, services.ErrExtractionDisabled), errors.Is(err, services.ErrStorageDisabled):
		write(c, http.StatusServiceUnavailable, "unavailable", err.Error(), nil)
	default:
		log.Error("request failed",
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		write(c, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
	_ = c.Error(err)
}

func write(c *gin.Context, status int, code, message string, details []validation.Issue) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: c.GetString(middleware.RequestIDKey),
	})
}
