package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dshills/wordsmith/internal/app"
	"github.com/dshills/wordsmith/internal/engine"
	"github.com/dshills/wordsmith/internal/engine/buffer"
	"github.com/dshills/wordsmith/internal/engine/suggestion"
	"github.com/dshills/wordsmith/internal/store"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusFor maps a domain error to an HTTP status and a stable code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, app.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "document_not_found"
	case errors.Is(err, engine.ErrSuggestionNotFound):
		return http.StatusNotFound, "suggestion_not_found"
	case errors.Is(err, engine.ErrStaleSuggestion):
		return http.StatusConflict, "stale_suggestion"
	case errors.Is(err, engine.ErrVersionConflict):
		return http.StatusConflict, "version_conflict"
	case errors.Is(err, engine.ErrCaretOutOfRange),
		errors.Is(err, buffer.ErrSpanInvalid),
		errors.Is(err, suggestion.ErrInvalidSpan):
		return http.StatusUnprocessableEntity, "invalid_range"
	case errors.Is(err, store.ErrInvalidID):
		return http.StatusBadRequest, "invalid_id"
	case errors.Is(err, app.ErrClosed):
		return http.StatusServiceUnavailable, "closed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// abortWithError writes err with its mapped status. Internal errors are not
// echoed to the client.
func abortWithError(c *gin.Context, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg, Code: code})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: "bad_request"})
}
