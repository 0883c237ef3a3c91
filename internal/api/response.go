package api

import (
	"errors"
	"log/slog"
	"net/http"

	"alcyxob/fitness-coach/internal/observability"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// envelope is the shape of every response body.
type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
}

func respond(c *gin.Context, code int, message string, data any) {
	c.JSON(code, envelope{Message: message, Data: data})
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, envelope{Message: message, Error: http.StatusText(code)})
}

// errorStatus maps a service error kind onto an HTTP status.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrNoExercisesAvailable):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrGenerationFailed), errors.Is(err, service.ErrInvalidGeneratedStructure):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrMediaUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an error envelope. Unexpected errors are logged
// and hidden behind a generic message.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	code := errorStatus(err)
	if code == http.StatusInternalServerError {
		observability.LoggerFromContext(c.Request.Context(), log).Error("request failed",
			"path", c.FullPath(), "error", err)
		abortWithError(c, code, "An unexpected error occurred")
		return
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(code, envelope{Message: err.Error(), Error: verr.Fields})
		return
	}
	if code == http.StatusBadGateway {
		observability.LoggerFromContext(c.Request.Context(), log).Warn("generation failed", "error", err)
	}
	abortWithError(c, code, err.Error())
}
