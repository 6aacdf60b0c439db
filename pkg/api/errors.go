package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/axisworks/axis/pkg/models"
	"github.com/axisworks/axis/pkg/queue"
	"github.com/axisworks/axis/pkg/services"
)

// ErrorResponse is the body of every non-2xx response. No stack traces, no
// wrapped internals; the code is one of the models error constants.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError emits the {error, code} body. Handlers return its result
// directly so every error response takes the same shape.
func writeError(c *echo.Context, status int, code, message string) error {
	return c.JSON(status, &ErrorResponse{Error: message, Code: code})
}

// statusForCode maps taxonomy codes to HTTP statuses. Domain codes that name
// an upstream component failure map to 502: the gateway itself is fine, the
// thing behind it is not.
func statusForCode(code string) int {
	switch code {
	case models.CodeValidation, models.CodeInvalidPlan:
		return http.StatusBadRequest
	case models.CodeAuth:
		return http.StatusUnauthorized
	case models.CodeAuthz:
		return http.StatusForbidden
	case models.CodeNotFound:
		return http.StatusNotFound
	case models.CodeConflict, models.CodeInvalidTransition:
		return http.StatusConflict
	case models.CodeRateLimit:
		return http.StatusTooManyRequests
	case models.CodeTimeout:
		return http.StatusRequestTimeout
	case models.CodeDispatch, models.CodeScoutUnreachable, models.CodeSentinelUnreachable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError maps service and queue layer errors onto the taxonomy.
// Anything unrecognized is logged and returned as an opaque 500.
func writeServiceError(c *echo.Context, err error) error {
	var validErr *services.ValidationError
	if errors.As(err, &validErr) {
		return writeError(c, http.StatusBadRequest, models.CodeValidation, validErr.Error())
	}
	if errors.Is(err, services.ErrInvalidInput) {
		return writeError(c, http.StatusBadRequest, models.CodeValidation, "invalid input")
	}
	if errors.Is(err, services.ErrNotFound) || errors.Is(err, queue.ErrJobNotFound) {
		return writeError(c, http.StatusNotFound, models.CodeNotFound, "resource not found")
	}
	if errors.Is(err, services.ErrAlreadyExists) {
		return writeError(c, http.StatusConflict, models.CodeConflict, "resource already exists")
	}
	if errors.Is(err, services.ErrConcurrentModification) {
		return writeError(c, http.StatusConflict, models.CodeConflict, "resource was modified concurrently")
	}

	var ae *models.AgentError
	if errors.As(err, &ae) {
		return writeError(c, statusForCode(ae.Code), ae.Code, ae.Message)
	}

	slog.Error("Unexpected error in API handler",
		"path", c.Request().URL.Path, "error", err)
	return writeError(c, http.StatusInternalServerError, "ERR_INTERNAL", "internal server error")
}
