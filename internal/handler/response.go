package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/bugtracker/internal/domain"
)

const (
	msgBugNotFound   = "Bug not found"
	msgBugRemoved    = "Bug removed"
	msgDuplicate     = "Duplicate field value entered"
	msgInvalidBody   = "Invalid request body"
	msgInternalError = "Something went wrong"
)

// MessageResponse is the body for not-found, duplicate and generic failures.
// Error carries fault detail and is only populated in development.
type MessageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// SchemaErrorResponse is the body for store-side document validation failures.
type SchemaErrorResponse struct {
	Errors map[string]string `json:"errors"`
}

// NewHTTPErrorHandler returns the global error handler for echo. It is the only
// place errors are turned into wire bodies. When debug is set, 500 responses
// include the fault detail.
func NewHTTPErrorHandler(debug bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := mapError(err, debug)
		if status >= http.StatusInternalServerError {
			slog.Error("unhandled error",
				"error", err,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)
		}

		var jsonErr error
		if c.Request().Method == http.MethodHead {
			jsonErr = c.NoContent(status)
		} else {
			jsonErr = c.JSON(status, body)
		}
		if jsonErr != nil {
			slog.Error("failed to send error response", "error", jsonErr)
		}
	}
}

func mapError(err error, debug bool) (int, any) {
	var fieldErrs domain.FieldErrors
	if errors.As(err, &fieldErrs) {
		return http.StatusBadRequest, fieldErrs
	}

	var schemaErr *domain.SchemaError
	if errors.As(err, &schemaErr) {
		return http.StatusBadRequest, SchemaErrorResponse{Errors: schemaErr.Fields}
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, MessageResponse{Message: msgBugNotFound}
	case errors.Is(err, domain.ErrDuplicate):
		return http.StatusBadRequest, MessageResponse{Message: msgDuplicate}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, MessageResponse{Message: msgInvalidBody}
	}

	// Handle echo's own HTTP errors (404, 405, etc.)
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) && echoErr.Code < http.StatusInternalServerError {
		msg, _ := echoErr.Message.(string)
		if msg == "" {
			msg = http.StatusText(echoErr.Code)
		}
		return echoErr.Code, MessageResponse{Message: msg}
	}

	resp := MessageResponse{Message: msgInternalError}
	if debug {
		resp.Error = err.Error()
	}
	return http.StatusInternalServerError, resp
}
