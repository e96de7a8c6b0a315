package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"bcflats_backend/internal/apperr"
	"bcflats_backend/internal/logger"
)

// errorResponse is the JSON body returned for every failed request.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// CustomErrorHandler maps domain errors to HTTP statuses and renders a
// uniform JSON error body.
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := errorResponse{Error: "internal server error"}

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok && msg != "" {
			body.Error = msg
		} else {
			body.Error = http.StatusText(code)
		}
	} else if kind := apperr.KindOf(err); kind != apperr.KindUnknown {
		body.Error = err.Error()
		body.Kind = kind.String()
		switch kind {
		case apperr.KindNotFound:
			code = http.StatusNotFound
		case apperr.KindValidation:
			code = http.StatusBadRequest
		case apperr.KindConflict:
			code = http.StatusConflict
		case apperr.KindInvalidState:
			code = http.StatusUnprocessableEntity
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Get().Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if writeErr := c.JSON(code, body); writeErr != nil {
		logger.Get().Error("failed to write error response", zap.Error(writeErr))
	}
}
