package server

import (
	"errors"
	"net/http"

	"edupay/internal/apperr"

	"github.com/labstack/echo/v4"
)

// appHTTPErrorHandler maps the app error taxonomy onto HTTP codes in one
// place; handlers return errors and never pick status codes for domain
// failures themselves.
func appHTTPErrorHandler(err error, c echo.Context) {
	var (
		code            = http.StatusInternalServerError
		message   any   = http.StatusText(http.StatusInternalServerError)
		httpError *echo.HTTPError
	)

	switch {
	case errors.As(err, &httpError):
		code = httpError.Code
		message = httpError.Message
	case errors.Is(err, apperr.ErrNotFound):
		code = http.StatusNotFound
		message = "not found"
	case errors.Is(err, apperr.ErrDuplicateActiveOrder):
		code = http.StatusConflict
		message = "item already owned"
	case errors.Is(err, apperr.ErrInvalidTransition):
		code = http.StatusConflict
		message = "order already finalized"
	case errors.Is(err, apperr.ErrInvalidSignature):
		code = http.StatusBadRequest
		message = "signature verification failed"
	case errors.Is(err, apperr.ErrGatewayUnavailable):
		code = http.StatusBadGateway
		message = "payment gateway unavailable"
	}

	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
	} else {
		c.Logger().Warn(err)
	}

	if c.Response().Committed {
		return
	}

	if m, ok := message.(string); ok {
		message = echo.Map{"error": m}
	}
	if jsonErr := c.JSON(code, message); jsonErr != nil {
		c.Logger().Error(jsonErr)
	}
}
