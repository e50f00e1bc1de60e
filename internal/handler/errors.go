// Package handler contains the Echo handlers of the API. Handlers bind the
// request, call a service and return errors for HTTPErrorHandler to render.
package handler

import (
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/easyshop/internal/apperr"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "http").Logger()

// HTTPErrorHandler renders every error returned by a handler or middleware.
// Validation failures keep a 200 status with "status":"error" in the body.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Request().URL.Path).Msg("request failed")
	}
	if status == http.StatusUnauthorized {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logger.Error().Err(err).Msg("write error response")
	}
}

func errorResponse(err error) (int, echo.Map) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case apperr.Unauthorized:
			return http.StatusUnauthorized, echo.Map{"status": "error", "detail": ae.Message}
		case apperr.Validation:
			return http.StatusOK, echo.Map{"status": "error", "message": ae.Message}
		case apperr.NotFound:
			return http.StatusNotFound, echo.Map{"status": "error", "detail": ae.Message}
		}
		return http.StatusInternalServerError, echo.Map{"status": "error", "detail": "Internal server error"}
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return he.Code, echo.Map{"status": "error", "detail": msg}
	}
	return http.StatusInternalServerError, echo.Map{"status": "error", "detail": "Internal server error"}
}
