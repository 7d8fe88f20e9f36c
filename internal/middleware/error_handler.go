package middleware

import (
	"errors"
	"net/http"

	"github.com/anonto42/socialnet/backend/internal/i18n"
	"github.com/anonto42/socialnet/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler renders every error as {"error": "..."}. Errors that are
// not *echo.HTTPError are logged and hidden behind a generic 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var msg string

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		default:
			msg = http.StatusText(code)
		}
		if he.Internal != nil {
			logger.Ctx(c.Request().Context()).Error().Err(he.Internal).Int("status", code).Msg("request failed")
		}
	} else {
		logger.Ctx(c.Request().Context()).Error().Err(err).Msg("unhandled error")
		msg = i18n.T(i18n.Match(c.Request().Header.Get("Accept-Language")), i18n.InternalError)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, map[string]string{"error": msg})
	}
	if err != nil {
		logger.Ctx(c.Request().Context()).Error().Err(err).Msg("failed to write error response")
	}
}
