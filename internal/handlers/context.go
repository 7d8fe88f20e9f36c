package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/socialnet/backend/internal/i18n"
	"github.com/anonto42/socialnet/backend/internal/middleware"
	"github.com/anonto42/socialnet/backend/internal/validators"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the authenticated caller, or 0 when the
// request did not pass through the auth middleware.
func getUserIDFromContext(c echo.Context) uint {
	id, ok := middleware.IdentityFromContext(c)
	if !ok {
		return 0
	}
	return id.UserID
}

// requireCaller is getUserIDFromContext for handlers that cannot run anonymously.
func requireCaller(c echo.Context) (uint, error) {
	id := getUserIDFromContext(c)
	if id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, tr(c, i18n.Unauthorized))
	}
	return id, nil
}

// tr renders a message in the caller's language.
func tr(c echo.Context, key i18n.Key) string {
	return i18n.T(i18n.Match(c.Request().Header.Get("Accept-Language")), key)
}

// tf is tr for messages that take arguments.
func tf(c echo.Context, key i18n.Key, args ...interface{}) string {
	return i18n.Tf(i18n.Match(c.Request().Header.Get("Accept-Language")), key, args...)
}

// internalError hides err from the client; the error handler logs it.
func internalError(c echo.Context, err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, tr(c, i18n.InternalError)).SetInternal(err)
}

func parseUintParam(c echo.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.InvalidRequest))
	}
	if err := c.Validate(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			if fields, ok := he.Message.(validators.FieldErrors); ok {
				return echo.NewHTTPError(he.Code, tf(c, i18n.ValidationFailed, fields.Fields()))
			}
		}
		return err
	}
	return nil
}

func pagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return page, limit
}

func pageMeta(page, limit int, total int64) echo.Map {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return echo.Map{
		"currentPage":     page,
		"totalPages":      totalPages,
		"totalItems":      total,
		"itemsPerPage":    limit,
		"hasNextPage":     page < totalPages,
		"hasPreviousPage": page > 1,
	}
}
