package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/socialnet/backend/internal/i18n"
	"github.com/labstack/echo/v4"
)

const identityKey = "identity"

// ErrInvalidToken is returned by a TokenVerifier that rejects the token.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID uint
	Email  string
}

// TokenVerifier checks a bearer token and resolves the caller.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Auth rejects requests without a bearer token (401) and requests whose token
// no verifier accepts (403). Verifiers are tried in order.
func Auth(verifiers ...TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := i18n.Match(c.Request().Header.Get("Accept-Language"))

			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, i18n.T(lang, i18n.Unauthorized))
			}

			for _, v := range verifiers {
				id, err := v.Verify(c.Request().Context(), token)
				if err == nil {
					c.Set(identityKey, id)
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, i18n.T(lang, i18n.InvalidToken))
		}
	}
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// IdentityFromContext returns the caller set by Auth.
func IdentityFromContext(c echo.Context) (*Identity, bool) {
	id, ok := c.Get(identityKey).(*Identity)
	return id, ok && id != nil
}

// SetIdentity attaches a caller to the echo context.
func SetIdentity(c echo.Context, id *Identity) {
	c.Set(identityKey, id)
}
