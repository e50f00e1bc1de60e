package middleware

import (
	"context"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/easyshop/internal/apperr"
	"github.com/iliyamo/easyshop/internal/model"
)

// TokenResolver turns a raw bearer token into the user it names.
type TokenResolver interface {
	ResolveUser(ctx context.Context, token string) (*model.User, error)
}

// JWTAuth requires an "Authorization: Bearer <token>" header. The resolved
// user is stored under "user" and its id, as a string, under "user_id"; a
// rate limiter placed after it keys per-user strategies on that id.
func JWTAuth(resolver TokenResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := bearer(auth)
			if !ok {
				return apperr.UnauthorizedErr(apperr.MsgNotPermitted)
			}
			u, err := resolver.ResolveUser(c.Request().Context(), raw)
			if err != nil {
				return err
			}
			c.Set(userKey, u)
			c.Set("user_id", strconv.FormatUint(u.ID, 10))
			return next(c)
		}
	}
}

func bearer(header string) (string, bool) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}
