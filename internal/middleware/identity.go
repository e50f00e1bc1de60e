package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/easyshop/internal/apperr"
	"github.com/iliyamo/easyshop/internal/model"
)

const userKey = "user"

// CurrentUser returns the user JWTAuth stored in the context.
func CurrentUser(c echo.Context) (*model.User, error) {
	if u, ok := c.Get(userKey).(*model.User); ok && u != nil {
		return u, nil
	}
	return nil, apperr.UnauthorizedErr(apperr.MsgNotPermitted)
}

// currentUserID returns the authenticated user's id, or "anon".
func currentUserID(c echo.Context) string {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s
	}
	return "anon"
}
