package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/easyshop/internal/apperr"
	"github.com/iliyamo/easyshop/internal/middleware"
	"github.com/iliyamo/easyshop/internal/service"
)

// AuthHandler serves token issuing, registration, verification and the
// caller's profile.
type AuthHandler struct {
	Auth     *service.AuthService
	Accounts *service.AccountService
	BaseURL  string
}

func NewAuthHandler(auth *service.AuthService, accounts *service.AccountService, baseURL string) *AuthHandler {
	return &AuthHandler{Auth: auth, Accounts: accounts, BaseURL: baseURL}
}

// Token exchanges form-encoded username/password for a bearer token.
func (h *AuthHandler) Token(c echo.Context) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	if username == "" || password == "" {
		return apperr.UnauthorizedErr(apperr.MsgBadCredential)
	}
	token, err := h.Auth.IssueToken(c.Request().Context(), username, password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "access_token": token, "token_type": "Bearer"})
}

// Register creates an account from a JSON body and sends the verification email.
func (h *AuthHandler) Register(c echo.Context) error {
	var in service.RegisterInput
	if err := c.Bind(&in); err != nil {
		return apperr.Wrap(apperr.Validation, apperr.MsgInvalidData, err)
	}
	u, err := h.Accounts.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}
	greeting := fmt.Sprintf("Hello %s. Thanks for signing up! Check your email inbox to verify your email and confirm registration!", u.Username)
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": greeting})
}

// Verify confirms an email address from the link in the verification email.
func (h *AuthHandler) Verify(c echo.Context) error {
	u, err := h.Accounts.Verify(c.Request().Context(), c.QueryParam("token"))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "verify.html", echo.Map{"Username": u.Username})
}

// Me returns the caller's account and business logo.
func (h *AuthHandler) Me(c echo.Context) error {
	u, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	b, err := h.Accounts.Profile(c.Request().Context(), u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": echo.Map{
		"username":  u.Username,
		"email":     u.Email,
		"verified":  u.IsVerified,
		"join_date": u.JoinDateLabel(),
		"logo":      imageURL(h.BaseURL, b.Logo),
	}})
}

// imageURL maps a stored filename to its public URL, or "" for no image.
func imageURL(baseURL, name string) string {
	if name == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/static/images/" + name
}
