package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/easyshop/internal/apperr"
)

func TestErrorResponse(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   echo.Map
	}{
		{"unauthorized", apperr.UnauthorizedErr(apperr.MsgInvalidToken), http.StatusUnauthorized,
			echo.Map{"status": "error", "detail": apperr.MsgInvalidToken}},
		{"validation stays 200", apperr.ValidationErr(apperr.MsgInvalidExt), http.StatusOK,
			echo.Map{"status": "error", "message": apperr.MsgInvalidExt}},
		{"not found", apperr.NotFoundErr("Product not found!"), http.StatusNotFound,
			echo.Map{"status": "error", "detail": "Product not found!"}},
		{"wrapped kind", fmt.Errorf("handler: %w", apperr.NotFoundErr("gone")), http.StatusNotFound,
			echo.Map{"status": "error", "detail": "gone"}},
		{"plain error hides cause", errors.New("dial tcp: refused"), http.StatusInternalServerError,
			echo.Map{"status": "error", "detail": "Internal server error"}},
		{"bind failure is validation", apperr.Wrap(apperr.Validation, apperr.MsgInvalidData, echo.NewHTTPError(http.StatusBadRequest, "syntax")), http.StatusOK,
			echo.Map{"status": "error", "message": apperr.MsgInvalidData}},
		{"echo error passes through", echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"), http.StatusTooManyRequests,
			echo.Map{"status": "error", "detail": "rate limit exceeded"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := errorResponse(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantBody, body)
		})
	}
}

func TestHTTPErrorHandlerSetsChallenge(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/user/me", nil), rec)

	HTTPErrorHandler(apperr.UnauthorizedErr(apperr.MsgNotPermitted), c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
	assert.JSONEq(t, `{"status":"error","detail":"Not authenticated to perform this action!"}`, rec.Body.String())
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "", imageURL("http://shop.test", ""))
	assert.Equal(t, "http://shop.test/static/images/ab.png", imageURL("http://shop.test/", "ab.png"))
}
