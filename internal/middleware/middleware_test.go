package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/easyshop/internal/apperr"
	"github.com/iliyamo/easyshop/internal/config"
	"github.com/iliyamo/easyshop/internal/model"
)

type stubResolver map[string]*model.User

func (s stubResolver) ResolveUser(_ context.Context, token string) (*model.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, apperr.UnauthorizedErr(apperr.MsgInvalidToken)
}

func run(mw echo.MiddlewareFunc, req *http.Request, h echo.HandlerFunc) (echo.Context, error) {
	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())
	return c, mw(h)(c)
}

func TestJWTAuth(t *testing.T) {
	alice := &model.User{ID: 42, Username: "alice"}
	mw := JWTAuth(stubResolver{"good": alice})
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	cases := []struct {
		name   string
		header string
		wantOK bool
	}{
		{"valid", "Bearer good", true},
		{"lowercase scheme", "bearer good", true},
		{"missing", "", false},
		{"wrong scheme", "Basic good", false},
		{"empty token", "Bearer ", false},
		{"unknown token", "Bearer bad", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/user/me", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			c, err := run(mw, req, ok)
			if !tc.wantOK {
				assert.True(t, apperr.Is(err, apperr.Unauthorized))
				return
			}
			require.NoError(t, err)
			u, err := CurrentUser(c)
			require.NoError(t, err)
			assert.Equal(t, alice, u)
			assert.Equal(t, "42", currentUserID(c))
		})
	}
}

func TestCurrentUserWithoutAuth(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := CurrentUser(c)
	assert.True(t, apperr.Is(err, apperr.Unauthorized))
	assert.Equal(t, "anon", currentUserID(c))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"status":"success"}`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, `{"status":"success"}`, string(body))

	_, _, _, ok = decodePayload(bs[:5])
	assert.False(t, ok)
	_, _, _, ok = decodePayload(append([]byte{0, 0, 0, 200, 0, 0, 1, 0}, 'x'))
	assert.False(t, ok)
}

func TestCacheKeyFrom(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "catalog", KeyStrategy: "route_query"}
	e := echo.New()
	key := func(target string) string {
		return cacheKeyFrom(cfg, 0, e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder()))
	}

	assert.Equal(t, key("/products"), key("/products"))
	assert.NotEqual(t, key("/products/1"), key("/products/2"))
	assert.NotEqual(t, key("/products?a=1"), key("/products?a=2"))
	assert.Regexp(t, `^catalog:0:[0-9a-f]{40}$`, key("/products"))

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/products", nil), httptest.NewRecorder())
	assert.NotEqual(t, cacheKeyFrom(cfg, 0, c), cacheKeyFrom(cfg, 1, c))
}

type memBackend struct {
	gen     int64
	entries map[string][]byte
}

func (m *memBackend) Generation(context.Context) (int64, error) { return m.gen, nil }

func (m *memBackend) Load(_ context.Context, key string) ([]byte, error) {
	if bs, ok := m.entries[key]; ok {
		return bs, nil
	}
	return nil, errors.New("miss")
}

func (m *memBackend) Store(_ context.Context, key string, payload []byte, _ time.Duration) error {
	m.entries[key] = payload
	return nil
}

func (m *memBackend) Invalidate(context.Context) error {
	m.gen++
	m.entries = map[string][]byte{}
	return nil
}

func TestCacheIgnoresResponseComputedAcrossWrite(t *testing.T) {
	backend := &memBackend{entries: map[string][]byte{}}
	cfg := config.CacheConfig{Enabled: true, Prefix: "catalog", Methods: map[string]bool{"GET": true}, TTL: time.Minute}
	e := echo.New()

	write := newPurge(backend)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	reads := 0
	e.GET("/products", func(c echo.Context) error {
		reads++
		if reads == 1 {
			// a write lands while the first read is still running
			wc := e.NewContext(httptest.NewRequest(http.MethodPost, "/products", nil), httptest.NewRecorder())
			require.NoError(t, write(wc))
		}
		return c.String(http.StatusOK, strconv.Itoa(reads))
	}, newCache(cfg, backend))

	get := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
		return rec
	}

	first := get()
	assert.Equal(t, "1", first.Body.String())
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := get()
	assert.Equal(t, "2", second.Body.String())
	assert.Equal(t, "MISS", second.Header().Get("X-Cache"))

	third := get()
	assert.Equal(t, "2", third.Body.String())
	assert.Equal(t, "HIT", third.Header().Get("X-Cache"))
	assert.Equal(t, 2, reads)
}

func TestPurgeSkipsFailedWrites(t *testing.T) {
	backend := &memBackend{entries: map[string][]byte{}}
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/products", nil), httptest.NewRecorder())

	require.NoError(t, newPurge(backend)(func(c echo.Context) error { return c.NoContent(http.StatusNotFound) })(c))
	assert.Zero(t, backend.gen)

	err := newPurge(backend)(func(c echo.Context) error { return errors.New("boom") })(c)
	assert.Error(t, err)
	assert.Zero(t, backend.gen)
}

func TestCacheWithoutRedisIsNoop(t *testing.T) {
	cfg := config.CacheConfig{Enabled: true, Prefix: "catalog", Methods: map[string]bool{"GET": true}}
	calls := 0
	h := func(c echo.Context) error { calls++; return c.String(http.StatusOK, "ok") }

	for i := 0; i < 2; i++ {
		_, err := run(NewRedisCache(cfg, nil), httptest.NewRequest(http.MethodGet, "/products", nil), h)
		require.NoError(t, err)
		_, err = run(NewCachePurge(cfg, nil), httptest.NewRequest(http.MethodPost, "/products", nil), h)
		require.NoError(t, err)
	}
	assert.Equal(t, 4, calls)
}

func TestRateLimiterMemoryFallback(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
	e := echo.New()
	e.Use(NewRateLimiter(cfg, nil))
	e.GET("/products", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterDisabled(t *testing.T) {
	_, err := run(NewRateLimiter(config.RateLimitConfig{}, nil), httptest.NewRequest(http.MethodGet, "/", nil),
		func(c echo.Context) error { return errors.New("reached") })
	assert.EqualError(t, err, "reached")
}
