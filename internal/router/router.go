// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/easyshop/internal/handler"
	"github.com/iliyamo/easyshop/internal/middleware"
)

// Handlers groups the catalog handlers.
type Handlers struct {
	Products *handler.ProductHandler
	Business *handler.BusinessHandler
	Uploads  *handler.UploadHandler
}

// Edge holds the optional middleware built from the Redis-backed config.
// Nil entries are skipped.
type Edge struct {
	Limit echo.MiddlewareFunc // every API route, after authentication
	Cache echo.MiddlewareFunc // catalog reads
	Purge echo.MiddlewareFunc // catalog writes
}

// public is the chain for unauthenticated routes; extra runs innermost.
func (edge Edge) public(extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	var mw []echo.MiddlewareFunc
	if edge.Limit != nil {
		mw = append(mw, edge.Limit)
	}
	return appendSet(mw, extra...)
}

// authed runs JWTAuth before the limiter so per-user keys see the caller.
func (edge Edge) authed(resolver middleware.TokenResolver, extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	mw := []echo.MiddlewareFunc{middleware.JWTAuth(resolver)}
	if edge.Limit != nil {
		mw = append(mw, edge.Limit)
	}
	return appendSet(mw, extra...)
}

func appendSet(mw []echo.MiddlewareFunc, extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	for _, m := range extra {
		if m != nil {
			mw = append(mw, m)
		}
	}
	return mw
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo, staticDir string) {
	e.GET("/healthz", handler.Health)
	e.Static("/static", staticDir)
}

// RegisterAuth registers token issuing, registration, verification and the
// authenticated profile routes.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, resolver middleware.TokenResolver, edge Edge) {
	pub := edge.public()
	e.POST("/token", a.Token, pub...)
	e.POST("/register", a.Register, pub...)
	e.GET("/verify", a.Verify, pub...)

	auth := e.Group("/user", edge.authed(resolver)...)
	auth.POST("/me", a.Me)
	auth.GET("/me", a.Me)
}

// RegisterCatalog registers product, business and upload routes. Reads are
// public and cached; writes require a bearer token and purge the cache.
func RegisterCatalog(e *echo.Echo, h Handlers, resolver middleware.TokenResolver, edge Edge) {
	reads := edge.public(edge.Cache)
	writes := edge.authed(resolver, edge.Purge)

	e.GET("/products", h.Products.List, reads...)
	e.GET("/products/:id", h.Products.Get, reads...)

	e.POST("/products", h.Products.Create, writes...)
	e.PUT("/products/:id", h.Products.Update, writes...)
	e.DELETE("/products/:id", h.Products.Delete, writes...)
	e.PUT("/business/:id", h.Business.Update, writes...)

	e.POST("/uploadfile/profile", h.Uploads.UploadProfile, writes...)
	e.POST("/uploadfile/product/:id", h.Uploads.UploadProduct, writes...)
}
