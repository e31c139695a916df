// Package router builds the echo instance and mounts every API route.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/letters/internal/docs"
	"github.com/iliyamo/letters/internal/handler"
	"github.com/iliyamo/letters/internal/middleware"
)

// Prefix is the mount point of the versioned API.
const Prefix = "/api/v1"

// Handlers groups the constructed handlers. Nil fields leave their routes
// unmounted, which the tests use to exercise one resource at a time.
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Categories *handler.CategoryHandler
	Tags       *handler.TagHandler
	Articles   *handler.ArticleHandler
	Series     *handler.SeriesHandler
	DB         handler.Pinger
}

type Deps struct {
	Handlers
	Tokens         middleware.TokenValidator
	RateLimit      echo.MiddlewareFunc
	RequestTimeout time.Duration
}

// New returns an echo instance with the global middleware chain installed
// and all routes registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.AccessLog())
	e.Use(middleware.Recover())
	if d.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeout(d.RequestTimeout))
	}

	RegisterRoutes(e, d)
	return e
}

// RegisterRoutes mounts the health endpoints and API docs at the root and the
// API under Prefix.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/ping", handler.Ping)
	docs.Register(e)
	if d.DB != nil {
		e.GET("/healthz", handler.Healthz(d.DB))
	}

	api := e.Group(Prefix)
	if d.Tokens != nil {
		api.Use(middleware.Identify(d.Tokens))
	}
	if d.RateLimit != nil {
		api.Use(d.RateLimit)
	}
	api.GET("/ping", handler.Ping)

	guard := middleware.RequireAuth(d.Tokens)
	RegisterAuth(api, d.Handlers, guard)
	RegisterContent(api, d.Handlers, guard)
}

// RegisterAuth mounts login and the profile of the authenticated user.
func RegisterAuth(g *echo.Group, h Handlers, guard echo.MiddlewareFunc) {
	if h.Auth != nil {
		g.POST("/authorize", h.Auth.Authorize)
		g.POST("/login", h.Auth.Authorize)
	}
	if h.Users != nil {
		users := g.Group("/users", guard)
		users.GET("/profile", h.Users.GetProfile)
		users.PUT("/profile", h.Users.UpdateProfile)
		users.PUT("/password", h.Users.ChangePassword)
	}
}
