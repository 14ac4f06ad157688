package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/service-b/internal/handler"
)

// RegisterRoutes registers the liveness probe at the root and the read-only
// API under /api. The middleware in mw applies to the /api group only, so
// /healthz is never rate limited or cached.
func RegisterRoutes(e *echo.Echo, api *handler.APIHandler, mw ...echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	g := e.Group("/api", mw...)
	g.GET("/version", api.Version)
	g.GET("/info", api.Info)
	g.GET("/hello", api.Hello)
}
