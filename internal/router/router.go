package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/picklepass/internal/handler"
)

// RegisterRoutes registers routes that sit outside the /v1 API.  Currently
// it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the browse endpoints on g.  The facility list is
// cheap and uncached; schedule and session reads go through cache, which may
// be a no-op when Redis is unavailable.
func RegisterPublic(g *echo.Group, b *handler.BrowseHandler, cache echo.MiddlewareFunc) {
    g.GET("/facilities", b.ListFacilities)
    g.GET("/facilities/:slug", b.GetFacility)
    g.GET("/facilities/:slug/schedule", b.GetSchedule, cache)
    g.GET("/facilities/:slug/sessions/:id", b.GetSession, cache)
}
