package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/picklepass/internal/handler"
)

// RegisterBooking registers the profile-scoped endpoints on g, which must
// already run the Profile middleware.  Every write is rate limited per
// profile and route.
func RegisterBooking(g *echo.Group, h *handler.BookingHandler, m *handler.BookmarkHandler, limit echo.MiddlewareFunc) {
    g.POST("/sessions/:id/booking-attempts", h.StartAttempt, limit)
    g.POST("/booking-attempts/submit", h.Submit, limit)
    g.POST("/booking-attempts/edit", h.Edit, limit)
    g.POST("/booking-attempts/confirm", h.Confirm, limit)
    g.GET("/bookings", h.ListBookings)

    g.GET("/bookmarks", m.List)
    g.POST("/bookmarks/:slug/toggle", m.Toggle, limit)
}
