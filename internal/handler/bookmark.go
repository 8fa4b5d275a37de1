package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/picklepass/internal/middleware"
    "github.com/iliyamo/picklepass/internal/repository"
)

// BookmarkHandler serves the caller's facility bookmarks.
type BookmarkHandler struct {
    Facilities *repository.FacilityRepo
    Bookmarks  *repository.BookmarkRepo
}

// NewBookmarkHandler constructs a BookmarkHandler.  It panics if any
// dependency is nil.
func NewBookmarkHandler(facilities *repository.FacilityRepo, bookmarks *repository.BookmarkRepo) *BookmarkHandler {
    if facilities == nil || bookmarks == nil {
        panic("nil dependency passed to NewBookmarkHandler")
    }
    return &BookmarkHandler{Facilities: facilities, Bookmarks: bookmarks}
}

// List handles GET /v1/bookmarks.
func (h *BookmarkHandler) List(c echo.Context) error {
    repo := h.Bookmarks.ForProfile(middleware.ProfileID(c))
    return c.JSON(http.StatusOK, echo.Map{"items": repo.List(c.Request().Context())})
}

// Toggle handles POST /v1/bookmarks/:slug/toggle.  Unknown facilities are
// rejected so the list only ever holds real slugs.
func (h *BookmarkHandler) Toggle(c echo.Context) error {
    slug := c.Param("slug")
    if _, err := h.Facilities.FindBySlug(slug); err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
    }
    repo := h.Bookmarks.ForProfile(middleware.ProfileID(c))
    items, on, err := repo.Toggle(c.Request().Context(), slug)
    if err != nil {
        return storeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"bookmarked": on, "items": items})
}
