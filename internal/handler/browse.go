// Package handler exposes the HTTP handlers of the PicklePass API.  This
// file holds the public browsing endpoints: the facility directory, the
// paginated schedule and single-session lookup.  None of them depend on the
// caller's profile, so their responses may be cached.
package handler

import (
    "errors"
    "net/http"
    "net/url"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/picklepass/internal/model"
    "github.com/iliyamo/picklepass/internal/repository"
    "github.com/iliyamo/picklepass/internal/schedule"
)

// MaxScheduleDays caps the window one schedule request may ask for.
const MaxScheduleDays = 31

// BrowseHandler serves facility and schedule reads.
type BrowseHandler struct {
    Facilities *repository.FacilityRepo
    Generator  *schedule.Generator
    Lookup     *schedule.Lookup
}

// NewBrowseHandler constructs a BrowseHandler.  It panics if any dependency
// is nil.
func NewBrowseHandler(facilities *repository.FacilityRepo, gen *schedule.Generator, lookup *schedule.Lookup) *BrowseHandler {
    if facilities == nil || gen == nil || lookup == nil {
        panic("nil dependency passed to NewBrowseHandler")
    }
    return &BrowseHandler{Facilities: facilities, Generator: gen, Lookup: lookup}
}

// ListFacilities handles GET /v1/facilities?q=.  The optional q filters by
// name, slug, city or state, case-insensitively.
func (h *BrowseHandler) ListFacilities(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"items": h.Facilities.Search(c.QueryParam("q"))})
}

// GetFacility handles GET /v1/facilities/:slug.
func (h *BrowseHandler) GetFacility(c echo.Context) error {
    f, err := h.Facilities.FindBySlug(c.Param("slug"))
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
    }
    return c.JSON(http.StatusOK, f)
}

// GetSchedule handles GET /v1/facilities/:slug/schedule?start=&days=.
// start defaults to today in the schedule location and days to 7.  The
// response carries next_start, the date the following page must start at.
func (h *BrowseHandler) GetSchedule(c echo.Context) error {
    f, err := h.Facilities.FindBySlug(c.Param("slug"))
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
    }

    start := h.Generator.Today(h.Lookup.Now())
    if s := c.QueryParam("start"); s != "" {
        start, err = h.Generator.ParseDate(s)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start, want YYYY-MM-DD"})
        }
    }
    days := schedule.DefaultPageDays
    if s := c.QueryParam("days"); s != "" {
        days, err = strconv.Atoi(s)
        if err != nil || days < 1 || days > MaxScheduleDays {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "days must be between 1 and " + strconv.Itoa(MaxScheduleDays)})
        }
    }

    blocks := h.Generator.Generate(f.Slug, start, days)
    resp := echo.Map{"facility": f, "days": blocks}
    if next, ok := h.Generator.NextStart(blocks); ok {
        resp["next_start"] = h.Generator.FormatDate(next)
    }
    return c.JSON(http.StatusOK, resp)
}

// sessionParam returns the :id path parameter with percent-escapes
// decoded.  echo matches escaped paths on their raw form, so the parameter
// may still carry escapes such as %E2%80%93 for the en dash in a title.
func sessionParam(c echo.Context) (string, error) {
    return url.PathUnescape(c.Param("id"))
}

// sessionView is a session plus the derived remaining capacity.
type sessionView struct {
    model.Session
    SpotsLeft int `json:"spotsLeft"`
}

// GetSession handles GET /v1/facilities/:slug/sessions/:id.  Only sessions
// inside the lookup horizon are found.
func (h *BrowseHandler) GetSession(c echo.Context) error {
    f, err := h.Facilities.FindBySlug(c.Param("slug"))
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
    }
    id, err := sessionParam(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    s, err := h.Lookup.Find(f.Slug, id)
    if errors.Is(err, schedule.ErrSessionNotFound) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found", "id": id})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    return c.JSON(http.StatusOK, sessionView{Session: s, SpotsLeft: s.SpotsLeft()})
}
