package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/picklepass/internal/booking"
    "github.com/iliyamo/picklepass/internal/logger"
    "github.com/iliyamo/picklepass/internal/middleware"
    "github.com/iliyamo/picklepass/internal/model"
    q "github.com/iliyamo/picklepass/internal/queue"
    "github.com/iliyamo/picklepass/internal/repository"
    "github.com/iliyamo/picklepass/internal/schedule"
    "github.com/iliyamo/picklepass/internal/service"
    "github.com/iliyamo/picklepass/internal/utils"
)

// DuplicateBookingMessage is shown when the ledger already holds the same
// session and email.
const DuplicateBookingMessage = "You already booked this session with that email."

// BookingHandler drives guest booking attempts.  The attempt itself lives in
// a signed token the client sends back on every step, so the server keeps
// no per-attempt state; only the confirm step writes to the ledger.
type BookingHandler struct {
    Facilities *repository.FacilityRepo
    Lookup     *schedule.Lookup
    Ledger     *repository.BookingLedger
    Signer     *utils.AttemptSigner
    Publisher  service.BookingPublisher
    PriceCents int64
    Currency   string
    Now        func() time.Time
}

// NewBookingHandler constructs a BookingHandler.  It panics if any
// dependency is nil.
func NewBookingHandler(facilities *repository.FacilityRepo, lookup *schedule.Lookup, ledger *repository.BookingLedger, signer *utils.AttemptSigner, pub service.BookingPublisher, priceCents int64, currency string) *BookingHandler {
    if facilities == nil || lookup == nil || ledger == nil || signer == nil || pub == nil {
        panic("nil dependency passed to NewBookingHandler")
    }
    return &BookingHandler{
        Facilities: facilities,
        Lookup:     lookup,
        Ledger:     ledger,
        Signer:     signer,
        Publisher:  pub,
        PriceCents: priceCents,
        Currency:   currency,
        Now:        time.Now,
    }
}

type tokenRequest struct {
    Token string `json:"token"`
}

type submitRequest struct {
    Token      string `json:"token"`
    GuestName  string `json:"guest_name"`
    GuestEmail string `json:"guest_email"`
}

// StartAttempt handles POST /v1/sessions/:id/booking-attempts?facility=.
// The facility defaults to the legacy single-facility slug.
func (h *BookingHandler) StartAttempt(c echo.Context) error {
    slug := c.QueryParam("facility")
    if slug == "" {
        slug = repository.LegacyFacilitySlug
    }
    if _, err := h.Facilities.FindBySlug(slug); err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
    }
    id, err := sessionParam(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    s, err := h.Lookup.Find(slug, id)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found", "id": id})
    }

    a := booking.NewAttempt(s.ID, slug, h.PriceCents, h.Currency)
    return h.respond(c, http.StatusCreated, a, nil)
}

// Submit handles POST /v1/booking-attempts/submit.  A missing name or email
// answers 422 with the field and the unchanged attempt token.
func (h *BookingHandler) Submit(c echo.Context) error {
    var req submitRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
    }
    pid := middleware.ProfileID(c)
    a, err := h.Signer.Parse(pid, req.Token)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking attempt token"})
    }

    if err := a.Submit(req.GuestName, req.GuestEmail); err != nil {
        var ve *booking.ValidationError
        if errors.As(err, &ve) {
            token, serr := h.Signer.Sign(pid, a)
            if serr != nil {
                return storeError(c, serr)
            }
            return c.JSON(http.StatusUnprocessableEntity, echo.Map{
                "error":   "validation",
                "field":   ve.Field,
                "message": ve.Message,
                "token":   token,
            })
        }
        return storeError(c, err)
    }
    review, err := a.Review()
    if err != nil {
        return storeError(c, err)
    }
    return h.respond(c, http.StatusOK, a, echo.Map{"review": review})
}

// Edit handles POST /v1/booking-attempts/edit, going back to the info step
// with the entered values kept.
func (h *BookingHandler) Edit(c echo.Context) error {
    var req tokenRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
    }
    a, err := h.Signer.Parse(middleware.ProfileID(c), req.Token)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking attempt token"})
    }
    if err := a.Edit(); err != nil {
        return storeError(c, err)
    }
    return h.respond(c, http.StatusOK, a, nil)
}

// Confirm handles POST /v1/booking-attempts/confirm.  On success the record
// is in the caller's ledger and a confirmation event is published; publish
// failures are logged and do not undo the booking.
func (h *BookingHandler) Confirm(c echo.Context) error {
    var req tokenRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
    }
    pid := middleware.ProfileID(c)
    a, err := h.Signer.Parse(pid, req.Token)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking attempt token"})
    }

    ctx := c.Request().Context()
    m := booking.NewMachine(h.Ledger.ForProfile(pid)).WithClock(h.Now)
    rec, err := m.Confirm(ctx, a)
    if errors.Is(err, repository.ErrDuplicateBooking) {
        token, serr := h.Signer.Sign(pid, a)
        if serr != nil {
            return storeError(c, serr)
        }
        return c.JSON(http.StatusConflict, echo.Map{
            "error":   "duplicate_booking",
            "message": DuplicateBookingMessage,
            "token":   token,
        })
    }
    if err != nil {
        return storeError(c, err)
    }

    h.publish(ctx, rec)
    return h.respond(c, http.StatusCreated, a, echo.Map{"booking": rec})
}

// ListBookings handles GET /v1/bookings?session=, most recent first.  With
// session set only that session's bookings are listed; total always counts
// every booking of the caller.
func (h *BookingHandler) ListBookings(c echo.Context) error {
    ctx := c.Request().Context()
    ledger := h.Ledger.ForProfile(middleware.ProfileID(c))

    var items []model.BookingRecord
    if session := c.QueryParam("session"); session != "" {
        items = ledger.FindBySession(ctx, session)
    } else {
        items = ledger.List(ctx)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items, "total": ledger.Count(ctx)})
}

func (h *BookingHandler) publish(ctx context.Context, rec model.BookingRecord) {
    ev := q.BookingConfirmedEvent{
        BookingID:        rec.BookingID,
        SessionID:        rec.SessionID,
        FacilitySlug:     rec.FacilitySlug,
        GuestFingerprint: utils.EmailFingerprint(rec.GuestEmail),
        AmountCents:      rec.AmountCents,
        Currency:         rec.Currency,
        ConfirmedAt:      rec.CreatedAtISO,
    }
    if s, err := h.Lookup.Find(rec.FacilitySlug, rec.SessionID); err == nil {
        ev.SessionTitle = s.Title
        ev.StartsAt = s.StartISO
    }
    if err := h.Publisher.PublishBookingConfirmed(ctx, ev); err != nil {
        logger.Warn("BookingHandler:Confirm:PublishError", "booking_id", rec.BookingID, "error", err)
    }
}

// respond signs a and writes it with any extra fields.
func (h *BookingHandler) respond(c echo.Context, status int, a *booking.Attempt, extra echo.Map) error {
    token, err := h.Signer.Sign(middleware.ProfileID(c), a)
    if err != nil {
        return storeError(c, err)
    }
    body := echo.Map{"token": token, "attempt": a}
    for k, v := range extra {
        body[k] = v
    }
    return c.JSON(status, body)
}

// storeError maps domain and persistence errors to HTTP responses.
func storeError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, booking.ErrInvalidTransition):
        return c.JSON(http.StatusConflict, echo.Map{"error": "invalid step for this action"})
    case errors.Is(err, repository.ErrAttemptAlreadyConfirmed):
        return c.JSON(http.StatusConflict, echo.Map{"error": "already_confirmed", "message": "This booking is already confirmed."})
    case errors.Is(err, repository.ErrLedgerContention):
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "busy, please retry"})
    default:
        logger.Error("Handler:StoreError", "path", c.Path(), "error", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}
