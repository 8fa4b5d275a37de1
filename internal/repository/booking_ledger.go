package repository

import (
    "context"
    "errors"

    "github.com/iliyamo/picklepass/internal/kvstore"
    "github.com/iliyamo/picklepass/internal/logger"
    "github.com/iliyamo/picklepass/internal/model"
)

// BookingsKey is the store key of the booking list inside a namespace.
const BookingsKey = "pp_guest_bookings"

// BookingLedger is the append-only list of confirmed bookings, stored as a
// JSON array, most recent first.  It enforces that no two records share a
// session ID and normalized guest email.  Uniqueness holds within one
// namespace only; two profiles may book the same session with the same
// email.
type BookingLedger struct {
    store   kvstore.Store
    locks   *keyedMutex
    lockKey string
}

// NewBookingLedger returns a ledger over store.  It panics if store is nil.
func NewBookingLedger(store kvstore.Store) *BookingLedger {
    if store == nil {
        panic("nil store passed to NewBookingLedger")
    }
    return &BookingLedger{store: store, locks: &keyedMutex{}}
}

// ForProfile returns the ledger of one browser profile.  Ledgers derived
// from the same parent share their write locks.
func (l *BookingLedger) ForProfile(profileID string) *BookingLedger {
    ns := kvstore.ProfileNamespace(profileID)
    return &BookingLedger{
        store:   kvstore.Namespace(l.store, ns),
        locks:   l.locks,
        lockKey: ns,
    }
}

// List returns every booking, most recent first.  It never fails: a store
// error or malformed data is logged and reported as an empty list.
func (l *BookingLedger) List(ctx context.Context) []model.BookingRecord {
    items, _, err := readList[model.BookingRecord](ctx, l.store, BookingsKey)
    if err != nil {
        logger.Warn("BookingLedger:List:StoreReadError", "error", err)
        return []model.BookingRecord{}
    }
    return items
}

// Append normalizes rec's email, rejects it with ErrAttemptAlreadyConfirmed
// if rec's booking ID is already stored or with ErrDuplicateBooking if the
// ledger already has the same session and email, and otherwise persists
// [rec] followed by the existing records in a single write.  On any error
// the stored list is left untouched.
func (l *BookingLedger) Append(ctx context.Context, rec model.BookingRecord) error {
    rec.GuestEmail = model.NormalizeEmail(rec.GuestEmail)

    unlock := l.locks.lock(l.lockKey)
    defer unlock()

    _, err := mutateList(ctx, l.store, BookingsKey, func(cur []model.BookingRecord) ([]model.BookingRecord, error) {
        for _, b := range cur {
            if b.BookingID == rec.BookingID {
                return nil, ErrAttemptAlreadyConfirmed
            }
            if b.SameGuestAndSession(rec) {
                return nil, ErrDuplicateBooking
            }
        }
        next := make([]model.BookingRecord, 0, len(cur)+1)
        next = append(next, rec)
        return append(next, cur...), nil
    })
    switch {
    case err == nil:
        logger.Info("BookingLedger:Append:Success", "booking_id", rec.BookingID, "session_id", rec.SessionID)
    case errors.Is(err, ErrDuplicateBooking):
        logger.Info("BookingLedger:Append:Duplicate", "session_id", rec.SessionID)
    case errors.Is(err, ErrAttemptAlreadyConfirmed):
        logger.Info("BookingLedger:Append:AlreadyConfirmed", "booking_id", rec.BookingID)
    default:
        logger.Error("BookingLedger:Append:Error", "session_id", rec.SessionID, "error", err)
    }
    return err
}

// FindBySession returns the bookings made for sessionID, most recent first.
func (l *BookingLedger) FindBySession(ctx context.Context, sessionID string) []model.BookingRecord {
    out := []model.BookingRecord{}
    for _, b := range l.List(ctx) {
        if b.SessionID == sessionID {
            out = append(out, b)
        }
    }
    return out
}

// Count returns the number of stored bookings.
func (l *BookingLedger) Count(ctx context.Context) int { return len(l.List(ctx)) }
