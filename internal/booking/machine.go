package booking

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/picklepass/internal/logger"
	"github.com/iliyamo/picklepass/internal/model"
)

// Ledger is the persistence the machine needs.  Append must be
// all-or-nothing and return repository.ErrDuplicateBooking on a
// session/email collision.
type Ledger interface {
	Append(ctx context.Context, rec model.BookingRecord) error
}

// Machine performs the confirm step against a ledger.
type Machine struct {
	ledger Ledger
	now    func() time.Time
}

// NewMachine returns a machine over ledger using the wall clock.
func NewMachine(ledger Ledger) *Machine {
	if ledger == nil {
		panic("nil ledger passed to NewMachine")
	}
	return &Machine{ledger: ledger, now: time.Now}
}

// WithClock returns a copy of m that timestamps records with now.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	cp := *m
	cp.now = now
	return &cp
}

// Record builds the ledger record a confirm would write.
func (m *Machine) Record(a *Attempt) model.BookingRecord {
	return model.BookingRecord{
		BookingID:    a.BookingID,
		SessionID:    a.SessionID,
		FacilitySlug: a.FacilitySlug,
		GuestName:    strings.TrimSpace(a.GuestName),
		GuestEmail:   model.NormalizeEmail(a.GuestEmail),
		CreatedAtISO: m.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		AmountCents:  a.AmountCents,
		Currency:     a.Currency,
	}
}

// Confirm appends the attempt's record to the ledger and moves it to paid.
// On any ledger error, including a duplicate, the attempt stays in confirm
// and the error is returned as is.
func (m *Machine) Confirm(ctx context.Context, a *Attempt) (model.BookingRecord, error) {
	if a.Step != StepConfirm {
		return model.BookingRecord{}, ErrInvalidTransition
	}
	rec := m.Record(a)
	if err := m.ledger.Append(ctx, rec); err != nil {
		logger.Info("BookingMachine:Confirm:Rejected", "booking_id", a.BookingID, "error", err)
		return model.BookingRecord{}, err
	}
	a.Step = StepPaid
	logger.Info("BookingMachine:Confirm:Paid", "booking_id", a.BookingID, "session_id", a.SessionID)
	return rec, nil
}
