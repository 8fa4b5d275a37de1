package model

import "strings"

// BookingRecord is a persisted confirmation linking a guest to a session.
// Records are owned by the booking ledger and are never updated once
// written.  The JSON field names are the persisted wire format.
//
// Fields:
//
//	BookingID    – random UUID generated once per booking attempt.
//	SessionID    – deterministic session identifier.
//	FacilitySlug – facility the booking should return to (optional).
//	GuestName    – trimmed guest name.
//	GuestEmail   – normalized (trimmed, lower-cased) guest email.
//	CreatedAtISO – RFC 3339 creation timestamp in UTC.
//	AmountCents  – price charged in minor units.
//	Currency     – ISO 4217 code, e.g. USD.
type BookingRecord struct {
	BookingID    string `json:"bookingId"`
	SessionID    string `json:"sessionId"`
	FacilitySlug string `json:"facilitySlug,omitempty"`
	GuestName    string `json:"guestName"`
	GuestEmail   string `json:"guestEmail"`
	CreatedAtISO string `json:"createdAtISO"`
	AmountCents  int64  `json:"amountCents"`
	Currency     string `json:"currency"`
}

// NormalizeEmail trims surrounding whitespace and lower-cases an email so
// that "ANN@EXAMPLE.COM " and "ann@example.com" compare equal.
func NormalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// SameGuestAndSession reports whether r and other collide under the ledger
// uniqueness rule (same session, same normalized email).
func (r BookingRecord) SameGuestAndSession(other BookingRecord) bool {
	return r.SessionID == other.SessionID &&
		NormalizeEmail(r.GuestEmail) == NormalizeEmail(other.GuestEmail)
}
