// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedQueue is the durable queue booking confirmations go to.
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published when a guest booking reaches the paid
// step.  It carries enough to log or notify without reading the ledger.  The
// guest is identified by a fingerprint of the normalized email, never the
// address itself.
type BookingConfirmedEvent struct {
    BookingID        string `json:"booking_id"`
    SessionID        string `json:"session_id"`
    FacilitySlug     string `json:"facility_slug"`
    SessionTitle     string `json:"session_title,omitempty"`
    StartsAt         string `json:"starts_at,omitempty"`
    GuestFingerprint string `json:"guest_fingerprint"`
    AmountCents      int64  `json:"amount_cents"`
    Currency         string `json:"currency"`
    ConfirmedAt      string `json:"confirmed_at"`
}
