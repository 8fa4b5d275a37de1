// Package repository holds the persisted collections of the booking flow
// (the booking ledger and facility bookmarks) and the static facility
// directory.  The sentinel errors below let higher layers such as handlers
// distinguish failure scenarios with errors.Is.
package repository

import "errors"

// ErrDuplicateBooking is returned by BookingLedger.Append when the ledger
// already holds a booking for the same session and normalized email.
// Handlers should translate this into an HTTP 409 response.
var ErrDuplicateBooking = errors.New("duplicate booking")

// ErrAttemptAlreadyConfirmed is returned by BookingLedger.Append when a
// record with the same booking ID is already stored, which happens when an
// earlier token of a paid attempt is sent again.  Handlers should translate
// this into an HTTP 409 response.
var ErrAttemptAlreadyConfirmed = errors.New("booking attempt already confirmed")

// ErrFacilityNotFound is returned when a slug does not name a facility.
// Handlers should translate this into an HTTP 404 response.
var ErrFacilityNotFound = errors.New("facility not found")

// ErrLedgerContention is returned when an optimistic write kept losing to
// concurrent writers and the retry budget ran out.  Nothing was written.
var ErrLedgerContention = errors.New("ledger contention, please retry")
