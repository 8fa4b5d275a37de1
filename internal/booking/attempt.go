// Package booking turns a guest's intent to book a session into a ledger
// record.  An Attempt walks info -> confirm -> paid; only the confirm ->
// paid step touches persisted state.
package booking

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/picklepass/internal/model"
)

// Step is the state of an Attempt.
type Step string

const (
	StepInfo    Step = "info"
	StepConfirm Step = "confirm"
	StepPaid    Step = "paid"
)

// PaymentNote is shown with every review while payment stays offline.
const PaymentNote = "Payment handled by the facility during beta."

// ErrInvalidTransition is returned when an action is not allowed in the
// attempt's current step.
var ErrInvalidTransition = errors.New("booking: invalid transition")

// ValidationError reports a missing form field.  The attempt stays in the
// info step.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Attempt is one guest's pass through the booking form.  The booking ID is
// generated once, when the attempt starts, so retries after a failed
// confirm reuse it.
type Attempt struct {
	BookingID    string `json:"bookingId"`
	SessionID    string `json:"sessionId"`
	FacilitySlug string `json:"facilitySlug,omitempty"`
	AmountCents  int64  `json:"amountCents"`
	Currency     string `json:"currency"`
	Step         Step   `json:"step"`
	GuestName    string `json:"guestName"`
	GuestEmail   string `json:"guestEmail"`
}

// NewAttempt starts an attempt in the info step.
func NewAttempt(sessionID, facilitySlug string, amountCents int64, currency string) *Attempt {
	if currency == "" {
		currency = "USD"
	}
	return &Attempt{
		BookingID:    uuid.NewString(),
		SessionID:    sessionID,
		FacilitySlug: facilitySlug,
		AmountCents:  amountCents,
		Currency:     currency,
		Step:         StepInfo,
	}
}

// Submit records the guest's name and email and moves to confirm.  Both are
// required after trimming; the name is checked first.  Values are kept as
// entered so a later Edit shows them unchanged.
func (a *Attempt) Submit(name, email string) error {
	if a.Step != StepInfo {
		return ErrInvalidTransition
	}
	a.GuestName, a.GuestEmail = name, email
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "guest_name", Message: "Please enter your name."}
	}
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Field: "guest_email", Message: "Please enter your email."}
	}
	a.Step = StepConfirm
	return nil
}

// Edit goes back from confirm to info, keeping the entered values.
func (a *Attempt) Edit() error {
	if a.Step != StepConfirm {
		return ErrInvalidTransition
	}
	a.Step = StepInfo
	return nil
}

// Review is the would-be record shown before confirming.
type Review struct {
	GuestName   string `json:"guestName"`
	GuestEmail  string `json:"guestEmail"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
	Price       string `json:"price"`
	Note        string `json:"note"`
}

// Review returns the confirm-step summary.
func (a *Attempt) Review() (Review, error) {
	if a.Step != StepConfirm {
		return Review{}, ErrInvalidTransition
	}
	return Review{
		GuestName:   strings.TrimSpace(a.GuestName),
		GuestEmail:  model.NormalizeEmail(a.GuestEmail),
		AmountCents: a.AmountCents,
		Currency:    a.Currency,
		Price:       Money(a.AmountCents, a.Currency),
		Note:        PaymentNote,
	}, nil
}
