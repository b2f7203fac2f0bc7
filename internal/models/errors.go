package models

import "errors"

// Domain errors. Handlers match these with errors.Is to pick status
// codes; services wrap them with context via fmt.Errorf and %w.
var (
	// ErrNotFound: event, RSVP or user absent.
	ErrNotFound = errors.New("not found")

	// ErrEventFull: no remaining seats at reservation time.
	ErrEventFull = errors.New("event is full")

	// ErrEventNotApproved: registration attempted against an event that
	// has not passed admin review.
	ErrEventNotApproved = errors.New("event is not approved")

	// ErrAlreadyRegistered: a paid RSVP already exists for this user and
	// event.
	ErrAlreadyRegistered = errors.New("already registered for this event")

	// ErrRegistrationPending: a pending RSVP already exists; no new seat
	// is consumed.
	ErrRegistrationPending = errors.New("registration is pending payment")

	// ErrPaymentRequired: the event is paid, registration must go through
	// checkout.
	ErrPaymentRequired = errors.New("registration requires payment")

	// ErrCheckoutUnavailable: checkout preconditions failed (unapproved,
	// full, or already paid).
	ErrCheckoutUnavailable = errors.New("checkout unavailable")

	// ErrPaymentNotCompleted: the processor reports the session unpaid.
	ErrPaymentNotCompleted = errors.New("payment not completed")

	// ErrPaymentRecordMissing: no local payment row for the session id.
	ErrPaymentRecordMissing = errors.New("payment record not found")

	// ErrValidation: bad input, no state change.
	ErrValidation = errors.New("validation failed")
)
