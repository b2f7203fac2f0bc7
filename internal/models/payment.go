package models

import (
	"time"
)

// Payment records one checkout attempt, keyed 1:1 to a Stripe checkout
// session and linked to the RSVP it pays for. Rows left pending after an
// abandoned checkout are kept for reconciliation.
type Payment struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	EventID         string        `json:"event_id"`
	RSVPID          string        `json:"rsvp_id"`
	Amount          float64       `json:"amount"`
	Currency        string        `json:"currency"`
	StripeSessionID string        `json:"stripe_session_id"`
	Status          PaymentStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// CheckoutSession is the processor-side view of a payment session.
type CheckoutSession struct {
	SessionID        string
	URL              string
	PaymentCompleted bool
}

// CheckoutSessionRequest carries everything the payment processor needs
// to open a session. Metadata identifiers travel as opaque correlation
// values and come back on the session at settlement time.
type CheckoutSessionRequest struct {
	Amount        float64
	Currency      string
	ProductName   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	EventID       string
	UserID        string
	RSVPID        string
}
