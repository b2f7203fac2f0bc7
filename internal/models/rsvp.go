package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PaymentStatus string

const (
	StatusPending PaymentStatus = "pending"
	StatusPaid    PaymentStatus = "paid"
	StatusFailed  PaymentStatus = "failed"
)

// RSVP is a user's claim on a seat at an event. A pending RSVP holds a
// reserved seat that has not been paid for yet; at most one RSVP exists
// per (user, event) pair.
type RSVP struct {
	bun.BaseModel `bun:"table:rsvps"`

	ID            string        `bun:"id,pk" json:"id"`
	UserID        string        `bun:"user_id,notnull" json:"user_id"`
	EventID       string        `bun:"event_id,notnull" json:"event_id"`
	PaymentStatus PaymentStatus `bun:"payment_status,notnull" json:"payment_status"`
	CreatedAt     time.Time     `bun:"created_at,notnull" json:"created_at"`
}
