package models

import (
	"time"

	"github.com/uptrace/bun"
)

type EventStatus string

const (
	EventPending  EventStatus = "pending"
	EventApproved EventStatus = "approved"
	EventRejected EventStatus = "rejected"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID              string      `bun:"id,pk" json:"id"`
	Title           string      `bun:"title,notnull" json:"title"`
	Description     string      `bun:"description" json:"description"`
	Location        string      `bun:"location" json:"location"`
	Date            string      `bun:"date" json:"date"`
	Time            string      `bun:"time" json:"time"`
	Category        string      `bun:"category" json:"category"`
	Price           float64     `bun:"price" json:"price"`
	Capacity        int         `bun:"capacity,notnull" json:"capacity"`
	RemainingSeats  int         `bun:"remaining_seats,notnull" json:"remaining_seats"`
	CreatedBy       string      `bun:"created_by,notnull" json:"created_by"`
	Status          EventStatus `bun:"status,notnull" json:"status"`
	ApprovedBy      string      `bun:"approved_by,nullzero" json:"approved_by,omitempty"`
	ApprovedAt      time.Time   `bun:"approved_at,nullzero" json:"approved_at,omitempty"`
	RejectionReason string      `bun:"rejection_reason,nullzero" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time   `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt       time.Time   `bun:"updated_at,notnull" json:"updated_at"`
}

type EventRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Capacity    int     `json:"capacity"`
}

// EventFilter narrows approved-event listings.
type EventFilter struct {
	Query    string
	Category string
	Date     string
}
