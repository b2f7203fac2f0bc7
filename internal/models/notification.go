package models

import (
	"time"

	"github.com/uptrace/bun"
)

type NotificationType string

const (
	NotifRegistration NotificationType = "registration"
	NotifPayment      NotificationType = "payment"
	NotifEventUpdate  NotificationType = "event_update"
	NotifSystem       NotificationType = "system"
)

type Notification struct {
	bun.BaseModel `bun:"table:notifications"`

	ID             string           `bun:"id,pk" json:"id"`
	UserID         string           `bun:"user_id,notnull" json:"user_id"`
	Title          string           `bun:"title,notnull" json:"title"`
	Message        string           `bun:"message,notnull" json:"message"`
	Type           NotificationType `bun:"type,notnull" json:"type"`
	Read           bool             `bun:"read,notnull,default:false" json:"read"`
	RelatedEventID string           `bun:"related_event_id,nullzero" json:"related_event_id,omitempty"`
	RelatedUserID  string           `bun:"related_user_id,nullzero" json:"related_user_id,omitempty"`
	CreatedAt      time.Time        `bun:"created_at,notnull" json:"created_at"`
}
