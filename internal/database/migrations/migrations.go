package migrations

import (
	"context"
	"fmt"

	"eventify/internal/models"

	"github.com/uptrace/bun"
)

// Run creates the schema for all bun-managed models. Idempotent, safe to
// call on every startup. The payments table is owned by the payment
// store and bootstrapped there.
func Run(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.User)(nil),
		(*models.Event)(nil),
		(*models.RSVP)(nil),
		(*models.Notification)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}

	// One RSVP per user per event, enforced at the schema level.
	if _, err := db.NewCreateIndex().
		Model((*models.RSVP)(nil)).
		Index("idx_rsvps_user_event").
		Unique().
		Column("user_id", "event_id").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create rsvp unique index: %w", err)
	}

	if _, err := db.NewCreateIndex().
		Model((*models.Event)(nil)).
		Index("idx_events_status").
		Column("status").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create event status index: %w", err)
	}

	return nil
}
