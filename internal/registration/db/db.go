package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	eventsdb "eventify/internal/events/db"
	"eventify/internal/models"
	"eventify/internal/wallet"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// GetByUserAndEvent returns the RSVP for the pair, or (nil, nil) when the
// user has none.
func (d *DB) GetByUserAndEvent(ctx context.Context, userID, eventID string) (*models.RSVP, error) {
	var rsvp models.RSVP
	err := d.Bun.NewSelect().
		Model(&rsvp).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rsvp, nil
}

func (d *DB) GetByID(ctx context.Context, id string) (*models.RSVP, error) {
	var rsvp models.RSVP
	err := d.Bun.NewSelect().
		Model(&rsvp).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("rsvp %s: %w", id, models.ErrNotFound)
		}
		return nil, err
	}
	return &rsvp, nil
}

func (d *DB) ListByUser(ctx context.Context, userID string) ([]models.RSVP, error) {
	var rsvps []models.RSVP
	err := d.Bun.NewSelect().
		Model(&rsvps).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rsvps, nil
}

// CreateWithSeat reserves a seat and inserts the RSVP as one atomic unit,
// so a failed insert never strands a seat and a full event never gains an
// RSVP. Returns models.ErrEventFull when no seat is left.
func (d *DB) CreateWithSeat(ctx context.Context, rsvp *models.RSVP) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := eventsdb.ReserveSeat(ctx, tx, rsvp.EventID); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(rsvp).Exec(ctx); err != nil {
			return fmt.Errorf("insert rsvp: %w", err)
		}
		return nil
	})
}

// DeletePendingWithRelease removes the user's pending RSVP for the event
// and returns its seat in the same transaction. Reports whether a row was
// removed; a paid or absent RSVP is left untouched, which also makes a
// cancel that races a settlement a safe no-op.
func (d *DB) DeletePendingWithRelease(ctx context.Context, userID, eventID string) (bool, error) {
	var removed bool
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*models.RSVP)(nil)).
			Where("user_id = ? AND event_id = ? AND payment_status = ?",
				userID, eventID, models.StatusPending).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete pending rsvp: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		removed = true
		return eventsdb.ReleaseSeat(ctx, tx, eventID)
	})
	return removed, err
}

// SettlePaid transitions the RSVP pending→paid and applies the wallet
// credits in one transaction. The conditional update is the idempotency
// anchor for settlement: when the RSVP is already paid (or gone) nothing
// is credited and false is returned.
func (d *DB) SettlePaid(ctx context.Context, rsvpID string, credits []wallet.Credit) (bool, error) {
	var transitioned bool
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.RSVP)(nil)).
			Set("payment_status = ?", models.StatusPaid).
			Where("id = ? AND payment_status = ?", rsvpID, models.StatusPending).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("mark rsvp paid: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		transitioned = true
		for _, c := range credits {
			if err := wallet.Apply(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
	return transitioned, err
}
