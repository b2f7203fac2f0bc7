package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventify/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- SEAT LEDGER ----------------

// ReserveSeat consumes one seat with a single conditional update so two
// requests can never both take the last seat. Callers inside a
// transaction pass the tx as idb.
func ReserveSeat(ctx context.Context, idb bun.IDB, eventID string) error {
	res, err := idb.NewUpdate().
		Model((*models.Event)(nil)).
		Set("remaining_seats = remaining_seats - 1").
		Where("id = ? AND remaining_seats > 0", eventID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("reserve seat: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve seat: %w", err)
	}
	if affected == 0 {
		return models.ErrEventFull
	}
	return nil
}

// ReleaseSeat returns one seat, clamped at capacity so a double release
// can never push remaining_seats past the room size.
func ReleaseSeat(ctx context.Context, idb bun.IDB, eventID string) error {
	_, err := idb.NewUpdate().
		Model((*models.Event)(nil)).
		Set("remaining_seats = remaining_seats + 1").
		Where("id = ? AND remaining_seats < capacity", eventID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	return nil
}

func (d *DB) ReserveSeat(ctx context.Context, eventID string) error {
	return ReserveSeat(ctx, d.Bun, eventID)
}

func (d *DB) ReleaseSeat(ctx context.Context, eventID string) error {
	return ReleaseSeat(ctx, d.Bun, eventID)
}

// ---------------- EVENTS ----------------

func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewInsert().Model(event).Exec(ctx)
	return err
}

func (d *DB) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", id, models.ErrNotFound)
		}
		return nil, err
	}
	return &event, nil
}

// UpdateEvent applies the edit and shifts remaining seats by the
// capacity delta, clamped at 0, in one transaction. The shift is done
// relationally, never as an absolute write, so a reservation that lands
// between the caller's read and this update stays consumed.
func (d *DB) UpdateEvent(ctx context.Context, event *models.Event, newCapacity int) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		delta := newCapacity - event.Capacity
		event.Capacity = newCapacity
		event.UpdatedAt = time.Now()

		_, err := tx.NewUpdate().
			Model(event).
			Column("title", "description", "location", "date", "time", "category",
				"price", "capacity", "status", "approved_by",
				"approved_at", "rejection_reason", "updated_at").
			Where("id = ?", event.ID).
			Exec(ctx)
		if err != nil {
			return err
		}

		if delta != 0 {
			res, err := tx.NewUpdate().
				Model((*models.Event)(nil)).
				Set("remaining_seats = remaining_seats + ?", delta).
				Where("id = ? AND remaining_seats + ? >= 0", event.ID, delta).
				Exec(ctx)
			if err != nil {
				return err
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				// Shrink exceeds the free seats; floor at zero.
				if _, err := tx.NewUpdate().
					Model((*models.Event)(nil)).
					Set("remaining_seats = 0").
					Where("id = ?", event.ID).
					Exec(ctx); err != nil {
					return err
				}
			}
		}

		return tx.NewSelect().
			Model((*models.Event)(nil)).
			Column("remaining_seats").
			Where("id = ?", event.ID).
			Scan(ctx, &event.RemainingSeats)
	})
}

func (d *DB) DeleteEvent(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// ListApproved returns approved events, optionally filtered by free-text
// query, category and date.
func (d *DB) ListApproved(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	var events []models.Event
	q := d.Bun.NewSelect().
		Model(&events).
		Where("status = ?", models.EventApproved)
	if filter.Query != "" {
		// lower() on both sides keeps the match case-insensitive on
		// Postgres, where plain LIKE is not.
		pattern := "%" + filter.Query + "%"
		q = q.Where("(lower(title) LIKE lower(?) OR lower(description) LIKE lower(?))", pattern, pattern)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Date != "" {
		q = q.Where("date = ?", filter.Date)
	}
	if err := q.Order("date ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) ListPending(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("status = ?", models.EventPending).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) UpdateStatus(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now()
	_, err := d.Bun.NewUpdate().
		Model(event).
		Column("status", "approved_by", "approved_at", "rejection_reason", "updated_at").
		Where("id = ?", event.ID).
		Exec(ctx)
	return err
}

// ApproveAllPending approves every pending event in one statement and
// returns how many were touched.
func (d *DB) ApproveAllPending(ctx context.Context, adminID string) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("status = ?", models.EventApproved).
		Set("approved_by = ?", adminID).
		Set("approved_at = ?", time.Now()).
		Where("status = ?", models.EventPending).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
