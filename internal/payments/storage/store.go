package storage

import (
	"context"
	"time"

	"eventify/internal/models"
)

// Store persists payment records keyed by Stripe checkout session id.
type Store interface {
	SavePayment(ctx context.Context, payment *models.Payment) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.Payment, error)
	// MarkPaid transitions pending→paid and reports whether this call did
	// the transition, so duplicate settlements can detect each other.
	MarkPaid(ctx context.Context, sessionID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Payment, error)
	// ListStalePayments returns pending rows older than the cutoff,
	// orphans left by abandoned checkouts. Nothing garbage-collects them;
	// they exist for reconciliation.
	ListStalePayments(ctx context.Context, olderThan time.Time) ([]*models.Payment, error)
	Close() error
}
