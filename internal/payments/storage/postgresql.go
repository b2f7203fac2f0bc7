package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventify/internal/logger"
	"eventify/internal/models"

	_ "github.com/lib/pq"
)

type PostgreSQLStore struct {
	db  *sql.DB
	log *logger.Logger
}

// NewPostgreSQLStore creates the payment store on an existing database
// connection and bootstraps its table.
func NewPostgreSQLStore(db *sql.DB, log *logger.Logger) (*PostgreSQLStore, error) {
	store := &PostgreSQLStore{db: db, log: log}

	if err := store.initTables(); err != nil {
		log.Error("DATABASE", "Failed to initialize payment tables: "+err.Error())
		return nil, fmt.Errorf("failed to initialize payment tables: %w", err)
	}

	log.LogDatabase("SUCCESS", "payments", "Payment storage initialized")
	return store, nil
}

func (s *PostgreSQLStore) initTables() error {
	s.log.LogDatabase("MIGRATE", "payments", "Creating payments table if not exists")

	query := `
    CREATE TABLE IF NOT EXISTS payments (
        id VARCHAR(36) PRIMARY KEY,
        user_id VARCHAR(36) NOT NULL,
        event_id VARCHAR(36) NOT NULL,
        rsvp_id VARCHAR(36) NOT NULL,
        amount DECIMAL(10,2) NOT NULL,
        currency VARCHAR(8) NOT NULL,
        stripe_session_id VARCHAR(255) NOT NULL UNIQUE,
        status VARCHAR(50) NOT NULL,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );
    `
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create payments table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_payments_user_id ON payments(user_id);",
		"CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status);",
	}
	for _, indexQuery := range indexes {
		if _, err := s.db.Exec(indexQuery); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func (s *PostgreSQLStore) SavePayment(ctx context.Context, payment *models.Payment) error {
	s.log.LogDatabase("INSERT", "payments", fmt.Sprintf("Saving payment %s (session %s)", payment.ID, payment.StripeSessionID))

	query := `
    INSERT INTO payments (
        id, user_id, event_id, rsvp_id, amount, currency, stripe_session_id, status, created_at, updated_at
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := s.db.ExecContext(ctx, query,
		payment.ID, payment.UserID, payment.EventID, payment.RSVPID,
		payment.Amount, payment.Currency, payment.StripeSessionID, payment.Status,
		payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to save payment %s: %s", payment.ID, err.Error()))
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

func (s *PostgreSQLStore) GetBySessionID(ctx context.Context, sessionID string) (*models.Payment, error) {
	query := `
    SELECT id, user_id, event_id, rsvp_id, amount, currency, stripe_session_id, status, created_at, updated_at
    FROM payments WHERE stripe_session_id = $1
    `
	payment := &models.Payment{}
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&payment.ID, &payment.UserID, &payment.EventID, &payment.RSVPID,
		&payment.Amount, &payment.Currency, &payment.StripeSessionID, &payment.Status,
		&payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.log.LogDatabase("NOT_FOUND", "payments", fmt.Sprintf("No payment for session %s", sessionID))
			return nil, models.ErrPaymentRecordMissing
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

func (s *PostgreSQLStore) MarkPaid(ctx context.Context, sessionID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE payments SET status = $1, updated_at = $2 WHERE stripe_session_id = $3 AND status = $4`,
		models.StatusPaid, time.Now(), sessionID, models.StatusPending,
	)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to mark payment paid for session %s: %s", sessionID, err.Error()))
		return false, fmt.Errorf("failed to mark payment paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		s.log.LogDatabase("UPDATE", "payments", fmt.Sprintf("Payment for session %s marked paid", sessionID))
	}
	return affected > 0, nil
}

func (s *PostgreSQLStore) ListByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	query := `
    SELECT id, user_id, event_id, rsvp_id, amount, currency, stripe_session_id, status, created_at, updated_at
    FROM payments
    WHERE user_id = $1
    ORDER BY created_at DESC
    `
	return s.queryPayments(ctx, query, userID)
}

func (s *PostgreSQLStore) ListStalePayments(ctx context.Context, olderThan time.Time) ([]*models.Payment, error) {
	query := `
    SELECT id, user_id, event_id, rsvp_id, amount, currency, stripe_session_id, status, created_at, updated_at
    FROM payments
    WHERE status = $1 AND created_at < $2
    ORDER BY created_at ASC
    `
	return s.queryPayments(ctx, query, models.StatusPending, olderThan)
}

func (s *PostgreSQLStore) queryPayments(ctx context.Context, query string, args ...interface{}) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		err := rows.Scan(
			&payment.ID, &payment.UserID, &payment.EventID, &payment.RSVPID,
			&payment.Amount, &payment.Currency, &payment.StripeSessionID, &payment.Status,
			&payment.CreatedAt, &payment.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return payments, nil
}

func (s *PostgreSQLStore) Close() error {
	return s.db.Close()
}
