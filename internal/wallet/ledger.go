package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventify/internal/models"

	"github.com/uptrace/bun"
)

// Credit is one additive wallet entry. The ledger never decrements; there
// is no withdrawal operation.
type Credit struct {
	UserID string
	Amount float64
}

// Apply adds the amount to the user's balance. Usable inside a
// transaction by passing the tx as idb.
func Apply(ctx context.Context, idb bun.IDB, c Credit) error {
	res, err := idb.NewUpdate().
		Model((*models.User)(nil)).
		Set("wallet_balance = wallet_balance + ?", c.Amount).
		Where("id = ?", c.UserID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("credit wallet of %s: %w", c.UserID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("credit wallet of %s: %w", c.UserID, models.ErrNotFound)
	}
	return nil
}

type Ledger struct {
	Bun *bun.DB
}

func (l *Ledger) Credit(ctx context.Context, userID string, amount float64) error {
	return Apply(ctx, l.Bun, Credit{UserID: userID, Amount: amount})
}

func (l *Ledger) Balance(ctx context.Context, userID string) (float64, error) {
	var balance float64
	err := l.Bun.NewSelect().
		Model((*models.User)(nil)).
		Column("wallet_balance").
		Where("id = ?", userID).
		Scan(ctx, &balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
		}
		return 0, err
	}
	return balance, nil
}
