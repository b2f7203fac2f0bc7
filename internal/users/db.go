package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventify/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateUser(ctx context.Context, user *models.User) error {
	_, err := d.Bun.NewInsert().Model(user).Exec(ctx)
	return err
}

func (d *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

func (d *DB) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// PlatformAccountID resolves the admin account that receives the
// platform's revenue share.
func (d *DB) PlatformAccountID(ctx context.Context) (string, error) {
	var id string
	err := d.Bun.NewSelect().
		Model((*models.User)(nil)).
		Column("id").
		Where("role = ?", models.RoleAdmin).
		Limit(1).
		Scan(ctx, &id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("platform account: %w", models.ErrNotFound)
		}
		return "", err
	}
	return id, nil
}
