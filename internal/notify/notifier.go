package notify

import (
	"context"
	"time"

	"eventify/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Notifier persists in-app notifications.
type Notifier struct {
	Bun *bun.DB
}

func (n *Notifier) Notify(ctx context.Context, userID, title, message string, notifType models.NotificationType, relatedEventID, relatedUserID string) error {
	notification := &models.Notification{
		ID:             uuid.NewString(),
		UserID:         userID,
		Title:          title,
		Message:        message,
		Type:           notifType,
		RelatedEventID: relatedEventID,
		RelatedUserID:  relatedUserID,
		CreatedAt:      time.Now(),
	}
	_, err := n.Bun.NewInsert().Model(notification).Exec(ctx)
	return err
}

func (n *Notifier) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := n.Bun.NewSelect().
		Model(&notifications).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (n *Notifier) UnreadCount(ctx context.Context, userID string) (int, error) {
	return n.Bun.NewSelect().
		Model((*models.Notification)(nil)).
		Where("user_id = ? AND read = ?", userID, false).
		Count(ctx)
}

func (n *Notifier) MarkRead(ctx context.Context, id, userID string) error {
	_, err := n.Bun.NewUpdate().
		Model((*models.Notification)(nil)).
		Set("read = ?", true).
		Where("id = ? AND user_id = ?", id, userID).
		Exec(ctx)
	return err
}

func (n *Notifier) MarkAllRead(ctx context.Context, userID string) error {
	_, err := n.Bun.NewUpdate().
		Model((*models.Notification)(nil)).
		Set("read = ?", true).
		Where("user_id = ? AND read = ?", userID, false).
		Exec(ctx)
	return err
}

func (n *Notifier) Delete(ctx context.Context, id, userID string) error {
	_, err := n.Bun.NewDelete().
		Model((*models.Notification)(nil)).
		Where("id = ? AND user_id = ?", id, userID).
		Exec(ctx)
	return err
}
