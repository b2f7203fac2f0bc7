package notify

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"eventify/internal/logger"
	"eventify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupNotifier(t *testing.T) *Notifier {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, bunDB.ResetModel(context.Background(), (*models.Notification)(nil)))

	t.Cleanup(func() { bunDB.Close() })
	return &Notifier{Bun: bunDB}
}

func TestNotifyAndList(t *testing.T) {
	n := setupNotifier(t)
	ctx := context.Background()

	require.NoError(t, n.Notify(ctx, "user-1", "Payment confirmed", "Your ticket is ready", models.NotifPayment, "event-1", ""))
	require.NoError(t, n.Notify(ctx, "user-2", "Other", "Not yours", models.NotifSystem, "", ""))

	list, err := n.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Payment confirmed", list[0].Title)
	assert.False(t, list[0].Read)
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	n := setupNotifier(t)
	ctx := context.Background()

	require.NoError(t, n.Notify(ctx, "user-1", "A", "a", models.NotifSystem, "", ""))
	require.NoError(t, n.Notify(ctx, "user-1", "B", "b", models.NotifSystem, "", ""))

	count, err := n.UnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	list, err := n.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, n.MarkRead(ctx, list[0].ID, "user-1"))

	count, err = n.UnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, n.MarkAllRead(ctx, "user-1"))
	count, err = n.UnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	n := setupNotifier(t)
	ctx := context.Background()

	require.NoError(t, n.Notify(ctx, "user-1", "A", "a", models.NotifSystem, "", ""))
	list, err := n.ListByUser(ctx, "user-1")
	require.NoError(t, err)

	// Someone else cannot mark another user's notification.
	require.NoError(t, n.MarkRead(ctx, list[0].ID, "user-2"))

	count, err := n.UnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDispatcherIsolatesFailures(t *testing.T) {
	log := logger.NewLogger()
	t.Cleanup(log.Close)
	d := NewDispatcher(log)

	var ran []string
	d.Dispatch(context.Background(),
		Effect{Name: "first", Run: func(ctx context.Context) error {
			ran = append(ran, "first")
			return errors.New("smtp down")
		}},
		Effect{Name: "second", Run: func(ctx context.Context) error {
			ran = append(ran, "second")
			return nil
		}},
	)

	// A failing effect never stops the ones after it.
	assert.Equal(t, []string{"first", "second"}, ran)
}
