package notificationrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tsdmkp/idle-garage-game-backend/internal/testutil"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
)

func seedNotifications(t *testing.T, repository NotificationRepository) {
	t.Helper()

	for i, n := range []models.Notification{
		{UserID: "p1", Title: "first"},
		{UserID: "p1", Title: "second"},
		{UserID: "p1", Title: "third"},
		{UserID: "p2", Title: "other"},
	} {
		n.Type = models.NotificationPvPBattle
		n.CreatedAt = testutil.FixedNow.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repository.CreateNotification(context.Background(), &n))
	}
}

func TestNewNotificationRepository(t *testing.T) {
	assert.NotNil(t, NewNotificationRepository(&gorm.DB{}))
}

func TestGetNotifications(t *testing.T) {
	db := testutil.NewSQLiteConnection(t)
	repository := NewNotificationRepository(db)
	seedNotifications(t, repository)

	notifications, err := repository.GetNotifications(context.Background(), "p1", false, 2)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.Equal(t, "third", notifications[0].Title)
	assert.Equal(t, "second", notifications[1].Title)

	none, err := repository.GetNotifications(context.Background(), "p9", false, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMarkRead(t *testing.T) {
	db := testutil.NewSQLiteConnection(t)
	repository := NewNotificationRepository(db)
	seedNotifications(t, repository)
	ctx := context.Background()

	unread, err := repository.CountUnread(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	all, err := repository.GetNotifications(ctx, "p1", false, 10)
	require.NoError(t, err)

	// Ids of another player are ignored.
	other, err := repository.GetNotifications(ctx, "p2", false, 10)
	require.NoError(t, err)
	marked, err := repository.MarkRead(ctx, "p1", []uint{all[0].ID, other[0].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	unreadList, err := repository.GetNotifications(ctx, "p1", true, 10)
	require.NoError(t, err)
	assert.Len(t, unreadList, 2)

	marked, err = repository.MarkRead(ctx, "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	unread, err = repository.CountUnread(ctx, "p1")
	require.NoError(t, err)
	assert.Zero(t, unread)

	unread, err = repository.CountUnread(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}
