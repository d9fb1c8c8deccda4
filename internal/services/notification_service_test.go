package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mhartley/notifeed/internal/database/testutil"
	"github.com/mhartley/notifeed/internal/models"
	apperrors "github.com/mhartley/notifeed/pkg/errors"
)

func newTestService(t *testing.T) (*NotificationService, *gorm.DB) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	svc, err := NewNotificationService(db)
	require.NoError(t, err)
	return svc, db
}

func seedNotification(t *testing.T, svc *NotificationService, db *gorm.DB, userID, title string, createdAt time.Time, read bool) *NotificationDTO {
	t.Helper()

	dto, err := svc.Create(context.Background(), CreateNotificationInput{
		UserID: userID,
		Type:   "invoice.created",
		Title:  title,
		IsRead: read,
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Notification{}).
		Where("id = ?", dto.ID).
		Update("created_at", createdAt).Error)

	return dto
}

func TestNotificationServiceCreate(t *testing.T) {
	svc, _ := newTestService(t)

	dto, err := svc.Create(context.Background(), CreateNotificationInput{
		UserID:   "user-1",
		Type:     "invoice.overdue",
		Title:    "Invoice #12 is overdue",
		Message:  "Payment was due yesterday",
		Link:     "/invoices/12",
		Metadata: map[string]any{"invoice_id": "12"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, dto.ID)
	require.Equal(t, "user-1", dto.UserID)
	require.Equal(t, "info", dto.Severity)
	require.Equal(t, "/invoices/12", dto.Link)
	require.Equal(t, "12", dto.Metadata["invoice_id"])
	require.False(t, dto.IsRead)
	require.Nil(t, dto.ReadAt)
}

func TestNotificationServiceCreateValidatesInput(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateNotificationInput{Type: "invoice.created"})
	require.ErrorContains(t, err, "user id is required")

	_, err = svc.Create(context.Background(), CreateNotificationInput{UserID: "user-1"})
	require.ErrorContains(t, err, "type is required")
}

func TestNotificationServiceFeedOrderingAndCount(t *testing.T) {
	svc, db := newTestService(t)
	base := time.Date(2026, time.February, 1, 8, 0, 0, 0, time.UTC)

	seedNotification(t, svc, db, "user-1", "oldest", base, true)
	seedNotification(t, svc, db, "user-1", "middle", base.Add(time.Hour), false)
	seedNotification(t, svc, db, "user-1", "newest", base.Add(2*time.Hour), false)
	seedNotification(t, svc, db, "user-2", "other user", base.Add(3*time.Hour), false)

	feed, err := svc.Feed(context.Background(), "user-1", 10)
	require.NoError(t, err)

	require.Equal(t, 2, feed.UnreadCount)
	require.Len(t, feed.Notifications, 3)
	require.Equal(t, "newest", feed.Notifications[0].Title)
	require.Equal(t, "middle", feed.Notifications[1].Title)
	require.Equal(t, "oldest", feed.Notifications[2].Title)
}

func TestNotificationServiceFeedAppliesLimit(t *testing.T) {
	svc, db := newTestService(t)
	base := time.Date(2026, time.February, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 6; i++ {
		seedNotification(t, svc, db, "user-1", "n", base.Add(time.Duration(i)*time.Minute), false)
	}

	feed, err := svc.Feed(context.Background(), "user-1", 4)
	require.NoError(t, err)
	require.Equal(t, 6, feed.UnreadCount, "unread count covers the whole mailbox, not just the page")
	require.Len(t, feed.Notifications, 4)
}

func TestNotificationServiceFeedRequiresUser(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Feed(context.Background(), "  ", 10)
	require.ErrorContains(t, err, "user id is required")
}

func TestNotificationServiceMarkReadRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), CreateNotificationInput{
		UserID: "user-1",
		Type:   "invoice.created",
		Title:  "hello",
	})
	require.NoError(t, err)

	read, err := svc.MarkRead(context.Background(), "user-1", created.ID)
	require.NoError(t, err)
	require.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	unread, err := svc.MarkUnread(context.Background(), "user-1", created.ID)
	require.NoError(t, err)
	require.False(t, unread.IsRead)
	require.Nil(t, unread.ReadAt)
}

func TestNotificationServiceMarkReadEnforcesOwnership(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), CreateNotificationInput{
		UserID: "user-1",
		Type:   "invoice.created",
	})
	require.NoError(t, err)

	_, err = svc.MarkRead(context.Background(), "user-2", created.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNotificationServiceMarkAllRead(t *testing.T) {
	svc, db := newTestService(t)
	base := time.Date(2026, time.February, 1, 8, 0, 0, 0, time.UTC)

	seedNotification(t, svc, db, "user-1", "a", base, false)
	seedNotification(t, svc, db, "user-1", "b", base.Add(time.Minute), false)
	seedNotification(t, svc, db, "user-2", "c", base, false)

	require.NoError(t, svc.MarkAllRead(context.Background(), "user-1"))

	feed, err := svc.Feed(context.Background(), "user-1", 10)
	require.NoError(t, err)
	require.Equal(t, 0, feed.UnreadCount)
	for _, n := range feed.Notifications {
		require.True(t, n.IsRead)
		require.NotNil(t, n.ReadAt)
	}

	other, err := svc.Feed(context.Background(), "user-2", 10)
	require.NoError(t, err)
	require.Equal(t, 1, other.UnreadCount, "other mailboxes stay untouched")
}

func TestNotificationServiceDelete(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), CreateNotificationInput{
		UserID: "user-1",
		Type:   "invoice.created",
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), "user-2", created.ID), apperrors.ErrNotFound)
	require.NoError(t, svc.Delete(context.Background(), "user-1", created.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), "user-1", created.ID), apperrors.ErrNotFound)
}

func TestNotificationServicePurgeRead(t *testing.T) {
	svc, db := newTestService(t)
	cutoff := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	seedNotification(t, svc, db, "user-1", "old read", cutoff.AddDate(0, 0, -10), true)
	seedNotification(t, svc, db, "user-1", "old unread", cutoff.AddDate(0, 0, -10), false)
	seedNotification(t, svc, db, "user-1", "recent read", cutoff.AddDate(0, 0, 1), true)

	purged, err := svc.PurgeRead(context.Background(), cutoff)
	require.NoError(t, err)
	require.Equal(t, int64(1), purged)

	feed, err := svc.Feed(context.Background(), "user-1", 10)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 2)
	for _, n := range feed.Notifications {
		require.NotEqual(t, "old read", n.Title)
	}
}
