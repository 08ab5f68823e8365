package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/funagig/funagig-api/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Notification{}))
	return db
}

func insertNotification(t *testing.T, db *gorm.DB, userID uint, title string, createdAt time.Time, isRead bool) models.Notification {
	t.Helper()

	notification := models.Notification{
		UserID:    userID,
		Title:     title,
		Message:   "body",
		Type:      models.NotificationTypeInfo,
		IsRead:    isRead,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&notification).Error)
	return notification
}

func TestListSinceReturnsOnlyNewerRowsOldestFirst(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewNotificationRepository(db)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	insertNotification(t, db, 1, "old", base.Add(-time.Hour), false)
	insertNotification(t, db, 1, "newer", base.Add(time.Minute), false)
	insertNotification(t, db, 1, "newest", base.Add(2*time.Minute), false)
	insertNotification(t, db, 2, "other user", base.Add(time.Minute), false)

	fresh, err := repo.ListSince(context.Background(), 1, base)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	require.Equal(t, "newer", fresh[0].Title)
	require.Equal(t, "newest", fresh[1].Title)
}

func TestListSinceExcludesCursorTimestamp(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewNotificationRepository(db)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	insertNotification(t, db, 1, "at cursor", at, false)

	// Strictly-after semantics: the row at the cursor is not re-emitted.
	fresh, err := repo.ListSince(context.Background(), 1, at)
	require.NoError(t, err)
	require.Empty(t, fresh)
}

func TestListByUserPaginatesNewestFirst(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewNotificationRepository(db)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 25; i++ {
		insertNotification(t, db, 1, fmt.Sprintf("n%02d", i), base.Add(time.Duration(i)*time.Minute), false)
	}

	page1, total, err := repo.ListByUser(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 25, total)
	require.Len(t, page1, 10)
	require.Equal(t, "n24", page1[0].Title)

	page3, _, err := repo.ListByUser(context.Background(), 1, 3, 10)
	require.NoError(t, err)
	require.Len(t, page3, 5)
	require.Equal(t, "n00", page3[4].Title)
}

func TestCountUnreadIgnoresReadRows(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewNotificationRepository(db)
	now := time.Now()

	insertNotification(t, db, 1, "unread", now, false)
	insertNotification(t, db, 1, "read", now, true)
	insertNotification(t, db, 2, "other", now, false)

	count, err := repo.CountUnread(context.Background(), 1)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewNotificationRepository(db)
	notification := insertNotification(t, db, 1, "flip me", time.Now(), false)

	updated, err := repo.MarkRead(context.Background(), notification.ID, 1)
	require.NoError(t, err)
	require.True(t, updated.IsRead)

	again, err := repo.MarkRead(context.Background(), notification.ID, 1)
	require.NoError(t, err)
	require.True(t, again.IsRead)

	_, err = repo.MarkRead(context.Background(), notification.ID, 2)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteByUserOnlyTouchesOwnRows(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewNotificationRepository(db)
	now := time.Now()

	insertNotification(t, db, 1, "mine", now, false)
	insertNotification(t, db, 2, "theirs", now, false)

	require.NoError(t, repo.DeleteByUser(context.Background(), 1))

	var remaining []models.Notification
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.EqualValues(t, 2, remaining[0].UserID)
}
