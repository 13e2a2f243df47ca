package cleanup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rental-manager/internal/clock"
	"rental-manager/internal/models"
	"rental-manager/internal/testutil"
)

var now = time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

func addNotification(t *testing.T, db *gorm.DB, userID uint, age time.Duration, read bool) {
	t.Helper()
	created := now.Add(-age)
	require.NoError(t, db.Create(&models.Notification{
		UserID:     userID,
		Type:       models.NotificationSystemAlert,
		Title:      "Pagamento recebido",
		Message:    "ok",
		Date:       created,
		Priority:   models.PriorityLow,
		ReadStatus: read,
		CreatedAt:  created,
	}).Error)
}

func TestDeleteOldNotifications(t *testing.T) {
	db := testutil.NewDB(t)
	day := 24 * time.Hour

	addNotification(t, db, 1, 120*day, true)  // expired
	addNotification(t, db, 1, 91*day, true)   // expired
	addNotification(t, db, 1, 120*day, false) // unread, kept
	addNotification(t, db, 1, 10*day, true)   // recent, kept
	addNotification(t, db, 2, 200*day, true)  // other user

	svc := NewService(db, clock.Fixed{T: now})
	user := uint(1)

	result, err := svc.DeleteOldNotifications(&user, DefaultCleanupConfig())
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.TargetCount)
	assert.Equal(t, int64(2), result.DeletedCount)

	var remaining int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&remaining).Error)
	assert.Equal(t, int64(3), remaining)

	logs, err := svc.GetRecentLogs(nil, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, int64(2), logs[0].DeletedCount)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, user, *logs[0].UserID)

	other := uint(2)
	logs, err = svc.GetRecentLogs(&other, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)

	stats, err := svc.GetDeleteStats(nil, 90)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["total_runs"])
	assert.Equal(t, int64(2), stats["total_deleted"])
	// user 2's notification is still waiting
	assert.Equal(t, int64(1), stats["expired_ready_for_deletion"])
}

func TestDeleteOldNotificationsDryRun(t *testing.T) {
	db := testutil.NewDB(t)
	addNotification(t, db, 1, 100*24*time.Hour, true)

	svc := NewService(db, clock.Fixed{T: now})
	cfg := DefaultCleanupConfig()
	cfg.DryRun = true

	result, err := svc.DeleteOldNotifications(nil, cfg)
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, int64(1), result.DeletedCount)

	var remaining int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}

func TestDeleteOldNotificationsSafetyLimit(t *testing.T) {
	db := testutil.NewDB(t)
	for i := 0; i < 3; i++ {
		addNotification(t, db, 1, 100*24*time.Hour, true)
	}

	svc := NewService(db, clock.Fixed{T: now})
	cfg := DefaultCleanupConfig()
	cfg.MaxDeletionCount = 2

	_, err := svc.DeleteOldNotifications(nil, cfg)
	assert.Error(t, err)

	n, err := svc.CountExpired(nil, 90)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
