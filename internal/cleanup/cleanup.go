package cleanup

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rental-manager/internal/clock"
	"rental-manager/internal/models"
)

// Service handles physical deletion of old read notifications
type Service struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewService creates a new cleanup service
func NewService(db *gorm.DB, c clock.Clock) *Service {
	return &Service{db: db, clock: c}
}

// CleanupConfig holds configuration for cleanup operations
type CleanupConfig struct {
	RetentionDays    int  // Days to keep read notifications (default: 90)
	MaxDeletionCount int  // Maximum number of rows to delete in one run (safety limit)
	DryRun           bool // If true, only count what would be deleted
	Reason           string
}

// DefaultCleanupConfig returns default configuration
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		RetentionDays:    90,
		MaxDeletionCount: 10000,
		DryRun:           false,
		Reason:           models.CleanupReasonRetention,
	}
}

// CleanupResult holds the result of a cleanup operation
type CleanupResult struct {
	TargetCount  int64     `json:"target_count"`
	DeletedCount int64     `json:"deleted_count"`
	DryRun       bool      `json:"dry_run"`
	Cutoff       time.Time `json:"cutoff"`
	ExecutedAt   time.Time `json:"executed_at"`
}

func (s *Service) expired(userID *uint, cutoff time.Time) *gorm.DB {
	q := s.db.Model(&models.Notification{}).
		Where("read_status = ? AND created_at < ?", true, cutoff)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	return q
}

// CountExpired returns how many read notifications are older than retentionDays
func (s *Service) CountExpired(userID *uint, retentionDays int) (int64, error) {
	var n int64
	cutoff := s.cutoff(retentionDays)
	if err := s.expired(userID, cutoff).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count expired notifications: %w", err)
	}
	return n, nil
}

func (s *Service) cutoff(retentionDays int) time.Time {
	return s.clock.Now().UTC().AddDate(0, 0, -retentionDays)
}

// DeleteOldNotifications removes read notifications past the retention window.
// A nil userID cleans every user. Each run writes a cleanup log row.
func (s *Service) DeleteOldNotifications(userID *uint, config CleanupConfig) (*CleanupResult, error) {
	now := s.clock.Now().UTC()
	cutoff := s.cutoff(config.RetentionDays)
	result := &CleanupResult{
		DryRun:     config.DryRun,
		Cutoff:     cutoff,
		ExecutedAt: now,
	}
	if config.Reason == "" {
		config.Reason = models.CleanupReasonRetention
	}

	if err := s.expired(userID, cutoff).Count(&result.TargetCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count expired notifications: %w", err)
	}

	if result.TargetCount == 0 {
		log.Debug("Cleanup: no expired notifications")
		return result, nil
	}

	// Safety check: abort if too many rows would be deleted
	if config.MaxDeletionCount > 0 && result.TargetCount > int64(config.MaxDeletionCount) {
		return nil, fmt.Errorf("safety check failed: %d notifications exceed max deletion limit of %d",
			result.TargetCount, config.MaxDeletionCount)
	}

	if config.DryRun {
		log.Infof("Cleanup: [DRY-RUN] would delete %d notifications read before %s",
			result.TargetCount, cutoff.Format("2006-01-02"))
		result.DeletedCount = result.TargetCount
		return result, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		q := tx.Where("read_status = ? AND created_at < ?", true, cutoff)
		if userID != nil {
			q = q.Where("user_id = ?", *userID)
		}
		res := q.Delete(&models.Notification{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete notifications: %w", res.Error)
		}
		result.DeletedCount = res.RowsAffected

		entry := models.NotificationCleanupLog{
			UserID:        userID,
			DeletedCount:  res.RowsAffected,
			RetentionDays: config.RetentionDays,
			Cutoff:        cutoff,
			DryRun:        false,
			Reason:        config.Reason,
			RanAt:         now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to write cleanup log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Infof("Cleanup: deleted %d/%d notifications (retention: %d days)",
		result.DeletedCount, result.TargetCount, config.RetentionDays)
	return result, nil
}

// GetDeleteStats returns statistics about past cleanups, only the user's own
// when userID is set
func (s *Service) GetDeleteStats(userID *uint, retentionDays int) (map[string]interface{}, error) {
	stats := make(map[string]interface{})
	logs := func() *gorm.DB {
		q := s.db.Model(&models.NotificationCleanupLog{})
		if userID != nil {
			q = q.Where("user_id = ?", *userID)
		}
		return q
	}

	var runs int64
	if err := logs().Count(&runs).Error; err != nil {
		return nil, err
	}
	stats["total_runs"] = runs

	var totalDeleted int64
	if err := logs().
		Select("COALESCE(SUM(deleted_count), 0)").
		Row().Scan(&totalDeleted); err != nil {
		return nil, err
	}
	stats["total_deleted"] = totalDeleted

	var reasonCounts []struct {
		Reason string
		Count  int64
	}
	if err := logs().
		Select("reason, count(*) as count").
		Group("reason").
		Scan(&reasonCounts).Error; err != nil {
		return nil, err
	}
	reasonMap := make(map[string]int64)
	for _, rc := range reasonCounts {
		reasonMap[rc.Reason] = rc.Count
	}
	stats["by_reason"] = reasonMap

	ready, err := s.CountExpired(userID, retentionDays)
	if err != nil {
		return nil, err
	}
	stats["expired_ready_for_deletion"] = ready

	return stats, nil
}

// GetRecentLogs returns recent cleanup log entries, only the user's own runs
// when userID is set
func (s *Service) GetRecentLogs(userID *uint, limit int) ([]models.NotificationCleanupLog, error) {
	var logs []models.NotificationCleanupLog
	q := s.db.Order("ran_at DESC, id DESC").Limit(limit)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	err := q.Find(&logs).Error
	return logs, err
}
