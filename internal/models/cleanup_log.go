package models

import "time"

// NotificationCleanupLog represents one retention run over read notifications
type NotificationCleanupLog struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        *uint     `gorm:"index" json:"user_id,omitempty"`
	DeletedCount  int64     `gorm:"not null" json:"deleted_count"`
	RetentionDays int       `gorm:"not null" json:"retention_days"`
	Cutoff        time.Time `gorm:"not null" json:"cutoff"`
	DryRun        bool      `gorm:"not null;default:false" json:"dry_run"`
	Reason        string    `gorm:"type:varchar(50);not null" json:"reason"`
	RanAt         time.Time `gorm:"not null;index" json:"ran_at"`
}

// TableName specifies the table name
func (NotificationCleanupLog) TableName() string {
	return "notification_cleanup_logs"
}

// Cleanup reasons
const (
	CleanupReasonRetention = "retention_expired"
	CleanupReasonManual    = "manual_cleanup"
)
