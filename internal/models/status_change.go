package models

import "time"

// PaymentStatusChange records one status transition detected by the lifecycle updater
type PaymentStatusChange struct {
	ID         uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentID  uint          `gorm:"not null;index:idx_payment_detected" json:"payment_id"`
	UserID     uint          `gorm:"not null;index" json:"user_id"`
	OldStatus  PaymentStatus `gorm:"type:varchar(20);not null" json:"old_status"`
	NewStatus  PaymentStatus `gorm:"type:varchar(20);not null" json:"new_status"`
	Source     string        `gorm:"type:varchar(30);not null" json:"source"` // batch, single, confirm, manual
	DetectedAt time.Time     `gorm:"not null;index:idx_payment_detected,priority:2" json:"detected_at"`
}

// TableName specifies the table name
func (PaymentStatusChange) TableName() string {
	return "payment_status_changes"
}

// Change sources
const (
	ChangeSourceBatch   = "batch"
	ChangeSourceSingle  = "single"
	ChangeSourceConfirm = "confirm"
	ChangeSourceManual  = "manual"
)
