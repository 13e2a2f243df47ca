package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is a user-facing alert produced by the generators or by hand
type Notification struct {
	ID     string `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index:idx_notifications_dedupe,priority:1" json:"user_id"`

	Type     NotificationType     `gorm:"type:varchar(30);not null;index:idx_notifications_dedupe,priority:2" json:"type"`
	Title    string               `gorm:"type:varchar(255);not null" json:"title"`
	Message  string               `gorm:"type:text;not null" json:"message"`
	Date     time.Time            `gorm:"not null" json:"date"`
	Priority NotificationPriority `gorm:"type:varchar(10);not null;default:'medium';index" json:"priority"`

	ReadStatus     bool `gorm:"not null;default:false;index" json:"read_status"`
	ActionRequired bool `gorm:"not null;default:false" json:"action_required"`

	RelatedID   string `gorm:"type:varchar(36);index:idx_notifications_dedupe,priority:3" json:"related_id,omitempty"`
	RelatedType string `gorm:"type:varchar(20)" json:"related_type,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type NotificationType string

const (
	NotificationContractExpiring  NotificationType = "contract_expiring"
	NotificationPaymentOverdue    NotificationType = "payment_overdue"
	NotificationReminder          NotificationType = "reminder"
	NotificationSystemAlert       NotificationType = "system_alert"
	NotificationMaintenanceUrgent NotificationType = "maintenance_urgent"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

// Related entity kinds
const (
	RelatedContract    = "contract"
	RelatedPayment     = "payment"
	RelatedMaintenance = "maintenance"
	RelatedProperty    = "property"
)

func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate assigns a UUID when none was set
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
