package repository

import (
	"time"

	"gorm.io/gorm"

	"rental-manager/internal/models"
)

// NotificationFilter narrows notification listings
type NotificationFilter struct {
	Type           *models.NotificationType     `form:"type" binding:"omitempty,oneof=contract_expiring payment_overdue reminder system_alert maintenance_urgent"`
	Priority       *models.NotificationPriority `form:"priority" binding:"omitempty,oneof=low medium high urgent"`
	ReadStatus     *bool                        `form:"read_status"`
	ActionRequired *bool                        `form:"action_required"`
	Page
}

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) List(userID uint, f NotificationFilter) ([]models.Notification, error) {
	q := r.db.Where("user_id = ?", userID)
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Priority != nil {
		q = q.Where("priority = ?", *f.Priority)
	}
	if f.ReadStatus != nil {
		q = q.Where("read_status = ?", *f.ReadStatus)
	}
	if f.ActionRequired != nil {
		q = q.Where("action_required = ?", *f.ActionRequired)
	}

	var notifications []models.Notification
	err := f.Page.apply(q).Order("date DESC, created_at DESC").Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepository) Get(userID uint, id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&n).Error; err != nil {
		return nil, notFound(err, "notification", id)
	}
	return &n, nil
}

func (r *NotificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

func (r *NotificationRepository) Save(n *models.Notification) error {
	return r.db.Save(n).Error
}

func (r *NotificationRepository) Delete(userID uint, id string) error {
	result := r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&models.Notification{})
	return deleted(result, "notification", id)
}

// UnreadCount returns how many notifications the user has not read
func (r *NotificationRepository) UnreadCount(userID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_status = ?", userID, false).
		Count(&n).Error
	return n, err
}

// MarkAsRead flags one notification as read
func (r *NotificationRepository) MarkAsRead(userID uint, id string) (*models.Notification, error) {
	n, err := r.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if n.ReadStatus {
		return n, nil
	}
	if err := r.db.Model(n).Update("read_status", true).Error; err != nil {
		return nil, err
	}
	n.ReadStatus = true
	return n, nil
}

// MarkAllAsRead flags every unread notification and returns how many changed
func (r *NotificationRepository) MarkAllAsRead(userID uint) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_status = ?", userID, false).
		Update("read_status", true)
	return result.RowsAffected, result.Error
}

// ExistsSince reports whether a notification of kind for the related entity
// was created at or after since
func (r *NotificationRepository) ExistsSince(userID uint, kind models.NotificationType, relatedID string, since time.Time) (bool, error) {
	var n int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ? AND related_id = ?", userID, kind, relatedID).
		Where("created_at >= ?", since).
		Count(&n).Error
	return n > 0, err
}
