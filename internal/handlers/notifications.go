package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rental-manager/internal/auth"
	"rental-manager/internal/models"
	"rental-manager/internal/repository"
	"rental-manager/internal/tasks"
)

type notificationRequest struct {
	Type           models.NotificationType     `json:"type" binding:"required,oneof=contract_expiring payment_overdue reminder system_alert maintenance_urgent"`
	Title          string                      `json:"title" binding:"required,max=255"`
	Message        string                      `json:"message" binding:"required"`
	Date           *time.Time                  `json:"date"`
	Priority       models.NotificationPriority `json:"priority" binding:"required,oneof=low medium high urgent"`
	ReadStatus     bool                        `json:"read_status"`
	ActionRequired bool                        `json:"action_required"`
	RelatedID      string                      `json:"related_id" binding:"max=36"`
	RelatedType    string                      `json:"related_type" binding:"omitempty,oneof=contract payment maintenance property"`
}

type notificationUpdate struct {
	Type           *models.NotificationType     `json:"type" binding:"omitempty,oneof=contract_expiring payment_overdue reminder system_alert maintenance_urgent"`
	Title          *string                      `json:"title" binding:"omitempty,min=1,max=255"`
	Message        *string                      `json:"message" binding:"omitempty,min=1"`
	Date           *time.Time                   `json:"date"`
	Priority       *models.NotificationPriority `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	ReadStatus     *bool                        `json:"read_status"`
	ActionRequired *bool                        `json:"action_required"`
	RelatedID      *string                      `json:"related_id" binding:"omitempty,max=36"`
	RelatedType    *string                      `json:"related_type" binding:"omitempty,oneof=contract payment maintenance property"`
}

func (u *notificationUpdate) apply(n *models.Notification) {
	setIf(&n.Type, u.Type)
	setIf(&n.Title, u.Title)
	setIf(&n.Message, u.Message)
	setIf(&n.Date, u.Date)
	setIf(&n.Priority, u.Priority)
	setIf(&n.ReadStatus, u.ReadStatus)
	setIf(&n.ActionRequired, u.ActionRequired)
	setIf(&n.RelatedID, u.RelatedID)
	setIf(&n.RelatedType, u.RelatedType)
}

// ListNotifications returns the caller's notifications, newest first
func (h *Handler) ListNotifications(c *gin.Context) {
	var f repository.NotificationFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		invalidInput(c, err)
		return
	}
	notifications, err := repository.NewNotificationRepository(h.session(c)).List(auth.UserID(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *Handler) UnreadCount(c *gin.Context) {
	n, err := repository.NewNotificationRepository(h.session(c)).UnreadCount(auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": n})
}

func (h *Handler) GetNotification(c *gin.Context) {
	n, err := repository.NewNotificationRepository(h.session(c)).Get(auth.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) CreateNotification(c *gin.Context) {
	var req notificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	n := &models.Notification{
		UserID:         auth.UserID(c),
		Type:           req.Type,
		Title:          req.Title,
		Message:        req.Message,
		Date:           h.clock.Now().UTC(),
		Priority:       req.Priority,
		ReadStatus:     req.ReadStatus,
		ActionRequired: req.ActionRequired,
		RelatedID:      req.RelatedID,
		RelatedType:    req.RelatedType,
	}
	if req.Date != nil {
		n.Date = req.Date.UTC()
	}
	if err := repository.NewNotificationRepository(h.session(c)).Create(n); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *Handler) UpdateNotification(c *gin.Context) {
	var req notificationUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	repo := repository.NewNotificationRepository(h.session(c))
	n, err := repo.Get(auth.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	req.apply(n)
	if err := repo.Save(n); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	if err := repository.NewNotificationRepository(h.session(c)).Delete(auth.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	n, err := repository.NewNotificationRepository(h.session(c)).MarkAsRead(auth.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	updated, err := repository.NewNotificationRepository(h.session(c)).MarkAllAsRead(auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// ProcessNotifications refreshes payment statuses and runs every generator
// for the caller
func (h *Handler) ProcessNotifications(c *gin.Context) {
	report, err := tasks.NewRunner(h.session(c), h.clock, h.windows()).RunAll(auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"report":                report,
		"notifications_created": report.Total(),
	})
}
