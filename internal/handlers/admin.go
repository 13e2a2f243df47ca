package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rental-manager/internal/auth"
	"rental-manager/internal/cleanup"
	"rental-manager/internal/clock"
	"rental-manager/internal/config"
	"rental-manager/internal/models"
	"rental-manager/internal/ratelimit"
	"rental-manager/internal/repository"
)

// AdminHandler handles maintenance requests: notification cleanup, cleanup
// logs, status-change audit and rate limiter state
type AdminHandler struct {
	db      *gorm.DB
	clock   clock.Clock
	cfg     config.NotificationsConfig
	limiter *ratelimit.RateLimiter
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, c clock.Clock, cfg config.NotificationsConfig, limiter *ratelimit.RateLimiter) *AdminHandler {
	return &AdminHandler{
		db:      db,
		clock:   c,
		cfg:     cfg,
		limiter: limiter,
	}
}

func (h *AdminHandler) cleanupService(c *gin.Context) *cleanup.Service {
	return cleanup.NewService(h.db.WithContext(c.Request.Context()), h.clock)
}

// GetStats returns the caller's notification and cleanup statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	userID := auth.UserID(c)
	db := h.db.WithContext(c.Request.Context())
	stats := make(map[string]interface{})

	var total, unread int64
	if err := db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}
	if err := db.Model(&models.Notification{}).Where("user_id = ? AND read_status = ?", userID, false).Count(&unread).Error; err != nil {
		respondError(c, err)
		return
	}
	stats["notifications"] = map[string]interface{}{
		"total":  total,
		"unread": unread,
		"read":   total - unread,
	}

	// Status changes (last 7 days)
	last7days := h.clock.Now().UTC().AddDate(0, 0, -7)
	var recentChanges int64
	if err := db.Model(&models.PaymentStatusChange{}).
		Where("user_id = ? AND detected_at >= ?", userID, last7days).
		Count(&recentChanges).Error; err != nil {
		respondError(c, err)
		return
	}
	stats["status_changes"] = map[string]interface{}{
		"last_7_days": recentChanges,
	}

	deleteStats, err := h.cleanupService(c).GetDeleteStats(&userID, h.cfg.RetentionDays)
	if err != nil {
		log.WithError(err).Warn("Admin: failed to get cleanup stats")
	} else {
		stats["cleanup"] = deleteStats
	}

	c.JSON(http.StatusOK, stats)
}

// RunCleanup deletes the caller's read notifications past the retention window
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	var req struct {
		RetentionDays    int   `json:"retention_days" binding:"omitempty,min=1"`
		MaxDeletionCount int   `json:"max_deletion_count" binding:"omitempty,min=1"`
		DryRun           *bool `json:"dry_run"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err)
			return
		}
	}

	cfg := cleanup.CleanupConfig{
		RetentionDays:    h.cfg.RetentionDays,
		MaxDeletionCount: h.cfg.MaxDeletionCount,
		DryRun:           h.cfg.CleanupDryRun,
		Reason:           models.CleanupReasonManual,
	}
	if req.RetentionDays > 0 {
		cfg.RetentionDays = req.RetentionDays
	}
	if req.MaxDeletionCount > 0 {
		cfg.MaxDeletionCount = req.MaxDeletionCount
	}
	if req.DryRun != nil {
		cfg.DryRun = *req.DryRun
	}

	userID := auth.UserID(c)
	log.WithFields(log.Fields{
		"user_id":   userID,
		"retention": cfg.RetentionDays,
		"max":       cfg.MaxDeletionCount,
		"dry_run":   cfg.DryRun,
	}).Info("Admin: running notification cleanup")

	result, err := h.cleanupService(c).DeleteOldNotifications(&userID, cfg)
	if err != nil {
		log.WithError(err).Error("Admin: cleanup failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCleanupLogs returns the caller's recent cleanup runs
func (h *AdminHandler) GetCleanupLogs(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 100, 1, 1000)
	if !ok {
		return
	}
	userID := auth.UserID(c)

	logs, err := h.cleanupService(c).GetRecentLogs(&userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// GetRecentChanges returns the caller's latest payment status transitions
func (h *AdminHandler) GetRecentChanges(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 100, 1, 1000)
	if !ok {
		return
	}

	changes, err := repository.NewPaymentRepository(h.db.WithContext(c.Request.Context())).
		RecentChanges(auth.UserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes": changes,
		"count":   len(changes),
	})
}

// GetRateLimitStats returns the caller's usage of the rate limited endpoints
func (h *AdminHandler) GetRateLimitStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id": auth.UserID(c),
		"stats":   h.limiter.GetStats(auth.Key(c)),
	})
}
