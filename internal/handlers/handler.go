// Package handlers exposes the rental management API over gin. Every handler
// reads the caller from the auth middleware and scopes all queries to them.
package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"rental-manager/internal/clock"
	"rental-manager/internal/config"
	"rental-manager/internal/notify"
	"rental-manager/internal/search"
	"rental-manager/internal/upload"
)

// Handler serves the entity, payment, notification and dashboard endpoints
type Handler struct {
	db      *gorm.DB
	cfg     *config.Config
	clock   clock.Clock
	storage *upload.Storage
	index   search.Index
}

// NewHandler creates a handler. A nil index disables search.
func NewHandler(db *gorm.DB, cfg *config.Config, c clock.Clock, storage *upload.Storage, index search.Index) *Handler {
	registerValidators()
	if index == nil {
		index = search.Disabled{}
	}
	return &Handler{
		db:      db,
		cfg:     cfg,
		clock:   c,
		storage: storage,
		index:   index,
	}
}

// session binds the database to the request so cancelled requests stop their queries
func (h *Handler) session(c *gin.Context) *gorm.DB {
	return h.db.WithContext(c.Request.Context())
}

func (h *Handler) windows() notify.Windows {
	return notify.WindowsFrom(&h.cfg.Notifications)
}
