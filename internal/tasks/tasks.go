// Package tasks runs the payment lifecycle and the notification generators
// together for a user.
package tasks

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rental-manager/internal/clock"
	"rental-manager/internal/lifecycle"
	"rental-manager/internal/notify"
)

// Report is the combined result of one run
type Report struct {
	UserID                uint                     `json:"user_id"`
	PaymentStatusChanges  *lifecycle.StatusChanges `json:"payment_status_changes"`
	ContractNotifications int                      `json:"contract_notifications"`
	PaymentReminders      int                      `json:"payment_reminders"`
	OverdueNotifications  int                      `json:"overdue_notifications"`
}

// Total returns the number of notifications created
func (r *Report) Total() int {
	return r.ContractNotifications + r.PaymentReminders + r.OverdueNotifications
}

// Runner executes all background tasks against one database session
type Runner struct {
	updater   *lifecycle.Updater
	generator *notify.Generator
}

// NewRunner creates a runner bound to db
func NewRunner(db *gorm.DB, c clock.Clock, windows notify.Windows) *Runner {
	return &Runner{
		updater:   lifecycle.NewUpdater(db, c),
		generator: notify.NewGenerator(db, c, windows),
	}
}

// RunAll updates statuses first so the overdue generator sees fresh statuses
func (r *Runner) RunAll(userID uint) (*Report, error) {
	report := &Report{UserID: userID}

	changes, err := r.updater.UpdateStatuses(userID)
	if err != nil {
		return nil, fmt.Errorf("status update: %w", err)
	}
	report.PaymentStatusChanges = changes

	if report.ContractNotifications, err = r.generator.ContractExpiring(userID); err != nil {
		return nil, fmt.Errorf("contract notifications: %w", err)
	}
	if report.PaymentReminders, err = r.generator.PaymentReminders(userID); err != nil {
		return nil, fmt.Errorf("payment reminders: %w", err)
	}
	if report.OverdueNotifications, err = r.generator.OverduePayments(userID); err != nil {
		return nil, fmt.Errorf("overdue notifications: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":       userID,
		"notifications": report.Total(),
		"status_change": changes.Changed,
	}).Info("Tasks: background run completed")
	return report, nil
}
