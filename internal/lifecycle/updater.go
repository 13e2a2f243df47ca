// Package lifecycle recomputes stored payment statuses and keeps a history of
// every transition it makes.
package lifecycle

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rental-manager/internal/billing"
	"rental-manager/internal/clock"
	"rental-manager/internal/models"
	"rental-manager/internal/repository"
)

// StatusChanges tallies one batch run
type StatusChanges struct {
	PendingToOverdue int `json:"pending_to_overdue"`
	TotalOverdue     int `json:"total_overdue"`
	TotalPending     int `json:"total_pending"`
	TotalPaid        int `json:"total_paid"`
	TotalPartial     int `json:"total_partial"`
	Changed          int `json:"changed"`
}

func (s *StatusChanges) count(status models.PaymentStatus) {
	switch status {
	case models.PaymentStatusOverdue:
		s.TotalOverdue++
	case models.PaymentStatusPending:
		s.TotalPending++
	case models.PaymentStatusPaid:
		s.TotalPaid++
	case models.PaymentStatusPartial:
		s.TotalPartial++
	}
}

// Updater recomputes payment statuses with the calculator
type Updater struct {
	db    *gorm.DB
	calc  *billing.Calculator
	clock clock.Clock
}

// NewUpdater creates an updater bound to db
func NewUpdater(db *gorm.DB, c clock.Clock) *Updater {
	return &Updater{db: db, calc: billing.NewCalculator(c), clock: c}
}

// StatusFor is the status a stored payment should have today. The stored
// amount only counts as received once the payment carries a payment date.
func (u *Updater) StatusFor(p *models.Payment) models.PaymentStatus {
	return u.calc.DetermineStatus(p.DueDate, p.PaidAmount(), p.TotalAmount)
}

// UpdateStatuses recomputes every payment of the user in one transaction
func (u *Updater) UpdateStatuses(userID uint) (*StatusChanges, error) {
	changes := &StatusChanges{}

	err := u.db.Transaction(func(tx *gorm.DB) error {
		repo := repository.NewPaymentRepository(tx)
		payments, err := repo.All(userID)
		if err != nil {
			return fmt.Errorf("failed to load payments: %w", err)
		}

		for i := range payments {
			p := &payments[i]
			old := p.Status
			next := u.StatusFor(p)

			if old != next {
				if err := u.transition(repo, p, next, models.ChangeSourceBatch); err != nil {
					return err
				}
				changes.Changed++
				if old == models.PaymentStatusPending && next == models.PaymentStatusOverdue {
					changes.PendingToOverdue++
				}
			}
			changes.count(next)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changes.Changed > 0 {
		log.WithFields(log.Fields{
			"user_id":            userID,
			"changed":            changes.Changed,
			"pending_to_overdue": changes.PendingToOverdue,
		}).Info("Lifecycle: payment statuses updated")
	}
	return changes, nil
}

// UpdateOne recomputes a single payment and returns its resulting status
func (u *Updater) UpdateOne(userID, paymentID uint) (models.PaymentStatus, error) {
	var status models.PaymentStatus
	err := u.db.Transaction(func(tx *gorm.DB) error {
		repo := repository.NewPaymentRepository(tx)
		p, err := repo.Get(userID, paymentID)
		if err != nil {
			return err
		}
		status = u.StatusFor(p)
		if status == p.Status {
			return nil
		}
		return u.transition(repo, p, status, models.ChangeSourceSingle)
	})
	return status, err
}

// Record stores a transition that happened outside the updater, such as a
// confirmation, so the history stays complete
func (u *Updater) Record(tx *gorm.DB, p *models.Payment, old models.PaymentStatus, source string) error {
	if old == p.Status {
		return nil
	}
	return repository.NewPaymentRepository(tx).RecordStatusChange(&models.PaymentStatusChange{
		PaymentID:  p.ID,
		UserID:     p.UserID,
		OldStatus:  old,
		NewStatus:  p.Status,
		Source:     source,
		DetectedAt: u.clock.Now().UTC(),
	})
}

// History returns the recorded transitions of one payment
func (u *Updater) History(userID, paymentID uint) ([]models.PaymentStatusChange, error) {
	repo := repository.NewPaymentRepository(u.db)
	if _, err := repo.Get(userID, paymentID); err != nil {
		return nil, err
	}
	return repo.History(userID, paymentID)
}

func (u *Updater) transition(repo *repository.PaymentRepository, p *models.Payment, next models.PaymentStatus, source string) error {
	change := &models.PaymentStatusChange{
		PaymentID:  p.ID,
		UserID:     p.UserID,
		OldStatus:  p.Status,
		NewStatus:  next,
		Source:     source,
		DetectedAt: u.clock.Now().UTC(),
	}
	if err := repo.UpdateStatus(p, next); err != nil {
		return fmt.Errorf("failed to update payment %d: %w", p.ID, err)
	}
	if err := repo.RecordStatusChange(change); err != nil {
		return fmt.Errorf("failed to record status change for payment %d: %w", p.ID, err)
	}
	return nil
}
