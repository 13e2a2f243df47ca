// Package notify turns contract and payment state into user notifications,
// suppressing duplicates created within a recency window.
package notify

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rental-manager/internal/billing"
	"rental-manager/internal/clock"
	"rental-manager/internal/config"
	"rental-manager/internal/models"
	"rental-manager/internal/repository"
)

const unknownTenant = "Unknown tenant"

// displayDate is the date format used in notification text
const displayDate = "02/01/2006"

// Windows are the dedupe windows per notification kind
type Windows struct {
	ContractExpiring time.Duration
	Reminder         time.Duration
	Overdue          time.Duration
}

// DefaultWindows returns 3 days for contracts and overdue payments, 12 hours for reminders
func DefaultWindows() Windows {
	return Windows{
		ContractExpiring: 72 * time.Hour,
		Reminder:         12 * time.Hour,
		Overdue:          72 * time.Hour,
	}
}

// Generator creates notifications for one database session
type Generator struct {
	db      *gorm.DB
	calc    *billing.Calculator
	clock   clock.Clock
	windows Windows
}

// NewGenerator creates a generator bound to db
func NewGenerator(db *gorm.DB, c clock.Clock, windows Windows) *Generator {
	return &Generator{
		db:      db,
		calc:    billing.NewCalculator(c),
		clock:   c,
		windows: windows,
	}
}

// ContractExpiring notifies about active contracts entering the 60 or 30 day window
func (g *Generator) ContractExpiring(userID uint) (int, error) {
	contracts, err := repository.NewContractRepository(g.db).Active(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load contracts: %w", err)
	}

	created := 0
	for i := range contracts {
		c := &contracts[i]
		notice := g.calc.ContractExpiringNotice(c)
		if notice == billing.NoticeNone {
			continue
		}

		relatedID := idString(c.ID)
		dup, err := g.recent(userID, models.NotificationContractExpiring, relatedID, g.windows.ContractExpiring)
		if err != nil {
			return created, err
		}
		if dup {
			continue
		}

		days := notice.Days()
		tenant := g.tenantName(userID, c.TenantID)
		priority := models.PriorityMedium
		if days <= 30 {
			priority = models.PriorityHigh
		}

		n := &models.Notification{
			UserID: userID,
			Type:   models.NotificationContractExpiring,
			Title:  fmt.Sprintf("Contract expiring in %d days", days),
			Message: fmt.Sprintf("The contract '%s' of tenant %s expires in %d days (on %s). "+
				"Contact the tenant to renew or end the contract.",
				c.Title, tenant, days, c.EndDate.Format(displayDate)),
			Priority:       priority,
			ActionRequired: true,
			RelatedID:      relatedID,
			RelatedType:    models.RelatedContract,
		}
		if err := g.create(n); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// PaymentReminders notifies two days before and on the due date
func (g *Generator) PaymentReminders(userID uint) (int, error) {
	payments, err := repository.NewPaymentRepository(g.db).
		WithStatus(userID, models.PaymentStatusPending, models.PaymentStatusOverdue)
	if err != nil {
		return 0, fmt.Errorf("failed to load payments: %w", err)
	}

	today := g.calc.Today()
	created := 0
	for i := range payments {
		p := &payments[i]
		if g.calc.PaymentReminder(p.DueDate) == billing.ReminderNone {
			continue
		}

		relatedID := idString(p.ID)
		dup, err := g.recent(userID, models.NotificationReminder, relatedID, g.windows.Reminder)
		if err != nil {
			return created, err
		}
		if dup {
			continue
		}

		tenant := g.tenantName(userID, p.TenantID)
		daysUntilDue := p.DueDate.DaysSince(today)

		n := &models.Notification{
			UserID:      userID,
			Type:        models.NotificationReminder,
			RelatedID:   relatedID,
			RelatedType: models.RelatedPayment,
		}
		if daysUntilDue == 0 {
			n.Title = fmt.Sprintf("Payment due TODAY - %s", tenant)
			n.Message = fmt.Sprintf("The payment of tenant %s is due TODAY (%s). Amount: %s",
				tenant, p.DueDate.Format(displayDate), p.Amount.StringFixed(2))
			n.Priority = models.PriorityHigh
		} else {
			n.Title = fmt.Sprintf("Payment due in %d days - %s", daysUntilDue, tenant)
			n.Message = fmt.Sprintf("The payment of tenant %s is due in %d days (%s). Amount: %s",
				tenant, daysUntilDue, p.DueDate.Format(displayDate), p.Amount.StringFixed(2))
			n.Priority = models.PriorityMedium
		}
		if err := g.create(n); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// OverduePayments notifies on the first overdue day and every seven days after
func (g *Generator) OverduePayments(userID uint) (int, error) {
	payments, err := repository.NewPaymentRepository(g.db).WithStatus(userID, models.PaymentStatusOverdue)
	if err != nil {
		return 0, fmt.Errorf("failed to load payments: %w", err)
	}
	contracts := repository.NewContractRepository(g.db)

	created := 0
	for i := range payments {
		p := &payments[i]
		days := g.calc.DaysOverdue(p.DueDate, nil)
		if days <= 0 || (days%7 != 0 && days != 1) {
			continue
		}

		relatedID := idString(p.ID)
		dup, err := g.recent(userID, models.NotificationPaymentOverdue, relatedID, g.windows.Overdue)
		if err != nil {
			return created, err
		}
		if dup {
			continue
		}

		contract, err := contracts.Get(userID, p.ContractID)
		if err != nil {
			// payments of a deleted contract cannot be priced
			log.WithFields(log.Fields{"payment_id": p.ID, "contract_id": p.ContractID}).
				Warn("Notify: skipping overdue payment without contract")
			continue
		}

		_, _, addition := billing.FineAndInterest(p.Amount, contract.FineRate, contract.InterestRate, days)
		total := p.Amount.Add(addition)
		if err := g.create(overdueNotification(userID, p, g.tenantName(userID, p.TenantID), days, total)); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func overdueNotification(userID uint, p *models.Payment, tenant string, days int, total decimal.Decimal) *models.Notification {
	priority := models.PriorityMedium
	switch {
	case days >= 15:
		priority = models.PriorityUrgent
	case days >= 7:
		priority = models.PriorityHigh
	}

	return &models.Notification{
		UserID: userID,
		Type:   models.NotificationPaymentOverdue,
		Title:  fmt.Sprintf("Payment OVERDUE - %s (%d days)", tenant, days),
		Message: fmt.Sprintf("The payment of tenant %s is %d days overdue. Due date: %s. "+
			"Original amount: %s. Current amount with fine/interest: %s. Contact the tenant.",
			tenant, days, p.DueDate.Format(displayDate), p.Amount.StringFixed(2), total.StringFixed(2)),
		Priority:       priority,
		ActionRequired: true,
		RelatedID:      idString(p.ID),
		RelatedType:    models.RelatedPayment,
	}
}

// PaymentReceived records a low priority alert after a payment is registered
func (g *Generator) PaymentReceived(p *models.Payment) (*models.Notification, error) {
	tenant := g.tenantName(p.UserID, p.TenantID)
	paidOn := "not informed"
	if p.PaymentDate != nil {
		paidOn = p.PaymentDate.Format(displayDate)
	}

	n := &models.Notification{
		UserID:      p.UserID,
		Type:        models.NotificationSystemAlert,
		Priority:    models.PriorityLow,
		RelatedID:   idString(p.ID),
		RelatedType: models.RelatedPayment,
	}
	if p.Status == models.PaymentStatusPaid {
		n.Title = fmt.Sprintf("Payment received - %s", tenant)
		n.Message = fmt.Sprintf("The payment of tenant %s was received in full. Amount: %s. Payment date: %s.",
			tenant, p.TotalAmount.StringFixed(2), paidOn)
	} else {
		n.Title = fmt.Sprintf("PARTIAL payment received - %s", tenant)
		n.Message = fmt.Sprintf("A partial payment of tenant %s was received. Paid: %s. Expected total: %s. Outstanding: %s.",
			tenant, p.Amount.StringFixed(2), p.TotalAmount.StringFixed(2), p.TotalAmount.Sub(p.Amount).StringFixed(2))
	}

	if err := g.create(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (g *Generator) recent(userID uint, kind models.NotificationType, relatedID string, window time.Duration) (bool, error) {
	since := g.clock.Now().UTC().Add(-window)
	dup, err := repository.NewNotificationRepository(g.db).ExistsSince(userID, kind, relatedID, since)
	if err != nil {
		return false, fmt.Errorf("failed to check recent notifications: %w", err)
	}
	return dup, nil
}

func (g *Generator) create(n *models.Notification) error {
	now := g.clock.Now().UTC()
	n.Date = now
	n.CreatedAt = now
	n.UpdatedAt = now
	if err := repository.NewNotificationRepository(g.db).Create(n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (g *Generator) tenantName(userID, tenantID uint) string {
	return repository.NewTenantRepository(g.db).Name(userID, tenantID, unknownTenant)
}

// WindowsFrom reads the dedupe windows from configuration
func WindowsFrom(cfg *config.NotificationsConfig) Windows {
	return Windows{
		ContractExpiring: cfg.GetContractDedupe(),
		Reminder:         cfg.GetReminderDedupe(),
		Overdue:          cfg.GetOverdueDedupe(),
	}
}
