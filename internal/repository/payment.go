package repository

import (
	"gorm.io/gorm"

	"rental-manager/internal/models"
)

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	Status     *models.PaymentStatus `form:"status" binding:"omitempty,oneof=pending paid overdue partial"`
	PropertyID *uint                 `form:"property_id"`
	TenantID   *uint                 `form:"tenant_id"`
	ContractID *uint                 `form:"contract_id"`
	DueFrom    *models.Date          `form:"-"`
	DueTo      *models.Date          `form:"-"`
	Page
}

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) List(userID uint, f PaymentFilter) ([]models.Payment, error) {
	q := r.db.Where("user_id = ?", userID)
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.PropertyID != nil {
		q = q.Where("property_id = ?", *f.PropertyID)
	}
	if f.TenantID != nil {
		q = q.Where("tenant_id = ?", *f.TenantID)
	}
	if f.ContractID != nil {
		q = q.Where("contract_id = ?", *f.ContractID)
	}
	if f.DueFrom != nil {
		q = q.Where("due_date >= ?", *f.DueFrom)
	}
	if f.DueTo != nil {
		q = q.Where("due_date <= ?", *f.DueTo)
	}

	var payments []models.Payment
	err := f.Page.apply(q).Order("due_date DESC, id DESC").Find(&payments).Error
	return payments, err
}

// All returns every payment of the user
func (r *PaymentRepository) All(userID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("user_id = ?", userID).Order("id").Find(&payments).Error
	return payments, err
}

// WithStatus returns the user's payments in any of the given statuses
func (r *PaymentRepository) WithStatus(userID uint, statuses ...models.PaymentStatus) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("user_id = ? AND status IN ?", userID, statuses).
		Order("due_date, id").Find(&payments).Error
	return payments, err
}

// Overdue returns unsettled payments whose due date has passed
func (r *PaymentRepository) Overdue(userID uint, today models.Date) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("user_id = ?", userID).
		Where("status IN ?", []models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusPartial, models.PaymentStatusOverdue}).
		Where("due_date < ?", today).
		Order("due_date, id").Find(&payments).Error
	return payments, err
}

// Pending returns payments still waiting for their due date
func (r *PaymentRepository) Pending(userID uint) ([]models.Payment, error) {
	return r.WithStatus(userID, models.PaymentStatusPending)
}

func (r *PaymentRepository) Get(userID, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&p).Error; err != nil {
		return nil, notFound(err, "payment", id)
	}
	return &p, nil
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	if p.Status == "" {
		p.Status = models.PaymentStatusPending
	}
	return r.db.Create(p).Error
}

// CreateBatch inserts several payments in one statement
func (r *PaymentRepository) CreateBatch(payments []models.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	return r.db.Create(&payments).Error
}

func (r *PaymentRepository) Save(p *models.Payment) error {
	return r.db.Save(p).Error
}

// UpdateStatus writes only the status column
func (r *PaymentRepository) UpdateStatus(p *models.Payment, status models.PaymentStatus) error {
	if err := r.db.Model(p).Update("status", status).Error; err != nil {
		return err
	}
	p.Status = status
	return nil
}

func (r *PaymentRepository) Delete(userID, id uint) error {
	result := r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&models.Payment{})
	return deleted(result, "payment", id)
}

// RecordStatusChange appends an audit row for a status transition
func (r *PaymentRepository) RecordStatusChange(change *models.PaymentStatusChange) error {
	return r.db.Create(change).Error
}

// History returns the status transitions of a payment, newest first
func (r *PaymentRepository) History(userID, paymentID uint) ([]models.PaymentStatusChange, error) {
	var changes []models.PaymentStatusChange
	err := r.db.Where("user_id = ? AND payment_id = ?", userID, paymentID).
		Order("detected_at DESC, id DESC").Find(&changes).Error
	return changes, err
}

// RecentChanges returns the user's latest status transitions across all payments
func (r *PaymentRepository) RecentChanges(userID uint, limit int) ([]models.PaymentStatusChange, error) {
	var changes []models.PaymentStatusChange
	err := r.db.Where("user_id = ?", userID).
		Order("detected_at DESC, id DESC").Limit(limit).Find(&changes).Error
	return changes, err
}
