package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is one rent installment of a contract
type Payment struct {
	ID         uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint `gorm:"not null;index" json:"user_id"`
	PropertyID uint `gorm:"not null;index" json:"property_id"`
	TenantID   uint `gorm:"not null;index" json:"tenant_id"`
	ContractID uint `gorm:"not null;index" json:"contract_id"`

	DueDate     Date  `gorm:"not null;index" json:"due_date"`
	PaymentDate *Date `json:"payment_date"`

	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	FineAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"fine_amount"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`

	Status        PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentMethod string        `gorm:"type:varchar(20)" json:"payment_method,omitempty"`
	Description   string        `gorm:"type:text" json:"description,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// PaymentStatus は支払いのステータス
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
	PaymentStatusPartial PaymentStatus = "partial"
)

// Payment methods
const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
	PaymentMethodPix      = "pix"
	PaymentMethodCheck    = "check"
	PaymentMethodCard     = "card"
)

func (Payment) TableName() string {
	return "payments"
}

// PaidAmount is the amount counted as received: only payments carrying a
// payment date have been paid at all.
func (p *Payment) PaidAmount() *decimal.Decimal {
	if p.PaymentDate == nil {
		return nil
	}
	amount := p.Amount
	return &amount
}

// BaseAmount is the installment value before fine and interest. Once money
// was received Amount holds the paid total, so the base is derived from the
// stored breakdown instead.
func (p *Payment) BaseAmount() decimal.Decimal {
	if p.PaymentDate == nil {
		return p.Amount
	}
	return p.TotalAmount.Sub(p.FineAmount)
}
