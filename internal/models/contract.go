package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract binds a tenant to a property for a period
type Contract struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint   `gorm:"not null;index" json:"user_id"`
	Title      string `gorm:"type:varchar(255);not null" json:"title"`
	PropertyID uint   `gorm:"not null;index" json:"property_id"`
	TenantID   uint   `gorm:"not null;index" json:"tenant_id"`

	StartDate Date `gorm:"not null" json:"start_date"`
	EndDate   Date `gorm:"not null;index" json:"end_date"`

	Rent         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"rent"`
	Deposit      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"deposit"`
	InterestRate decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	FineRate     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"fine_rate"`

	Status      ContractStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	DocumentURL string         `gorm:"type:varchar(500)" json:"document_url,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// ContractStatus は契約のステータス
type ContractStatus string

const (
	ContractStatusActive     ContractStatus = "active"
	ContractStatusExpired    ContractStatus = "expired"
	ContractStatusTerminated ContractStatus = "terminated"
)

func (Contract) TableName() string {
	return "contracts"
}

// IsActive は契約が有効かどうか
func (c *Contract) IsActive() bool {
	return c.Status == ContractStatusActive
}
