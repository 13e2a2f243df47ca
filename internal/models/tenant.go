package models

import (
	"time"

	"gorm.io/datatypes"
)

// Tenant is a person or company renting a property
type Tenant struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`

	Name       string `gorm:"type:varchar(255);not null;index" json:"name"`
	Email      string `gorm:"type:varchar(255);not null;index" json:"email"`
	Phone      string `gorm:"type:varchar(20);not null" json:"phone"`
	CPFCNPJ    string `gorm:"column:cpf_cnpj;type:varchar(18);not null" json:"cpf_cnpj"`
	BirthDate  *Date  `json:"birth_date,omitempty"`
	Profession string `gorm:"type:varchar(255)" json:"profession,omitempty"`

	EmergencyContact datatypes.JSONType[EmergencyContact] `json:"emergency_contact"`
	Documents        datatypes.JSONSlice[TenantDocument]  `json:"documents"`

	ContractID *uint        `gorm:"index" json:"contract_id,omitempty"`
	Status     TenantStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// EmergencyContact is stored as a JSON column
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// TenantDocument references an uploaded file
type TenantDocument struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type" binding:"omitempty,oneof=identity contract other"`
	URL  string `json:"url"`
}

// TenantStatus は入居者のステータス
type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "active"
	TenantStatusInactive TenantStatus = "inactive"
)

// Document types
const (
	DocumentTypeIdentity = "identity"
	DocumentTypeContract = "contract"
	DocumentTypeOther    = "other"
)

func (Tenant) TableName() string {
	return "tenants"
}
