package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Expense is a cost or maintenance item, optionally tied to a property
type Expense struct {
	ID     string `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`

	Type        ExpenseType     `gorm:"type:varchar(20);not null;index" json:"type"`
	Category    string          `gorm:"type:varchar(100);not null;index" json:"category"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Date        Date            `gorm:"not null;index" json:"date"`
	PropertyID  *uint           `gorm:"index" json:"property_id,omitempty"`

	Status   ExpenseStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Priority string        `gorm:"type:varchar(20)" json:"priority,omitempty"`
	Vendor   string        `gorm:"type:varchar(255)" json:"vendor,omitempty"`
	Number   string        `gorm:"type:varchar(100)" json:"number,omitempty"`
	Receipt  string        `gorm:"type:varchar(500)" json:"receipt,omitempty"`

	Documents datatypes.JSONSlice[ExpenseDocument] `json:"documents"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// ExpenseDocument references an uploaded invoice or receipt
type ExpenseDocument struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

type ExpenseType string

const (
	ExpenseTypeExpense     ExpenseType = "expense"
	ExpenseTypeMaintenance ExpenseType = "maintenance"
)

type ExpenseStatus string

const (
	ExpenseStatusPending   ExpenseStatus = "pending"
	ExpenseStatusPaid      ExpenseStatus = "paid"
	ExpenseStatusScheduled ExpenseStatus = "scheduled"
)

func (Expense) TableName() string {
	return "expenses"
}

// BeforeCreate assigns a UUID when none was set
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
