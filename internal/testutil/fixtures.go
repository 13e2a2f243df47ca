package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rental-manager/internal/models"
)

// Property inserts a vacant apartment owned by userID
func Property(t testing.TB, db *gorm.DB, userID uint, name string) *models.Property {
	t.Helper()
	p := &models.Property{
		UserID:        userID,
		Name:          name,
		Address:       "Rua das Flores, 100",
		Neighborhood:  "Centro",
		City:          "Curitiba",
		State:         "PR",
		ZipCode:       "80000-000",
		Type:          models.PropertyTypeApartment,
		Area:          decimal.NewFromInt(70),
		Bedrooms:      2,
		Bathrooms:     1,
		Rent:          decimal.NewFromInt(1500),
		Status:        models.PropertyStatusVacant,
		IsResidential: true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Tenant inserts an active tenant owned by userID
func Tenant(t testing.TB, db *gorm.DB, userID uint, name string) *models.Tenant {
	t.Helper()
	tn := &models.Tenant{
		UserID:  userID,
		Name:    name,
		Email:   "tenant@example.com",
		Phone:   "41999990000",
		CPFCNPJ: "123.456.789-00",
		Status:  models.TenantStatusActive,
	}
	require.NoError(t, db.Create(tn).Error)
	return tn
}

// Contract inserts an active contract at 1500 rent, 2% fine, 1% monthly interest
func Contract(t testing.TB, db *gorm.DB, userID uint, property *models.Property, tenant *models.Tenant, start, end models.Date) *models.Contract {
	t.Helper()
	c := &models.Contract{
		UserID:       userID,
		Title:        "Contrato " + property.Name,
		PropertyID:   property.ID,
		TenantID:     tenant.ID,
		StartDate:    start,
		EndDate:      end,
		Rent:         decimal.NewFromInt(1500),
		Deposit:      decimal.NewFromInt(3000),
		InterestRate: decimal.NewFromInt(1),
		FineRate:     decimal.NewFromInt(2),
		Status:       models.ContractStatusActive,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// Payment inserts an unpaid installment of contract due on due
func Payment(t testing.TB, db *gorm.DB, contract *models.Contract, due models.Date, status models.PaymentStatus) *models.Payment {
	t.Helper()
	p := &models.Payment{
		UserID:      contract.UserID,
		PropertyID:  contract.PropertyID,
		TenantID:    contract.TenantID,
		ContractID:  contract.ID,
		DueDate:     due,
		Amount:      contract.Rent,
		FineAmount:  decimal.Zero,
		TotalAmount: contract.Rent,
		Status:      status,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
