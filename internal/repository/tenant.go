package repository

import (
	"gorm.io/gorm"

	"rental-manager/internal/models"
)

// TenantFilter narrows tenant listings
type TenantFilter struct {
	Name   string               `form:"name"`
	Email  string               `form:"email"`
	Status *models.TenantStatus `form:"status" binding:"omitempty,oneof=active inactive"`
	Page
}

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) List(userID uint, f TenantFilter) ([]models.Tenant, error) {
	q := r.db.Where("user_id = ?", userID)
	if f.Name != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+f.Name+"%")
	}
	if f.Email != "" {
		q = q.Where("LOWER(email) = LOWER(?)", f.Email)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var tenants []models.Tenant
	err := f.Page.apply(q).Order("name, id").Find(&tenants).Error
	return tenants, err
}

func (r *TenantRepository) Get(userID, id uint) (*models.Tenant, error) {
	var t models.Tenant
	if err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&t).Error; err != nil {
		return nil, notFound(err, "tenant", id)
	}
	return &t, nil
}

// Name returns the tenant's display name, or fallback when the tenant is gone
func (r *TenantRepository) Name(userID, id uint, fallback string) string {
	var name string
	err := r.db.Model(&models.Tenant{}).
		Where("user_id = ? AND id = ?", userID, id).
		Select("name").Scan(&name).Error
	if err != nil || name == "" {
		return fallback
	}
	return name
}

func (r *TenantRepository) Create(t *models.Tenant) error {
	if t.Status == "" {
		t.Status = models.TenantStatusActive
	}
	return r.db.Create(t).Error
}

func (r *TenantRepository) Save(t *models.Tenant) error {
	return r.db.Save(t).Error
}

func (r *TenantRepository) Delete(userID, id uint) error {
	result := r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&models.Tenant{})
	return deleted(result, "tenant", id)
}

func (r *TenantRepository) Count(userID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Tenant{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
