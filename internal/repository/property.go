package repository

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"rental-manager/internal/models"
)

// PropertyFilter narrows property listings
type PropertyFilter struct {
	Query        string                 `form:"q"`
	Type         *models.PropertyType   `form:"type" binding:"omitempty,oneof=apartment house commercial studio"`
	Status       *models.PropertyStatus `form:"status" binding:"omitempty,oneof=vacant occupied maintenance inactive"`
	City         string                 `form:"city"`
	Neighborhood string                 `form:"neighborhood"`
	MinRent      *decimal.Decimal       `form:"min_rent"`
	MaxRent      *decimal.Decimal       `form:"max_rent"`
	MinBedrooms  *int                   `form:"min_bedrooms" binding:"omitempty,min=0"`
	IDs          []uint                 `form:"-"`
	Page
}

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) List(userID uint, f PropertyFilter) ([]models.Property, error) {
	q := r.db.Where("user_id = ?", userID)
	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Where("(LOWER(name) LIKE LOWER(?) OR LOWER(address) LIKE LOWER(?) OR LOWER(neighborhood) LIKE LOWER(?))",
			like, like, like)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.City != "" {
		q = q.Where("LOWER(city) LIKE LOWER(?)", "%"+f.City+"%")
	}
	if f.Neighborhood != "" {
		q = q.Where("LOWER(neighborhood) LIKE LOWER(?)", "%"+f.Neighborhood+"%")
	}
	if f.MinRent != nil {
		q = q.Where("rent >= ?", *f.MinRent)
	}
	if f.MaxRent != nil {
		q = q.Where("rent <= ?", *f.MaxRent)
	}
	if f.MinBedrooms != nil {
		q = q.Where("bedrooms >= ?", *f.MinBedrooms)
	}
	if f.IDs != nil {
		q = q.Where("id IN ?", f.IDs)
	}

	var properties []models.Property
	err := f.Page.apply(q).Order("created_at DESC, id DESC").Find(&properties).Error
	return properties, err
}

// All returns every property of the user, oldest first
func (r *PropertyRepository) All(userID uint) ([]models.Property, error) {
	var properties []models.Property
	err := r.db.Where("user_id = ?", userID).Order("id").Find(&properties).Error
	return properties, err
}

func (r *PropertyRepository) Get(userID, id uint) (*models.Property, error) {
	var p models.Property
	if err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&p).Error; err != nil {
		return nil, notFound(err, "property", id)
	}
	return &p, nil
}

func (r *PropertyRepository) Create(p *models.Property) error {
	if p.Status == "" {
		p.Status = models.PropertyStatusVacant
	}
	return r.db.Create(p).Error
}

func (r *PropertyRepository) Save(p *models.Property) error {
	return r.db.Save(p).Error
}

func (r *PropertyRepository) Delete(userID, id uint) error {
	result := r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&models.Property{})
	return deleted(result, "property", id)
}

// Count returns the number of properties the user owns
func (r *PropertyRepository) Count(userID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Property{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
