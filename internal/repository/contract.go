package repository

import (
	"gorm.io/gorm"

	"rental-manager/internal/models"
)

// ContractFilter narrows contract listings
type ContractFilter struct {
	Status     *models.ContractStatus `form:"status" binding:"omitempty,oneof=active expired terminated"`
	PropertyID *uint                  `form:"property_id"`
	TenantID   *uint                  `form:"tenant_id"`
	Page
}

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) List(userID uint, f ContractFilter) ([]models.Contract, error) {
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

	var contracts []models.Contract
	err := f.Page.apply(q).Order("start_date DESC, id DESC").Find(&contracts).Error
	return contracts, err
}

func (r *ContractRepository) Get(userID, id uint) (*models.Contract, error) {
	var c models.Contract
	if err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&c).Error; err != nil {
		return nil, notFound(err, "contract", id)
	}
	return &c, nil
}

// Active returns the user's active contracts
func (r *ContractRepository) Active(userID uint) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.Where("user_id = ? AND status = ?", userID, models.ContractStatusActive).
		Order("end_date, id").Find(&contracts).Error
	return contracts, err
}

// Expiring returns active contracts ending between today and today+days
func (r *ContractRepository) Expiring(userID uint, today models.Date, days int) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.Where("user_id = ? AND status = ?", userID, models.ContractStatusActive).
		Where("end_date >= ? AND end_date <= ?", today, today.AddDays(days)).
		Order("end_date, id").Find(&contracts).Error
	return contracts, err
}

// CheckAvailability returns ErrUnavailable when another active contract of the
// property overlaps [start, end]. excludeID skips the contract being updated.
func (r *ContractRepository) CheckAvailability(userID, propertyID uint, start, end models.Date, excludeID uint) error {
	q := r.db.Model(&models.Contract{}).
		Where("user_id = ? AND property_id = ? AND status = ?", userID, propertyID, models.ContractStatusActive).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrUnavailable
	}
	return nil
}

func (r *ContractRepository) Create(c *models.Contract) error {
	if c.Status == "" {
		c.Status = models.ContractStatusActive
	}
	return r.db.Create(c).Error
}

func (r *ContractRepository) Save(c *models.Contract) error {
	return r.db.Save(c).Error
}

func (r *ContractRepository) Delete(userID, id uint) error {
	result := r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&models.Contract{})
	return deleted(result, "contract", id)
}

// CountActive returns the number of active contracts
func (r *ContractRepository) CountActive(userID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Contract{}).
		Where("user_id = ? AND status = ?", userID, models.ContractStatusActive).
		Count(&n).Error
	return n, err
}

// UserIDs returns every user owning at least one contract or payment
func UserIDs(db *gorm.DB) ([]uint, error) {
	var fromContracts, fromPayments []uint
	if err := db.Model(&models.Contract{}).Distinct().Pluck("user_id", &fromContracts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Payment{}).Distinct().Pluck("user_id", &fromPayments).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint]bool)
	var ids []uint
	for _, id := range append(fromContracts, fromPayments...) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}
