package repository

import (
	"gorm.io/gorm"

	"rental-manager/internal/models"
)

// ExpenseFilter narrows expense listings
type ExpenseFilter struct {
	Type       *models.ExpenseType   `form:"type" binding:"omitempty,oneof=expense maintenance"`
	Category   string                `form:"category"`
	PropertyID *uint                 `form:"property_id"`
	Status     *models.ExpenseStatus `form:"status" binding:"omitempty,oneof=pending paid scheduled"`
	DateFrom   *models.Date          `form:"-"`
	DateTo     *models.Date          `form:"-"`
	Page
}

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) List(userID uint, f ExpenseFilter) ([]models.Expense, error) {
	q := r.db.Where("user_id = ?", userID)
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.PropertyID != nil {
		q = q.Where("property_id = ?", *f.PropertyID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.DateFrom != nil {
		q = q.Where("date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("date <= ?", *f.DateTo)
	}

	var expenses []models.Expense
	err := f.Page.apply(q).Order("date DESC, created_at DESC").Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) Get(userID uint, id string) (*models.Expense, error) {
	var e models.Expense
	if err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&e).Error; err != nil {
		return nil, notFound(err, "expense", id)
	}
	return &e, nil
}

func (r *ExpenseRepository) Create(e *models.Expense) error {
	if e.Status == "" {
		e.Status = models.ExpenseStatusPending
	}
	return r.db.Create(e).Error
}

func (r *ExpenseRepository) Save(e *models.Expense) error {
	return r.db.Save(e).Error
}

func (r *ExpenseRepository) Delete(userID uint, id string) error {
	result := r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&models.Expense{})
	return deleted(result, "expense", id)
}

// Categories returns the distinct categories the user has recorded
func (r *ExpenseRepository) Categories(userID uint) ([]string, error) {
	var categories []string
	err := r.db.Model(&models.Expense{}).
		Where("user_id = ?", userID).
		Distinct().Order("category").Pluck("category", &categories).Error
	return categories, err
}
