package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"rental-manager/internal/auth"
	"rental-manager/internal/models"
	"rental-manager/internal/repository"
	"rental-manager/internal/upload"
)

type expenseRequest struct {
	Type        models.ExpenseType       `json:"type" binding:"required,oneof=expense maintenance"`
	Category    string                   `json:"category" binding:"required,max=100"`
	Description string                   `json:"description" binding:"required"`
	Amount      decimal.Decimal          `json:"amount" binding:"required,gt=0"`
	Date        models.Date              `json:"date" binding:"required"`
	PropertyID  *uint                    `json:"property_id"`
	Status      models.ExpenseStatus     `json:"status" binding:"required,oneof=pending paid scheduled"`
	Priority    string                   `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Vendor      string                   `json:"vendor" binding:"max=255"`
	Number      string                   `json:"number" binding:"max=20"`
	Receipt     string                   `json:"receipt" binding:"max=500"`
	Documents   []models.ExpenseDocument `json:"documents"`
}

type expenseUpdate struct {
	Type        *models.ExpenseType      `json:"type" binding:"omitempty,oneof=expense maintenance"`
	Category    *string                  `json:"category" binding:"omitempty,min=1,max=100"`
	Description *string                  `json:"description" binding:"omitempty,min=1"`
	Amount      *decimal.Decimal         `json:"amount" binding:"omitempty,gt=0"`
	Date        *models.Date             `json:"date"`
	PropertyID  *uint                    `json:"property_id"`
	Status      *models.ExpenseStatus    `json:"status" binding:"omitempty,oneof=pending paid scheduled"`
	Priority    *string                  `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Vendor      *string                  `json:"vendor" binding:"omitempty,max=255"`
	Number      *string                  `json:"number" binding:"omitempty,max=20"`
	Receipt     *string                  `json:"receipt" binding:"omitempty,max=500"`
	Documents   []models.ExpenseDocument `json:"documents"`
}

func (u *expenseUpdate) apply(e *models.Expense) {
	setIf(&e.Type, u.Type)
	setIf(&e.Category, u.Category)
	setIf(&e.Description, u.Description)
	setIf(&e.Amount, u.Amount)
	setIf(&e.Date, u.Date)
	setIf(&e.Status, u.Status)
	setIf(&e.Priority, u.Priority)
	setIf(&e.Vendor, u.Vendor)
	setIf(&e.Number, u.Number)
	setIf(&e.Receipt, u.Receipt)
	if u.PropertyID != nil {
		e.PropertyID = u.PropertyID
	}
	if u.Documents != nil {
		e.Documents = u.Documents
	}
}

// ListExpenses returns the caller's expenses matching the query filters
func (h *Handler) ListExpenses(c *gin.Context) {
	var f repository.ExpenseFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		invalidInput(c, err)
		return
	}
	var ok bool
	if f.DateFrom, ok = queryDate(c, "date_from"); !ok {
		return
	}
	if f.DateTo, ok = queryDate(c, "date_to"); !ok {
		return
	}

	expenses, err := repository.NewExpenseRepository(h.session(c)).List(auth.UserID(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func (h *Handler) GetExpense(c *gin.Context) {
	e, err := repository.NewExpenseRepository(h.session(c)).Get(auth.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) CreateExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	db := h.session(c)
	userID := auth.UserID(c)
	if req.PropertyID != nil {
		if _, err := repository.NewPropertyRepository(db).Get(userID, *req.PropertyID); err != nil {
			respondError(c, err)
			return
		}
	}

	e := &models.Expense{
		UserID:      userID,
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
		Date:        req.Date,
		PropertyID:  req.PropertyID,
		Status:      req.Status,
		Priority:    req.Priority,
		Vendor:      req.Vendor,
		Number:      req.Number,
		Receipt:     req.Receipt,
		Documents:   req.Documents,
	}
	if e.Documents == nil {
		e.Documents = datatypes.JSONSlice[models.ExpenseDocument]{}
	}
	if err := repository.NewExpenseRepository(db).Create(e); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *Handler) UpdateExpense(c *gin.Context) {
	var req expenseUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	db := h.session(c)
	userID := auth.UserID(c)
	repo := repository.NewExpenseRepository(db)
	e, err := repo.Get(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if req.PropertyID != nil {
		if _, err := repository.NewPropertyRepository(db).Get(userID, *req.PropertyID); err != nil {
			respondError(c, err)
			return
		}
	}
	req.apply(e)
	if err := repo.Save(e); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) DeleteExpense(c *gin.Context) {
	if err := repository.NewExpenseRepository(h.session(c)).Delete(auth.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "expense deleted"})
}

// ExpenseCategories lists the distinct categories the caller has used
func (h *Handler) ExpenseCategories(c *gin.Context) {
	categories, err := repository.NewExpenseRepository(h.session(c)).Categories(auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// UploadExpenseDocument attaches an invoice or receipt to the expense
func (h *Handler) UploadExpenseDocument(c *gin.Context) {
	var form struct {
		Type string `form:"type" binding:"omitempty,oneof=receipt invoice voucher other"`
		Name string `form:"name" binding:"max=255"`
	}
	if err := c.ShouldBind(&form); err != nil {
		invalidInput(c, err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		invalidInput(c, err)
		return
	}

	repo := repository.NewExpenseRepository(h.session(c))
	e, err := repo.Get(auth.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	f, err := h.storage.Save(fh, "expenses", upload.KindDocument)
	if err != nil {
		respondError(c, err)
		return
	}

	doc := models.ExpenseDocument{
		ID:   uuid.NewString(),
		Name: form.Name,
		URL:  f.URL,
		Type: form.Type,
	}
	if doc.Name == "" {
		doc.Name = f.OriginalFilename
	}
	if doc.Type == "" {
		doc.Type = "other"
	}
	e.Documents = append(e.Documents, doc)

	if err := repo.Save(e); err != nil {
		h.discard([]*upload.File{f})
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"expense":  e,
		"document": doc,
		"file":     f,
	})
}
