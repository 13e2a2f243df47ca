package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"rental-manager/internal/auth"
	"rental-manager/internal/models"
	"rental-manager/internal/repository"
	"rental-manager/internal/upload"
)

type emergencyContact struct {
	Name         string `json:"name" binding:"required,max=255"`
	Phone        string `json:"phone" binding:"required,max=20"`
	Relationship string `json:"relationship" binding:"required,max=100"`
}

func (e *emergencyContact) column() datatypes.JSONType[models.EmergencyContact] {
	return datatypes.NewJSONType(models.EmergencyContact{
		Name:         e.Name,
		Phone:        e.Phone,
		Relationship: e.Relationship,
	})
}

type tenantRequest struct {
	Name             string                  `json:"name" binding:"required,max=255"`
	Email            string                  `json:"email" binding:"required,email,max=255"`
	Phone            string                  `json:"phone" binding:"required,max=20"`
	CPFCNPJ          string                  `json:"cpf_cnpj" binding:"required,max=18"`
	BirthDate        *models.Date            `json:"birth_date"`
	Profession       string                  `json:"profession" binding:"required,max=100"`
	EmergencyContact *emergencyContact       `json:"emergency_contact" binding:"omitempty"`
	Documents        []models.TenantDocument `json:"documents" binding:"omitempty,dive"`
	Status           models.TenantStatus     `json:"status" binding:"omitempty,oneof=active inactive"`
}

type tenantUpdate struct {
	Name             *string                 `json:"name" binding:"omitempty,min=1,max=255"`
	Email            *string                 `json:"email" binding:"omitempty,email,max=255"`
	Phone            *string                 `json:"phone" binding:"omitempty,min=1,max=20"`
	CPFCNPJ          *string                 `json:"cpf_cnpj" binding:"omitempty,min=1,max=18"`
	BirthDate        *models.Date            `json:"birth_date"`
	Profession       *string                 `json:"profession" binding:"omitempty,min=1,max=100"`
	EmergencyContact *emergencyContact       `json:"emergency_contact" binding:"omitempty"`
	Documents        []models.TenantDocument `json:"documents" binding:"omitempty,dive"`
	Status           *models.TenantStatus    `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (u *tenantUpdate) apply(t *models.Tenant) {
	setIf(&t.Name, u.Name)
	setIf(&t.Email, u.Email)
	setIf(&t.Phone, u.Phone)
	setIf(&t.CPFCNPJ, u.CPFCNPJ)
	setIf(&t.Profession, u.Profession)
	setIf(&t.Status, u.Status)
	if u.BirthDate != nil {
		t.BirthDate = u.BirthDate
	}
	if u.EmergencyContact != nil {
		t.EmergencyContact = u.EmergencyContact.column()
	}
	if u.Documents != nil {
		t.Documents = u.Documents
	}
}

// ListTenants returns the caller's tenants matching the query filters
func (h *Handler) ListTenants(c *gin.Context) {
	var f repository.TenantFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		invalidInput(c, err)
		return
	}
	tenants, err := repository.NewTenantRepository(h.session(c)).List(auth.UserID(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenants)
}

func (h *Handler) GetTenant(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	t, err := repository.NewTenantRepository(h.session(c)).Get(auth.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) CreateTenant(c *gin.Context) {
	var req tenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	t := &models.Tenant{
		UserID:     auth.UserID(c),
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		CPFCNPJ:    req.CPFCNPJ,
		BirthDate:  req.BirthDate,
		Profession: req.Profession,
		Documents:  req.Documents,
		Status:     req.Status,
	}
	if t.Status == "" {
		t.Status = models.TenantStatusActive
	}
	if req.EmergencyContact != nil {
		t.EmergencyContact = req.EmergencyContact.column()
	}
	if t.Documents == nil {
		t.Documents = datatypes.JSONSlice[models.TenantDocument]{}
	}

	if err := repository.NewTenantRepository(h.session(c)).Create(t); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateTenant(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req tenantUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	repo := repository.NewTenantRepository(h.session(c))
	t, err := repo.Get(auth.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	req.apply(t)
	if err := repo.Save(t); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTenant(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := repository.NewTenantRepository(h.session(c)).Delete(auth.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "tenant deleted"})
}

// UploadTenantDocument stores the multipart "file" and records it on the
// tenant with the "type" form value (identity, contract or other)
func (h *Handler) UploadTenantDocument(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var form struct {
		Type string `form:"type" binding:"omitempty,oneof=identity contract other"`
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

	repo := repository.NewTenantRepository(h.session(c))
	t, err := repo.Get(auth.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	f, err := h.storage.Save(fh, "tenants", upload.KindDocument)
	if err != nil {
		respondError(c, err)
		return
	}

	doc := models.TenantDocument{
		ID:   uuid.NewString(),
		Name: form.Name,
		Type: form.Type,
		URL:  f.URL,
	}
	if doc.Name == "" {
		doc.Name = f.OriginalFilename
	}
	if doc.Type == "" {
		doc.Type = models.DocumentTypeOther
	}
	t.Documents = append(t.Documents, doc)

	if err := repo.Save(t); err != nil {
		h.discard([]*upload.File{f})
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tenant":   t,
		"document": doc,
		"file":     f,
	})
}
