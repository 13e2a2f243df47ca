package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"rental-manager/internal/auth"
	"rental-manager/internal/models"
	"rental-manager/internal/repository"
	"rental-manager/internal/search"
	"rental-manager/internal/upload"
)

type propertyRequest struct {
	Name          string                `json:"name" binding:"required,max=255"`
	Address       string                `json:"address" binding:"required,max=500"`
	Neighborhood  string                `json:"neighborhood" binding:"required,max=100"`
	City          string                `json:"city" binding:"required,max=100"`
	State         string                `json:"state" binding:"required,max=2"`
	ZipCode       string                `json:"zip_code" binding:"required,max=10"`
	Type          models.PropertyType   `json:"type" binding:"required,oneof=apartment house commercial studio"`
	Area          decimal.Decimal       `json:"area" binding:"required,gt=0"`
	Bedrooms      int                   `json:"bedrooms" binding:"gte=0"`
	Bathrooms     int                   `json:"bathrooms" binding:"gte=0"`
	ParkingSpaces int                   `json:"parking_spaces" binding:"gte=0"`
	Rent          decimal.Decimal       `json:"rent" binding:"required,gt=0"`
	Status        models.PropertyStatus `json:"status" binding:"omitempty,oneof=vacant occupied maintenance inactive"`
	Description   string                `json:"description"`
	Images        []string              `json:"images"`
	IsResidential *bool                 `json:"is_residential"`
	TenantID      *uint                 `json:"tenant_id"`
}

func (r *propertyRequest) model(userID uint) *models.Property {
	p := &models.Property{
		UserID:        userID,
		Name:          r.Name,
		Address:       r.Address,
		Neighborhood:  r.Neighborhood,
		City:          r.City,
		State:         r.State,
		ZipCode:       r.ZipCode,
		Type:          r.Type,
		Area:          r.Area,
		Bedrooms:      r.Bedrooms,
		Bathrooms:     r.Bathrooms,
		ParkingSpaces: r.ParkingSpaces,
		Rent:          r.Rent,
		Status:        r.Status,
		Description:   r.Description,
		Images:        r.Images,
		IsResidential: true,
		TenantID:      r.TenantID,
	}
	if p.Status == "" {
		p.Status = models.PropertyStatusVacant
	}
	if r.IsResidential != nil {
		p.IsResidential = *r.IsResidential
	}
	return p
}

type propertyUpdate struct {
	Name          *string                `json:"name" binding:"omitempty,min=1,max=255"`
	Address       *string                `json:"address" binding:"omitempty,min=1,max=500"`
	Neighborhood  *string                `json:"neighborhood" binding:"omitempty,max=100"`
	City          *string                `json:"city" binding:"omitempty,max=100"`
	State         *string                `json:"state" binding:"omitempty,max=2"`
	ZipCode       *string                `json:"zip_code" binding:"omitempty,max=10"`
	Type          *models.PropertyType   `json:"type" binding:"omitempty,oneof=apartment house commercial studio"`
	Area          *decimal.Decimal       `json:"area" binding:"omitempty,gt=0"`
	Bedrooms      *int                   `json:"bedrooms" binding:"omitempty,gte=0"`
	Bathrooms     *int                   `json:"bathrooms" binding:"omitempty,gte=0"`
	ParkingSpaces *int                   `json:"parking_spaces" binding:"omitempty,gte=0"`
	Rent          *decimal.Decimal       `json:"rent" binding:"omitempty,gt=0"`
	Status        *models.PropertyStatus `json:"status" binding:"omitempty,oneof=vacant occupied maintenance inactive"`
	Description   *string                `json:"description"`
	Images        []string               `json:"images"`
	IsResidential *bool                  `json:"is_residential"`
	TenantID      *uint                  `json:"tenant_id"`
}

func (u *propertyUpdate) apply(p *models.Property) {
	setIf(&p.Name, u.Name)
	setIf(&p.Address, u.Address)
	setIf(&p.Neighborhood, u.Neighborhood)
	setIf(&p.City, u.City)
	setIf(&p.State, u.State)
	setIf(&p.ZipCode, u.ZipCode)
	setIf(&p.Type, u.Type)
	setIf(&p.Area, u.Area)
	setIf(&p.Bedrooms, u.Bedrooms)
	setIf(&p.Bathrooms, u.Bathrooms)
	setIf(&p.ParkingSpaces, u.ParkingSpaces)
	setIf(&p.Rent, u.Rent)
	setIf(&p.Status, u.Status)
	setIf(&p.Description, u.Description)
	setIf(&p.IsResidential, u.IsResidential)
	if u.Images != nil {
		p.Images = u.Images
	}
	if u.TenantID != nil {
		p.TenantID = u.TenantID
	}
}

// setIf copies *src into dst when the request carried the field
func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// ListProperties returns the caller's properties matching the query filters
func (h *Handler) ListProperties(c *gin.Context) {
	var f repository.PropertyFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		invalidInput(c, err)
		return
	}

	properties, err := repository.NewPropertyRepository(h.session(c)).List(auth.UserID(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

// GetProperty returns one property
func (h *Handler) GetProperty(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := repository.NewPropertyRepository(h.session(c)).Get(auth.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateProperty stores a property and adds it to the search index
func (h *Handler) CreateProperty(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	p := req.model(auth.UserID(c))
	if err := repository.NewPropertyRepository(h.session(c)).Create(p); err != nil {
		respondError(c, err)
		return
	}
	h.reindex(p)
	c.JSON(http.StatusCreated, p)
}

// UpdateProperty applies the fields present in the body
func (h *Handler) UpdateProperty(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req propertyUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	repo := repository.NewPropertyRepository(h.session(c))
	p, err := repo.Get(auth.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	req.apply(p)
	if err := repo.Save(p); err != nil {
		respondError(c, err)
		return
	}
	h.reindex(p)
	c.JSON(http.StatusOK, p)
}

// DeleteProperty removes a property and its index entry
func (h *Handler) DeleteProperty(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := repository.NewPropertyRepository(h.session(c)).Delete(auth.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	if err := h.index.DeleteProperty(id); err != nil {
		log.WithError(err).WithField("property_id", id).Warn("Search: failed to remove property from index")
	}
	c.JSON(http.StatusOK, gin.H{"message": "property deleted"})
}

// UploadPropertyImages stores the images of the multipart "files" field and
// appends their URLs to the property
func (h *Handler) UploadPropertyImages(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		invalidInput(c, err)
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		invalidInput(c, errors.New("no files uploaded"))
		return
	}

	repo := repository.NewPropertyRepository(h.session(c))
	p, err := repo.Get(auth.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	stored := make([]*upload.File, 0, len(files))
	for _, fh := range files {
		f, err := h.storage.Save(fh, "properties", upload.KindImage)
		if err != nil {
			h.discard(stored)
			respondError(c, err)
			return
		}
		stored = append(stored, f)
		p.AddImage(f.URL)
	}

	if err := repo.Save(p); err != nil {
		h.discard(stored)
		respondError(c, err)
		return
	}
	h.reindex(p)
	c.JSON(http.StatusOK, gin.H{
		"property": p,
		"files":    stored,
	})
}

type propertySearchQuery struct {
	Query       string   `form:"q"`
	Type        string   `form:"type" binding:"omitempty,oneof=apartment house commercial studio"`
	Status      string   `form:"status" binding:"omitempty,oneof=vacant occupied maintenance inactive"`
	City        string   `form:"city"`
	MinRent     *float64 `form:"min_rent"`
	MaxRent     *float64 `form:"max_rent"`
	MinBedrooms *int     `form:"min_bedrooms" binding:"omitempty,gte=0"`
	SortBy      string   `form:"sort" binding:"omitempty,oneof=rent:asc rent:desc created_at:asc created_at:desc"`
	Limit       int64    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset      int64    `form:"offset" binding:"omitempty,min=0"`
}

// SearchProperties runs a full-text search over the caller's properties.
// Without a search index it falls back to a database match on name,
// address and neighborhood.
func (h *Handler) SearchProperties(c *gin.Context) {
	var q propertySearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidInput(c, err)
		return
	}
	userID := auth.UserID(c)
	repo := repository.NewPropertyRepository(h.session(c))

	ids, err := h.index.Search(userID, search.FilterParams{
		Query:       q.Query,
		Type:        q.Type,
		Status:      q.Status,
		City:        q.City,
		MinRent:     q.MinRent,
		MaxRent:     q.MaxRent,
		MinBedrooms: q.MinBedrooms,
		SortBy:      q.SortBy,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		if !errors.Is(err, search.ErrDisabled) && !errors.Is(err, search.ErrCircuitOpen) {
			log.WithError(err).Warn("Search: index query failed, falling back to database")
		}
		properties, err := repo.List(userID, q.databaseFilter())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"hits": properties, "total": len(properties), "source": "database"})
		return
	}

	properties, err := repo.List(userID, repository.PropertyFilter{IDs: ids, Page: repository.Page{Limit: len(ids)}})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hits": rankByIDs(properties, ids), "total": len(ids), "source": "index"})
}

func (q *propertySearchQuery) databaseFilter() repository.PropertyFilter {
	f := repository.PropertyFilter{
		Query:       q.Query,
		City:        q.City,
		MinBedrooms: q.MinBedrooms,
		Page:        repository.Page{Skip: int(q.Offset), Limit: int(q.Limit)},
	}
	if q.Type != "" {
		t := models.PropertyType(q.Type)
		f.Type = &t
	}
	if q.Status != "" {
		s := models.PropertyStatus(q.Status)
		f.Status = &s
	}
	if q.MinRent != nil {
		d := decimal.NewFromFloat(*q.MinRent)
		f.MinRent = &d
	}
	if q.MaxRent != nil {
		d := decimal.NewFromFloat(*q.MaxRent)
		f.MaxRent = &d
	}
	return f
}

// rankByIDs orders properties as the search engine ranked them
func rankByIDs(properties []models.Property, ids []uint) []models.Property {
	byID := make(map[uint]models.Property, len(properties))
	for _, p := range properties {
		byID[p.ID] = p
	}
	ranked := make([]models.Property, 0, len(properties))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ranked = append(ranked, p)
		}
	}
	return ranked
}

func (h *Handler) reindex(p *models.Property) {
	if err := h.index.IndexProperty(p); err != nil {
		log.WithError(err).WithField("property_id", p.ID).Warn("Search: failed to index property")
	}
}

// discard removes files stored before a later step of the request failed
func (h *Handler) discard(files []*upload.File) {
	for _, f := range files {
		if err := h.storage.Delete(f.URL); err != nil {
			log.WithError(err).WithField("url", f.URL).Warn("[upload] failed to remove orphaned file")
		}
	}
}
