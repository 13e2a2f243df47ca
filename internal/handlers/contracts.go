package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rental-manager/internal/auth"
	"rental-manager/internal/billing"
	"rental-manager/internal/models"
	"rental-manager/internal/repository"
	"rental-manager/internal/upload"
)

type contractRequest struct {
	Title        string                `json:"title" binding:"required,max=255"`
	PropertyID   uint                  `json:"property_id" binding:"required"`
	TenantID     uint                  `json:"tenant_id" binding:"required"`
	StartDate    models.Date           `json:"start_date" binding:"required"`
	EndDate      models.Date           `json:"end_date" binding:"required"`
	Rent         decimal.Decimal       `json:"rent" binding:"required,gt=0"`
	Deposit      decimal.Decimal       `json:"deposit" binding:"gte=0"`
	InterestRate decimal.Decimal       `json:"interest_rate" binding:"gte=0"`
	FineRate     decimal.Decimal       `json:"fine_rate" binding:"gte=0"`
	Status       models.ContractStatus `json:"status" binding:"omitempty,oneof=active expired terminated"`
	DocumentURL  string                `json:"document_url" binding:"max=500"`
}

type contractUpdate struct {
	Title        *string                `json:"title" binding:"omitempty,min=1,max=255"`
	StartDate    *models.Date           `json:"start_date"`
	EndDate      *models.Date           `json:"end_date"`
	Rent         *decimal.Decimal       `json:"rent" binding:"omitempty,gt=0"`
	Deposit      *decimal.Decimal       `json:"deposit" binding:"omitempty,gte=0"`
	InterestRate *decimal.Decimal       `json:"interest_rate" binding:"omitempty,gte=0"`
	FineRate     *decimal.Decimal       `json:"fine_rate" binding:"omitempty,gte=0"`
	Status       *models.ContractStatus `json:"status" binding:"omitempty,oneof=active expired terminated"`
	DocumentURL  *string                `json:"document_url" binding:"omitempty,max=500"`
}

func (u *contractUpdate) apply(c *models.Contract) {
	setIf(&c.Title, u.Title)
	setIf(&c.StartDate, u.StartDate)
	setIf(&c.EndDate, u.EndDate)
	setIf(&c.Rent, u.Rent)
	setIf(&c.Deposit, u.Deposit)
	setIf(&c.InterestRate, u.InterestRate)
	setIf(&c.FineRate, u.FineRate)
	setIf(&c.Status, u.Status)
	setIf(&c.DocumentURL, u.DocumentURL)
}

type renewRequest struct {
	NewEndDate models.Date      `json:"new_end_date" binding:"required"`
	NewRent    *decimal.Decimal `json:"new_rent" binding:"omitempty,gt=0"`
}

// ListContracts returns the caller's contracts matching the query filters
func (h *Handler) ListContracts(c *gin.Context) {
	var f repository.ContractFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		invalidInput(c, err)
		return
	}
	contracts, err := repository.NewContractRepository(h.session(c)).List(auth.UserID(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

func (h *Handler) GetContract(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	contract, err := repository.NewContractRepository(h.session(c)).Get(auth.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

// CreateContract stores a contract once the property is free for the period
func (h *Handler) CreateContract(c *gin.Context) {
	var req contractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	if !req.EndDate.After(req.StartDate) {
		invalidInput(c, errors.New("end_date must be after start_date"))
		return
	}

	userID := auth.UserID(c)
	contract := &models.Contract{
		UserID:       userID,
		Title:        req.Title,
		PropertyID:   req.PropertyID,
		TenantID:     req.TenantID,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Rent:         req.Rent,
		Deposit:      req.Deposit,
		InterestRate: req.InterestRate,
		FineRate:     req.FineRate,
		Status:       req.Status,
		DocumentURL:  req.DocumentURL,
	}
	if contract.Status == "" {
		contract.Status = models.ContractStatusActive
	}

	err := h.session(c).Transaction(func(tx *gorm.DB) error {
		if _, err := repository.NewPropertyRepository(tx).Get(userID, req.PropertyID); err != nil {
			return err
		}
		if _, err := repository.NewTenantRepository(tx).Get(userID, req.TenantID); err != nil {
			return err
		}
		contracts := repository.NewContractRepository(tx)
		if err := contracts.CheckAvailability(userID, req.PropertyID, req.StartDate, req.EndDate, 0); err != nil {
			return err
		}
		return contracts.Create(contract)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

func (h *Handler) UpdateContract(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req contractUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	userID := auth.UserID(c)
	var contract *models.Contract
	err := h.session(c).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewContractRepository(tx)
		var err error
		contract, err = repo.Get(userID, id)
		if err != nil {
			return err
		}
		req.apply(contract)
		if !contract.EndDate.After(contract.StartDate) {
			return badRequest("end_date must be after start_date")
		}
		if contract.IsActive() && (req.StartDate != nil || req.EndDate != nil || req.Status != nil) {
			if err := repo.CheckAvailability(userID, contract.PropertyID, contract.StartDate, contract.EndDate, contract.ID); err != nil {
				return err
			}
		}
		return repo.Save(contract)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) DeleteContract(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := repository.NewContractRepository(h.session(c)).Delete(auth.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "contract deleted"})
}

// ExpiringContracts lists active contracts ending within ?days
func (h *Handler) ExpiringContracts(c *gin.Context) {
	def := h.cfg.Notifications.ContractsExpiringDays
	if def <= 0 {
		def = 30
	}
	days, ok := queryInt(c, "days", def, 1, 365)
	if !ok {
		return
	}
	today := billing.NewCalculator(h.clock).Today()
	contracts, err := repository.NewContractRepository(h.session(c)).Expiring(auth.UserID(c), today, days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

func (h *Handler) ActiveContracts(c *gin.Context) {
	contracts, err := repository.NewContractRepository(h.session(c)).Active(auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

// RenewContract extends an active contract, optionally with a new rent
func (h *Handler) RenewContract(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req renewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	userID := auth.UserID(c)
	var contract *models.Contract
	err := h.session(c).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewContractRepository(tx)
		var err error
		contract, err = repo.Get(userID, id)
		if err != nil {
			return err
		}
		if !contract.IsActive() {
			return billing.ErrInvalidTransition
		}
		if !req.NewEndDate.After(contract.EndDate) {
			return badRequest("new_end_date must be after the current end date %s", contract.EndDate)
		}
		if err := repo.CheckAvailability(userID, contract.PropertyID, contract.EndDate.AddDays(1), req.NewEndDate, contract.ID); err != nil {
			return err
		}
		contract.EndDate = req.NewEndDate
		if req.NewRent != nil {
			contract.Rent = *req.NewRent
		}
		return repo.Save(contract)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	log.WithFields(log.Fields{"contract_id": contract.ID, "end_date": contract.EndDate.String()}).Info("Contract renewed")
	c.JSON(http.StatusOK, contract)
}

// TerminateContract ends an active contract
func (h *Handler) TerminateContract(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	repo := repository.NewContractRepository(h.session(c))
	contract, err := repo.Get(auth.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !contract.IsActive() {
		respondError(c, billing.ErrInvalidTransition)
		return
	}
	contract.Status = models.ContractStatusTerminated
	if err := repo.Save(contract); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

// UploadContractDocument stores the signed contract and replaces the
// previous document
func (h *Handler) UploadContractDocument(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		invalidInput(c, err)
		return
	}

	repo := repository.NewContractRepository(h.session(c))
	contract, err := repo.Get(auth.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	f, err := h.storage.Save(fh, "contracts", upload.KindDocument)
	if err != nil {
		respondError(c, err)
		return
	}
	previous := contract.DocumentURL
	contract.DocumentURL = f.URL
	if err := repo.Save(contract); err != nil {
		h.discard([]*upload.File{f})
		respondError(c, err)
		return
	}
	if previous != "" {
		if err := h.storage.Delete(previous); err != nil {
			log.WithError(err).WithField("url", previous).Warn("[upload] failed to remove replaced document")
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"contract": contract,
		"file":     f,
	})
}
