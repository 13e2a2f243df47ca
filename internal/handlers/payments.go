package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rental-manager/internal/auth"
	"rental-manager/internal/billing"
	"rental-manager/internal/lifecycle"
	"rental-manager/internal/models"
	"rental-manager/internal/notify"
	"rental-manager/internal/repository"
)

type paymentRequest struct {
	PropertyID    uint                 `json:"property_id" binding:"required"`
	TenantID      uint                 `json:"tenant_id" binding:"required"`
	ContractID    uint                 `json:"contract_id" binding:"required"`
	DueDate       models.Date          `json:"due_date" binding:"required"`
	PaymentDate   *models.Date         `json:"payment_date"`
	Amount        decimal.Decimal      `json:"amount" binding:"required,gt=0"`
	FineAmount    decimal.Decimal      `json:"fine_amount" binding:"gte=0"`
	TotalAmount   decimal.Decimal      `json:"total_amount" binding:"required,gt=0"`
	Status        models.PaymentStatus `json:"status" binding:"required,oneof=pending paid overdue partial"`
	PaymentMethod string               `json:"payment_method" binding:"omitempty,oneof=cash transfer pix check card"`
	Description   string               `json:"description"`
}

type paymentUpdate struct {
	DueDate       *models.Date          `json:"due_date"`
	PaymentDate   *models.Date          `json:"payment_date"`
	Amount        *decimal.Decimal      `json:"amount" binding:"omitempty,gt=0"`
	FineAmount    *decimal.Decimal      `json:"fine_amount" binding:"omitempty,gte=0"`
	TotalAmount   *decimal.Decimal      `json:"total_amount" binding:"omitempty,gt=0"`
	Status        *models.PaymentStatus `json:"status" binding:"omitempty,oneof=pending paid overdue partial"`
	PaymentMethod *string               `json:"payment_method" binding:"omitempty,oneof=cash transfer pix check card"`
	Description   *string               `json:"description"`
}

func (u *paymentUpdate) apply(p *models.Payment) {
	setIf(&p.DueDate, u.DueDate)
	setIf(&p.Amount, u.Amount)
	setIf(&p.FineAmount, u.FineAmount)
	setIf(&p.TotalAmount, u.TotalAmount)
	setIf(&p.Status, u.Status)
	setIf(&p.PaymentMethod, u.PaymentMethod)
	setIf(&p.Description, u.Description)
	if u.PaymentDate != nil {
		p.PaymentDate = u.PaymentDate
	}
}

type calculateRequest struct {
	ContractID  uint             `json:"contract_id" binding:"required"`
	DueDate     models.Date      `json:"due_date" binding:"required"`
	PaymentDate *models.Date     `json:"payment_date"`
	PaidAmount  *decimal.Decimal `json:"paid_amount" binding:"omitempty,gt=0"`
}

type registerRequest struct {
	ContractID    uint            `json:"contract_id" binding:"required"`
	DueDate       models.Date     `json:"due_date" binding:"required"`
	PaymentDate   models.Date     `json:"payment_date" binding:"required"`
	PaidAmount    decimal.Decimal `json:"paid_amount" binding:"required,gt=0"`
	PaymentMethod string          `json:"payment_method" binding:"required,oneof=cash transfer pix check card"`
	Description   string          `json:"description"`
}

type bulkRequest struct {
	ContractID uint            `json:"contract_id" binding:"required"`
	Months     int             `json:"months" binding:"required,min=1,max=12"`
	StartDate  models.Date     `json:"start_date" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required,gt=0"`
}

type confirmRequest struct {
	PaymentDate   *models.Date     `json:"payment_date"`
	AmountPaid    *decimal.Decimal `json:"amount_paid" binding:"omitempty,gt=0"`
	PaymentMethod string           `json:"payment_method" binding:"omitempty,oneof=cash transfer pix check card"`
}

// ListPayments returns the caller's payments matching the query filters
func (h *Handler) ListPayments(c *gin.Context) {
	var f repository.PaymentFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		invalidInput(c, err)
		return
	}
	var ok bool
	if f.DueFrom, ok = queryDate(c, "due_from"); !ok {
		return
	}
	if f.DueTo, ok = queryDate(c, "due_to"); !ok {
		return
	}

	payments, err := repository.NewPaymentRepository(h.session(c)).List(auth.UserID(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *Handler) GetPayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := repository.NewPaymentRepository(h.session(c)).Get(auth.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreatePayment stores a payment with caller-supplied amounts
func (h *Handler) CreatePayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	userID := auth.UserID(c)
	p := &models.Payment{
		UserID:        userID,
		PropertyID:    req.PropertyID,
		TenantID:      req.TenantID,
		ContractID:    req.ContractID,
		DueDate:       req.DueDate,
		PaymentDate:   req.PaymentDate,
		Amount:        req.Amount,
		FineAmount:    req.FineAmount,
		TotalAmount:   req.TotalAmount,
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
	}

	err := h.session(c).Transaction(func(tx *gorm.DB) error {
		if _, err := repository.NewContractRepository(tx).Get(userID, req.ContractID); err != nil {
			return err
		}
		return repository.NewPaymentRepository(tx).Create(p)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// UpdatePayment applies the fields present in the body. A status change is
// kept in the payment's history.
func (h *Handler) UpdatePayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req paymentUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	userID := auth.UserID(c)
	updater := lifecycle.NewUpdater(h.session(c), h.clock)
	var p *models.Payment
	err := h.session(c).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewPaymentRepository(tx)
		var err error
		p, err = repo.Get(userID, id)
		if err != nil {
			return err
		}
		old := p.Status
		req.apply(p)
		if err := repo.Save(p); err != nil {
			return err
		}
		return updater.Record(tx, p, old, models.ChangeSourceManual)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := repository.NewPaymentRepository(h.session(c)).Delete(auth.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment deleted"})
}

// CalculatePayment previews fine, interest and status without storing anything
func (h *Handler) CalculatePayment(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	contract, err := repository.NewContractRepository(h.session(c)).Get(auth.UserID(c), req.ContractID)
	if err != nil {
		respondError(c, err)
		return
	}
	values := billing.NewCalculator(h.clock).CalculatePaymentValues(contract, req.DueDate, req.PaymentDate, req.PaidAmount)
	c.JSON(http.StatusOK, values)
}

// RegisterPayment records a received payment, pricing fine and interest from
// the contract, and notifies the caller
func (h *Handler) RegisterPayment(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	db := h.session(c)
	userID := auth.UserID(c)
	contract, err := repository.NewContractRepository(db).Get(userID, req.ContractID)
	if err != nil {
		respondError(c, err)
		return
	}

	paymentDate := req.PaymentDate
	values := billing.NewCalculator(h.clock).CalculatePaymentValues(contract, req.DueDate, &paymentDate, &req.PaidAmount)
	p := &models.Payment{
		UserID:        userID,
		PropertyID:    contract.PropertyID,
		TenantID:      contract.TenantID,
		ContractID:    contract.ID,
		DueDate:       req.DueDate,
		PaymentDate:   &paymentDate,
		Amount:        req.PaidAmount,
		FineAmount:    values.FineAmount.Add(values.InterestAmount),
		TotalAmount:   values.TotalExpected,
		Status:        values.Status,
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
	}
	if err := repository.NewPaymentRepository(db).Create(p); err != nil {
		respondError(c, err)
		return
	}

	h.notifyReceived(db, p)
	c.JSON(http.StatusCreated, p)
}

// BulkCreatePayments creates one pending payment per month starting at start_date
func (h *Handler) BulkCreatePayments(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	userID := auth.UserID(c)
	var payments []models.Payment
	err := h.session(c).Transaction(func(tx *gorm.DB) error {
		contract, err := repository.NewContractRepository(tx).Get(userID, req.ContractID)
		if err != nil {
			return err
		}
		payments = make([]models.Payment, 0, req.Months)
		for i := 0; i < req.Months; i++ {
			payments = append(payments, models.Payment{
				UserID:      userID,
				PropertyID:  contract.PropertyID,
				TenantID:    contract.TenantID,
				ContractID:  contract.ID,
				DueDate:     billing.AddMonths(req.StartDate, i),
				Amount:      req.Amount,
				FineAmount:  decimal.Zero,
				TotalAmount: req.Amount,
				Status:      models.PaymentStatusPending,
			})
		}
		return repository.NewPaymentRepository(tx).CreateBatch(payments)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	log.WithFields(log.Fields{"contract_id": req.ContractID, "months": req.Months}).Info("Payments: bulk created")
	c.JSON(http.StatusCreated, payments)
}

// ConfirmPayment records money received for a payment. Payment date defaults
// to today and amount_paid to the balance still open on that date; a partial
// payment accumulates installments.
func (h *Handler) ConfirmPayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req confirmRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err)
			return
		}
	}

	db := h.session(c)
	userID := auth.UserID(c)
	calc := billing.NewCalculator(h.clock)
	updater := lifecycle.NewUpdater(db, h.clock)

	var p *models.Payment
	err := db.Transaction(func(tx *gorm.DB) error {
		payments := repository.NewPaymentRepository(tx)
		var err error
		p, err = payments.Get(userID, id)
		if err != nil {
			return err
		}
		if err := billing.CanConfirm(p.Status); err != nil {
			return err
		}
		contract, err := repository.NewContractRepository(tx).Get(userID, p.ContractID)
		if err != nil {
			return err
		}

		paymentDate := calc.Today()
		if req.PaymentDate != nil {
			paymentDate = *req.PaymentDate
		}
		base := p.BaseAmount()
		received := decimal.Zero
		if prior := p.PaidAmount(); prior != nil {
			received = *prior
		}
		values := calc.ValuesForBase(base, contract, p.DueDate, &paymentDate, &received)
		paid := received.Add(values.RemainingAmount)
		if req.AmountPaid != nil {
			paid = received.Add(*req.AmountPaid)
		}
		values = calc.ValuesForBase(base, contract, p.DueDate, &paymentDate, &paid)

		old := p.Status
		p.PaymentDate = &paymentDate
		p.Amount = paid
		p.FineAmount = values.FineAmount.Add(values.InterestAmount)
		p.TotalAmount = values.TotalExpected
		p.Status = values.Status
		if req.PaymentMethod != "" {
			p.PaymentMethod = req.PaymentMethod
		}
		if err := payments.Save(p); err != nil {
			return err
		}
		return updater.Record(tx, p, old, models.ChangeSourceConfirm)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifyReceived(db, p)
	c.JSON(http.StatusOK, p)
}

// OverduePayments lists unsettled payments past their due date
func (h *Handler) OverduePayments(c *gin.Context) {
	today := billing.NewCalculator(h.clock).Today()
	payments, err := repository.NewPaymentRepository(h.session(c)).Overdue(auth.UserID(c), today)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *Handler) PendingPayments(c *gin.Context) {
	payments, err := repository.NewPaymentRepository(h.session(c)).Pending(auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// UpdatePaymentStatuses recomputes every payment status of the caller, or
// only ?payment_id when given
func (h *Handler) UpdatePaymentStatuses(c *gin.Context) {
	paymentID, ok := queryUint(c, "payment_id")
	if !ok {
		return
	}

	updater := lifecycle.NewUpdater(h.session(c), h.clock)
	if paymentID != nil {
		status, err := updater.UpdateOne(auth.UserID(c), *paymentID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payment_id": *paymentID, "status": status})
		return
	}

	changes, err := updater.UpdateStatuses(auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, changes)
}

// PaymentHistory returns the recorded status transitions of a payment
func (h *Handler) PaymentHistory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	changes, err := lifecycle.NewUpdater(h.session(c), h.clock).History(auth.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payment_id": id,
		"changes":    changes,
		"count":      len(changes),
	})
}

// notifyReceived is best effort: the payment is already stored
func (h *Handler) notifyReceived(db *gorm.DB, p *models.Payment) {
	if _, err := notify.NewGenerator(db, h.clock, h.windows()).PaymentReceived(p); err != nil {
		log.WithError(err).WithField("payment_id", p.ID).Warn("Notify: failed to create payment received notification")
	}
}
