package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rental-manager/internal/auth"
	"rental-manager/internal/clock"
	"rental-manager/internal/config"
	"rental-manager/internal/models"
	"rental-manager/internal/search"
	"rental-manager/internal/testutil"
	"rental-manager/internal/upload"
)

const (
	owner    uint = 1
	stranger uint = 2
)

var today = clock.FixedDate(2025, time.March, 10)

type env struct {
	t  *testing.T
	db *gorm.DB
	h  *Handler
}

func newEnv(t *testing.T, index search.Index) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	cfg := config.DefaultConfig()
	cfg.Upload.Dir = t.TempDir()
	cfg.Upload.MaxSizeMB = 1
	storage := upload.NewStorage(cfg.Upload, today)

	return &env{t: t, db: db, h: NewHandler(db, cfg, today, storage, index)}
}

// router registers the routes under test with the caller fixed to userID
func (e *env) router(userID uint) *gin.Engine {
	h := e.h
	r := gin.New()
	api := r.Group("/", func(c *gin.Context) {
		auth.SetUserID(c, userID)
		c.Next()
	})

	api.GET("/properties", h.ListProperties)
	api.POST("/properties", h.CreateProperty)
	api.GET("/properties/search", h.SearchProperties)
	api.GET("/properties/:id", h.GetProperty)
	api.PUT("/properties/:id", h.UpdateProperty)
	api.DELETE("/properties/:id", h.DeleteProperty)
	api.POST("/properties/:id/images", h.UploadPropertyImages)

	api.POST("/contracts", h.CreateContract)
	api.POST("/contracts/:id/renew", h.RenewContract)
	api.POST("/contracts/:id/terminate", h.TerminateContract)

	api.GET("/payments", h.ListPayments)
	api.POST("/payments/register", h.RegisterPayment)
	api.POST("/payments/bulk", h.BulkCreatePayments)
	api.POST("/payments/:id/confirm", h.ConfirmPayment)
	api.GET("/payments/:id/history", h.PaymentHistory)

	api.GET("/notifications/unread-count", h.UnreadCount)
	api.POST("/notifications/process", h.ProcessNotifications)

	api.GET("/dashboard/revenue-chart", h.RevenueChart)
	api.GET("/dashboard/financial-overview", h.FinancialOverview)
	return r
}

func (e *env) do(userID uint, method, path string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router(userID).ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func date(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPropertyCRUD(t *testing.T) {
	e := newEnv(t, nil)

	body := gin.H{
		"name":         "Apto 302",
		"address":      "Rua XV de Novembro, 302",
		"neighborhood": "Centro",
		"city":         "Curitiba",
		"state":        "PR",
		"zip_code":     "80020-310",
		"type":         "apartment",
		"area":         65.5,
		"bedrooms":     2,
		"bathrooms":    1,
		"rent":         1800,
	}
	w := e.do(owner, http.MethodPost, "/properties", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Property
	decode(t, w, &created)
	assert.Equal(t, owner, created.UserID)
	assert.Equal(t, models.PropertyStatusVacant, created.Status)
	assert.True(t, created.IsResidential)
	assert.True(t, decimal.NewFromInt(1800).Equal(created.Rent))

	path := "/properties/" + itoa(created.ID)
	assert.Equal(t, http.StatusOK, e.do(owner, http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(stranger, http.MethodGet, path, nil).Code)

	w = e.do(owner, http.MethodPut, path, gin.H{"rent": 1900, "status": "maintenance"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Property
	decode(t, w, &updated)
	assert.True(t, decimal.NewFromInt(1900).Equal(updated.Rent))
	assert.Equal(t, models.PropertyStatusMaintenance, updated.Status)
	assert.Equal(t, "Apto 302", updated.Name)

	assert.Equal(t, http.StatusNotFound, e.do(stranger, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(owner, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(owner, http.MethodGet, path, nil).Code)
}

func TestPropertyValidation(t *testing.T) {
	e := newEnv(t, nil)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing name", gin.H{"address": "a", "neighborhood": "b", "city": "c", "state": "PR", "zip_code": "1", "type": "house", "area": 10, "rent": 100}},
		{"unknown type", gin.H{"name": "x", "address": "a", "neighborhood": "b", "city": "c", "state": "PR", "zip_code": "1", "type": "castle", "area": 10, "rent": 100}},
		{"zero rent", gin.H{"name": "x", "address": "a", "neighborhood": "b", "city": "c", "state": "PR", "zip_code": "1", "type": "house", "area": 10, "rent": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(owner, http.MethodPost, "/properties", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		})
	}

	assert.Equal(t, http.StatusUnprocessableEntity, e.do(owner, http.MethodGet, "/properties/abc", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, e.do(owner, http.MethodGet, "/properties?type=castle", nil).Code)
}

func TestCreateContract(t *testing.T) {
	e := newEnv(t, nil)
	p := testutil.Property(t, e.db, owner, "Casa Batel")
	tn := testutil.Tenant(t, e.db, owner, "Ana")
	testutil.Contract(t, e.db, owner, p, tn, date("2025-01-01"), date("2025-12-31"))

	contract := func(start, end string) gin.H {
		return gin.H{
			"title":       "Novo contrato",
			"property_id": p.ID,
			"tenant_id":   tn.ID,
			"start_date":  start,
			"end_date":    end,
			"rent":        1600,
			"fine_rate":   2,
		}
	}

	w := e.do(owner, http.MethodPost, "/contracts", contract("2025-06-01", "2026-05-31"))
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = e.do(owner, http.MethodPost, "/contracts", contract("2025-12-01", "2025-11-01"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w = e.do(stranger, http.MethodPost, "/contracts", contract("2026-01-01", "2026-12-31"))
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())

	w = e.do(owner, http.MethodPost, "/contracts", contract("2026-01-01", "2026-12-31"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Contract
	decode(t, w, &created)
	assert.Equal(t, models.ContractStatusActive, created.Status)
	assert.Equal(t, date("2026-01-01"), created.StartDate)
}

func TestRenewAndTerminateContract(t *testing.T) {
	e := newEnv(t, nil)
	p := testutil.Property(t, e.db, owner, "Casa Batel")
	tn := testutil.Tenant(t, e.db, owner, "Ana")
	c := testutil.Contract(t, e.db, owner, p, tn, date("2025-01-01"), date("2025-12-31"))
	path := "/contracts/" + itoa(c.ID)

	w := e.do(owner, http.MethodPost, path+"/renew", gin.H{"new_end_date": "2025-06-30"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = e.do(owner, http.MethodPost, path+"/renew", gin.H{"new_end_date": "2026-12-31", "new_rent": 1650})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var renewed models.Contract
	decode(t, w, &renewed)
	assert.Equal(t, date("2026-12-31"), renewed.EndDate)
	assert.True(t, decimal.NewFromInt(1650).Equal(renewed.Rent))

	w = e.do(owner, http.MethodPost, path+"/terminate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, e.do(owner, http.MethodPost, path+"/terminate", nil).Code)
	w = e.do(owner, http.MethodPost, path+"/renew", gin.H{"new_end_date": "2027-12-31"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfirmPayment(t *testing.T) {
	e := newEnv(t, nil)
	p := testutil.Property(t, e.db, owner, "Casa Batel")
	tn := testutil.Tenant(t, e.db, owner, "Ana")
	c := testutil.Contract(t, e.db, owner, p, tn, date("2025-01-01"), date("2025-12-31"))
	pay := testutil.Payment(t, e.db, c, date("2025-03-10"), models.PaymentStatusPending)
	path := "/payments/" + itoa(pay.ID)

	w := e.do(owner, http.MethodPost, path+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var confirmed models.Payment
	decode(t, w, &confirmed)
	assert.Equal(t, models.PaymentStatusPaid, confirmed.Status)
	require.NotNil(t, confirmed.PaymentDate)
	assert.Equal(t, date("2025-03-10"), *confirmed.PaymentDate)
	assert.True(t, decimal.NewFromInt(1500).Equal(confirmed.Amount))

	w = e.do(owner, http.MethodPost, path+"/confirm", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = e.do(owner, http.MethodGet, path+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Changes []models.PaymentStatusChange `json:"changes"`
		Count   int                          `json:"count"`
	}
	decode(t, w, &history)
	require.Equal(t, 1, history.Count)
	assert.Equal(t, models.PaymentStatusPending, history.Changes[0].OldStatus)
	assert.Equal(t, models.PaymentStatusPaid, history.Changes[0].NewStatus)
	assert.Equal(t, models.ChangeSourceConfirm, history.Changes[0].Source)

	assert.Equal(t, http.StatusNotFound, e.do(stranger, http.MethodPost, path+"/confirm", nil).Code)
}

func TestConfirmPaymentInstallments(t *testing.T) {
	e := newEnv(t, nil)
	p := testutil.Property(t, e.db, owner, "Casa Batel")
	tn := testutil.Tenant(t, e.db, owner, "Ana")
	c := testutil.Contract(t, e.db, owner, p, tn, date("2025-01-01"), date("2025-12-31"))
	// 10 days late: 1500 + 30 fine + 5 interest
	pay := testutil.Payment(t, e.db, c, date("2025-02-28"), models.PaymentStatusOverdue)
	path := "/payments/" + itoa(pay.ID) + "/confirm"

	w := e.do(owner, http.MethodPost, path, gin.H{"amount_paid": 800})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var first models.Payment
	decode(t, w, &first)
	assert.Equal(t, models.PaymentStatusPartial, first.Status)
	assert.True(t, decimal.NewFromInt(800).Equal(first.Amount), "amount %s", first.Amount)
	assert.True(t, decimal.NewFromInt(1535).Equal(first.TotalAmount), "total %s", first.TotalAmount)

	w = e.do(owner, http.MethodPost, path, gin.H{"amount_paid": 735})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var second models.Payment
	decode(t, w, &second)
	assert.Equal(t, models.PaymentStatusPaid, second.Status)
	assert.True(t, decimal.NewFromInt(1535).Equal(second.Amount), "amount %s", second.Amount)
	assert.True(t, decimal.NewFromInt(1535).Equal(second.TotalAmount), "total %s", second.TotalAmount)
}

func TestConfirmPaymentDefaultsToRemainingBalance(t *testing.T) {
	e := newEnv(t, nil)
	p := testutil.Property(t, e.db, owner, "Casa Batel")
	tn := testutil.Tenant(t, e.db, owner, "Ana")
	c := testutil.Contract(t, e.db, owner, p, tn, date("2025-01-01"), date("2025-12-31"))

	w := e.do(owner, http.MethodPost, "/payments/bulk", gin.H{
		"contract_id": c.ID,
		"months":      1,
		"start_date":  "2025-03-20",
		"amount":      1000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created []models.Payment
	decode(t, w, &created)
	require.Len(t, created, 1)

	w = e.do(owner, http.MethodPost, "/payments/"+itoa(created[0].ID)+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var confirmed models.Payment
	decode(t, w, &confirmed)
	assert.Equal(t, models.PaymentStatusPaid, confirmed.Status)
	assert.True(t, decimal.NewFromInt(1000).Equal(confirmed.Amount), "amount %s", confirmed.Amount)
	assert.True(t, decimal.NewFromInt(1000).Equal(confirmed.TotalAmount), "total %s", confirmed.TotalAmount)

	// partial then default: the second confirm settles what is left
	pay := testutil.Payment(t, e.db, c, date("2025-04-10"), models.PaymentStatusPending)
	path := "/payments/" + itoa(pay.ID) + "/confirm"
	require.Equal(t, http.StatusOK, e.do(owner, http.MethodPost, path, gin.H{"amount_paid": 600}).Code)
	w = e.do(owner, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &confirmed)
	assert.Equal(t, models.PaymentStatusPaid, confirmed.Status)
	assert.True(t, decimal.NewFromInt(1500).Equal(confirmed.Amount), "amount %s", confirmed.Amount)
}

func TestRegisterPayment(t *testing.T) {
	e := newEnv(t, nil)
	p := testutil.Property(t, e.db, owner, "Casa Batel")
	tn := testutil.Tenant(t, e.db, owner, "Ana")
	c := testutil.Contract(t, e.db, owner, p, tn, date("2025-01-01"), date("2025-12-31"))

	w := e.do(owner, http.MethodPost, "/payments/register", gin.H{
		"contract_id":    c.ID,
		"due_date":       "2025-03-05",
		"payment_date":   "2025-03-05",
		"paid_amount":    1500,
		"payment_method": "pix",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var registered models.Payment
	decode(t, w, &registered)
	assert.Equal(t, models.PaymentStatusPaid, registered.Status)
	assert.Equal(t, p.ID, registered.PropertyID)
	assert.Equal(t, tn.ID, registered.TenantID)
	assert.True(t, registered.FineAmount.IsZero())

	w = e.do(owner, http.MethodPost, "/payments/register", gin.H{
		"contract_id":    c.ID,
		"due_date":       "2025-03-05",
		"payment_date":   "2025-03-05",
		"paid_amount":    1500,
		"payment_method": "bitcoin",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestBulkCreatePayments(t *testing.T) {
	e := newEnv(t, nil)
	p := testutil.Property(t, e.db, owner, "Casa Batel")
	tn := testutil.Tenant(t, e.db, owner, "Ana")
	c := testutil.Contract(t, e.db, owner, p, tn, date("2025-01-01"), date("2025-12-31"))

	w := e.do(owner, http.MethodPost, "/payments/bulk", gin.H{
		"contract_id": c.ID,
		"months":      3,
		"start_date":  "2025-01-31",
		"amount":      1500,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created []models.Payment
	decode(t, w, &created)
	require.Len(t, created, 3)
	assert.Equal(t, date("2025-01-31"), created[0].DueDate)
	assert.Equal(t, date("2025-02-28"), created[1].DueDate)
	assert.Equal(t, date("2025-03-31"), created[2].DueDate)
	for _, pay := range created {
		assert.Equal(t, models.PaymentStatusPending, pay.Status)
	}

	w = e.do(owner, http.MethodPost, "/payments/bulk", gin.H{
		"contract_id": c.ID,
		"months":      13,
		"start_date":  "2025-01-31",
		"amount":      1500,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(owner, http.MethodGet, "/payments?due_from=2025-02-01&due_to=2025-03-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Payment
	decode(t, w, &listed)
	assert.Len(t, listed, 2)

	assert.Equal(t, http.StatusUnprocessableEntity, e.do(owner, http.MethodGet, "/payments?due_from=31/01/2025", nil).Code)
}

func TestProcessNotifications(t *testing.T) {
	e := newEnv(t, nil)
	p := testutil.Property(t, e.db, owner, "Casa Batel")
	tn := testutil.Tenant(t, e.db, owner, "Ana")
	c := testutil.Contract(t, e.db, owner, p, tn, date("2025-01-01"), date("2025-12-31"))
	testutil.Payment(t, e.db, c, date("2025-02-10"), models.PaymentStatusPending)

	w := e.do(owner, http.MethodPost, "/notifications/process", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Created int `json:"notifications_created"`
	}
	decode(t, w, &resp)
	assert.Greater(t, resp.Created, 0)

	w = e.do(owner, http.MethodGet, "/notifications/unread-count", nil)
	var unread struct {
		Count int `json:"unread_count"`
	}
	decode(t, w, &unread)
	assert.Equal(t, resp.Created, unread.Count)

	w = e.do(stranger, http.MethodGet, "/notifications/unread-count", nil)
	decode(t, w, &unread)
	assert.Zero(t, unread.Count)
}

func TestDashboardRanges(t *testing.T) {
	e := newEnv(t, nil)

	assert.Equal(t, http.StatusOK, e.do(owner, http.MethodGet, "/dashboard/revenue-chart", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, e.do(owner, http.MethodGet, "/dashboard/revenue-chart?months=0", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, e.do(owner, http.MethodGet, "/dashboard/revenue-chart?months=25", nil).Code)

	assert.Equal(t, http.StatusOK, e.do(owner, http.MethodGet, "/dashboard/financial-overview", nil).Code)
	assert.Equal(t, http.StatusBadRequest,
		e.do(owner, http.MethodGet, "/dashboard/financial-overview?start_date=2025-03-01&end_date=2025-02-01", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		e.do(owner, http.MethodGet, "/dashboard/financial-overview?start_date=march", nil).Code)
}

type fakeIndex struct {
	ids     []uint
	err     error
	indexed []uint
}

func (f *fakeIndex) IndexProperty(p *models.Property) error {
	f.indexed = append(f.indexed, p.ID)
	return nil
}
func (f *fakeIndex) IndexProperties([]models.Property) error { return nil }
func (f *fakeIndex) DeleteProperty(uint) error               { return nil }
func (f *fakeIndex) Search(uint, search.FilterParams) ([]uint, error) {
	return f.ids, f.err
}

func TestSearchProperties(t *testing.T) {
	t.Run("ranked by the index", func(t *testing.T) {
		index := &fakeIndex{}
		e := newEnv(t, index)
		a := testutil.Property(t, e.db, owner, "Apto Centro")
		b := testutil.Property(t, e.db, owner, "Casa Batel")
		foreign := testutil.Property(t, e.db, stranger, "Sala Comercial")
		index.ids = []uint{b.ID, foreign.ID, a.ID}

		w := e.do(owner, http.MethodGet, "/properties/search?q=a", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp struct {
			Hits   []models.Property `json:"hits"`
			Source string            `json:"source"`
		}
		decode(t, w, &resp)
		assert.Equal(t, "index", resp.Source)
		require.Len(t, resp.Hits, 2)
		assert.Equal(t, b.ID, resp.Hits[0].ID)
		assert.Equal(t, a.ID, resp.Hits[1].ID)
	})

	t.Run("falls back to the database", func(t *testing.T) {
		e := newEnv(t, &fakeIndex{err: errors.New("connection refused")})
		testutil.Property(t, e.db, owner, "Apto Centro")
		testutil.Property(t, e.db, owner, "Casa Batel")

		w := e.do(owner, http.MethodGet, "/properties/search?q=batel", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp struct {
			Hits   []models.Property `json:"hits"`
			Source string            `json:"source"`
		}
		decode(t, w, &resp)
		assert.Equal(t, "database", resp.Source)
		require.Len(t, resp.Hits, 1)
		assert.Equal(t, "Casa Batel", resp.Hits[0].Name)
	})

	t.Run("disabled index", func(t *testing.T) {
		e := newEnv(t, nil)
		testutil.Property(t, e.db, owner, "Apto Centro")

		w := e.do(owner, http.MethodGet, "/properties/search", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"source":"database"`)
	})
}

func TestCreatePropertyIndexes(t *testing.T) {
	index := &fakeIndex{}
	e := newEnv(t, index)

	w := e.do(owner, http.MethodPost, "/properties", gin.H{
		"name": "Studio", "address": "Rua A, 1", "neighborhood": "Centro", "city": "Curitiba",
		"state": "PR", "zip_code": "80000-000", "type": "studio", "area": 30, "rent": 900,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Property
	decode(t, w, &created)
	assert.Equal(t, []uint{created.ID}, index.indexed)
}

func TestUploadPropertyImages(t *testing.T) {
	e := newEnv(t, nil)
	p := testutil.Property(t, e.db, owner, "Casa Batel")
	path := "/properties/" + itoa(p.ID) + "/images"

	post := func(userID uint, names ...string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		for _, name := range names {
			part, err := mw.CreateFormFile("files", name)
			require.NoError(t, err)
			_, err = part.Write([]byte("image-bytes"))
			require.NoError(t, err)
		}
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, path, &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		e.router(userID).ServeHTTP(w, req)
		return w
	}

	w := post(owner, "sala.jpg", "quarto.png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Property models.Property `json:"property"`
		Files    []upload.File   `json:"files"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Files, 2)
	assert.Len(t, resp.Property.Images, 2)
	assert.Equal(t, resp.Files[0].URL, resp.Property.Images[0])

	assert.Equal(t, http.StatusBadRequest, post(owner, "script.exe").Code)
	assert.Equal(t, http.StatusNotFound, post(stranger, "sala.jpg").Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
