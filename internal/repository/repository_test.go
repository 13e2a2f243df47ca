package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-manager/internal/models"
	"rental-manager/internal/testutil"
)

const (
	owner    uint = 1
	stranger uint = 2
)

func TestPropertyRepositoryScopesByUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPropertyRepository(db)

	mine := testutil.Property(t, db, owner, "Apto 101")
	testutil.Property(t, db, stranger, "Casa Verde")

	list, err := repo.List(owner, PropertyFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	_, err = repo.Get(stranger, mine.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(stranger, mine.ID), ErrNotFound)
	assert.NoError(t, repo.Delete(owner, mine.ID))
	_, err = repo.Get(owner, mine.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPropertyRepositoryFilters(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPropertyRepository(db)

	cheap := testutil.Property(t, db, owner, "Kitnet")
	cheap.Rent = decimal.NewFromInt(800)
	cheap.Type = models.PropertyTypeStudio
	cheap.Bedrooms = 1
	require.NoError(t, repo.Save(cheap))

	house := testutil.Property(t, db, owner, "Casa")
	house.Type = models.PropertyTypeHouse
	house.Rent = decimal.NewFromInt(3200)
	house.Bedrooms = 3
	house.City = "Florianópolis"
	require.NoError(t, repo.Save(house))

	studio := models.PropertyTypeStudio
	list, err := repo.List(owner, PropertyFilter{Type: &studio})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Kitnet", list[0].Name)

	minRent := decimal.NewFromInt(1000)
	list, err = repo.List(owner, PropertyFilter{MinRent: &minRent})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Casa", list[0].Name)

	beds := 2
	list, err = repo.List(owner, PropertyFilter{MinBedrooms: &beds})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = repo.List(owner, PropertyFilter{City: "florian"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = repo.List(owner, PropertyFilter{Page: Page{Limit: 1}})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = repo.List(owner, PropertyFilter{IDs: []uint{house.ID}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, house.ID, list[0].ID)
}

func TestPropertyImagesRoundTrip(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPropertyRepository(db)

	p := testutil.Property(t, db, owner, "Apto")
	p.AddImage("/uploads/properties/a.jpg")
	p.AddImage("/uploads/properties/b.png")
	require.NoError(t, repo.Save(p))

	got, err := repo.Get(owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/properties/a.jpg", "/uploads/properties/b.png"}, []string(got.Images))
}

func TestContractAvailability(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewContractRepository(db)

	p := testutil.Property(t, db, owner, "Apto")
	tn := testutil.Tenant(t, db, owner, "Ana")
	c := testutil.Contract(t, db, owner, p, tn,
		models.MakeDate(2025, time.January, 1), models.MakeDate(2025, time.December, 31))

	err := repo.CheckAvailability(owner, p.ID,
		models.MakeDate(2025, time.June, 1), models.MakeDate(2026, time.May, 31), 0)
	assert.ErrorIs(t, err, ErrUnavailable)

	// the contract itself does not block its own update
	err = repo.CheckAvailability(owner, p.ID, c.StartDate, c.EndDate, c.ID)
	assert.NoError(t, err)

	err = repo.CheckAvailability(owner, p.ID,
		models.MakeDate(2026, time.January, 1), models.MakeDate(2026, time.December, 31), 0)
	assert.NoError(t, err)

	c.Status = models.ContractStatusTerminated
	require.NoError(t, repo.Save(c))
	err = repo.CheckAvailability(owner, p.ID,
		models.MakeDate(2025, time.June, 1), models.MakeDate(2026, time.May, 31), 0)
	assert.NoError(t, err)
}

func TestContractExpiring(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewContractRepository(db)
	today := models.MakeDate(2025, time.March, 1)

	p := testutil.Property(t, db, owner, "Apto")
	tn := testutil.Tenant(t, db, owner, "Ana")
	soon := testutil.Contract(t, db, owner, p, tn, models.MakeDate(2024, time.March, 20), today.AddDays(20))
	testutil.Contract(t, db, owner, p, tn, models.MakeDate(2024, time.March, 1), today.AddDays(90))
	testutil.Contract(t, db, owner, p, tn, models.MakeDate(2024, time.January, 1), today.AddDays(-1))

	list, err := repo.Expiring(owner, today, 30)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, soon.ID, list[0].ID)

	n, err := repo.CountActive(owner)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	ids, err := UserIDs(db)
	require.NoError(t, err)
	assert.Equal(t, []uint{owner}, ids)
}

func TestPaymentRepositoryQueries(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPaymentRepository(db)
	today := models.MakeDate(2025, time.March, 10)

	p := testutil.Property(t, db, owner, "Apto")
	tn := testutil.Tenant(t, db, owner, "Ana")
	c := testutil.Contract(t, db, owner, p, tn, models.MakeDate(2025, time.January, 5), models.MakeDate(2025, time.December, 5))

	late := testutil.Payment(t, db, c, models.MakeDate(2025, time.February, 5), models.PaymentStatusPending)
	partial := testutil.Payment(t, db, c, models.MakeDate(2025, time.March, 5), models.PaymentStatusPartial)
	upcoming := testutil.Payment(t, db, c, models.MakeDate(2025, time.April, 5), models.PaymentStatusPending)
	testutil.Payment(t, db, c, models.MakeDate(2025, time.January, 5), models.PaymentStatusPaid)

	overdue, err := repo.Overdue(owner, today)
	require.NoError(t, err)
	require.Len(t, overdue, 2)
	assert.Equal(t, late.ID, overdue[0].ID)
	assert.Equal(t, partial.ID, overdue[1].ID)

	pending, err := repo.Pending(owner)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	from := models.MakeDate(2025, time.March, 1)
	list, err := repo.List(owner, PaymentFilter{DueFrom: &from})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, upcoming.ID, list[0].ID)

	status := models.PaymentStatusPaid
	list, err = repo.List(owner, PaymentFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.UpdateStatus(late, models.PaymentStatusOverdue))
	got, err := repo.Get(owner, late.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusOverdue, got.Status)

	list, err = repo.List(stranger, PaymentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPaymentHistory(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPaymentRepository(db)

	p := testutil.Property(t, db, owner, "Apto")
	tn := testutil.Tenant(t, db, owner, "Ana")
	c := testutil.Contract(t, db, owner, p, tn, models.MakeDate(2025, time.January, 5), models.MakeDate(2025, time.December, 5))
	pay := testutil.Payment(t, db, c, models.MakeDate(2025, time.February, 5), models.PaymentStatusPending)

	base := time.Date(2025, time.February, 6, 6, 0, 0, 0, time.UTC)
	require.NoError(t, repo.RecordStatusChange(&models.PaymentStatusChange{
		PaymentID: pay.ID, UserID: owner, OldStatus: models.PaymentStatusPending,
		NewStatus: models.PaymentStatusOverdue, Source: models.ChangeSourceBatch, DetectedAt: base,
	}))
	require.NoError(t, repo.RecordStatusChange(&models.PaymentStatusChange{
		PaymentID: pay.ID, UserID: owner, OldStatus: models.PaymentStatusOverdue,
		NewStatus: models.PaymentStatusPaid, Source: models.ChangeSourceConfirm, DetectedAt: base.Add(48 * time.Hour),
	}))

	history, err := repo.History(owner, pay.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.PaymentStatusPaid, history[0].NewStatus)

	history, err = repo.History(stranger, pay.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	recent, err := repo.RecentChanges(owner, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, models.ChangeSourceConfirm, recent[0].Source)
}

func TestExpenseRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewExpenseRepository(db)

	for _, cat := range []string{"taxes", "cleaning", "taxes"} {
		e := &models.Expense{
			UserID:      owner,
			Type:        models.ExpenseTypeExpense,
			Category:    cat,
			Description: "monthly " + cat,
			Amount:      decimal.NewFromInt(100),
			Date:        models.MakeDate(2025, time.March, 1),
			Documents:   []models.ExpenseDocument{{Name: "nf.pdf", URL: "/uploads/expenses/nf.pdf"}},
		}
		require.NoError(t, repo.Create(e))
		assert.Len(t, e.ID, 36)
		assert.Equal(t, models.ExpenseStatusPending, e.Status)
	}

	cats, err := repo.Categories(owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"cleaning", "taxes"}, cats)

	list, err := repo.List(owner, ExpenseFilter{Category: "taxes"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Len(t, list[0].Documents, 1)
	assert.Equal(t, "nf.pdf", list[0].Documents[0].Name)

	_, err = repo.Get(stranger, list[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewNotificationRepository(db)
	created := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(&models.Notification{
			UserID:      owner,
			Type:        models.NotificationReminder,
			Title:       "Lembrete",
			Message:     "Pagamento vence hoje",
			Date:        created,
			Priority:    models.PriorityMedium,
			RelatedID:   "42",
			RelatedType: models.RelatedPayment,
			CreatedAt:   created,
		}))
	}

	count, err := repo.UnreadCount(owner)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	list, err := repo.List(owner, NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)

	n, err := repo.MarkAsRead(owner, list[0].ID)
	require.NoError(t, err)
	assert.True(t, n.ReadStatus)

	_, err = repo.MarkAsRead(stranger, list[1].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	changed, err := repo.MarkAllAsRead(owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	unread := false
	list, err = repo.List(owner, NotificationFilter{ReadStatus: &unread})
	require.NoError(t, err)
	assert.Empty(t, list)

	exists, err := repo.ExistsSince(owner, models.NotificationReminder, "42", created.Add(-12*time.Hour))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsSince(owner, models.NotificationReminder, "42", created.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsSince(owner, models.NotificationPaymentOverdue, "42", created.Add(-12*time.Hour))
	require.NoError(t, err)
	assert.False(t, exists)
}
