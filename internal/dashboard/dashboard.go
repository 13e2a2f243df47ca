// Package dashboard aggregates properties, contracts, payments and expenses
// into the financial summaries shown on the landing page.
package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"rental-manager/internal/clock"
	"rental-manager/internal/models"
	"rental-manager/internal/repository"
)

const (
	MaxChartMonths   = 24
	MaxActivityLimit = 50
	expiringSoonDays = 30
	performanceLimit = 1000
)

var hundred = decimal.NewFromInt(100)

// ErrInvalidRange is returned for out-of-range months, limits or periods
var ErrInvalidRange = errors.New("invalid range")

// Service computes dashboard figures for one database session
type Service struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewService(db *gorm.DB, c clock.Clock) *Service {
	return &Service{db: db, clock: c}
}

type Stats struct {
	TotalProperties int64           `json:"total_properties"`
	TotalTenants    int64           `json:"total_tenants"`
	TotalContracts  int64           `json:"total_contracts"`
	MonthlyRevenue  decimal.Decimal `json:"monthly_revenue"`
}

// Stats counts the user's entities; MonthlyRevenue is the rent of active contracts
func (s *Service) Stats(userID uint) (*Stats, error) {
	stats := &Stats{}
	var err error
	if stats.TotalProperties, err = repository.NewPropertyRepository(s.db).Count(userID); err != nil {
		return nil, err
	}
	if stats.TotalTenants, err = repository.NewTenantRepository(s.db).Count(userID); err != nil {
		return nil, err
	}
	if stats.TotalContracts, err = repository.NewContractRepository(s.db).CountActive(userID); err != nil {
		return nil, err
	}
	if stats.MonthlyRevenue, err = s.activeRent(userID, nil); err != nil {
		return nil, err
	}
	return stats, nil
}

type Summary struct {
	Properties struct {
		Total           int64 `json:"total"`
		ActiveContracts int64 `json:"active_contracts"`
	} `json:"properties"`
	Contracts struct {
		Active       int64 `json:"active"`
		ExpiringSoon int64 `json:"expiring_soon"`
	} `json:"contracts"`
	Financial struct {
		MonthlyRevenue  decimal.Decimal `json:"monthly_revenue"`
		OverduePayments int             `json:"overdue_payments"`
		PendingPayments int             `json:"pending_payments"`
		OverdueAmount   decimal.Decimal `json:"overdue_amount"`
		ReceivedMonth   decimal.Decimal `json:"payments_received"`
		CollectionRate  float64         `json:"collection_rate"`
	} `json:"financial"`
}

// Summary is the full landing-page overview
func (s *Service) Summary(userID uint) (*Summary, error) {
	today := clock.Today(s.clock)
	contracts := repository.NewContractRepository(s.db)
	payments := repository.NewPaymentRepository(s.db)
	sum := &Summary{}

	count, err := repository.NewPropertyRepository(s.db).Count(userID)
	if err != nil {
		return nil, err
	}
	active, err := contracts.CountActive(userID)
	if err != nil {
		return nil, err
	}
	expiring, err := contracts.Expiring(userID, today, expiringSoonDays)
	if err != nil {
		return nil, err
	}
	sum.Properties.Total = count
	sum.Properties.ActiveContracts = active
	sum.Contracts.Active = active
	sum.Contracts.ExpiringSoon = int64(len(expiring))

	if sum.Financial.MonthlyRevenue, err = s.activeRent(userID, nil); err != nil {
		return nil, err
	}

	overdue, err := payments.Overdue(userID, today)
	if err != nil {
		return nil, err
	}
	pending, err := payments.Pending(userID)
	if err != nil {
		return nil, err
	}
	sum.Financial.OverduePayments = len(overdue)
	sum.Financial.PendingPayments = len(pending)
	for _, p := range overdue {
		sum.Financial.OverdueAmount = sum.Financial.OverdueAmount.Add(p.Amount)
	}

	first, last := monthBounds(today.Year(), today.Month())
	if sum.Financial.ReceivedMonth, err = s.revenue(userID, first, last, nil); err != nil {
		return nil, err
	}
	sum.Financial.CollectionRate = rate(sum.Financial.ReceivedMonth, sum.Financial.MonthlyRevenue)
	return sum, nil
}

type MonthlyRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// RevenueChart returns received payments per calendar month, oldest first
func (s *Service) RevenueChart(userID uint, months int) ([]MonthlyRevenue, error) {
	if err := checkMonths(months); err != nil {
		return nil, err
	}
	data := make([]MonthlyRevenue, 0, months)
	for _, m := range s.lastMonths(months) {
		first, last := monthBounds(m.Year(), m.Month())
		revenue, err := s.revenue(userID, first, last, nil)
		if err != nil {
			return nil, err
		}
		data = append(data, MonthlyRevenue{Month: m.Format("2006-01"), Revenue: revenue})
	}
	return data, nil
}

type PropertyPerformance struct {
	PropertyID      uint            `json:"property_id"`
	PropertyName    string          `json:"property_name"`
	PropertyAddress string          `json:"property_address"`
	ActiveContracts int             `json:"active_contracts"`
	RevenueReceived decimal.Decimal `json:"revenue_received"`
	RevenueExpected decimal.Decimal `json:"revenue_expected"`
	CollectionRate  float64         `json:"collection_rate"`
}

// PropertyPerformance compares this month's received and expected rent per property
func (s *Service) PropertyPerformance(userID uint) ([]PropertyPerformance, error) {
	properties, err := repository.NewPropertyRepository(s.db).List(userID, repository.PropertyFilter{
		Page: repository.Page{Limit: performanceLimit},
	})
	if err != nil {
		return nil, err
	}
	byProperty, err := s.activeContractsByProperty(userID)
	if err != nil {
		return nil, err
	}
	today := clock.Today(s.clock)
	first, last := monthBounds(today.Year(), today.Month())

	result := make([]PropertyPerformance, 0, len(properties))
	for _, p := range properties {
		id := p.ID
		received, err := s.revenue(userID, first, last, &id)
		if err != nil {
			return nil, err
		}
		expected := rentOf(byProperty[p.ID])
		result = append(result, PropertyPerformance{
			PropertyID:      p.ID,
			PropertyName:    p.Name,
			PropertyAddress: p.Address,
			ActiveContracts: len(byProperty[p.ID]),
			RevenueReceived: received,
			RevenueExpected: expected,
			CollectionRate:  rate(received, expected),
		})
	}
	return result, nil
}

type Activity struct {
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Date        models.Date `json:"date"`
	RelatedID   uint        `json:"related_id"`
	CreatedAt   time.Time   `json:"created_at"`
}

// RecentActivity interleaves the newest payments and contracts, newest first
func (s *Service) RecentActivity(userID uint, limit int) ([]Activity, error) {
	if limit < 1 || limit > MaxActivityLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidRange, MaxActivityLimit)
	}
	half := (limit + 1) / 2

	var payments []models.Payment
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").
		Limit(half).Find(&payments).Error; err != nil {
		return nil, err
	}
	var contracts []models.Contract
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").
		Limit(half).Find(&contracts).Error; err != nil {
		return nil, err
	}

	activities := make([]Activity, 0, len(payments)+len(contracts))
	for _, p := range payments {
		date := p.DueDate
		if p.PaymentDate != nil {
			date = *p.PaymentDate
		}
		activities = append(activities, Activity{
			Type:        "payment",
			Description: fmt.Sprintf("Payment of %s - Status: %s", p.Amount.StringFixed(2), p.Status),
			Date:        date,
			RelatedID:   p.ID,
			CreatedAt:   p.CreatedAt,
		})
	}
	for _, c := range contracts {
		activities = append(activities, Activity{
			Type:        "contract",
			Description: fmt.Sprintf("Contract created - Status: %s", c.Status),
			Date:        c.StartDate,
			RelatedID:   c.ID,
			CreatedAt:   c.CreatedAt,
		})
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].CreatedAt.After(activities[j].CreatedAt)
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

type MonthlyBalance struct {
	Month    string          `json:"month"`
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
	Profit   decimal.Decimal `json:"profit"`
}

// RevenueVsExpenses returns revenue, expenses and profit per month, optionally for one property
func (s *Service) RevenueVsExpenses(userID uint, months int, propertyID *uint) ([]MonthlyBalance, error) {
	if err := checkMonths(months); err != nil {
		return nil, err
	}
	data := make([]MonthlyBalance, 0, months)
	for _, m := range s.lastMonths(months) {
		first, last := monthBounds(m.Year(), m.Month())
		revenue, err := s.revenue(userID, first, last, propertyID)
		if err != nil {
			return nil, err
		}
		expenses, err := s.expenses(userID, first, last, propertyID)
		if err != nil {
			return nil, err
		}
		data = append(data, MonthlyBalance{
			Month:    m.Format("2006-01"),
			Revenue:  revenue,
			Expenses: expenses,
			Profit:   revenue.Sub(expenses),
		})
	}
	return data, nil
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type FinancialOverview struct {
	Period struct {
		StartDate models.Date `json:"start_date"`
		EndDate   models.Date `json:"end_date"`
	} `json:"period"`
	Summary struct {
		TotalRevenue  decimal.Decimal `json:"total_revenue"`
		TotalExpenses decimal.Decimal `json:"total_expenses"`
		NetProfit     decimal.Decimal `json:"net_profit"`
		ProfitMargin  float64         `json:"profit_margin"`
	} `json:"summary"`
	ExpenseBreakdown []CategoryTotal              `json:"expense_breakdown"`
	PaymentStatus    map[models.PaymentStatus]int `json:"payment_status"`
	PropertyID       *uint                        `json:"property_id,omitempty"`
}

// FinancialOverview totals a period; without both bounds the current month is used
func (s *Service) FinancialOverview(userID uint, start, end *models.Date, propertyID *uint) (*FinancialOverview, error) {
	from, to := monthBounds(clock.Today(s.clock).Year(), clock.Today(s.clock).Month())
	if start != nil && end != nil {
		if end.Before(*start) {
			return nil, fmt.Errorf("%w: end_date %s is before start_date %s", ErrInvalidRange, end, start)
		}
		from, to = *start, *end
	}

	o := &FinancialOverview{PropertyID: propertyID}
	o.Period.StartDate = from
	o.Period.EndDate = to

	var err error
	if o.Summary.TotalRevenue, err = s.revenue(userID, from, to, propertyID); err != nil {
		return nil, err
	}
	if o.Summary.TotalExpenses, err = s.expenses(userID, from, to, propertyID); err != nil {
		return nil, err
	}
	o.Summary.NetProfit = o.Summary.TotalRevenue.Sub(o.Summary.TotalExpenses)
	o.Summary.ProfitMargin = rate(o.Summary.NetProfit, decimal.Max(o.Summary.TotalRevenue, decimal.NewFromInt(1)))

	var expenses []models.Expense
	q := s.db.Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to)
	if propertyID != nil {
		q = q.Where("property_id = ?", *propertyID)
	}
	if err := q.Order("category").Find(&expenses).Error; err != nil {
		return nil, err
	}
	o.ExpenseBreakdown = breakdown(expenses)

	var statuses []models.PaymentStatus
	pq := s.db.Model(&models.Payment{}).Where("user_id = ? AND due_date >= ? AND due_date <= ?", userID, from, to)
	if propertyID != nil {
		pq = pq.Where("property_id = ?", *propertyID)
	}
	if err := pq.Pluck("status", &statuses).Error; err != nil {
		return nil, err
	}
	o.PaymentStatus = map[models.PaymentStatus]int{
		models.PaymentStatusPaid:    0,
		models.PaymentStatusPending: 0,
		models.PaymentStatusOverdue: 0,
		models.PaymentStatusPartial: 0,
	}
	for _, st := range statuses {
		o.PaymentStatus[st]++
	}
	return o, nil
}

type PropertyStatus struct {
	ID                     uint                `json:"id"`
	Name                   string              `json:"name"`
	Address                string              `json:"address"`
	Type                   models.PropertyType `json:"type"`
	Status                 string              `json:"status"`
	ActiveContracts        int                 `json:"active_contracts"`
	ExpectedMonthlyRevenue decimal.Decimal     `json:"expected_monthly_revenue"`
	ReceivedMonthlyRevenue decimal.Decimal     `json:"received_monthly_revenue"`
	MonthlyExpenses        decimal.Decimal     `json:"monthly_expenses"`
	NetProfit              decimal.Decimal     `json:"net_profit"`
}

type PropertiesStatus struct {
	Summary struct {
		TotalProperties int     `json:"total_properties"`
		Occupied        int     `json:"occupied"`
		Vacant          int     `json:"vacant"`
		OccupancyRate   float64 `json:"occupancy_rate"`
	} `json:"summary"`
	Properties []PropertyStatus `json:"properties"`
}

// PropertiesStatus reports occupancy by active contract and this month's figures per property
func (s *Service) PropertiesStatus(userID uint) (*PropertiesStatus, error) {
	properties, err := repository.NewPropertyRepository(s.db).List(userID, repository.PropertyFilter{
		Page: repository.Page{Limit: performanceLimit},
	})
	if err != nil {
		return nil, err
	}
	byProperty, err := s.activeContractsByProperty(userID)
	if err != nil {
		return nil, err
	}
	today := clock.Today(s.clock)
	first, last := monthBounds(today.Year(), today.Month())

	out := &PropertiesStatus{Properties: make([]PropertyStatus, 0, len(properties))}
	for _, p := range properties {
		id := p.ID
		received, err := s.revenue(userID, first, last, &id)
		if err != nil {
			return nil, err
		}
		spent, err := s.expenses(userID, first, last, &id)
		if err != nil {
			return nil, err
		}

		status := "vacant"
		if len(byProperty[p.ID]) > 0 {
			status = "occupied"
			out.Summary.Occupied++
		}
		out.Properties = append(out.Properties, PropertyStatus{
			ID:                     p.ID,
			Name:                   p.Name,
			Address:                p.Address,
			Type:                   p.Type,
			Status:                 status,
			ActiveContracts:        len(byProperty[p.ID]),
			ExpectedMonthlyRevenue: rentOf(byProperty[p.ID]),
			ReceivedMonthlyRevenue: received,
			MonthlyExpenses:        spent,
			NetProfit:              received.Sub(spent),
		})
	}

	out.Summary.TotalProperties = len(properties)
	out.Summary.Vacant = out.Summary.TotalProperties - out.Summary.Occupied
	out.Summary.OccupancyRate = rate(
		decimal.NewFromInt(int64(out.Summary.Occupied)),
		decimal.NewFromInt(int64(out.Summary.TotalProperties)))
	return out, nil
}

func (s *Service) activeContractsByProperty(userID uint) (map[uint][]models.Contract, error) {
	active, err := repository.NewContractRepository(s.db).Active(userID)
	if err != nil {
		return nil, err
	}
	byProperty := make(map[uint][]models.Contract)
	for _, c := range active {
		byProperty[c.PropertyID] = append(byProperty[c.PropertyID], c)
	}
	return byProperty, nil
}

func (s *Service) activeRent(userID uint, propertyID *uint) (decimal.Decimal, error) {
	q := s.db.Model(&models.Contract{}).Where("user_id = ? AND status = ?", userID, models.ContractStatusActive)
	if propertyID != nil {
		q = q.Where("property_id = ?", *propertyID)
	}
	return total(q, "rent")
}

// revenue sums paid payments whose payment date falls in [from, to]
func (s *Service) revenue(userID uint, from, to models.Date, propertyID *uint) (decimal.Decimal, error) {
	q := s.db.Model(&models.Payment{}).
		Where("user_id = ? AND status = ?", userID, models.PaymentStatusPaid).
		Where("payment_date >= ? AND payment_date <= ?", from, to)
	if propertyID != nil {
		q = q.Where("property_id = ?", *propertyID)
	}
	return total(q, "amount")
}

func (s *Service) expenses(userID uint, from, to models.Date, propertyID *uint) (decimal.Decimal, error) {
	q := s.db.Model(&models.Expense{}).Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to)
	if propertyID != nil {
		q = q.Where("property_id = ?", *propertyID)
	}
	return total(q, "amount")
}

// lastMonths returns the first day of the current month and the n-1 months before it, oldest first
func (s *Service) lastMonths(n int) []models.Date {
	today := clock.Today(s.clock)
	current := models.MakeDate(today.Year(), today.Month(), 1)
	out := make([]models.Date, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = models.Date{Time: current.AddDate(0, -i, 0)}
	}
	return out
}

func total(q *gorm.DB, column string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	if err := q.Select("SUM(" + column + ")").Row().Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return sum.Decimal.Round(2), nil
}

func monthBounds(year int, month time.Month) (models.Date, models.Date) {
	first := models.MakeDate(year, month, 1)
	return first, models.Date{Time: first.AddDate(0, 1, -1)}
}

func checkMonths(months int) error {
	if months < 1 || months > MaxChartMonths {
		return fmt.Errorf("%w: months must be between 1 and %d", ErrInvalidRange, MaxChartMonths)
	}
	return nil
}

// rate is part/whole as a percentage with two decimals; zero when whole is not positive
func rate(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Mul(hundred).Div(whole).Round(2).InexactFloat64()
}

func rentOf(contracts []models.Contract) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range contracts {
		sum = sum.Add(c.Rent)
	}
	return sum
}

func breakdown(expenses []models.Expense) []CategoryTotal {
	out := []CategoryTotal{}
	index := map[string]int{}
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, CategoryTotal{Category: e.Category})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}
	return out
}
