package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-manager/internal/clock"
	"rental-manager/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func date(y int, m time.Month, d int) models.Date {
	return models.MakeDate(y, m, d)
}

func testContract() *models.Contract {
	return &models.Contract{
		Rent:         dec("1500.00"),
		FineRate:     dec("2"),
		InterestRate: dec("1"),
		StartDate:    date(2024, time.January, 31),
		EndDate:      date(2025, time.December, 31),
		Status:       models.ContractStatusActive,
	}
}

func TestFineAndInterest(t *testing.T) {
	fine, interest, total := FineAndInterest(dec("1500.00"), dec("2"), dec("1"), 10)
	assert.True(t, fine.Equal(dec("30")), "fine = %s", fine)
	assert.True(t, interest.Equal(dec("5")), "interest = %s", interest)
	assert.True(t, total.Equal(dec("35")), "total = %s", total)
}

func TestFineAndInterestNotOverdue(t *testing.T) {
	for _, days := range []int{0, -1, -30} {
		fine, interest, total := FineAndInterest(dec("1500"), dec("2"), dec("1"), days)
		assert.True(t, fine.IsZero())
		assert.True(t, interest.IsZero())
		assert.True(t, total.IsZero())
	}
}

func TestFineIsFlatAndInterestLinear(t *testing.T) {
	fine1, interest1, _ := FineAndInterest(dec("1200"), dec("10"), dec("3"), 1)
	fine20, interest20, _ := FineAndInterest(dec("1200"), dec("10"), dec("3"), 20)

	assert.True(t, fine1.Equal(fine20))
	assert.True(t, fine1.Equal(dec("120")))
	assert.True(t, interest20.Equal(interest1.Mul(decimal.NewFromInt(20))), "%s vs %s", interest20, interest1)
}

func TestDaysOverdue(t *testing.T) {
	due := date(2025, time.January, 5)

	assert.Equal(t, 5, DaysOverdue(due, date(2025, time.January, 10)))
	assert.Equal(t, 0, DaysOverdue(due, due))
	assert.Equal(t, 0, DaysOverdue(due, date(2025, time.January, 1)))

	calc := NewCalculator(clock.FixedDate(2025, time.January, 10))
	assert.Equal(t, 5, calc.DaysOverdue(due, nil))
	paid := date(2025, time.January, 7)
	assert.Equal(t, 2, calc.DaysOverdue(due, &paid))
}

func TestStatusAt(t *testing.T) {
	due := date(2025, time.January, 5)
	today := date(2025, time.January, 10)
	total := dec("1535")

	tests := []struct {
		name  string
		today models.Date
		paid  *decimal.Decimal
		want  models.PaymentStatus
	}{
		{"unpaid after due", today, nil, models.PaymentStatusOverdue},
		{"zero paid after due", today, decPtr("0"), models.PaymentStatusOverdue},
		{"unpaid on due day", due, nil, models.PaymentStatusPending},
		{"unpaid before due", date(2025, time.January, 1), nil, models.PaymentStatusPending},
		{"fully paid", today, decPtr("1535.00"), models.PaymentStatusPaid},
		{"overpaid", today, decPtr("2000"), models.PaymentStatusPaid},
		{"partially paid", today, decPtr("800.00"), models.PaymentStatusPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusAt(tt.today, due, tt.paid, total))
			// same inputs, same answer
			assert.Equal(t, tt.want, StatusAt(tt.today, due, tt.paid, total))
		})
	}
}

func TestCalculatePaymentValuesOverdueUnpaid(t *testing.T) {
	calc := NewCalculator(clock.FixedDate(2025, time.January, 10))
	v := calc.CalculatePaymentValues(testContract(), date(2025, time.January, 5), nil, nil)

	assert.Equal(t, models.PaymentStatusOverdue, v.Status)
	assert.Equal(t, 5, v.DaysOverdue)
	assert.True(t, v.PaidAmount.IsZero())
	assert.True(t, v.RemainingAmount.Equal(v.TotalExpected))
}

func TestCalculatePaymentValuesPaidAndPartial(t *testing.T) {
	calc := NewCalculator(clock.FixedDate(2025, time.February, 1))
	due := date(2025, time.January, 5)
	paidOn := date(2025, time.January, 15)

	v := calc.CalculatePaymentValues(testContract(), due, &paidOn, decPtr("1535.00"))
	require.Equal(t, 10, v.DaysOverdue)
	assert.True(t, v.TotalExpected.Equal(dec("1535")), "expected %s", v.TotalExpected)
	assert.True(t, v.TotalAddition.Equal(dec("35")))
	assert.Equal(t, models.PaymentStatusPaid, v.Status)
	assert.True(t, v.RemainingAmount.IsZero())

	v = calc.CalculatePaymentValues(testContract(), due, &paidOn, decPtr("800.00"))
	assert.Equal(t, models.PaymentStatusPartial, v.Status)
	assert.True(t, v.RemainingAmount.Equal(dec("735")), "remaining %s", v.RemainingAmount)

	v = calc.CalculatePaymentValues(testContract(), due, &paidOn, decPtr("5000"))
	assert.False(t, v.RemainingAmount.IsNegative())
}

func TestValuesForBase(t *testing.T) {
	calc := NewCalculator(clock.FixedDate(2025, time.January, 15))
	due := date(2025, time.January, 5)

	v := calc.ValuesForBase(dec("1000"), testContract(), due, nil, nil)
	assert.True(t, v.BaseAmount.Equal(dec("1000")))
	assert.True(t, v.FineAmount.Equal(dec("20")), "fine %s", v.FineAmount)
	assert.True(t, v.TotalExpected.Equal(v.BaseAmount.Add(v.TotalAddition)))
	assert.Equal(t, models.PaymentStatusOverdue, v.Status)
}

func TestContractDurationMonths(t *testing.T) {
	assert.Equal(t, 12, ContractDurationMonths(date(2024, time.January, 1), date(2025, time.January, 1)))
	assert.Equal(t, 11, ContractDurationMonths(date(2024, time.January, 15), date(2025, time.January, 14)))
	assert.Equal(t, 0, ContractDurationMonths(date(2024, time.January, 31), date(2024, time.February, 29)))
	assert.Equal(t, 2, ContractDurationMonths(date(2024, time.January, 31), date(2024, time.March, 31)))
	assert.Equal(t, 1, ContractDurationMonths(date(2024, time.January, 31), date(2024, time.March, 30)))
	assert.Equal(t, 0, ContractDurationMonths(date(2025, time.January, 1), date(2024, time.January, 1)))
}

func TestContractExpiringNotice(t *testing.T) {
	end := date(2025, time.June, 30)
	c := testContract()
	c.EndDate = end

	cases := map[int]ExpiringNotice{
		62: NoticeNone,
		61: Notice60Days,
		60: Notice60Days,
		59: Notice60Days,
		58: NoticeNone,
		32: NoticeNone,
		31: Notice30Days,
		30: Notice30Days,
		29: Notice30Days,
		28: NoticeNone,
		0:  NoticeNone,
		-5: NoticeNone,
	}
	for daysLeft, want := range cases {
		today := end.AddDays(-daysLeft)
		calc := NewCalculator(clock.Fixed{T: today.Time})
		assert.Equal(t, want, calc.ContractExpiringNotice(c), "days left %d", daysLeft)
	}

	c.Status = models.ContractStatusTerminated
	calc := NewCalculator(clock.Fixed{T: end.AddDays(-60).Time})
	assert.Equal(t, NoticeNone, calc.ContractExpiringNotice(c))
}

func TestPaymentReminder(t *testing.T) {
	calc := NewCalculator(clock.FixedDate(2025, time.March, 10))

	assert.Equal(t, ReminderTwoDays, calc.PaymentReminder(date(2025, time.March, 12)))
	assert.Equal(t, ReminderDueToday, calc.PaymentReminder(date(2025, time.March, 10)))
	assert.Equal(t, ReminderNone, calc.PaymentReminder(date(2025, time.March, 11)))
	assert.Equal(t, ReminderNone, calc.PaymentReminder(date(2025, time.March, 9)))
}

func TestDueDateForMonthClampsToMonthEnd(t *testing.T) {
	calc := NewCalculator(clock.FixedDate(2025, time.January, 20))
	c := testContract() // starts on the 31st

	assert.Equal(t, date(2025, time.January, 31), calc.DueDateForMonth(c, 0))
	assert.Equal(t, date(2025, time.February, 28), calc.DueDateForMonth(c, 1))
	assert.Equal(t, date(2024, time.December, 31), calc.DueDateForMonth(c, -1))
	assert.Equal(t, date(2026, time.February, 28), calc.DueDateForMonth(c, 13))
}

func TestAddMonths(t *testing.T) {
	start := date(2024, time.January, 31)
	assert.Equal(t, date(2024, time.February, 29), AddMonths(start, 1))
	assert.Equal(t, date(2024, time.March, 31), AddMonths(start, 2))
	assert.Equal(t, date(2025, time.January, 31), AddMonths(start, 12))
}

func TestCanConfirm(t *testing.T) {
	assert.ErrorIs(t, CanConfirm(models.PaymentStatusPaid), ErrInvalidTransition)
	assert.NoError(t, CanConfirm(models.PaymentStatusOverdue))
}
