// Package billing holds the rent arithmetic: overdue days, fine and interest,
// payment status and the calendar helpers the notification generator relies on.
package billing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"rental-manager/internal/clock"
	"rental-manager/internal/models"
)

var (
	hundred = decimal.NewFromInt(100)
	// monthly interest is prorated over a 30-day month
	interestDivisor = decimal.NewFromInt(30 * 100)
)

// ErrInvalidTransition is returned when an entity is not in a state that
// allows the requested action
var ErrInvalidTransition = errors.New("invalid status transition")

// ExpiringNotice is the contract-expiring notification kind
type ExpiringNotice string

const (
	NoticeNone   ExpiringNotice = ""
	Notice60Days ExpiringNotice = "60_days"
	Notice30Days ExpiringNotice = "30_days"
)

// Days returns the nominal day count of the notice
func (n ExpiringNotice) Days() int {
	switch n {
	case Notice60Days:
		return 60
	case Notice30Days:
		return 30
	}
	return 0
}

// Reminder is the payment reminder kind
type Reminder string

const (
	ReminderNone     Reminder = ""
	ReminderTwoDays  Reminder = "2_days_before"
	ReminderDueToday Reminder = "due_today"
)

// PaymentValues is the full breakdown of a payment as of a reference date
type PaymentValues struct {
	BaseAmount      decimal.Decimal      `json:"base_amount"`
	FineAmount      decimal.Decimal      `json:"fine_amount"`
	InterestAmount  decimal.Decimal      `json:"interest_amount"`
	TotalAddition   decimal.Decimal      `json:"total_addition"`
	TotalExpected   decimal.Decimal      `json:"total_expected"`
	DaysOverdue     int                  `json:"days_overdue"`
	Status          models.PaymentStatus `json:"status"`
	PaidAmount      decimal.Decimal      `json:"paid_amount"`
	RemainingAmount decimal.Decimal      `json:"remaining_amount"`
}

// Calculator evaluates payment rules against an injected clock
type Calculator struct {
	clock clock.Clock
}

// NewCalculator creates a calculator reading "today" from c
func NewCalculator(c clock.Clock) *Calculator {
	return &Calculator{clock: c}
}

// Today returns the current calendar date
func (c *Calculator) Today() models.Date {
	return clock.Today(c.clock)
}

// DaysOverdue returns how many whole days reference is past due, never negative
func DaysOverdue(due, reference models.Date) int {
	if !reference.After(due) {
		return 0
	}
	return reference.DaysSince(due)
}

// DaysOverdue uses the payment date as reference, or today when unpaid
func (c *Calculator) DaysOverdue(due models.Date, paymentDate *models.Date) int {
	reference := c.Today()
	if paymentDate != nil {
		reference = *paymentDate
	}
	return DaysOverdue(due, reference)
}

// FineAndInterest computes the flat fine and the daily-prorated interest on base.
// Rates are percentages; interestRate is monthly. Everything is zero when the
// payment is not overdue.
func FineAndInterest(base, fineRate, interestRate decimal.Decimal, daysOverdue int) (fine, interest, total decimal.Decimal) {
	if daysOverdue <= 0 {
		return decimal.Zero, decimal.Zero, decimal.Zero
	}
	fine = base.Mul(fineRate).Div(hundred)
	interest = base.Mul(interestRate).Mul(decimal.NewFromInt(int64(daysOverdue))).Div(interestDivisor)
	return fine, interest, fine.Add(interest)
}

// StatusAt derives the payment status as of today. A nil or zero paid amount
// means nothing was received.
func StatusAt(today, due models.Date, paid *decimal.Decimal, totalExpected decimal.Decimal) models.PaymentStatus {
	if paid == nil || paid.IsZero() {
		if today.After(due) {
			return models.PaymentStatusOverdue
		}
		return models.PaymentStatusPending
	}
	if paid.GreaterThanOrEqual(totalExpected) {
		return models.PaymentStatusPaid
	}
	return models.PaymentStatusPartial
}

// DetermineStatus is StatusAt evaluated on the calculator's clock
func (c *Calculator) DetermineStatus(due models.Date, paid *decimal.Decimal, totalExpected decimal.Decimal) models.PaymentStatus {
	return StatusAt(c.Today(), due, paid, totalExpected)
}

// CalculatePaymentValues composes the rules for a payment of contract due on due
func (c *Calculator) CalculatePaymentValues(contract *models.Contract, due models.Date, paymentDate *models.Date, paid *decimal.Decimal) PaymentValues {
	return c.ValuesForBase(contract.Rent, contract, due, paymentDate, paid)
}

// ValuesForBase is CalculatePaymentValues for an installment whose base
// differs from the contract rent
func (c *Calculator) ValuesForBase(base decimal.Decimal, contract *models.Contract, due models.Date, paymentDate *models.Date, paid *decimal.Decimal) PaymentValues {
	days := c.DaysOverdue(due, paymentDate)
	fine, interest, addition := FineAndInterest(base, contract.FineRate, contract.InterestRate, days)
	expected := base.Add(addition)

	paidAmount := decimal.Zero
	if paid != nil {
		paidAmount = *paid
	}
	remaining := expected.Sub(paidAmount)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return PaymentValues{
		BaseAmount:      base,
		FineAmount:      fine,
		InterestAmount:  interest,
		TotalAddition:   addition,
		TotalExpected:   expected,
		DaysOverdue:     days,
		Status:          c.DetermineStatus(due, paid, expected),
		PaidAmount:      paidAmount,
		RemainingAmount: remaining,
	}
}

// ContractDurationMonths counts whole months from start to end
func ContractDurationMonths(start, end models.Date) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// DaysUntilContractEnd is negative once the contract has ended
func (c *Calculator) DaysUntilContractEnd(contract *models.Contract) int {
	return contract.EndDate.DaysSince(c.Today())
}

// ContractExpiringNotice reports which expiring notice applies today. The
// windows are three days wide so a daily run that skips a day still notifies.
func (c *Calculator) ContractExpiringNotice(contract *models.Contract) ExpiringNotice {
	if !contract.IsActive() {
		return NoticeNone
	}
	days := c.DaysUntilContractEnd(contract)
	switch {
	case days >= 59 && days <= 61:
		return Notice60Days
	case days >= 29 && days <= 31:
		return Notice30Days
	}
	return NoticeNone
}

// PaymentReminder reports which reminder applies to a payment due on due
func (c *Calculator) PaymentReminder(due models.Date) Reminder {
	switch due.DaysSince(c.Today()) {
	case 2:
		return ReminderTwoDays
	case 0:
		return ReminderDueToday
	}
	return ReminderNone
}

// DueDateForMonth returns the due date monthOffset months from the current
// month, on the contract's start day clamped to the month's last day
func (c *Calculator) DueDateForMonth(contract *models.Contract, monthOffset int) models.Date {
	today := c.Today()
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, monthOffset, 0)
	return clampDay(first.Year(), first.Month(), contract.StartDate.Day())
}

// AddMonths shifts d by n months keeping the day, clamped to the month's end
func AddMonths(d models.Date, n int) models.Date {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return clampDay(first.Year(), first.Month(), d.Day())
}

func clampDay(year int, month time.Month, day int) models.Date {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return models.MakeDate(year, month, day)
}

// CanConfirm reports whether a payment in status may be confirmed as paid
func CanConfirm(status models.PaymentStatus) error {
	if status == models.PaymentStatusPaid {
		return ErrInvalidTransition
	}
	return nil
}
