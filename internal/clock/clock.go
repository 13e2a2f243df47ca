// Package clock provides the time source used for every "today" decision.
package clock

import (
	"time"

	"rental-manager/internal/models"
)

// Clock returns the current instant
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in a fixed location
type System struct {
	loc *time.Location
}

// NewSystem returns a wall clock; a nil location means UTC
func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.UTC
	}
	return System{loc: loc}
}

func (s System) Now() time.Time {
	if s.loc == nil {
		return time.Now().UTC()
	}
	return time.Now().In(s.loc)
}

// Fixed always returns the same instant
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}

// FixedDate returns a clock stopped at noon UTC on the given day
func FixedDate(year int, month time.Month, day int) Fixed {
	return Fixed{T: time.Date(year, month, day, 12, 0, 0, 0, time.UTC)}
}

// Today returns the calendar date of c in c's location
func Today(c Clock) models.Date {
	return models.NewDate(c.Now())
}
