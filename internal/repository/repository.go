// Package repository holds one query object per entity. Every query is scoped
// by the owning user's id; a repository wraps whatever *gorm.DB it is given, so
// handlers build them per request from a context-bound session or transaction.
package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no row matches the id for the user
	ErrNotFound = errors.New("not found")
	// ErrUnavailable is returned when a property already has an active contract in a period
	ErrUnavailable = errors.New("property unavailable for the requested period")
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Page is the skip/limit window shared by list filters
type Page struct {
	Skip  int `form:"skip"`
	Limit int `form:"limit"`
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	limit := p.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	skip := p.Skip
	if skip < 0 {
		skip = 0
	}
	return q.Offset(skip).Limit(limit)
}

// notFound translates gorm's record-not-found into ErrNotFound
func notFound(err error, entity string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
	}
	return err
}

// deleted reports ErrNotFound when a scoped delete touched nothing
func deleted(result *gorm.DB, entity string, id interface{}) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
	}
	return nil
}
