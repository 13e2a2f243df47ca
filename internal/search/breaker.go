package search

import (
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"rental-manager/internal/clock"
	"rental-manager/internal/models"
)

// ErrCircuitOpen is returned while the breaker rejects index calls
var ErrCircuitOpen = errors.New("search index circuit open")

// CircuitBreaker stops calling an index that keeps failing
type CircuitBreaker struct {
	failureThreshold int
	resetTimeout     time.Duration
	clock            clock.Clock

	mutex               sync.Mutex
	failures            int
	totalRequests       int
	consecutiveFailures int
	isOpen              bool
	lastFailureTime     time.Time
}

// BreakerStatus is a snapshot of the breaker counters
type BreakerStatus struct {
	Open          bool `json:"open"`
	Failures      int  `json:"failures"`
	TotalRequests int  `json:"total_requests"`
}

// NewCircuitBreaker opens after failureThreshold consecutive failures and
// lets one call through again after resetTimeout
func NewCircuitBreaker(failureThreshold int, resetTimeout time.Duration, c clock.Clock) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 3
	}
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		clock:            c,
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.totalRequests++
	cb.consecutiveFailures = 0
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failures++
	cb.consecutiveFailures++
	cb.totalRequests++
	cb.lastFailureTime = cb.clock.Now()

	if !cb.isOpen && cb.consecutiveFailures >= cb.failureThreshold {
		cb.isOpen = true
		log.Warnf("Search: circuit open after %d consecutive failures, retrying in %v", cb.consecutiveFailures, cb.resetTimeout)
	}
}

// CanProceed reports whether a call may reach the index. After the reset
// timeout the breaker closes and the next failure reopens it.
func (cb *CircuitBreaker) CanProceed() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if !cb.isOpen {
		return true
	}
	if cb.clock.Now().Sub(cb.lastFailureTime) > cb.resetTimeout {
		log.Info("Search: circuit half-open, retrying index")
		cb.isOpen = false
		cb.consecutiveFailures = cb.failureThreshold - 1
		return true
	}
	return false
}

func (cb *CircuitBreaker) Status() BreakerStatus {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return BreakerStatus{Open: cb.isOpen, Failures: cb.failures, TotalRequests: cb.totalRequests}
}

// Guarded routes every call to an index through a breaker
type Guarded struct {
	index   Index
	breaker *CircuitBreaker
}

func NewGuarded(index Index, breaker *CircuitBreaker) *Guarded {
	return &Guarded{index: index, breaker: breaker}
}

func (g *Guarded) call(fn func() error) error {
	if !g.breaker.CanProceed() {
		return ErrCircuitOpen
	}
	if err := fn(); err != nil {
		g.breaker.RecordFailure()
		return err
	}
	g.breaker.RecordSuccess()
	return nil
}

func (g *Guarded) IndexProperty(p *models.Property) error {
	return g.call(func() error { return g.index.IndexProperty(p) })
}

func (g *Guarded) IndexProperties(properties []models.Property) error {
	return g.call(func() error { return g.index.IndexProperties(properties) })
}

func (g *Guarded) DeleteProperty(id uint) error {
	return g.call(func() error { return g.index.DeleteProperty(id) })
}

func (g *Guarded) Search(userID uint, params FilterParams) ([]uint, error) {
	var ids []uint
	err := g.call(func() error {
		var err error
		ids, err = g.index.Search(userID, params)
		return err
	})
	return ids, err
}
