package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stepClock struct {
	now time.Time
}

func (s *stepClock) Now() time.Time { return s.now }

func TestAllowRequestPerKey(t *testing.T) {
	clk := &stepClock{now: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(2, 3, 0, true, clk)

	assert.True(t, rl.AllowRequest("1"))
	assert.True(t, rl.AllowRequest("1"))
	assert.False(t, rl.AllowRequest("1"))
	// other users have their own bucket
	assert.True(t, rl.AllowRequest("2"))

	clk.now = clk.now.Add(61 * time.Second)
	assert.True(t, rl.AllowRequest("1"))
	// hourly limit of 3 reached
	clk.now = clk.now.Add(61 * time.Second)
	assert.False(t, rl.AllowRequest("1"))

	stats := rl.GetStats("1")
	assert.Equal(t, 3, stats.RequestsLastHour)
	assert.Equal(t, 0, stats.RemainingThisHour)

	rl.Reset()
	assert.True(t, rl.AllowRequest("1"))
}

func TestDisabledLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 1, 1, false, &stepClock{now: time.Now()})
	for i := 0; i < 5; i++ {
		assert.True(t, rl.AllowRequest("k"))
	}
	assert.False(t, rl.GetStats("k").Enabled)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, 0, 0, true, &stepClock{now: time.Now()})

	r := gin.New()
	r.GET("/work", rl.Middleware(func(c *gin.Context) string { return c.GetHeader("X-User") }), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	do := func(user string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/work", nil)
		req.Header.Set("X-User", user)
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, do("a"))
	assert.Equal(t, http.StatusTooManyRequests, do("a"))
	assert.Equal(t, http.StatusNoContent, do("b"))
}
