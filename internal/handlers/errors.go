package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"rental-manager/internal/billing"
	"rental-manager/internal/dashboard"
	"rental-manager/internal/models"
	"rental-manager/internal/repository"
	"rental-manager/internal/upload"
)

// errBadRequest marks business rule violations reported as 400
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// respondError maps domain errors to status codes. Unknown errors are logged
// and answered with a generic body.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, billing.ErrInvalidTransition),
		errors.Is(err, repository.ErrUnavailable),
		errors.Is(err, dashboard.ErrInvalidRange),
		errors.Is(err, upload.ErrExtension),
		errors.Is(err, upload.ErrTooLarge),
		errors.Is(err, errBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// invalidInput answers binding and validation failures
func invalidInput(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
}

// uintParam reads a numeric path parameter, answering 422 when it is malformed
func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		invalidInput(c, fmt.Errorf("invalid %s: %q", name, c.Param(name)))
		return 0, false
	}
	return uint(id), true
}

func parseID(c *gin.Context) (uint, bool) {
	return uintParam(c, "id")
}

// queryDate reads an optional YYYY-MM-DD query parameter
func queryDate(c *gin.Context, key string) (*models.Date, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		invalidInput(c, fmt.Errorf("invalid %s: %w", key, err))
		return nil, false
	}
	return &d, true
}

// queryInt reads an optional integer query parameter within [lo, hi]
func queryInt(c *gin.Context, key string, def, lo, hi int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		invalidInput(c, fmt.Errorf("%s must be an integer between %d and %d", key, lo, hi))
		return 0, false
	}
	return n, true
}

// queryUint reads an optional id query parameter
func queryUint(c *gin.Context, key string) (*uint, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		invalidInput(c, fmt.Errorf("invalid %s: %q", key, raw))
		return nil, false
	}
	id := uint(n)
	return &id, true
}
