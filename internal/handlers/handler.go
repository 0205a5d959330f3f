package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rafflehq/raffle-backend/internal/models"
	"github.com/rafflehq/raffle-backend/internal/services"
)

// respondError maps the domain error taxonomy onto HTTP statuses in one
// place. Conflict responses carry the offending ticket numbers so the
// operator can resubmit a corrected batch.
func respondError(c *gin.Context, err error) {
	var conflict *models.ConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":              "ticket numbers already issued",
			"conflictingNumbers": conflict.Numbers,
		})
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrSpaceExhausted),
		errors.Is(err, models.ErrImmutableDigitWidth):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrOutOfRange),
		errors.Is(err, models.ErrDuplicateInBatch),
		errors.Is(err, models.ErrQuantityMismatch),
		errors.Is(err, models.ErrMissingReason),
		errors.Is(err, models.ErrInvalidCursor):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case models.IsTransient(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporary upstream failure, retry later"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// pageQuery reads the cursor and limit query parameters shared by every
// list endpoint.
func pageQuery(c *gin.Context) (cursor string, limit int) {
	cursor = c.Query("cursor")
	limit = queryInt(c, "limit", 0)
	return cursor, limit
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	var n int
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return fallback
		}
		n = n*10 + int(raw[i]-'0')
	}
	return n
}
