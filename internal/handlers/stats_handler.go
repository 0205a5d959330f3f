package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rafflehq/raffle-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatsHandler handles stats-related HTTP requests
type StatsHandler struct {
	statsService services.StatsService
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetStats handles GET /raffles/:id/stats
func (h *StatsHandler) GetStats(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	stats, err := h.statsService.GetStats(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
