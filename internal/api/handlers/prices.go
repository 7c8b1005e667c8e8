package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/tcg-search/internal/services"
)

type PriceHandler struct {
	priceTracker *services.PokemonPriceTrackerService
}

func NewPriceHandler(priceTracker *services.PokemonPriceTrackerService) *PriceHandler {
	return &PriceHandler{
		priceTracker: priceTracker,
	}
}

// GetPriceStatus returns the current pricetracker quota status
func (h *PriceHandler) GetPriceStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"provider":           "pricetracker",
		"daily_limit":        h.priceTracker.GetDailyLimit(),
		"requests_remaining": h.priceTracker.GetRequestsRemaining(),
	})
}
