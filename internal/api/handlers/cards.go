package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/tcg-search/internal/models"
	"github.com/codyseavey/tcg-search/internal/services"
)

type CardHandler struct {
	index *services.CardIndex
}

func NewCardHandler(index *services.CardIndex) *CardHandler {
	return &CardHandler{index: index}
}

// GetCard returns a card seen in a recent search. Cards are not fetched
// from upstream here: the keyed provider's quota is too small for lookups.
func (h *CardHandler) GetCard(c *gin.Context) {
	id := c.Param("id")
	provider := models.ProviderName(c.DefaultQuery("provider", string(models.ProviderTCG)))

	if !provider.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrUnknownProvider.Error()})
		return
	}

	card, ok := h.index.Get(provider, id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found, please search for it first"})
		return
	}

	c.JSON(http.StatusOK, card)
}
