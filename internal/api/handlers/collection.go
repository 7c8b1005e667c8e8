package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/tcg-search/internal/models"
	"github.com/codyseavey/tcg-search/internal/services"
)

type CollectionHandler struct {
	store           *services.CollectionStore
	index           *services.CardIndex
	snapshotService *services.SnapshotService
}

// NewCollectionHandler creates the collection handler. snapshot may be nil,
// in which case the history endpoint reports itself unavailable.
func NewCollectionHandler(store *services.CollectionStore, index *services.CardIndex, snapshot *services.SnapshotService) *CollectionHandler {
	return &CollectionHandler{
		store:           store,
		index:           index,
		snapshotService: snapshot,
	}
}

func (h *CollectionHandler) GetCollection(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items": h.store.Views(),
		"value": h.store.Value(),
	})
}

// AddToCollection stores a snapshot of a card. The card is either sent in
// full or referenced by id from a recent search.
func (h *CollectionHandler) AddToCollection(c *gin.Context) {
	var req models.AddToCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var card models.Card
	switch {
	case req.Card != nil:
		card = *req.Card
		if card.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "card id is required"})
			return
		}
	case req.CardID != "":
		provider := req.Provider
		if provider == "" {
			provider = models.ProviderTCG
		}
		found, ok := h.index.Get(provider, req.CardID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found, please search for it first"})
			return
		}
		card = found
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "either 'card' or 'card_id' is required"})
		return
	}

	entry, err := h.store.Add(card)
	if errors.Is(err, services.ErrDuplicateCard) {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "duplicate card",
			"notice": err.Error(),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// DeleteCollectionItem removes the entry at the given list position
func (h *CollectionHandler) DeleteCollectionItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}

	removed, err := h.store.Remove(index)
	if errors.Is(err, services.ErrIndexOutOfRange) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"removed": removed,
		"items":   h.store.Views(),
	})
}

func (h *CollectionHandler) GetValue(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Value())
}

// ExportCollection streams the collection as an xlsx workbook
func (h *CollectionHandler) ExportCollection(c *gin.Context) {
	filename := fmt.Sprintf("collection-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := services.ExportCollection(c.Writer, h.store.Views(), h.store.Value()); err != nil {
		log.Printf("Failed to export collection: %v", err)
		c.Status(http.StatusInternalServerError)
	}
}

// GetValueHistory returns daily value snapshots for the requested period
func (h *CollectionHandler) GetValueHistory(c *gin.Context) {
	if h.snapshotService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "value history is not enabled"})
		return
	}

	period := c.DefaultQuery("period", "month")
	snapshots, err := h.snapshotService.GetHistory(period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.ValueHistoryResponse{
		Snapshots: snapshots,
		Period:    period,
	})
}
