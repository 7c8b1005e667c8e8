package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/tcg-search/internal/models"
	"github.com/codyseavey/tcg-search/internal/services"
)

// CacheHeader reports whether a search was answered from the cache
const CacheHeader = "X-Cache"

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "request_id"

type SearchHandler struct {
	searchService *services.SearchService
}

func NewSearchHandler(searchService *services.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchCards proxies a card search to the selected provider. The response
// is normalized to the shared card shape unless raw=true is given, in which
// case the upstream body is returned untouched.
func (h *SearchHandler) SearchCards(c *gin.Context) {
	query, err := parseSearchQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": services.KindValidation, "status": http.StatusBadRequest})
		if query.Provider == "" {
			query.Provider = models.ProviderTCG
		}
		rejected := &services.SearchResult{Query: query}
		rejected.LogTrace(c.GetString(RequestIDKey), http.StatusBadRequest)
		return
	}

	result, err := h.searchService.Search(c.Request.Context(), query)
	if err != nil {
		status := writeSearchError(c, err)
		result.LogTrace(c.GetString(RequestIDKey), status)
		return
	}

	if result.CacheHit {
		c.Header(CacheHeader, "HIT")
	} else {
		c.Header(CacheHeader, "MISS")
	}
	result.LogTrace(c.GetString(RequestIDKey), http.StatusOK)

	if raw, _ := strconv.ParseBool(c.Query("raw")); raw {
		c.Data(http.StatusOK, "application/json; charset=utf-8", result.Response.Raw())
		return
	}

	cacheStatus := "miss"
	if result.CacheHit {
		cacheStatus = "hit"
	}
	c.JSON(http.StatusOK, models.CardSearchResult{
		Cards:    result.Cards,
		Provider: result.Query.Provider,
		Cache:    cacheStatus,
	})
}

func parseSearchQuery(c *gin.Context) (models.SearchQuery, error) {
	q := models.SearchQuery{
		Term:     c.Query("search"),
		SetID:    c.Query("setId"),
		Provider: models.ProviderName(strings.ToLower(strings.TrimSpace(c.Query("provider")))),
		Rarity:   c.Query("rarity"),
	}

	// The limit is clamped later; garbage just means "use the default".
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		q.Limit = limit
	}

	var err error
	if q.MinPrice, err = parsePrice(c, "minPrice"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = parsePrice(c, "maxPrice"); err != nil {
		return q, err
	}
	if v := c.Query("includeHistory"); v != "" {
		q.IncludeHistory, _ = strconv.ParseBool(v)
	}
	return q, nil
}

func parsePrice(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, errors.New("query parameter '" + name + "' must be a non-negative number")
	}
	return &v, nil
}

// writeSearchError renders err as the typed error envelope and returns the
// status that was written.
func writeSearchError(c *gin.Context, err error) int {
	se, ok := services.AsSearchError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": "internal", "status": http.StatusInternalServerError})
		return http.StatusInternalServerError
	}

	body := gin.H{
		"error":  se.Message,
		"kind":   se.Kind,
		"status": se.Status,
	}
	if se.Provider != "" {
		body["provider"] = se.Provider
	}
	if se.Body != "" {
		body["details"] = se.Body
	}
	c.JSON(se.Status, body)
	return se.Status
}
