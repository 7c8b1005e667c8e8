package services

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/codyseavey/tcg-search/internal/metrics"
	"github.com/codyseavey/tcg-search/internal/models"
)

// SearchService answers card searches from the cache or from a provider
type SearchService struct {
	providers map[models.ProviderName]Provider
	cache     *SearchCache
	policy    AttemptPolicy
	index     *CardIndex
}

// SearchResult describes how a search was answered. It is returned even
// when the search fails so callers can trace attempts and upstream time.
type SearchResult struct {
	Query            models.SearchQuery
	Response         ProviderResponse
	Cards            []models.Card
	CacheHit         bool
	Attempts         int
	UpstreamDuration time.Duration
}

// NewSearchService wires the cache and providers together. A nil index disables card lookups by id.
func NewSearchService(cache *SearchCache, policy AttemptPolicy, index *CardIndex, providers ...Provider) *SearchService {
	byName := make(map[models.ProviderName]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &SearchService{
		providers: byName,
		cache:     cache,
		policy:    policy,
		index:     index,
	}
}

// Provider returns the provider registered under name
func (s *SearchService) Provider(name models.ProviderName) (Provider, bool) {
	p, ok := s.providers[name]
	return p, ok
}

func (s *SearchService) CardIndex() *CardIndex {
	return s.index
}

// Search validates q, serves it from the cache when fresh, and otherwise
// fetches it under the attempt policy and caches the successful payload.
func (s *SearchService) Search(ctx context.Context, q models.SearchQuery) (*SearchResult, error) {
	if q.Provider == "" {
		q.Provider = models.ProviderTCG
	}
	result := &SearchResult{Query: q}

	provider, ok := s.providers[q.Provider]
	if !ok {
		return result, validationError(ErrUnknownProvider)
	}

	q = q.Normalize(provider.MaxLimit())
	result.Query = q
	if err := q.Validate(); err != nil {
		return result, validationError(err)
	}

	key := q.CacheKey()
	if cached, hit := s.cache.Get(key); hit {
		metrics.SearchCacheLookups.WithLabelValues(string(q.Provider), "hit").Inc()
		cards, err := cached.Cards()
		if err != nil {
			return result, err
		}
		result.Response = cached
		result.Cards = cards
		result.CacheHit = true
		return result, nil
	}
	metrics.SearchCacheLookups.WithLabelValues(string(q.Provider), "miss").Inc()

	var resp ProviderResponse
	start := time.Now()
	attempts, err := s.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		if attempt > 1 {
			metrics.UpstreamRetriesTotal.WithLabelValues(string(q.Provider)).Inc()
		}
		attemptStart := time.Now()
		r, err := provider.Search(ctx, q)
		metrics.UpstreamRequestDuration.WithLabelValues(string(q.Provider)).Observe(time.Since(attemptStart).Seconds())
		if err != nil {
			metrics.UpstreamRequestsTotal.WithLabelValues(string(q.Provider), outcomeLabel(err)).Inc()
			return err
		}
		metrics.UpstreamRequestsTotal.WithLabelValues(string(q.Provider), "success").Inc()
		resp = r
		return nil
	})
	result.Attempts = attempts
	result.UpstreamDuration = time.Since(start)
	if err != nil {
		return result, err
	}

	cards, err := resp.Cards()
	if err != nil {
		// Not worth caching a payload we cannot read
		return result, &SearchError{
			Kind:     KindUpstream,
			Status:   http.StatusBadGateway,
			Provider: q.Provider,
			Message:  "upstream returned an unreadable payload",
			Body:     truncateBody(resp.Raw(), ""),
			Err:      err,
		}
	}

	s.cache.Set(key, resp)
	s.index.Add(cards...)

	result.Response = resp
	result.Cards = cards
	return result, nil
}

func outcomeLabel(err error) string {
	if se, ok := AsSearchError(err); ok {
		return string(se.Kind)
	}
	return "error"
}

// Trace formats the operator trace line for one search
func (r *SearchResult) Trace(requestID string, status int) string {
	cache := "miss"
	if r.CacheHit {
		cache = "hit"
	}
	return fmt.Sprintf("search request_id=%s provider=%s cache=%s attempts=%d upstream_ms=%d status=%d results=%d",
		requestID, r.Query.Provider, cache, r.Attempts, r.UpstreamDuration.Milliseconds(), status, len(r.Cards))
}

// LogTrace writes the trace line to the standard logger
func (r *SearchResult) LogTrace(requestID string, status int) {
	log.Print(r.Trace(requestID, status))
}
