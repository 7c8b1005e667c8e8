package models

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultSearchLimit = 12
	MaxSearchLimit     = 20
)

var ErrMissingSearchTerm = errors.New("query parameter 'search' or 'setId' is required")

// SearchQuery is one inbound search request. Zero values mean "not given".
type SearchQuery struct {
	Term           string       `json:"search,omitempty"`
	SetID          string       `json:"setId,omitempty"`
	Limit          int          `json:"limit,omitempty"`
	Provider       ProviderName `json:"provider,omitempty"`
	MinPrice       *float64     `json:"minPrice,omitempty"`
	MaxPrice       *float64     `json:"maxPrice,omitempty"`
	Rarity         string       `json:"rarity,omitempty"`
	IncludeHistory bool         `json:"includeHistory,omitempty"`
}

// Normalize trims text fields, fills in the default provider and limit, and
// clamps the limit to maxLimit (itself capped at MaxSearchLimit).
func (q SearchQuery) Normalize(maxLimit int) SearchQuery {
	q.Term = strings.TrimSpace(q.Term)
	q.SetID = strings.TrimSpace(q.SetID)
	q.Rarity = strings.TrimSpace(q.Rarity)
	if q.Provider == "" {
		q.Provider = ProviderTCG
	}

	if maxLimit <= 0 || maxLimit > MaxSearchLimit {
		maxLimit = MaxSearchLimit
	}
	if q.Limit <= 0 {
		q.Limit = DefaultSearchLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return q
}

func (q SearchQuery) Validate() error {
	if strings.TrimSpace(q.Term) == "" && strings.TrimSpace(q.SetID) == "" {
		return ErrMissingSearchTerm
	}
	return nil
}

// Values renders the query in the proxy's own query-parameter dialect.
func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	if q.Term != "" {
		v.Set("search", q.Term)
	}
	if q.SetID != "" {
		v.Set("setId", q.SetID)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Provider != "" {
		v.Set("provider", string(q.Provider))
	}
	if q.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}
	if q.Rarity != "" {
		v.Set("rarity", q.Rarity)
	}
	if q.IncludeHistory {
		v.Set("includeHistory", "true")
	}
	return v
}

// CacheKey is the canonical serialization of every recognized parameter.
// url.Values.Encode sorts by key, so field order never matters.
func (q SearchQuery) CacheKey() string {
	return q.Values().Encode()
}
