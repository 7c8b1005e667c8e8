package client

import (
	"context"
	"errors"
	"sync"

	"github.com/codyseavey/tcg-search/internal/models"
)

// NoResultsNotice is shown when a search succeeds but matches nothing
const NoResultsNotice = "No cards found. Try a different search."

// Searcher is anything that can run a search against the proxy
type Searcher interface {
	Search(ctx context.Context, q models.SearchQuery) (*models.CardSearchResult, error)
}

// SearchState is what a search form renders
type SearchState struct {
	Loading  bool
	Query    models.SearchQuery
	Cards    []models.Card
	CacheHit bool
	Notice   string
	Err      *Error
}

// SearchSession drives one search form
type SearchSession struct {
	mu       sync.Mutex
	searcher Searcher
	state    SearchState
	onChange func(SearchState)
}

// NewSearchSession creates a session. onChange, if set, is called with
// every state transition.
func NewSearchSession(searcher Searcher, onChange func(SearchState)) *SearchSession {
	return &SearchSession{
		searcher: searcher,
		onChange: onChange,
	}
}

func (s *SearchSession) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit clears the previous error, enters the loading state, and runs q.
// The final state is returned as well as published to onChange.
func (s *SearchSession) Submit(ctx context.Context, q models.SearchQuery) SearchState {
	s.set(SearchState{Loading: true, Query: q, Cards: s.State().Cards})

	result, err := s.searcher.Search(ctx, q)

	next := SearchState{Query: q}
	switch {
	case err != nil:
		next.Err = classify(err)
	case len(result.Cards) == 0:
		next.Cards = []models.Card{}
		next.Notice = NoResultsNotice
	default:
		next.Cards = result.Cards
		next.CacheHit = result.Cache == "hit"
	}
	s.set(next)
	return next
}

func (s *SearchSession) set(state SearchState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(state)
	}
}

func classify(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return &Error{Kind: KindUnexpected, Err: err}
}
