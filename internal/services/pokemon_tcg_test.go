package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codyseavey/tcg-search/internal/models"
)

const tcgFixture = `{
  "data": [
    {
      "id": "xy7-54",
      "name": "Gardevoir EX",
      "number": "54",
      "rarity": "Rare Holo EX",
      "set": {"id": "xy7", "name": "Ancient Origins"},
      "images": {"small": "https://images.example/xy7/54.png", "large": "https://images.example/xy7/54_hires.png"},
      "tcgplayer": {
        "url": "https://prices.example/xy7-54",
        "updatedAt": "2026/10/01",
        "prices": {"holofoil": {"low": 4.0, "mid": 6.5, "high": 20.0, "market": 6.12}}
      },
      "cardmarket": {"updatedAt": "2026/10/01", "prices": {"averageSellPrice": 5.1, "trendPrice": 5.4}}
    },
    {
      "id": "base1-99",
      "name": "Promo Energy",
      "number": "99",
      "rarity": "Promo",
      "set": {"id": "base1", "name": "Base"},
      "images": {"small": "s.png", "large": "l.png"}
    }
  ]
}`

func TestPokemonTCGSearchBuildsQuery(t *testing.T) {
	var gotQuery, gotPageSize, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotPageSize = r.URL.Query().Get("pageSize")
		w.Write([]byte(tcgFixture))
	}))
	defer server.Close()

	svc := newPokemonTCGService(server.URL, "", time.Second)
	resp, err := svc.Search(context.Background(), models.SearchQuery{Term: "gardevoir", Limit: 5})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if gotPath != "/cards" {
		t.Errorf("Expected /cards, got %s", gotPath)
	}
	if gotQuery != "name:gardevoir*" {
		t.Errorf("Expected name-prefix query, got %q", gotQuery)
	}
	if gotPageSize != "5" {
		t.Errorf("Expected pageSize 5, got %q", gotPageSize)
	}
	if string(resp.Raw()) != tcgFixture {
		t.Error("Expected upstream body to be returned unchanged")
	}
	if resp.Provider() != models.ProviderTCG {
		t.Errorf("Expected tcg provider tag, got %s", resp.Provider())
	}
}

func TestBuildTCGQuery(t *testing.T) {
	tests := []struct {
		name  string
		query models.SearchQuery
		want  string
	}{
		{"Single word", models.SearchQuery{Term: "pikachu"}, "name:pikachu*"},
		{"Multiple words", models.SearchQuery{Term: "dark charizard"}, `name:"dark charizard*"`},
		{"Quotes stripped", models.SearchQuery{Term: `mr "mime`}, `name:"mr mime*"`},
		{"Set only", models.SearchQuery{SetID: "base1"}, "set.id:base1"},
		{"Term and set", models.SearchQuery{Term: "mew", SetID: "sv4"}, "name:mew* set.id:sv4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildTCGQuery(tt.query); got != tt.want {
				t.Errorf("buildTCGQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPokemonTCGSendsOptionalKey(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	svc := newPokemonTCGService(server.URL, "tcg-key", time.Second)
	if _, err := svc.Search(context.Background(), models.SearchQuery{Term: "mew", Limit: 1}); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if gotKey != "tcg-key" {
		t.Errorf("Expected X-Api-Key header, got %q", gotKey)
	}
}

func TestPokemonTCGNotFoundIsEmptySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := newPokemonTCGService(server.URL, "", time.Second)
	resp, err := svc.Search(context.Background(), models.SearchQuery{Term: "missingno", Limit: 1})
	if err != nil {
		t.Fatalf("Expected 404 to be an empty success, got %v", err)
	}
	cards, err := resp.Cards()
	if err != nil {
		t.Fatalf("Cards failed: %v", err)
	}
	if len(cards) != 0 {
		t.Errorf("Expected no cards, got %d", len(cards))
	}
}

func TestPokemonTCGErrorStatuses(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusServiceUnavailable, KindUpstream},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":"nope"}`))
			}))
			defer server.Close()

			svc := newPokemonTCGService(server.URL, "", time.Second)
			_, err := svc.Search(context.Background(), models.SearchQuery{Term: "mew", Limit: 1})
			se, ok := AsSearchError(err)
			if !ok {
				t.Fatalf("Expected SearchError, got %v", err)
			}
			if se.Kind != tt.kind || se.Status != tt.status {
				t.Errorf("Got %s/%d, want %s/%d", se.Kind, se.Status, tt.kind, tt.status)
			}
			if se.Body != `{"error":"nope"}` {
				t.Errorf("Expected upstream body for diagnostics, got %q", se.Body)
			}
		})
	}
}

func TestPokemonTCGTimeoutBecomesGatewayTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	svc := newPokemonTCGService(server.URL, "", 50*time.Millisecond)
	_, err := svc.Search(context.Background(), models.SearchQuery{Term: "mew", Limit: 1})
	se, ok := AsSearchError(err)
	if !ok {
		t.Fatalf("Expected SearchError, got %v", err)
	}
	if se.Kind != KindTimeout || se.Status != http.StatusGatewayTimeout {
		t.Errorf("Expected timeout/504, got %s/%d", se.Kind, se.Status)
	}
	if !IsTransient(err) {
		t.Error("Timeouts should be retryable")
	}
}

func TestPokemonTCGUnreachableBecomesGatewayTimeout(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	svc := newPokemonTCGService(url, "", time.Second)
	_, err := svc.Search(context.Background(), models.SearchQuery{Term: "mew", Limit: 1})
	var se *SearchError
	if !errors.As(err, &se) || se.Status != http.StatusGatewayTimeout {
		t.Fatalf("Expected 504 SearchError, got %v", err)
	}
}

func TestTCGResponseCards(t *testing.T) {
	cards, err := NewTCGResponse([]byte(tcgFixture)).Cards()
	if err != nil {
		t.Fatalf("Cards failed: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(cards))
	}

	gardevoir := cards[0]
	if gardevoir.ID != "xy7-54" || gardevoir.SetName != "Ancient Origins" || gardevoir.Number != "54" {
		t.Errorf("Unexpected card fields: %+v", gardevoir)
	}
	if gardevoir.Provider != models.ProviderTCG {
		t.Errorf("Expected tcg provider, got %s", gardevoir.Provider)
	}
	if gardevoir.Prices == nil {
		t.Fatal("Expected a price block")
	}
	holo := gardevoir.Prices.TCGPlayer[models.VariantHolofoil]
	if holo.Market == nil || *holo.Market != 6.12 {
		t.Errorf("Expected holofoil market 6.12, got %v", holo.Market)
	}
	if gardevoir.Prices.Cardmarket == nil || *gardevoir.Prices.Cardmarket.TrendPrice != 5.4 {
		t.Error("Expected cardmarket trend price 5.4")
	}
	if price, ok := gardevoir.ResolvePrice(); !ok || price != 6.12 {
		t.Errorf("Expected resolved price 6.12, got %v (%v)", price, ok)
	}

	if cards[1].Prices != nil {
		t.Error("Card without price data must have a nil price block")
	}
}

func TestTCGResponseCardsInvalidJSON(t *testing.T) {
	if _, err := NewTCGResponse([]byte("<html>")).Cards(); err == nil {
		t.Error("Expected decode error")
	}
}
