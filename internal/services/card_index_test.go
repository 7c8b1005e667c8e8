package services

import (
	"testing"

	"github.com/codyseavey/tcg-search/internal/models"
)

func TestCardIndexKeysByProvider(t *testing.T) {
	index, err := NewCardIndex(10)
	if err != nil {
		t.Fatalf("NewCardIndex failed: %v", err)
	}

	index.Add(
		models.Card{ID: "1", Provider: models.ProviderTCG, Name: "Open"},
		models.Card{ID: "1", Provider: models.ProviderPriceTracker, Name: "Keyed"},
		models.Card{Provider: models.ProviderTCG, Name: "No id"},
	)

	if index.Len() != 2 {
		t.Errorf("Expected cards without ids to be skipped, got %d entries", index.Len())
	}
	if card, ok := index.Get(models.ProviderTCG, "1"); !ok || card.Name != "Open" {
		t.Errorf("Unexpected tcg card %+v", card)
	}
	if card, ok := index.Get(models.ProviderPriceTracker, "1"); !ok || card.Name != "Keyed" {
		t.Errorf("Unexpected pricetracker card %+v", card)
	}
}

func TestCardIndexEvictsLeastRecent(t *testing.T) {
	index, _ := NewCardIndex(2)
	index.Add(models.Card{ID: "a", Provider: models.ProviderTCG})
	index.Add(models.Card{ID: "b", Provider: models.ProviderTCG})
	index.Add(models.Card{ID: "c", Provider: models.ProviderTCG})

	if _, ok := index.Get(models.ProviderTCG, "a"); ok {
		t.Error("Oldest card should have been evicted")
	}
}

func TestNilCardIndexRemembersNothing(t *testing.T) {
	var index *CardIndex
	index.Add(models.Card{ID: "xy7-54", Provider: models.ProviderTCG})
	if _, ok := index.Get(models.ProviderTCG, "xy7-54"); ok {
		t.Error("Expected nil index to miss")
	}
	if index.Len() != 0 {
		t.Errorf("Expected 0, got %d", index.Len())
	}
}
