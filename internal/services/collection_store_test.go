package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/codyseavey/tcg-search/internal/models"
)

// memoryStorage is an in-memory KeyValueStorage that counts writes
type memoryStorage struct {
	values  map[string]string
	writes  int
	failSet bool
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{values: map[string]string{}}
}

func (m *memoryStorage) Get(key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryStorage) Set(key, value string) error {
	if m.failSet {
		return errors.New("disk full")
	}
	m.values[key] = value
	m.writes++
	return nil
}

func testCard(id string, market *float64) models.Card {
	c := models.Card{ID: id, Provider: models.ProviderTCG, Name: "Card " + id, SetName: "Set", Number: "1"}
	if market != nil {
		c.Prices = &models.Prices{Market: market}
	}
	return c
}

func TestCollectionStoreRejectsDuplicate(t *testing.T) {
	storage := newMemoryStorage()
	store := NewCollectionStore(storage)

	if _, err := store.Add(testCard("xy7-54", nil)); err != nil {
		t.Fatalf("First add failed: %v", err)
	}
	_, err := store.Add(testCard("xy7-54", models.Float(3)))
	if !errors.Is(err, ErrDuplicateCard) {
		t.Fatalf("Expected ErrDuplicateCard, got %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Expected collection length 1, got %d", store.Len())
	}
	if storage.writes != 1 {
		t.Errorf("Rejected add must not be persisted, got %d writes", storage.writes)
	}
}

func TestCollectionStoreRemovePreservesOrder(t *testing.T) {
	store := NewCollectionStore(newMemoryStorage())
	for _, id := range []string{"a", "b", "c"} {
		if _, err := store.Add(testCard(id, nil)); err != nil {
			t.Fatalf("Add %s failed: %v", id, err)
		}
	}

	removed, err := store.Remove(0)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if removed.Card.ID != "a" {
		t.Errorf("Expected to remove a, removed %s", removed.Card.ID)
	}

	entries := store.Entries()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Card.ID != "b" || entries[1].Card.ID != "c" {
		t.Errorf("Expected [b c], got [%s %s]", entries[0].Card.ID, entries[1].Card.ID)
	}
}

func TestCollectionStoreRemoveOutOfRange(t *testing.T) {
	store := NewCollectionStore(newMemoryStorage())
	store.Add(testCard("a", nil))

	for _, idx := range []int{-1, 1, 5} {
		if _, err := store.Remove(idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Remove(%d): expected ErrIndexOutOfRange, got %v", idx, err)
		}
	}
	if store.Len() != 1 {
		t.Errorf("Collection should be untouched, got %d entries", store.Len())
	}
}

func TestCollectionStoreValue(t *testing.T) {
	store := NewCollectionStore(newMemoryStorage())
	store.Add(testCard("priced", models.Float(12.50)))
	store.Add(testCard("priceless", nil))

	value := store.Value()
	if value.TotalValue != 12.50 {
		t.Errorf("Expected total 12.50, got %.2f", value.TotalValue)
	}
	if value.CardCount != 2 || value.PricedCount != 1 {
		t.Errorf("Expected 2 cards with 1 priced, got %d/%d", value.CardCount, value.PricedCount)
	}
	if len(value.PricelessCardIDs) != 1 || value.PricelessCardIDs[0] != "priceless" {
		t.Errorf("Expected priceless card flagged, got %v", value.PricelessCardIDs)
	}

	views := store.Views()
	if views[0].Priceless || views[0].Price == nil || *views[0].Price != 12.50 {
		t.Errorf("Priced card view wrong: %+v", views[0])
	}
	if !views[1].Priceless || views[1].Price != nil {
		t.Errorf("Priceless card must be flagged without a $0 price: %+v", views[1])
	}
}

func TestCollectionStoreRoundTrip(t *testing.T) {
	storage := newMemoryStorage()
	store := NewCollectionStore(storage)

	store.Add(testCard("a", models.Float(1.25)))
	store.Add(models.Card{
		ID:       "b",
		Provider: models.ProviderTCG,
		Name:     "Holo",
		Prices: &models.Prices{
			TCGPlayer:  map[models.PriceVariant]models.VariantPrice{models.VariantHolofoil: {Market: models.Float(9)}},
			Cardmarket: &models.CardmarketPrices{TrendPrice: models.Float(8)},
		},
	})
	store.Add(testCard("c", nil))

	reloaded := NewCollectionStore(storage)

	want := store.Entries()
	got := reloaded.Entries()
	if len(got) != len(want) {
		t.Fatalf("Expected %d entries after reload, got %d", len(want), len(got))
	}
	for i := range want {
		wantJSON, _ := json.Marshal(want[i].Card)
		gotJSON, _ := json.Marshal(got[i].Card)
		if string(wantJSON) != string(gotJSON) {
			t.Errorf("Entry %d card mismatch:\nwant %s\ngot  %s", i, wantJSON, gotJSON)
		}
		if !got[i].AddedAt.Equal(want[i].AddedAt) {
			t.Errorf("Entry %d added_at mismatch: %s vs %s", i, got[i].AddedAt, want[i].AddedAt)
		}
	}
}

func TestCollectionStoreCorruptStorageStartsEmpty(t *testing.T) {
	storage := newMemoryStorage()
	storage.values[CollectionStorageKey] = "{not json"

	store := NewCollectionStore(storage)
	if store.Len() != 0 {
		t.Errorf("Expected empty collection, got %d entries", store.Len())
	}

	// The store stays usable and overwrites the corrupt value
	if _, err := store.Add(testCard("a", nil)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	var entries []models.CollectionEntry
	if err := json.Unmarshal([]byte(storage.values[CollectionStorageKey]), &entries); err != nil {
		t.Errorf("Expected valid JSON after write, got %v", err)
	}
}

func TestCollectionStoreFailedPersistLeavesCollectionUnchanged(t *testing.T) {
	storage := newMemoryStorage()
	store := NewCollectionStore(storage)
	store.Add(testCard("a", nil))

	storage.failSet = true
	if _, err := store.Add(testCard("b", nil)); err == nil {
		t.Error("Expected persist failure to be reported")
	}
	if _, err := store.Remove(0); err == nil {
		t.Error("Expected persist failure to be reported")
	}
	if store.Len() != 1 {
		t.Errorf("Expected in-memory collection to be unchanged, got %d entries", store.Len())
	}
}

func TestCollectionStorePersistsEveryMutation(t *testing.T) {
	storage := newMemoryStorage()
	store := NewCollectionStore(storage)
	store.now = func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC) }

	store.Add(testCard("a", nil))
	store.Add(testCard("b", nil))
	store.Remove(1)

	if storage.writes != 3 {
		t.Errorf("Expected 3 writes, got %d", storage.writes)
	}
	want := `[{"card":{"id":"a","provider":"tcg","name":"Card a","set_name":"Set","number":"1","rarity":"","image_url":""},"added_at":"2026-10-19T08:00:00Z"}]`
	if storage.values[CollectionStorageKey] != want {
		t.Errorf("Unexpected stored value:\n%s", storage.values[CollectionStorageKey])
	}
}
