package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/codyseavey/tcg-search/internal/metrics"
	"github.com/codyseavey/tcg-search/internal/models"
)

// CollectionStorageKey is the single storage key holding the whole collection
const CollectionStorageKey = "tcg-collection"

var (
	ErrDuplicateCard   = errors.New("card is already in your collection")
	ErrIndexOutOfRange = errors.New("collection index out of range")
)

// KeyValueStorage is durable string storage addressed by key
type KeyValueStorage interface {
	// Get returns found=false, with no error, when key has never been set.
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
}

// CollectionStore keeps the saved card list in memory and mirrors the full
// list to storage after every mutation. Concurrent writers from different
// processes are not coordinated: the last write wins.
type CollectionStore struct {
	mu      sync.Mutex
	storage KeyValueStorage
	entries []models.CollectionEntry
	now     func() time.Time
}

// NewCollectionStore loads the collection once. Unreadable or corrupt
// content is logged and treated as an empty collection.
func NewCollectionStore(storage KeyValueStorage) *CollectionStore {
	s := &CollectionStore{
		storage: storage,
		now:     time.Now,
	}
	s.entries = s.load()
	s.updateMetrics()
	return s
}

func (s *CollectionStore) load() []models.CollectionEntry {
	raw, found, err := s.storage.Get(CollectionStorageKey)
	if err != nil {
		log.Printf("Warning: failed to read collection from storage: %v", err)
		return []models.CollectionEntry{}
	}
	if !found || raw == "" {
		return []models.CollectionEntry{}
	}

	var entries []models.CollectionEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		log.Printf("Warning: stored collection is corrupt, starting empty: %v", err)
		return []models.CollectionEntry{}
	}
	if entries == nil {
		entries = []models.CollectionEntry{}
	}
	return entries
}

// persist writes entries to storage. Caller holds s.mu.
func (s *CollectionStore) persist(entries []models.CollectionEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	if err := s.storage.Set(CollectionStorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	return nil
}

// Entries returns a copy of the collection in insertion order
func (s *CollectionStore) Entries() []models.CollectionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CollectionEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *CollectionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Add appends a snapshot of card. A card whose id is already stored is
// rejected with ErrDuplicateCard.
func (s *CollectionStore) Add(card models.Card) (models.CollectionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.Card.ID == card.ID {
			return models.CollectionEntry{}, fmt.Errorf("%w: %s", ErrDuplicateCard, displayName(card))
		}
	}

	entry := models.CollectionEntry{
		Card:    card,
		AddedAt: s.now().UTC().Round(0),
	}
	next := make([]models.CollectionEntry, len(s.entries), len(s.entries)+1)
	copy(next, s.entries)
	next = append(next, entry)

	if err := s.persist(next); err != nil {
		return models.CollectionEntry{}, err
	}
	s.entries = next
	s.updateMetricsLocked()
	return entry, nil
}

// Remove deletes the entry at index, keeping the order of the rest.
func (s *CollectionStore) Remove(index int) (models.CollectionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.entries) {
		return models.CollectionEntry{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	removed := s.entries[index]
	next := make([]models.CollectionEntry, 0, len(s.entries)-1)
	next = append(next, s.entries[:index]...)
	next = append(next, s.entries[index+1:]...)

	if err := s.persist(next); err != nil {
		return models.CollectionEntry{}, err
	}
	s.entries = next
	s.updateMetricsLocked()
	return removed, nil
}

// Value sums the resolved price of every card. Priceless cards add nothing
// and are listed separately.
func (s *CollectionStore) Value() models.CollectionValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return collectionValue(s.entries)
}

// Views returns each entry with its resolved price, nil for priceless cards
func (s *CollectionStore) Views() []models.CollectionEntryView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]models.CollectionEntryView, len(s.entries))
	for i, e := range s.entries {
		views[i] = models.CollectionEntryView{Index: i, Entry: e}
		if price, ok := e.Card.ResolvePrice(); ok {
			views[i].Price = models.Float(price)
		} else {
			views[i].Priceless = true
		}
	}
	return views
}

func collectionValue(entries []models.CollectionEntry) models.CollectionValue {
	value := models.CollectionValue{
		CardCount:        len(entries),
		PricelessCardIDs: []string{},
	}
	for _, e := range entries {
		price, ok := e.Card.ResolvePrice()
		if !ok {
			value.PricelessCardIDs = append(value.PricelessCardIDs, e.Card.ID)
			continue
		}
		value.TotalValue += price
		value.PricedCount++
	}
	return value
}

func (s *CollectionStore) updateMetrics() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateMetricsLocked()
}

func (s *CollectionStore) updateMetricsLocked() {
	value := collectionValue(s.entries)
	metrics.CollectionCardsTotal.Set(float64(value.CardCount))
	metrics.CollectionValueUSD.Set(value.TotalValue)
	metrics.CollectionPricelessCards.Set(float64(len(value.PricelessCardIDs)))
}

func displayName(card models.Card) string {
	if card.Name == "" {
		return card.ID
	}
	return fmt.Sprintf("%s (%s)", card.Name, card.ID)
}
