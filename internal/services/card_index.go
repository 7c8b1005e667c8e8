package services

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codyseavey/tcg-search/internal/models"
)

// DefaultCardIndexSize is how many recently seen cards are remembered
const DefaultCardIndexSize = 500

// CardIndex remembers cards recently returned by searches so they can be
// fetched or added to the collection by id without another upstream call.
// A nil *CardIndex is valid and remembers nothing.
type CardIndex struct {
	cards *lru.Cache[string, models.Card]
}

func NewCardIndex(size int) (*CardIndex, error) {
	if size <= 0 {
		size = DefaultCardIndexSize
	}
	cards, err := lru.New[string, models.Card](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create card index: %w", err)
	}
	return &CardIndex{cards: cards}, nil
}

func (i *CardIndex) Add(cards ...models.Card) {
	if i == nil {
		return
	}
	for _, card := range cards {
		if card.ID == "" {
			continue
		}
		i.cards.Add(cardIndexKey(card.Provider, card.ID), card)
	}
}

func (i *CardIndex) Get(provider models.ProviderName, id string) (models.Card, bool) {
	if i == nil {
		return models.Card{}, false
	}
	return i.cards.Get(cardIndexKey(provider, id))
}

func (i *CardIndex) Len() int {
	if i == nil {
		return 0
	}
	return i.cards.Len()
}

func cardIndexKey(provider models.ProviderName, id string) string {
	return string(provider) + "/" + id
}
