package models

import (
	"time"
)

// CollectionEntry is a snapshot of a card taken when it was added. It is
// never refreshed from upstream afterwards.
type CollectionEntry struct {
	Card    Card      `json:"card"`
	AddedAt time.Time `json:"added_at"`
}

type CollectionValue struct {
	TotalValue       float64  `json:"total_value"`
	CardCount        int      `json:"card_count"`
	PricedCount      int      `json:"priced_count"`
	PricelessCardIDs []string `json:"priceless_card_ids"`
}

// CollectionEntryView is a collection entry with its resolved price. Price
// is nil for priceless cards so clients can show them as such instead of $0.
type CollectionEntryView struct {
	Index     int             `json:"index"`
	Entry     CollectionEntry `json:"entry"`
	Price     *float64        `json:"price"`
	Priceless bool            `json:"priceless"`
}

type AddToCollectionRequest struct {
	Card     *Card        `json:"card"`
	CardID   string       `json:"card_id"`
	Provider ProviderName `json:"provider"`
}
