package models

import (
	"time"
)

// CollectionValueSnapshot stores daily collection value for historical tracking
type CollectionValueSnapshot struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	SnapshotDate   time.Time `json:"snapshot_date" gorm:"uniqueIndex;not null"`
	CardCount      int       `json:"card_count"`
	PricedCount    int       `json:"priced_count"`
	PricelessCount int       `json:"priceless_count"`
	TotalValue     float64   `json:"total_value"`
	CreatedAt      time.Time `json:"created_at"`
}

// ValueHistoryResponse is the API response for value history
type ValueHistoryResponse struct {
	Snapshots []CollectionValueSnapshot `json:"snapshots"`
	Period    string                    `json:"period"` // "week", "month", "year", "all"
}
