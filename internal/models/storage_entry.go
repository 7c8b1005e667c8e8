package models

import "time"

// StorageEntry is one row of the durable key-value table.
type StorageEntry struct {
	Key       string `gorm:"column:storage_key;primaryKey;size:191"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}
