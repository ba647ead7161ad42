package models

import "time"

// StorageEntry is one key/value row of client storage in the SQL backends.
// Value stays plain text so a malformed blob can be stored and later recovered from.
type StorageEntry struct {
	Key       string `gorm:"column:storage_key;primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (StorageEntry) TableName() string {
	return "storage_entries"
}
