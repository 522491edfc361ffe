package model

import "time"

// StorageEntry is one key of the persistent store when it is backed by PostgreSQL
type StorageEntry struct {
	Key       string    `json:"key" gorm:"primaryKey;type:varchar(255)"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (StorageEntry) TableName() string {
	return "storage_entries"
}
