package model

import (
	"time"

	"gorm.io/datatypes"
)

// KVEntry is one document of the key-value store shared with the client app.
type KVEntry struct {
	Key       string         `gorm:"primaryKey;size:191"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}
