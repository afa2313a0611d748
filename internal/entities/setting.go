package entities

import (
	"time"
)

// StoredValue is a persisted account value. Secret values are stored encrypted.
type StoredValue struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	Secret    bool      `json:"secret"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StoredValue) TableName() string {
	return "account_values"
}

// Known account value keys
const (
	// Login information
	StoredKeyEmail        = "email"
	StoredKeyPassword     = "password"
	StoredKeySessionToken = "session_token"

	// Language selection
	StoredKeyNativeLanguage   = "language_native"
	StoredKeyLearningLanguage = "language_learning"
)
