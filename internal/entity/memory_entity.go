package entity

import (
	"time"

	"github.com/google/uuid"
)

// PreferenceValue is one long-term preference with its last write time.
// Merge is last-writer-wins per key.
type PreferenceValue struct {
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LongTermRecord is the per-user persistent memory. It survives sessions and
// process restarts; only merge-on-key mutation is allowed.
type LongTermRecord struct {
	UserId      uuid.UUID
	Preferences map[string]PreferenceValue
	Insights    []string
	UpdatedAt   time.Time
}
