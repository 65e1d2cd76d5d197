package models

import "time"

// EntityType identifies which replica table (and remote collection) an
// entity or queued operation belongs to.
type EntityType string

const (
	EntityLedgerEntry EntityType = "ledger_entry"
	EntityAccount     EntityType = "account"
	EntityBudget      EntityType = "budget"
	EntityGoal        EntityType = "goal"
)

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool {
	switch t {
	case EntityLedgerEntry, EntityAccount, EntityBudget, EntityGoal:
		return true
	}
	return false
}

// SyncMeta carries the offline bookkeeping fields shared by every replica
// row. SyncedAt is nil until the server has confirmed the row at least once.
// LocalID is set only for rows created while offline, before the server has
// assigned a permanent identifier.
type SyncMeta struct {
	SyncedAt    *time.Time `json:"synced_at,omitempty"`
	PendingSync bool       `json:"pending_sync"`
	LocalID     *string    `json:"local_id,omitempty"`
}
