package models

import "time"

// SyncStatus is the coordinator's broadcastable view of the sync subsystem.
// It is ephemeral: created at process start and never persisted. Only the
// coordinator mutates it; subscribers receive copies.
type SyncStatus struct {
	IsOnline     bool       `json:"is_online"`
	IsSyncing    bool       `json:"is_syncing"`
	PendingCount int        `json:"pending_count"`
	LastSyncAt   *time.Time `json:"last_sync_at,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
}

// Settled reports whether there is nothing to show the user: online, idle,
// no backlog, no error.
func (s SyncStatus) Settled() bool {
	return s.IsOnline && !s.IsSyncing && s.PendingCount == 0 && s.LastError == ""
}
