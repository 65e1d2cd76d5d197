package store

import (
	"context"
	"time"

	"github.com/kakeibo-app/kakeibo/models"
)

// ReplicaRepository is the sync-bookkeeping surface every replica table
// exposes to the coordinator.
type ReplicaRepository interface {
	// MarkSynced records server agreement for the row: sets synced_at to
	// at and clears pending_sync. No-op error if the row is gone (the row
	// may have been deleted locally while its CREATE was in flight).
	MarkSynced(ctx context.Context, id string, at time.Time) error

	// AdoptServerID replaces a client-generated local id with the
	// permanent identifier assigned by the server, clearing local_id.
	AdoptServerID(ctx context.Context, localID, serverID string) error
}

// LedgerEntryRepository stores the local replica of ledger entries.
type LedgerEntryRepository interface {
	ReplicaRepository

	// Save inserts a new entry row exactly as given (bookkeeping fields
	// included). Used both for locally-created rows (pending_sync=true)
	// and single-row server absorptions.
	Save(ctx context.Context, entry models.LedgerEntry) error

	// Get returns one entry by id (permanent or local).
	// Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (models.LedgerEntry, error)

	// GetAll returns entries matching the filter, newest occurred_at
	// first. Zero filter fields are ignored.
	GetAll(ctx context.Context, filter models.LedgerEntryFilter) ([]models.LedgerEntry, error)

	// Update rewrites the entry's domain fields, stamps updated_at, and
	// sets pending_sync=true.
	Update(ctx context.Context, entry models.LedgerEntry) error

	// Delete removes the row.
	Delete(ctx context.Context, id string) error

	// BulkPut absorbs a freshly-fetched server page: upserts every row
	// with pending_sync=false and synced_at=syncedAt.
	BulkPut(ctx context.Context, entries []models.LedgerEntry, syncedAt time.Time) error
}

// AccountRepository stores the local replica of accounts.
type AccountRepository interface {
	ReplicaRepository

	Save(ctx context.Context, account models.Account) error
	Get(ctx context.Context, id string) (models.Account, error)
	GetAll(ctx context.Context) ([]models.Account, error)
	Update(ctx context.Context, account models.Account) error
	Delete(ctx context.Context, id string) error
	BulkPut(ctx context.Context, accounts []models.Account, syncedAt time.Time) error
}

// BudgetRepository stores the local replica of budgets.
type BudgetRepository interface {
	ReplicaRepository

	Save(ctx context.Context, budget models.Budget) error
	Get(ctx context.Context, id string) (models.Budget, error)
	GetAll(ctx context.Context) ([]models.Budget, error)
	Update(ctx context.Context, budget models.Budget) error
	Delete(ctx context.Context, id string) error
	BulkPut(ctx context.Context, budgets []models.Budget, syncedAt time.Time) error
}

// GoalRepository stores the local replica of goals.
type GoalRepository interface {
	ReplicaRepository

	Save(ctx context.Context, goal models.Goal) error
	Get(ctx context.Context, id string) (models.Goal, error)
	GetAll(ctx context.Context) ([]models.Goal, error)
	Update(ctx context.Context, goal models.Goal) error
	Delete(ctx context.Context, id string) error
	BulkPut(ctx context.Context, goals []models.Goal, syncedAt time.Time) error
}

// QueueRepository is the durable mutation queue. The queue manager is its
// only caller and the only writer of retry_count/status.
type QueueRepository interface {
	// Insert persists a new operation and returns its auto-assigned id.
	Insert(ctx context.Context, op models.QueueOperation) (int64, error)

	// Get returns one operation by id. Returns ErrNotFound if absent.
	Get(ctx context.Context, id int64) (models.QueueOperation, error)

	// ListPending returns operations with status=pending and
	// retry_count < maxRetries, oldest enqueued_at first.
	ListPending(ctx context.Context, maxRetries int) ([]models.QueueOperation, error)

	// MarkProcessing moves a pending operation to processing. Returns
	// ErrIllegalTransition if the row is not pending.
	MarkProcessing(ctx context.Context, id int64) error

	// Delete removes the row; completed operations are not retained.
	Delete(ctx context.Context, id int64) error

	// RecordFailure increments retry_count, stores lastError, and moves
	// the row back to pending, or to failed when the new count reaches
	// maxRetries. Returns ErrIllegalTransition if the row is not
	// processing.
	RecordFailure(ctx context.Context, id int64, lastError string, maxRetries int) error

	// CountPending returns the number of pending rows.
	CountPending(ctx context.Context) (int, error)

	// ClearFailed removes all terminal rows. User-triggered only.
	ClearFailed(ctx context.Context) error

	// ResetProcessing moves any processing rows back to pending. Called
	// once at startup so an interrupted drain never strands operations.
	ResetProcessing(ctx context.Context) (int64, error)

	// RemapEntityID rewrites entity_id on queued operations after a
	// CREATE replay adopted the server-assigned identifier.
	RemapEntityID(ctx context.Context, entityType models.EntityType, oldID, newID string) error
}

// MetadataRepository is a small key-value table used for cache snapshots
// and client bookkeeping.
type MetadataRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
