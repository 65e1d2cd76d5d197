package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kakeibo-app/kakeibo/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// QueueManager is the single source of truth for which mutations have not
// yet reached the server. It owns retry bookkeeping and the backoff table;
// it never talks to the network itself.
type QueueManager interface {
	// Enqueue records a new mutation with status=pending and retry_count=0
	// and returns the persisted operation. entityID may be a client-local
	// identifier for entities that do not exist on the server yet.
	Enqueue(ctx context.Context, op models.OperationType, entityType models.EntityType, entityID string, payload json.RawMessage) (models.QueueOperation, error)

	// ListPending returns operations eligible for replay: status=pending and
	// retry_count below the ceiling, oldest first. Terminal rows never
	// appear here.
	ListPending(ctx context.Context) ([]models.QueueOperation, error)

	// MarkProcessing moves a pending operation to processing for the
	// duration of one replay attempt.
	MarkProcessing(ctx context.Context, id int64) error

	// MarkComplete deletes the row. Completed operations are not retained.
	MarkComplete(ctx context.Context, id int64) error

	// MarkFailed increments retry_count and records cause. The row returns
	// to pending, or becomes terminal failed when the ceiling is reached.
	MarkFailed(ctx context.Context, id int64, cause error) error

	// Count returns the number of pending operations, used for UI badges.
	Count(ctx context.Context) (int, error)

	// ClearFailed purges terminal rows. Explicit user action only.
	ClearFailed(ctx context.Context) error

	// RecoverStuck resets rows stranded in processing by an interrupted
	// drain back to pending. Called once at startup; returns the number of
	// recovered rows.
	RecoverStuck(ctx context.Context) (int64, error)

	// RemapEntityID rewrites the entity id on queued operations after a
	// replayed CREATE adopted its server-assigned identifier, so dependent
	// UPDATEs and DELETEs replay against the permanent id.
	RemapEntityID(ctx context.Context, entityType models.EntityType, oldID, newID string) error

	// BackoffFor returns the delay to wait before replaying op, indexed by
	// its retry count. Zero for a first attempt.
	BackoffFor(op models.QueueOperation) time.Duration
}

// SyncCoordinator decides when to drain the queue and publishes a
// consistent status view. One coordinator exists per running client.
type SyncCoordinator interface {
	// Run blocks, reacting to connectivity events, foreground signals and a
	// periodic timer until ctx is cancelled or Shutdown is called. It resets
	// stuck queue rows before processing the first trigger.
	Run(ctx context.Context) error

	// TriggerSync starts one drain pass. It is a no-op while offline or
	// while another drain is in flight: concurrent triggers collapse into a
	// single pass. It never returns an error; drain failures are captured
	// into the broadcast status.
	TriggerSync(ctx context.Context)

	// Foreground tells the coordinator the app returned to the foreground.
	Foreground(ctx context.Context)

	// Subscribe registers fn for status updates and calls it immediately
	// with the current snapshot. The returned function removes the
	// subscription.
	Subscribe(fn func(models.SyncStatus)) (unsubscribe func())

	// Status returns the current status snapshot.
	Status() models.SyncStatus

	// Shutdown stops Run, releasing timers and listeners. Safe to call more
	// than once.
	Shutdown()

	// Logout shuts the coordinator down and wipes every local table,
	// including the queue.
	Logout(ctx context.Context) error
}

// Mutation describes one remote write issued through the gateway.
type Mutation struct {
	Operation  models.OperationType
	EntityType models.EntityType

	// EntityID is required for UPDATE and DELETE. For CREATE it is left
	// empty and the gateway derives a client-local id when queueing.
	EntityID string

	// Payload is the request body, replayed verbatim if queued.
	Payload json.RawMessage

	// InvalidateKeys are read-cache keys dropped after a confirmed write.
	InvalidateKeys []string
}

// RemoteCall performs the actual network mutation and returns the server's
// response body, if any.
type RemoteCall func(ctx context.Context) (json.RawMessage, error)

// MutationResult is what the gateway hands back to the caller.
type MutationResult struct {
	// Queued is true when the mutation did not reach the server and was
	// recorded in the queue instead. Body is empty in that case.
	Queued bool

	// EntityID is the id the caller should use from now on. For a queued
	// CREATE this is a client-local id that will be remapped once the
	// server assigns a permanent one.
	EntityID string

	// Body is the server response for a confirmed mutation.
	Body json.RawMessage
}

// MutationGateway makes create/update/delete calls resilient to
// disconnection without the caller branching on connectivity.
//
// The correctness rule: an error is converted into a queued operation ONLY
// while the monitor reports offline. A failure while online is a genuine
// server-side answer (validation, conflict) and propagates unchanged, since
// queueing it would cause duplicate or incorrect replays.
type MutationGateway interface {
	Do(ctx context.Context, m Mutation, call RemoteCall) (MutationResult, error)
}

// CachePersister keeps the in-memory read-query cache alive across client
// restarts by snapshotting it into the metadata table. Writes are throttled
// to one flush per interval; everything is best-effort.
type CachePersister interface {
	// GetItem returns the cached value for key, if present.
	GetItem(key string) ([]byte, bool)

	// SetItem stores value under key and schedules a flush.
	SetItem(key string, value []byte)

	// RemoveItem drops key and schedules a flush.
	RemoveItem(key string)

	// Close flushes any pending snapshot and stops the persister.
	Close() error
}
