package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// OperationType is the kind of mutation recorded in the queue.
type OperationType string

const (
	OpCreate OperationType = "CREATE"
	OpUpdate OperationType = "UPDATE"
	OpDelete OperationType = "DELETE"
)

// Valid reports whether t is a known operation type.
func (t OperationType) Valid() bool {
	switch t {
	case OpCreate, OpUpdate, OpDelete:
		return true
	}
	return false
}

// OperationStatus is the resting state of a queued operation. A completed
// operation has no status: its row is deleted.
type OperationStatus string

const (
	// StatusPending means the operation is waiting for a drain pass.
	StatusPending OperationStatus = "pending"
	// StatusProcessing means a drain pass has picked the operation up.
	// Never a resting state: rows found in it at startup are reset to pending.
	StatusProcessing OperationStatus = "processing"
	// StatusFailed is terminal: the retry ceiling was reached and the
	// operation will not be retried automatically.
	StatusFailed OperationStatus = "failed"
)

// CanTransition reports whether moving from s to next is a legal queue
// transition. Repositories additionally enforce this in SQL so a racing
// writer cannot resurrect a terminal row.
func (s OperationStatus) CanTransition(next OperationStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusPending || next == StatusFailed
	default:
		return false
	}
}

// QueueOperation is a durable record of one mutation that has not yet
// reached the server.
type QueueOperation struct {
	ID         int64           `json:"id"`
	Operation  OperationType   `json:"operation_type"`
	EntityType EntityType      `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	RetryCount int             `json:"retry_count"`
	Status     OperationStatus `json:"status"`
	LastError  string          `json:"last_error,omitempty"`
}

func (op QueueOperation) String() string {
	return fmt.Sprintf("%s %s/%s (id=%d retries=%d)", op.Operation, op.EntityType, op.EntityID, op.ID, op.RetryCount)
}
