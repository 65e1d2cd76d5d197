package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kakeibo-app/kakeibo/internal/logger"
	"github.com/kakeibo-app/kakeibo/internal/store"
	"github.com/kakeibo-app/kakeibo/models"
)

// MaxRetries is the replay ceiling: an operation failing this many times
// becomes terminal failed and is skipped by subsequent drains.
const MaxRetries = 5

// backoffSchedule is indexed by min(retry_count-1, len-1). The delay is paid
// once per drained operation, not per drain pass, so a long backlog with
// mixed retry counts drains at variable speed but never blocks indefinitely.
var backoffSchedule = [...]time.Duration{
	1 * time.Second,
	2 * time.Second,
	4 * time.Second,
	8 * time.Second,
	16 * time.Second,
}

type queueManager struct {
	queue store.QueueRepository
}

func NewQueueManager(queue store.QueueRepository) QueueManager {
	return &queueManager{queue: queue}
}

func (m *queueManager) Enqueue(ctx context.Context, op models.OperationType, entityType models.EntityType, entityID string, payload json.RawMessage) (models.QueueOperation, error) {
	log := logger.FromContext(ctx)

	if !op.Valid() {
		return models.QueueOperation{}, fmt.Errorf("%w: %q", ErrInvalidOperation, op)
	}
	if !entityType.Valid() {
		return models.QueueOperation{}, fmt.Errorf("%w: %q", ErrInvalidEntityType, entityType)
	}
	if entityID == "" {
		return models.QueueOperation{}, ErrEmptyEntityID
	}

	operation := models.QueueOperation{
		Operation:  op,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
		Status:     models.StatusPending,
	}

	id, err := m.queue.Insert(ctx, operation)
	if err != nil {
		return models.QueueOperation{}, fmt.Errorf("enqueue: %w", err)
	}
	operation.ID = id

	log.Debug().
		Str("operation", operation.String()).
		Msg("mutation enqueued")

	return operation, nil
}

func (m *queueManager) ListPending(ctx context.Context) ([]models.QueueOperation, error) {
	return m.queue.ListPending(ctx, MaxRetries)
}

func (m *queueManager) MarkProcessing(ctx context.Context, id int64) error {
	return m.queue.MarkProcessing(ctx, id)
}

func (m *queueManager) MarkComplete(ctx context.Context, id int64) error {
	return m.queue.Delete(ctx, id)
}

func (m *queueManager) MarkFailed(ctx context.Context, id int64, cause error) error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	return m.queue.RecordFailure(ctx, id, message, MaxRetries)
}

func (m *queueManager) Count(ctx context.Context) (int, error) {
	return m.queue.CountPending(ctx)
}

func (m *queueManager) ClearFailed(ctx context.Context) error {
	return m.queue.ClearFailed(ctx)
}

func (m *queueManager) RecoverStuck(ctx context.Context) (int64, error) {
	return m.queue.ResetProcessing(ctx)
}

func (m *queueManager) RemapEntityID(ctx context.Context, entityType models.EntityType, oldID, newID string) error {
	return m.queue.RemapEntityID(ctx, entityType, oldID, newID)
}

func (m *queueManager) BackoffFor(op models.QueueOperation) time.Duration {
	if op.RetryCount <= 0 {
		return 0
	}
	idx := op.RetryCount - 1
	if idx >= len(backoffSchedule) {
		idx = len(backoffSchedule) - 1
	}
	return backoffSchedule[idx]
}
