package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kakeibo-app/kakeibo/internal/logger"
	"github.com/kakeibo-app/kakeibo/models"
)

type queueRepository struct {
	db *DB
}

func NewQueueRepository(db *DB) QueueRepository {
	return &queueRepository{db: db}
}

func (r *queueRepository) Insert(ctx context.Context, op models.QueueOperation) (int64, error) {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, insertQueueOperation,
		op.Operation,
		op.EntityType,
		op.EntityID,
		op.Payload,
		op.EnqueuedAt,
	)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Insert").
			Str("operation", string(op.Operation)).
			Str("entity_type", string(op.EntityType)).
			Str("entity_id", op.EntityID).
			Msg("failed to insert queue operation")
		return 0, fmt.Errorf("failed to insert queue operation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue operation id: %w", err)
	}

	return id, nil
}

func (r *queueRepository) Get(ctx context.Context, id int64) (models.QueueOperation, error) {
	var op models.QueueOperation
	row := r.db.QueryRowContext(ctx, getQueueOperation, id)
	err := scanQueueOperation(row.Scan, &op)
	if errors.Is(err, sql.ErrNoRows) {
		return models.QueueOperation{}, ErrNotFound
	}
	if err != nil {
		return models.QueueOperation{}, fmt.Errorf("failed to scan queue operation row: %w", err)
	}
	return op, nil
}

func (r *queueRepository) ListPending(ctx context.Context, maxRetries int) ([]models.QueueOperation, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, listPendingQueueOperations, maxRetries)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.ListPending").
			Msg("failed to query pending queue operations")
		return nil, fmt.Errorf("failed to query pending queue operations: %w", err)
	}
	defer rows.Close()

	var ops []models.QueueOperation
	for rows.Next() {
		var op models.QueueOperation
		if scanErr := scanQueueOperation(rows.Scan, &op); scanErr != nil {
			return nil, fmt.Errorf("failed to scan queue operation row: %w", scanErr)
		}
		ops = append(ops, op)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("error iterating queue operation rows: %w", rowsErr)
	}

	return ops, nil
}

func (r *queueRepository) MarkProcessing(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, markQueueOperationProcessing, id)
	if err != nil {
		return fmt.Errorf("failed to mark queue operation processing (id=%d): %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected (id=%d): %w", id, err)
	}
	if affected == 0 {
		return ErrIllegalTransition
	}

	return nil
}

func (r *queueRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, deleteQueueOperation, id); err != nil {
		return fmt.Errorf("failed to delete queue operation (id=%d): %w", id, err)
	}
	return nil
}

func (r *queueRepository) RecordFailure(ctx context.Context, id int64, lastError string, maxRetries int) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, recordQueueOperationFailure, lastError, maxRetries, id)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.RecordFailure").
			Int64("id", id).
			Msg("failed to record queue operation failure")
		return fmt.Errorf("failed to record queue operation failure (id=%d): %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected (id=%d): %w", id, err)
	}
	if affected == 0 {
		return ErrIllegalTransition
	}

	return nil
}

func (r *queueRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, countPendingQueueOperations).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending queue operations: %w", err)
	}
	return count, nil
}

func (r *queueRepository) ClearFailed(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, clearFailedQueueOperations); err != nil {
		return fmt.Errorf("failed to clear failed queue operations: %w", err)
	}
	return nil
}

func (r *queueRepository) ResetProcessing(ctx context.Context) (int64, error) {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, resetProcessingQueueOperations)
	if err != nil {
		return 0, fmt.Errorf("failed to reset processing queue operations: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected > 0 {
		log.Warn().
			Int64("count", affected).
			Msg("recovered queue operations stranded in processing")
	}

	return affected, nil
}

func (r *queueRepository) RemapEntityID(ctx context.Context, entityType models.EntityType, oldID, newID string) error {
	if _, err := r.db.ExecContext(ctx, remapQueueEntityID, newID, entityType, oldID); err != nil {
		return fmt.Errorf("failed to remap queue entity id (%s -> %s): %w", oldID, newID, err)
	}
	return nil
}

func scanQueueOperation(scan func(dest ...any) error, op *models.QueueOperation) error {
	return scan(
		&op.ID,
		&op.Operation,
		&op.EntityType,
		&op.EntityID,
		&op.Payload,
		&op.EnqueuedAt,
		&op.RetryCount,
		&op.Status,
		&op.LastError,
	)
}
