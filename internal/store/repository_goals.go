package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kakeibo-app/kakeibo/internal/logger"
	"github.com/kakeibo-app/kakeibo/models"
)

type goalRepository struct {
	replicaBookkeeping
}

func NewGoalRepository(db *DB) GoalRepository {
	return &goalRepository{
		replicaBookkeeping: replicaBookkeeping{db: db, table: "goals"},
	}
}

func (r *goalRepository) Save(ctx context.Context, goal models.Goal) error {
	log := logger.FromContext(ctx)

	_, err := r.db.ExecContext(ctx, saveGoal,
		goal.ID,
		goal.Name,
		goal.Target,
		goal.Saved,
		goal.Currency,
		goal.Deadline,
		goal.CreatedAt,
		goal.UpdatedAt,
		goal.SyncedAt,
		goal.PendingSync,
		goal.LocalID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "goalRepository.Save").
			Str("id", goal.ID).
			Msg("failed to insert goal")
		return fmt.Errorf("failed to save goal (id=%s): %w", goal.ID, err)
	}

	return nil
}

func (r *goalRepository) Get(ctx context.Context, id string) (models.Goal, error) {
	var goal models.Goal
	row := r.db.QueryRowContext(ctx, getGoal, id)
	err := scanGoal(row.Scan, &goal)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Goal{}, ErrNotFound
	}
	if err != nil {
		return models.Goal{}, fmt.Errorf("failed to scan goal row: %w", err)
	}
	return goal, nil
}

func (r *goalRepository) GetAll(ctx context.Context) ([]models.Goal, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, getAllGoals)
	if err != nil {
		log.Err(err).
			Str("func", "goalRepository.GetAll").
			Msg("failed to query goals")
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var goal models.Goal
		if scanErr := scanGoal(rows.Scan, &goal); scanErr != nil {
			return nil, fmt.Errorf("failed to scan goal row: %w", scanErr)
		}
		goals = append(goals, goal)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("error iterating goal rows: %w", rowsErr)
	}

	return goals, nil
}

func (r *goalRepository) Update(ctx context.Context, goal models.Goal) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, updateGoal,
		goal.Name,
		goal.Target,
		goal.Saved,
		goal.Currency,
		goal.Deadline,
		time.Now().UTC(),
		goal.ID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "goalRepository.Update").
			Str("id", goal.ID).
			Msg("failed to update goal")
		return fmt.Errorf("failed to update goal (id=%s): %w", goal.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected (id=%s): %w", goal.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *goalRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, deleteGoal, id); err != nil {
		return fmt.Errorf("failed to delete goal (id=%s): %w", id, err)
	}
	return nil
}

func (r *goalRepository) BulkPut(ctx context.Context, goals []models.Goal, syncedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin bulk put: %w", err)
	}
	defer tx.Rollback()

	for _, goal := range goals {
		_, err = tx.ExecContext(ctx, bulkPutGoal,
			goal.ID,
			goal.Name,
			goal.Target,
			goal.Saved,
			goal.Currency,
			goal.Deadline,
			goal.CreatedAt,
			goal.UpdatedAt,
			syncedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to bulk put goal (id=%s): %w", goal.ID, err)
		}
	}

	return tx.Commit()
}

func scanGoal(scan func(dest ...any) error, goal *models.Goal) error {
	return scan(
		&goal.ID,
		&goal.Name,
		&goal.Target,
		&goal.Saved,
		&goal.Currency,
		&goal.Deadline,
		&goal.CreatedAt,
		&goal.UpdatedAt,
		&goal.SyncedAt,
		&goal.PendingSync,
		&goal.LocalID,
	)
}
