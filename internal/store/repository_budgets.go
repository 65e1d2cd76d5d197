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

type budgetRepository struct {
	replicaBookkeeping
}

func NewBudgetRepository(db *DB) BudgetRepository {
	return &budgetRepository{
		replicaBookkeeping: replicaBookkeeping{db: db, table: "budgets"},
	}
}

func (r *budgetRepository) Save(ctx context.Context, budget models.Budget) error {
	log := logger.FromContext(ctx)

	_, err := r.db.ExecContext(ctx, saveBudget,
		budget.ID,
		budget.Category,
		budget.Month,
		budget.Limit,
		budget.Currency,
		budget.CreatedAt,
		budget.UpdatedAt,
		budget.SyncedAt,
		budget.PendingSync,
		budget.LocalID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "budgetRepository.Save").
			Str("id", budget.ID).
			Msg("failed to insert budget")
		return fmt.Errorf("failed to save budget (id=%s): %w", budget.ID, err)
	}

	return nil
}

func (r *budgetRepository) Get(ctx context.Context, id string) (models.Budget, error) {
	var budget models.Budget
	row := r.db.QueryRowContext(ctx, getBudget, id)
	err := scanBudget(row.Scan, &budget)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Budget{}, ErrNotFound
	}
	if err != nil {
		return models.Budget{}, fmt.Errorf("failed to scan budget row: %w", err)
	}
	return budget, nil
}

func (r *budgetRepository) GetAll(ctx context.Context) ([]models.Budget, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, getAllBudgets)
	if err != nil {
		log.Err(err).
			Str("func", "budgetRepository.GetAll").
			Msg("failed to query budgets")
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var budget models.Budget
		if scanErr := scanBudget(rows.Scan, &budget); scanErr != nil {
			return nil, fmt.Errorf("failed to scan budget row: %w", scanErr)
		}
		budgets = append(budgets, budget)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("error iterating budget rows: %w", rowsErr)
	}

	return budgets, nil
}

func (r *budgetRepository) Update(ctx context.Context, budget models.Budget) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, updateBudget,
		budget.Category,
		budget.Month,
		budget.Limit,
		budget.Currency,
		time.Now().UTC(),
		budget.ID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "budgetRepository.Update").
			Str("id", budget.ID).
			Msg("failed to update budget")
		return fmt.Errorf("failed to update budget (id=%s): %w", budget.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected (id=%s): %w", budget.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *budgetRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, deleteBudget, id); err != nil {
		return fmt.Errorf("failed to delete budget (id=%s): %w", id, err)
	}
	return nil
}

func (r *budgetRepository) BulkPut(ctx context.Context, budgets []models.Budget, syncedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin bulk put: %w", err)
	}
	defer tx.Rollback()

	for _, budget := range budgets {
		_, err = tx.ExecContext(ctx, bulkPutBudget,
			budget.ID,
			budget.Category,
			budget.Month,
			budget.Limit,
			budget.Currency,
			budget.CreatedAt,
			budget.UpdatedAt,
			syncedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to bulk put budget (id=%s): %w", budget.ID, err)
		}
	}

	return tx.Commit()
}

func scanBudget(scan func(dest ...any) error, budget *models.Budget) error {
	return scan(
		&budget.ID,
		&budget.Category,
		&budget.Month,
		&budget.Limit,
		&budget.Currency,
		&budget.CreatedAt,
		&budget.UpdatedAt,
		&budget.SyncedAt,
		&budget.PendingSync,
		&budget.LocalID,
	)
}
