package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/kakeibo-app/kakeibo/internal/logger"
	"github.com/kakeibo-app/kakeibo/models"
)

type ledgerEntryRepository struct {
	replicaBookkeeping
}

func NewLedgerEntryRepository(db *DB) LedgerEntryRepository {
	return &ledgerEntryRepository{
		replicaBookkeeping: replicaBookkeeping{db: db, table: "ledger_entries"},
	}
}

func (r *ledgerEntryRepository) Save(ctx context.Context, entry models.LedgerEntry) error {
	log := logger.FromContext(ctx)

	_, err := r.db.ExecContext(ctx, saveLedgerEntry,
		entry.ID,
		entry.AccountID,
		entry.Category,
		entry.Amount,
		entry.Currency,
		entry.Memo,
		entry.OccurredAt,
		entry.CreatedAt,
		entry.UpdatedAt,
		entry.SyncedAt,
		entry.PendingSync,
		entry.LocalID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "ledgerEntryRepository.Save").
			Str("id", entry.ID).
			Msg("failed to insert ledger entry")
		return fmt.Errorf("failed to save ledger entry (id=%s): %w", entry.ID, err)
	}

	return nil
}

func (r *ledgerEntryRepository) Get(ctx context.Context, id string) (models.LedgerEntry, error) {
	log := logger.FromContext(ctx)

	var entry models.LedgerEntry
	row := r.db.QueryRowContext(ctx, getLedgerEntry, id)
	err := row.Scan(
		&entry.ID,
		&entry.AccountID,
		&entry.Category,
		&entry.Amount,
		&entry.Currency,
		&entry.Memo,
		&entry.OccurredAt,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&entry.SyncedAt,
		&entry.PendingSync,
		&entry.LocalID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LedgerEntry{}, ErrNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "ledgerEntryRepository.Get").
			Str("id", id).
			Msg("failed to scan ledger entry row")
		return models.LedgerEntry{}, fmt.Errorf("failed to scan ledger entry row: %w", err)
	}

	return entry, nil
}

func (r *ledgerEntryRepository) GetAll(ctx context.Context, filter models.LedgerEntryFilter) ([]models.LedgerEntry, error) {
	log := logger.FromContext(ctx)

	builder := sq.Select(
		"id", "account_id", "category", "amount", "currency", "memo",
		"occurred_at", "created_at", "updated_at", "synced_at", "pending_sync", "local_id",
	).
		From("ledger_entries").
		OrderBy("occurred_at DESC", "id DESC")

	if filter.AccountID != "" {
		builder = builder.Where(sq.Eq{"account_id": filter.AccountID})
	}
	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": filter.Category})
	}
	if !filter.From.IsZero() {
		builder = builder.Where(sq.GtOrEq{"occurred_at": filter.From})
	}
	if !filter.To.IsZero() {
		builder = builder.Where(sq.Lt{"occurred_at": filter.To})
	}
	if filter.PendingOnly {
		builder = builder.Where(sq.Eq{"pending_sync": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ledger entry query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "ledgerEntryRepository.GetAll").
			Msg("failed to query ledger entries")
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		scanErr := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.Category,
			&entry.Amount,
			&entry.Currency,
			&entry.Memo,
			&entry.OccurredAt,
			&entry.CreatedAt,
			&entry.UpdatedAt,
			&entry.SyncedAt,
			&entry.PendingSync,
			&entry.LocalID,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "ledgerEntryRepository.GetAll").
				Msg("failed to scan ledger entry row")
			return nil, fmt.Errorf("failed to scan ledger entry row: %w", scanErr)
		}
		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("error iterating ledger entry rows: %w", rowsErr)
	}

	return entries, nil
}

func (r *ledgerEntryRepository) Update(ctx context.Context, entry models.LedgerEntry) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, updateLedgerEntry,
		entry.AccountID,
		entry.Category,
		entry.Amount,
		entry.Currency,
		entry.Memo,
		entry.OccurredAt,
		time.Now().UTC(),
		entry.ID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "ledgerEntryRepository.Update").
			Str("id", entry.ID).
			Msg("failed to update ledger entry")
		return fmt.Errorf("failed to update ledger entry (id=%s): %w", entry.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected (id=%s): %w", entry.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *ledgerEntryRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, deleteLedgerEntry, id); err != nil {
		log.Err(err).
			Str("func", "ledgerEntryRepository.Delete").
			Str("id", id).
			Msg("failed to delete ledger entry")
		return fmt.Errorf("failed to delete ledger entry (id=%s): %w", id, err)
	}

	return nil
}

func (r *ledgerEntryRepository) BulkPut(ctx context.Context, entries []models.LedgerEntry, syncedAt time.Time) error {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin bulk put: %w", err)
	}
	defer tx.Rollback()

	for _, entry := range entries {
		_, err = tx.ExecContext(ctx, bulkPutLedgerEntry,
			entry.ID,
			entry.AccountID,
			entry.Category,
			entry.Amount,
			entry.Currency,
			entry.Memo,
			entry.OccurredAt,
			entry.CreatedAt,
			entry.UpdatedAt,
			syncedAt,
		)
		if err != nil {
			log.Err(err).
				Str("func", "ledgerEntryRepository.BulkPut").
				Str("id", entry.ID).
				Msg("failed to upsert server ledger entry")
			return fmt.Errorf("failed to bulk put ledger entry (id=%s): %w", entry.ID, err)
		}
	}

	return tx.Commit()
}
