package store

import (
	"context"
	"fmt"

	"github.com/kakeibo-app/kakeibo/internal/config"
	"github.com/kakeibo-app/kakeibo/internal/logger"
	"github.com/kakeibo-app/kakeibo/models"
)

// Storages groups all local replica repositories, the mutation queue and
// the metadata table into a single value that is passed around the
// service layer.
type Storages struct {
	LedgerEntries LedgerEntryRepository
	Accounts      AccountRepository
	Budgets       BudgetRepository
	Goals         GoalRepository
	Queue         QueueRepository
	Metadata      MetadataRepository

	db *DB
}

// NewStorages initialises the local storage layer. It performs the
// following steps:
//  1. Opens an SQLite connection to the file path specified in
//     cfg.DB.DSN, creating the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs and returns a [Storages] value wired to fresh
//     repositories.
//
// Returns an error if the database connection cannot be established or
// if migration fails. Callers that want to keep running without local
// persistence should fall back to [NewNoopStorages].
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	log.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		LedgerEntries: NewLedgerEntryRepository(db),
		Accounts:      NewAccountRepository(db),
		Budgets:       NewBudgetRepository(db),
		Goals:         NewGoalRepository(db),
		Queue:         NewQueueRepository(db),
		Metadata:      NewMetadataRepository(db),
		db:            db,
	}, nil
}

// Replica returns the bookkeeping surface for one entity type so the
// coordinator can mark rows synced without a type switch at every call
// site.
func (s *Storages) Replica(entityType models.EntityType) (ReplicaRepository, error) {
	switch entityType {
	case models.EntityLedgerEntry:
		return s.LedgerEntries, nil
	case models.EntityAccount:
		return s.Accounts, nil
	case models.EntityBudget:
		return s.Budgets, nil
	case models.EntityGoal:
		return s.Goals, nil
	default:
		return nil, fmt.Errorf("unknown entity type %q", entityType)
	}
}

// ClearAll wipes every replica table, the queue and metadata in one
// transaction. Called on logout.
func (s *Storages) ClearAll(ctx context.Context) error {
	if s.db == nil {
		return ErrStorageUnavailable
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin clear: %w", err)
	}
	defer tx.Rollback()

	tables := []string{"ledger_entries", "accounts", "budgets", "goals", "sync_queue", "metadata"}
	for _, table := range tables {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table+";"); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// Close closes the underlying database handle.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
