package store

import (
	"context"
	"time"

	"github.com/kakeibo-app/kakeibo/internal/logger"
	"github.com/kakeibo-app/kakeibo/models"
)

// NewNoopStorages returns a storage bundle for degraded mode: the local
// database could not be opened, so reads come back empty and every write
// fails with [ErrStorageUnavailable]. The client stays usable for
// online-only work instead of crashing at startup.
func NewNoopStorages(log *logger.Logger) *Storages {
	log.Warn().Msg("local database unavailable, running with no-op storages")

	return &Storages{
		LedgerEntries: noopLedgerEntryRepository{},
		Accounts:      noopAccountRepository{},
		Budgets:       noopBudgetRepository{},
		Goals:         noopGoalRepository{},
		Queue:         noopQueueRepository{},
		Metadata:      noopMetadataRepository{},
	}
}

type noopReplica struct{}

func (noopReplica) MarkSynced(context.Context, string, time.Time) error {
	return ErrStorageUnavailable
}

func (noopReplica) AdoptServerID(context.Context, string, string) error {
	return ErrStorageUnavailable
}

type noopLedgerEntryRepository struct{ noopReplica }

func (noopLedgerEntryRepository) Save(context.Context, models.LedgerEntry) error {
	return ErrStorageUnavailable
}

func (noopLedgerEntryRepository) Get(context.Context, string) (models.LedgerEntry, error) {
	return models.LedgerEntry{}, ErrNotFound
}

func (noopLedgerEntryRepository) GetAll(context.Context, models.LedgerEntryFilter) ([]models.LedgerEntry, error) {
	return nil, nil
}

func (noopLedgerEntryRepository) Update(context.Context, models.LedgerEntry) error {
	return ErrStorageUnavailable
}

func (noopLedgerEntryRepository) Delete(context.Context, string) error {
	return ErrStorageUnavailable
}

func (noopLedgerEntryRepository) BulkPut(context.Context, []models.LedgerEntry, time.Time) error {
	return ErrStorageUnavailable
}

type noopAccountRepository struct{ noopReplica }

func (noopAccountRepository) Save(context.Context, models.Account) error {
	return ErrStorageUnavailable
}

func (noopAccountRepository) Get(context.Context, string) (models.Account, error) {
	return models.Account{}, ErrNotFound
}

func (noopAccountRepository) GetAll(context.Context) ([]models.Account, error) {
	return nil, nil
}

func (noopAccountRepository) Update(context.Context, models.Account) error {
	return ErrStorageUnavailable
}

func (noopAccountRepository) Delete(context.Context, string) error {
	return ErrStorageUnavailable
}

func (noopAccountRepository) BulkPut(context.Context, []models.Account, time.Time) error {
	return ErrStorageUnavailable
}

type noopBudgetRepository struct{ noopReplica }

func (noopBudgetRepository) Save(context.Context, models.Budget) error {
	return ErrStorageUnavailable
}

func (noopBudgetRepository) Get(context.Context, string) (models.Budget, error) {
	return models.Budget{}, ErrNotFound
}

func (noopBudgetRepository) GetAll(context.Context) ([]models.Budget, error) {
	return nil, nil
}

func (noopBudgetRepository) Update(context.Context, models.Budget) error {
	return ErrStorageUnavailable
}

func (noopBudgetRepository) Delete(context.Context, string) error {
	return ErrStorageUnavailable
}

func (noopBudgetRepository) BulkPut(context.Context, []models.Budget, time.Time) error {
	return ErrStorageUnavailable
}

type noopGoalRepository struct{ noopReplica }

func (noopGoalRepository) Save(context.Context, models.Goal) error {
	return ErrStorageUnavailable
}

func (noopGoalRepository) Get(context.Context, string) (models.Goal, error) {
	return models.Goal{}, ErrNotFound
}

func (noopGoalRepository) GetAll(context.Context) ([]models.Goal, error) {
	return nil, nil
}

func (noopGoalRepository) Update(context.Context, models.Goal) error {
	return ErrStorageUnavailable
}

func (noopGoalRepository) Delete(context.Context, string) error {
	return ErrStorageUnavailable
}

func (noopGoalRepository) BulkPut(context.Context, []models.Goal, time.Time) error {
	return ErrStorageUnavailable
}

type noopQueueRepository struct{}

func (noopQueueRepository) Insert(context.Context, models.QueueOperation) (int64, error) {
	return 0, ErrStorageUnavailable
}

func (noopQueueRepository) Get(context.Context, int64) (models.QueueOperation, error) {
	return models.QueueOperation{}, ErrNotFound
}

func (noopQueueRepository) ListPending(context.Context, int) ([]models.QueueOperation, error) {
	return nil, nil
}

func (noopQueueRepository) MarkProcessing(context.Context, int64) error {
	return ErrStorageUnavailable
}

func (noopQueueRepository) Delete(context.Context, int64) error {
	return ErrStorageUnavailable
}

func (noopQueueRepository) RecordFailure(context.Context, int64, string, int) error {
	return ErrStorageUnavailable
}

func (noopQueueRepository) CountPending(context.Context) (int, error) {
	return 0, nil
}

func (noopQueueRepository) ClearFailed(context.Context) error {
	return ErrStorageUnavailable
}

func (noopQueueRepository) ResetProcessing(context.Context) (int64, error) {
	return 0, nil
}

func (noopQueueRepository) RemapEntityID(context.Context, models.EntityType, string, string) error {
	return ErrStorageUnavailable
}

type noopMetadataRepository struct{}

func (noopMetadataRepository) Get(context.Context, string) ([]byte, error) {
	return nil, ErrNotFound
}

func (noopMetadataRepository) Set(context.Context, string, []byte) error {
	return ErrStorageUnavailable
}

func (noopMetadataRepository) Delete(context.Context, string) error {
	return ErrStorageUnavailable
}
