package service

import (
	"context"
	"sync"
	"time"

	"github.com/kakeibo-app/kakeibo/internal/store"
	"github.com/kakeibo-app/kakeibo/models"
)

// fakeQueueRepo is an in-memory store.QueueRepository with the same
// transition rules the SQL enforces, so queue semantics are tested without
// a database.
type fakeQueueRepo struct {
	mu        sync.Mutex
	nextID    int64
	ops       map[int64]*models.QueueOperation
	order     []int64
	insertErr error
	listCalls int
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{ops: make(map[int64]*models.QueueOperation)}
}

func (f *fakeQueueRepo) Insert(_ context.Context, op models.QueueOperation) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.nextID++
	op.ID = f.nextID
	op.Status = models.StatusPending
	f.ops[op.ID] = &op
	f.order = append(f.order, op.ID)
	return op.ID, nil
}

func (f *fakeQueueRepo) Get(_ context.Context, id int64) (models.QueueOperation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	op, ok := f.ops[id]
	if !ok {
		return models.QueueOperation{}, store.ErrNotFound
	}
	return *op, nil
}

func (f *fakeQueueRepo) ListPending(_ context.Context, maxRetries int) ([]models.QueueOperation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var out []models.QueueOperation
	for _, id := range f.order {
		op := f.ops[id]
		if op != nil && op.Status == models.StatusPending && op.RetryCount < maxRetries {
			out = append(out, *op)
		}
	}
	return out, nil
}

func (f *fakeQueueRepo) MarkProcessing(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	op, ok := f.ops[id]
	if !ok || op.Status != models.StatusPending {
		return store.ErrIllegalTransition
	}
	op.Status = models.StatusProcessing
	return nil
}

func (f *fakeQueueRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ops, id)
	return nil
}

func (f *fakeQueueRepo) RecordFailure(_ context.Context, id int64, lastError string, maxRetries int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	op, ok := f.ops[id]
	if !ok || op.Status != models.StatusProcessing {
		return store.ErrIllegalTransition
	}
	op.RetryCount++
	op.LastError = lastError
	if op.RetryCount >= maxRetries {
		op.Status = models.StatusFailed
	} else {
		op.Status = models.StatusPending
	}
	return nil
}

func (f *fakeQueueRepo) CountPending(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, op := range f.ops {
		if op.Status == models.StatusPending {
			count++
		}
	}
	return count, nil
}

func (f *fakeQueueRepo) ClearFailed(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, op := range f.ops {
		if op.Status == models.StatusFailed {
			delete(f.ops, id)
		}
	}
	return nil
}

func (f *fakeQueueRepo) ResetProcessing(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, op := range f.ops {
		if op.Status == models.StatusProcessing {
			op.Status = models.StatusPending
			n++
		}
	}
	return n, nil
}

func (f *fakeQueueRepo) RemapEntityID(_ context.Context, entityType models.EntityType, oldID, newID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, op := range f.ops {
		if op.EntityType == entityType && op.EntityID == oldID {
			op.EntityID = newID
		}
	}
	return nil
}

func (f *fakeQueueRepo) statusOf(id int64) (models.OperationStatus, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	op, ok := f.ops[id]
	if !ok {
		return "", -1
	}
	return op.Status, op.RetryCount
}

// fakeLedgerRepo records bookkeeping calls made by the coordinator.
type fakeLedgerRepo struct {
	mu       sync.Mutex
	synced   []string
	adopted  map[string]string
	bulkPuts int
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{adopted: make(map[string]string)}
}

func (f *fakeLedgerRepo) MarkSynced(_ context.Context, id string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synced = append(f.synced, id)
	return nil
}

func (f *fakeLedgerRepo) AdoptServerID(_ context.Context, localID, serverID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adopted[localID] = serverID
	return nil
}

func (f *fakeLedgerRepo) Save(context.Context, models.LedgerEntry) error { return nil }

func (f *fakeLedgerRepo) Get(context.Context, string) (models.LedgerEntry, error) {
	return models.LedgerEntry{}, store.ErrNotFound
}

func (f *fakeLedgerRepo) GetAll(context.Context, models.LedgerEntryFilter) ([]models.LedgerEntry, error) {
	return nil, nil
}

func (f *fakeLedgerRepo) Update(context.Context, models.LedgerEntry) error { return nil }
func (f *fakeLedgerRepo) Delete(context.Context, string) error             { return nil }

func (f *fakeLedgerRepo) BulkPut(context.Context, []models.LedgerEntry, time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkPuts++
	return nil
}

// fakeMetadataRepo is an in-memory store.MetadataRepository.
type fakeMetadataRepo struct {
	mu     sync.Mutex
	values map[string][]byte
	sets   int
}

func newFakeMetadataRepo() *fakeMetadataRepo {
	return &fakeMetadataRepo{values: make(map[string][]byte)}
}

func (f *fakeMetadataRepo) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return value, nil
}

func (f *fakeMetadataRepo) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	f.sets++
	return nil
}

func (f *fakeMetadataRepo) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return nil
}

func newTestStorages(queue *fakeQueueRepo, ledger *fakeLedgerRepo, metadata *fakeMetadataRepo) *store.Storages {
	return &store.Storages{
		LedgerEntries: ledger,
		Queue:         queue,
		Metadata:      metadata,
	}
}
