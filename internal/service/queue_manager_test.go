package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kakeibo-app/kakeibo/models"
)

func TestEnqueue_AssignsIDAndDefaults(t *testing.T) {
	repo := newFakeQueueRepo()
	qm := NewQueueManager(repo)

	op, err := qm.Enqueue(context.Background(), models.OpCreate, models.EntityLedgerEntry, "local-1", json.RawMessage(`{"amount":"500"}`))
	require.NoError(t, err)

	assert.Equal(t, int64(1), op.ID)
	assert.Equal(t, models.StatusPending, op.Status)
	assert.Zero(t, op.RetryCount)
	assert.False(t, op.EnqueuedAt.IsZero())
}

func TestEnqueue_Validation(t *testing.T) {
	qm := NewQueueManager(newFakeQueueRepo())
	ctx := context.Background()

	_, err := qm.Enqueue(ctx, models.OperationType("UPSERT"), models.EntityLedgerEntry, "x", nil)
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = qm.Enqueue(ctx, models.OpUpdate, models.EntityType("wallet"), "x", nil)
	assert.ErrorIs(t, err, ErrInvalidEntityType)

	_, err = qm.Enqueue(ctx, models.OpDelete, models.EntityAccount, "", nil)
	assert.ErrorIs(t, err, ErrEmptyEntityID)
}

func TestBackoffFor_Schedule(t *testing.T) {
	qm := NewQueueManager(newFakeQueueRepo())

	cases := []struct {
		retries int
		want    time.Duration
	}{
		{0, 0},
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 16 * time.Second},
		{9, 16 * time.Second}, // clamped to the last slot
	}

	for _, tc := range cases {
		got := qm.BackoffFor(models.QueueOperation{RetryCount: tc.retries})
		assert.Equal(t, tc.want, got, "retry_count=%d", tc.retries)
	}
}

func TestMarkFailed_TerminalAtCeiling(t *testing.T) {
	repo := newFakeQueueRepo()
	qm := NewQueueManager(repo)
	ctx := context.Background()

	op, err := qm.Enqueue(ctx, models.OpUpdate, models.EntityBudget, "b-1", nil)
	require.NoError(t, err)

	for i := 0; i < MaxRetries; i++ {
		require.NoError(t, qm.MarkProcessing(ctx, op.ID))
		require.NoError(t, qm.MarkFailed(ctx, op.ID, errors.New("server 500")))
	}

	status, retries := repo.statusOf(op.ID)
	assert.Equal(t, models.StatusFailed, status)
	assert.Equal(t, MaxRetries, retries)

	pending, err := qm.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending, "terminal operation must not be listed")

	// Terminal rows cannot re-enter processing.
	assert.Error(t, qm.MarkProcessing(ctx, op.ID))

	require.NoError(t, qm.ClearFailed(ctx))
	_, retries = repo.statusOf(op.ID)
	assert.Equal(t, -1, retries, "failed row should be purged")
}

func TestListPending_FIFO(t *testing.T) {
	repo := newFakeQueueRepo()
	qm := NewQueueManager(repo)
	ctx := context.Background()

	first, err := qm.Enqueue(ctx, models.OpCreate, models.EntityLedgerEntry, "local-1", nil)
	require.NoError(t, err)
	second, err := qm.Enqueue(ctx, models.OpUpdate, models.EntityLedgerEntry, "local-1", nil)
	require.NoError(t, err)

	pending, err := qm.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, second.ID, pending[1].ID)
}

func TestRecoverStuck_ResetsProcessing(t *testing.T) {
	repo := newFakeQueueRepo()
	qm := NewQueueManager(repo)
	ctx := context.Background()

	op, err := qm.Enqueue(ctx, models.OpDelete, models.EntityGoal, "g-1", nil)
	require.NoError(t, err)
	require.NoError(t, qm.MarkProcessing(ctx, op.ID))

	recovered, err := qm.RecoverStuck(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), recovered)

	status, _ := repo.statusOf(op.ID)
	assert.Equal(t, models.StatusPending, status)
}
