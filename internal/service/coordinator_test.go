package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kakeibo-app/kakeibo/internal/logger"
	"github.com/kakeibo-app/kakeibo/internal/mock"
	"github.com/kakeibo-app/kakeibo/internal/netstate"
	"github.com/kakeibo-app/kakeibo/models"
)

type coordinatorFixture struct {
	coordinator *syncCoordinator
	queueRepo   *fakeQueueRepo
	ledger      *fakeLedgerRepo
	remote      *mock.MockRemoteAPI
	monitor     *netstate.ManualMonitor
}

func newTestCoordinator(t *testing.T, ctrl *gomock.Controller, online bool) coordinatorFixture {
	t.Helper()

	queueRepo := newFakeQueueRepo()
	ledger := newFakeLedgerRepo()
	remote := mock.NewMockRemoteAPI(ctrl)
	monitor := netstate.NewManualMonitor(online)

	storages := newTestStorages(queueRepo, ledger, newFakeMetadataRepo())
	c := NewSyncCoordinator(NewQueueManager(queueRepo), remote, storages, monitor, time.Hour, logger.Nop()).(*syncCoordinator)
	c.sleep = func(context.Context, time.Duration) error { return nil }

	return coordinatorFixture{
		coordinator: c,
		queueRepo:   queueRepo,
		ledger:      ledger,
		remote:      remote,
		monitor:     monitor,
	}
}

// expectRefreshUnavailable satisfies the pull phase that follows a clean
// drain without faking four collections.
func expectRefreshUnavailable(remote *mock.MockRemoteAPI) {
	unavailable := errors.New("refresh unavailable")
	remote.EXPECT().FetchLedgerEntries(gomock.Any()).Return(nil, unavailable).AnyTimes()
	remote.EXPECT().FetchAccounts(gomock.Any()).Return(nil, unavailable).AnyTimes()
	remote.EXPECT().FetchBudgets(gomock.Any()).Return(nil, unavailable).AnyTimes()
	remote.EXPECT().FetchGoals(gomock.Any()).Return(nil, unavailable).AnyTimes()
}

func TestTriggerSync_NoopWhileOffline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newTestCoordinator(t, ctrl, false)

	fx.coordinator.TriggerSync(context.Background())

	assert.Zero(t, fx.queueRepo.listCalls, "offline trigger must not drain")
}

func TestTriggerSync_SingleFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newTestCoordinator(t, ctrl, true)
	ctx := context.Background()

	_, err := fx.coordinator.queue.Enqueue(ctx, models.OpCreate, models.EntityLedgerEntry, "local-1", json.RawMessage(`{}`))
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	fx.remote.EXPECT().Replay(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, models.QueueOperation) (json.RawMessage, error) {
			close(started)
			<-release
			return json.RawMessage(`{"id":"srv-1"}`), nil
		})
	expectRefreshUnavailable(fx.remote)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		fx.coordinator.TriggerSync(ctx)
	}()

	<-started
	// Second trigger lands mid-drain and must be coalesced away.
	fx.coordinator.TriggerSync(ctx)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, fx.queueRepo.listCalls, "overlapping triggers must run one drain pass")
}

func TestDrain_PartialFailuresPreserveOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newTestCoordinator(t, ctrl, true)
	ctx := context.Background()
	qm := NewQueueManager(fx.queueRepo)

	// Three operations enqueued in order; the first two always fail, the
	// third succeeds.
	op1, err := qm.Enqueue(ctx, models.OpCreate, models.EntityLedgerEntry, "local-a", nil)
	require.NoError(t, err)
	op2, err := qm.Enqueue(ctx, models.OpCreate, models.EntityLedgerEntry, "local-b", nil)
	require.NoError(t, err)
	op3, err := qm.Enqueue(ctx, models.OpCreate, models.EntityLedgerEntry, "local-c", nil)
	require.NoError(t, err)

	var replayed []int64
	fx.remote.EXPECT().Replay(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, op models.QueueOperation) (json.RawMessage, error) {
			replayed = append(replayed, op.ID)
			if op.ID == op3.ID {
				return json.RawMessage(`{"id":"srv-c"}`), nil
			}
			return nil, errors.New("server unavailable")
		}).Times(3)

	fx.coordinator.TriggerSync(ctx)

	assert.Equal(t, []int64{op1.ID, op2.ID, op3.ID}, replayed, "replay must be FIFO")

	status, retries := fx.queueRepo.statusOf(op1.ID)
	assert.Equal(t, models.StatusPending, status)
	assert.Equal(t, 1, retries)

	status, retries = fx.queueRepo.statusOf(op2.ID)
	assert.Equal(t, models.StatusPending, status)
	assert.Equal(t, 1, retries)

	_, gone := fx.queueRepo.statusOf(op3.ID)
	assert.Equal(t, -1, gone, "completed operation must be deleted")

	got := fx.coordinator.Status()
	assert.Equal(t, "2 operations failed", got.LastError)
	assert.Equal(t, 2, got.PendingCount)
	assert.False(t, got.IsSyncing)
	assert.NotNil(t, got.LastSyncAt)
}

func TestDrain_CreateAdoptionRemapsDependents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newTestCoordinator(t, ctrl, true)
	ctx := context.Background()
	qm := NewQueueManager(fx.queueRepo)

	// Offline session: create then update the same entity.
	_, err := qm.Enqueue(ctx, models.OpCreate, models.EntityLedgerEntry, "local-x", json.RawMessage(`{"memo":"coffee"}`))
	require.NoError(t, err)
	_, err = qm.Enqueue(ctx, models.OpUpdate, models.EntityLedgerEntry, "local-x", json.RawMessage(`{"memo":"espresso"}`))
	require.NoError(t, err)

	var updateTargetID string
	fx.remote.EXPECT().Replay(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, op models.QueueOperation) (json.RawMessage, error) {
			switch op.Operation {
			case models.OpCreate:
				return json.RawMessage(`{"id":"srv-42"}`), nil
			case models.OpUpdate:
				updateTargetID = op.EntityID
				return json.RawMessage(`{"id":"srv-42"}`), nil
			}
			return nil, errors.New("unexpected operation")
		}).Times(2)
	expectRefreshUnavailable(fx.remote)

	fx.coordinator.TriggerSync(ctx)

	assert.Equal(t, "srv-42", updateTargetID, "dependent update must replay against the adopted id")
	assert.Equal(t, "srv-42", fx.ledger.adopted["local-x"])
	assert.Contains(t, fx.ledger.synced, "srv-42")

	count, err := fx.queueRepo.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDrain_RetryCeilingExcludesOperation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newTestCoordinator(t, ctrl, true)
	ctx := context.Background()
	qm := NewQueueManager(fx.queueRepo)

	op, err := qm.Enqueue(ctx, models.OpUpdate, models.EntityGoal, "g-1", nil)
	require.NoError(t, err)

	// Exactly MaxRetries replay attempts, then the operation is terminal and
	// later passes skip it entirely.
	fx.remote.EXPECT().Replay(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("always failing")).
		Times(MaxRetries)
	expectRefreshUnavailable(fx.remote)

	for i := 0; i < MaxRetries+1; i++ {
		fx.coordinator.TriggerSync(ctx)
	}

	status, retries := fx.queueRepo.statusOf(op.ID)
	assert.Equal(t, models.StatusFailed, status)
	assert.Equal(t, MaxRetries, retries)
}

func TestSubscribe_SnapshotAndUnsubscribe(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newTestCoordinator(t, ctrl, true)

	var mu sync.Mutex
	var got []models.SyncStatus
	unsubscribe := fx.coordinator.Subscribe(func(s models.SyncStatus) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, s)
	})

	mu.Lock()
	require.Len(t, got, 1, "subscriber must receive an immediate snapshot")
	mu.Unlock()

	fx.coordinator.setStatus(func(s *models.SyncStatus) { s.PendingCount = 3 })

	mu.Lock()
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[1].PendingCount)
	mu.Unlock()

	unsubscribe()
	fx.coordinator.setStatus(func(s *models.SyncStatus) { s.PendingCount = 9 })

	mu.Lock()
	assert.Len(t, got, 2, "no updates after unsubscribe")
	mu.Unlock()
}

func TestRun_OnlineEventDrainsBacklog(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newTestCoordinator(t, ctrl, false)
	ctx := context.Background()
	qm := NewQueueManager(fx.queueRepo)

	_, err := qm.Enqueue(ctx, models.OpDelete, models.EntityAccount, "acc-1", nil)
	require.NoError(t, err)

	drained := make(chan struct{})
	fx.remote.EXPECT().Replay(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, models.QueueOperation) (json.RawMessage, error) {
			close(drained)
			return nil, nil
		})
	expectRefreshUnavailable(fx.remote)

	go func() { _ = fx.coordinator.Run(ctx) }()

	// Give Run a moment to register its listeners, then come online.
	time.Sleep(20 * time.Millisecond)
	fx.monitor.SetOnline(true)

	select {
	case <-drained:
	case <-time.After(2 * time.Second):
		t.Fatal("online event did not trigger a drain")
	}

	fx.coordinator.Shutdown()

	assert.True(t, fx.coordinator.Status().IsOnline)
}
