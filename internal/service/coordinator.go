package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kakeibo-app/kakeibo/internal/adapter"
	"github.com/kakeibo-app/kakeibo/internal/logger"
	"github.com/kakeibo-app/kakeibo/internal/netstate"
	"github.com/kakeibo-app/kakeibo/internal/store"
	"github.com/kakeibo-app/kakeibo/models"
)

type syncCoordinator struct {
	queue    QueueManager
	remote   adapter.RemoteAPI
	storages *store.Storages
	monitor  netstate.Monitor
	log      *logger.Logger

	pollInterval time.Duration

	// syncing is the single-flight guard. It is flipped with CompareAndSwap
	// before the first blocking call in TriggerSync, so two near-simultaneous
	// triggers (online event + timer tick) collapse into one drain pass.
	syncing atomic.Bool

	// sleep is swapped out by tests so backoff does not slow them down.
	sleep func(ctx context.Context, d time.Duration) error

	mu          sync.Mutex
	status      models.SyncStatus
	subscribers map[int]func(models.SyncStatus)
	nextSubID   int
	cancelRun   context.CancelFunc

	foreground chan struct{}
	done       chan struct{}
}

func NewSyncCoordinator(
	queue QueueManager,
	remote adapter.RemoteAPI,
	storages *store.Storages,
	monitor netstate.Monitor,
	pollInterval time.Duration,
	log *logger.Logger,
) SyncCoordinator {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}

	return &syncCoordinator{
		queue:        queue,
		remote:       remote,
		storages:     storages,
		monitor:      monitor,
		log:          log,
		pollInterval: pollInterval,
		sleep:        sleepContext,
		subscribers:  make(map[int]func(models.SyncStatus)),
		foreground:   make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *syncCoordinator) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelRun = cancel
	c.mu.Unlock()
	defer close(c.done)
	defer cancel()

	ctx = c.log.WithContext(runCtx)

	if recovered, err := c.queue.RecoverStuck(ctx); err != nil {
		c.log.Err(err).Msg("failed to recover stuck queue operations")
	} else if recovered > 0 {
		c.log.Info().Int64("count", recovered).Msg("reset interrupted queue operations to pending")
	}

	c.refreshPendingCount(ctx)
	c.setStatus(func(s *models.SyncStatus) { s.IsOnline = c.monitor.Online() })

	if c.monitor.Online() {
		c.TriggerSync(ctx)
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-c.monitor.Events():
			if !ok {
				return nil
			}
			if ev.Online {
				c.setStatus(func(s *models.SyncStatus) { s.IsOnline = true })
				c.TriggerSync(ctx)
			} else {
				// No drain attempted while offline.
				c.setStatus(func(s *models.SyncStatus) { s.IsOnline = false })
			}

		case <-c.foreground:
			if c.monitor.Online() {
				c.TriggerSync(ctx)
			}

		case <-ticker.C:
			if !c.monitor.Online() {
				continue
			}
			c.refreshPendingCount(ctx)
			if c.Status().PendingCount > 0 {
				c.TriggerSync(ctx)
			}
		}
	}
}

func (c *syncCoordinator) TriggerSync(ctx context.Context) {
	if !c.monitor.Online() {
		return
	}
	if !c.syncing.CompareAndSwap(false, true) {
		return
	}
	defer c.syncing.Store(false)

	c.drain(ctx)
}

func (c *syncCoordinator) Foreground(ctx context.Context) {
	select {
	case c.foreground <- struct{}{}:
	default:
	}
}

func (c *syncCoordinator) Subscribe(fn func(models.SyncStatus)) func() {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	snapshot := c.status
	c.mu.Unlock()

	fn(snapshot)

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

func (c *syncCoordinator) Status() models.SyncStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *syncCoordinator) Shutdown() {
	c.mu.Lock()
	cancel := c.cancelRun
	c.cancelRun = nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-c.done
}

func (c *syncCoordinator) Logout(ctx context.Context) error {
	c.Shutdown()

	if err := c.storages.ClearAll(ctx); err != nil {
		return fmt.Errorf("logout clear: %w", err)
	}

	c.log.Info().Msg("local data cleared on logout")
	return nil
}

// drain replays all currently-pending operations strictly oldest first. It
// runs to completion of the fetched list even if connectivity drops partway;
// later failures are re-queued with incremented retry counts, which is the
// expected degraded path.
func (c *syncCoordinator) drain(ctx context.Context) {
	log := logger.FromContext(ctx)

	c.setStatus(func(s *models.SyncStatus) { s.IsSyncing = true })

	ops, err := c.queue.ListPending(ctx)
	if err != nil {
		log.Err(err).Msg("failed to list pending operations")
		c.finishDrain(ctx, fmt.Sprintf("list pending: %v", err))
		return
	}

	failed := 0
	for i := range ops {
		op := ops[i]
		if err = c.queue.MarkProcessing(ctx, op.ID); err != nil {
			log.Warn().Str("operation", op.String()).Err(err).Msg("skipping operation")
			continue
		}

		if delay := c.queue.BackoffFor(op); delay > 0 {
			if err = c.sleep(ctx, delay); err != nil {
				// Shutdown mid-drain: the row stays in processing and is
				// recovered to pending on next startup.
				c.finishDrain(ctx, "sync interrupted")
				return
			}
		}

		body, replayErr := c.remote.Replay(ctx, op)
		if replayErr != nil {
			failed++
			log.Warn().Str("operation", op.String()).Err(replayErr).Msg("replay failed")
			if err = c.queue.MarkFailed(ctx, op.ID, replayErr); err != nil {
				log.Err(err).Str("operation", op.String()).Msg("failed to record replay failure")
			}
			continue
		}

		if err = c.queue.MarkComplete(ctx, op.ID); err != nil {
			log.Err(err).Str("operation", op.String()).Msg("failed to complete operation")
		}

		oldID, newID := c.absorbReplay(ctx, op, body)
		if newID != "" && newID != oldID {
			// The fetched list predates the adoption: later operations on
			// the same entity must replay against the server-assigned id.
			for j := i + 1; j < len(ops); j++ {
				if ops[j].EntityType == op.EntityType && ops[j].EntityID == oldID {
					ops[j].EntityID = newID
				}
			}
		}
	}

	if failed == 0 {
		c.refreshReplicas(ctx)
		c.finishDrain(ctx, "")
		return
	}
	c.finishDrain(ctx, fmt.Sprintf("%d operations failed", failed))
}

// absorbReplay applies the server's answer to the local replica: CREATEs
// adopt the server-assigned id (and dependent queued operations are
// remapped), then the row is marked synced. It returns the pre- and
// post-adoption ids so the caller can patch its in-flight list.
func (c *syncCoordinator) absorbReplay(ctx context.Context, op models.QueueOperation, body json.RawMessage) (oldID, newID string) {
	log := logger.FromContext(ctx)
	oldID, newID = op.EntityID, op.EntityID

	if op.Operation == models.OpDelete {
		return oldID, newID
	}

	replica, err := c.storages.Replica(op.EntityType)
	if err != nil {
		log.Err(err).Str("operation", op.String()).Msg("no replica for entity type")
		return oldID, newID
	}

	entityID := op.EntityID
	if op.Operation == models.OpCreate {
		var created struct {
			ID string `json:"id"`
		}
		if err = json.Unmarshal(body, &created); err != nil {
			log.Warn().Str("operation", op.String()).Err(err).Msg("create response without id")
		} else if created.ID != "" && created.ID != op.EntityID {
			if err = replica.AdoptServerID(ctx, op.EntityID, created.ID); err != nil {
				log.Err(err).Str("operation", op.String()).Msg("failed to adopt server id")
			}
			if err = c.queue.RemapEntityID(ctx, op.EntityType, op.EntityID, created.ID); err != nil {
				log.Err(err).Str("operation", op.String()).Msg("failed to remap queued operations")
			}
			entityID = created.ID
		}
	}

	if err = replica.MarkSynced(ctx, entityID, time.Now().UTC()); err != nil {
		log.Err(err).Str("operation", op.String()).Msg("failed to mark replica synced")
	}

	return oldID, entityID
}

// refreshReplicas pulls the server collections and absorbs them into the
// local tables. Best-effort: a failed pull leaves the replica stale, it does
// not fail the drain.
func (c *syncCoordinator) refreshReplicas(ctx context.Context) {
	log := logger.FromContext(ctx)
	now := time.Now().UTC()

	if entries, err := c.remote.FetchLedgerEntries(ctx); err != nil {
		log.Warn().Err(err).Msg("ledger entry refresh failed")
	} else if err = c.storages.LedgerEntries.BulkPut(ctx, entries, now); err != nil {
		log.Err(err).Msg("failed to absorb ledger entries")
	}

	if accounts, err := c.remote.FetchAccounts(ctx); err != nil {
		log.Warn().Err(err).Msg("account refresh failed")
	} else if err = c.storages.Accounts.BulkPut(ctx, accounts, now); err != nil {
		log.Err(err).Msg("failed to absorb accounts")
	}

	if budgets, err := c.remote.FetchBudgets(ctx); err != nil {
		log.Warn().Err(err).Msg("budget refresh failed")
	} else if err = c.storages.Budgets.BulkPut(ctx, budgets, now); err != nil {
		log.Err(err).Msg("failed to absorb budgets")
	}

	if goals, err := c.remote.FetchGoals(ctx); err != nil {
		log.Warn().Err(err).Msg("goal refresh failed")
	} else if err = c.storages.Goals.BulkPut(ctx, goals, now); err != nil {
		log.Err(err).Msg("failed to absorb goals")
	}
}

func (c *syncCoordinator) finishDrain(ctx context.Context, summary string) {
	count, err := c.queue.Count(ctx)
	if err != nil {
		logger.FromContext(ctx).Err(err).Msg("failed to refresh pending count")
		count = -1
	}

	now := time.Now().UTC()
	c.setStatus(func(s *models.SyncStatus) {
		s.IsSyncing = false
		s.LastSyncAt = &now
		s.LastError = summary
		if count >= 0 {
			s.PendingCount = count
		}
	})
}

func (c *syncCoordinator) refreshPendingCount(ctx context.Context) {
	count, err := c.queue.Count(ctx)
	if err != nil {
		logger.FromContext(ctx).Err(err).Msg("failed to count pending operations")
		return
	}
	c.setStatus(func(s *models.SyncStatus) { s.PendingCount = count })
}

// setStatus mutates the status under the lock and notifies subscribers with
// a copy, outside the lock.
func (c *syncCoordinator) setStatus(mutate func(*models.SyncStatus)) {
	c.mu.Lock()
	mutate(&c.status)
	snapshot := c.status
	fns := make([]func(models.SyncStatus), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
