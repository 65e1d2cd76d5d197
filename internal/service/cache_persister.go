package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/kakeibo-app/kakeibo/internal/logger"
	"github.com/kakeibo-app/kakeibo/internal/store"
)

// cacheSnapshotKey is the single metadata row holding the serialized cache.
const cacheSnapshotKey = "query_cache"

type cachePersister struct {
	metadata store.MetadataRepository
	interval time.Duration
	log      *logger.Logger

	mu        sync.Mutex
	items     map[string][]byte
	dirty     bool
	lastFlush time.Time
	timer     *time.Timer
	closed    bool
}

// NewCachePersister loads the last snapshot from the metadata table and
// returns a persister that flushes at most once per interval. A missing or
// unreadable snapshot starts the cache empty; persistence is best-effort and
// never blocks reads or writes on the database.
func NewCachePersister(ctx context.Context, metadata store.MetadataRepository, interval time.Duration, log *logger.Logger) CachePersister {
	if interval <= 0 {
		interval = 10 * time.Second
	}

	p := &cachePersister{
		metadata: metadata,
		interval: interval,
		log:      log,
		items:    make(map[string][]byte),
	}

	raw, err := metadata.Get(ctx, cacheSnapshotKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Msg("failed to load cache snapshot, starting empty")
		}
		return p
	}

	if err = json.Unmarshal(raw, &p.items); err != nil {
		log.Warn().Err(err).Msg("corrupt cache snapshot discarded")
		p.items = make(map[string][]byte)
	}

	return p
}

func (p *cachePersister) GetItem(key string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	value, ok := p.items[key]
	return value, ok
}

func (p *cachePersister) SetItem(key string, value []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items[key] = value
	p.markDirtyLocked()
}

func (p *cachePersister) RemoveItem(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.items[key]; !ok {
		return
	}
	delete(p.items, key)
	p.markDirtyLocked()
}

func (p *cachePersister) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	dirty := p.dirty
	p.mu.Unlock()

	if dirty {
		p.flush()
	}
	return nil
}

// markDirtyLocked schedules a flush: immediately when the last one is older
// than the interval, otherwise once when the interval elapses. Caller holds
// p.mu.
func (p *cachePersister) markDirtyLocked() {
	if p.closed {
		return
	}
	p.dirty = true

	if time.Since(p.lastFlush) >= p.interval {
		go p.flush()
		return
	}

	if p.timer == nil {
		remaining := p.interval - time.Since(p.lastFlush)
		p.timer = time.AfterFunc(remaining, p.flush)
	}
}

func (p *cachePersister) flush() {
	p.mu.Lock()
	if !p.dirty {
		p.mu.Unlock()
		return
	}
	p.dirty = false
	p.lastFlush = time.Now()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	raw, err := json.Marshal(p.items)
	p.mu.Unlock()

	if err != nil {
		p.log.Err(err).Msg("failed to serialize cache snapshot")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = p.metadata.Set(ctx, cacheSnapshotKey, raw); err != nil {
		p.log.Warn().Err(err).Msg("failed to persist cache snapshot")
	}
}
