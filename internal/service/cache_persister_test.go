package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kakeibo-app/kakeibo/internal/logger"
)

func TestCachePersister_SetGetRemove(t *testing.T) {
	metadata := newFakeMetadataRepo()
	p := NewCachePersister(context.Background(), metadata, time.Hour, logger.Nop())
	defer p.Close()

	_, ok := p.GetItem("entries:list")
	assert.False(t, ok)

	p.SetItem("entries:list", []byte(`["e-1","e-2"]`))
	value, ok := p.GetItem("entries:list")
	require.True(t, ok)
	assert.Equal(t, `["e-1","e-2"]`, string(value))

	p.RemoveItem("entries:list")
	_, ok = p.GetItem("entries:list")
	assert.False(t, ok)
}

func TestCachePersister_CloseFlushesSnapshot(t *testing.T) {
	metadata := newFakeMetadataRepo()
	p := NewCachePersister(context.Background(), metadata, time.Hour, logger.Nop())

	p.SetItem("budgets:2026-08", []byte(`{"total":"45000"}`))
	require.NoError(t, p.Close())

	raw, err := metadata.Get(context.Background(), cacheSnapshotKey)
	require.NoError(t, err)

	var items map[string][]byte
	require.NoError(t, json.Unmarshal(raw, &items))
	assert.Equal(t, `{"total":"45000"}`, string(items["budgets:2026-08"]))
}

func TestCachePersister_SurvivesRestart(t *testing.T) {
	metadata := newFakeMetadataRepo()
	ctx := context.Background()

	p := NewCachePersister(ctx, metadata, time.Hour, logger.Nop())
	p.SetItem("goals:list", []byte(`["g-1"]`))
	require.NoError(t, p.Close())

	reloaded := NewCachePersister(ctx, metadata, time.Hour, logger.Nop())
	defer reloaded.Close()

	value, ok := reloaded.GetItem("goals:list")
	require.True(t, ok)
	assert.Equal(t, `["g-1"]`, string(value))
}

func TestCachePersister_CorruptSnapshotStartsEmpty(t *testing.T) {
	metadata := newFakeMetadataRepo()
	ctx := context.Background()
	require.NoError(t, metadata.Set(ctx, cacheSnapshotKey, []byte("not json")))

	p := NewCachePersister(ctx, metadata, time.Hour, logger.Nop())
	defer p.Close()

	_, ok := p.GetItem("anything")
	assert.False(t, ok)
}

func TestCachePersister_ThrottlesFlushes(t *testing.T) {
	metadata := newFakeMetadataRepo()
	p := NewCachePersister(context.Background(), metadata, time.Hour, logger.Nop()).(*cachePersister)
	// Pretend a flush just happened so writes inside the interval only
	// schedule the deferred timer.
	p.mu.Lock()
	p.lastFlush = time.Now()
	p.mu.Unlock()

	for i := 0; i < 50; i++ {
		p.SetItem("key", []byte{byte(i)})
	}

	time.Sleep(20 * time.Millisecond)

	metadata.mu.Lock()
	sets := metadata.sets
	metadata.mu.Unlock()
	assert.Zero(t, sets, "writes within the interval must not flush immediately")

	require.NoError(t, p.Close())

	metadata.mu.Lock()
	sets = metadata.sets
	metadata.mu.Unlock()
	assert.Equal(t, 1, sets, "close performs the single pending flush")
}
