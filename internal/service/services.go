package service

import (
	"context"

	"github.com/kakeibo-app/kakeibo/internal/adapter"
	"github.com/kakeibo-app/kakeibo/internal/config"
	"github.com/kakeibo-app/kakeibo/internal/logger"
	"github.com/kakeibo-app/kakeibo/internal/netstate"
	"github.com/kakeibo-app/kakeibo/internal/store"
)

type Services struct {
	Queue       QueueManager
	Coordinator SyncCoordinator
	Gateway     MutationGateway
	Cache       CachePersister
}

func NewServices(
	ctx context.Context,
	storages *store.Storages,
	remote adapter.RemoteAPI,
	monitor netstate.Monitor,
	cfg config.Sync,
	log *logger.Logger,
) *Services {
	queue := NewQueueManager(storages.Queue)
	cache := NewCachePersister(ctx, storages.Metadata, cfg.CacheFlushInterval, log)
	coordinator := NewSyncCoordinator(queue, remote, storages, monitor, cfg.PollInterval, log)

	return &Services{
		Queue:       queue,
		Coordinator: coordinator,
		Gateway:     NewMutationGateway(queue, coordinator, monitor, cache),
		Cache:       cache,
	}
}
