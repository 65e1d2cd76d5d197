package service

import (
	"context"

	"github.com/kakeibo-app/kakeibo/internal/logger"
	"github.com/kakeibo-app/kakeibo/internal/netstate"
	"github.com/kakeibo-app/kakeibo/internal/utils"
	"github.com/kakeibo-app/kakeibo/models"
)

type mutationGateway struct {
	queue       QueueManager
	coordinator SyncCoordinator
	monitor     netstate.Monitor
	cache       CachePersister
	idGen       *utils.UUIDGenerator
}

func NewMutationGateway(
	queue QueueManager,
	coordinator SyncCoordinator,
	monitor netstate.Monitor,
	cache CachePersister,
) MutationGateway {
	return &mutationGateway{
		queue:       queue,
		coordinator: coordinator,
		monitor:     monitor,
		cache:       cache,
		idGen:       utils.NewUUIDGenerator(),
	}
}

func (g *mutationGateway) Do(ctx context.Context, m Mutation, call RemoteCall) (MutationResult, error) {
	log := logger.FromContext(ctx)

	body, callErr := call(ctx)
	if callErr == nil {
		for _, key := range m.InvalidateKeys {
			g.cache.RemoveItem(key)
		}

		// The confirmed write may have unblocked queued work; drain any
		// backlog without holding the caller up.
		go g.coordinator.TriggerSync(context.WithoutCancel(ctx))

		return MutationResult{EntityID: m.EntityID, Body: body}, nil
	}

	// Queue only on confirmed offline. A failure while the monitor says
	// online is a genuine server answer and must reach the caller: queueing
	// it would replay a request the server already processed or rejected.
	if g.monitor.Online() {
		return MutationResult{}, callErr
	}

	entityID := m.EntityID
	if m.Operation == models.OpCreate && entityID == "" {
		entityID = g.idGen.GenerateLocalID()
	}

	op, enqueueErr := g.queue.Enqueue(ctx, m.Operation, m.EntityType, entityID, m.Payload)
	if enqueueErr != nil {
		// Storage degraded: no queue to fall back on, so the original
		// network error is the honest answer.
		log.Err(enqueueErr).Msg("offline enqueue failed, propagating network error")
		return MutationResult{}, callErr
	}

	log.Info().
		Str("operation", op.String()).
		Msg("mutation queued while offline")

	return MutationResult{Queued: true, EntityID: entityID}, nil
}
