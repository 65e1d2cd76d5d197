package store

import (
	"context"
	"fmt"
	"time"

	"github.com/kakeibo-app/kakeibo/internal/logger"
)

// replicaBookkeeping implements the ReplicaRepository surface for one
// replica table. Embedded by every entity repository.
type replicaBookkeeping struct {
	db    *DB
	table string
}

func (r replicaBookkeeping) MarkSynced(ctx context.Context, id string, at time.Time) error {
	log := logger.FromContext(ctx)

	query, ok := markSyncedQueries[r.table]
	if !ok {
		return fmt.Errorf("no mark-synced query for table %s", r.table)
	}

	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		log.Err(err).
			Str("func", "replicaBookkeeping.MarkSynced").
			Str("table", r.table).
			Str("id", id).
			Msg("failed to mark replica row synced")
		return fmt.Errorf("failed to mark %s row synced (id=%s): %w", r.table, id, err)
	}

	return nil
}

func (r replicaBookkeeping) AdoptServerID(ctx context.Context, localID, serverID string) error {
	log := logger.FromContext(ctx)

	query, ok := adoptServerIDQueries[r.table]
	if !ok {
		return fmt.Errorf("no adopt-server-id query for table %s", r.table)
	}

	if _, err := r.db.ExecContext(ctx, query, serverID, localID); err != nil {
		log.Err(err).
			Str("func", "replicaBookkeeping.AdoptServerID").
			Str("table", r.table).
			Str("local_id", localID).
			Str("server_id", serverID).
			Msg("failed to adopt server id for replica row")
		return fmt.Errorf("failed to adopt server id on %s (local_id=%s): %w", r.table, localID, err)
	}

	return nil
}
