package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type metadataRepository struct {
	db *DB
}

func NewMetadataRepository(db *DB) MetadataRepository {
	return &metadataRepository{db: db}
}

func (r *metadataRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, getMetadataValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata (key=%s): %w", key, err)
	}
	return value, nil
}

func (r *metadataRepository) Set(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.ExecContext(ctx, setMetadataValue, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set metadata (key=%s): %w", key, err)
	}
	return nil
}

func (r *metadataRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, deleteMetadataValue, key); err != nil {
		return fmt.Errorf("failed to delete metadata (key=%s): %w", key, err)
	}
	return nil
}
