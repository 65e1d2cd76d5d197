package config

import "errors"

var (
	// ErrInvalidAdapterConfigs means the remote API settings are unusable.
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configs")
	// ErrInvalidSyncConfigs means a sync timing setting is non-positive.
	ErrInvalidSyncConfigs = errors.New("invalid sync configs")
)
