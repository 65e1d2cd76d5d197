package config

import "time"

// StructuredConfig is the top-level configuration container for the kakeibo
// client. It aggregates all sub-configurations and is populated by merging
// values from environment variables, command-line flags, and an optional
// JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Adapter holds network settings for the remote API client.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds local persistence settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds sync-subsystem timing settings.
	Sync Sync `envPrefix:"SYNC_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged under the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c/-config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Adapter holds network settings used by the client transport layer.
type Adapter struct {
	// BaseURL is the remote API endpoint, e.g. "https://api.kakeibo.app".
	// Env: ADAPTER_SERVER_URL
	BaseURL string `env:"SERVER_URL"`

	// RequestTimeout is the per-request timeout for outbound calls.
	// A replay that exceeds it is treated like any other network failure.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage holds local database settings.
type Storage struct {
	// DB holds the SQLite connection settings for the local replica.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local SQLite database.
type DB struct {
	// DSN is the SQLite file path used for the local replica and queue
	// (e.g. "~/.kakeibo/kakeibo.db").
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Sync holds timing settings for the sync subsystem.
type Sync struct {
	// PollInterval is the period of the coordinator's recurring
	// drain-while-online timer.
	// Env: SYNC_POLL_INTERVAL
	PollInterval time.Duration `env:"POLL_INTERVAL"`

	// ProbeInterval is how often the connectivity monitor probes the
	// remote health endpoint.
	// Env: SYNC_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// CacheFlushInterval throttles query-cache snapshots to the local
	// store: at most one flush per interval.
	// Env: SYNC_CACHE_FLUSH_INTERVAL
	CacheFlushInterval time.Duration `env:"CACHE_FLUSH_INTERVAL"`
}

// Defaults applied for fields left empty by every source.
const (
	defaultBaseURL            = "http://localhost:8080"
	defaultRequestTimeout     = 15 * time.Second
	defaultPollInterval       = 30 * time.Second
	defaultProbeInterval      = 5 * time.Second
	defaultCacheFlushInterval = 10 * time.Second
)

// GetClientConfig loads, merges, and validates the client configuration from
// all available sources in the following priority order (earlier sources
// win for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Unset timing fields fall back to package defaults. Returns a fully
// populated *StructuredConfig or an error if any source fails to load or
// the final config fails validation.
func GetClientConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}

func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Adapter.BaseURL == "" {
		cfg.Adapter.BaseURL = defaultBaseURL
	}
	if cfg.Adapter.RequestTimeout <= 0 {
		cfg.Adapter.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Sync.PollInterval <= 0 {
		cfg.Sync.PollInterval = defaultPollInterval
	}
	if cfg.Sync.ProbeInterval <= 0 {
		cfg.Sync.ProbeInterval = defaultProbeInterval
	}
	if cfg.Sync.CacheFlushInterval <= 0 {
		cfg.Sync.CacheFlushInterval = defaultCacheFlushInterval
	}
}

// validate checks that the final merged config satisfies the invariants the
// client relies on at startup. An empty DSN is allowed: the store layer
// degrades to pass-through mode without local persistence.
func (cfg *StructuredConfig) validate() error {
	if cfg.Adapter.BaseURL == "" {
		return ErrInvalidAdapterConfigs
	}
	if cfg.Sync.PollInterval <= 0 || cfg.Sync.ProbeInterval <= 0 {
		return ErrInvalidSyncConfigs
	}
	return nil
}
