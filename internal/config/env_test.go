package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_MapsVariables(t *testing.T) {
	t.Setenv("ADAPTER_SERVER_URL", "https://env.example.com")
	t.Setenv("ADAPTER_REQUEST_TIMEOUT", "25s")
	t.Setenv("STORAGE_DB_DSN", "/data/ledger.db")
	t.Setenv("SYNC_POLL_INTERVAL", "1m")

	var cfg StructuredConfig
	require.NoError(t, parseEnv(&cfg))

	assert.Equal(t, "https://env.example.com", cfg.Adapter.BaseURL)
	assert.Equal(t, 25*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, "/data/ledger.db", cfg.Storage.DB.DSN)
	assert.Equal(t, time.Minute, cfg.Sync.PollInterval)
}

func TestParseEnv_BadDuration(t *testing.T) {
	t.Setenv("ADAPTER_REQUEST_TIMEOUT", "soon")

	var cfg StructuredConfig
	assert.Error(t, parseEnv(&cfg))
}

func TestApplyDefaults_FillsEmptyFields(t *testing.T) {
	var cfg StructuredConfig
	cfg.applyDefaults()

	assert.Equal(t, defaultBaseURL, cfg.Adapter.BaseURL)
	assert.Equal(t, defaultRequestTimeout, cfg.Adapter.RequestTimeout)
	assert.Equal(t, defaultPollInterval, cfg.Sync.PollInterval)
	assert.Equal(t, defaultProbeInterval, cfg.Sync.ProbeInterval)
	assert.Equal(t, defaultCacheFlushInterval, cfg.Sync.CacheFlushInterval)
}

func TestValidate_RejectsBadTimings(t *testing.T) {
	cfg := &StructuredConfig{
		Adapter: Adapter{BaseURL: "http://localhost:8080"},
		Sync:    Sync{PollInterval: 0, ProbeInterval: time.Second},
	}
	assert.ErrorIs(t, cfg.validate(), ErrInvalidSyncConfigs)

	cfg.Sync.PollInterval = time.Second
	cfg.Adapter.BaseURL = ""
	assert.ErrorIs(t, cfg.validate(), ErrInvalidAdapterConfigs)
}
