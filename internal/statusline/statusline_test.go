package statusline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kakeibo-app/kakeibo/models"
)

func TestRender_Offline(t *testing.T) {
	line := Render(models.SyncStatus{IsOnline: false, PendingCount: 3})

	assert.Contains(t, line, "offline")
	assert.Contains(t, line, "3 pending")
	assert.NotContains(t, line, "syncing")
}

func TestRender_SyncingWithError(t *testing.T) {
	line := Render(models.SyncStatus{
		IsOnline:  true,
		IsSyncing: true,
		LastError: "2 operations failed",
	})

	assert.Contains(t, line, "online")
	assert.Contains(t, line, "syncing...")
	assert.Contains(t, line, "2 operations failed")
}

func TestRender_Settled(t *testing.T) {
	at := time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)
	line := Render(models.SyncStatus{IsOnline: true, LastSyncAt: &at})

	assert.Contains(t, line, "online")
	assert.Contains(t, line, "synced 09:30:00")
}
