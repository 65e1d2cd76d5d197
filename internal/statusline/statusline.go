// Package statusline renders the sync status indicator shown by the client
// binary: connectivity, drain activity, pending backlog and the last error.
package statusline

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kakeibo-app/kakeibo/models"
)

var (
	onlineStyle  = lipgloss.NewStyle().Bold(true)
	offlineStyle = lipgloss.NewStyle().Faint(true)
	syncingStyle = lipgloss.NewStyle().Italic(true)
	errorStyle   = lipgloss.NewStyle().Bold(true)
	badgeStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Render formats one status snapshot as a single line.
func Render(s models.SyncStatus) string {
	var parts []string

	if s.IsOnline {
		parts = append(parts, onlineStyle.Render("online"))
	} else {
		parts = append(parts, offlineStyle.Render("offline"))
	}

	if s.IsSyncing {
		parts = append(parts, syncingStyle.Render("syncing..."))
	}

	if s.PendingCount > 0 {
		parts = append(parts, badgeStyle.Render(fmt.Sprintf("%d pending", s.PendingCount)))
	}

	if s.LastError != "" {
		parts = append(parts, errorStyle.Render("! "+s.LastError))
	}

	if s.LastSyncAt != nil && s.Settled() {
		parts = append(parts, offlineStyle.Render("synced "+s.LastSyncAt.Format("15:04:05")))
	}

	return strings.Join(parts, " | ")
}
