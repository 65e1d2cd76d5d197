package netstate

import (
	"sync/atomic"
	"time"
)

// ManualMonitor is a Monitor whose state is driven by its owner. Used in
// tests and in environments where the platform pushes connectivity changes
// instead of letting the client probe.
type ManualMonitor struct {
	online atomic.Bool
	events chan Event
}

func NewManualMonitor(online bool) *ManualMonitor {
	m := &ManualMonitor{events: make(chan Event, 8)}
	m.online.Store(online)
	return m
}

func (m *ManualMonitor) Online() bool {
	return m.online.Load()
}

func (m *ManualMonitor) Events() <-chan Event {
	return m.events
}

// SetOnline flips the state, publishing an event when it actually changes.
func (m *ManualMonitor) SetOnline(online bool) {
	if m.online.Swap(online) == online {
		return
	}
	select {
	case m.events <- Event{Online: online, At: time.Now()}:
	default:
	}
}

func (m *ManualMonitor) Close() error {
	return nil
}
