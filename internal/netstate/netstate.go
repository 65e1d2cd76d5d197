// Package netstate tracks whether the kakeibo server is reachable.
//
// Connectivity is not inferred from interface flags: the only signal that
// matters is whether the server answers its health endpoint, so the probe
// monitor pings it on an interval and publishes transitions. Consumers read
// the current state via Online and react to changes via Events.
package netstate

import "time"

// Event is one connectivity transition.
type Event struct {
	Online bool
	At     time.Time
}

// Monitor exposes the client's view of server reachability.
type Monitor interface {
	// Online returns the last observed state. It never blocks.
	Online() bool

	// Events returns a channel carrying state transitions. Only changes are
	// published: two consecutive offline probes produce one event.
	Events() <-chan Event

	// Close stops the monitor and releases its resources.
	Close() error
}
