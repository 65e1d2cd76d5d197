package netstate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kakeibo-app/kakeibo/internal/logger"
)

// Prober answers whether the server is reachable right now. Satisfied by the
// HTTP adapter's Ping.
type Prober interface {
	Ping(ctx context.Context) error
}

// ProbeMonitor polls the server health endpoint and publishes transitions.
type ProbeMonitor struct {
	prober   Prober
	interval time.Duration
	log      *logger.Logger

	online atomic.Bool
	events chan Event

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// NewProbeMonitor starts a monitor that probes the server every interval.
// The monitor starts pessimistic (offline) and performs an immediate first
// probe, so consumers see the real state within one round trip.
func NewProbeMonitor(prober Prober, interval time.Duration, log *logger.Logger) *ProbeMonitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &ProbeMonitor{
		prober:   prober,
		interval: interval,
		log:      log,
		events:   make(chan Event, 8),
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go m.loop(ctx)
	return m
}

func (m *ProbeMonitor) Online() bool {
	return m.online.Load()
}

func (m *ProbeMonitor) Events() <-chan Event {
	return m.events
}

func (m *ProbeMonitor) Close() error {
	m.closeOnce.Do(func() {
		m.cancel()
		<-m.done
		close(m.events)
	})
	return nil
}

// CheckNow probes immediately instead of waiting for the next tick. Used
// when the app returns to foreground.
func (m *ProbeMonitor) CheckNow(ctx context.Context) bool {
	return m.probe(ctx)
}

func (m *ProbeMonitor) loop(ctx context.Context) {
	defer close(m.done)

	m.probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *ProbeMonitor) probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	online := m.prober.Ping(probeCtx) == nil
	if m.online.Swap(online) == online {
		return online
	}

	m.log.Info().Bool("online", online).Msg("connectivity changed")

	// Drop the event if the subscriber lags behind: Online() always carries
	// the current state, so a missed transition is recoverable.
	select {
	case m.events <- Event{Online: online, At: time.Now()}:
	default:
	}

	return online
}
