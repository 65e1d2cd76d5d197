package netstate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kakeibo-app/kakeibo/internal/logger"
)

type fakeProber struct {
	err atomic.Value // error or nil sentinel
}

func newFakeProber(err error) *fakeProber {
	p := &fakeProber{}
	p.setErr(err)
	return p
}

func (p *fakeProber) setErr(err error) {
	if err == nil {
		p.err.Store(errNone)
	} else {
		p.err.Store(err)
	}
}

var errNone = errors.New("none")

func (p *fakeProber) Ping(context.Context) error {
	err := p.err.Load().(error)
	if errors.Is(err, errNone) {
		return nil
	}
	return err
}

func waitForEvent(t *testing.T, events <-chan Event, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(timeout):
		t.Fatal("timed out waiting for connectivity event")
		return Event{}
	}
}

func TestProbeMonitor_InitialProbeGoesOnline(t *testing.T) {
	m := NewProbeMonitor(newFakeProber(nil), time.Hour, logger.Nop())
	defer m.Close()

	ev := waitForEvent(t, m.Events(), time.Second)
	assert.True(t, ev.Online)
	assert.True(t, m.Online())
}

func TestProbeMonitor_TransitionToOffline(t *testing.T) {
	prober := newFakeProber(nil)
	m := NewProbeMonitor(prober, time.Hour, logger.Nop())
	defer m.Close()

	waitForEvent(t, m.Events(), time.Second)

	prober.setErr(errors.New("connection refused"))
	assert.False(t, m.CheckNow(context.Background()))

	ev := waitForEvent(t, m.Events(), time.Second)
	assert.False(t, ev.Online)
	assert.False(t, m.Online())
}

func TestProbeMonitor_NoEventWithoutChange(t *testing.T) {
	prober := newFakeProber(errors.New("down"))
	m := NewProbeMonitor(prober, time.Hour, logger.Nop())
	defer m.Close()

	// Starts offline and the first probe fails: no transition.
	m.CheckNow(context.Background())
	m.CheckNow(context.Background())

	select {
	case ev := <-m.Events():
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManualMonitor_PublishesOnlyChanges(t *testing.T) {
	m := NewManualMonitor(false)

	m.SetOnline(true)
	m.SetOnline(true)
	m.SetOnline(false)

	ev := waitForEvent(t, m.Events(), time.Second)
	require.True(t, ev.Online)
	ev = waitForEvent(t, m.Events(), time.Second)
	require.False(t, ev.Online)

	select {
	case ev = <-m.Events():
		t.Fatalf("unexpected extra event: %+v", ev)
	default:
	}
}
