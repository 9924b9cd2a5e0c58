package netframe

import (
	"context"
	"sync"

	"github.com/banshee-data/occugrid/internal/monitoring"
)

// CaptureState is the capture gate's current mode.
type CaptureState int32

const (
	StateRunning CaptureState = iota
	StatePaused
	StateStopped
)

func (s CaptureState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	}
	return "invalid"
}

// Gate is the pause/resume/stop state machine gating frame capture. All
// transitions flow through a single command channel consumed by Run, so
// there is no shared flag to race on. Stopped is terminal.
//
// Transition table: pause Running→Paused, resume Paused→Running,
// stop any→Stopped. Anything else is ignored with a log line.
type Gate struct {
	cmds chan Command

	mu    sync.RWMutex
	state CaptureState

	stopped chan struct{}
}

// NewGate returns a gate in the Running state. Run must be started for
// commands to take effect.
func NewGate() *Gate {
	return &Gate{
		cmds:    make(chan Command, 8),
		state:   StateRunning,
		stopped: make(chan struct{}),
	}
}

// Run consumes commands until the context is cancelled or a stop command
// arrives.
func (g *Gate) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			g.transition(CommandStop)
			return
		case cmd := <-g.cmds:
			if g.transition(cmd); g.State() == StateStopped {
				return
			}
		}
	}
}

func (g *Gate) transition(cmd Command) {
	g.mu.Lock()
	defer g.mu.Unlock()

	prev := g.state
	switch {
	case cmd == CommandStop && g.state != StateStopped:
		g.state = StateStopped
		close(g.stopped)
	case cmd == CommandPause && g.state == StateRunning:
		g.state = StatePaused
	case cmd == CommandResume && g.state == StatePaused:
		g.state = StateRunning
	default:
		monitoring.Logf("capture gate: ignoring %q in state %s", cmd, g.state)
		return
	}
	monitoring.Logf("capture gate: %s -> %s", prev, g.state)
}

// Send queues a command. It reports false if the gate's buffer is full or
// the gate has stopped; commands are never blocking-sent from the network
// path.
func (g *Gate) Send(cmd Command) bool {
	select {
	case <-g.stopped:
		return false
	default:
	}
	select {
	case g.cmds <- cmd:
		return true
	default:
		monitoring.Logf("capture gate: command buffer full, dropping %q", cmd)
		return false
	}
}

// State returns the current capture state.
func (g *Gate) State() CaptureState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Stopped returns a channel closed when the gate reaches Stopped.
func (g *Gate) Stopped() <-chan struct{} { return g.stopped }
