package netframe

import (
	"context"
	"testing"
	"time"
)

func TestGateStartsRunning(t *testing.T) {
	g := NewGate()
	if g.State() != StateRunning {
		t.Errorf("new gate state = %v, want running", g.State())
	}
}

func TestGateTransitions(t *testing.T) {
	tests := []struct {
		name string
		cmds []Command
		want CaptureState
	}{
		{"pause", []Command{CommandPause}, StatePaused},
		{"pause resume", []Command{CommandPause, CommandResume}, StateRunning},
		{"stop", []Command{CommandStop}, StateStopped},
		{"stop from paused", []Command{CommandPause, CommandStop}, StateStopped},
		{"resume while running ignored", []Command{CommandResume}, StateRunning},
		{"double pause ignored", []Command{CommandPause, CommandPause}, StatePaused},
		{"commands after stop ignored", []Command{CommandStop, CommandResume, CommandPause}, StateStopped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate()
			for _, cmd := range tt.cmds {
				g.transition(cmd)
			}
			if g.State() != tt.want {
				t.Errorf("state = %v, want %v", g.State(), tt.want)
			}
		})
	}
}

func TestGateStoppedChannel(t *testing.T) {
	g := NewGate()

	select {
	case <-g.Stopped():
		t.Fatal("Stopped() closed before stop")
	default:
	}

	g.transition(CommandStop)

	select {
	case <-g.Stopped():
	default:
		t.Error("Stopped() not closed after stop")
	}

	// A second stop must not re-close the channel (would panic).
	g.transition(CommandStop)
}

func TestGateRunConsumesCommands(t *testing.T) {
	g := NewGate()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		g.Run(ctx)
		close(done)
	}()

	if !g.Send(CommandPause) {
		t.Fatal("Send(pause) refused")
	}
	waitForState(t, g, StatePaused)

	if !g.Send(CommandResume) {
		t.Fatal("Send(resume) refused")
	}
	waitForState(t, g, StateRunning)

	if !g.Send(CommandStop) {
		t.Fatal("Send(stop) refused")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after stop")
	}
	if g.State() != StateStopped {
		t.Errorf("final state = %v, want stopped", g.State())
	}
}

func TestGateRunStopsOnContextCancel(t *testing.T) {
	g := NewGate()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		g.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if g.State() != StateStopped {
		t.Errorf("state after cancel = %v, want stopped", g.State())
	}
}

func TestGateSendAfterStop(t *testing.T) {
	g := NewGate()
	g.transition(CommandStop)

	if g.Send(CommandPause) {
		t.Error("Send succeeded on a stopped gate")
	}
}

func TestCaptureStateString(t *testing.T) {
	if StateRunning.String() != "running" || StatePaused.String() != "paused" || StateStopped.String() != "stopped" {
		t.Errorf("state strings: %q %q %q", StateRunning, StatePaused, StateStopped)
	}
}

func waitForState(t *testing.T, g *Gate, want CaptureState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if g.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("gate never reached %v (state %v)", want, g.State())
}
