package bridge

import (
	"context"
	"iter"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/iamsorenl/Autogen-Chat-Demo/engine"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
)

// Adapter turns an engine's event stream into envelopes and broadcasts them.
// Events attributed to the human participant are logged but not echoed back.
type Adapter struct {
	registry *Registry
	clock    clockwork.Clock
	start    time.Time
	hidden   string
}

// NewAdapter creates an adapter whose timestamps count from the moment it was
// created. hidden names the participant whose events are suppressed.
func NewAdapter(registry *Registry, clock clockwork.Clock, hidden string) *Adapter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if hidden == "" {
		hidden = engine.UserProxyName
	}
	return &Adapter{
		registry: registry,
		clock:    clock,
		start:    clock.Now(),
		hidden:   hidden,
	}
}

// Emit normalizes one event and broadcasts it unless it came from the hidden
// participant. Reports whether the event was broadcast.
func (a *Adapter) Emit(ctx context.Context, ev engine.Event) bool {
	env := Normalize(ev)
	if env.Sender == a.hidden {
		logger.Info("suppressed human echo", "sender", env.Sender, "text", truncate(env.Text, 200))
		return false
	}

	env.Timestamp = a.clock.Since(a.start).Seconds()
	logger.Info("engine event", "sender", env.Sender, "text", truncate(env.Text, 200))
	a.registry.Broadcast(ctx, env)
	return true
}

// Consume drains stream, emitting each event in order, and returns how many
// events were broadcast. It stops at the first stream error or when ctx is done.
func (a *Adapter) Consume(ctx context.Context, stream iter.Seq2[engine.Event, error]) (int, error) {
	sent := 0
	for ev, err := range stream {
		if err != nil {
			return sent, err
		}
		if a.Emit(ctx, ev) {
			sent++
		}
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
	}
	return sent, nil
}
