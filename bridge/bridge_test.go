package bridge

import (
	"context"
	"iter"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamsorenl/Autogen-Chat-Demo/engine"
)

// askingEngine greets, asks the human a question, and reports the answer.
func askingEngine(input engine.InputFunc) engine.Engine {
	return engine.Func(func(ctx context.Context, task string) iter.Seq2[engine.Event, error] {
		return func(yield func(engine.Event, error) bool) {
			if !yield(engine.TextMessage{From: "Scientist", Body: "Working on: " + task}, nil) {
				return
			}
			answer, err := input(ctx, "Which colour?", nil)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(engine.TextMessage{From: engine.UserProxyName, Body: answer}, nil) {
				return
			}
			if !yield(engine.TextMessage{From: "Artist", Body: "Painting it " + answer}, nil) {
				return
			}
			yield(engine.TaskResult{StopReason: "done"}, nil)
		}
	})
}

func TestBridgeHumanInTheLoopRoundTrip(t *testing.T) {
	b := New(Options{Clock: clockwork.NewFakeClock()})
	defer b.Close()

	client := newFakeConn("web-1")
	b.Registry().Register(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx, askingEngine(b.RequestInput))

	assert.Equal(t, ToTask, b.Route("paint a fox"))
	require.Eventually(t, b.Router().AwaitingInput, 2*time.Second, 5*time.Millisecond)

	status := b.Status()
	assert.Equal(t, "running", status.State)
	assert.True(t, status.AwaitingInput)
	assert.Equal(t, 1, status.Clients)

	assert.Equal(t, ToInput, b.Route("orange"))

	require.Eventually(t, func() bool { return client.count() == 3 }, 2*time.Second, 5*time.Millisecond)
	envs := client.envelopes(t)
	assert.Equal(t, Envelope{Sender: "Scientist", Text: "Working on: paint a fox"}, envs[0])
	assert.Equal(t, Envelope{Sender: "Artist", Text: "Painting it orange"}, envs[1])
	assert.Equal(t, DefaultSender, envs[2].Sender)
	assert.Contains(t, envs[2].Text, "TaskResult")

	require.Eventually(t, func() bool { return b.Status().Completed == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.False(t, b.Router().AwaitingInput())
	assert.Equal(t, ToTask, b.Route("another"))
}

func TestBridgeInputTimeoutEndsTask(t *testing.T) {
	clock := clockwork.NewFakeClock()
	b := New(Options{Clock: clock, InputTimeout: 300 * time.Second, PollInterval: time.Hour})
	defer b.Close()

	client := newFakeConn("web-1")
	b.Registry().Register(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx, askingEngine(b.RequestInput))

	b.Route("paint a fox")
	require.Eventually(t, b.Router().AwaitingInput, 2*time.Second, 5*time.Millisecond)

	// The poll timer is stopped while a task runs; only the input wait remains.
	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	clock.Advance(300 * time.Second)

	require.Eventually(t, func() bool { return client.count() == 3 }, 2*time.Second, 5*time.Millisecond)
	envs := client.envelopes(t)
	assert.Equal(t, "Painting it "+engine.Terminate, envs[1].Text)
	assert.False(t, b.Router().AwaitingInput())
}

func TestBridgeEmitOutsideTask(t *testing.T) {
	b := New(Options{Clock: clockwork.NewFakeClock()})
	defer b.Close()
	client := newFakeConn("c")
	b.Registry().Register(client)

	assert.True(t, b.Emit(context.Background(), map[string]any{"sender": "System", "text": "welcome"}))
	require.Eventually(t, func() bool { return client.count() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "welcome", client.envelopes(t)[0].Text)
}
