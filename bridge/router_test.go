package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterRoutesToTasksWhenIdle(t *testing.T) {
	r := NewRouter()

	assert.Equal(t, ToTask, r.Route("draw a cat"))
	assert.Equal(t, 1, r.Tasks().Len())
	assert.Equal(t, 0, r.Inputs().Len())
}

func TestRouterRoutesToInputsWhileAwaiting(t *testing.T) {
	r := NewRouter()
	r.beginInput()
	require.True(t, r.AwaitingInput())

	assert.Equal(t, ToInput, r.Route("yes"))
	assert.Equal(t, 0, r.Tasks().Len())
	assert.Equal(t, 1, r.Inputs().Len())

	r.endInput()
	assert.False(t, r.AwaitingInput())
	assert.Equal(t, ToTask, r.Route("next"))
}

func TestRouterBeginInputDiscardsStaleResponses(t *testing.T) {
	r := NewRouter()
	r.Inputs().Push("old answer")

	assert.Equal(t, 1, r.beginInput())
	assert.Equal(t, 0, r.Inputs().Len())
}

func TestRouterTakeInputLowersFlag(t *testing.T) {
	r := NewRouter()
	r.beginInput()
	require.Equal(t, ToInput, r.Route("yes"))

	got, err := r.takeInput(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "yes", got)

	assert.False(t, r.AwaitingInput())
	assert.Equal(t, ToTask, r.Route("next task"))
	r.endInput()
	assert.Equal(t, 1, r.Tasks().Len())
}

func TestRouterTakeInputDeadlineKeepsFlag(t *testing.T) {
	r := NewRouter()
	r.beginInput()

	deadline := make(chan time.Time, 1)
	deadline <- time.Now()
	_, err := r.takeInput(context.Background(), deadline)
	assert.ErrorIs(t, err, ErrQueueTimeout)
	assert.True(t, r.AwaitingInput())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.takeInput(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)

	r.endInput()
	assert.False(t, r.AwaitingInput())
}

func TestRouterConcurrentRouteLosesNothing(t *testing.T) {
	r := NewRouter()
	const n = 200

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i == n/2 {
				r.beginInput()
			}
			r.Route("msg")
		}()
	}
	wg.Wait()

	assert.Equal(t, n, r.Tasks().Len()+r.Inputs().Len())
}

func TestDestinationString(t *testing.T) {
	assert.Equal(t, "task", ToTask.String())
	assert.Equal(t, "input", ToInput.String())
}
