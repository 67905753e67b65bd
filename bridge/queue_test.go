package bridge

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	q.Push("a")
	q.Push("b")
	q.Push("c")
	require.Equal(t, 3, q.Len())

	for _, want := range []string{"a", "b", "c"} {
		got, err := q.Pop(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, ok := q.TryPop()
	assert.False(t, ok)
}

func TestQueuePopWaitsForPush(t *testing.T) {
	q := NewQueue()
	done := make(chan string, 1)
	go func() {
		item, err := q.Pop(context.Background())
		if err == nil {
			done <- item
		}
	}()

	q.Push("late")
	select {
	case got := <-done:
		assert.Equal(t, "late", got)
	case <-time.After(2 * time.Second):
		t.Fatal("Pop did not return after Push")
	}
}

func TestQueuePopContextCancelled(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueuePopUntilDeadline(t *testing.T) {
	q := NewQueue()
	deadline := make(chan time.Time, 1)
	deadline <- time.Now()

	_, err := q.PopUntil(context.Background(), deadline)
	assert.ErrorIs(t, err, ErrQueueTimeout)
}

func TestQueuePopUntilPrefersQueuedItem(t *testing.T) {
	q := NewQueue()
	q.Push("ready")
	deadline := make(chan time.Time, 1)
	deadline <- time.Now()

	got, err := q.PopUntil(context.Background(), deadline)
	require.NoError(t, err)
	assert.Equal(t, "ready", got)
}

func TestQueueDrain(t *testing.T) {
	q := NewQueue()
	q.Push("x")
	q.Push("y")

	assert.Equal(t, 2, q.Drain())
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Drain())
}

func TestQueueConcurrentPushKeepsEveryItem(t *testing.T) {
	q := NewQueue()
	const producers, each = 8, 50

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range each {
				q.Push(fmt.Sprintf("%d-%d", p, i))
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for {
		item, ok := q.TryPop()
		if !ok {
			break
		}
		seen[item] = true
	}
	assert.Len(t, seen, producers*each)
}
