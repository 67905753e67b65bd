package cron

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := NewScheduler(nil)
	require.NoError(t, err)
	t.Cleanup(s.Stop)
	return s
}

func TestEveryRunsRepeatedly(t *testing.T) {
	s := newTestScheduler(t)

	var runs atomic.Int32
	require.NoError(t, s.Every("tick", 20*time.Millisecond, func(context.Context) { runs.Add(1) }))
	s.Start()

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestEveryValidatesArguments(t *testing.T) {
	s := newTestScheduler(t)
	noop := func(context.Context) {}

	assert.Error(t, s.Every("", time.Second, noop))
	assert.Error(t, s.Every("zero", 0, noop))
	assert.Error(t, s.Every("nil", time.Second, nil))
	assert.Empty(t, s.Jobs())
}

func TestEveryReplacesExistingName(t *testing.T) {
	s := newTestScheduler(t)

	var first, second atomic.Int32
	require.NoError(t, s.Every("job", 20*time.Millisecond, func(context.Context) { first.Add(1) }))
	require.NoError(t, s.Every("job", 20*time.Millisecond, func(context.Context) { second.Add(1) }))
	assert.Equal(t, []string{"job"}, s.Jobs())

	s.Start()
	require.Eventually(t, func() bool { return second.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, first.Load())
}

func TestRemove(t *testing.T) {
	s := newTestScheduler(t)

	require.NoError(t, s.Every("b", time.Hour, func(context.Context) {}))
	require.NoError(t, s.Every("a", time.Hour, func(context.Context) {}))
	assert.Equal(t, []string{"a", "b"}, s.Jobs())

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.Equal(t, []string{"b"}, s.Jobs())
}

func TestStopCancelsTaskContext(t *testing.T) {
	s, err := NewScheduler(nil)
	require.NoError(t, err)

	started := make(chan struct{})
	finished := make(chan struct{})
	require.NoError(t, s.Every("long", 10*time.Millisecond, func(ctx context.Context) {
		select {
		case started <- struct{}{}:
		default:
			return
		}
		<-ctx.Done()
		close(finished)
	}))
	s.Start()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job never started")
	}
	s.Stop()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("task context was not cancelled")
	}
}

func TestPanickingTaskKeepsScheduling(t *testing.T) {
	s := newTestScheduler(t)

	var runs atomic.Int32
	require.NoError(t, s.Every("boom", 20*time.Millisecond, func(context.Context) {
		runs.Add(1)
		panic("boom")
	}))
	s.Start()

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduleHeartbeat(t *testing.T) {
	s := newTestScheduler(t)

	var calls atomic.Int32
	require.NoError(t, ScheduleHeartbeat(s, 20*time.Millisecond, func() []any {
		calls.Add(1)
		return []any{"state", "idle"}
	}))
	assert.Equal(t, []string{HeartbeatJobName}, s.Jobs())

	s.Start()
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}
