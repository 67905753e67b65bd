package bridge

import (
	"context"
	"errors"
	"iter"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamsorenl/Autogen-Chat-Demo/engine"
)

// recordingEngine remembers the tasks it ran and how many ran at once.
type recordingEngine struct {
	mu      sync.Mutex
	tasks   []string
	active  atomic.Int32
	maxSeen atomic.Int32
	hold    time.Duration
	fail    map[string]error
	panics  map[string]bool
}

func (e *recordingEngine) Run(_ context.Context, task string) iter.Seq2[engine.Event, error] {
	return func(yield func(engine.Event, error) bool) {
		n := e.active.Add(1)
		defer e.active.Add(-1)
		for {
			m := e.maxSeen.Load()
			if n <= m || e.maxSeen.CompareAndSwap(m, n) {
				break
			}
		}

		e.mu.Lock()
		e.tasks = append(e.tasks, task)
		e.mu.Unlock()

		time.Sleep(e.hold)
		if e.panics[task] {
			panic("engine exploded")
		}
		if err := e.fail[task]; err != nil {
			yield(nil, err)
			return
		}
		yield(engine.TextMessage{From: "Scientist", Body: "ran " + task}, nil)
	}
}

func (e *recordingEngine) ran() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.tasks...)
}

func newTestWorker() (*Worker, *Queue) {
	q := NewQueue()
	a := NewAdapter(NewRegistry(8), clockwork.NewFakeClock(), "")
	return NewWorker(q, a, clockwork.NewFakeClock(), time.Second), q
}

func TestWorkerRunsTasksInOrderOneAtATime(t *testing.T) {
	w, q := newTestWorker()
	eng := &recordingEngine{hold: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, eng)

	q.Push("A")
	q.Push("B")
	q.Push("C")

	require.Eventually(t, func() bool { return len(eng.ran()) == 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"A", "B", "C"}, eng.ran())
	assert.Equal(t, int32(1), eng.maxSeen.Load())
	require.Eventually(t, func() bool { return w.Completed() == 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestWorkerDiscardsTerminateSentinel(t *testing.T) {
	w, q := newTestWorker()
	eng := &recordingEngine{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, eng)

	q.Push(engine.Terminate)
	q.Push("real task")

	require.Eventually(t, func() bool { return len(eng.ran()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"real task"}, eng.ran())
}

func TestWorkerSurvivesFailuresAndPanics(t *testing.T) {
	w, q := newTestWorker()
	eng := &recordingEngine{
		fail:   map[string]error{"bad": errors.New("model unavailable")},
		panics: map[string]bool{"worse": true},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, eng)

	q.Push("bad")
	q.Push("worse")
	q.Push("fine")

	require.Eventually(t, func() bool { return w.Completed() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(2), w.Failed())
	assert.Equal(t, []string{"bad", "worse", "fine"}, eng.ran())
	require.Eventually(t, func() bool { return w.State() == StateIdle }, 2*time.Second, 5*time.Millisecond)
}

func TestWorkerStateWhileRunning(t *testing.T) {
	w, q := newTestWorker()
	release := make(chan struct{})
	eng := engine.Func(func(context.Context, string) iter.Seq2[engine.Event, error] {
		return func(func(engine.Event, error) bool) { <-release }
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, eng)

	assert.Equal(t, StateIdle, w.State())
	q.Push("long task")

	require.Eventually(t, func() bool { return w.State() == StateRunning }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "long task", w.CurrentTask())

	close(release)
	require.Eventually(t, func() bool { return w.State() == StateIdle }, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, w.CurrentTask())
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	w, _ := newTestWorker()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx, &recordingEngine{})
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
}
