package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/iamsorenl/Autogen-Chat-Demo/engine"
	"github.com/iamsorenl/Autogen-Chat-Demo/internal/runtimecfg"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
)

// State is the worker's execution state.
type State int32

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// Worker consumes the task queue and runs one engine task at a time.
type Worker struct {
	tasks   *Queue
	adapter *Adapter
	clock   clockwork.Clock
	poll    time.Duration

	state     atomic.Int32
	current   atomic.Pointer[string]
	completed atomic.Int64
	failed    atomic.Int64
}

// NewWorker creates a worker. A non-positive poll interval selects the default.
func NewWorker(tasks *Queue, adapter *Adapter, clock clockwork.Clock, poll time.Duration) *Worker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if poll <= 0 {
		poll = runtimecfg.BridgeDefaultPollInterval
	}
	return &Worker{tasks: tasks, adapter: adapter, clock: clock, poll: poll}
}

// State returns the current execution state.
func (w *Worker) State() State { return State(w.state.Load()) }

// CurrentTask returns the task being run, or "" when idle.
func (w *Worker) CurrentTask() string {
	if p := w.current.Load(); p != nil {
		return *p
	}
	return ""
}

// Completed returns how many tasks finished without error.
func (w *Worker) Completed() int64 { return w.completed.Load() }

// Failed returns how many tasks ended with an error or panic.
func (w *Worker) Failed() int64 { return w.failed.Load() }

// Run polls the task queue until ctx is done. Each dequeued task runs to
// completion before the next is taken. A task that is exactly the terminate
// sentinel is discarded. Task failures are logged and never stop the loop.
func (w *Worker) Run(ctx context.Context, eng engine.Engine) {
	logger.Info("task worker started", "poll", w.poll)
	defer logger.Info("task worker stopped")

	for {
		timer := w.clock.NewTimer(w.poll)
		task, err := w.tasks.PopUntil(ctx, timer.Chan())
		timer.Stop()

		if errors.Is(err, ErrQueueTimeout) {
			continue
		}
		if err != nil {
			return
		}
		if task == engine.Terminate {
			logger.Info("discarded terminate sentinel from task queue")
			continue
		}
		w.runTask(ctx, eng, task)
	}
}

func (w *Worker) runTask(ctx context.Context, eng engine.Engine, task string) {
	w.current.Store(&task)
	w.state.Store(int32(StateRunning))
	defer func() {
		w.current.Store(nil)
		w.state.Store(int32(StateIdle))
	}()
	defer func() {
		if r := recover(); r != nil {
			w.failed.Add(1)
			logger.Error("task panicked", "task", truncate(task, 120), "err", fmt.Sprint(r))
		}
	}()

	started := w.clock.Now()
	logger.Info("task started", "task", truncate(task, 120))

	sent, err := w.adapter.Consume(ctx, eng.Run(ctx, task))
	if err != nil {
		w.failed.Add(1)
		logger.Error("task failed", "task", truncate(task, 120), "events", sent, "err", err)
		return
	}

	w.completed.Add(1)
	logger.Info("task finished", "events", sent, "duration", w.clock.Since(started).Round(time.Millisecond))
}
