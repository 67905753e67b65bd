package bridge

import (
	"context"
	"sync"
	"time"
)

// Destination identifies the queue a routed message landed in.
type Destination int

const (
	// ToTask means the message was queued as a new task.
	ToTask Destination = iota
	// ToInput means the message was queued as a human-input response.
	ToInput
)

func (d Destination) String() string {
	switch d {
	case ToInput:
		return "input"
	default:
		return "task"
	}
}

// Router owns the task queue, the input queue, and the "awaiting human input"
// flag that decides between them. The flag and every routing decision share
// one mutex, so a message is never split between the two queues while the
// flag is changing.
type Router struct {
	mu       sync.Mutex
	awaiting bool
	tasks    *Queue
	inputs   *Queue
}

// NewRouter creates a router with two empty queues.
func NewRouter() *Router {
	return &Router{
		tasks:  NewQueue(),
		inputs: NewQueue(),
	}
}

// Route appends text to the input queue while input is awaited, otherwise to
// the task queue.
func (r *Router) Route(text string) Destination {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.awaiting {
		r.inputs.Push(text)
		return ToInput
	}
	r.tasks.Push(text)
	return ToTask
}

// AwaitingInput reports whether an input request is currently waiting.
func (r *Router) AwaitingInput() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.awaiting
}

// Tasks returns the task queue.
func (r *Router) Tasks() *Queue { return r.tasks }

// Inputs returns the human-input queue.
func (r *Router) Inputs() *Queue { return r.inputs }

// beginInput raises the flag and discards stale responses left behind by an
// earlier, abandoned wait. Returns the number discarded.
func (r *Router) beginInput() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.awaiting = true
	return r.inputs.Drain()
}

// takeInput blocks until a response is queued, ctx is done, or deadline
// fires. The response is dequeued and the flag lowered under the routing
// lock, so a message routed after the answer is taken becomes a task.
func (r *Router) takeInput(ctx context.Context, deadline <-chan time.Time) (string, error) {
	for {
		r.mu.Lock()
		item, ok := r.inputs.TryPop()
		if ok {
			r.awaiting = false
		}
		r.mu.Unlock()
		if ok {
			return item, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline:
			return "", ErrQueueTimeout
		case <-r.inputs.ready:
		}
	}
}

// endInput lowers the flag.
func (r *Router) endInput() {
	r.mu.Lock()
	r.awaiting = false
	r.mu.Unlock()
}
