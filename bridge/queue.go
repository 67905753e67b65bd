package bridge

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrQueueTimeout is returned by PopUntil when the deadline fires before an
// item arrives.
var ErrQueueTimeout = errors.New("queue: timed out waiting for item")

// Queue is an unbounded FIFO of message texts. Any number of goroutines may
// push; exactly one goroutine is expected to pop.
type Queue struct {
	mu    sync.Mutex
	items []string
	ready chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Push appends item to the tail of the queue.
func (q *Queue) Push(item string) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
	q.notify()
}

// TryPop removes and returns the head of the queue without blocking.
func (q *Queue) TryPop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return "", false
	}
	item := q.items[0]
	q.items[0] = ""
	q.items = q.items[1:]
	if len(q.items) > 0 {
		q.notify()
	}
	return item, true
}

// Pop blocks until an item is available or ctx is done.
func (q *Queue) Pop(ctx context.Context) (string, error) {
	return q.PopUntil(ctx, nil)
}

// PopUntil blocks until an item is available, ctx is done, or deadline
// fires. A nil deadline never fires.
func (q *Queue) PopUntil(ctx context.Context, deadline <-chan time.Time) (string, error) {
	for {
		if item, ok := q.TryPop(); ok {
			return item, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline:
			return "", ErrQueueTimeout
		case <-q.ready:
		}
	}
}

// Drain discards every queued item and returns how many were dropped.
func (q *Queue) Drain() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	q.items = nil
	return n
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// notify wakes a blocked Pop. Non-blocking; one pending signal is enough
// because Pop re-checks the slice after every wake-up.
func (q *Queue) notify() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
