// Package engine defines the contract between the bridge and a conversational
// processing engine: the event stream it produces and the human-input
// callback it consumes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
)

const (
	// Terminate is the engine-side convention for "end this task".
	Terminate = "TERMINATE"

	// UserProxyName is the participant identity reserved for the human.
	UserProxyName = "UserProxy"
)

// ErrInputCancelled is returned by an InputFunc when its cancellation token fires.
var ErrInputCancelled = fmt.Errorf("input request cancelled: %w", context.Canceled)

// Event is one record of an engine's output stream. Its shape is open; the
// bridge normalizes it through the capability interfaces below.
type Event = any

// Sourcer exposes the participant an event came from.
type Sourcer interface{ Source() string }

// Senderer exposes an event's sender.
type Senderer interface{ Sender() string }

// Namer exposes an event's name.
type Namer interface{ Name() string }

// Agenter exposes the agent an event belongs to.
type Agenter interface{ Agent() string }

// Contenter exposes an event's content.
type Contenter interface{ Content() string }

// Texter exposes an event's text.
type Texter interface{ Text() string }

// Messager exposes an event's message.
type Messager interface{ Message() string }

// Engine runs one task and yields its events lazily. The sequence ends when
// the task completes; a non-nil error ends it early.
type Engine interface {
	Run(ctx context.Context, task string) iter.Seq2[Event, error]
}

// Func adapts a plain function to the Engine interface.
type Func func(ctx context.Context, task string) iter.Seq2[Event, error]

// Run calls f(ctx, task).
func (f Func) Run(ctx context.Context, task string) iter.Seq2[Event, error] {
	return f(ctx, task)
}

// InputFunc is called by the engine when it needs a human response mid-task.
// A nil token means the caller cannot cancel the request.
type InputFunc func(ctx context.Context, prompt string, token *CancellationToken) (string, error)

// CancellationToken lets an engine abort a pending input request.
type CancellationToken struct {
	once sync.Once
	done chan struct{}
}

// NewCancellationToken returns an untriggered token.
func NewCancellationToken() *CancellationToken {
	return &CancellationToken{done: make(chan struct{})}
}

// Cancel fires the token. Safe to call more than once.
func (t *CancellationToken) Cancel() {
	t.once.Do(func() { close(t.done) })
}

// Done is closed once the token fires.
func (t *CancellationToken) Done() <-chan struct{} {
	return t.done
}

// Cancelled reports whether the token has fired.
func (t *CancellationToken) Cancelled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// IsCancelled reports whether err came from a cancelled input request or context.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
