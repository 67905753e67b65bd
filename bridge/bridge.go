// Package bridge connects chat clients to a conversational engine. Inbound
// client text is routed either to a task queue or, while the engine is waiting
// on a human, to an input queue; engine events are normalized and broadcast
// back to every connected client.
package bridge

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/iamsorenl/Autogen-Chat-Demo/engine"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
)

// Options configures a Bridge. Zero values select defaults.
type Options struct {
	InputTimeout   time.Duration
	PollInterval   time.Duration
	OutboundBuffer int
	HumanName      string
	Clock          clockwork.Clock
}

// Bridge owns the shared state between transports and the engine.
type Bridge struct {
	clock      clockwork.Clock
	started    time.Time
	router     *Router
	registry   *Registry
	redirector *Redirector
	adapter    *Adapter
	worker     *Worker
}

// Status is a point-in-time view of the bridge.
type Status struct {
	State         string    `json:"state"`
	CurrentTask   string    `json:"current_task,omitempty"`
	AwaitingInput bool      `json:"awaiting_input"`
	PendingTasks  int       `json:"pending_tasks"`
	PendingInputs int       `json:"pending_inputs"`
	Clients       int       `json:"clients"`
	Completed     int64     `json:"completed"`
	Failed        int64     `json:"failed"`
	StartedAt     time.Time `json:"started_at"`
	Uptime        string    `json:"uptime"`
}

// New wires a bridge from opts.
func New(opts Options) *Bridge {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	router := NewRouter()
	registry := NewRegistry(opts.OutboundBuffer)
	adapter := NewAdapter(registry, clock, opts.HumanName)

	return &Bridge{
		clock:      clock,
		started:    clock.Now(),
		router:     router,
		registry:   registry,
		redirector: NewRedirector(router, clock, opts.InputTimeout),
		adapter:    adapter,
		worker:     NewWorker(router.Tasks(), adapter, clock, opts.PollInterval),
	}
}

// Route accepts one inbound client message.
func (b *Bridge) Route(text string) Destination {
	dest := b.router.Route(text)
	logger.Info("routed client message", "to", dest.String(), "text", truncate(text, 120))
	return dest
}

// RequestInput is the engine's human-input callback.
func (b *Bridge) RequestInput(ctx context.Context, prompt string, token *engine.CancellationToken) (string, error) {
	return b.redirector.RequestInput(ctx, prompt, token)
}

// Emit broadcasts a single event outside of any task, e.g. a transport notice.
func (b *Bridge) Emit(ctx context.Context, ev engine.Event) bool {
	return b.adapter.Emit(ctx, ev)
}

// Run executes tasks with eng until ctx is done.
func (b *Bridge) Run(ctx context.Context, eng engine.Engine) {
	b.worker.Run(ctx, eng)
}

// Registry exposes the connection registry to transports.
func (b *Bridge) Registry() *Registry { return b.registry }

// Router exposes the router.
func (b *Bridge) Router() *Router { return b.router }

// Worker exposes the task worker.
func (b *Bridge) Worker() *Worker { return b.worker }

// Status returns a snapshot of the bridge.
func (b *Bridge) Status() Status {
	return Status{
		State:         b.worker.State().String(),
		CurrentTask:   truncate(b.worker.CurrentTask(), 120),
		AwaitingInput: b.router.AwaitingInput(),
		PendingTasks:  b.router.Tasks().Len(),
		PendingInputs: b.router.Inputs().Len(),
		Clients:       b.registry.Len(),
		Completed:     b.worker.Completed(),
		Failed:        b.worker.Failed(),
		StartedAt:     b.started,
		Uptime:        b.clock.Since(b.started).Round(time.Second).String(),
	}
}

// Close disconnects every registered client.
func (b *Bridge) Close() {
	b.registry.Close()
}
