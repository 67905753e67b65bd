package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/iamsorenl/Autogen-Chat-Demo/engine"
	"github.com/iamsorenl/Autogen-Chat-Demo/internal/runtimecfg"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
)

// Redirector satisfies the engine's human-input contract by waiting on the
// router's input queue instead of a terminal.
type Redirector struct {
	router  *Router
	clock   clockwork.Clock
	timeout time.Duration
}

// NewRedirector creates a redirector. A non-positive timeout selects the default.
func NewRedirector(router *Router, clock clockwork.Clock, timeout time.Duration) *Redirector {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if timeout <= 0 {
		timeout = runtimecfg.BridgeDefaultInputTimeout
	}
	return &Redirector{router: router, clock: clock, timeout: timeout}
}

// RequestInput blocks until a client supplies a response.
//
// Without a token the wait is bounded by the configured timeout and yields
// engine.Terminate when it expires. With a token there is no timeout; firing
// the token returns engine.ErrInputCancelled. In both modes a done ctx
// returns ctx.Err(). The router's awaiting flag is raised for the wait and
// lowered the moment a response is taken.
func (r *Redirector) RequestInput(ctx context.Context, prompt string, token *engine.CancellationToken) (string, error) {
	stale := r.router.beginInput()
	defer r.router.endInput()

	logger.Info("awaiting human input", "prompt", truncate(prompt, 120), "cancellable", token != nil)
	if stale > 0 {
		logger.Warn("discarded stale input responses", "count", stale)
	}

	if token == nil {
		return r.waitWithTimeout(ctx)
	}
	return r.waitCancellable(ctx, token)
}

func (r *Redirector) waitWithTimeout(ctx context.Context) (string, error) {
	timer := r.clock.NewTimer(r.timeout)
	defer timer.Stop()

	text, err := r.router.takeInput(ctx, timer.Chan())
	if errors.Is(err, ErrQueueTimeout) {
		logger.Warn("timed out waiting for human input", "timeout", r.timeout)
		return engine.Terminate, nil
	}
	if err != nil {
		logger.Info("input wait aborted", "err", err)
		return "", err
	}

	logger.Info("received human input", "text", truncate(text, 120))
	return text, nil
}

func (r *Redirector) waitCancellable(ctx context.Context, token *engine.CancellationToken) (string, error) {
	if token.Cancelled() {
		logger.Info("input request cancelled")
		return "", engine.ErrInputCancelled
	}

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-token.Done():
			cancel()
		case <-waitCtx.Done():
		}
	}()

	text, err := r.router.takeInput(waitCtx, nil)
	if err != nil {
		if ctx.Err() == nil && token.Cancelled() {
			logger.Info("input request cancelled")
			return "", engine.ErrInputCancelled
		}
		logger.Info("input wait aborted", "err", err)
		return "", err
	}

	logger.Info("received human input", "text", truncate(text, 120))
	return text, nil
}
