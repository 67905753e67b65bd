package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamsorenl/Autogen-Chat-Demo/engine"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
)

// logBuffer collects log output from any goroutine.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// captureLogs sends the package logger to a buffer at level until the test ends.
func captureLogs(t *testing.T, level string) *logBuffer {
	t.Helper()
	buf := &logBuffer{}
	logger.SetOutput(buf, level)
	t.Cleanup(func() { logger.SetOutput(os.Stderr, "info") })
	return buf
}

// logGate blocks the first log line containing match until release is closed.
type logGate struct {
	match   []byte
	once    sync.Once
	reached chan struct{}
	release chan struct{}
}

func newLogGate(t *testing.T, match string) *logGate {
	t.Helper()
	g := &logGate{
		match:   []byte(match),
		reached: make(chan struct{}),
		release: make(chan struct{}),
	}
	logger.SetOutput(g, "info")
	t.Cleanup(func() {
		g.open()
		logger.SetOutput(os.Stderr, "info")
	})
	return g
}

func (g *logGate) Write(p []byte) (int, error) {
	if bytes.Contains(p, g.match) {
		g.once.Do(func() { close(g.reached) })
		<-g.release
	}
	return len(p), nil
}

func (g *logGate) open() {
	select {
	case <-g.release:
	default:
		close(g.release)
	}
}

// fakeConn records every payload it is sent.
type fakeConn struct {
	id    string
	err   error
	block chan struct{}

	mu  sync.Mutex
	got [][]byte
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: id} }

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(ctx context.Context, payload []byte) error {
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, payload)
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.got)
}

func (c *fakeConn) envelopes(t *testing.T) []Envelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Envelope, 0, len(c.got))
	for _, raw := range c.got {
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		out = append(out, env)
	}
	return out
}

var errSendFailed = errors.New("send failed")

// sliceStream yields events in order.
func sliceStream(events ...engine.Event) iter.Seq2[engine.Event, error] {
	return func(yield func(engine.Event, error) bool) {
		for _, ev := range events {
			if !yield(ev, nil) {
				return
			}
		}
	}
}

// failingStream yields events, then err.
func failingStream(err error, events ...engine.Event) iter.Seq2[engine.Event, error] {
	return func(yield func(engine.Event, error) bool) {
		for _, ev := range events {
			if !yield(ev, nil) {
				return
			}
		}
		yield(nil, err)
	}
}
