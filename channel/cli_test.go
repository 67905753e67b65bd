package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamsorenl/Autogen-Chat-Demo/bridge"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestCLIRoutesLinesUntilExit(t *testing.T) {
	b := bridge.New(bridge.Options{})
	out := &syncBuffer{}
	var exited atomic.Bool

	cli := NewCLIChannel(b, CLIConfig{
		In:     strings.NewReader("first task\n\n  second task  \nexit\nignored\n"),
		Out:    out,
		OnExit: func() { exited.Store(true) },
	})
	require.NoError(t, cli.Start(context.Background()))
	t.Cleanup(func() { _ = cli.Stop() })

	require.Eventually(t, exited.Load, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, b.Router().Tasks().Len())
	assert.Equal(t, []string{CLIConnID}, b.Registry().IDs())
	assert.Contains(t, out.String(), "Goodbye!")

	require.NoError(t, cli.Stop())
	assert.Zero(t, b.Registry().Len())
}

func TestConsoleConnPrintsEnvelope(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	out := &syncBuffer{}
	cli := NewCLIChannel(bridge.New(bridge.Options{}), CLIConfig{In: strings.NewReader(""), Out: out})

	payload, err := json.Marshal(bridge.Envelope{Sender: "ScientistAgent", Text: "results"})
	require.NoError(t, err)
	require.NoError(t, cli.conn.Send(context.Background(), payload))
	assert.Contains(t, out.String(), "[ScientistAgent] results")

	assert.Error(t, cli.conn.Send(context.Background(), []byte("nope")))
}
