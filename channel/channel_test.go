package channel

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamsorenl/Autogen-Chat-Demo/bridge"
)

type stubChannel struct {
	name     string
	startErr error
	log      *[]string
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Start(context.Context) error {
	*s.log = append(*s.log, "start "+s.name)
	return s.startErr
}

func (s *stubChannel) Stop() error {
	*s.log = append(*s.log, "stop "+s.name)
	return nil
}

func TestManagerStartOrder(t *testing.T) {
	var log []string
	m := NewManager()
	for _, name := range []string{"cli", "zeta", "telegram", "web"} {
		m.Register(&stubChannel{name: name, log: &log})
	}
	m.Register(nil)

	require.NoError(t, m.StartAll(context.Background()))
	assert.Equal(t, []string{"start web", "start telegram", "start zeta", "start cli"}, log)
	assert.Equal(t, []string{"cli", "telegram", "web", "zeta"}, m.Names())

	_, ok := m.Get("web")
	assert.True(t, ok)
}

func TestManagerStartFailureStopsStarted(t *testing.T) {
	var log []string
	m := NewManager()
	m.Register(&stubChannel{name: "web", log: &log})
	m.Register(&stubChannel{name: "telegram", log: &log, startErr: errors.New("bad token")})

	err := m.StartAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram")
	assert.Equal(t, []string{"start web", "start telegram", "stop web"}, log)
}

func TestRenderEnvelope(t *testing.T) {
	assert.Equal(t, "[ArtistAgent] hi", RenderEnvelope(bridge.Envelope{Sender: "ArtistAgent", Text: "hi"}))
	assert.Equal(t, "[System] hi", RenderEnvelope(bridge.Envelope{Text: "hi"}))
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, SplitMessage("short", 10))

	text := strings.Repeat("a", 8) + "\n" + strings.Repeat("b", 8)
	assert.Equal(t, []string{strings.Repeat("a", 8) + "\n", strings.Repeat("b", 8)}, SplitMessage(text, 10))

	chunks := SplitMessage(strings.Repeat("é", 10), 5)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 5)
	}
	assert.Equal(t, strings.Repeat("é", 10), strings.Join(chunks, ""))
}
