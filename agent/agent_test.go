package agent

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamsorenl/Autogen-Chat-Demo/provider"
	"github.com/iamsorenl/Autogen-Chat-Demo/tools"
)

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry("")

	defs := r.List()
	require.Len(t, defs, 3)
	assert.Equal(t, "ArtistAgent", defs[0].Name)
	assert.Equal(t, "MediaHandlerAgent", defs[1].Name)
	assert.Equal(t, "ScientistAgent", defs[2].Name)

	sci, ok := r.Get("ScientistAgent")
	require.True(t, ok)
	assert.Equal(t, []string{"web_search", "web_fetch"}, sci.Tools)
	assert.Contains(t, sci.Description, "scientist")
	assert.Empty(t, sci.Path)
}

func TestRegistryDirectoryOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "artist.md"), []byte(`---
name: ArtistAgent
description: Paints only in blue.
provider: anthropic
model: claude-sonnet-4-5
---
Only blue.
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Poet.md"), []byte("Write haiku."), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Empty.md"), []byte("---\nname: Empty\n---\n"), 0644))

	r := NewRegistry(dir)

	artist, ok := r.Get("ArtistAgent")
	require.True(t, ok)
	assert.Equal(t, "Paints only in blue.", artist.Description)
	assert.Equal(t, "anthropic", artist.Provider)
	assert.Equal(t, "Only blue.\n", artist.SystemMessage)

	poet, ok := r.Get("Poet")
	require.True(t, ok)
	assert.Equal(t, "Write haiku.", poet.SystemMessage)

	_, ok = r.Get("Empty")
	assert.False(t, ok)
	assert.Len(t, r.List(), 4)
}

func TestWriteBuiltins(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "agents")

	written, err := WriteBuiltins(dir, false)
	require.NoError(t, err)
	assert.Len(t, written, 3)

	written, err = WriteBuiltins(dir, false)
	require.NoError(t, err)
	assert.Empty(t, written)

	r := NewRegistry(dir)
	def, ok := r.Get("MediaHandlerAgent")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "MediaHandlerAgent.md"), def.Path)
}

func TestDefPrompt(t *testing.T) {
	def := &Def{SystemMessage: "Tools: {{TOOLS}}\nAt {{TIME}}\n"}
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, "Tools: web_search\nAt 2026-03-02 09:30 (Monday)", def.Prompt([]string{"web_search"}, now))
	assert.Equal(t, "Tools: none\nAt 2026-03-02 09:30 (Monday)", def.Prompt(nil, now))
}

func TestParseTemplateWithoutHeader(t *testing.T) {
	meta, body, hasHeader, err := parseTemplate("plain body")
	require.NoError(t, err)
	assert.False(t, hasHeader)
	assert.Empty(t, meta.Name)
	assert.Equal(t, "plain body", body)

	_, _, _, err = parseTemplate("---\nname: [broken\n---\nbody")
	assert.Error(t, err)
}

// scriptedProvider returns canned responses in order.
type scriptedProvider struct {
	responses []*provider.Response
	requests  []*provider.Request
}

func (p *scriptedProvider) Chat(_ context.Context, req *provider.Request) (*provider.Response, error) {
	p.requests = append(p.requests, req)
	if len(p.responses) == 0 {
		return &provider.Response{Content: "done"}, nil
	}
	resp := p.responses[0]
	p.responses = p.responses[1:]
	return resp, nil
}

type echoTool struct{}

func (echoTool) Def() provider.ToolDef {
	return provider.ToolDef{Type: "function", Function: provider.FunctionDef{Name: "echo"}}
}

func (echoTool) Run(_ context.Context, args json.RawMessage) string {
	return "echo:" + string(args)
}

func TestRunnerToolLoop(t *testing.T) {
	reg := tools.NewRegistry()
	reg.Register(echoTool{})
	p := &scriptedProvider{responses: []*provider.Response{
		{ToolCalls: []provider.ToolCall{{ID: "1", Type: "function", Function: provider.FunctionCall{Name: "echo", Arguments: `{"x":1}`}}}},
		{Content: "final answer"},
	}}

	var observed []string
	r := NewRunner(p, reg, 4)
	out, err := r.Run(context.Background(), []provider.Message{provider.UserMessage("go")},
		func(call provider.ToolCall, result string, done bool) {
			if done {
				observed = append(observed, "result:"+result)
			} else {
				observed = append(observed, "call:"+call.Function.Name)
			}
		})
	require.NoError(t, err)

	assert.Equal(t, "final answer", out)
	assert.Equal(t, []string{"call:echo", `result:echo:{"x":1}`}, observed)
	require.Len(t, p.requests, 2)
	assert.Len(t, p.requests[1].Messages, 3)
	assert.Equal(t, []string{"echo"}, r.ToolNames())
}

func TestRunnerMaxIterations(t *testing.T) {
	loop := &provider.Response{ToolCalls: []provider.ToolCall{{ID: "1", Function: provider.FunctionCall{Name: "echo"}}}}
	p := &scriptedProvider{responses: []*provider.Response{loop, loop, loop}}
	reg := tools.NewRegistry()
	reg.Register(echoTool{})

	_, err := NewRunner(p, reg, 2).Run(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrMaxIterations)
}

func TestRunnerWithoutToolsSendsNoDefs(t *testing.T) {
	p := &scriptedProvider{}
	out, err := NewRunner(p, nil, 0).Run(context.Background(), []provider.Message{provider.UserMessage("hi")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Nil(t, p.requests[0].Tools)
}
