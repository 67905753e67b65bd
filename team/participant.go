package team

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/iamsorenl/Autogen-Chat-Demo/agent"
	"github.com/iamsorenl/Autogen-Chat-Demo/engine"
	"github.com/iamsorenl/Autogen-Chat-Demo/provider"
)

// Emit forwards an intermediate event to the stream consumer. It returns
// false once the consumer has stopped listening.
type Emit func(ev engine.Event) bool

// Participant is one member of the group chat.
type Participant interface {
	Name() string
	Description() string
	// Respond produces the participant's next message for the transcript.
	Respond(ctx context.Context, transcript []engine.TextMessage, emit Emit) (engine.TextMessage, error)
}

// UserProxy represents the human. Its turn asks the InputFunc for a reply.
type UserProxy struct {
	name        string
	description string
	input       engine.InputFunc
}

// NewUserProxy creates the human participant. An empty name selects
// engine.UserProxyName.
func NewUserProxy(name string, input engine.InputFunc) *UserProxy {
	if name == "" {
		name = engine.UserProxyName
	}
	return &UserProxy{
		name:        name,
		description: "Human user who provides additional information and feedback via the chat interface",
		input:       input,
	}
}

func (u *UserProxy) Name() string        { return u.name }
func (u *UserProxy) Description() string { return u.description }

// Respond uses the latest message as the prompt shown to the human.
func (u *UserProxy) Respond(ctx context.Context, transcript []engine.TextMessage, _ Emit) (engine.TextMessage, error) {
	prompt := "Enter your response: "
	if n := len(transcript); n > 0 {
		prompt = transcript[n-1].Body
	}
	text, err := u.input(ctx, prompt, nil)
	if err != nil {
		return engine.TextMessage{}, err
	}
	return engine.TextMessage{From: u.name, Body: text}, nil
}

// Assistant is a model-backed participant defined by an agent template.
type Assistant struct {
	def    *agent.Def
	runner *agent.Runner
	clock  clockwork.Clock
}

// NewAssistant creates an assistant from a definition and its runner.
func NewAssistant(def *agent.Def, runner *agent.Runner, clock clockwork.Clock) *Assistant {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Assistant{def: def, runner: runner, clock: clock}
}

func (a *Assistant) Name() string        { return a.def.Name }
func (a *Assistant) Description() string { return a.def.Description }

// Respond runs the assistant's tool loop over the transcript, emitting a
// ToolCallEvent and ToolResultEvent for every tool it invokes.
func (a *Assistant) Respond(ctx context.Context, transcript []engine.TextMessage, emit Emit) (engine.TextMessage, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages := []provider.Message{
		provider.SystemMessage(a.def.Prompt(a.runner.ToolNames(), a.clock.Now())),
		provider.UserMessage(renderTranscript(transcript, a.def.Name)),
	}

	observe := func(call provider.ToolCall, result string, done bool) {
		var ev engine.Event
		if done {
			ev = engine.ToolResultEvent{From: a.def.Name, Tool: call.Function.Name, Result: result}
		} else {
			ev = engine.ToolCallEvent{From: a.def.Name, Tool: call.Function.Name, Arguments: call.Function.Arguments}
		}
		if emit != nil && !emit(ev) {
			cancel()
		}
	}

	text, err := a.runner.Run(ctx, messages, observe)
	if err != nil {
		return engine.TextMessage{}, err
	}
	return engine.TextMessage{From: a.def.Name, Body: strings.TrimSpace(text)}, nil
}

// renderTranscript flattens the conversation into a single user prompt.
func renderTranscript(transcript []engine.TextMessage, self string) string {
	var sb strings.Builder
	sb.WriteString("Conversation so far:\n\n")
	for _, m := range transcript {
		fmt.Fprintf(&sb, "[%s]\n%s\n\n", m.From, m.Body)
	}
	fmt.Fprintf(&sb, "You are %s. Write your next message to the group. Reply with the message text only.", self)
	return sb.String()
}
