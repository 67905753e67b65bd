package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iamsorenl/Autogen-Chat-Demo/internal/runtimecfg"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
	"github.com/iamsorenl/Autogen-Chat-Demo/provider"
	"github.com/iamsorenl/Autogen-Chat-Demo/tools"
)

// ErrMaxIterations is returned when the model keeps calling tools past the limit.
var ErrMaxIterations = errors.New("max tool iterations exceeded")

// ToolObserver is notified around every tool invocation. result is empty on
// the call notification.
type ToolObserver func(call provider.ToolCall, result string, done bool)

// Runner drives one participant's turn: it calls the model, runs any tool
// calls it asks for, and repeats until the model answers in plain text.
type Runner struct {
	provider provider.Provider
	tools    *tools.Registry
	maxIter  int
}

// NewRunner creates a new Runner. A nil tool registry disables tools.
func NewRunner(p provider.Provider, t *tools.Registry, maxIter int) *Runner {
	if maxIter <= 0 {
		maxIter = runtimecfg.ToolMaxIterations
	}
	if t == nil {
		t = tools.NewRegistry()
	}
	return &Runner{
		provider: p,
		tools:    t,
		maxIter:  maxIter,
	}
}

// ToolNames returns the names of the tools this runner offers the model.
func (r *Runner) ToolNames() []string { return r.tools.Names() }

// Run executes the loop starting from messages and returns the final text.
func (r *Runner) Run(ctx context.Context, messages []provider.Message, observe ToolObserver) (string, error) {
	var toolDefs []provider.ToolDef
	if r.tools.Len() > 0 {
		toolDefs = r.tools.Defs()
	}

	for range r.maxIter {
		resp, err := r.provider.Chat(ctx, &provider.Request{
			Messages: messages,
			Tools:    toolDefs,
		})
		if err != nil {
			return "", fmt.Errorf("provider error: %w", err)
		}

		if !resp.HasToolCalls() {
			return resp.Content, nil
		}

		messages = append(messages, provider.AssistantMessageWithTools(resp.Content, resp.ToolCalls))

		for _, tc := range resp.ToolCalls {
			if observe != nil {
				observe(tc, "", false)
			}
			result := r.tools.Run(ctx, tc.Function.Name, json.RawMessage(argsOrEmpty(tc.Function.Arguments)))
			if strings.HasPrefix(result, "Error:") {
				logger.Warn("tool error", "tool", tc.Function.Name, "err", result)
			}
			if observe != nil {
				observe(tc, result, true)
			}
			messages = append(messages, provider.ToolResultMessage(tc.ID, tc.Function.Name, result))
		}
	}

	return "", ErrMaxIterations
}

func argsOrEmpty(args string) string {
	if strings.TrimSpace(args) == "" {
		return "{}"
	}
	return args
}
