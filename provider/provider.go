// Package provider defines the LLM provider interface and common types.
package provider

import (
	"context"
	"sort"
	"strings"
)

// Provider is the interface for LLM providers.
type Provider interface {
	// Chat sends a chat completion request and returns the response.
	Chat(ctx context.Context, req *Request) (*Response, error)
}

// Request represents a chat completion request.
type Request struct {
	Messages []Message
	Tools    []ToolDef
}

// Message represents a chat message in OpenAI format (internal canonical format).
type Message struct {
	Role       string     `json:"role"`                   // system, user, assistant, tool
	Content    string     `json:"content,omitempty"`      // text content
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // for assistant messages
	ToolCallID string     `json:"tool_call_id,omitempty"` // for tool result messages
	Name       string     `json:"name,omitempty"`         // tool name for tool results
}

// ToolCall represents a tool invocation by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"` // "function"
	Function FunctionCall `json:"function"`
}

// FunctionCall represents a function call within a tool call.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// Response represents a chat completion response.
type Response struct {
	Content   string     // final text response
	ToolCalls []ToolCall // tool calls (if any)
	Usage     Usage      // token usage
}

// HasToolCalls returns true if the response contains tool calls.
func (r *Response) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// Usage represents token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ToolDef defines a tool for the LLM (OpenAI function calling format).
type ToolDef struct {
	Type     string      `json:"type"` // "function"
	Function FunctionDef `json:"function"`
}

// FunctionDef defines a function that the model can call.
type FunctionDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// Constructor builds a provider for one model.
type Constructor func(apiKey, apiBase, model string, maxTokens int, temperature float64) Provider

type registration struct {
	Constructor  Constructor
	DefaultModel string
}

var providerRegistry = map[string]registration{
	"openai": {
		Constructor: func(apiKey, apiBase, model string, maxTokens int, temperature float64) Provider {
			return NewOpenAIProvider(apiKey, apiBase, model, maxTokens, temperature)
		},
		DefaultModel: "gpt-4o",
	},
	"openrouter": {
		Constructor: func(apiKey, apiBase, model string, maxTokens int, temperature float64) Provider {
			return NewOpenRouterProvider(apiKey, apiBase, model, maxTokens, temperature)
		},
		DefaultModel: "openai/gpt-4o",
	},
	"anthropic": {
		Constructor: func(apiKey, apiBase, model string, maxTokens int, temperature float64) Provider {
			return NewAnthropicProvider(apiKey, apiBase, model, maxTokens, temperature)
		},
		DefaultModel: "claude-sonnet-4-5",
	},
}

// SupportedProviders returns all supported provider names in sorted order.
func SupportedProviders() []string {
	names := make([]string, 0, len(providerRegistry))
	for name := range providerRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultModelFor returns the model used when a participant names a provider
// but no model. Empty for unknown providers.
func DefaultModelFor(providerName string) string {
	return providerRegistry[providerName].DefaultModel
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// AssistantMessageWithTools creates an assistant message with tool calls.
func AssistantMessageWithTools(content string, toolCalls []ToolCall) Message {
	return Message{Role: "assistant", Content: content, ToolCalls: toolCalls}
}

// ToolResultMessage creates a tool result message.
func ToolResultMessage(toolCallID, name, content string) Message {
	return Message{Role: "tool", ToolCallID: toolCallID, Name: name, Content: content}
}

func normalizeSDKBaseURL(raw, defaultBase string, endpointSuffixes ...string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return defaultBase
	}

	base = strings.TrimRight(base, "/")
	for _, suffix := range endpointSuffixes {
		s := strings.TrimRight(strings.TrimSpace(suffix), "/")
		if s == "" {
			continue
		}
		if strings.HasSuffix(base, s) {
			base = strings.TrimSuffix(base, s)
			base = strings.TrimRight(base, "/")
			break
		}
	}

	if base == "" {
		return defaultBase
	}
	return base
}
