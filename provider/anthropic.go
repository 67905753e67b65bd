package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/iamsorenl/Autogen-Chat-Demo/internal/runtimecfg"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
)

const anthropicAPIBase = "https://api.anthropic.com"

// AnthropicProvider serves participants backed by Claude models.
type AnthropicProvider struct {
	model       string
	maxTokens   int64
	temperature float64
	client      anthropic.Client
}

// NewAnthropicProvider creates a provider for model. A non-positive maxTokens
// selects runtimecfg.AnthropicFallbackMaxTokens, since the Messages API
// requires an explicit limit.
func NewAnthropicProvider(apiKey, apiBase, model string, maxTokens int, temperature float64) *AnthropicProvider {
	if maxTokens <= 0 {
		maxTokens = runtimecfg.AnthropicFallbackMaxTokens
	}
	return &AnthropicProvider{
		model:       model,
		maxTokens:   int64(maxTokens),
		temperature: temperature,
		client: anthropic.NewClient(
			aoption.WithAPIKey(apiKey),
			aoption.WithBaseURL(normalizeSDKBaseURL(apiBase, anthropicAPIBase, "/v1/messages")),
			aoption.WithMaxRetries(runtimecfg.ProviderSDKMaxRetries),
		),
	}
}

// Chat runs one Messages API call for a participant turn or tool iteration.
func (p *AnthropicProvider) Chat(ctx context.Context, req *Request) (*Response, error) {
	params, err := p.params(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		logger.Error("anthropic request failed", "model", p.model, "err", err)
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	resp := fromAnthropic(msg)
	logger.Debug("anthropic response",
		"model", p.model,
		"stopReason", msg.StopReason,
		"toolCalls", len(resp.ToolCalls),
		"totalTokens", resp.Usage.TotalTokens,
		"latencyMs", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func (p *AnthropicProvider) params(req *Request) (anthropic.MessageNewParams, error) {
	system, messages, err := toAnthropicMessages(req.Messages)
	if err != nil {
		return anthropic.MessageNewParams{}, fmt.Errorf("failed to convert messages: %w", err)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages:  messages,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if p.temperature != 0 {
		params.Temperature = anthropic.Float(p.temperature)
	}
	for _, t := range req.Tools {
		params.Tools = append(params.Tools, toAnthropicTool(t))
	}
	return params, nil
}

func fromAnthropic(msg *anthropic.Message) *Response {
	resp := &Response{
		Usage: Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}

	var text []string
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			if block.Text != "" {
				text = append(text, block.Text)
			}
		case "tool_use":
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{
				ID:       block.ID,
				Type:     "function",
				Function: FunctionCall{Name: block.Name, Arguments: string(block.Input)},
			})
		}
	}
	resp.Content = strings.Join(text, "\n")
	return resp
}

// toAnthropicTool maps a JSON-schema tool definition onto the SDK's input
// schema. Keys other than properties and required travel as extra fields.
func toAnthropicTool(t ToolDef) anthropic.ToolUnionParam {
	schema := anthropic.ToolInputSchemaParam{ExtraFields: map[string]any{}}
	for k, v := range t.Function.Parameters {
		switch k {
		case "type":
		case "properties":
			schema.Properties = v
		case "required":
			schema.Required = requiredNames(v)
		default:
			schema.ExtraFields[k] = v
		}
	}

	tool := anthropic.ToolParam{Name: t.Function.Name, InputSchema: schema}
	if t.Function.Description != "" {
		tool.Description = anthropic.String(t.Function.Description)
	}
	return anthropic.ToolUnionParam{OfTool: &tool}
}

func requiredNames(v any) []string {
	if names, ok := v.([]string); ok {
		return names
	}
	items, _ := v.([]any)
	names := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			names = append(names, s)
		}
	}
	return names
}

// toAnthropicMessages splits out the system prompt and folds consecutive tool
// results into the single user message the Messages API expects after a
// tool_use turn.
func toAnthropicMessages(messages []Message) (string, []anthropic.MessageParam, error) {
	var (
		system  string
		out     = make([]anthropic.MessageParam, 0, len(messages))
		results []anthropic.ContentBlockParamUnion
	)
	flush := func() {
		if len(results) > 0 {
			out = append(out, anthropic.NewUserMessage(results...))
			results = nil
		}
	}

	for _, m := range messages {
		if m.Role != "tool" {
			flush()
		}
		switch m.Role {
		case "system":
			system = m.Content
		case "user":
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case "assistant":
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				blocks = append(blocks, anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{
					ID:    tc.ID,
					Name:  tc.Function.Name,
					Input: parseFunctionArguments(tc.Function.Arguments),
				}})
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		case "tool":
			results = append(results, anthropic.ContentBlockParamUnion{OfToolResult: &anthropic.ToolResultBlockParam{
				ToolUseID: m.ToolCallID,
				Content: []anthropic.ToolResultBlockParamContentUnion{{
					OfText: &anthropic.TextBlockParam{Text: m.Content},
				}},
			}})
		default:
			return "", nil, fmt.Errorf("unsupported message role: %s", m.Role)
		}
	}
	flush()
	return system, out, nil
}

// parseFunctionArguments decodes tool arguments for a tool_use block. Text
// that is not JSON is passed through unchanged.
func parseFunctionArguments(arguments string) any {
	if strings.TrimSpace(arguments) == "" {
		return map[string]any{}
	}
	var parsed any
	if err := json.Unmarshal([]byte(arguments), &parsed); err != nil {
		return arguments
	}
	return parsed
}
