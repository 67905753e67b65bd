package provider

import (
	"context"
	"fmt"
	"time"

	openai "github.com/openai/openai-go/v3"
	oaioption "github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/iamsorenl/Autogen-Chat-Demo/internal/runtimecfg"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
)

const (
	openAIAPIBase     = "https://api.openai.com/v1"
	openRouterAPIBase = "https://openrouter.ai/api/v1"
)

// OpenAIProvider implements the Provider interface for any OpenAI-compatible
// chat completions endpoint.
type OpenAIProvider struct {
	name        string
	apiBase     string
	model       string
	maxTokens   int
	temperature float64
	client      openai.Client
}

// NewOpenAIProvider creates a provider for the OpenAI API.
func NewOpenAIProvider(apiKey, apiBase, model string, maxTokens int, temperature float64) *OpenAIProvider {
	return newOpenAICompatible("openai", apiKey, normalizeSDKBaseURL(apiBase, openAIAPIBase, "/chat/completions"),
		model, maxTokens, temperature)
}

// NewOpenRouterProvider creates a provider for OpenRouter.
func NewOpenRouterProvider(apiKey, apiBase, model string, maxTokens int, temperature float64) *OpenAIProvider {
	return newOpenAICompatible("openrouter", apiKey, normalizeSDKBaseURL(apiBase, openRouterAPIBase, "/chat/completions"),
		model, maxTokens, temperature,
		oaioption.WithHeader("HTTP-Referer", "https://github.com/iamsorenl/Autogen-Chat-Demo"),
		oaioption.WithHeader("X-Title", "chatbridge"),
	)
}

func newOpenAICompatible(name, apiKey, baseURL, model string, maxTokens int, temperature float64, extra ...oaioption.RequestOption) *OpenAIProvider {
	opts := []oaioption.RequestOption{
		oaioption.WithAPIKey(apiKey),
		oaioption.WithBaseURL(baseURL),
		oaioption.WithMaxRetries(runtimecfg.ProviderSDKMaxRetries),
	}
	opts = append(opts, extra...)

	return &OpenAIProvider{
		name:        name,
		apiBase:     baseURL,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		client:      openai.NewClient(opts...),
	}
}

func openAIInputChars(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += len(m.Role)
		total += len(m.Content)
	}
	return total
}

func toOpenAIChatMessages(messages []Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case "system":
			result = append(result, openai.SystemMessage(m.Content))
		case "user":
			result = append(result, openai.UserMessage(m.Content))
		case "tool":
			result = append(result, openai.ToolMessage(m.Content, m.ToolCallID))
		case "assistant":
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				assistant.Content.OfString = openai.String(m.Content)
			}

			if len(m.ToolCalls) > 0 {
				assistant.ToolCalls = make([]openai.ChatCompletionMessageToolCallUnionParam, 0, len(m.ToolCalls))
				for _, tc := range m.ToolCalls {
					if tc.Type != "" && tc.Type != "function" {
						return nil, fmt.Errorf("unsupported assistant tool call type: %s", tc.Type)
					}
					assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
						OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
							ID: tc.ID,
							Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
								Name:      tc.Function.Name,
								Arguments: tc.Function.Arguments,
							},
						},
					})
				}
			}

			result = append(result, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		default:
			return nil, fmt.Errorf("unsupported message role: %s", m.Role)
		}
	}

	return result, nil
}

func toOpenAIChatTools(tools []ToolDef) []openai.ChatCompletionToolUnionParam {
	result := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		functionDef := shared.FunctionDefinitionParam{
			Name:       t.Function.Name,
			Parameters: shared.FunctionParameters(t.Function.Parameters),
		}
		if t.Function.Description != "" {
			functionDef.Description = openai.String(t.Function.Description)
		}

		result = append(result, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{Function: functionDef},
		})
	}
	return result
}

func fromOpenAIChatToolCalls(calls []openai.ChatCompletionMessageToolCallUnion) []ToolCall {
	result := make([]ToolCall, 0, len(calls))
	for _, call := range calls {
		if call.Type != "function" {
			continue
		}
		result = append(result, ToolCall{
			ID:   call.ID,
			Type: "function",
			Function: FunctionCall{
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			},
		})
	}
	return result
}

// Chat sends a chat completion request.
func (p *OpenAIProvider) Chat(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()

	messages, err := toOpenAIChatMessages(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}

	logger.Debug(
		"chat completion request",
		"provider", p.name,
		"model", p.model,
		"toolCount", len(req.Tools),
		"inputChars", openAIInputChars(req.Messages),
	)

	chatReq := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}
	if len(req.Tools) > 0 {
		chatReq.Tools = toOpenAIChatTools(req.Tools)
	}
	if p.maxTokens > 0 {
		chatReq.MaxTokens = openai.Int(int64(p.maxTokens))
	}
	if p.temperature != 0 {
		chatReq.Temperature = openai.Float(p.temperature)
	}

	chatResp, err := p.client.Chat.Completions.New(ctx, chatReq)
	if err != nil {
		logger.Error("chat completion request failed", "provider", p.name, "err", err)
		return nil, fmt.Errorf("%s request failed: %w", p.name, err)
	}

	if len(chatResp.Choices) == 0 {
		logger.Error("chat completion returned no choices", "provider", p.name)
		return nil, fmt.Errorf("%s: no choices in response", p.name)
	}

	choice := chatResp.Choices[0]
	toolCalls := fromOpenAIChatToolCalls(choice.Message.ToolCalls)

	logger.Debug(
		"chat completion response",
		"provider", p.name,
		"model", p.model,
		"finishReason", choice.FinishReason,
		"toolCallCount", len(toolCalls),
		"promptTokens", chatResp.Usage.PromptTokens,
		"completionTokens", chatResp.Usage.CompletionTokens,
		"totalTokens", chatResp.Usage.TotalTokens,
		"outputChars", len(choice.Message.Content),
		"latencyMs", time.Since(start).Milliseconds(),
	)

	return &Response{
		Content:   choice.Message.Content,
		ToolCalls: toolCalls,
		Usage: Usage{
			PromptTokens:     int(chatResp.Usage.PromptTokens),
			CompletionTokens: int(chatResp.Usage.CompletionTokens),
			TotalTokens:      int(chatResp.Usage.TotalTokens),
		},
	}, nil
}
