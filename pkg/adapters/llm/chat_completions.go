//go:build !nogroq || !nomistral

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aescanero/climeai/pkg/domain"
	"github.com/aescanero/climeai/pkg/ports"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ChatCompletionsClient calls an OpenAI-compatible /chat/completions
// endpoint through the openai-go SDK. Groq and Mistral both speak this wire
// format.
type ChatCompletionsClient struct {
	transport
	client openai.Client
	model  string
	tools  []domain.Tool
}

// NewChatCompletionsClient creates a client for provider at baseURL.
// opts.BaseURL, when set, takes precedence over baseURL.
func NewChatCompletionsClient(provider, baseURL, apiKey, model string, opts ClientOptions) (*ChatCompletionsClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: API key is required", provider)
	}
	if model == "" {
		return nil, fmt.Errorf("%s: model is required", provider)
	}

	t := newTransport(provider, baseURL, opts)
	return &ChatCompletionsClient{
		transport: t,
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(t.baseURL),
			option.WithHTTPClient(t.client),
			option.WithMaxRetries(0),
		),
		model: model,
	}, nil
}

// Provider returns the provider name
func (c *ChatCompletionsClient) Provider() string { return c.provider }

// Model returns the model identifier
func (c *ChatCompletionsClient) Model() string { return c.model }

// Tools returns the tools bound to this client
func (c *ChatCompletionsClient) Tools() []domain.Tool { return copyTools(c.tools) }

// BindTools returns a copy of the client with tools exposed to the model
func (c *ChatCompletionsClient) BindTools(tools []domain.Tool) ports.LLMClient {
	bound := *c
	bound.tools = copyTools(tools)
	return &bound
}

// Invoke sends the conversation and returns the first choice
func (c *ChatCompletionsClient) Invoke(ctx context.Context, messages []domain.Message) (resp *domain.Response, err error) {
	start := time.Now()
	defer func() { c.observe(c.model, start, resp, err) }()

	params, err := c.buildRequest(messages)
	if err != nil {
		return nil, err
	}

	out, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, c.providerError(err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("%s: response has no choices", c.provider)
	}

	msg := out.Choices[0].Message
	resp = &domain.Response{
		Content:  msg.Content,
		Provider: c.provider,
		Model:    c.model,
		Usage: domain.Usage{
			InputTokens:  int(out.Usage.PromptTokens),
			OutputTokens: int(out.Usage.CompletionTokens),
		},
	}

	for _, tc := range msg.ToolCalls {
		args := map[string]interface{}{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("%s: invalid arguments for tool %s: %w", c.provider, tc.Function.Name, err)
			}
		}
		resp.ToolCalls = append(resp.ToolCalls, domain.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	return resp, nil
}

func (c *ChatCompletionsClient) buildRequest(messages []domain.Message) (openai.ChatCompletionNewParams, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
	}

	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case domain.RoleAssistant:
			msg := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" || len(m.ToolCalls) == 0 {
				msg.Content.OfString = openai.String(m.Content)
			}
			for _, call := range m.ToolCalls {
				args, err := json.Marshal(call.Arguments)
				if err != nil {
					return openai.ChatCompletionNewParams{}, fmt.Errorf("%s: failed to marshal tool arguments: %w", c.provider, err)
				}
				msg.ToolCalls = append(msg.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: call.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.Name,
						Arguments: string(args),
					},
				})
			}
			params.Messages = append(params.Messages, openai.ChatCompletionMessageParamUnion{OfAssistant: &msg})
		case domain.RoleTool:
			msg := openai.ChatCompletionToolMessageParam{ToolCallID: m.ToolCallID}
			msg.Content.OfString = openai.String(m.Content)
			// Mistral matches results to calls by name as well as id
			if m.Name != "" {
				msg.SetExtraFields(map[string]any{"name": m.Name})
			}
			params.Messages = append(params.Messages, openai.ChatCompletionMessageParamUnion{OfTool: &msg})
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	for _, t := range c.tools {
		fn := openai.FunctionDefinitionParam{
			Name:       t.Name,
			Parameters: openai.FunctionParameters(toolParameters(t)),
		}
		if t.Description != "" {
			fn.Description = openai.String(t.Description)
		}
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{Function: fn})
	}

	return params, nil
}

func (c *ChatCompletionsClient) providerError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &APIError{
			Provider:   c.provider,
			StatusCode: apiErr.StatusCode,
			Body:       apiErr.Message,
		}
	}
	return fmt.Errorf("%s: request failed: %w", c.provider, err)
}
