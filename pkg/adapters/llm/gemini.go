//go:build !nogemini

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aescanero/climeai/pkg/domain"
	"github.com/aescanero/climeai/pkg/ports"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

const geminiAPIVersion = "v1beta"

// GeminiClient calls the Google Gemini generateContent API through the
// genai SDK
type GeminiClient struct {
	transport
	client *genai.Client
	model  string
	tools  []domain.Tool
}

// NewGeminiClient creates a Gemini client. No request is made until Invoke.
func NewGeminiClient(apiKey, model string, opts ClientOptions) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if model == "" {
		model = GeminiModel
	}

	t := newTransport(GeminiProviderName, DefaultGeminiBaseURL, opts)
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: t.client,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    t.baseURL,
			APIVersion: geminiAPIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return &GeminiClient{
		transport: t,
		client:    client,
		model:     model,
	}, nil
}

// Provider returns "gemini"
func (c *GeminiClient) Provider() string { return GeminiProviderName }

// Model returns the model identifier
func (c *GeminiClient) Model() string { return c.model }

// Tools returns the tools bound to this client
func (c *GeminiClient) Tools() []domain.Tool { return copyTools(c.tools) }

// BindTools returns a copy of the client with tools exposed to the model
func (c *GeminiClient) BindTools(tools []domain.Tool) ports.LLMClient {
	bound := *c
	bound.tools = copyTools(tools)
	return &bound
}

// Invoke sends the conversation to Gemini and returns the reply
func (c *GeminiClient) Invoke(ctx context.Context, messages []domain.Message) (resp *domain.Response, err error) {
	start := time.Now()
	defer func() { c.observe(c.model, start, resp, err) }()

	contents, config := c.buildRequest(messages)

	out, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, geminiError(err)
	}
	if len(out.Candidates) == 0 || out.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini: response has no candidates")
	}

	resp = &domain.Response{
		Provider: GeminiProviderName,
		Model:    c.model,
	}
	if out.UsageMetadata != nil {
		resp.Usage = domain.Usage{
			InputTokens:  int(out.UsageMetadata.PromptTokenCount),
			OutputTokens: int(out.UsageMetadata.CandidatesTokenCount),
		}
	}

	var text strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		text.WriteString(part.Text)
		if call := part.FunctionCall; call != nil {
			id := call.ID
			if id == "" {
				id = "call_" + uuid.NewString()
			}
			resp.ToolCalls = append(resp.ToolCalls, domain.ToolCall{
				ID:        id,
				Name:      call.Name,
				Arguments: call.Args,
			})
		}
	}
	resp.Content = text.String()

	return resp, nil
}

// buildRequest maps the conversation onto Gemini contents. System messages
// become the system instruction. Consecutive tool results are sent back in a
// single user content, one functionResponse part per call, since Gemini
// expects as many responses in that turn as the model made calls.
func (c *GeminiClient) buildRequest(messages []domain.Message) ([]*genai.Content, *genai.GenerateContentConfig) {
	var contents []*genai.Content
	var system []*genai.Part
	var toolTurn *genai.Content

	for _, m := range messages {
		if m.Role != domain.RoleTool {
			toolTurn = nil
		}

		switch m.Role {
		case domain.RoleSystem:
			system = append(system, &genai.Part{Text: m.Content})
		case domain.RoleAssistant:
			content := &genai.Content{Role: genai.RoleModel}
			if m.Content != "" {
				content.Parts = append(content.Parts, &genai.Part{Text: m.Content})
			}
			for _, call := range m.ToolCalls {
				content.Parts = append(content.Parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{Name: call.Name, Args: call.Arguments},
				})
			}
			if len(content.Parts) > 0 {
				contents = append(contents, content)
			}
		case domain.RoleTool:
			part := &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					Name:     m.Name,
					Response: map[string]any{"content": m.Content},
				},
			}
			if toolTurn == nil {
				toolTurn = &genai.Content{Role: genai.RoleUser}
				contents = append(contents, toolTurn)
			}
			toolTurn.Parts = append(toolTurn.Parts, part)
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}

	config := &genai.GenerateContentConfig{}
	if len(system) > 0 {
		config.SystemInstruction = &genai.Content{Parts: system}
	}

	if len(c.tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, len(c.tools))
		for i, t := range c.tools {
			decls[i] = &genai.FunctionDeclaration{
				Name:                 t.Name,
				Description:          t.Description,
				ParametersJsonSchema: toolParameters(t),
			}
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	return contents, config
}

func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			Provider:   GeminiProviderName,
			StatusCode: apiErr.Code,
			Body:       apiErr.Message,
		}
	}
	return fmt.Errorf("gemini: request failed: %w", err)
}
