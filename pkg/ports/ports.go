package ports

import (
	"context"
	"time"

	"github.com/aescanero/climeai/pkg/domain"
)

// LLMClient generates a response for a conversation
type LLMClient interface {
	Invoke(ctx context.Context, messages []domain.Message) (*domain.Response, error)

	// Provider returns the stable provider name ("gemini", "groq", "mistral", "fake")
	Provider() string

	// Model returns the model identifier used for requests
	Model() string
}

// ToolBinder is implemented by clients that can expose tools to the model.
// BindTools returns a new client; the receiver is left unchanged.
type ToolBinder interface {
	BindTools(tools []domain.Tool) LLMClient
}

// ClientSelector picks the model client for a request. Select is used for
// calls that will reach the model; Peek makes the same choice for callers
// that only report it.
type ClientSelector interface {
	Select(tools []domain.Tool) LLMClient
	Peek(tools []domain.Tool) LLMClient
}

// ConversationStore persists conversation history per session
type ConversationStore interface {
	Append(ctx context.Context, sessionID string, messages ...domain.Message) error
	History(ctx context.Context, sessionID string) ([]domain.Message, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}

// EventHandler handles an event received from the bus
type EventHandler func(ctx context.Context, event domain.Event) error

// EventBus publishes and delivers agent events
type EventBus interface {
	Publish(ctx context.Context, topic string, event domain.Event) error
	Subscribe(ctx context.Context, topic string, handler EventHandler) error
	Close() error
}

// MetricsCollector records runtime metrics
type MetricsCollector interface {
	IncProviderSelected(provider string)
	IncLLMCalls(provider, model, status string)
	ObserveLLMLatency(model string, duration time.Duration)
	IncLLMTokens(model, tokenType string, count int)
	IncToolExecutions(tool, status string)
	ObserveToolDuration(tool string, duration time.Duration)
	IncChatRequests(status string)
	SetQueueDepth(queue string, depth int)
	RecordWorkerPoolStatus(idle, busy, stopped int)
}
