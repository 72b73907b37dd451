package llm

import (
	"context"
	"sync"

	"github.com/aescanero/climeai/pkg/domain"
)

const (
	// FakeProviderName identifies the fallback client
	FakeProviderName = "fake"

	// FakeModel is the model name reported by the fallback client
	FakeModel = "fake-list"

	// FakeResponse is the canned answer of the default fallback client
	FakeResponse = "This is a test response from a fake LLM."
)

// FakeClient answers every invocation with its configured responses in turn,
// ignoring the input. It does not implement ToolBinder.
type FakeClient struct {
	mu        sync.Mutex
	responses []string
	next      int
}

// NewFakeClient creates a fake client. Without responses it always returns
// FakeResponse.
func NewFakeClient(responses ...string) *FakeClient {
	if len(responses) == 0 {
		responses = []string{FakeResponse}
	}
	return &FakeClient{responses: responses}
}

// Invoke returns the next canned response
func (c *FakeClient) Invoke(ctx context.Context, messages []domain.Message) (*domain.Response, error) {
	c.mu.Lock()
	content := c.responses[c.next%len(c.responses)]
	c.next++
	c.mu.Unlock()

	return &domain.Response{
		Content:  content,
		Provider: FakeProviderName,
		Model:    FakeModel,
	}, nil
}

// Provider returns "fake"
func (c *FakeClient) Provider() string { return FakeProviderName }

// Model returns FakeModel
func (c *FakeClient) Model() string { return FakeModel }
