//go:build !nogemini && !nogroq && !nomistral

package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/aescanero/climeai/pkg/adapters/metrics/noop"
	"github.com/aescanero/climeai/pkg/domain"
	"github.com/aescanero/climeai/pkg/ports"
	"go.uber.org/zap/zaptest"
)

var testTools = []domain.Tool{
	{Name: "convert_temperature", Description: "converts temperatures"},
	{Name: "heat_index", Description: "computes the heat index"},
}

func allKeys() map[string]string {
	return map[string]string{
		"GOOGLE_API_KEY":  "google-key",
		"GROQ_API_KEY":    "groq-key",
		"MISTRAL_API_KEY": "mistral-key",
	}
}

func TestSelectFallsBackWithoutCredentials(t *testing.T) {
	environments := map[string]map[string]string{
		"empty":      {},
		"blank keys": {"GOOGLE_API_KEY": "", "GROQ_API_KEY": "", "MISTRAL_API_KEY": ""},
		"other vars": {"OPENAI_API_KEY": "sk-test"},
	}

	for name, environ := range environments {
		t.Run(name, func(t *testing.T) {
			s := NewSelector(WithEnvironment(environ), WithLogger(zaptest.NewLogger(t)))

			for _, tools := range [][]domain.Tool{nil, {}, testTools} {
				client := s.Select(tools)
				fake, ok := client.(*FakeClient)
				if !ok {
					t.Fatalf("expected *FakeClient, got %T", client)
				}
				if _, ok := client.(ports.ToolBinder); ok {
					t.Fatalf("fake client must not accept tools")
				}

				resp, err := fake.Invoke(context.Background(), []domain.Message{
					domain.NewMessage(domain.RoleUser, "anything at all"),
				})
				if err != nil {
					t.Fatalf("Invoke: %v", err)
				}
				if resp.Content != FakeResponse {
					t.Fatalf("expected canned response, got %q", resp.Content)
				}
			}
		})
	}
}

func TestSelectFallsBackWhenNoProviderCompiledIn(t *testing.T) {
	s := NewSelector(WithRegistry(NewRegistry()), WithEnvironment(allKeys()))

	if got := s.Select(testTools).Provider(); got != FakeProviderName {
		t.Fatalf("expected fake provider, got %s", got)
	}
}

func TestSelectPriorityOrder(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		want    string
	}{
		{"all providers", allKeys(), GeminiProviderName},
		{"gemini only", map[string]string{"GOOGLE_API_KEY": "k"}, GeminiProviderName},
		{"groq and mistral", map[string]string{"GROQ_API_KEY": "k", "MISTRAL_API_KEY": "k"}, GroqProviderName},
		{"gemini and mistral", map[string]string{"GOOGLE_API_KEY": "k", "MISTRAL_API_KEY": "k"}, GeminiProviderName},
		{"mistral only", map[string]string{"MISTRAL_API_KEY": "k"}, MistralProviderName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewSelector(WithEnvironment(tt.environ)).Select(nil)
			if client.Provider() != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, client.Provider())
			}
		})
	}
}

func TestSelectUsesFixedModels(t *testing.T) {
	want := map[string]string{
		GeminiProviderName:  "gemini-pro",
		GroqProviderName:    "llama3-70b-8192",
		MistralProviderName: "mistral-large-latest",
	}
	keys := map[string]string{
		GeminiProviderName:  "GOOGLE_API_KEY",
		GroqProviderName:    "GROQ_API_KEY",
		MistralProviderName: "MISTRAL_API_KEY",
	}

	for provider, model := range want {
		client := NewSelector(WithEnvironment(map[string]string{keys[provider]: "k"})).Select(nil)
		if client.Model() != model {
			t.Fatalf("%s: expected model %s, got %s", provider, model, client.Model())
		}
	}
}

func TestSelectSkipsProvidersNotCompiledIn(t *testing.T) {
	var groq, mistral ProviderFactory
	for _, p := range DefaultRegistry().Providers() {
		switch p.Name {
		case GroqProviderName:
			groq = p
		case MistralProviderName:
			mistral = p
		}
	}

	registry := NewRegistry(mistral, groq)
	client := NewSelector(WithRegistry(registry), WithEnvironment(allKeys())).Select(nil)

	if client.Provider() != GroqProviderName {
		t.Fatalf("expected groq when gemini is not compiled in, got %s", client.Provider())
	}
}

func TestSelectBindsToolsOnlyWhenGiven(t *testing.T) {
	s := NewSelector(WithEnvironment(map[string]string{"GROQ_API_KEY": "k"}))

	bound, ok := s.Select(testTools).(*ChatCompletionsClient)
	if !ok {
		t.Fatalf("expected *ChatCompletionsClient")
	}
	if got := len(bound.Tools()); got != 2 {
		t.Fatalf("expected 2 bound tools, got %d", got)
	}

	for _, tools := range [][]domain.Tool{nil, {}} {
		plain := s.Select(tools).(*ChatCompletionsClient)
		if len(plain.Tools()) != 0 {
			t.Fatalf("expected no bound tools, got %d", len(plain.Tools()))
		}
	}
}

func TestBindToolsDoesNotMutateReceiver(t *testing.T) {
	base, err := NewGeminiClient("k", GeminiModel, ClientOptions{})
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}

	bound := base.BindTools(testTools).(*GeminiClient)

	if bound == base {
		t.Fatalf("BindTools must return a new client")
	}
	if len(base.Tools()) != 0 {
		t.Fatalf("receiver gained tools: %v", base.Tools())
	}
	if len(bound.Tools()) != len(testTools) {
		t.Fatalf("expected %d tools, got %d", len(testTools), len(bound.Tools()))
	}
}

func TestSelectSkipsProviderWhoseConstructionFails(t *testing.T) {
	failing := ProviderFactory{
		Name:       "broken",
		Priority:   1,
		Credential: func(c Credentials) string { return c.GoogleAPIKey },
		New: func(string, ClientOptions) (ports.LLMClient, error) {
			return nil, errors.New("malformed key")
		},
	}
	working := ProviderFactory{
		Name:       "working",
		Priority:   2,
		Credential: func(c Credentials) string { return c.GoogleAPIKey },
		New: func(string, ClientOptions) (ports.LLMClient, error) {
			return NewFakeClient("from working provider"), nil
		},
	}

	s := NewSelector(
		WithRegistry(NewRegistry(working, failing)),
		WithEnvironment(map[string]string{"GOOGLE_API_KEY": "k"}),
		WithLogger(zaptest.NewLogger(t)),
	)

	resp, err := s.Select(nil).Invoke(context.Background(), nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if resp.Content != "from working provider" {
		t.Fatalf("expected the next provider to be used, got %q", resp.Content)
	}
}

func TestSelectIsRepeatable(t *testing.T) {
	s := NewSelector(WithEnvironment(map[string]string{"MISTRAL_API_KEY": "k"}))

	first := s.Select(testTools).(*ChatCompletionsClient)
	second := s.Select(testTools).(*ChatCompletionsClient)

	if first == second {
		t.Fatalf("expected a fresh client per call")
	}
	if first.Provider() != second.Provider() || first.Model() != second.Model() {
		t.Fatalf("expected equivalent clients, got %s/%s and %s/%s",
			first.Provider(), first.Model(), second.Provider(), second.Model())
	}
	if len(first.Tools()) != len(second.Tools()) {
		t.Fatalf("expected same tool binding state")
	}
}

func TestSelectClientReadsProcessEnvironment(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("MISTRAL_API_KEY", "")

	if got := SelectClient(testTools).Provider(); got != FakeProviderName {
		t.Fatalf("expected fake provider, got %s", got)
	}

	t.Setenv("MISTRAL_API_KEY", "mistral-key")
	if got := SelectClient(nil).Provider(); got != MistralProviderName {
		t.Fatalf("expected mistral after setting its key, got %s", got)
	}

	t.Setenv("GROQ_API_KEY", "groq-key")
	if got := SelectClient(nil).Provider(); got != GroqProviderName {
		t.Fatalf("expected groq to take priority over mistral, got %s", got)
	}
}

func TestRegistryOrdersByPriority(t *testing.T) {
	r := NewRegistry(
		ProviderFactory{Name: "c", Priority: 30},
		ProviderFactory{Name: "a", Priority: 10},
		ProviderFactory{Name: "b", Priority: 20},
	)
	r.Register(ProviderFactory{Name: "a", Priority: 40})

	got := r.Names()
	want := []string{"b", "c", "a"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestDefaultRegistryOrder(t *testing.T) {
	got := DefaultRegistry().Names()
	want := []string{GeminiProviderName, GroqProviderName, MistralProviderName}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestFakeClientCyclesResponses(t *testing.T) {
	c := NewFakeClient("one", "two")
	ctx := context.Background()

	for _, want := range []string{"one", "two", "one"} {
		resp, err := c.Invoke(ctx, nil)
		if err != nil {
			t.Fatalf("Invoke: %v", err)
		}
		if resp.Content != want {
			t.Fatalf("expected %q, got %q", want, resp.Content)
		}
	}
}

// selectionCounter counts provider selections and ignores other metrics
type selectionCounter struct {
	noop.Collector
	selected map[string]int
}

func (c *selectionCounter) IncProviderSelected(provider string) {
	c.selected[provider]++
}

func TestPeekDoesNotCountSelection(t *testing.T) {
	metrics := &selectionCounter{selected: map[string]int{}}
	s := NewSelector(
		WithEnvironment(map[string]string{"MISTRAL_API_KEY": "k"}),
		WithMetrics(metrics),
	)

	for i := 0; i < 3; i++ {
		if got := s.Peek(nil).Provider(); got != MistralProviderName {
			t.Fatalf("expected mistral, got %s", got)
		}
	}
	if len(metrics.selected) != 0 {
		t.Fatalf("Peek must not count selections, got %v", metrics.selected)
	}

	if got := s.Select(testTools).Provider(); got != MistralProviderName {
		t.Fatalf("expected mistral, got %s", got)
	}
	if metrics.selected[MistralProviderName] != 1 {
		t.Fatalf("expected one mistral selection, got %v", metrics.selected)
	}

	empty := NewSelector(WithEnvironment(map[string]string{}), WithMetrics(metrics))
	if got := empty.Peek(testTools).Provider(); got != FakeProviderName {
		t.Fatalf("expected fake provider, got %s", got)
	}
	if metrics.selected[FakeProviderName] != 0 {
		t.Fatalf("Peek must not count the fallback, got %v", metrics.selected)
	}
}
