package llm

import (
	"github.com/aescanero/climeai/pkg/adapters/metrics/noop"
	"github.com/aescanero/climeai/pkg/domain"
	"github.com/aescanero/climeai/pkg/ports"
	"go.uber.org/zap"
)

// Selector picks the model client for a request. Credentials are re-read on
// every call; the choice is never cached.
type Selector struct {
	registry *Registry
	environ  map[string]string
	options  ClientOptions
	logger   *zap.Logger
	metrics  ports.MetricsCollector
}

// Option configures a Selector
type Option func(*Selector)

// WithRegistry sets the provider registry (default: DefaultRegistry)
func WithRegistry(r *Registry) Option {
	return func(s *Selector) { s.registry = r }
}

// WithEnvironment reads credentials from environ instead of the process environment
func WithEnvironment(environ map[string]string) Option {
	return func(s *Selector) { s.environ = environ }
}

// WithClientOptions sets the options handed to provider constructors
func WithClientOptions(opts ClientOptions) Option {
	return func(s *Selector) { s.options = opts }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Selector) { s.logger = logger }
}

// WithMetrics sets the metrics collector
func WithMetrics(m ports.MetricsCollector) Option {
	return func(s *Selector) { s.metrics = m }
}

// NewSelector creates a selector
func NewSelector(opts ...Option) *Selector {
	s := &Selector{
		registry: defaultRegistry,
		logger:   zap.NewNop(),
		metrics:  noop.Collector{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = NewRegistry()
	}
	if s.options.Logger == nil {
		s.options.Logger = s.logger
	}
	if s.options.Metrics == nil {
		s.options.Metrics = s.metrics
	}
	return s
}

// Select returns the client of the first registered provider whose API key
// is set, with tools bound when tools is non-empty. When no provider is
// eligible it returns a FakeClient, which never carries tools. Every call is
// counted in the provider selection metric.
func (s *Selector) Select(tools []domain.Tool) ports.LLMClient {
	client, provider := s.choose(tools)
	s.metrics.IncProviderSelected(provider)
	return client
}

// Peek makes the same choice as Select without counting it. It serves
// informational callers such as health and provider endpoints.
func (s *Selector) Peek(tools []domain.Tool) ports.LLMClient {
	client, _ := s.choose(tools)
	return client
}

func (s *Selector) choose(tools []domain.Tool) (ports.LLMClient, string) {
	creds, err := LoadCredentials(s.environ)
	if err != nil {
		s.logger.Warn("failed to load provider credentials", zap.Error(err))
	}

	for _, p := range s.registry.Providers() {
		apiKey := p.Credential(creds)
		if apiKey == "" {
			s.logger.Debug("provider skipped, no credential",
				zap.String("provider", p.Name))
			continue
		}

		client, err := p.New(apiKey, s.options)
		if err != nil {
			s.logger.Warn("provider construction failed, trying next",
				zap.String("provider", p.Name),
				zap.Error(err))
			continue
		}

		if len(tools) > 0 {
			if binder, ok := client.(ports.ToolBinder); ok {
				client = binder.BindTools(tools)
			}
		}

		s.logger.Debug("provider selected",
			zap.String("provider", p.Name),
			zap.String("model", p.Model),
			zap.Int("tools", len(tools)))
		return client, p.Name
	}

	s.logger.Debug("no provider available, using fake client")
	return NewFakeClient(), FakeProviderName
}

// SelectClient selects a client from the compiled-in providers using the
// process environment.
func SelectClient(tools []domain.Tool) ports.LLMClient {
	return NewSelector().Select(tools)
}
