package llm

import (
	"net/http"
	"sort"
	"sync"

	"github.com/aescanero/climeai/pkg/ports"
	"go.uber.org/zap"
)

// Provider priorities; lower values are tried first
const (
	PriorityGemini  = 10
	PriorityGroq    = 20
	PriorityMistral = 30
)

// ClientOptions carries the shared dependencies handed to provider constructors
type ClientOptions struct {
	// BaseURL overrides the provider's API endpoint
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
	Metrics    ports.MetricsCollector
}

// ProviderFactory describes a provider compiled into the binary
type ProviderFactory struct {
	Name     string
	Priority int
	Model    string

	// Credential extracts the provider's API key
	Credential func(Credentials) string

	// New builds a client without performing network I/O
	New func(apiKey string, opts ClientOptions) (ports.LLMClient, error)
}

// Registry is a priority-ordered set of provider factories
type Registry struct {
	mu        sync.RWMutex
	providers []ProviderFactory
}

// NewRegistry creates a registry holding the given factories
func NewRegistry(factories ...ProviderFactory) *Registry {
	r := &Registry{}
	for _, f := range factories {
		r.Register(f)
	}
	return r
}

// Register adds or replaces (by name) a provider factory
func (r *Registry) Register(f ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.providers {
		if existing.Name == f.Name {
			r.providers[i] = f
			r.sort()
			return
		}
	}
	r.providers = append(r.providers, f)
	r.sort()
}

// Providers returns the factories in priority order
func (r *Registry) Providers() []ProviderFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ProviderFactory, len(r.providers))
	copy(out, r.providers)
	return out
}

// Names returns the registered provider names in priority order
func (r *Registry) Names() []string {
	providers := r.Providers()
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name
	}
	return names
}

func (r *Registry) sort() {
	sort.SliceStable(r.providers, func(i, j int) bool {
		return r.providers[i].Priority < r.providers[j].Priority
	})
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry populated by the compiled-in providers
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a provider to the default registry. It is called from init.
func Register(f ProviderFactory) {
	defaultRegistry.Register(f)
}
