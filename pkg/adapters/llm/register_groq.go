//go:build !nogroq

package llm

import "github.com/aescanero/climeai/pkg/ports"

func init() {
	Register(ProviderFactory{
		Name:       GroqProviderName,
		Priority:   PriorityGroq,
		Model:      GroqModel,
		Credential: func(c Credentials) string { return c.GroqAPIKey },
		New: func(apiKey string, opts ClientOptions) (ports.LLMClient, error) {
			return NewGroqClient(apiKey, opts)
		},
	})
}
