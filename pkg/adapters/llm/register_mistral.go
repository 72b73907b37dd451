//go:build !nomistral

package llm

import "github.com/aescanero/climeai/pkg/ports"

func init() {
	Register(ProviderFactory{
		Name:       MistralProviderName,
		Priority:   PriorityMistral,
		Model:      MistralModel,
		Credential: func(c Credentials) string { return c.MistralAPIKey },
		New: func(apiKey string, opts ClientOptions) (ports.LLMClient, error) {
			return NewMistralClient(apiKey, opts)
		},
	})
}
