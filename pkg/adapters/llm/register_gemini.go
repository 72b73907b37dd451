//go:build !nogemini

package llm

import "github.com/aescanero/climeai/pkg/ports"

func init() {
	Register(ProviderFactory{
		Name:       GeminiProviderName,
		Priority:   PriorityGemini,
		Model:      GeminiModel,
		Credential: func(c Credentials) string { return c.GoogleAPIKey },
		New: func(apiKey string, opts ClientOptions) (ports.LLMClient, error) {
			return NewGeminiClient(apiKey, GeminiModel, opts)
		},
	})
}
