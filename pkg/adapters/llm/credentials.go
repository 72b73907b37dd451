package llm

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Credentials holds the provider API keys. Presence is the only check made;
// formats are validated by the providers themselves.
type Credentials struct {
	GoogleAPIKey  string `env:"GOOGLE_API_KEY"`
	GroqAPIKey    string `env:"GROQ_API_KEY"`
	MistralAPIKey string `env:"MISTRAL_API_KEY"`
}

// LoadCredentials reads the provider API keys from environ, or from the
// process environment when environ is nil.
func LoadCredentials(environ map[string]string) (Credentials, error) {
	var creds Credentials
	if err := env.ParseWithOptions(&creds, env.Options{Environment: environ}); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return creds, nil
}
