//go:build !nogroq

package llm

// NewGroqClient creates a Groq client
func NewGroqClient(apiKey string, opts ClientOptions) (*ChatCompletionsClient, error) {
	return NewChatCompletionsClient(GroqProviderName, DefaultGroqBaseURL, apiKey, GroqModel, opts)
}
