//go:build !nomistral

package llm

// NewMistralClient creates a Mistral client
func NewMistralClient(apiKey string, opts ClientOptions) (*ChatCompletionsClient, error) {
	return NewChatCompletionsClient(MistralProviderName, DefaultMistralBaseURL, apiKey, MistralModel, opts)
}
