package llm

// Provider names and fixed models. The constants stay available when a
// provider is compiled out so callers can still refer to it by name.
const (
	GeminiProviderName   = "gemini"
	GeminiModel          = "gemini-pro"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

	GroqProviderName   = "groq"
	GroqModel          = "llama3-70b-8192"
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

	MistralProviderName   = "mistral"
	MistralModel          = "mistral-large-latest"
	DefaultMistralBaseURL = "https://api.mistral.ai/v1"
)
