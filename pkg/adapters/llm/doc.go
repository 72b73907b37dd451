// Package llm provides model client implementations and the provider selector.
//
// Providers register themselves in a priority-ordered Registry from init
// functions in build-tagged files, so a binary only offers the providers it
// was compiled with:
//   - Google Gemini through google.golang.org/genai (priority 10, exclude
//     with -tags nogemini)
//   - Groq through github.com/openai/openai-go (priority 20, exclude with
//     -tags nogroq)
//   - Mistral through github.com/openai/openai-go (priority 30, exclude with
//     -tags nomistral)
//
// A provider is eligible when it is registered and its API key is present in
// the environment. The Selector returns the first eligible provider's client,
// with tools bound when any are given, and falls back to a FakeClient that
// always answers with a canned message when no provider is eligible.
//
// Example usage:
//
//	client := llm.SelectClient(tools)
//	resp, err := client.Invoke(ctx, []domain.Message{
//	    domain.NewMessage(domain.RoleUser, "Will it rain in Lisbon tomorrow?"),
//	})
package llm
