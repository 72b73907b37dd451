// Package agent implements the ClimeAI chat service.
//
// A chat turn loads the session history, asks the selector for a model
// client with the toolbox's tools bound, invokes it, runs any tool calls the
// model requests and invokes it again, up to a configured number of
// iterations. The turn is then persisted and a chat event is published.
package agent
