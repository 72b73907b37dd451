// Package websocket provides real-time event streaming via WebSocket.
//
// Clients connect to /api/v1/sessions/:id/ws to receive the chat.events of
// one session: completed and failed turns, tool executions and async job
// outcomes.
package websocket
