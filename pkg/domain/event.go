package domain

import "time"

// EventType identifies an agent event
type EventType string

const (
	EventTypeChatRequested EventType = "chat.requested"
	EventTypeChatCompleted EventType = "chat.completed"
	EventTypeChatFailed    EventType = "chat.failed"
	EventTypeToolExecuted  EventType = "tool.executed"
	EventTypeJobCompleted  EventType = "job.completed"
	EventTypeJobFailed     EventType = "job.failed"
)

// Event topics
const (
	TopicChatEvents   = "chat.events"
	TopicChatRequests = "chat.requests"
)

// Event is published on the event bus
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	SessionID string                 `json:"session_id"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}
