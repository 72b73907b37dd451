package domain

import "time"

// Role identifies the author of a conversation message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single conversation turn
type Message struct {
	Role       Role       `json:"role" bson:"role"`
	Content    string     `json:"content" bson:"content"`
	Name       string     `json:"name,omitempty" bson:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty" bson:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty" bson:"tool_call_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
}

// NewMessage creates a message stamped with the current time
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// ToolResultMessage creates the message carrying a tool's output back to the model
func ToolResultMessage(call ToolCall, output string) Message {
	msg := NewMessage(RoleTool, output)
	msg.Name = call.Name
	msg.ToolCallID = call.ID
	return msg
}

// Usage reports token accounting for one model call
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is the result of invoking a model
type Response struct {
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	Provider  string     `json:"provider"`
	Model     string     `json:"model"`
	Usage     Usage      `json:"usage"`
}

// Message converts the response into an assistant message for the history
func (r *Response) Message() Message {
	msg := NewMessage(RoleAssistant, r.Content)
	msg.ToolCalls = r.ToolCalls
	return msg
}
