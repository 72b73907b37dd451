package domain

// Tool describes a capability the model may ask the agent to run.
// Parameters is a JSON Schema object describing the arguments.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// ToolCall is a model's request to run a tool
type ToolCall struct {
	ID        string                 `json:"id" bson:"id"`
	Name      string                 `json:"name" bson:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty" bson:"arguments,omitempty"`
}

// ToolNames returns the names of the given tools in order
func ToolNames(tools []Tool) []string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name
	}
	return names
}
