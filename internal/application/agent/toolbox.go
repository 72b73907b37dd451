package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/aescanero/climeai/pkg/domain"
)

// ToolFunc runs a tool with the model-supplied arguments
type ToolFunc func(ctx context.Context, args map[string]interface{}) (string, error)

type registeredTool struct {
	descriptor domain.Tool
	run        ToolFunc
}

// Toolbox holds the tools the agent exposes to the model
type Toolbox struct {
	mu    sync.RWMutex
	tools map[string]registeredTool
	order []string
}

// NewToolbox creates an empty toolbox
func NewToolbox() *Toolbox {
	return &Toolbox{
		tools: make(map[string]registeredTool),
	}
}

// Register adds a tool. Names must be unique.
func (t *Toolbox) Register(descriptor domain.Tool, run ToolFunc) error {
	if descriptor.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if run == nil {
		return fmt.Errorf("tool %s has no handler", descriptor.Name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.tools[descriptor.Name]; exists {
		return fmt.Errorf("duplicate tool: %s", descriptor.Name)
	}
	t.tools[descriptor.Name] = registeredTool{descriptor: descriptor, run: run}
	t.order = append(t.order, descriptor.Name)
	return nil
}

// Descriptors returns the tool descriptors in registration order
func (t *Toolbox) Descriptors() []domain.Tool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.Tool, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.tools[name].descriptor)
	}
	return out
}

// Execute runs the tool named by call
func (t *Toolbox) Execute(ctx context.Context, call domain.ToolCall) (string, error) {
	t.mu.RLock()
	tool, ok := t.tools[call.Name]
	t.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("unknown tool: %s", call.Name)
	}

	args := call.Arguments
	if args == nil {
		args = map[string]interface{}{}
	}
	return tool.run(ctx, args)
}

// DefaultToolbox returns a toolbox with the built-in climate tools
func DefaultToolbox() *Toolbox {
	t := NewToolbox()
	_ = t.Register(convertTemperatureTool, convertTemperature)
	_ = t.Register(heatIndexTool, heatIndex)
	return t
}
