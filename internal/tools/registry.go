package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sashabaranov/go-openai"

	"github.com/Rorical/RoriAtlas/internal/models"
)

// Tool represents a function that can be called by the AI. Every tool takes
// exactly one string argument.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{} // JSON schema for parameters
	RequiredParameters() []string       // List of required parameter names
	Argument() string                   // Name of the single string parameter
	Execute(ctx context.Context, arg string) (string, error)
}

// Registry manages available tools
type Registry struct {
	tools map[string]Tool
	mu    sync.RWMutex
}

// NewRegistry creates a new tool registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// GetTool retrieves a tool by name
func (r *Registry) GetTool(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, exists := r.tools[name]
	return tool, exists
}

// ListTools returns all registered tools ordered by name
func (r *Registry) ListTools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// ArgumentName reports which JSON key carries the tool's single argument
func (r *Registry) ArgumentName(name string) (string, bool) {
	tool, exists := r.GetTool(name)
	if !exists {
		return "", false
	}
	return tool.Argument(), true
}

// OpenAITools returns OpenAI-compatible tool definitions
func (r *Registry) OpenAITools() []openai.Tool {
	tools := r.ListTools()
	defs := make([]openai.Tool, len(tools))

	for i, tool := range tools {
		defs[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters: map[string]interface{}{
					"type":       "object",
					"properties": tool.Parameters(),
					"required":   tool.RequiredParameters(),
				},
			},
		}
	}

	return defs
}

// Invoke runs the requested tool and blocks until it returns
func (r *Registry) Invoke(ctx context.Context, req models.ToolInvocationRequest) (models.ToolResult, error) {
	tool, exists := r.GetTool(req.Name)
	if !exists {
		return models.ToolResult{}, &models.ToolInvocationError{
			Tool:  req.Name,
			Query: req.Argument,
			Err:   fmt.Errorf("tool '%s' not found", req.Name),
		}
	}

	content, err := tool.Execute(ctx, req.Argument)
	if err != nil {
		return models.ToolResult{}, &models.ToolInvocationError{
			Tool:  req.Name,
			Query: req.Argument,
			Err:   err,
		}
	}

	return models.ToolResult{
		CallID:  req.ID,
		Name:    req.Name,
		Content: content,
	}, nil
}
