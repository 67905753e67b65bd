// Package tools provides the tool interface and the built-in web tools that
// team participants may call.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
	"github.com/iamsorenl/Autogen-Chat-Demo/provider"
)

// Tool is the interface for participant tools.
type Tool interface {
	// Def returns the tool definition for the LLM.
	Def() provider.ToolDef
	// Run executes the tool with the given arguments and returns the result.
	// Errors are returned as strings (for the LLM to interpret).
	Run(ctx context.Context, args json.RawMessage) string
}

// Registry holds registered tools.
type Registry struct {
	tools map[string]Tool
}

// DefaultToolsConfig provides defaults for built-in tools.
type DefaultToolsConfig struct {
	WebSearchMaxResults int
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry.
func (r *Registry) Register(t Tool) {
	r.tools[t.Def().Function.Name] = t
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Subset returns a registry holding only the named tools. Unknown names are
// logged and skipped.
func (r *Registry) Subset(names []string) *Registry {
	sub := NewRegistry()
	for _, name := range names {
		t, ok := r.tools[name]
		if !ok {
			logger.Warn("participant requested unknown tool", "tool", name)
			continue
		}
		sub.tools[name] = t
	}
	return sub
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.tools) }

// Defs returns all tool definitions, sorted by name.
func (r *Registry) Defs() []provider.ToolDef {
	defs := make([]provider.ToolDef, 0, len(r.tools))
	for _, name := range r.Names() {
		defs = append(defs, r.tools[name].Def())
	}
	return defs
}

// Run executes a tool by name.
func (r *Registry) Run(ctx context.Context, name string, args json.RawMessage) string {
	t, ok := r.tools[name]
	if !ok {
		logger.Error("tool not found", "tool", name)
		return fmt.Sprintf("Error: unknown tool '%s'", name)
	}
	return t.Run(ctx, args)
}

// Names returns the names of all registered tools.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterDefaultTools registers the built-in web tools.
func (r *Registry) RegisterDefaultTools(cfg DefaultToolsConfig) {
	r.Register(NewWebSearchTool("", cfg.WebSearchMaxResults))
	r.Register(&WebFetchTool{})
}

func truncateWithNotice(content string, maxChars int) (string, bool) {
	if maxChars <= 0 || len(content) <= maxChars {
		return content, false
	}

	notice := fmt.Sprintf(
		"\n[Truncated] Output exceeded %d characters. Narrow the scope or fetch a more specific page.",
		maxChars,
	)
	return content[:maxChars] + notice, true
}
