// ABOUTME: Tool registry merging built-in and MCP-discovered tools into one addressable set
// ABOUTME: Stable ordering (builtins first, discovery order after); built-ins win name collisions

package agent

import (
	"encoding/json"

	"github.com/mauromedda/mcp-agent-go/internal/chat"
	"github.com/mauromedda/mcp-agent-go/internal/log"
)

// Registry maps tool names to their descriptors and dispatch targets.
// It is built once per agent run and never mutated afterwards.
type Registry struct {
	order []string
	tools map[string]*Tool
}

// BuildRegistry merges built-in tools with tools discovered over a transport.
// Ordering is stable: builtins first in the given order, then discovered tools
// in discovery order, so tool-choice behavior is reproducible across runs.
// When a discovered tool's name collides with a built-in, the built-in wins;
// the discovered tool is dropped with a warning. This guarantees the file and
// shell tools are always the local implementations.
func BuildRegistry(builtins, discovered []*Tool) *Registry {
	r := &Registry{tools: make(map[string]*Tool, len(builtins)+len(discovered))}

	for _, t := range builtins {
		if _, exists := r.tools[t.Name]; exists {
			log.Warn("registry: duplicate built-in tool %q ignored", t.Name)
			continue
		}
		r.add(t)
	}

	for _, t := range discovered {
		if _, exists := r.tools[t.Name]; exists {
			log.Warn("registry: discovered tool %q shadows an existing tool, ignored", t.Name)
			continue
		}
		r.add(t)
	}

	return r
}

func (r *Registry) add(t *Tool) {
	r.order = append(r.order, t.Name)
	r.tools[t.Name] = t
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) *Tool {
	return r.tools[name]
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}

// All returns every registered tool in registration order.
func (r *Registry) All() []*Tool {
	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Defs exports the registry as chat tool definitions, in registration order.
func (r *Registry) Defs() []chat.ToolDef {
	defs := make([]chat.ToolDef, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		schema := t.Parameters
		if schema == nil {
			schema = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		defs = append(defs, chat.ToolDef{
			Type: "function",
			Function: chat.FunctionDef{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  schema,
			},
		})
	}
	return defs
}

// Filter returns a new registry restricted to the named tools, preserving
// registration order. Unknown names are ignored. Used by agent definitions
// that declare a tool allowlist.
func (r *Registry) Filter(names []string) *Registry {
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[n] = true
	}

	out := &Registry{tools: make(map[string]*Tool)}
	for _, name := range r.order {
		if allowed[name] {
			out.add(r.tools[name])
		}
	}
	return out
}
