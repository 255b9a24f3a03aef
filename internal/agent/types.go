// ABOUTME: Core agent types: events, tool definitions, and state enumerations
// ABOUTME: Wire-format agnostic; used by agent loop, registry, and tool implementations

package agent

import (
	"context"
	"encoding/json"
	"time"
)

// EventType identifies the kind of agent event emitted during a run.
type EventType int

const (
	EventRunStart      EventType = iota // Agent loop started
	EventRunEnd                         // Agent loop finished
	EventAssistantText                  // Text content from the model
	EventToolStart                      // Tool execution began
	EventToolEnd                        // Tool execution completed
	EventError                          // Non-recoverable error
)

// Event represents a single event emitted by the agent loop.
type Event struct {
	Type       EventType
	Text       string
	ToolID     string
	ToolName   string
	ToolArgs   map[string]any
	ToolResult *ToolResult
	Err        error
}

// ToolResult holds the outcome of a single tool execution.
type ToolResult struct {
	Content  string
	IsError  bool
	Duration time.Duration
}

// Tool defines a callable tool: a descriptor plus its dispatch target.
// Built-in tools supply Execute directly; tools discovered over MCP supply an
// Execute closure that forwards to the remote server.
type Tool struct {
	Name        string
	Label       string
	Description string
	Parameters  json.RawMessage // JSON Schema for the arguments object
	ReadOnly    bool
	Execute     func(ctx context.Context, id string, params map[string]any) (ToolResult, error)
}

// State represents the current lifecycle state of the agent.
type State int32

const (
	StateIdle      State = iota // Not running
	StateRunning                // Actively processing
	StateCancelled              // Cancelled by caller
)
