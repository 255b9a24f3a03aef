// ABOUTME: OpenAI-compatible Chat Completions wire types: messages, tool calls, tool defs
// ABOUTME: Shared by the chat client, agent loop, and tool registry

package chat

import "encoding/json"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn in a conversation. Assistant messages may carry tool
// calls; tool messages carry the ToolCallID of the request they answer.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a tool invocation requested by the model. Arguments is the raw
// JSON text as transmitted; it is parsed only at dispatch time.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the tool and carries its serialized arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDef is a tool schema offered to the model.
type ToolDef struct {
	Type     string      `json:"type"`
	Function FunctionDef `json:"function"`
}

// FunctionDef describes a callable function and its JSON Schema parameters.
type FunctionDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Request is a chat completion request body.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Tools       []ToolDef `json:"tools,omitempty"`
	ToolChoice  string    `json:"tool_choice,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// Response is a chat completion response body.
type Response struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice holds one completion alternative.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Conversation holds the system prompt and ordered message history for a run.
// It is owned and mutated exclusively by the agent loop.
type Conversation struct {
	System   string
	Messages []Message
}

// NewConversation creates a conversation seeded with a system prompt and the
// first user message.
func NewConversation(system, userPrompt string) *Conversation {
	return &Conversation{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: userPrompt}},
	}
}

// wireMessages returns the message list as sent on the wire, with the system
// prompt prepended when present.
func (c *Conversation) wireMessages() []Message {
	if c.System == "" {
		return c.Messages
	}
	msgs := make([]Message, 0, len(c.Messages)+1)
	msgs = append(msgs, Message{Role: RoleSystem, Content: c.System})
	return append(msgs, c.Messages...)
}
