// ABOUTME: Agent loop: prompt -> model call -> tool execution -> repeat, with iteration bound
// ABOUTME: Orchestrates chat completions and tool dispatch; concurrent read-only execution

package agent

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mauromedda/mcp-agent-go/internal/chat"
	"github.com/mauromedda/mcp-agent-go/internal/log"
)

// DefaultMaxIterations caps the number of tool-executing cycles per user turn.
// When the bound is reached the final model call is made with tools withdrawn,
// which guarantees termination.
const DefaultMaxIterations = 5

// CompletionClient abstracts the remote chat-completion endpoint.
// A nil tools slice withdraws the tools parameter from the request.
type CompletionClient interface {
	CompleteConversation(ctx context.Context, model string, conv *chat.Conversation, tools []chat.ToolDef) (*chat.Message, error)
}

// Agent drives a bounded multi-turn conversation against a completion client,
// dispatching requested tool calls through its registry.
type Agent struct {
	client        CompletionClient
	model         string
	registry      *Registry
	maxIterations int
	state         atomic.Int32 // stores State
	events        chan Event
	cancelFn      context.CancelFunc
}

// New creates an Agent wired to the given client, model, and tool registry.
// maxIterations <= 0 selects DefaultMaxIterations.
func New(client CompletionClient, model string, registry *Registry, maxIterations int) *Agent {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Agent{
		client:        client,
		model:         model,
		registry:      registry,
		maxIterations: maxIterations,
	}
}

// Run starts the agent loop in a goroutine and returns an event channel.
// The channel is closed when the loop terminates (final answer, error, or
// cancel). The conversation is mutated only by the loop; callers must not
// touch it until the channel closes.
func (a *Agent) Run(ctx context.Context, conv *chat.Conversation) <-chan Event {
	ctx, cancel := context.WithCancel(ctx)
	a.cancelFn = cancel
	a.events = make(chan Event, 64)
	a.state.Store(int32(StateRunning))

	go a.loop(ctx, conv)

	return a.events
}

// RunSync runs the loop to completion and returns the model's final text.
// On a model-call failure the error is returned and the conversation is left
// in its last consistent state.
func (a *Agent) RunSync(ctx context.Context, conv *chat.Conversation) (string, error) {
	var finalText string
	var runErr error

	for evt := range a.Run(ctx, conv) {
		switch evt.Type {
		case EventAssistantText:
			finalText = evt.Text
		case EventError:
			runErr = evt.Err
		}
	}

	return finalText, runErr
}

// Abort cancels the current agent loop.
func (a *Agent) Abort() {
	a.state.Store(int32(StateCancelled))
	if a.cancelFn != nil {
		a.cancelFn()
	}
}

// State returns the current lifecycle state.
func (a *Agent) State() State {
	return State(a.state.Load())
}

// loop is the core model-call/tool-batch cycle.
func (a *Agent) loop(ctx context.Context, conv *chat.Conversation) {
	defer close(a.events)
	defer func() {
		// Preserve StateCancelled if Abort() was called.
		a.state.CompareAndSwap(int32(StateRunning), int32(StateIdle))
	}()

	a.emitFinal(Event{Type: EventRunStart})
	defs := a.registry.Defs()

	for iteration := 0; ; iteration++ {
		if err := ctx.Err(); err != nil {
			a.emitFinal(Event{Type: EventError, Err: fmt.Errorf("agent cancelled: %w", err)})
			break
		}

		tools := defs
		withdrawn := iteration >= a.maxIterations
		if withdrawn {
			log.Warn("agent: iteration bound %d reached, withdrawing tools for final call", a.maxIterations)
			tools = nil
		}

		msg, err := a.client.CompleteConversation(ctx, a.model, conv, tools)
		if err != nil {
			// Not retried here; nothing was appended for this call, so the
			// history stays consistent.
			a.emitFinal(Event{Type: EventError, Err: fmt.Errorf("calling model: %w", err)})
			break
		}

		calls := ensureCallIDs(msg.ToolCalls)
		conv.Messages = append(conv.Messages, chat.Message{
			Role:      chat.RoleAssistant,
			Content:   msg.Content,
			ToolCalls: calls,
		})

		if msg.Content != "" {
			a.emit(ctx, Event{Type: EventAssistantText, Text: msg.Content})
		}

		// With tools withdrawn any further tool requests are ignored; the
		// text above is the answer.
		if len(calls) == 0 || withdrawn {
			break
		}

		results := a.executeToolCalls(ctx, calls)
		for i, res := range results {
			conv.Messages = append(conv.Messages, chat.Message{
				Role:       chat.RoleTool,
				Content:    res.Content,
				ToolCallID: calls[i].ID,
			})
		}
	}

	a.emitFinal(Event{Type: EventRunEnd})
}

// executeToolCalls runs a batch of tool calls and returns one result per call,
// in request order. Read-only tools run concurrently; everything else runs
// sequentially. Failures never escape: every call produces a result.
func (a *Agent) executeToolCalls(ctx context.Context, calls []chat.ToolCall) []ToolResult {
	results := make([]ToolResult, len(calls))

	var writeIdx []int
	g, gCtx := errgroup.WithContext(ctx)

	for i, tc := range calls {
		tool := a.registry.Get(tc.Function.Name)
		if tool == nil || !tool.ReadOnly {
			writeIdx = append(writeIdx, i)
			continue
		}
		g.Go(func() error {
			results[i] = a.executeOne(gCtx, tc)
			return nil
		})
	}
	_ = g.Wait() // executeOne never returns an error

	for _, i := range writeIdx {
		results[i] = a.executeOne(ctx, calls[i])
	}

	return results
}

// executeOne runs a single tool call, emitting start/end events. Unknown
// tools, malformed arguments, and handler failures all become error-flagged
// results rather than aborting the batch.
func (a *Agent) executeOne(ctx context.Context, tc chat.ToolCall) ToolResult {
	name := tc.Function.Name

	tool := a.registry.Get(name)
	if tool == nil {
		result := ToolResult{Content: fmt.Sprintf("unknown tool: %s", name), IsError: true}
		a.emit(ctx, Event{Type: EventToolEnd, ToolID: tc.ID, ToolName: name, ToolResult: &result})
		return result
	}

	args, err := ParseToolArgs(tc.Function.Arguments)
	if err == nil {
		err = ValidateToolArgs(tool, args)
	}
	if err != nil {
		result := failResult(name, err)
		a.emit(ctx, Event{Type: EventToolEnd, ToolID: tc.ID, ToolName: name, ToolResult: &result})
		return result
	}

	a.emit(ctx, Event{Type: EventToolStart, ToolID: tc.ID, ToolName: name, ToolArgs: args})

	start := time.Now()
	result, execErr := tool.Execute(ctx, tc.ID, args)
	result.Duration = time.Since(start)

	if execErr != nil {
		result = failResult(name, execErr)
		result.Duration = time.Since(start)
	}

	a.emit(ctx, Event{Type: EventToolEnd, ToolID: tc.ID, ToolName: name, ToolResult: &result})
	return result
}

// failResult converts a tool failure into an error-describing result the
// model can read.
func failResult(name string, err error) ToolResult {
	return ToolResult{Content: fmt.Sprintf("tool %s failed: %v", name, err), IsError: true}
}

// ensureCallIDs fills in tool call ids that the server omitted. Some
// OpenAI-compatible servers leave them empty; the tool result message needs a
// non-empty id to link back to its request.
func ensureCallIDs(calls []chat.ToolCall) []chat.ToolCall {
	for i := range calls {
		if calls[i].ID == "" {
			calls[i].ID = "call_" + uuid.NewString()
		}
	}
	return calls
}

// emit sends an event; blocks until delivered or context is cancelled.
func (a *Agent) emit(ctx context.Context, evt Event) {
	select {
	case a.events <- evt:
	case <-ctx.Done():
	}
}

// emitFinal sends a lifecycle event unconditionally. Used for start, end, and
// loop-terminating errors that must be delivered even after context
// cancellation. Safe because the loop is the sole producer and the channel is
// buffered.
func (a *Agent) emitFinal(evt Event) {
	a.events <- evt
}
