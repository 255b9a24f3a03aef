// ABOUTME: Terminal output rendering for agent events
// ABOUTME: Markdown via glamour, tool call lines styled with lipgloss

package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/mauromedda/mcp-agent-go/internal/agent"
)

const renderWidth = 100

var (
	toolNameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	toolOKStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	toolErrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderer formats agent events for the terminal. In plain mode markdown
// passes through untouched.
type renderer struct {
	plain bool
	md    *glamour.TermRenderer
}

func newRenderer(plain bool) *renderer {
	r := &renderer{plain: plain}
	if !plain {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(renderWidth),
		)
		if err == nil {
			r.md = md
		}
	}
	return r
}

// markdown renders assistant text. Falls back to raw text when glamour is
// unavailable or fails.
func (r *renderer) markdown(text string) string {
	if r.plain || r.md == nil {
		return text
	}
	rendered, err := r.md.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n ")
}

// toolStart formats a tool invocation line.
func (r *renderer) toolStart(name string, args map[string]any) string {
	summary := summarizeArgs(args)
	if r.plain {
		return fmt.Sprintf("-> %s %s", name, summary)
	}
	return toolNameStyle.Render("● "+name) + " " + dimStyle.Render(summary)
}

// toolEnd formats a tool result line.
func (r *renderer) toolEnd(name string, result *agent.ToolResult) string {
	preview := firstLine(result.Content)
	elapsed := result.Duration.Round(time.Millisecond)
	if r.plain {
		status := "ok"
		if result.IsError {
			status = "error"
		}
		return fmt.Sprintf("<- %s [%s] %s (%s)", name, status, preview, elapsed)
	}

	style := toolOKStyle
	marker := "✓"
	if result.IsError {
		style = toolErrStyle
		marker = "✗"
	}
	return style.Render("  "+marker+" "+name) + " " +
		dimStyle.Render(fmt.Sprintf("%s (%s)", preview, elapsed))
}

// summarizeArgs renders args as a compact key=value list in key order.
func summarizeArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		s := fmt.Sprintf("%v", args[k])
		if len(s) > 60 {
			s = s[:57] + "..."
		}
		parts = append(parts, fmt.Sprintf("%s=%s", k, s))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 80 {
		s = s[:77] + "..."
	}
	return s
}
