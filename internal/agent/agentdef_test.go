// ABOUTME: Tests for agent definition loading and frontmatter parsing
// ABOUTME: Uses temp directories standing in for home and project roots

package agent

import (
	"os"
	"path/filepath"
	"testing"
)

func writeAgentFile(t *testing.T, dir, name, content string) {
	t.Helper()
	agentsDir := filepath.Join(dir, ".mcp-agent", "agents")
	if err := os.MkdirAll(agentsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(agentsDir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuiltinDefinitions(t *testing.T) {
	t.Parallel()

	defs := BuiltinDefinitions()
	for _, name := range []string{"default", "files", "shell"} {
		def, ok := defs[name]
		if !ok {
			t.Errorf("missing builtin definition %q", name)
			continue
		}
		if def.SystemPrompt == "" {
			t.Errorf("builtin %q has empty system prompt", name)
		}
	}
	if len(BuiltinDefinitions()["default"].Tools) != 0 {
		t.Error("default agent should allow all tools")
	}
}

func TestLoadDefinitions_CustomOverridesBuiltin(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	project := t.TempDir()

	writeAgentFile(t, project, "default.md", `---
name: default
description: custom default
model: my-model
max-iterations: 7
---
Custom system prompt.`)

	defs := LoadDefinitions(project, home)
	def := defs["default"]
	if def.Description != "custom default" {
		t.Errorf("description: got %q", def.Description)
	}
	if def.Model != "my-model" {
		t.Errorf("model: got %q", def.Model)
	}
	if def.MaxIterations != 7 {
		t.Errorf("max iterations: got %d", def.MaxIterations)
	}
	if def.SystemPrompt != "Custom system prompt." {
		t.Errorf("system prompt: got %q", def.SystemPrompt)
	}
}

func TestLoadDefinitions_ProjectOverridesHome(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	project := t.TempDir()

	writeAgentFile(t, home, "reviewer.md", `---
name: reviewer
---
Home prompt.`)
	writeAgentFile(t, project, "reviewer.md", `---
name: reviewer
---
Project prompt.`)

	defs := LoadDefinitions(project, home)
	if got := defs["reviewer"].SystemPrompt; got != "Project prompt." {
		t.Errorf("got %q, want project version", got)
	}
}

func TestParseDefinition(t *testing.T) {
	t.Parallel()

	t.Run("name defaults to filename", func(t *testing.T) {
		def, ok := parseDefinition("---\ndescription: d\n---\nA prompt.", "mytool.md")
		if !ok {
			t.Fatal("expected parse to succeed")
		}
		if def.Name != "mytool" {
			t.Errorf("got %q, want mytool", def.Name)
		}
	})

	t.Run("empty body rejected", func(t *testing.T) {
		if _, ok := parseDefinition("---\nname: x\n---\n", "x.md"); ok {
			t.Error("definition without a prompt should be rejected")
		}
	})

	t.Run("tools allowlist", func(t *testing.T) {
		def, ok := parseDefinition(`---
name: narrow
tools:
  - read_file
  - list_files
---
Prompt.`, "narrow.md")
		if !ok {
			t.Fatal("expected parse to succeed")
		}
		if len(def.Tools) != 2 || def.Tools[0] != "read_file" {
			t.Errorf("tools: got %v", def.Tools)
		}
	})
}
