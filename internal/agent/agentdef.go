// ABOUTME: Agent definition registry with builtins and custom agent loading
// ABOUTME: Loads Markdown files with YAML frontmatter from .mcp-agent/agents/ directories

package agent

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mauromedda/mcp-agent-go/internal/config"
)

// Definition describes a reusable agent configuration.
type Definition struct {
	Name          string
	Description   string
	Model         string
	SystemPrompt  string
	Tools         []string // allowlist; empty means all registered tools
	MaxIterations int
}

// defFrontmatter is the YAML frontmatter shape of an agent definition file.
type defFrontmatter struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Model         string   `yaml:"model"`
	Tools         []string `yaml:"tools"`
	MaxIterations int      `yaml:"max-iterations"`
}

// BuiltinDefinitions returns the built-in agent definitions.
func BuiltinDefinitions() map[string]Definition {
	return map[string]Definition{
		"default": {
			Name:        "default",
			Description: "General-purpose agent with the full tool set.",
			SystemPrompt: "You are a helpful assistant with access to tools. " +
				"Use them when they help answer the user's request, and reply with " +
				"a clear final answer once you have what you need.",
		},
		"files": {
			Name:          "files",
			Description:   "File inspection agent restricted to read-only file tools.",
			Tools:         []string{"read_file", "list_files"},
			MaxIterations: 10,
			SystemPrompt: "You are a file inspection agent. Use list_files and read_file " +
				"to answer questions about the filesystem. Report findings clearly.",
		},
		"shell": {
			Name:          "shell",
			Description:   "Command execution specialist for running shell commands.",
			Tools:         []string{"execute_shell", "read_file", "list_files"},
			MaxIterations: 5,
			SystemPrompt: "You are a command execution agent. Run commands as requested " +
				"and report results clearly. Be cautious with destructive operations.",
		},
	}
}

// LoadDefinitions loads agent definitions from all sources, merging with
// builtins. Custom definitions override builtins with the same name.
func LoadDefinitions(projectDir, homeDir string) map[string]Definition {
	defs := BuiltinDefinitions()

	dirs := []string{
		filepath.Join(homeDir, ".mcp-agent", "agents"),
		filepath.Join(projectDir, ".mcp-agent", "agents"),
	}

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}

			data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				continue
			}

			def, ok := parseDefinition(string(data), entry.Name())
			if ok {
				defs[def.Name] = def
			}
		}
	}

	return defs
}

// parseDefinition parses a Markdown agent definition with YAML frontmatter.
// The body becomes the system prompt; the name defaults to the filename.
func parseDefinition(content, filename string) (Definition, bool) {
	fm, body, err := config.ParseFrontmatter[defFrontmatter](content)
	if err != nil {
		return Definition{}, false
	}

	def := Definition{
		Name:          fm.Name,
		Description:   fm.Description,
		Model:         fm.Model,
		Tools:         fm.Tools,
		MaxIterations: fm.MaxIterations,
		SystemPrompt:  strings.TrimSpace(body),
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	if def.SystemPrompt == "" {
		return Definition{}, false
	}

	return def, true
}
