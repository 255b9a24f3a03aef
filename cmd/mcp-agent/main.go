// ABOUTME: CLI entry point for mcp-agent
// ABOUTME: Parses flags, loads config, connects MCP servers, runs the agent loop

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/mauromedda/mcp-agent-go/internal/agent"
	"github.com/mauromedda/mcp-agent-go/internal/chat"
	"github.com/mauromedda/mcp-agent-go/internal/config"
	"github.com/mauromedda/mcp-agent-go/internal/log"
	"github.com/mauromedda/mcp-agent-go/internal/mcp"
	"github.com/mauromedda/mcp-agent-go/internal/tools"
)

const defaultModel = "gpt-4o-mini"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// Intercept subcommands before flag parsing.
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	args := parseFlags()

	if args.version {
		fmt.Printf("mcp-agent %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runServe exposes the builtin tools as an MCP server over stdin/stdout,
// so mcp-agent can itself be configured as a server for other MCP clients.
func runServe() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := mcp.NewServer(tools.Builtins())
	return srv.Serve(ctx)
}

// run performs initialization and drives one prompt through the agent loop.
func run(args cliArgs) error {
	if args.verbose {
		log.SetLevel(log.LevelDebug)
	}

	prompt, err := readPrompt(args.remaining())
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	settings, err := config.Load(cwd)
	if err != nil {
		return err
	}
	applyFlagOverrides(settings, args)

	homeDir, _ := os.UserHomeDir()
	def, err := selectAgent(settings, cwd, homeDir)
	if err != nil {
		return err
	}

	model := settings.Model
	if def.Model != "" && args.model == "" {
		model = def.Model
	}
	if model == "" {
		model = defaultModel
	}

	maxIterations := settings.MaxIterations
	if def.MaxIterations != 0 && args.maxIterations == 0 {
		maxIterations = def.MaxIterations
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	registry, closeClients := buildTools(ctx, settings, cwd, homeDir)
	defer closeClients()

	if len(def.Tools) > 0 {
		registry = registry.Filter(def.Tools)
	}

	client := chat.NewClient(settings.APIKey, settings.BaseURL)
	ag := agent.New(client, model, registry, maxIterations)

	conv := chat.NewConversation(def.SystemPrompt, prompt)
	rend := newRenderer(args.plain)

	var runErr error
	for evt := range ag.Run(ctx, conv) {
		switch evt.Type {
		case agent.EventAssistantText:
			fmt.Println(rend.markdown(evt.Text))
		case agent.EventToolStart:
			fmt.Println(rend.toolStart(evt.ToolName, evt.ToolArgs))
		case agent.EventToolEnd:
			if evt.ToolResult != nil {
				fmt.Println(rend.toolEnd(evt.ToolName, evt.ToolResult))
			}
		case agent.EventError:
			runErr = evt.Err
		}
	}

	return runErr
}

// readPrompt takes the prompt from positional args, falling back to stdin
// when none are given (e.g. `echo fix it | mcp-agent`).
func readPrompt(argv []string) (string, error) {
	if len(argv) > 0 {
		return strings.Join(argv, " "), nil
	}

	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		prompt := strings.TrimSpace(string(data))
		if prompt != "" {
			return prompt, nil
		}
	}

	return "", fmt.Errorf("no prompt given; pass it as arguments or on stdin")
}

// applyFlagOverrides layers CLI flags on top of file and env settings.
func applyFlagOverrides(s *config.Settings, args cliArgs) {
	if args.model != "" {
		s.Model = args.model
	}
	if args.baseURL != "" {
		s.BaseURL = args.baseURL
	}
	if args.maxIterations > 0 {
		s.MaxIterations = args.maxIterations
	}
	if args.agentName != "" {
		s.Agent = args.agentName
	}
	if args.noMCP {
		disabled := false
		s.MCPEnabled = &disabled
	}
}

// selectAgent resolves the agent definition named in settings, defaulting to
// "default".
func selectAgent(settings *config.Settings, projectDir, homeDir string) (agent.Definition, error) {
	name := settings.Agent
	if name == "" {
		name = "default"
	}

	defs := agent.LoadDefinitions(projectDir, homeDir)
	def, ok := defs[name]
	if !ok {
		known := make([]string, 0, len(defs))
		for k := range defs {
			known = append(known, k)
		}
		sort.Strings(known)
		return agent.Definition{}, fmt.Errorf("unknown agent %q (available: %s)", name, strings.Join(known, ", "))
	}
	return def, nil
}

// buildTools assembles the tool registry: builtins plus tools discovered from
// configured MCP servers. A server that fails its handshake or discovery is
// logged and skipped; the agent degrades to the remaining tools. The returned
// closer shuts down every connected server.
func buildTools(ctx context.Context, settings *config.Settings, projectDir, homeDir string) (*agent.Registry, func()) {
	builtins := tools.Builtins()

	if !settings.MCPIsEnabled() {
		return agent.BuildRegistry(builtins, nil), func() {}
	}

	serverConfigs := mcp.LoadConfig(projectDir, homeDir)
	names := make([]string, 0, len(serverConfigs))
	for name := range serverConfigs {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic tool order across runs

	var discovered []*agent.Tool
	var clients []*mcp.Client

	for _, name := range names {
		client, toolsFromServer, err := connectServer(ctx, name, serverConfigs[name])
		if err != nil {
			log.Warn("mcp: %v; continuing without server %s", err, name)
			continue
		}
		clients = append(clients, client)
		discovered = append(discovered, toolsFromServer...)
		log.Info("mcp: connected to %s (%d tools)", name, len(toolsFromServer))
	}

	closer := func() {
		for _, c := range clients {
			_ = c.Close()
		}
	}
	return agent.BuildRegistry(builtins, discovered), closer
}

// connectServer spawns one MCP server, performs the handshake, and bridges
// its tools. The transport is torn down on any failure so no orphan child
// processes remain.
func connectServer(ctx context.Context, name string, cfg mcp.ServerConfig) (*mcp.Client, []*agent.Tool, error) {
	transport, err := mcp.NewStdioTransport(ctx, cfg.Command, cfg.Args, mcp.ServerConfigEnv(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("server %s: %w", name, err)
	}

	client := mcp.NewClient(name, transport)
	if err := client.Connect(ctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	if _, err := client.ListTools(ctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	return client, mcp.BridgeAllTools(name, client), nil
}
