// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Supports --model, --base-url, --agent, --max-iterations, --no-mcp, --plain, --verbose, --version

package main

import "flag"

type cliArgs struct {
	model         string
	baseURL       string
	agentName     string
	maxIterations int
	noMCP         bool
	plain         bool
	verbose       bool
	version       bool
}

func parseFlags() cliArgs {
	var args cliArgs

	flag.StringVar(&args.model, "model", "", "Model to use (e.g., gpt-4o, qwen2.5-coder)")
	flag.StringVar(&args.baseURL, "base-url", "", "OpenAI-compatible API base URL")
	flag.StringVar(&args.agentName, "agent", "", "Agent definition to run (default, files, shell, or custom)")
	flag.IntVar(&args.maxIterations, "max-iterations", 0, "Tool-call iteration bound per prompt (0 = default)")
	flag.BoolVar(&args.noMCP, "no-mcp", false, "Skip MCP server discovery, builtin tools only")
	flag.BoolVar(&args.plain, "plain", false, "Plain text output, no markdown rendering")
	flag.BoolVar(&args.verbose, "verbose", false, "Enable debug logging")
	flag.BoolVar(&args.version, "version", false, "Show version and exit")

	flag.Parse()
	return args
}

// remaining returns the non-flag command-line arguments.
func (a cliArgs) remaining() []string {
	return flag.Args()
}
