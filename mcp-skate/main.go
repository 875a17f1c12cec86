package main

import (
	"log"
	"net"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	skate "github.com/rphilander/skate/core"
)

func main() {
	sockPath := os.Getenv("SKATE_SOCK")
	if sockPath == "" {
		sockPath = "/tmp/skate.sock"
	}

	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		log.Fatalf("connect to %s: %v", sockPath, err)
	}
	defer conn.Close()
	log.Printf("connected to skate session: %s", sockPath)

	if err := server.ServeStdio(newMCPServer(&bridge{conn: conn})); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func newMCPServer(b *bridge) *server.MCPServer {
	s := server.NewMCPServer(
		"skate",
		skate.Version,
		server.WithToolCapabilities(false),
	)

	s.AddTool(
		mcp.NewTool("skate_eval",
			mcp.WithDescription("Evaluate one skate expression in the shared session. Returns the result as {kind, value, text} plus any printed output."),
			mcp.WithString("expr",
				mcp.Required(),
				mcp.Description("Expression to evaluate, e.g. (+ 1 2) or (def 'x' 42)"),
			),
		),
		b.handleEval,
	)

	s.AddTool(
		mcp.NewTool("skate_env",
			mcp.WithDescription("List every binding in the session environment, builtins included."),
		),
		b.handleEnv,
	)

	s.AddTool(
		mcp.NewTool("skate_traces",
			mcp.WithDescription("Recent evaluations in the session, oldest first."),
			mcp.WithNumber("n",
				mcp.Description("How many traces to return; omit for all"),
			),
		),
		b.handleTraces,
	)

	return s
}
