package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	skate "github.com/rphilander/skate/core"
)

// bridge forwards tool calls to a skate server over one connection.
type bridge struct {
	mu   sync.Mutex // one request in flight per connection
	conn io.ReadWriter
}

// send sends a request to the skate server and returns the response.
func (b *bridge) send(req map[string]any) (map[string]any, error) {
	req["id"] = skate.NextID()
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := skate.WriteMsg(b.conn, req); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	resp, err := skate.ReadMsg(b.conn)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return resp, nil
}

// formatResult turns a server response into an MCP tool result.
func formatResult(resp map[string]any) (*mcp.CallToolResult, error) {
	ok, _ := resp["ok"].(bool)
	if !ok {
		errMsg, _ := resp["error"].(string)
		if errMsg == "" {
			errMsg = "unknown error"
		}
		if output, _ := resp["output"].(string); output != "" {
			errMsg += "\noutput:\n" + output
		}
		return mcp.NewToolResultError(errMsg), nil
	}

	payload := resp["value"]
	if output, exists := resp["output"]; exists {
		payload = map[string]any{"value": resp["value"], "output": output}
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (b *bridge) handleEval(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expr, err := request.RequireString("expr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resp, err := b.send(map[string]any{"op": "eval", "expr": expr})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return formatResult(resp)
}

func (b *bridge) handleEnv(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := b.send(map[string]any{"op": "env"})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return formatResult(resp)
}

func (b *bridge) handleTraces(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := map[string]any{"op": "traces"}
	if n := request.GetInt("n", 0); n > 0 {
		req["n"] = n
	}
	resp, err := b.send(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return formatResult(resp)
}
