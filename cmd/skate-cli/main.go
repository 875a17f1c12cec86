package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	skate "github.com/rphilander/skate/core"
)

func main() {
	sockPath := os.Getenv("SKATE_SOCK")
	if sockPath == "" {
		sockPath = "/tmp/skate.sock"
	}

	msg, err := buildRequest(os.Args[1:], os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Connect to the session server
	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := skate.WriteMsg(conn, msg); err != nil {
		fmt.Fprintf(os.Stderr, "send: %v\n", err)
		os.Exit(1)
	}
	resp, err := skate.ReadMsg(conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "receive: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "format response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
	if ok, _ := resp["ok"].(bool); !ok {
		os.Exit(1)
	}
}

// buildRequest turns argv into an eval request, or reads a JSON request from
// stdin when no arguments are given. A missing id is filled in.
func buildRequest(args []string, stdin io.Reader) (map[string]any, error) {
	var msg map[string]any
	if len(args) > 0 {
		msg = map[string]any{"op": "eval", "expr": strings.Join(args, " ")}
	} else {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
		if msg == nil {
			return nil, fmt.Errorf("parse JSON: request must be an object")
		}
	}
	if _, ok := msg["id"]; !ok {
		msg["id"] = skate.NextID()
	}
	return msg, nil
}
