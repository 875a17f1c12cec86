package skate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sort"
	"sync"
)

// Server exposes a Session over a unix socket using the framed JSON wire
// protocol. Each connection may send any number of requests.
type Server struct {
	session  *Session
	listener net.Listener

	mu    sync.Mutex // protects conns
	conns map[net.Conn]struct{}
}

// NewServer listens on sockPath, removing any stale socket file first.
func NewServer(session *Session, sockPath string) (*Server, error) {
	os.Remove(sockPath)

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	return &Server{
		session:  session,
		listener: listener,
		conns:    make(map[net.Conn]struct{}),
	}, nil
}

// Addr returns the listening socket address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until Close is called.
func (s *Server) Serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()
		go s.handleConnection(conn)
	}
}

// Close stops accepting and drops open connections. The session is left
// running; its owner closes it.
func (s *Server) Close() error {
	err := s.listener.Close()
	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()
	return err
}

func (s *Server) handleConnection(conn net.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		msg, err := ReadMsg(conn)
		if err != nil {
			if err != io.EOF && !errors.Is(err, net.ErrClosed) {
				log.Printf("read client message: %v", err)
			}
			return
		}

		resp := s.HandleRequest(context.Background(), msg)
		if err := WriteMsg(conn, resp); err != nil {
			log.Printf("write client response: %v", err)
			return
		}
	}
}

// HandleRequest dispatches one decoded request by its "op" field.
func (s *Server) HandleRequest(ctx context.Context, msg map[string]any) map[string]any {
	id, _ := msg["id"].(string)

	op, _ := msg["op"].(string)
	switch op {
	case "":
		return manual(id)
	case "eval":
		return s.handleEval(ctx, id, msg)
	case "env":
		return s.handleEnv(ctx, id)
	case "traces":
		return s.handleTraces(id, msg)
	default:
		return errorResponse(id, fmt.Sprintf("unknown op: %s", op))
	}
}

func manual(id string) map[string]any {
	return map[string]any{
		"id": id,
		"ok": true,
		"value": map[string]any{
			"name":    "skate",
			"version": Version,
			"ops": map[string]any{
				"eval":   "Evaluate one expression. Params: expr (string)",
				"env":    "List every binding in the session environment.",
				"traces": "Recent evaluations, oldest first. Params: n (number, optional)",
			},
			"builtins": []any{"+", "-", "def", "echo", "env", "exit"},
		},
	}
}

func (s *Server) handleEval(ctx context.Context, id string, msg map[string]any) map[string]any {
	expr, ok := msg["expr"].(string)
	if !ok {
		return errorResponse(id, "eval: missing 'expr' string")
	}
	res, err := s.session.Eval(ctx, expr)
	if err != nil {
		resp := errorResponse(id, err.Error())
		if res.Output != "" {
			resp["output"] = res.Output
		}
		return resp
	}
	return map[string]any{
		"id":     id,
		"ok":     true,
		"value":  res.Value.ToGo(),
		"output": res.Output,
	}
}

func (s *Server) handleEnv(ctx context.Context, id string) map[string]any {
	bindings, err := s.session.Bindings(ctx)
	if err != nil {
		return errorResponse(id, err.Error())
	}
	return map[string]any{"id": id, "ok": true, "value": bindingsToGo(bindings)}
}

func (s *Server) handleTraces(id string, msg map[string]any) map[string]any {
	n := 0
	if raw, exists := msg["n"]; exists {
		f, ok := raw.(float64)
		if !ok {
			return errorResponse(id, "traces: 'n' must be a number")
		}
		n = int(f)
	}
	return map[string]any{"id": id, "ok": true, "value": tracesToGo(s.session.Traces(n))}
}

func bindingsToGo(bindings map[string]Expr) []any {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	result := make([]any, 0, len(bindings))
	for _, name := range names {
		entry := bindings[name].ToGo()
		entry["name"] = name
		result = append(result, entry)
	}
	return result
}

func tracesToGo(traces []Trace) []any {
	result := make([]any, len(traces))
	for i := range traces {
		result[i] = traces[i].ToGo()
	}
	return result
}

func errorResponse(id, errMsg string) map[string]any {
	return map[string]any{"id": id, "ok": false, "error": errMsg}
}
