package skate

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultMaxTraces = 1000

var ErrSessionClosed = errors.New("session closed")

// Options configures a Session.
type Options struct {
	Strict    bool     // reject input with tokens after the first expression
	MaxTraces int      // trace history cap; 0 means the default
	Recorder  Recorder // optional; receives every trace
}

// Result is the outcome of a successful evaluation.
type Result struct {
	Value  Expr
	Output string // text written by builtins such as env
}

// Session is the actor that owns one global environment. Every read or
// write of the environment happens on the session's goroutine, so a Session
// is safe to share between connections.
type Session struct {
	ID string

	env       *Env
	out       bytes.Buffer
	strict    bool
	recorder  Recorder
	requests  chan sessionRequest
	done      chan struct{}
	closeOnce sync.Once

	mu        sync.Mutex // protects traces
	traces    []Trace
	maxTraces int
}

type sessionRequest struct {
	ctx  context.Context
	fn   func()
	done chan error // receives ctx.Err() if fn was skipped, else nil
}

func NewSession(opts Options) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		strict:    opts.Strict,
		recorder:  opts.Recorder,
		requests:  make(chan sessionRequest, 64),
		done:      make(chan struct{}),
		maxTraces: opts.MaxTraces,
	}
	if s.maxTraces <= 0 {
		s.maxTraces = defaultMaxTraces
	}
	s.env = NewGlobalEnv(&s.out)
	go s.actorLoop()
	return s
}

// actorLoop is the single goroutine that owns the environment.
func (s *Session) actorLoop() {
	for {
		select {
		case req := <-s.requests:
			// A caller that gave up while queued was already told it failed.
			err := req.ctx.Err()
			if err == nil {
				req.fn()
			}
			req.done <- err
		case <-s.done:
			return
		}
	}
}

// do runs fn on the actor goroutine and waits for it. A cancelled ctx stops
// the wait. fn is skipped if ctx is done before the actor reaches it, and
// runs to completion once started.
func (s *Session) do(ctx context.Context, fn func()) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	req := sessionRequest{ctx: ctx, fn: fn, done: make(chan error, 1)}
	select {
	case s.requests <- req:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.done:
		return err
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Eval parses and evaluates one line of input. Evaluation errors are
// returned as err alongside the captured output in Result.
func (s *Session) Eval(ctx context.Context, input string) (Result, error) {
	var (
		res     Result
		evalErr error
	)
	err := s.do(ctx, func() {
		res, evalErr = s.evalLocked(input)
	})
	if err != nil {
		return Result{}, err
	}
	return res, evalErr
}

func (s *Session) evalLocked(input string) (Result, error) {
	s.out.Reset()
	trace := &Trace{
		Input:     input,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	val, err := s.read(input)
	if err == nil {
		val, err = Eval(val, s.env)
	}
	res := Result{Value: val, Output: s.out.String()}
	trace.Output = res.Output

	if err != nil {
		trace.Error = err.Error()
		s.appendTrace(trace)
		return Result{Output: res.Output}, err
	}
	trace.Result = val
	s.appendTrace(trace)
	return res, nil
}

func (s *Session) read(input string) (Expr, error) {
	if s.strict {
		return ReadStrict(input)
	}
	return Read(input)
}

// Load evaluates every expression in source, stopping at the first error.
func (s *Session) Load(ctx context.Context, source string) (Result, error) {
	var (
		res     Result
		evalErr error
	)
	err := s.do(ctx, func() {
		s.out.Reset()
		var val Expr
		val, evalErr = EvalAll(source, s.env)
		res = Result{Value: val, Output: s.out.String()}
	})
	if err != nil {
		return Result{}, err
	}
	return res, evalErr
}

// Lookup returns the current binding of name.
func (s *Session) Lookup(ctx context.Context, name string) (Expr, bool, error) {
	var (
		x  Expr
		ok bool
	)
	err := s.do(ctx, func() {
		x, ok = s.env.Lookup(name)
	})
	return x, ok, err
}

// Names returns every bound name, sorted.
func (s *Session) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := s.do(ctx, func() {
		names = s.env.Names()
	})
	return names, err
}

// Bindings returns a snapshot of the environment, keyed by name.
func (s *Session) Bindings(ctx context.Context) (map[string]Expr, error) {
	var snapshot map[string]Expr
	err := s.do(ctx, func() {
		snapshot = make(map[string]Expr, s.env.Len())
		for _, name := range s.env.Names() {
			snapshot[name], _ = s.env.Lookup(name)
		}
	})
	return snapshot, err
}

// Dump returns the environment in the same form the env builtin prints,
// without recording a trace.
func (s *Session) Dump(ctx context.Context) (string, error) {
	var (
		buf     bytes.Buffer
		dumpErr error
	)
	err := s.do(ctx, func() {
		dumpErr = s.env.Dump(&buf)
	})
	if err != nil {
		return "", err
	}
	return buf.String(), dumpErr
}

// Traces returns the last n traces, oldest first. n <= 0 returns all.
func (s *Session) Traces(n int) []Trace {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.traces) {
		n = len(s.traces)
	}
	out := make([]Trace, n)
	copy(out, s.traces[len(s.traces)-n:])
	return out
}

// appendTrace adds a trace, enforces the maxTraces cap, and hands the trace
// to the recorder.
func (s *Session) appendTrace(t *Trace) {
	s.mu.Lock()
	s.traces = append(s.traces, *t)
	if len(s.traces) > s.maxTraces {
		// Drop oldest traces
		excess := len(s.traces) - s.maxTraces
		s.traces = s.traces[excess:]
	}
	s.mu.Unlock()

	if s.recorder != nil {
		if err := s.recorder.Record(s.ID, *t); err != nil {
			log.Printf("session %s: record trace: %v", s.ID, err)
		}
	}
}

// Close stops the actor. Pending and future calls return ErrSessionClosed.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
