package skate

import (
	"fmt"
	"io"
	"sort"
)

// Env maps symbol names to expressions. Builtins that read or change
// bindings receive the one Env they were invoked in, never a copy.
//
// Env has no locking. Hosts that evaluate from several goroutines go
// through a Session, which owns its Env from a single goroutine.
type Env struct {
	bindings map[string]Expr

	// Out receives anything builtins print. Nil discards it.
	Out io.Writer
}

func NewEnv(out io.Writer) *Env {
	return &Env{
		bindings: make(map[string]Expr),
		Out:      out,
	}
}

// NewGlobalEnv returns an environment seeded with Builtins.
func NewGlobalEnv(out io.Writer) *Env {
	env := NewEnv(out)
	for name, fn := range Builtins() {
		env.Bind(name, FnExpr(name, fn))
	}
	return env
}

func (e *Env) Lookup(name string) (Expr, bool) {
	x, ok := e.bindings[name]
	return x, ok
}

// Bind inserts or overwrites a binding.
func (e *Env) Bind(name string, x Expr) {
	e.bindings[name] = x
}

// Names returns every bound name, sorted.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Env) Len() int {
	return len(e.bindings)
}

// Dump writes one "name = (KIND, value)" line per binding, sorted by name.
func (e *Env) Dump(w io.Writer) error {
	for _, name := range e.Names() {
		if _, err := fmt.Fprintf(w, "%s = %s\n", name, e.bindings[name].Render()); err != nil {
			return err
		}
	}
	return nil
}

func (e *Env) out() io.Writer {
	if e.Out == nil {
		return io.Discard
	}
	return e.Out
}
