// Package skate implements a small Lisp-like expression language: a
// tokenizer, a recursive parser, and an evaluator working against a single
// mutable environment of builtins and user bindings.
//
// The language has symbols, single-quoted literals, floats, lists, builtin
// callables, and null. A list evaluates by applying its head, which must be
// a callable, to its eagerly evaluated tail:
//
//	(def 'x' 42)   ; binds x, returns 42
//	(+ x 1 2)      ; 45
//	(- 5 2 1)      ; -8, subtraction accumulates from zero
//
// Session wraps an environment in an actor goroutine so several clients can
// share it, and Server exposes a Session over a unix socket or HTTP.
package skate

const Version = "0.1.0"
