package skate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Kind int

const (
	KindSymbol Kind = iota
	KindLiteral
	KindFloat
	KindList
	KindCallable
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindSymbol:
		return "SYMBOL"
	case KindLiteral:
		return "LITERAL"
	case KindFloat:
		return "FLOAT"
	case KindList:
		return "LIST"
	case KindCallable:
		return "FN"
	case KindNull:
		return "NULL"
	default:
		return fmt.Sprintf("KIND(%d)", int(k))
	}
}

// Builtin is a primitive operation. It receives the environment it runs in
// and its arguments, already evaluated left to right.
type Builtin func(env *Env, args []Expr) (Expr, error)

// Callable is a named builtin bound into an environment.
type Callable struct {
	Name string
	Fn   Builtin
}

// Expr is the single value type of the language. Values are never mutated
// after construction; only environment bindings change.
type Expr struct {
	Kind  Kind
	Str   string // Symbol name or Literal text
	Float float64
	List  []Expr
	Fn    *Callable
}

func SymbolExpr(name string) Expr  { return Expr{Kind: KindSymbol, Str: name} }
func LiteralExpr(text string) Expr { return Expr{Kind: KindLiteral, Str: text} }
func FloatExpr(f float64) Expr     { return Expr{Kind: KindFloat, Float: f} }
func NullExpr() Expr               { return Expr{Kind: KindNull} }

func ListExpr(items []Expr) Expr {
	owned := make([]Expr, len(items))
	copy(owned, items)
	return Expr{Kind: KindList, List: owned}
}

func FnExpr(name string, fn Builtin) Expr {
	return Expr{Kind: KindCallable, Fn: &Callable{Name: name, Fn: fn}}
}

func (x Expr) String() string {
	switch x.Kind {
	case KindSymbol, KindLiteral:
		return x.Str
	case KindFloat:
		return strconv.FormatFloat(x.Float, 'g', -1, 64)
	case KindList:
		parts := make([]string, len(x.List))
		for i, item := range x.List {
			if item.Kind == KindLiteral {
				parts[i] = "'" + item.Str + "'"
			} else {
				parts[i] = item.String()
			}
		}
		return "(" + strings.Join(parts, " ") + ")"
	case KindCallable:
		return fmt.Sprintf("<fn %s>", x.Fn.Name)
	case KindNull:
		return "null"
	default:
		return fmt.Sprintf("<unknown:%d>", x.Kind)
	}
}

// Render formats an expression the way the REPL prints results: the kind tag
// followed by the value, e.g. "(FLOAT, 3)". Callables are elided.
func (x Expr) Render() string {
	return fmt.Sprintf("(%s, %s)", x.Kind, x.displayValue())
}

func (x Expr) displayValue() string {
	if x.Kind == KindCallable {
		return "..."
	}
	return x.String()
}

// Equal compares two expressions structurally. Callables are equal only when
// they are the same binding.
func Equal(a, b Expr) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindSymbol, KindLiteral:
		return a.Str == b.Str
	case KindFloat:
		return a.Float == b.Float
	case KindList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !Equal(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	case KindCallable:
		return a.Fn == b.Fn
	case KindNull:
		return true
	}
	return false
}

// ToGo converts an expression to a JSON-friendly map for the wire protocol.
func (x Expr) ToGo() map[string]any {
	m := map[string]any{
		"kind": x.Kind.String(),
		"text": x.displayValue(),
	}
	switch x.Kind {
	case KindFloat:
		m["value"] = floatToGo(x.Float)
	case KindSymbol, KindLiteral:
		m["value"] = x.Str
	case KindList:
		items := make([]any, len(x.List))
		for i, item := range x.List {
			items[i] = item.ToGo()
		}
		m["value"] = items
	case KindCallable:
		m["value"] = x.Fn.Name
	default:
		m["value"] = nil
	}
	return m
}

// encoding/json rejects NaN and infinities; those travel as text.
func floatToGo(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return f
}
