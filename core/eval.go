package skate

import "fmt"

// Eval evaluates x against env. Floats and literals evaluate to themselves,
// symbols to their binding, and lists to the result of applying their head to
// their eagerly evaluated tail. The first failure aborts the whole walk.
func Eval(x Expr, env *Env) (Expr, error) {
	switch x.Kind {
	case KindFloat, KindLiteral:
		return x, nil
	case KindSymbol:
		return resolveSymbol(x.Str, env)
	case KindList:
		return evalList(x, env)
	case KindCallable:
		return Expr{}, ErrUnexpectedCallable
	case KindNull:
		return Expr{}, ErrCannotEvaluateNull
	default:
		return Expr{}, fmt.Errorf("unknown expression kind: %d", x.Kind)
	}
}

func resolveSymbol(name string, env *Env) (Expr, error) {
	if x, ok := env.Lookup(name); ok {
		return x, nil
	}
	return Expr{}, &UnboundSymbolError{Name: name}
}

func evalList(x Expr, env *Env) (Expr, error) {
	if len(x.List) == 0 {
		return Expr{}, ErrEmptyList
	}

	head, err := Eval(x.List[0], env)
	if err != nil {
		return Expr{}, err
	}
	if head.Kind != KindCallable {
		return Expr{}, &NotCallableError{Kind: head.Kind}
	}

	args := make([]Expr, len(x.List)-1)
	for i, arg := range x.List[1:] {
		val, err := Eval(arg, env)
		if err != nil {
			return Expr{}, err
		}
		args[i] = val
	}
	return head.Fn.Fn(env, args)
}

// EvalString parses the first expression in input and evaluates it.
func EvalString(input string, env *Env) (Expr, error) {
	x, err := Read(input)
	if err != nil {
		return Expr{}, err
	}
	return Eval(x, env)
}

// EvalAll evaluates every expression in input in order and returns the last
// result. It stops at the first error.
func EvalAll(input string, env *Env) (Expr, error) {
	exprs, err := ReadAll(input)
	if err != nil {
		return Expr{}, err
	}
	result := NullExpr()
	for _, x := range exprs {
		result, err = Eval(x, env)
		if err != nil {
			return Expr{}, err
		}
	}
	return result, nil
}
