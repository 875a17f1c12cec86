package skate

// Builtins returns the primitive callables every global environment starts
// with.
func Builtins() map[string]Builtin {
	return map[string]Builtin{
		"+":    builtinAdd,
		"-":    builtinSub,
		"def":  builtinDef,
		"echo": builtinEcho,
		"env":  builtinEnv,
		"exit": builtinExit,
	}
}

// floatArgs checks that every argument is a Float.
func floatArgs(name string, args []Expr) ([]float64, error) {
	fs := make([]float64, len(args))
	for i, a := range args {
		if a.Kind != KindFloat {
			return nil, &TypeMismatchError{Builtin: name, Want: KindFloat, Got: a.Kind}
		}
		fs[i] = a.Float
	}
	return fs, nil
}

func builtinAdd(_ *Env, args []Expr) (Expr, error) {
	fs, err := floatArgs("+", args)
	if err != nil {
		return Expr{}, err
	}
	var sum float64
	for _, f := range fs {
		sum += f
	}
	return FloatExpr(sum), nil
}

// builtinSub: (- a b c) is 0 - a - b - c. The accumulator starts at zero,
// not at the first argument.
func builtinSub(_ *Env, args []Expr) (Expr, error) {
	fs, err := floatArgs("-", args)
	if err != nil {
		return Expr{}, err
	}
	var acc float64
	for _, f := range fs {
		acc -= f
	}
	return FloatExpr(acc), nil
}

// builtinDef: (def 'name' value) binds name and returns value. Both checks
// run before the binding so a failed def leaves env untouched.
func builtinDef(env *Env, args []Expr) (Expr, error) {
	if len(args) != 2 {
		return Expr{}, &ArityMismatchError{Builtin: "def", Want: 2, Got: len(args)}
	}
	if args[0].Kind != KindLiteral {
		return Expr{}, &TypeMismatchError{Builtin: "def", Want: KindLiteral, Got: args[0].Kind}
	}
	env.Bind(args[0].Str, args[1])
	return args[1], nil
}

// builtinEcho evaluates its already-evaluated argument a second time.
func builtinEcho(env *Env, args []Expr) (Expr, error) {
	if len(args) != 1 {
		return Expr{}, &ArityMismatchError{Builtin: "echo", Want: 1, Got: len(args)}
	}
	return Eval(args[0], env)
}

func builtinEnv(env *Env, _ []Expr) (Expr, error) {
	if err := env.Dump(env.out()); err != nil {
		return Expr{}, err
	}
	return NullExpr(), nil
}

func builtinExit(_ *Env, _ []Expr) (Expr, error) {
	return Expr{}, ErrExit
}
