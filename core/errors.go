package skate

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedEOF       = errors.New("unexpected end of input")
	ErrUnmatchedCloseParen = errors.New("unexpected ')'")
	ErrUnterminatedLiteral = errors.New("unterminated literal, expected closing quote")
	ErrTrailingTokens      = errors.New("unexpected input after expression")
	ErrTooDeep             = errors.New("expression nested too deeply")

	ErrEmptyList          = errors.New("cannot evaluate empty list")
	ErrUnexpectedCallable = errors.New("unexpected function")
	ErrCannotEvaluateNull = errors.New("cannot evaluate null")

	// ErrExit is returned by the exit builtin. Drivers stop reading input
	// when they see it; it is never a failure of the expression itself.
	ErrExit = errors.New("exit requested")
)

// InvalidNumberError reports a token that starts with a digit but is not a
// valid float.
type InvalidNumberError struct {
	Token string
}

func (e *InvalidNumberError) Error() string {
	return fmt.Sprintf("invalid number: %s", e.Token)
}

type UnboundSymbolError struct {
	Name string
}

func (e *UnboundSymbolError) Error() string {
	return fmt.Sprintf("unbound symbol: %s", e.Name)
}

// NotCallableError is returned when the head of a list does not evaluate to
// a callable.
type NotCallableError struct {
	Kind Kind
}

func (e *NotCallableError) Error() string {
	return fmt.Sprintf("expected first element of list to be FN, got %s", e.Kind)
}

type TypeMismatchError struct {
	Builtin string
	Want    Kind
	Got     Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Builtin, e.Want, e.Got)
}

type ArityMismatchError struct {
	Builtin string
	Want    int
	Got     int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %d args, got %d", e.Builtin, e.Want, e.Got)
}
