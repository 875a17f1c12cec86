package skate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxDepth bounds list nesting. Deeper input fails with ErrTooDeep.
const MaxDepth = 10000

// Parse reads one expression from the front of tokens and returns it along
// with the tokens it did not consume.
func Parse(tokens []string) (Expr, []string, error) {
	return parse(tokens, 0)
}

// ParseSequence reads list items up to and including the closing ')'. The
// opening '(' must already have been consumed.
func ParseSequence(tokens []string) (Expr, []string, error) {
	return parseSequence(tokens, 1)
}

func parse(tokens []string, depth int) (Expr, []string, error) {
	if len(tokens) == 0 {
		return Expr{}, nil, ErrUnexpectedEOF
	}
	head, rest := tokens[0], tokens[1:]
	switch head {
	case "(":
		return parseSequence(rest, depth+1)
	case ")":
		return Expr{}, nil, ErrUnmatchedCloseParen
	}
	x, err := parseAtom(head)
	if err != nil {
		return Expr{}, nil, err
	}
	return x, rest, nil
}

func parseSequence(tokens []string, depth int) (Expr, []string, error) {
	if depth > MaxDepth {
		return Expr{}, nil, ErrTooDeep
	}
	var items []Expr
	for {
		if len(tokens) == 0 {
			return Expr{}, nil, ErrUnexpectedEOF
		}
		if tokens[0] == ")" {
			return ListExpr(items), tokens[1:], nil
		}
		item, rest, err := parse(tokens, depth)
		if err != nil {
			return Expr{}, nil, err
		}
		items = append(items, item)
		tokens = rest
	}
}

func parseAtom(token string) (Expr, error) {
	if token[0] >= '0' && token[0] <= '9' {
		f, err := strconv.ParseFloat(token, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return Expr{}, &InvalidNumberError{Token: token}
		}
		return FloatExpr(f), nil
	}

	if token[0] == '\'' {
		var name strings.Builder
		for _, ch := range token[1:] {
			if ch == '\'' {
				return LiteralExpr(name.String()), nil
			}
			name.WriteRune(ch)
		}
		return Expr{}, fmt.Errorf("%w: %s", ErrUnterminatedLiteral, token)
	}

	return SymbolExpr(token), nil
}

// Read parses the first expression in text. Tokens after it are ignored.
func Read(text string) (Expr, error) {
	x, _, err := Parse(Tokenize(text))
	return x, err
}

// ReadStrict is Read, but fails with ErrTrailingTokens if anything follows
// the first expression.
func ReadStrict(text string) (Expr, error) {
	x, rest, err := Parse(Tokenize(text))
	if err != nil {
		return Expr{}, err
	}
	if len(rest) > 0 {
		return Expr{}, fmt.Errorf("%w: %s", ErrTrailingTokens, strings.Join(rest, " "))
	}
	return x, nil
}

// ReadAll parses every expression in text, in order.
func ReadAll(text string) ([]Expr, error) {
	tokens := Tokenize(text)
	var exprs []Expr
	for len(tokens) > 0 {
		x, rest, err := Parse(tokens)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, x)
		tokens = rest
	}
	return exprs, nil
}
