package skate

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"(+ 1 2)", []string{"(", "+", "1", "2", ")"}},
		{"  ((a))  ", []string{"(", "(", "a", ")", ")"}},
		{"(def 'x' 42)", []string{"(", "def", "'x'", "42", ")"}},
		{"a\tb\nc", []string{"a", "b", "c"}},
		{"'hello world'", []string{"'hello", "world'"}},
	}
	for _, tt := range tests {
		got := Tokenize(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("Tokenize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTokenizeEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		if got := Tokenize(input); len(got) != 0 {
			t.Fatalf("Tokenize(%q) = %q, want no tokens", input, got)
		}
	}
}

func TestTokenizeNoEmptyTokens(t *testing.T) {
	for _, input := range []string{"(()) ( )", "(a(b)c)", "  x  (  y  )  "} {
		for _, tok := range Tokenize(input) {
			if tok == "" {
				t.Fatalf("Tokenize(%q) produced an empty token", input)
			}
		}
	}
}

func testRead(t *testing.T, input string, expected Expr) {
	t.Helper()
	x, err := Read(input)
	if err != nil {
		t.Fatalf("read %q: %v", input, err)
	}
	if !Equal(x, expected) {
		t.Fatalf("read %q: expected %s, got %s", input, expected, x)
	}
}

func TestReadAtoms(t *testing.T) {
	testRead(t, "42", FloatExpr(42))
	testRead(t, "3.5", FloatExpr(3.5))
	testRead(t, "1e3", FloatExpr(1000))
	testRead(t, "foo", SymbolExpr("foo"))
	testRead(t, "+", SymbolExpr("+"))
	testRead(t, "-5", SymbolExpr("-5"))
	testRead(t, ".5", SymbolExpr(".5"))
	testRead(t, "'x'", LiteralExpr("x"))
	testRead(t, "''", LiteralExpr(""))
}

func TestReadLiteralStopsAtClosingQuote(t *testing.T) {
	// Characters after the closing quote are dropped.
	testRead(t, "'ab'cd", LiteralExpr("ab"))
}

func TestReadLists(t *testing.T) {
	testRead(t, "()", ListExpr(nil))
	testRead(t, "(+ 1 2)", ListExpr([]Expr{SymbolExpr("+"), FloatExpr(1), FloatExpr(2)}))
	testRead(t, "(a (b c) ())", ListExpr([]Expr{
		SymbolExpr("a"),
		ListExpr([]Expr{SymbolExpr("b"), SymbolExpr("c")}),
		ListExpr(nil),
	}))
}

func TestReadLenientIgnoresTrailingTokens(t *testing.T) {
	testRead(t, "1 2 3", FloatExpr(1))
	testRead(t, "(a) )", ListExpr([]Expr{SymbolExpr("a")}))
}

func TestReadOverflowKeepsInfinity(t *testing.T) {
	x, err := Read("1e400")
	if err != nil {
		t.Fatalf("read 1e400: %v", err)
	}
	if x.Kind != KindFloat || !math.IsInf(x.Float, 1) {
		t.Fatalf("read 1e400: expected +Inf float, got %s", x.Render())
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"", ErrUnexpectedEOF},
		{"(", ErrUnexpectedEOF},
		{"(+ 1 (2", ErrUnexpectedEOF},
		{")", ErrUnmatchedCloseParen},
		{"'abc", ErrUnterminatedLiteral},
		{"(def 'x 1)", ErrUnterminatedLiteral},
		{strings.Repeat("(", 1<<20), ErrTooDeep},
		{strings.Repeat("(", MaxDepth+1) + strings.Repeat(")", MaxDepth+1), ErrTooDeep},
	}
	for _, tt := range tests {
		_, err := Read(tt.input)
		if !errors.Is(err, tt.want) {
			t.Fatalf("read %q: expected %v, got %v", tt.input, tt.want, err)
		}
	}
}

func TestReadInvalidNumber(t *testing.T) {
	for _, input := range []string{"1abc", "2.3.4", "0x"} {
		_, err := Read(input)
		var numErr *InvalidNumberError
		if !errors.As(err, &numErr) {
			t.Fatalf("read %q: expected InvalidNumberError, got %v", input, err)
		}
		if numErr.Token != input {
			t.Fatalf("read %q: error names token %q", input, numErr.Token)
		}
	}
}

func TestReadStrict(t *testing.T) {
	x, err := ReadStrict("(+ 1 2)")
	if err != nil {
		t.Fatalf("strict read: %v", err)
	}
	if x.Kind != KindList || len(x.List) != 3 {
		t.Fatalf("strict read: unexpected %s", x)
	}

	_, err = ReadStrict("1 2")
	if !errors.Is(err, ErrTrailingTokens) {
		t.Fatalf("expected ErrTrailingTokens, got %v", err)
	}
}

func TestParseReturnsRemainder(t *testing.T) {
	x, rest, err := Parse(Tokenize("(a b) c )"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if x.String() != "(a b)" {
		t.Fatalf("parse: got %s", x)
	}
	if !reflect.DeepEqual(rest, []string{"c", ")"}) {
		t.Fatalf("parse: remainder %q", rest)
	}
}

func TestReadAll(t *testing.T) {
	exprs, err := ReadAll("(def 'x' 1)\n x\n 'y'")
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(exprs) != 3 {
		t.Fatalf("expected 3 expressions, got %d", len(exprs))
	}
	if !Equal(exprs[2], LiteralExpr("y")) {
		t.Fatalf("third expression: got %s", exprs[2].Render())
	}

	if _, err := ReadAll("x )"); !errors.Is(err, ErrUnmatchedCloseParen) {
		t.Fatalf("expected ErrUnmatchedCloseParen, got %v", err)
	}

	exprs, err = ReadAll("   ")
	if err != nil || len(exprs) != 0 {
		t.Fatalf("blank input: got %d exprs, err %v", len(exprs), err)
	}
}

func TestReadNestingAtLimit(t *testing.T) {
	x, err := Read(strings.Repeat("(", MaxDepth) + strings.Repeat(")", MaxDepth))
	if err != nil {
		t.Fatalf("read %d nested lists: %v", MaxDepth, err)
	}
	depth := 0
	for x.Kind == KindList && len(x.List) > 0 {
		x = x.List[0]
		depth++
	}
	if depth != MaxDepth-1 {
		t.Fatalf("expected %d enclosing lists, got %d", MaxDepth-1, depth)
	}
}

func TestParseSequenceCountsOpenList(t *testing.T) {
	tokens := Tokenize(strings.Repeat("(", MaxDepth) + strings.Repeat(")", MaxDepth+1))
	if _, _, err := ParseSequence(tokens); !errors.Is(err, ErrTooDeep) {
		t.Fatalf("expected ErrTooDeep, got %v", err)
	}
}
