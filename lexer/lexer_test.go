package lexer

import (
	"testing"

	"github.com/dr8co/sema/token"
)

func TestNextToken(t *testing.T) {
	input := `; a comment
(def nine $9fu8)
(d 1101b4 42u8 7i4 $c001 1234)
(s (lda #<x>))
(if (=t) (1) (2))
(= "hello\n" 'x')
(a . b)`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.LPAREN, "("},
		{token.ATOM, "def"},
		{token.ATOM, "nine"},
		{token.HEX, "$9fu8"},
		{token.RPAREN, ")"},

		{token.LPAREN, "("},
		{token.ATOM, "d"},
		{token.BITS, "1101b4"},
		{token.INT, "42u8"},
		{token.INT, "7i4"},
		{token.HEX, "$c001"},
		{token.INT, "1234"},
		{token.RPAREN, ")"},

		{token.LPAREN, "("},
		{token.ATOM, "s"},
		{token.LPAREN, "("},
		{token.ATOM, "lda"},
		{token.ATOM, "#"},
		{token.ATOM, "<"},
		{token.ATOM, "x"},
		{token.ATOM, ">"},
		{token.RPAREN, ")"},
		{token.RPAREN, ")"},

		{token.LPAREN, "("},
		{token.ATOM, "if"},
		{token.LPAREN, "("},
		{token.BOOLEAN, "=t"},
		{token.RPAREN, ")"},
		{token.LPAREN, "("},
		{token.INT, "1"},
		{token.RPAREN, ")"},
		{token.LPAREN, "("},
		{token.INT, "2"},
		{token.RPAREN, ")"},
		{token.RPAREN, ")"},

		{token.LPAREN, "("},
		{token.ATOM, "="},
		{token.STRING, "hello\n"},
		{token.CHAR, "x"},
		{token.RPAREN, ")"},

		{token.LPAREN, "("},
		{token.ATOM, "a"},
		{token.ATOM, "."},
		{token.ATOM, "b"},
		{token.RPAREN, ")"},

		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestBooleanVersusEquals(t *testing.T) {
	// "=t" is a boolean, "=" followed by an atom is the comparison atom.
	l := New("=t =f (= 2 2) =tx")

	expected := []struct {
		typ     token.Type
		literal string
	}{
		{token.BOOLEAN, "=t"},
		{token.BOOLEAN, "=f"},
		{token.LPAREN, "("},
		{token.ATOM, "="},
		{token.INT, "2"},
		{token.INT, "2"},
		{token.RPAREN, ")"},
		{token.ATOM, "="},
		{token.ATOM, "tx"},
		{token.EOF, ""},
	}

	for i, tt := range expected {
		tok := l.NextToken()
		if tok.Type != tt.typ || tok.Literal != tt.literal {
			t.Fatalf("tests[%d] - got %q %q, want %q %q", i, tok.Type, tok.Literal, tt.typ, tt.literal)
		}
	}
}

func TestTokenPositions(t *testing.T) {
	l := New("(a\n b)")

	tok := l.NextToken() // (
	if tok.Line != 1 || tok.Column != 1 {
		t.Errorf("'(' at %d:%d, want 1:1", tok.Line, tok.Column)
	}
	l.NextToken() // a
	tok = l.NextToken() // b
	if tok.Line != 2 {
		t.Errorf("'b' on line %d, want 2", tok.Line)
	}
}
