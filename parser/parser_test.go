package parser

import (
	"testing"

	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/lexer"
)

func parseOne(t *testing.T, input string) cell.Cell {
	t.Helper()
	p := New(lexer.New(input))
	program, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parse error for %q: %v", input, err)
	}
	list, ok := program.(*cell.List)
	if !ok {
		t.Fatalf("program for %q is not a list: %s", input, program.Inspect())
	}
	return list.Car
}

func TestParseRoundTrip(t *testing.T) {
	// Printing a parsed cell and re-parsing it yields an equal cell.
	inputs := []string{
		"(def a (fun (x) x))",
		"(1 2 3)",
		"(a . b)",
		`("hello" 'x' =t =f ())`,
		"(d $9fu8 $1c42u16)",
		"(lda # 3)",
	}

	for _, input := range inputs {
		first := parseOne(t, input)
		second := parseOne(t, first.Inspect())
		if !cell.Equal(first, second) {
			t.Errorf("round trip of %q: %s != %s", input, first.Inspect(), second.Inspect())
		}
	}
}

func TestParseNumbers(t *testing.T) {
	tests := []struct {
		input    string
		expected cell.Cell
	}{
		{"1234", cell.Plain(1234)},
		{"$c001", cell.Plain(0xc001)},
		{"$9fu8", cell.Bits(8, 0x9f)},
		{"$1c42u16", cell.Bits(16, 0x1c42)},
		{"42u8", cell.Bits(8, 42)},
		{"1101b4", cell.Bits(4, 0b1101)},
		{"7i4", cell.SBits(4, 7)},
	}

	for _, tt := range tests {
		got := parseOne(t, tt.input)
		number, ok := got.(*cell.Number)
		if !ok {
			t.Fatalf("parse %q: not a number: %s", tt.input, got.Inspect())
		}
		want := tt.expected.(*cell.Number)
		if number.Kind != want.Kind || number.Bits != want.Bits || number.Uval != want.Uval || number.Ival != want.Ival {
			t.Errorf("parse %q = %s, want %s", tt.input, number.Inspect(), want.Inspect())
		}
	}
}

func TestParseDotted(t *testing.T) {
	got := parseOne(t, "(a . b)")
	pair, ok := got.(*cell.List)
	if !ok {
		t.Fatalf("not a pair: %s", got.Inspect())
	}
	if !cell.Equal(pair.Car, cell.Atom("a")) || !cell.Equal(pair.Cdr, cell.Atom("b")) {
		t.Errorf("dotted pair = %s", got.Inspect())
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"(a", ")", "(a . b c)"} {
		p := New(lexer.New(input))
		if _, err := p.ParseProgram(); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestParseErrorPosition(t *testing.T) {
	p := New(lexer.New("(a\n"))
	_, err := p.ParseProgram()
	parseErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if parseErr.Line == 0 {
		t.Error("error should carry a position")
	}
}
