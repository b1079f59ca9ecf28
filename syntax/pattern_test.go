package syntax

import (
	"testing"

	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/lexer"
	"github.com/dr8co/sema/parser"
)

func parsePattern(t *testing.T, source string) cell.Cell {
	t.Helper()
	p := parser.New(lexer.New(source))
	program, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parse %q: %v", source, err)
	}
	return program.(*cell.List).Car
}

func TestPatternLiteralAtoms(t *testing.T) {
	pattern, err := PatternFromCells(parsePattern(t, "(lda x)"))
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := pattern.Match(parsePattern(t, "(lda x)")); !ok {
		t.Error("identical atoms should match")
	}
	if _, ok := pattern.Match(parsePattern(t, "(lda y)")); ok {
		t.Error("different atoms should not match")
	}
	if _, ok := pattern.Match(parsePattern(t, "(lda)")); ok {
		t.Error("shorter call should not match")
	}
}

func TestPatternStatementCapture(t *testing.T) {
	pattern, err := PatternFromCells(parsePattern(t, "(lda # <x>)"))
	if err != nil {
		t.Fatal(err)
	}

	bindings := pattern.Bindings()
	if len(bindings) != 1 || bindings[0] != cell.AtomID("x") {
		t.Fatalf("bindings = %v", bindings)
	}

	matched, ok := pattern.Match(parsePattern(t, "(lda # 3)"))
	if !ok {
		t.Fatal("call should match")
	}
	if len(matched) != 1 || !matched[0].Evaluated || !cell.Equal(matched[0].Value, cell.Plain(3)) {
		t.Errorf("matched = %+v", matched)
	}
}

func TestPatternSymbolCapture(t *testing.T) {
	pattern, err := PatternFromCells(parsePattern(t, "(set { x } <v>)"))
	if err != nil {
		t.Fatal(err)
	}

	matched, ok := pattern.Match(parsePattern(t, "(set counter 2)"))
	if !ok {
		t.Fatal("call should match")
	}
	if matched[0].Evaluated {
		t.Error("{x} captures should not be evaluated")
	}
	if !cell.Equal(matched[0].Value, cell.Atom("counter")) {
		t.Errorf("symbol capture = %s", matched[0].Value.Inspect())
	}
}

func TestPatternNestedList(t *testing.T) {
	pattern, err := PatternFromCells(parsePattern(t, "(lda ( <indirect> , X ))"))
	if err != nil {
		t.Fatal(err)
	}

	matched, ok := pattern.Match(parsePattern(t, "(lda (2 , X))"))
	if !ok {
		t.Fatal("nested call should match")
	}
	if len(matched) != 1 || !cell.Equal(matched[0].Value, cell.Plain(2)) {
		t.Errorf("matched = %+v", matched)
	}

	if _, ok := pattern.Match(parsePattern(t, "(lda (2 , Y))")); ok {
		t.Error("different register should not match")
	}
}

func TestPatternLiterals(t *testing.T) {
	pattern, err := PatternFromCells(parsePattern(t, `(emit 3 "s" 'c' ())`))
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := pattern.Match(parsePattern(t, `(emit 3 "s" 'c' ())`)); !ok {
		t.Error("equal literals should match")
	}
	if _, ok := pattern.Match(parsePattern(t, `(emit 4 "s" 'c' ())`)); ok {
		t.Error("different number should not match")
	}
}

func TestPatternEscapedBrackets(t *testing.T) {
	// A doubled bracket matches the literal bracket character.
	pattern, err := PatternFromCells(parsePattern(t, "(cmp < < <x>)"))
	if err != nil {
		t.Fatal(err)
	}

	matched, ok := pattern.Match(parsePattern(t, "(cmp < 3)"))
	if !ok {
		t.Fatal("escaped bracket should match a literal '<'")
	}
	if len(matched) != 1 || !cell.Equal(matched[0].Value, cell.Plain(3)) {
		t.Errorf("matched = %+v", matched)
	}
}
