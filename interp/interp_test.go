package interp

import (
	"strings"
	"testing"

	"github.com/dr8co/sema/bitcode"
	"github.com/dr8co/sema/cell"
)

// eval runs a program in a fresh session and returns the final value.
func eval(t *testing.T, source string) cell.Cell {
	t.Helper()
	session := NewSession()
	result, err := session.Eval(source)
	if err != nil {
		t.Fatalf("eval %q: %v", source, err)
	}
	return result
}

// evalString runs a program and returns the final value's printed form.
func evalString(t *testing.T, source string) string {
	t.Helper()
	return eval(t, source).Inspect()
}

func TestEvalResults(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		// Constants and quoting
		{"42", "42"},
		{"(quote (1 2 3))", "(1 2 3)"},

		// Definitions
		{"(def x 1) x", "1"},
		{"(def x 1) (def y 2) x", "1"},
		{"(def x 1) (def y 2) y", "2"},

		// Lists
		{"(list 1 2 3)", "(1 2 3)"},
		{"(cons 1 (list 2 3))", "(1 2 3)"},
		{"(car (list 1 2))", "1"},
		{"(cdr (list 1 2))", "(2)"},
		{"(list ((fun (x) x) 1) 2 3)", "(1 2 3)"},

		// Arithmetic
		{"(+ 4 10 6)", "20"},
		{"(- 6 3 2)", "1"},
		{"(- 6)", "-6i3"},
		{"(* 6 3 2)", "36"},
		{"(/ 100 3 2)", "16"},

		// Comparison
		{"(> 2 1)", "=t"},
		{"(> 1 2)", "=f"},
		{"(> 2 2)", "=f"},
		{"(>= 2 2)", "=t"},
		{"(< 1 2)", "=t"},
		{"(<= 2 2)", "=t"},
		{"(= 2 2)", "=t"},
		{"(!= 1 2)", "=t"},
		{"(> 1 ())", "=t"},
		{`(= "hello" "hello")`, "=t"},

		// Bit construction
		{"(bits 8 $ae)", "$aeu8"},
		{"(bits 16 $fee7f00d)", "$f00du16"},
		{"(sbits 16 1000)", "1000i16"},
		{"(sbits 8 $ff)", "-1i8"},
		{"(sbits 16 (sbits 8 $ff))", "-1i16"},
		{"(bits 16 (sbits 8 $ff))", "$ffffu16"},

		// Functions
		{"(def a (fun (x) x)) (a 42)", "42"},
		{"(def a (fun () 42)) (a)", "42"},
		{"((fun (x) x) 42)", "42"},
		{"(def a (fun (x) x)) (def b (fun (x) (a x))) (b 42)", "42"},
		{"(def a (fun (x) x)) (def b (fun (x) (def c (fun (y) (a y))) (c x))) (b 42)", "42"},

		// Conditionals
		{"(if (=t) (1) (2))", "1"},
		{"(if (=f) (1) (2))", "2"},
		{"(if ((> 2 1)) (1) (2))", "1"},
		{"(if ((< 2 1)) (1) (2))", "2"},

		// B-trees
		{"(btree_lookup (btree (quote (a 1)) (quote (b 2))) (quote b))", "2"},
		{"(btree_lookup (btree_insert (btree) 1 2) 1)", "2"},
	}

	for _, tt := range tests {
		if got := evalString(t, tt.source); got != tt.expected {
			t.Errorf("eval %q = %q, want %q", tt.source, got, tt.expected)
		}
	}
}

func TestEvalWrap(t *testing.T) {
	result := eval(t, "(wrap 2)")
	monad, ok := result.(*cell.Monad)
	if !ok {
		t.Fatalf("wrap did not produce a monad: %s", result.Inspect())
	}
	if !strings.Contains(monad.Inspect(), "##wrap(2)") {
		t.Errorf("monad = %s", monad.Inspect())
	}
}

func TestEvalMonadConditionals(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{"(if (=f) ((list 2 3)) ((list 1 (wrap 2))))", "monad#()#(flat_map: ##wrap((1 2)))"},
		{"(if (=t) ((list 1 (wrap 2))) ((list 2 3)))", "monad#()#(flat_map: ##wrap((1 2)))"},
		{"(if (=t) ((list 1 2)) ((list 2 (wrap 3))))", "monad#()#(flat_map: ##wrap((1 2)))"},
		{"(if (=f) ((list 2 (wrap 3))) ((list 1 2)))", "monad#()#(flat_map: ##wrap((1 2)))"},
		{"(if ((wrap =t)) ((list 1 2)) ((list 2 3)))", "monad#()#(flat_map: ##wrap((1 2)))"},
		{"(if ((wrap =f)) ((list 2 3)) ((list 1 2)))", "monad#()#(flat_map: ##wrap((1 2)))"},
		{"(if ((wrap =t)) ((list 1 (wrap 2))) ((list 2 3)))", "monad#()#(flat_map: ##wrap((1 2)))"},
	}

	for _, tt := range tests {
		if got := evalString(t, tt.source); got != tt.expected {
			t.Errorf("eval %q = %q, want %q", tt.source, got, tt.expected)
		}
	}
}

func TestEvalDefSyntax(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{"(def_syntax s ((lda # <x>) (x))) (s (lda # 3))", "3"},

		// The first matching pattern wins.
		{"(def_syntax s ( (lda # <x>) ((list 1 x))   (lda <x>) ((list 2 x)) )) (s (lda # 3))", "(1 3)"},
		{"(def_syntax s ( (lda # <x>) ((list 1 x))   (lda <x>) ((list 2 x)) )) (s (lda 3))", "(2 3)"},
		{"(def_syntax s ( (lda # <x>) ((list 1 x))   (ldx <x>) ((list 2 x)) )) (s (ldx 3))", "(2 3)"},

		// Free variables of macro bodies bind at definition time.
		{"(def z 4) (def_syntax s ((lda # <x>) ((list x z)))) (s (lda # 3))", "(3 4)"},
		{"(def z 4) (def_syntax s ((lda # <x>) ((list x z)))) (def z 5) (s (lda # 3))", "(3 4)"},

		// Macros compose, and survive crossing into function frames.
		{"(def z 4) (def_syntax s ((lda # <x>) ((list x z)))) (def_syntax o ((ld # <x>) ( (s (lda # x)) ))) (o (ld # 3))", "(3 4)"},
		{"(def_syntax s ((lda # <x>) (x))) ((fun () (s (lda # 3))))", "3"},
		{"(def z 4) (def_syntax s ((lda # <x>) ((list x z)))) ((fun () (s (lda # 3))))", "(3 4)"},
		{"(def z 4) (def_syntax s ((lda # <x>) ((list x z)))) (def_syntax o ((ld # <x>) ( (s (lda # x)) ))) ((fun () (o (ld # 3))))", "(3 4)"},

		// Symbols introduced inside a macro body allocate fresh cells at
		// the expansion site.
		{"(def_syntax s ((lda # <x>) ((def y x) y))) (s (lda # 3))", "3"},
		{"(def_syntax s ((lda # <x>) ((def y x) y))) (s (lda (list 3 4 5)))", "syntax-match-failed"},

		// Functions defined inside macro bodies close over the expansion.
		{"(def_syntax s ( (make_fun <x>) ((fun () x)) )) ((s (make_fun 2)))", "2"},

		// Nested list patterns.
		{"(def_syntax s ( (lda ( <indirect> , X )) ((list indirect)) )) (s (lda (2 , X)))", "(2)"},

		// Hygiene: the body sees definition-time bindings even when used
		// inside a closure.
		{"(def y 123) (def_syntax s ( (make_list <x>) ((list y x)) )) (def y 3) (s (make_list 2))", "(123 2)"},
		{"(def y 123) (def_syntax s ( (make_list <x>) ((list y x)) )) (s ((fun () (make_list 2))))", "(123 2)"},

		// extend_syntax combines pattern tables under a new name.
		{"(def_syntax s ((lda # <x>) ((list 1 x)))) (extend_syntax s s2 ((ldx # <x>) ((list 2 x)))) (s2 (ldx # 3))", "(2 3)"},
		{"(def_syntax s ((lda # <x>) ((list 1 x)))) (extend_syntax s s2 ((ldx # <x>) ((list 2 x)))) (s2 (lda # 3))", "(1 3)"},
	}

	for _, tt := range tests {
		if tt.expected == "syntax-match-failed" {
			session := NewSession()
			_, err := session.Eval(tt.source)
			if err == nil || !strings.Contains(err.Error(), "syntax-match-failed") {
				t.Errorf("eval %q: expected syntax-match-failed, got %v", tt.source, err)
			}
			continue
		}
		if got := evalString(t, tt.source); got != tt.expected {
			t.Errorf("eval %q = %q, want %q", tt.source, got, tt.expected)
		}
	}
}

func TestEvalSyntaxMonadArguments(t *testing.T) {
	// A pattern variable bound to a monad lifts the whole invocation.
	tests := []struct {
		source   string
		expected string
	}{
		{"(def_syntax s ( (make_list <x>) ((list 1 x)) )) (s (make_list (wrap 2)))", "monad#()#(flat_map: ##wrap((1 2)))"},
		{"(def_syntax s ( (make_list <x> <y>) ((list 1 x y)) )) (s (make_list (wrap 2) (wrap 3)))", "monad#()#(flat_map: ##wrap((1 2 3)))"},
		{"(def_syntax s ( (make_list <x> <y>) ((list 1 x y)) )) (s (make_list 2 (wrap 3)))", "monad#()#(flat_map: ##wrap((1 2 3)))"},
		{"(def_syntax s ( (make_list <x> <y>) ((wrap (list 1 x y))) )) (s (make_list 2 (wrap 3)))", "monad#()#(flat_map: ##wrap((1 2 3)))"},
	}

	for _, tt := range tests {
		if got := evalString(t, tt.source); got != tt.expected {
			t.Errorf("eval %q = %q, want %q", tt.source, got, tt.expected)
		}
	}
}

func TestEvalSyntaxIntrospection(t *testing.T) {
	got := evalString(t, "(def y 123) (def_syntax s ( (make_list <x>) ((list y x)) )) (s syntax)")
	if !strings.HasPrefix(got, "btree#(") || !strings.Contains(got, "make_list -> ") {
		t.Errorf("(s syntax) = %q", got)
	}
}

func TestEvalBitcode(t *testing.T) {
	assemble := func(t *testing.T, source string) (cell.Cell, []cell.BitCodeOp) {
		t.Helper()
		result := eval(t, source)
		value, ops, err := bitcode.AssembleCell(result)
		if err != nil {
			t.Fatalf("assemble %q: %v", source, err)
		}
		return value, ops
	}

	t.Run("write data byte", func(t *testing.T) {
		value, ops := assemble(t, "((fun () (d $9fu8)))")
		if !cell.IsNil(value) {
			t.Errorf("value = %s, want ()", value.Inspect())
		}
		if len(ops) != 1 || ops[0] != cell.BitsOp(8, 0x9f) {
			t.Errorf("ops = %v", ops)
		}
		if got := cell.BitCodeBytes(ops); len(got) != 1 || got[0] != 0x9f {
			t.Errorf("bytes = %x", got)
		}
	})

	t.Run("write three bytes", func(t *testing.T) {
		_, ops := assemble(t, "((fun () (d $9fu8) (d $1c42u16)))")
		if len(ops) != 2 || ops[0] != cell.BitsOp(8, 0x9f) || ops[1] != cell.BitsOp(16, 0x1c42) {
			t.Errorf("ops = %v", ops)
		}
		got := cell.BitCodeBytes(ops)
		if len(got) != 3 || got[0] != 0x9f || got[1] != 0x42 || got[2] != 0x1c {
			t.Errorf("bytes = %x, want 9f421c", got)
		}
	})

	t.Run("write three bytes in one operation", func(t *testing.T) {
		_, ops := assemble(t, "((fun () (d $9fu8 $1c42u16)))")
		if len(ops) != 2 || ops[0] != cell.BitsOp(8, 0x9f) || ops[1] != cell.BitsOp(16, 0x1c42) {
			t.Errorf("ops = %v", ops)
		}
	})

	t.Run("write data byte from monad", func(t *testing.T) {
		_, ops := assemble(t, "((fun () (d (wrap $9fu8))))")
		if len(ops) != 1 || ops[0] != cell.BitsOp(8, 0x9f) {
			t.Errorf("ops = %v", ops)
		}
	})

	t.Run("write data byte from def monad", func(t *testing.T) {
		_, ops := assemble(t, "(def x (wrap $9fu8)) ((fun () (d x)))")
		if len(ops) != 1 || ops[0] != cell.BitsOp(8, 0x9f) {
			t.Errorf("ops = %v", ops)
		}
	})

	t.Run("move", func(t *testing.T) {
		_, ops := assemble(t, "((fun () (m $c001)))")
		if len(ops) != 1 || ops[0] != cell.MoveOp(0xc001) {
			t.Errorf("ops = %v", ops)
		}
	})

	t.Run("align", func(t *testing.T) {
		_, ops := assemble(t, "((fun () (a $beeff00du32 64)))")
		if len(ops) != 1 || ops[0] != cell.AlignOp(32, 0xbeeff00d, 64) {
			t.Errorf("ops = %v", ops)
		}
	})

	t.Run("residual value", func(t *testing.T) {
		value, _ := assemble(t, "((fun () (d 0u64) 1u64))")
		if value.Inspect() != "$1u64" {
			t.Errorf("value = %s, want $1u64", value.Inspect())
		}
	})

	t.Run("label address", func(t *testing.T) {
		value, _ := assemble(t, "((fun () (label foo) foo))")
		if value.Inspect() != "$0u64" {
			t.Errorf("value = %s, want $0u64", value.Inspect())
		}
	})

	t.Run("label after emission", func(t *testing.T) {
		value, ops := assemble(t, "((fun () (d $9fu8) (label foo) foo))")
		if value.Inspect() != "$8u64" {
			t.Errorf("value = %s, want $8u64", value.Inspect())
		}
		if len(ops) != 1 {
			t.Errorf("ops = %v", ops)
		}
	})
}

func TestEvalAssembleKeyword(t *testing.T) {
	got := evalString(t, "(car (assemble ((fun () (d $02u8)))))")
	expected := cell.Hexdump([]byte{0x02})
	if got != expected {
		t.Errorf("hexdump = %q, want %q", got, expected)
	}
	if !strings.HasPrefix(got, "00000000: 02") {
		t.Errorf("hexdump should start with the address row: %q", got)
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{"missing", "unknown-symbol"},
		{"(1 2)", "constants-cannot-be-called"},
		{"(def 1 2)", "variables-must-be-atoms"},
		{"(def_syntax s ((lda <x>) (x))) (s (ldx 3))", "syntax-match-failed"},
	}

	for _, tt := range tests {
		session := NewSession()
		_, err := session.Eval(tt.source)
		if err == nil || !strings.Contains(err.Error(), tt.expected) {
			t.Errorf("eval %q: expected %q, got %v", tt.source, tt.expected, err)
		}
	}
}

func TestSessionPersistsAcrossEvals(t *testing.T) {
	session := NewSession()

	if _, err := session.Eval("(def x 41)"); err != nil {
		t.Fatal(err)
	}
	result, err := session.Eval("(+ x 1)")
	if err != nil {
		t.Fatal(err)
	}
	if result.Inspect() != "42" {
		t.Errorf("result = %s, want 42", result.Inspect())
	}

	// A binding error leaves earlier bindings intact.
	if _, err := session.Eval("nonsense"); err == nil {
		t.Fatal("expected an error")
	}
	result, err = session.Eval("x")
	if err != nil {
		t.Fatal(err)
	}
	if result.Inspect() != "41" {
		t.Errorf("result = %s, want 41", result.Inspect())
	}
}

func TestImportBuiltinLibrary(t *testing.T) {
	session := NewSession()

	if _, err := session.Eval(`(import "prelude")`); err != nil {
		t.Fatal(err)
	}

	result, err := session.Eval("(cadr (list 1 2 3))")
	if err != nil {
		t.Fatal(err)
	}
	if result.Inspect() != "2" {
		t.Errorf("cadr = %s, want 2", result.Inspect())
	}
}
