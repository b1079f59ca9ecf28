package cell

import "testing"

func TestListInspect(t *testing.T) {
	tests := []struct {
		cell     Cell
		expected string
	}{
		{Nil, "()"},
		{ListFromSlice([]Cell{Plain(1), Plain(2), Plain(3)}), "(1 2 3)"},
		{NewList(Plain(1), Plain(2)), "(1 . 2)"},
		{ListFromSlice([]Cell{Atom("def"), Atom("x"), Plain(1)}), "(def x 1)"},
		{True, "=t"},
		{False, "=f"},
		{&Char{Value: 'x'}, "'x'"},
		{&StringCell{Value: "hello"}, `"hello"`},
	}

	for _, tt := range tests {
		if got := tt.cell.Inspect(); got != tt.expected {
			t.Errorf("Inspect() = %q, want %q", got, tt.expected)
		}
	}
}

func TestListToSlice(t *testing.T) {
	items, ok := ListToSlice(ListFromSlice([]Cell{Plain(1), Plain(2)}))
	if !ok || len(items) != 2 {
		t.Fatalf("ListToSlice = %v, %v", items, ok)
	}

	if _, ok := ListToSlice(NewList(Plain(1), Plain(2))); ok {
		t.Error("improper list should not convert")
	}

	items, ok = ListToSlice(Nil)
	if !ok || len(items) != 0 {
		t.Error("nil should convert to the empty slice")
	}
}

func TestAtomInterning(t *testing.T) {
	if Atom("foo").ID != Atom("foo").ID {
		t.Error("same name should intern to the same id")
	}
	if Atom("foo").ID == Atom("bar").ID {
		t.Error("different names should intern to different ids")
	}
	if AtomName(Atom("foo").ID) != "foo" {
		t.Error("AtomName should recover the name")
	}
}

func TestEqual(t *testing.T) {
	if !Equal(ListFromSlice([]Cell{Plain(1), Atom("a")}), ListFromSlice([]Cell{Plain(1), Atom("a")})) {
		t.Error("equal lists should compare equal")
	}
	if Equal(Plain(1), Plain(2)) {
		t.Error("different numbers should not compare equal")
	}
	if !Equal(Plain(5), Bits(8, 5)) {
		t.Error("numbers compare after coercion")
	}
}

func TestCompareAcrossTypes(t *testing.T) {
	// Nil sorts below numbers.
	order, ok := Compare(Plain(1), Nil)
	if !ok || order != 1 {
		t.Errorf("Compare(1, nil) = %d, %v", order, ok)
	}

	if _, ok := Compare(Plain(1), ListFromSlice([]Cell{Plain(1)})); ok {
		t.Error("lists should be incomparable")
	}
}

func TestRefTypeOf(t *testing.T) {
	monadRef := &FrameReference{CellIndex: 1, FrameDepth: 0, Kind: MonadReference}
	if RefTypeOf(monadRef) != MonadReference {
		t.Error("monad reference should report monad kind")
	}

	// Calling a monad gives a returns-monad call site.
	call := NewList(monadRef, Nil)
	if RefTypeOf(call) != ReturnsMonadReference {
		t.Error("calling a monad should report returns-monad")
	}
}
