package cell

import (
	"fmt"
	"testing"
)

func TestBTreeInsertAndSearch(t *testing.T) {
	tree := Cell(Nil)

	for i := 0; i < 40; i++ {
		var err error
		tree, err = BTreeInsert(tree, Plain(uint64(i)), &StringCell{Value: fmt.Sprintf("v%d", i)})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	for i := 0; i < 40; i++ {
		value, err := BTreeSearch(tree, Plain(uint64(i)))
		if err != nil {
			t.Fatalf("search %d: %v", i, err)
		}
		str, ok := value.(*StringCell)
		if !ok || str.Value != fmt.Sprintf("v%d", i) {
			t.Fatalf("search %d = %s", i, value.Inspect())
		}
	}

	if value, err := BTreeSearch(tree, Plain(99)); err != nil || !IsNil(value) {
		t.Errorf("missing key should search as nil, got %v %v", value, err)
	}
}

func TestBTreeReplace(t *testing.T) {
	tree, _ := BTreeInsert(Nil, Atom("a"), Atom("b"))
	tree, _ = BTreeInsert(tree, Atom("a"), Atom("c"))

	value, err := BTreeSearch(tree, Atom("a"))
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(value, Atom("c")) {
		t.Errorf("replaced value = %s, want c", value.Inspect())
	}
}

func TestBTreePersistence(t *testing.T) {
	old, _ := BTreeInsert(Nil, Atom("a"), Atom("b"))
	updated, _ := BTreeInsert(old, Atom("a"), Atom("c"))

	oldValue, _ := BTreeSearch(old, Atom("a"))
	newValue, _ := BTreeSearch(updated, Atom("a"))

	if !Equal(oldValue, Atom("b")) {
		t.Errorf("old tree changed: %s", oldValue.Inspect())
	}
	if !Equal(newValue, Atom("c")) {
		t.Errorf("new tree wrong: %s", newValue.Inspect())
	}
}

func TestBTreeSplitDescending(t *testing.T) {
	// Descending insertion exercises splits on the left edge.
	tree := Cell(Nil)
	for i := 40; i > 0; i-- {
		var err error
		tree, err = BTreeInsert(tree, Plain(uint64(i)), Plain(uint64(i*2)))
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	for i := 40; i > 0; i-- {
		value, err := BTreeSearch(tree, Plain(uint64(i)))
		if err != nil {
			t.Fatalf("search %d: %v", i, err)
		}
		if !Equal(value, Plain(uint64(i*2))) {
			t.Fatalf("search %d = %s", i, value.Inspect())
		}
	}
}

func TestBTreeInspect(t *testing.T) {
	tree, _ := BTreeInsert(Nil, Atom("a"), Atom("b"))
	tree, _ = BTreeInsert(tree, Atom("c"), Atom("d"))

	expected := "btree#(\n  a -> b\n  c -> d\n)"
	if got := tree.Inspect(); got != expected {
		t.Errorf("Inspect() = %q, want %q", got, expected)
	}
}
