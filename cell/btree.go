package cell

import (
	"fmt"
	"strings"
)

// Number of keys a node may hold before it splits.
const btreeOrder = 5

// Index of the key promoted out of a full node.
const btreeMedian = 3

// BTreePair is one key/value entry of a B-tree node.
type BTreePair struct {
	Key   Cell
	Value Cell
}

// BTree is an ordered map keyed by cells. Trees are persistent: insertion
// returns a new tree and leaves the old one intact.
type BTree struct {
	Entries  []BTreePair
	Children []*BTree
}

// NewBTree creates an empty B-tree.
func NewBTree() *BTree {
	return &BTree{}
}

// Type returns the type of the cell.
func (t *BTree) Type() Type { return BTREE_CELL }

// Inspect returns a string representation of the cell, listing the entries
// in key order.
func (t *BTree) Inspect() string {
	var out strings.Builder
	out.WriteString("btree#(")
	t.inspectInto(&out)
	out.WriteString("\n)")
	return out.String()
}

func (t *BTree) inspectInto(out *strings.Builder) {
	for i, entry := range t.Entries {
		if i < len(t.Children) {
			t.Children[i].inspectInto(out)
		}
		fmt.Fprintf(out, "\n  %s -> %s", entry.Key.Inspect(), entry.Value.Inspect())
	}
	if len(t.Children) > 0 {
		t.Children[len(t.Children)-1].inspectInto(out)
	}
}

// BTreeSearch looks up a key, returning nil if it is not present.
func BTreeSearch(tree Cell, key Cell) (Cell, error) {
	switch tree := tree.(type) {
	case *NilCell:
		return Nil, nil
	case *BTree:
		return tree.search(key)
	default:
		return nil, fmt.Errorf("not a btree: %s", tree.Inspect())
	}
}

func (t *BTree) search(key Cell) (Cell, error) {
	for i, entry := range t.Entries {
		order, ok := Compare(entry.Key, key)
		if !ok {
			return nil, fmt.Errorf("cannot compare %s with %s", entry.Key.Inspect(), key.Inspect())
		}
		switch {
		case order == 0:
			return entry.Value, nil
		case order > 0:
			// Keys between the previous entry and this one live in the
			// child at the same index.
			if len(t.Children) > 0 {
				return t.Children[i].search(key)
			}
			return Nil, nil
		}
	}

	if len(t.Children) > 0 {
		return t.Children[len(t.Children)-1].search(key)
	}
	return Nil, nil
}

// BTreeInsert inserts or replaces a key, returning the new tree. Inserting
// into nil creates a fresh single-entry tree.
func BTreeInsert(tree Cell, key, value Cell) (Cell, error) {
	switch tree := tree.(type) {
	case *NilCell:
		return &BTree{Entries: []BTreePair{{Key: key, Value: value}}}, nil
	case *BTree:
		root, split, err := tree.insert(key, value)
		if err != nil {
			return nil, err
		}
		if split != nil {
			// The root itself split: grow the tree by one level.
			root = &BTree{
				Entries:  []BTreePair{split.median},
				Children: []*BTree{split.left, split.right},
			}
		}
		return root, nil
	default:
		return nil, fmt.Errorf("not a btree: %s", tree.Inspect())
	}
}

// btreeSplit reports a node split to the parent: the promoted median entry
// and the two halves.
type btreeSplit struct {
	median BTreePair
	left   *BTree
	right  *BTree
}

func (t *BTree) insert(key, value Cell) (*BTree, *btreeSplit, error) {
	for i := 0; i <= len(t.Entries); i++ {
		// An extra iteration with a forced "greater" result handles
		// insertion past the last entry without duplicating the logic.
		order := 1
		if i < len(t.Entries) {
			var ok bool
			order, ok = Compare(t.Entries[i].Key, key)
			if !ok {
				return nil, nil, fmt.Errorf("cannot compare %s with %s", t.Entries[i].Key.Inspect(), key.Inspect())
			}
		}

		switch {
		case order < 0:
			continue

		case order == 0:
			// Replace in place.
			entries := append([]BTreePair{}, t.Entries...)
			entries[i] = BTreePair{Key: key, Value: value}
			return &BTree{Entries: entries, Children: t.Children}, nil, nil

		default:
			if len(t.Children) > 0 {
				// Insert into the child holding keys below this entry.
				child, split, err := t.Children[i].insert(key, value)
				if err != nil {
					return nil, nil, err
				}
				children := append([]*BTree{}, t.Children...)
				if split == nil {
					children[i] = child
					return &BTree{Entries: t.Entries, Children: children}, nil, nil
				}

				// The child split: absorb the promoted median here.
				entries := make([]BTreePair, 0, len(t.Entries)+1)
				entries = append(entries, t.Entries[:i]...)
				entries = append(entries, split.median)
				entries = append(entries, t.Entries[i:]...)

				newChildren := make([]*BTree, 0, len(children)+1)
				newChildren = append(newChildren, children[:i]...)
				newChildren = append(newChildren, split.left, split.right)
				newChildren = append(newChildren, children[i+1:]...)

				return splitIfFull(&BTree{Entries: entries, Children: newChildren})
			}

			// Leaf node: insert here.
			entries := make([]BTreePair, 0, len(t.Entries)+1)
			entries = append(entries, t.Entries[:i]...)
			entries = append(entries, BTreePair{Key: key, Value: value})
			entries = append(entries, t.Entries[i:]...)

			return splitIfFull(&BTree{Entries: entries})
		}
	}

	// Unreachable: the forced final iteration always returns.
	return nil, nil, fmt.Errorf("btree insert fell through")
}

// splitIfFull splits an over-full node at the median, promoting the median
// entry to the parent.
func splitIfFull(node *BTree) (*BTree, *btreeSplit, error) {
	if len(node.Entries) <= btreeOrder {
		return node, nil, nil
	}

	median := node.Entries[btreeMedian]
	left := &BTree{Entries: append([]BTreePair{}, node.Entries[:btreeMedian]...)}
	right := &BTree{Entries: append([]BTreePair{}, node.Entries[btreeMedian+1:]...)}

	if len(node.Children) > 0 {
		left.Children = append([]*BTree{}, node.Children[:btreeMedian+1]...)
		right.Children = append([]*BTree{}, node.Children[btreeMedian+1:]...)
	}

	return nil, &btreeSplit{median: median, left: left, right: right}, nil
}
