package cell

// ListFromSlice turns a slice of cells into a proper list.
func ListFromSlice(cells []Cell) Cell {
	return ListFromSliceWithCdr(cells, Nil)
}

// ListFromSliceWithCdr turns a slice of cells into a list terminated by the
// given cdr. A non-nil cdr produces an improper list.
func ListFromSliceWithCdr(cells []Cell, cdr Cell) Cell {
	result := cdr
	for i := len(cells) - 1; i >= 0; i-- {
		result = NewList(cells[i], result)
	}
	return result
}

// ListToSlice returns the items of a proper list, treating nil as the empty
// list. The second result is false if the cell is neither.
func ListToSlice(c Cell) ([]Cell, bool) {
	if IsNil(c) {
		return nil, true
	}

	var result []Cell
	pos := c
	for {
		switch p := pos.(type) {
		case *List:
			result = append(result, p.Car)
			pos = p.Cdr
		case *NilCell:
			return result, true
		default:
			return nil, false
		}
	}
}

// Equal reports structural equality of two cells. Atoms compare by interned
// id, numbers compare after coercion, lists compare element-wise.
func Equal(a, b Cell) bool {
	switch a := a.(type) {
	case *NilCell:
		return IsNil(b)
	case *Boolean:
		if b, ok := b.(*Boolean); ok {
			return a.Value == b.Value
		}
	case *Char:
		if b, ok := b.(*Char); ok {
			return a.Value == b.Value
		}
	case *StringCell:
		if b, ok := b.(*StringCell); ok {
			return a.Value == b.Value
		}
	case *AtomCell:
		if b, ok := b.(*AtomCell); ok {
			return a.ID == b.ID
		}
	case *Number:
		if b, ok := b.(*Number); ok {
			return a.Cmp(b) == 0
		}
	case *List:
		if b, ok := b.(*List); ok {
			return Equal(a.Car, b.Car) && Equal(a.Cdr, b.Cdr)
		}
	case *FrameReference:
		if b, ok := b.(*FrameReference); ok {
			return *a == *b
		}
	default:
		return a == b
	}
	return false
}

// typeRank orders cell types for cross-type comparison: nil sorts below
// booleans, then numbers, characters, strings and atoms.
func typeRank(c Cell) (int, bool) {
	switch c.(type) {
	case *NilCell:
		return 0, true
	case *Boolean:
		return 1, true
	case *Number:
		return 2, true
	case *Char:
		return 3, true
	case *StringCell:
		return 4, true
	case *AtomCell:
		return 5, true
	default:
		return 0, false
	}
}

// Compare orders two cells, returning -1, 0 or 1. Scalar cells of the same
// type compare by value (atoms by name), cells of different scalar types
// compare by type rank, and non-scalar cells are incomparable (ok=false).
func Compare(a, b Cell) (int, bool) {
	ra, oka := typeRank(a)
	rb, okb := typeRank(b)
	if !oka || !okb {
		return 0, false
	}
	if ra != rb {
		if ra < rb {
			return -1, true
		}
		return 1, true
	}

	switch a := a.(type) {
	case *NilCell:
		return 0, true
	case *Boolean:
		bb := b.(*Boolean)
		switch {
		case a.Value == bb.Value:
			return 0, true
		case !a.Value:
			return -1, true
		default:
			return 1, true
		}
	case *Number:
		return a.Cmp(b.(*Number)), true
	case *Char:
		bb := b.(*Char)
		switch {
		case a.Value < bb.Value:
			return -1, true
		case a.Value > bb.Value:
			return 1, true
		default:
			return 0, true
		}
	case *StringCell:
		bb := b.(*StringCell)
		switch {
		case a.Value < bb.Value:
			return -1, true
		case a.Value > bb.Value:
			return 1, true
		default:
			return 0, true
		}
	case *AtomCell:
		an, bn := AtomName(a.ID), AtomName(b.(*AtomCell).ID)
		switch {
		case an < bn:
			return -1, true
		case an > bn:
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}
