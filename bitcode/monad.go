// Package bitcode implements the bit-emission monad, its fix-point
// assembler, and the emission primitives and keywords built on them.
//
// A bit-code monad describes a bit stream under construction: bit fields,
// moves and aligns, plus label reads and writes whose values may not be
// known yet. Flat-mapping composes monads by concatenating their streams
// and deferring the mapping functions; the assembler in this package
// resolves the result by iterated re-assembly until the label values and
// the stream agree.
package bitcode

import (
	"sync/atomic"

	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/vm"
)

// Label is an opaque handle whose numeric value is assigned by the
// assembler.
type Label struct {
	id uint64
}

var labelCounter atomic.Uint64

// NewLabel mints a fresh label.
func NewLabel() *Label {
	return &Label{id: labelCounter.Add(1)}
}

// ValueKind selects what a monad's value branch computes.
type ValueKind int

const (
	// ValueV is an absolute value.
	ValueV ValueKind = iota

	// AllocLabelV allocates a label; labels are minted when flat_map is
	// called, never during assembly.
	AllocLabelV

	// LabelValueV reads a label's value.
	LabelValueV

	// SetLabelValueV writes a label's value.
	SetLabelValueV

	// BitPosV reads the current emission position.
	BitPosV

	// SetBitPosV sets the logical emission position.
	SetBitPosV

	// FlatMapV is a deferred chain of flat_map operations.
	FlatMapV
)

// MapFn is a deferred mapping function of a flat_map chain.
type MapFn func(value cell.Cell) (*Monad, error)

// Monad is the assembler's internal program: a value branch, the bit code
// preceding it, and the bit code following it.
type Monad struct {
	Kind ValueKind

	// Value is the payload of ValueV, or the label cell of LabelValueV and
	// SetLabelValueV.
	Value cell.Cell

	// SetValue is the written value of SetLabelValueV, or the target
	// position of SetBitPosV.
	SetValue cell.Cell

	// Inner and Mappers form the deferred chain of FlatMapV.
	Inner   *Monad
	Mappers []MapFn

	// Bitcode precedes the value branch; Following comes after it.
	Bitcode   []cell.BitCodeOp
	Following []cell.BitCodeOp
}

// Empty creates a monad wrapping nil with no emission.
func Empty() *Monad {
	return &Monad{Kind: ValueV, Value: cell.Nil}
}

// WithValue creates a monad wrapping a value with no emission.
func WithValue(value cell.Cell) *Monad {
	return &Monad{Kind: ValueV, Value: value}
}

// WriteBitcode creates a monad that emits the given operations.
func WriteBitcode(ops []cell.BitCodeOp) *Monad {
	return &Monad{Kind: ValueV, Value: cell.Nil, Bitcode: ops}
}

// AllocLabel creates a monad that allocates a new label.
func AllocLabel() *Monad {
	return &Monad{Kind: AllocLabelV}
}

// ReadLabelValue creates a monad that reads the value of the given label
// cell.
func ReadLabelValue(label cell.Cell) *Monad {
	return &Monad{Kind: LabelValueV, Value: label}
}

// SetLabelValue creates a monad that sets the given label to a value.
func SetLabelValue(label, value cell.Cell) *Monad {
	return &Monad{Kind: SetLabelValueV, Value: label, SetValue: value}
}

// ReadBitPos creates a monad that reads the current emission position.
func ReadBitPos() *Monad {
	return &Monad{Kind: BitPosV}
}

// SetBitPos creates a monad that sets the logical emission position.
func SetBitPos(value cell.Cell) *Monad {
	return &Monad{Kind: SetBitPosV, SetValue: value}
}

// PrependBitcode stores the given operations at the start of the monad.
func (m *Monad) PrependBitcode(ops []cell.BitCodeOp) {
	if len(ops) == 0 {
		return
	}
	combined := make([]cell.BitCodeOp, 0, len(ops)+len(m.Bitcode))
	combined = append(combined, ops...)
	combined = append(combined, m.Bitcode...)
	m.Bitcode = combined
}

// FlatMap applies a mapping function to the monad's value. Labels are
// given their identity as soon as flat_map is called; constant values map
// immediately; everything else defers into a FlatMapV chain evaluated by
// the assembler.
func (m *Monad) FlatMap(fn MapFn) (*Monad, error) {
	switch m.Kind {
	case AllocLabelV:
		label := &cell.AnyCell{Value: NewLabel()}
		next, err := fn(label)
		if err != nil {
			return nil, err
		}
		next.PrependBitcode(m.Bitcode)
		return next, nil

	case ValueV:
		next, err := fn(m.Value)
		if err != nil {
			return nil, err
		}
		next.PrependBitcode(m.Bitcode)
		return next, nil

	case FlatMapV:
		mappers := make([]MapFn, 0, len(m.Mappers)+1)
		mappers = append(mappers, m.Mappers...)
		mappers = append(mappers, fn)
		return &Monad{
			Kind:      FlatMapV,
			Inner:     m.Inner,
			Mappers:   mappers,
			Bitcode:   m.Bitcode,
			Following: m.Following,
		}, nil

	default:
		return &Monad{Kind: FlatMapV, Inner: m, Mappers: []MapFn{fn}}, nil
	}
}

// ToCell wraps the monad as a monad cell whose flat_map is the bit-code
// flat_map function.
func (m *Monad) ToCell() cell.Cell {
	return &cell.Monad{
		Value: &cell.AnyCell{Value: m},
		Monad: cell.NewMonadType(FlatMapCell),
	}
}

// FromCell extracts a bit-code monad from a cell: either a raw boxed monad,
// a monad cell wrapping one, or a plain wrapped value (which converts to a
// monad carrying no emission).
func FromCell(c cell.Cell) (*Monad, bool) {
	switch c := c.(type) {
	case *cell.AnyCell:
		m, ok := c.Value.(*Monad)
		return m, ok

	case *cell.Monad:
		if m, ok := FromCell(c.Value); ok {
			return m, true
		}
		if payload, ok := vm.WrappedValue(c); ok {
			return WithValue(payload), true
		}
		return nil, false

	default:
		return nil, false
	}
}
