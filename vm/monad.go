package vm

import (
	"fmt"

	"github.com/dr8co/sema/cell"
)

// wrapFlatMap is the flat_map function of a wrapped value: it hands the
// wrapped value straight to the mapping function.
type wrapFlatMap struct {
	value cell.Cell
}

// Description returns a string shown when the value is displayed.
func (w *wrapFlatMap) Description() string {
	return fmt.Sprintf("##wrap(%s)", w.value.Inspect())
}

// Resolve expects cell 0 to hold the flat_map pair (monad value . map fn);
// it places the wrapped value in cell 0 and calls the mapping function.
func (w *wrapFlatMap) Resolve(frame *cell.Frame) (cell.Cell, error) {
	pair, ok := frame.Cells[0].(*cell.List)
	if !ok {
		return nil, NewError(NOT_A_MONAD, frame.Cells[0])
	}
	mapFn, ok := pair.Cdr.(*cell.FrameMonadCell)
	if !ok {
		return nil, NewError(NOT_A_FUNCTION, pair.Cdr)
	}

	frame.Cells[0] = w.value
	result, err := mapFn.Fn.Resolve(frame)
	if err != nil {
		return nil, err
	}
	if _, ok := result.(*cell.Monad); !ok {
		return nil, NewError(MISMATCHED_MONAD, result)
	}
	return result, nil
}

// ReturnsMonad flags the result as a monad for the binder.
func (w *wrapFlatMap) ReturnsMonad() bool { return true }

// WrapValue lifts a value into a monad carrying no effect: flat-mapping the
// result applies the function directly to the value.
func WrapValue(value cell.Cell) *cell.Monad {
	flatMap := &cell.FrameMonadCell{Fn: &wrapFlatMap{value: value}}
	return &cell.Monad{Value: cell.Nil, Monad: cell.NewMonadType(flatMap)}
}

// WrappedValue extracts the payload of a monad produced by WrapValue. The
// second result is false for any other monad flavor.
func WrappedValue(m *cell.Monad) (cell.Cell, bool) {
	if fm, ok := m.Monad.FlatMapFn.(*cell.FrameMonadCell); ok {
		if w, ok := fm.Fn.(*wrapFlatMap); ok {
			return w.value, true
		}
	}
	return nil, false
}

// FlatMapMonad applies a monad's flat_map function to a mapping function.
// The flat_map function receives the pair (monad value . map fn) in cell 0
// and must return a monad of the same flavor.
func FlatMapMonad(m *cell.Monad, mapFn cell.Cell, frame *cell.Frame) (cell.Cell, error) {
	flatMap, ok := m.Monad.FlatMapFn.(*cell.FrameMonadCell)
	if !ok {
		return nil, NewError(NOT_A_FUNCTION, m.Monad.FlatMapFn)
	}

	frame.Allocate(1)
	saved := frame.Cells[0]
	frame.Cells[0] = cell.NewList(m.Value, mapFn)
	result, err := flatMap.Fn.Resolve(frame)
	frame.Cells[0] = saved

	return result, err
}

// nextFn is a mapping function that ignores the incoming value and returns
// a fixed monad: the flat_map shape of statement sequencing.
type nextFn struct {
	next cell.Cell
}

// Description returns a string shown when the value is displayed.
func (n *nextFn) Description() string {
	return fmt.Sprintf("##next(%s)", n.next.Inspect())
}

// Resolve returns the stored monad, discarding the flat-mapped value.
func (n *nextFn) Resolve(_ *cell.Frame) (cell.Cell, error) {
	return n.next, nil
}

// ReturnsMonad flags the result as a monad for the binder.
func (n *nextFn) ReturnsMonad() bool { return true }

// NextMonad sequences two monads: the first's effects happen first and its
// value is discarded; the composition carries the second monad's value.
func NextMonad(first, second *cell.Monad, frame *cell.Frame) (cell.Cell, error) {
	mapFn := &cell.FrameMonadCell{Fn: &nextFn{next: second}}
	return FlatMapMonad(first, mapFn, frame)
}
