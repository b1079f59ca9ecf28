package bitcode

import (
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/vm"
)

// bitcodeFlatMap is the flat_map function attached to every bit-code monad
// cell. It receives the pair (monad value . map fn) in cell 0, defers the
// mapping into the monad's chain, and returns the composed monad.
//
// The deferred mapper captures the frame it was invoked on, so mapping
// functions compiled against that frame stay valid when the assembler runs
// them later, even after the frame has been popped.
type bitcodeFlatMap struct{}

// Description returns a string shown when the value is displayed.
func (bitcodeFlatMap) Description() string { return "##bitcode_flatmap##" }

// ReturnsMonad flags the result as a monad for the binder.
func (bitcodeFlatMap) ReturnsMonad() bool { return true }

// Resolve composes the monad with the mapping function.
func (bitcodeFlatMap) Resolve(frame *cell.Frame) (cell.Cell, error) {
	pair, ok := frame.Cells[0].(*cell.List)
	if !ok {
		return nil, vm.NewError(vm.NOT_A_MONAD, frame.Cells[0])
	}

	monad, ok := FromCell(pair.Car)
	if !ok {
		monad = Empty()
	}

	mapFn, ok := pair.Cdr.(*cell.FrameMonadCell)
	if !ok {
		return nil, vm.NewError(vm.NOT_A_FUNCTION, pair.Cdr)
	}

	captured := frame
	next, err := monad.FlatMap(func(value cell.Cell) (*Monad, error) {
		captured.Allocate(1)
		saved := captured.Cells[0]
		captured.Cells[0] = value
		result, err := mapFn.Fn.Resolve(captured)
		captured.Cells[0] = saved
		if err != nil {
			return nil, err
		}

		nextMonad, ok := FromCell(result)
		if !ok {
			return nil, vm.NewError(vm.MISMATCHED_MONAD, result)
		}
		return nextMonad, nil
	})
	if err != nil {
		return nil, err
	}

	return next.ToCell(), nil
}

// FlatMapCell is the shared flat_map function cell of bit-code monads.
var FlatMapCell cell.Cell = &cell.FrameMonadCell{Fn: bitcodeFlatMap{}}
