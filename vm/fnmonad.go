package vm

import (
	"fmt"

	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/code"
)

// NativeFn adapts a Go function into a frame monad. The argument list is
// parsed out of cell 0; arity and type checks are the function's own
// responsibility, helped by the *Arg accessors below.
type NativeFn struct {
	Name string
	Fn   func(args []cell.Cell, frame *cell.Frame) (cell.Cell, error)

	// Monadic flags functions whose return value is a monad.
	Monadic bool
}

// NewFn creates a native function.
func NewFn(name string, fn func(args []cell.Cell, frame *cell.Frame) (cell.Cell, error)) *NativeFn {
	return &NativeFn{Name: name, Fn: fn}
}

// NewMonadFn creates a native function whose return value is a monad.
func NewMonadFn(name string, fn func(args []cell.Cell, frame *cell.Frame) (cell.Cell, error)) *NativeFn {
	return &NativeFn{Name: name, Fn: fn, Monadic: true}
}

// Description returns a string shown when the value is displayed.
func (n *NativeFn) Description() string { return fmt.Sprintf("##%s##", n.Name) }

// Resolve parses the argument list from cell 0 and calls the Go function.
func (n *NativeFn) Resolve(frame *cell.Frame) (cell.Cell, error) {
	var args []cell.Cell
	if len(frame.Cells) > 0 {
		var ok bool
		args, ok = cell.ListToSlice(frame.Cells[0])
		if !ok {
			return nil, NewError(TYPE_MISMATCH, frame.Cells[0])
		}
	}
	return n.Fn(args, frame)
}

// ReturnsMonad flags the result as a monad for the binder.
func (n *NativeFn) ReturnsMonad() bool { return n.Monadic }

// ExactArgs checks an argument list for an exact count.
func ExactArgs(args []cell.Cell, count int) error {
	if len(args) > count {
		return NewError(TOO_MANY_ARGUMENTS, cell.ListFromSlice(args))
	}
	if len(args) < count {
		return NewError(NOT_ENOUGH_ARGUMENTS, cell.ListFromSlice(args))
	}
	return nil
}

// NumberArg returns argument i as a number.
func NumberArg(args []cell.Cell, i int) (*cell.Number, error) {
	if i >= len(args) {
		return nil, NewError(NOT_ENOUGH_ARGUMENTS, cell.ListFromSlice(args))
	}
	num, ok := args[i].(*cell.Number)
	if !ok {
		return nil, NewError(NOT_A_NUMBER, args[i])
	}
	return num, nil
}

// ListArg returns argument i as a pair.
func ListArg(args []cell.Cell, i int) (*cell.List, error) {
	if i >= len(args) {
		return nil, NewError(NOT_ENOUGH_ARGUMENTS, cell.ListFromSlice(args))
	}
	list, ok := args[i].(*cell.List)
	if !ok {
		return nil, NewError(TYPE_MISMATCH, args[i])
	}
	return list, nil
}

// ActionsFn is a frame monad around a compiled action list, used as the
// mapping function of a flat_map: the flat-mapped value arrives in cell 0
// and is stored into StoreArg before the actions run on the same frame.
//
// Because the mapping runs against the frame it was compiled for, frame
// references inside the actions stay valid even when the monad is resolved
// later, after the frame has been popped: the frame object outlives its
// activation.
type ActionsFn struct {
	// StoreArg is the frame cell that receives the flat-mapped value, or -1.
	StoreArg int

	Actions code.Actions

	// Monadic is true when the actions already produce a monad; otherwise
	// the result is wrapped.
	Monadic bool

	Desc string
}

// Description returns a string shown when the value is displayed.
func (a *ActionsFn) Description() string {
	if a.Desc != "" {
		return a.Desc
	}
	return fmt.Sprintf("##actions#%d##", len(a.Actions))
}

// Resolve stores the incoming value and runs the action list.
func (a *ActionsFn) Resolve(frame *cell.Frame) (cell.Cell, error) {
	if a.StoreArg >= 0 {
		frame.Allocate(a.StoreArg + 1)
		frame.Cells[a.StoreArg] = frame.Cells[0]
	}
	result, err := Exec(a.Actions, frame)
	if err != nil {
		return nil, err
	}
	if !a.Monadic {
		return WrapValue(result), nil
	}
	if _, ok := result.(*cell.Monad); !ok {
		return nil, NewError(MISMATCHED_MONAD, result)
	}
	return result, nil
}

// ReturnsMonad flags the result as a monad for the binder.
func (a *ActionsFn) ReturnsMonad() bool { return true }
