package vm

import (
	"fmt"
	"strings"

	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/code"
)

// CellImport maps a cell of the defining frame to a cell of the function's
// frame.
type CellImport struct {
	Source int
	Target int
}

// Closure builds a function that captures upvalues. Resolving the closure
// reads the imported cells out of the current frame and returns a lambda
// with those values bound, so a closure value must be called once, where it
// is defined, to produce the actual function.
type Closure struct {
	Actions  code.Actions
	Imports  []CellImport
	NumCells int
	ArgCount int

	// Preset holds captures whose values are already known: macro
	// expansion substitutes constants for imported cells here.
	Preset []CapturedCell

	// Monadic marks functions whose body evaluates to a monad.
	Monadic bool
}

// Description returns a string shown when the value is displayed.
func (c *Closure) Description() string {
	args := strings.TrimRight(strings.Repeat("_ ", c.ArgCount), " ")
	return fmt.Sprintf("(closure (%s) ##%d actions##)", args, len(c.Actions))
}

// Resolve captures the imported cells from the current frame and returns
// the bound function.
func (c *Closure) Resolve(frame *cell.Frame) (cell.Cell, error) {
	captured := make([]CapturedCell, 0, len(c.Imports)+len(c.Preset))
	captured = append(captured, c.Preset...)
	for _, imp := range c.Imports {
		if imp.Source < 0 || imp.Source >= len(frame.Cells) {
			return nil, Errorf(CELL_OUT_OF_BOUNDS, "closure import %d of %d", imp.Source, len(frame.Cells))
		}
		captured = append(captured, CapturedCell{Index: imp.Target, Value: frame.Cells[imp.Source]})
	}

	lambda := &Lambda{
		Actions:  c.Actions,
		NumCells: c.NumCells,
		ArgCount: c.ArgCount,
		Captured: captured,
	}

	var fn cell.FrameMonad = lambda
	if c.Monadic {
		fn = &MonadFn{Inner: fn}
	}
	return &cell.FrameMonadCell{Fn: fn}, nil
}

// MonadFn decorates a frame monad to flag that it returns a monad.
type MonadFn struct {
	Inner cell.FrameMonad
}

// Description returns a string shown when the value is displayed.
func (m *MonadFn) Description() string { return m.Inner.Description() }

// Resolve delegates to the wrapped function.
func (m *MonadFn) Resolve(frame *cell.Frame) (cell.Cell, error) {
	return m.Inner.Resolve(frame)
}

// ReturnsMonad flags the result as a monad for the binder.
func (m *MonadFn) ReturnsMonad() bool { return true }
