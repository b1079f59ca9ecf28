package vm

import (
	"fmt"
	"strings"

	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/code"
)

// CapturedCell is an upvalue bound into a lambda's frame before its actions
// run.
type CapturedCell struct {
	Index int
	Value cell.Cell
}

// Lambda is a function value: an action list run in a fresh frame. Callers
// place the argument list in cell 0 of their own frame; the lambda copies
// it into cell 0 of the new frame and spreads the arguments into cells
// 1..ArgCount.
type Lambda struct {
	Actions  code.Actions
	NumCells int
	ArgCount int

	// Captured holds upvalues bound by a closure wrapper.
	Captured []CapturedCell
}

// Description returns a string shown when the value is displayed.
func (l *Lambda) Description() string {
	args := strings.TrimRight(strings.Repeat("_ ", l.ArgCount), " ")
	return fmt.Sprintf("(lambda (%s) ##%d actions##)", args, len(l.Actions))
}

// Resolve calls the lambda: a new frame is created, arguments and captured
// values are installed, and the body actions run.
func (l *Lambda) Resolve(frame *cell.Frame) (cell.Cell, error) {
	args := cell.Nil
	if len(frame.Cells) > 0 {
		args = frame.Cells[0]
	}

	inner := cell.NewFrame(l.NumCells, frame)
	inner.Allocate(l.ArgCount + 1)
	inner.Cells[0] = args

	for _, captured := range l.Captured {
		inner.Allocate(captured.Index + 1)
		inner.Cells[captured.Index] = captured.Value
	}

	// Spread the arguments into cells 1..ArgCount.
	argPos := 0
	next := args
	for argPos < l.ArgCount {
		pair, ok := next.(*cell.List)
		if !ok {
			break
		}
		inner.Cells[1+argPos] = pair.Car
		next = pair.Cdr
		argPos++
	}

	return Exec(l.Actions, inner)
}
