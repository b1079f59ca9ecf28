package bind

import (
	"fmt"

	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/code"
	"github.com/dr8co/sema/vm"
)

// MonadLift is the bound form of a call with a monad-kind argument: the
// argument is flat-mapped and its value substituted into the body through a
// fresh frame cell, so the whole expression evaluates to a monad.
type MonadLift struct {
	// Monad is the bound expression producing the monad.
	Monad cell.Cell

	// CellIndex is the frame cell receiving the flat-mapped value.
	CellIndex int

	// Body is the bound expression using the cell in place of the monad.
	Body cell.Cell
}

// Description returns a string shown when the value is displayed.
func (m *MonadLift) Description() string {
	return fmt.Sprintf("##monad_lift#%d##", m.CellIndex)
}

// ReferenceType returns the reference kind of the generated expression.
func (m *MonadLift) ReferenceType() cell.ReferenceType { return cell.MonadReference }

// SubstituteFrameRefs rewrites the frame references captured by the node.
func (m *MonadLift) SubstituteFrameRefs(sub func(cell.FrameReference) cell.Cell) cell.BoundCompiler {
	index := m.CellIndex
	if replacement := sub(cell.FrameReference{CellIndex: index, FrameDepth: 0, Kind: cell.ValueReference}); replacement != nil {
		if ref, ok := replacement.(*cell.FrameReference); ok {
			index = ref.CellIndex
		}
	}
	return &MonadLift{
		Monad:     SubstituteFrameRefs(m.Monad, sub),
		CellIndex: index,
		Body:      SubstituteFrameRefs(m.Body, sub),
	}
}

// CompileActions lowers the lift: the mapping function is pushed, the monad
// is evaluated, and the two meet in a FlatMap.
func (m *MonadLift) CompileActions() (code.Compiled, error) {
	bodyCompiled, err := CompileStatement(m.Body)
	if err != nil {
		return code.Compiled{}, err
	}
	monadCompiled, err := CompileStatement(m.Monad)
	if err != nil {
		return code.Compiled{}, err
	}

	mapFn := &vm.ActionsFn{
		StoreArg: m.CellIndex,
		Actions:  bodyCompiled.Actions,
		Monadic:  cell.RefTypeOf(m.Body) == cell.MonadReference,
		Desc:     m.Description(),
	}

	var result code.Compiled
	result.FrameSetup = append(result.FrameSetup, monadCompiled.FrameSetup...)
	result.FrameSetup = append(result.FrameSetup, bodyCompiled.FrameSetup...)
	result.Add(code.Value(&cell.FrameMonadCell{Fn: mapFn}))
	result.Add(code.Push())
	result.Actions = append(result.Actions, monadCompiled.Actions...)
	result.Add(code.FlatMap())

	return result, nil
}

// MonadApply is the bound form of a call whose head is a monad: the monad
// is flat-mapped and its value called with the evaluated arguments.
type MonadApply struct {
	// Monad is the bound head expression.
	Monad cell.Cell

	// Args are the bound argument expressions.
	Args []cell.Cell

	// ArgsCdr is the bound hanging cdr of an improper argument list, or
	// nil.
	ArgsCdr cell.Cell

	// CellIndex is the frame cell receiving the function value.
	CellIndex int
}

// Description returns a string shown when the value is displayed.
func (m *MonadApply) Description() string {
	return fmt.Sprintf("##monad_apply#%d##", m.CellIndex)
}

// ReferenceType returns the reference kind of the generated expression.
func (m *MonadApply) ReferenceType() cell.ReferenceType { return cell.ReturnsMonadReference }

// SubstituteFrameRefs rewrites the frame references captured by the node.
func (m *MonadApply) SubstituteFrameRefs(sub func(cell.FrameReference) cell.Cell) cell.BoundCompiler {
	index := m.CellIndex
	if replacement := sub(cell.FrameReference{CellIndex: index, FrameDepth: 0, Kind: cell.ValueReference}); replacement != nil {
		if ref, ok := replacement.(*cell.FrameReference); ok {
			index = ref.CellIndex
		}
	}

	args := make([]cell.Cell, len(m.Args))
	for i, arg := range m.Args {
		args[i] = SubstituteFrameRefs(arg, sub)
	}
	var argsCdr cell.Cell
	if m.ArgsCdr != nil {
		argsCdr = SubstituteFrameRefs(m.ArgsCdr, sub)
	}

	return &MonadApply{
		Monad:     SubstituteFrameRefs(m.Monad, sub),
		Args:      args,
		ArgsCdr:   argsCdr,
		CellIndex: index,
	}
}

// CompileActions lowers the application: the mapping function stores the
// monad's value (the function to call), evaluates the arguments, and calls
// it; the result is wrapped back into the monad.
func (m *MonadApply) CompileActions() (code.Compiled, error) {
	var body code.Compiled
	body.Add(code.CellValue(m.CellIndex))
	body.Add(code.Push())

	argCount := 0
	for _, arg := range m.Args {
		compiled, err := CompileStatement(arg)
		if err != nil {
			return code.Compiled{}, err
		}
		body.Extend(compiled)
		body.Add(code.Push())
		argCount++
	}
	if m.ArgsCdr != nil {
		compiled, err := CompileStatement(m.ArgsCdr)
		if err != nil {
			return code.Compiled{}, err
		}
		body.Extend(compiled)
		body.Add(code.Push())
		body.Add(code.PopListWithCdr(argCount))
	} else {
		body.Add(code.PopList(argCount))
	}
	body.Add(code.StoreCell(0))
	body.Add(code.Pop())
	body.Add(code.Call())

	mapFn := &vm.ActionsFn{
		StoreArg: m.CellIndex,
		Actions:  body.Actions,
		Monadic:  false,
		Desc:     m.Description(),
	}

	monadCompiled, err := CompileStatement(m.Monad)
	if err != nil {
		return code.Compiled{}, err
	}

	var result code.Compiled
	result.FrameSetup = append(result.FrameSetup, monadCompiled.FrameSetup...)
	result.FrameSetup = append(result.FrameSetup, body.FrameSetup...)
	result.Add(code.Value(&cell.FrameMonadCell{Fn: mapFn}))
	result.Add(code.Push())
	result.Actions = append(result.Actions, monadCompiled.Actions...)
	result.Add(code.FlatMap())

	return result, nil
}
