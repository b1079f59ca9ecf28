package bind

import (
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/code"
)

// CompileStatement lowers a bound cell tree into an action stream.
func CompileStatement(source cell.Cell) (code.Compiled, error) {
	switch source := source.(type) {
	case *cell.List:
		return compileListStatement(source.Car, source.Cdr)

	case *cell.FrameReference:
		if source.FrameDepth != 0 {
			// The binder imports cross-frame references before compiling;
			// seeing one here is an error.
			return code.Compiled{}, NewError(CELL_IN_OTHER_FRAME, source)
		}
		return code.Compiled{Actions: code.Actions{code.CellValue(source.CellIndex)}}, nil

	case *cell.BoundSyntax:
		compilable, ok := source.Compiler.(Compilable)
		if !ok {
			return code.Compiled{}, NewError(UNBOUND_SYMBOL, source)
		}
		return compilable.CompileActions()

	default:
		return code.Compiled{Actions: code.Actions{code.Value(source)}}, nil
	}
}

// compileListStatement compiles a bound call.
func compileListStatement(car, cdr cell.Cell) (code.Compiled, error) {
	head, err := CompileStatement(car)
	if err != nil {
		return code.Compiled{}, err
	}
	return compileCall(head, cdr)
}

// compileCall generates a call: the function value is pushed, the arguments
// are evaluated and pushed, the argument list lands in cell 0, and the
// function is popped and called.
func compileCall(loadFn code.Compiled, args cell.Cell) (code.Compiled, error) {
	actions := loadFn
	actions.Add(code.Push())

	argCount := 0
	next := args

loop:
	for {
		switch arg := next.(type) {
		case *cell.List:
			compiled, err := CompileStatement(arg.Car)
			if err != nil {
				return code.Compiled{}, err
			}
			actions.Extend(compiled)
			actions.Add(code.Push())
			argCount++
			next = arg.Cdr

		case *cell.NilCell:
			actions.Add(code.PopList(argCount))
			break loop

		default:
			compiled, err := CompileStatement(next)
			if err != nil {
				return code.Compiled{}, err
			}
			actions.Extend(compiled)
			actions.Add(code.Push())
			actions.Add(code.PopListWithCdr(argCount))
			break loop
		}
	}

	actions.Add(code.StoreCell(0))
	actions.Add(code.Pop())
	actions.Add(code.Call())

	return actions, nil
}

// BindSeveralStatements binds each statement of a list and reports the
// combined reference kind: monadic if any statement is monadic, otherwise
// the kind of the last statement.
func BindSeveralStatements(statements cell.Cell, b *SymbolBindings) (cell.Cell, cell.ReferenceType, error) {
	var bound []cell.Cell
	refType := cell.ValueReference

	items, ok := cell.ListToSlice(statements)
	if !ok {
		return nil, refType, NewError(SYNTAX_EXPECTING_LIST, statements)
	}

	for _, statement := range items {
		boundStatement, err := BindStatement(statement, b)
		if err != nil {
			return nil, refType, err
		}
		if refType != cell.MonadReference {
			refType = cell.RefTypeOf(boundStatement)
		}
		bound = append(bound, boundStatement)
	}

	return cell.ListFromSlice(bound), refType, nil
}

// CompileSeveralStatements compiles a bound statement list. When the
// combined reference kind is monadic, non-monad statements are wrapped, the
// first statement pushes its monad, later ones sequence with Next, and the
// composed monad is popped at the end.
func CompileSeveralStatements(statements cell.Cell) (code.Compiled, error) {
	items, ok := cell.ListToSlice(statements)
	if !ok {
		return code.Compiled{}, NewError(SYNTAX_EXPECTING_LIST, statements)
	}

	refType := cell.ValueReference
	for _, statement := range items {
		if cell.RefTypeOf(statement) == cell.MonadReference {
			refType = cell.MonadReference
			break
		}
	}
	if refType != cell.MonadReference && len(items) > 0 {
		refType = cell.RefTypeOf(items[len(items)-1])
	}

	var result code.Compiled
	for i, statement := range items {
		compiled, err := CompileStatement(statement)
		if err != nil {
			return code.Compiled{}, err
		}
		result.Extend(compiled)

		if refType == cell.MonadReference {
			if cell.RefTypeOf(statement) != cell.MonadReference {
				result.Add(code.Wrap())
			}
			if i == 0 {
				result.Add(code.Push())
			} else {
				result.Add(code.Next())
			}
		}
	}

	if refType == cell.MonadReference && len(items) > 0 {
		result.Add(code.Pop())
	}

	return result, nil
}
