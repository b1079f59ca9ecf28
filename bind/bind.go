package bind

import (
	"github.com/dr8co/sema/cell"
)

// BindStatement performs the real symbol resolution on a statement: atoms
// become frame references (importing across frame boundaries as needed),
// list heads dispatch on what they resolve to, and syntax invocations
// become bound syntax nodes.
func BindStatement(source cell.Cell, b *SymbolBindings) (cell.Cell, error) {
	switch source := source.(type) {
	case *cell.List:
		return bindListStatement(source.Car, source.Cdr, b)

	case *cell.AtomCell:
		value, err := b.LookUpAndImport(source.ID)
		if err != nil {
			return nil, err
		}

		if syntax, ok := value.(*cell.Syntax); ok {
			// A keyword used in value position binds with no arguments
			// (labels evaluate to their value this way).
			compiler, ok := syntax.Binder.(SyntaxCompiler)
			if !ok {
				return nil, NewError(UNBOUND_SYMBOL, source)
			}
			bound, err := compiler.Bind(b, nil)
			if err != nil {
				return nil, err
			}
			return &cell.BoundSyntax{Compiler: bound}, nil
		}
		return value, nil

	default:
		return source, nil
	}
}

// bindListStatement binds a list statement such as (cons 1 2), dispatching
// on what the head resolves to.
func bindListStatement(car, cdr cell.Cell, b *SymbolBindings) (cell.Cell, error) {
	if atom, ok := car.(*cell.AtomCell); ok {
		value, err := b.LookUpAndImport(atom.ID)
		if err != nil {
			return nil, err
		}

		if syntax, ok := value.(*cell.Syntax); ok {
			compiler, ok := syntax.Binder.(SyntaxCompiler)
			if !ok {
				return nil, NewError(UNBOUND_SYMBOL, atom)
			}
			bound, err := compiler.Bind(b, cdr)
			if err != nil {
				return nil, err
			}
			return &cell.BoundSyntax{Compiler: bound}, nil
		}

		return bindCall(value, cdr, b)
	}

	// The head is itself an expression: bind it, then bind the call.
	head, err := BindStatement(car, b)
	if err != nil {
		return nil, err
	}
	return bindCall(head, cdr, b)
}

// callableHead rejects constants in call position.
func callableHead(head cell.Cell) error {
	switch head.(type) {
	case *cell.NilCell, *cell.Boolean, *cell.Char, *cell.StringCell,
		*cell.Number, *cell.AtomCell, *cell.BitCodeCell, *cell.BTree:
		return NewError(CONSTANTS_NOT_CALLABLE, head)
	default:
		return nil
	}
}

// bindCall binds a function call given the already-bound head. Monadic
// arguments lift the call into a flat-map; a monadic head turns the call
// into an application of the monad's value.
func bindCall(head cell.Cell, args cell.Cell, b *SymbolBindings) (cell.Cell, error) {
	if err := callableHead(head); err != nil {
		return nil, err
	}

	// Bind the arguments, tolerating an improper tail.
	var bound []cell.Cell
	var boundCdr cell.Cell

	next := args
loop:
	for {
		switch arg := next.(type) {
		case *cell.List:
			boundArg, err := BindStatement(arg.Car, b)
			if err != nil {
				return nil, err
			}
			bound = append(bound, boundArg)
			next = arg.Cdr
		case *cell.NilCell:
			break loop
		default:
			hanging, err := BindStatement(next, b)
			if err != nil {
				return nil, err
			}
			boundCdr = hanging
			break loop
		}
	}

	if cell.RefTypeOf(head) == cell.MonadReference {
		// "Calling" a monad applies its value as a function.
		apply := &MonadApply{Monad: head, Args: bound, ArgsCdr: boundCdr, CellIndex: b.AllocCell()}
		return &cell.BoundSyntax{Compiler: apply}, nil
	}

	// Find monad-kind arguments: each one lifts the call into a flat_map
	// that substitutes the monad's value through a fresh cell.
	type lift struct {
		expr      cell.Cell
		cellIndex int
	}
	var lifts []lift

	replaced := make([]cell.Cell, len(bound))
	copy(replaced, bound)
	for i, arg := range bound {
		if cell.RefTypeOf(arg) == cell.MonadReference {
			index := b.AllocCell()
			lifts = append(lifts, lift{expr: arg, cellIndex: index})
			replaced[i] = &cell.FrameReference{CellIndex: index, FrameDepth: 0, Kind: cell.ValueReference}
		}
	}

	items := append([]cell.Cell{head}, replaced...)
	var call cell.Cell
	if boundCdr != nil {
		call = cell.ListFromSliceWithCdr(items, boundCdr)
	} else {
		call = cell.ListFromSlice(items)
	}

	if len(lifts) == 0 {
		return call, nil
	}

	// Nest the lifts innermost-last so the monads evaluate in argument
	// order.
	node := call
	for i := len(lifts) - 1; i >= 0; i-- {
		node = &cell.BoundSyntax{Compiler: &MonadLift{
			Monad:     lifts[i].expr,
			CellIndex: lifts[i].cellIndex,
			Body:      node,
		}}
	}
	return node, nil
}
