package bind

import (
	"github.com/dr8co/sema/cell"
)

// PreBindStatement walks a statement before the bind pass, giving syntax a
// chance to allocate cells and install forward declarations so that
// intra-scope forward references (labels, mutually recursive macros)
// resolve. Pre-binding never imports from outer frames; the returned tree
// only matters to the pre-binding of enclosing syntax.
func PreBindStatement(source cell.Cell, b *SymbolBindings) cell.Cell {
	switch source := source.(type) {
	case *cell.List:
		return preBindList(source.Car, source.Cdr, b)

	case *cell.AtomCell:
		// Symbols defined later in the current scope are not yet visible;
		// they pre-bind to themselves.
		if value, _, ok := b.LookUp(source.ID); ok {
			return value
		}
		return source

	default:
		return source
	}
}

func preBindList(car, cdr cell.Cell, b *SymbolBindings) cell.Cell {
	if atom, ok := car.(*cell.AtomCell); ok {
		if value, _, ok := b.LookUp(atom.ID); ok {
			if syntax, ok := value.(*cell.Syntax); ok {
				if compiler, ok := syntax.Binder.(SyntaxCompiler); ok {
					bound := compiler.PreBind(b, cdr)
					return cell.NewList(value, bound)
				}
				return cell.NewList(value, cdr)
			}
		}
	}

	// Default: pre-bind the head and every argument as a call.
	head := PreBindStatement(car, b)

	var items []cell.Cell
	items = append(items, head)

	next := cdr
	for {
		switch arg := next.(type) {
		case *cell.List:
			items = append(items, PreBindStatement(arg.Car, b))
			next = arg.Cdr
		case *cell.NilCell:
			return cell.ListFromSlice(items)
		default:
			// Improper list: pre-bind the hanging cdr.
			return cell.ListFromSliceWithCdr(items, PreBindStatement(next, b))
		}
	}
}
