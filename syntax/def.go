package syntax

import (
	"fmt"

	"github.com/dr8co/sema/bind"
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/code"
)

// defKeyword implements (def <name> <value>): the value is bound, a cell is
// allocated for it, and the name maps to that cell for everything after
// this statement in the same frame.
type defKeyword struct {
	keywordBase
}

// Bind resolves an invocation to a bound compiler node.
func (d *defKeyword) Bind(b *bind.SymbolBindings, args cell.Cell) (cell.BoundCompiler, error) {
	items, ok := cell.ListToSlice(args)
	if !ok || len(items) != 2 {
		return nil, bind.NewError(bind.ARGUMENTS_NOT_SUPPLIED, args)
	}
	name, ok := items[0].(*cell.AtomCell)
	if !ok {
		return nil, bind.NewError(bind.VARIABLES_MUST_BE_ATOMS, items[0])
	}

	value, err := bind.BindStatement(items[1], b)
	if err != nil {
		return nil, err
	}

	cellIndex := b.AllocCell()
	kind := cell.RefTypeOf(value)
	b.SetSymbol(name.ID, &cell.FrameReference{CellIndex: cellIndex, FrameDepth: 0, Kind: kind})
	b.Export(name.ID)

	return &defBound{cellIndex: cellIndex, value: value}, nil
}

// defBound is the bound form of a def: evaluate the value and store it in
// the allocated cell.
type defBound struct {
	cellIndex int
	value     cell.Cell
}

func (d *defBound) Description() string {
	return fmt.Sprintf("##def#%d##", d.cellIndex)
}

func (d *defBound) ReferenceType() cell.ReferenceType {
	return cell.RefTypeOf(d.value)
}

func (d *defBound) SubstituteFrameRefs(sub func(cell.FrameReference) cell.Cell) cell.BoundCompiler {
	index := d.cellIndex
	if replacement := sub(cell.FrameReference{CellIndex: index, FrameDepth: 0, Kind: cell.ValueReference}); replacement != nil {
		if ref, ok := replacement.(*cell.FrameReference); ok {
			index = ref.CellIndex
		}
	}
	return &defBound{cellIndex: index, value: bind.SubstituteFrameRefs(d.value, sub)}
}

func (d *defBound) CompileActions() (code.Compiled, error) {
	actions, err := bind.CompileStatement(d.value)
	if err != nil {
		return code.Compiled{}, err
	}
	actions.Add(code.StoreCell(d.cellIndex))
	return actions, nil
}
