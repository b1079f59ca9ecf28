package syntax

import (
	"github.com/dr8co/sema/bind"
	"github.com/dr8co/sema/cell"
)

// extendSyntaxKeyword implements
//
//	(extend_syntax <existing> <new_name> ((<symbol> <pattern>…) (<body>…) …))
//
// The existing syntax's pattern table is recovered from its parameter slot
// (the BTree under the `syntax` key) and combined with the new patterns
// into a fresh closure bound to the new name. Symbols redefined by the new
// patterns shadow the old ones.
type extendSyntaxKeyword struct {
	keywordBase
}

// Bind resolves an invocation to a bound compiler node.
func (e *extendSyntaxKeyword) Bind(b *bind.SymbolBindings, args cell.Cell) (cell.BoundCompiler, error) {
	items, ok := cell.ListToSlice(args)
	if !ok || len(items) < 3 {
		return nil, bind.NewError(bind.ARGUMENTS_NOT_SUPPLIED, args)
	}
	existingName, ok := items[0].(*cell.AtomCell)
	if !ok {
		return nil, bind.NewError(bind.VARIABLES_MUST_BE_ATOMS, items[0])
	}
	newName, ok := items[1].(*cell.AtomCell)
	if !ok {
		return nil, bind.NewError(bind.VARIABLES_MUST_BE_ATOMS, items[1])
	}

	// Look up the existing syntax, rebinding into this frame if it came
	// from an enclosing one.
	existing, err := b.LookUpAndImport(existingName.ID)
	if err != nil {
		return nil, err
	}
	existingSyntax, ok := existing.(*cell.Syntax)
	if !ok {
		return nil, bind.Errorf(bind.CANNOT_EXTEND_SYNTAX, "%s", cell.AtomName(existingName.ID))
	}

	// The parameter slot carries the user-visible pattern table.
	table, err := cell.BTreeSearch(existingSyntax.Param, cell.Atom("syntax"))
	if err != nil || cell.IsNil(table) {
		return nil, bind.Errorf(bind.CANNOT_EXTEND_SYNTAX, "%s", cell.AtomName(existingName.ID))
	}
	tree, ok := table.(*cell.BTree)
	if !ok {
		return nil, bind.Errorf(bind.CANNOT_EXTEND_SYNTAX, "%s", cell.AtomName(existingName.ID))
	}

	symbolOrder, groups, err := parsePatternTable(items[2])
	if err != nil {
		return nil, err
	}

	// Carry over the old symbols the new patterns do not shadow.
	shadowed := map[uint64]bool{}
	for _, id := range symbolOrder {
		shadowed[id] = true
	}

	var carryOver []NamedSymbol
	var walkErr error
	walkBTree(tree, func(key, value cell.Cell) {
		atom, ok := key.(*cell.AtomCell)
		if !ok || shadowed[atom.ID] {
			return
		}
		syntaxCell, ok := value.(*cell.Syntax)
		if !ok {
			return
		}
		symbol, ok := syntaxCell.Binder.(*SyntaxSymbol)
		if !ok {
			walkErr = bind.Errorf(bind.CANNOT_EXTEND_SYNTAX, "%s", cell.AtomName(existingName.ID))
			return
		}
		carryOver = append(carryOver, NamedSymbol{AtomID: atom.ID, Symbol: symbol})
	})
	if walkErr != nil {
		return nil, walkErr
	}

	closure, err := buildSyntaxSymbols(b, symbolOrder, groups, carryOver)
	if err != nil {
		return nil, err
	}

	syntaxCell := &cell.Syntax{Binder: closure, Param: closure.Param()}
	b.SetSymbol(newName.ID, syntaxCell)
	b.Export(newName.ID)

	return &nopBound{desc: "##extend_syntax##"}, nil
}

// walkBTree visits every entry of a tree in key order.
func walkBTree(tree *cell.BTree, visit func(key, value cell.Cell)) {
	for i, entry := range tree.Entries {
		if i < len(tree.Children) {
			walkBTree(tree.Children[i], visit)
		}
		visit(entry.Key, entry.Value)
	}
	if len(tree.Children) > 0 {
		walkBTree(tree.Children[len(tree.Children)-1], visit)
	}
}
