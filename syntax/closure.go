package syntax

import (
	"github.com/dr8co/sema/bind"
	"github.com/dr8co/sema/cell"
)

// NamedSymbol pairs a macro symbol name with its binder.
type NamedSymbol struct {
	AtomID uint64
	Symbol *SyntaxSymbol
}

// SyntaxClosure implements the (some_syntax statements…) form produced by
// def_syntax: a binding scope whose statements see the syntax symbols the
// definition introduced. It also answers the special `syntax` atom with the
// user-visible pattern table, and rebinds its symbols when the closure is
// used from another frame.
type SyntaxClosure struct {
	Symbols []NamedSymbol

	// symbolCells caches one Syntax cell per symbol.
	symbolCells []cell.Cell

	// table maps each symbol name atom to its syntax cell.
	table cell.Cell
}

// NewSyntaxClosure builds a closure over a set of named symbols, each
// carrying its own captured bindings.
func NewSyntaxClosure(symbols []NamedSymbol) *SyntaxClosure {
	closure := &SyntaxClosure{}

	table := cell.Cell(cell.Nil)
	for _, named := range symbols {
		symbolCell := &cell.Syntax{Binder: named.Symbol, Param: cell.Nil}

		closure.Symbols = append(closure.Symbols, named)
		closure.symbolCells = append(closure.symbolCells, symbolCell)

		inserted, err := cell.BTreeInsert(table, &cell.AtomCell{ID: named.AtomID}, symbolCell)
		if err == nil {
			table = inserted
		}
	}
	closure.table = table

	return closure
}

// Param returns the parameter cell of the closure's Syntax value: a BTree
// binding the `syntax` key to the pattern table, which is how
// extend_syntax and user introspection reach the symbols.
func (s *SyntaxClosure) Param() cell.Cell {
	param, err := cell.BTreeInsert(cell.Nil, cell.Atom("syntax"), s.table)
	if err != nil {
		return cell.Nil
	}
	return param
}

// Description returns a string shown when the value is displayed.
func (s *SyntaxClosure) Description() string { return "##syntax_closure##" }

// ReferenceType returns the reference kind of an invocation.
func (s *SyntaxClosure) ReferenceType(_ cell.Cell) cell.ReferenceType {
	// The statements decide at bind time; assume a value here.
	return cell.ValueReference
}

// PreBind installs forward declarations; the closure installs none.
func (s *SyntaxClosure) PreBind(_ *bind.SymbolBindings, args cell.Cell) cell.Cell { return args }

// Bind binds the invocation's statements in a scope where the syntax
// symbols (and the `syntax` introspection atom) are visible.
func (s *SyntaxClosure) Bind(b *bind.SymbolBindings, args cell.Cell) (cell.BoundCompiler, error) {
	if args == nil {
		args = cell.Nil
	}

	interior := b.PushInteriorFrame()
	for i, named := range s.Symbols {
		interior.SetSymbol(named.AtomID, s.symbolCells[i])
	}
	interior.SetSymbol(cell.AtomID("syntax"), s.table)

	bound, _, err := bind.BindSeveralStatements(args, interior)
	interior.Pop()
	if err != nil {
		return nil, err
	}

	return &seqBound{statements: bound}, nil
}

// RebindFromOuterFrame re-imports each symbol's captured bindings when the
// closure is used from a frame below the one that defined it.
func (s *SyntaxClosure) RebindFromOuterFrame(b *bind.SymbolBindings, _ cell.Cell, depth int) (bind.SyntaxCompiler, cell.Cell, bool) {
	changed := false
	rebound := make([]NamedSymbol, len(s.Symbols))

	for i, named := range s.Symbols {
		newImported := bind.RebindImportedBindings(named.Symbol.Imported, b, depth)
		if newImported == nil {
			rebound[i] = named
			continue
		}
		changed = true
		rebound[i] = NamedSymbol{AtomID: named.AtomID, Symbol: &SyntaxSymbol{
			Patterns: named.Symbol.Patterns,
			Imported: newImported,
			RefType:  named.Symbol.RefType,
		}}
	}

	if !changed {
		return nil, nil, false
	}

	// Rebuild so the symbol cells and the pattern table reflect the
	// rebound symbols.
	newClosure := &SyntaxClosure{}
	table := cell.Cell(cell.Nil)
	for _, named := range rebound {
		symbolCell := &cell.Syntax{Binder: named.Symbol, Param: cell.Nil}
		newClosure.Symbols = append(newClosure.Symbols, named)
		newClosure.symbolCells = append(newClosure.symbolCells, symbolCell)
		if inserted, err := cell.BTreeInsert(table, &cell.AtomCell{ID: named.AtomID}, symbolCell); err == nil {
			table = inserted
		}
	}
	newClosure.table = table

	return newClosure, newClosure.Param(), true
}
