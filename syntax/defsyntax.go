package syntax

import (
	"github.com/dr8co/sema/bind"
	"github.com/dr8co/sema/cell"
)

// defSyntaxKeyword implements
//
//	(def_syntax <name> ((<symbol> <pattern>…) (<body>…) …))
//
// Each pattern's head atom names a macro symbol; several patterns may share
// a symbol, and the first matching pattern wins at a use site. The macro
// bodies are bound at definition time in their own frame, capturing the
// lexical environment, which makes expansion hygienic. The defined name
// becomes a syntax closure: (<name> statements…) binds the statements with
// the macro symbols in scope.
type defSyntaxKeyword struct {
	keywordBase
}

// parsedPattern is one pattern/body pair grouped under its macro symbol.
type parsedPattern struct {
	pattern *PatternMatch
	body    []cell.Cell
}

// Bind resolves an invocation to a bound compiler node.
func (d *defSyntaxKeyword) Bind(b *bind.SymbolBindings, args cell.Cell) (cell.BoundCompiler, error) {
	items, ok := cell.ListToSlice(args)
	if !ok || len(items) < 2 {
		return nil, bind.NewError(bind.ARGUMENTS_NOT_SUPPLIED, args)
	}
	name, ok := items[0].(*cell.AtomCell)
	if !ok {
		return nil, bind.NewError(bind.VARIABLES_MUST_BE_ATOMS, items[0])
	}

	symbolOrder, patterns, err := parsePatternTable(items[1])
	if err != nil {
		return nil, err
	}

	closure, err := buildSyntaxSymbols(b, symbolOrder, patterns, nil)
	if err != nil {
		return nil, err
	}

	syntaxCell := &cell.Syntax{Binder: closure, Param: closure.Param()}
	b.SetSymbol(name.ID, syntaxCell)
	b.Export(name.ID)

	return &nopBound{desc: "##def_syntax##"}, nil
}

// parsePatternTable splits the alternating pattern/body list into groups
// keyed by the pattern's head symbol, preserving declaration order.
func parsePatternTable(table cell.Cell) ([]uint64, map[uint64][]parsedPattern, error) {
	entries, ok := cell.ListToSlice(table)
	if !ok {
		return nil, nil, bind.NewError(bind.SYNTAX_EXPECTING_LIST, table)
	}
	if len(entries)%2 != 0 {
		return nil, nil, bind.NewError(bind.MISSING_ARGUMENT, table)
	}

	var order []uint64
	groups := map[uint64][]parsedPattern{}

	for i := 0; i < len(entries); i += 2 {
		patternDef, ok := entries[i].(*cell.List)
		if !ok {
			return nil, nil, bind.NewError(bind.SYNTAX_EXPECTING_LIST, entries[i])
		}
		symbol, ok := patternDef.Car.(*cell.AtomCell)
		if !ok {
			return nil, nil, bind.NewError(bind.SYNTAX_EXPECTING_ATOM, patternDef.Car)
		}

		pattern, err := PatternFromCells(patternDef.Cdr)
		if err != nil {
			return nil, nil, err
		}

		body, ok := cell.ListToSlice(entries[i+1])
		if !ok {
			return nil, nil, bind.NewError(bind.SYNTAX_EXPECTING_LIST, entries[i+1])
		}

		if _, seen := groups[symbol.ID]; !seen {
			order = append(order, symbol.ID)
		}
		groups[symbol.ID] = append(groups[symbol.ID], parsedPattern{pattern: pattern, body: body})
	}

	return order, groups, nil
}

// forwardRefSyntax is the sentinel installed for macro symbols before their
// own definitions bind: using one forward is an error.
type forwardRefSyntax struct {
	keywordBase
}

// Bind resolves an invocation to a bound compiler node.
func (f *forwardRefSyntax) Bind(_ *bind.SymbolBindings, args cell.Cell) (cell.BoundCompiler, error) {
	return nil, bind.NewError(bind.FORWARD_REFERENCE, args)
}

// buildSyntaxSymbols binds the macro bodies in an inner frame and builds
// the syntax closure. Extra pre-existing symbols (used by extend_syntax)
// are carried over unchanged.
func buildSyntaxSymbols(b *bind.SymbolBindings, symbolOrder []uint64, groups map[uint64][]parsedPattern, carryOver []NamedSymbol) (*SyntaxClosure, error) {
	evaluation := b.PushNewFrame()

	// Macros may reference each other, back-references only: symbols start
	// as errors and become real as their definitions bind.
	for _, symbolID := range symbolOrder {
		sentinel := &forwardRefSyntax{keywordBase{"forward_reference"}}
		evaluation.SetSymbol(symbolID, &cell.Syntax{Binder: sentinel, Param: cell.Nil})
	}
	for _, named := range carryOver {
		evaluation.SetSymbol(named.AtomID, &cell.Syntax{Binder: named.Symbol, Param: cell.Nil})
	}

	var symbols []NamedSymbol

	for _, symbolID := range symbolOrder {
		var boundPatterns []SymbolPattern

		for _, parsed := range groups[symbolID] {
			macroBindings := evaluation.PushInteriorFrame()

			// The captures become cells of the macro frame.
			var patternCells []cell.Cell
			for _, atomID := range parsed.pattern.Bindings() {
				argCell := macroBindings.AllocCell()
				ref := &cell.FrameReference{CellIndex: argCell, FrameDepth: 0, Kind: cell.ValueReference}
				macroBindings.SetSymbol(atomID, ref)
				patternCells = append(patternCells, ref)
			}

			for _, statement := range parsed.body {
				bind.PreBindStatement(statement, macroBindings)
			}

			var boundBody []cell.Cell
			for _, statement := range parsed.body {
				bound, err := bind.BindStatement(statement, macroBindings)
				if err != nil {
					macroBindings.Pop()
					evaluation.Pop()
					return nil, err
				}
				boundBody = append(boundBody, bound)
			}

			boundPatterns = append(boundPatterns, SymbolPattern{
				Pattern: parsed.pattern,
				Cells:   patternCells,
				Body:    cell.ListFromSlice(boundBody),
			})

			macroBindings.Pop()
		}

		symbol := NewSyntaxSymbol(boundPatterns)
		evaluation.SetSymbol(symbolID, &cell.Syntax{Binder: symbol, Param: cell.Nil})
		symbols = append(symbols, NamedSymbol{AtomID: symbolID, Symbol: symbol})
	}

	// Collect the values the macro bodies captured from outside.
	_, imports := evaluation.Pop()

	cellImports := map[int]cell.Cell{}
	for _, imp := range imports {
		ref, ok := imp.Outer.(*cell.FrameReference)
		if !ok {
			return nil, bind.NewError(bind.UNBOUND_SYMBOL, imp.Outer)
		}
		if ref.FrameDepth == 0 {
			cellImports[imp.Local] = &cell.FrameReference{CellIndex: ref.CellIndex, FrameDepth: 0, Kind: ref.Kind}
			continue
		}
		ourCell := b.AllocCell()
		b.Import(&cell.FrameReference{CellIndex: ref.CellIndex, FrameDepth: ref.FrameDepth - 1, Kind: ref.Kind}, ourCell)
		cellImports[imp.Local] = &cell.FrameReference{CellIndex: ourCell, FrameDepth: 0, Kind: ref.Kind}
	}

	for _, named := range symbols {
		named.Symbol.Imported = cellImports
	}
	symbols = append(symbols, carryOver...)

	return NewSyntaxClosure(symbols), nil
}
