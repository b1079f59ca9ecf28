package syntax

import (
	"github.com/dr8co/sema/bind"
	"github.com/dr8co/sema/cell"
)

// SymbolPattern is one pattern of a syntax symbol: the compiled matcher,
// the fake frame cells its captures bind to, and the partially bound macro
// body.
type SymbolPattern struct {
	Pattern *PatternMatch

	// Cells holds a FrameReference per capture, in match order, referring
	// to the macro's own binding frame.
	Cells []cell.Cell

	// Body is the macro body: a list of statements bound in the macro's
	// frame at definition time.
	Body cell.Cell
}

// SyntaxSymbol is the binder for a single user-defined macro symbol.
//
// The macro body was bound as if it were a new frame, with the pattern
// captures as the frame's cells. Invoking the symbol matches the arguments
// against the patterns and substitutes cells in the pre-bound body: capture
// cells become the bound argument expressions, free variables of the body
// become the values captured at definition time, and cells the body
// introduced itself (def inside the macro) are allocated fresh in the
// invoking frame. Because free variables resolve through the captured
// bindings, expansion is hygienic: shadowing a name after def_syntax does
// not change what the macro sees.
type SyntaxSymbol struct {
	Patterns []SymbolPattern

	// Imported maps macro-frame cells to the values they captured from the
	// defining environment.
	Imported map[int]cell.Cell

	// RefType is the reference kind of an invocation, monadic when any
	// pattern body is monadic at definition time.
	RefType cell.ReferenceType
}

// NewSyntaxSymbol creates a symbol from its bound patterns. The symbol is
// monadic when any of its bodies is.
func NewSyntaxSymbol(patterns []SymbolPattern) *SyntaxSymbol {
	refType := cell.ValueReference
	for _, pattern := range patterns {
		if refTypeOfStatements(pattern.Body) == cell.MonadReference {
			refType = cell.MonadReference
			break
		}
	}
	return &SyntaxSymbol{Patterns: patterns, Imported: map[int]cell.Cell{}, RefType: refType}
}

// Description returns a string shown when the value is displayed.
func (s *SyntaxSymbol) Description() string { return "##syntax##" }

// ReferenceType returns the reference kind of an invocation.
func (s *SyntaxSymbol) ReferenceType(_ cell.Cell) cell.ReferenceType { return s.RefType }

// PreBind installs forward declarations; macros install none.
func (s *SyntaxSymbol) PreBind(_ *bind.SymbolBindings, args cell.Cell) cell.Cell { return args }

// Bind matches the arguments against the patterns and expands the first
// match.
func (s *SyntaxSymbol) Bind(b *bind.SymbolBindings, args cell.Cell) (cell.BoundCompiler, error) {
	for _, pattern := range s.Patterns {
		matched, ok := pattern.Pattern.Match(args)
		if !ok {
			continue
		}
		return s.expand(b, pattern, matched)
	}
	return nil, bind.NewError(bind.SYNTAX_MATCH_FAILED, args)
}

// expand binds the captured arguments and substitutes them through the
// pre-bound body. A capture that binds to a monad lifts the whole
// invocation: the monad is flat-mapped and its value substituted through a
// fresh cell.
func (s *SyntaxSymbol) expand(b *bind.SymbolBindings, pattern SymbolPattern, matched []MatchBinding) (cell.BoundCompiler, error) {
	type lift struct {
		expr      cell.Cell
		cellIndex int
	}
	var lifts []lift

	substitutions := map[int]cell.Cell{}

	for i, capture := range matched {
		ref, ok := pattern.Cells[i].(*cell.FrameReference)
		if !ok {
			return nil, bind.NewError(bind.UNBOUND_SYMBOL, pattern.Cells[i])
		}

		var value cell.Cell
		if capture.Evaluated {
			bound, err := bind.BindStatement(capture.Value, b)
			if err != nil {
				return nil, err
			}
			value = bound
		} else {
			value = capture.Value
		}

		if cell.RefTypeOf(value) == cell.MonadReference {
			index := b.AllocCell()
			lifts = append(lifts, lift{expr: value, cellIndex: index})
			value = &cell.FrameReference{CellIndex: index, FrameDepth: 0, Kind: cell.ValueReference}
		}

		substitutions[ref.CellIndex] = value
	}

	// Substitute the macro-frame cells: captures first, then the imports
	// recorded at definition time; anything left was introduced inside the
	// macro and gets a fresh cell here.
	allocated := map[int]int{}
	imported := s.Imported

	substituted := bind.SubstituteFrameRefs(pattern.Body, func(ref cell.FrameReference) cell.Cell {
		if ref.FrameDepth != 0 {
			return nil
		}
		if value, ok := substitutions[ref.CellIndex]; ok {
			return value
		}
		if value, ok := imported[ref.CellIndex]; ok {
			return value
		}
		local, ok := allocated[ref.CellIndex]
		if !ok {
			local = b.AllocCell()
			allocated[ref.CellIndex] = local
		}
		return &cell.FrameReference{CellIndex: local, FrameDepth: 0, Kind: ref.Kind}
	})

	var node cell.BoundCompiler = &seqBound{statements: substituted}
	for i := len(lifts) - 1; i >= 0; i-- {
		node = &bind.MonadLift{
			Monad:     lifts[i].expr,
			CellIndex: lifts[i].cellIndex,
			Body:      &cell.BoundSyntax{Compiler: node},
		}
	}
	return node, nil
}

// RebindFromOuterFrame re-imports the captured bindings when the symbol is
// used from a frame below the one that defined it.
func (s *SyntaxSymbol) RebindFromOuterFrame(b *bind.SymbolBindings, param cell.Cell, depth int) (bind.SyntaxCompiler, cell.Cell, bool) {
	rebound := bind.RebindImportedBindings(s.Imported, b, depth)
	if rebound == nil {
		return nil, nil, false
	}
	return &SyntaxSymbol{Patterns: s.Patterns, Imported: rebound, RefType: s.RefType}, param, true
}
