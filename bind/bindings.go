// Package bind implements the two-pass symbol resolver and the code
// generator.
//
// Binding turns raw S-expression cell trees into bound trees whose atoms
// have been replaced with frame references, constants or resolved syntax,
// and the compile step lowers bound trees into action streams for the vm
// package.
//
// The central structure is [SymbolBindings], a stack of compile-time frames.
// An interior frame shares the cell allocation of its parent; a new frame
// starts fresh (one function invocation gets one frame). Looking a symbol up
// in an enclosing frame imports it: a local cell is allocated, the import is
// recorded, and use sites see the local cell, which is how closures capture
// their upvalues exactly once per frame.
package bind

import (
	"github.com/dr8co/sema/cell"
)

// Import records a value captured from an enclosing frame. Outer is a frame
// reference expressed relative to the parent of the frame that recorded the
// import; Local is the cell of the recording frame that receives the value.
type Import struct {
	Outer cell.Cell
	Local int
}

// SymbolBindings is the compile-time environment: a stack of frames, each
// mapping atom ids to bound cells, with a cell allocation count, a list of
// imports, and an export set.
type SymbolBindings struct {
	symbols  map[uint64]cell.Cell
	parent   *SymbolBindings
	interior bool

	// Frame-root state (unused on interior frames).
	numCells int
	imports  []Import
	exports  []uint64
}

// NewBindings creates the root environment. Cell 0 of every frame is
// reserved for the argument list of a call, so allocation starts at 1.
func NewBindings() *SymbolBindings {
	return &SymbolBindings{
		symbols:  make(map[uint64]cell.Cell),
		numCells: 1,
	}
}

// PushNewFrame starts a frame with a fresh cell allocation, as for a
// function body.
func (s *SymbolBindings) PushNewFrame() *SymbolBindings {
	return &SymbolBindings{
		symbols:  make(map[uint64]cell.Cell),
		parent:   s,
		numCells: 1,
	}
}

// PushInteriorFrame starts a frame that shares the cell allocation of its
// parent, as for a scope inside the same function.
func (s *SymbolBindings) PushInteriorFrame() *SymbolBindings {
	return &SymbolBindings{
		symbols:  make(map[uint64]cell.Cell),
		parent:   s,
		interior: true,
	}
}

// Pop removes the frame and returns its parent along with the imports the
// frame recorded. Popping an interior frame returns no imports: they
// accumulate on the frame root.
func (s *SymbolBindings) Pop() (*SymbolBindings, []Import) {
	if s.interior {
		return s.parent, nil
	}
	return s.parent, s.imports
}

// root returns the nearest non-interior frame, which owns cell allocation,
// imports and exports.
func (s *SymbolBindings) root() *SymbolBindings {
	b := s
	for b.interior {
		b = b.parent
	}
	return b
}

// AllocCell allocates a cell on the current frame and returns its index.
func (s *SymbolBindings) AllocCell() int {
	r := s.root()
	id := r.numCells
	r.numCells++
	return id
}

// NumCells returns the number of cells allocated on the current frame.
func (s *SymbolBindings) NumCells() int {
	return s.root().numCells
}

// SetSymbol binds an atom at the current scope.
func (s *SymbolBindings) SetSymbol(atomID uint64, value cell.Cell) {
	s.symbols[atomID] = value
}

// Import records that an outer value should be copied into a local cell
// when the frame becomes a closure.
func (s *SymbolBindings) Import(outer cell.Cell, local int) {
	r := s.root()
	r.imports = append(r.imports, Import{Outer: outer, Local: local})
}

// Export marks an atom as visible to importers of the current compilation
// unit.
func (s *SymbolBindings) Export(atomID uint64) {
	r := s.root()
	r.exports = append(r.exports, atomID)
}

// Exports returns the atoms exported at the current frame.
func (s *SymbolBindings) Exports() []uint64 {
	return s.root().exports
}

// LookUp finds the binding of an atom. The returned depth counts the frame
// boundaries crossed: 0 means the current frame (or an interior scope of
// it).
func (s *SymbolBindings) LookUp(atomID uint64) (cell.Cell, int, bool) {
	depth := 0
	for b := s; b != nil; b = b.parent {
		if value, ok := b.symbols[atomID]; ok {
			return value, depth, true
		}
		if !b.interior {
			depth++
		}
	}
	return nil, 0, false
}

// LookUpAndImport resolves an atom the way use sites need it: a frame
// reference found in an enclosing frame is imported into the current frame
// (allocating a local cell and recording the import), and syntax found in
// an enclosing frame is rebound across the frame boundary.
func (s *SymbolBindings) LookUpAndImport(atomID uint64) (cell.Cell, error) {
	value, depth, ok := s.LookUp(atomID)
	if !ok {
		return nil, Errorf(UNKNOWN_SYMBOL, "%s", cell.AtomName(atomID))
	}
	if depth == 0 {
		return value, nil
	}

	switch value := value.(type) {
	case *cell.FrameReference:
		// Capture the upvalue exactly once per frame: later lookups see the
		// local binding.
		local := s.AllocCell()
		outer := &cell.FrameReference{CellIndex: value.CellIndex, FrameDepth: value.FrameDepth + depth - 1, Kind: value.Kind}
		s.Import(outer, local)

		localRef := &cell.FrameReference{CellIndex: local, FrameDepth: 0, Kind: value.Kind}
		s.root().SetSymbol(atomID, localRef)
		return localRef, nil

	case *cell.Syntax:
		compiler, ok := value.Binder.(SyntaxCompiler)
		if !ok {
			return value, nil
		}
		rebound, newParam, changed := compiler.RebindFromOuterFrame(s, value.Param, depth)
		if !changed {
			return value, nil
		}
		reboundCell := &cell.Syntax{Binder: rebound, Param: newParam}
		s.root().SetSymbol(atomID, reboundCell)
		return reboundCell, nil

	default:
		return value, nil
	}
}
