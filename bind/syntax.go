package bind

import (
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/code"
)

// SyntaxCompiler is the full capability set of a syntactic keyword: the
// narrow view the value model knows about, plus the binding passes and
// cross-frame rebinding. Cells store the narrow view; the binder asserts
// this interface at the point of use.
type SyntaxCompiler interface {
	cell.SyntaxBinder

	// PreBind walks an invocation before the bind pass, installing forward
	// declarations. It never imports from outer frames.
	PreBind(b *SymbolBindings, args cell.Cell) cell.Cell

	// Bind resolves an invocation to a bound compiler node.
	Bind(b *SymbolBindings, args cell.Cell) (cell.BoundCompiler, error)

	// RebindFromOuterFrame re-imports the compiler's captured references
	// when the syntax is used from a frame below the one that defined it.
	// The returned compiler and parameter replace the original when changed
	// is true.
	RebindFromOuterFrame(b *SymbolBindings, param cell.Cell, depth int) (SyntaxCompiler, cell.Cell, bool)
}

// Compilable is a bound compiler node that can generate actions. The
// compile step asserts this interface on every BoundSyntax it encounters.
type Compilable interface {
	cell.BoundCompiler

	// CompileActions lowers the node to an action stream.
	CompileActions() (code.Compiled, error)
}

// SubstituteFrameRefs rewrites the frame references of a (partially) bound
// tree. The substitution function returns nil to leave a reference
// untouched. Bound syntax nodes substitute through their own compiler.
func SubstituteFrameRefs(c cell.Cell, sub func(cell.FrameReference) cell.Cell) cell.Cell {
	switch c := c.(type) {
	case *cell.List:
		return cell.NewList(SubstituteFrameRefs(c.Car, sub), SubstituteFrameRefs(c.Cdr, sub))

	case *cell.FrameReference:
		if replacement := sub(*c); replacement != nil {
			return replacement
		}
		return c

	case *cell.BoundSyntax:
		return &cell.BoundSyntax{Compiler: c.Compiler.SubstituteFrameRefs(sub)}

	default:
		return c
	}
}

// RebindImportedBindings re-imports a captured-bindings map into the
// current frame: frame references are imported through a fresh local cell,
// and captured syntax is rebound recursively. The result is nil when
// nothing needed moving.
func RebindImportedBindings(imported map[int]cell.Cell, b *SymbolBindings, depth int) map[int]cell.Cell {
	rebound := make(map[int]cell.Cell, len(imported))
	changed := false

	for cellID, binding := range imported {
		switch binding := binding.(type) {
		case *cell.FrameReference:
			local := b.AllocCell()
			outer := &cell.FrameReference{CellIndex: binding.CellIndex, FrameDepth: binding.FrameDepth + depth - 1, Kind: binding.Kind}
			b.Import(outer, local)
			rebound[cellID] = &cell.FrameReference{CellIndex: local, FrameDepth: 0, Kind: binding.Kind}
			changed = true

		case *cell.Syntax:
			if compiler, ok := binding.Binder.(SyntaxCompiler); ok {
				newCompiler, newParam, syntaxChanged := compiler.RebindFromOuterFrame(b, binding.Param, depth)
				if syntaxChanged {
					rebound[cellID] = &cell.Syntax{Binder: newCompiler, Param: newParam}
					changed = true
					continue
				}
			}
			rebound[cellID] = binding

		default:
			rebound[cellID] = binding
		}
	}

	if !changed {
		return nil
	}
	return rebound
}
