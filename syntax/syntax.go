// Package syntax implements the built-in keywords and the user-extensible
// syntax mechanism.
//
// A keyword is a [bind.SyntaxCompiler]: a binding computation that resolves
// an invocation to a bound node, plus the bound node's action generator.
// User-defined syntax (def_syntax / extend_syntax) compiles macro patterns
// into [SyntaxSymbol] values grouped under a [SyntaxClosure]; hygiene comes
// from binding macro bodies in their own frame at definition time and
// substituting cells at expansion time.
package syntax

import (
	"github.com/dr8co/sema/bind"
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/code"
)

// keywordBase supplies the defaults shared by built-in keywords: no
// pre-binding work, no rebinding across frames, and value reference kind.
type keywordBase struct {
	name string
}

// Description returns a string shown when the value is displayed.
func (k keywordBase) Description() string { return "##" + k.name + "##" }

// ReferenceType returns the reference kind of an invocation.
func (k keywordBase) ReferenceType(_ cell.Cell) cell.ReferenceType {
	return cell.ValueReference
}

// PreBind installs forward declarations; the default does nothing.
func (k keywordBase) PreBind(_ *bind.SymbolBindings, args cell.Cell) cell.Cell { return args }

// RebindFromOuterFrame re-imports captured references; built-in keywords
// capture nothing.
func (k keywordBase) RebindFromOuterFrame(_ *bind.SymbolBindings, _ cell.Cell, _ int) (bind.SyntaxCompiler, cell.Cell, bool) {
	return nil, nil, false
}

// nopBound is a bound node that generates no actions.
type nopBound struct {
	desc string
}

func (n *nopBound) Description() string              { return n.desc }
func (n *nopBound) ReferenceType() cell.ReferenceType { return cell.ValueReference }
func (n *nopBound) SubstituteFrameRefs(_ func(cell.FrameReference) cell.Cell) cell.BoundCompiler {
	return n
}
func (n *nopBound) CompileActions() (code.Compiled, error) { return code.Compiled{}, nil }

// seqBound is a bound statement list compiled with monadic sequencing.
type seqBound struct {
	statements cell.Cell
}

func (s *seqBound) Description() string { return "##statements##" }

func (s *seqBound) ReferenceType() cell.ReferenceType {
	return refTypeOfStatements(s.statements)
}

func (s *seqBound) SubstituteFrameRefs(sub func(cell.FrameReference) cell.Cell) cell.BoundCompiler {
	return &seqBound{statements: bind.SubstituteFrameRefs(s.statements, sub)}
}

func (s *seqBound) CompileActions() (code.Compiled, error) {
	return bind.CompileSeveralStatements(s.statements)
}

// refTypeOfStatements reports the combined reference kind of a bound
// statement list: monadic if any statement is monadic, otherwise the kind
// of the last statement.
func refTypeOfStatements(statements cell.Cell) cell.ReferenceType {
	items, ok := cell.ListToSlice(statements)
	if !ok || len(items) == 0 {
		return cell.ValueReference
	}
	for _, statement := range items {
		if cell.RefTypeOf(statement) == cell.MonadReference {
			return cell.MonadReference
		}
	}
	return cell.RefTypeOf(items[len(items)-1])
}

// Install binds the standard keywords into an environment.
func Install(b *bind.SymbolBindings) {
	keywords := map[string]bind.SyntaxCompiler{
		"def":           &defKeyword{keywordBase{"def"}},
		"fun":           &funKeyword{keywordBase{"fun"}},
		"lambda":        &funKeyword{keywordBase{"lambda"}},
		"quote":         &quoteKeyword{keywordBase{"quote"}},
		"if":            &ifKeyword{keywordBase{"if"}},
		"wrap":          &wrapKeyword{keywordBase{"wrap"}},
		"export":        &exportKeyword{keywordBase{"export"}},
		"def_syntax":    &defSyntaxKeyword{keywordBase{"def_syntax"}},
		"extend_syntax": &extendSyntaxKeyword{keywordBase{"extend_syntax"}},
	}

	for name, compiler := range keywords {
		b.SetSymbol(cell.AtomID(name), &cell.Syntax{Binder: compiler, Param: cell.Nil})
	}
}
