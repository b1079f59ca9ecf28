package syntax

import (
	"github.com/dr8co/sema/bind"
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/code"
)

// quoteKeyword implements (quote x): x is returned without evaluation.
type quoteKeyword struct {
	keywordBase
}

// Bind resolves an invocation to a bound compiler node.
func (q *quoteKeyword) Bind(_ *bind.SymbolBindings, args cell.Cell) (cell.BoundCompiler, error) {
	pair, ok := args.(*cell.List)
	if !ok {
		return nil, bind.NewError(bind.ARGUMENTS_NOT_SUPPLIED, args)
	}
	return &quoteBound{value: pair.Car}, nil
}

type quoteBound struct {
	value cell.Cell
}

func (q *quoteBound) Description() string               { return "##quote##" }
func (q *quoteBound) ReferenceType() cell.ReferenceType { return cell.ValueReference }

func (q *quoteBound) SubstituteFrameRefs(_ func(cell.FrameReference) cell.Cell) cell.BoundCompiler {
	// Quoted values contain no frame references.
	return q
}

func (q *quoteBound) CompileActions() (code.Compiled, error) {
	return code.Compiled{Actions: code.Actions{code.Value(q.value)}}, nil
}

// wrapKeyword implements (wrap x): x is lifted into a monad carrying no
// emission.
type wrapKeyword struct {
	keywordBase
}

// ReferenceType returns the reference kind of an invocation.
func (w *wrapKeyword) ReferenceType(_ cell.Cell) cell.ReferenceType {
	return cell.MonadReference
}

// Bind resolves an invocation to a bound compiler node.
func (w *wrapKeyword) Bind(b *bind.SymbolBindings, args cell.Cell) (cell.BoundCompiler, error) {
	pair, ok := args.(*cell.List)
	if !ok {
		return nil, bind.NewError(bind.ARGUMENTS_NOT_SUPPLIED, args)
	}
	value, err := bind.BindStatement(pair.Car, b)
	if err != nil {
		return nil, err
	}
	return &wrapBound{value: value}, nil
}

type wrapBound struct {
	value cell.Cell
}

func (w *wrapBound) Description() string               { return "##wrap##" }
func (w *wrapBound) ReferenceType() cell.ReferenceType { return cell.MonadReference }

func (w *wrapBound) SubstituteFrameRefs(sub func(cell.FrameReference) cell.Cell) cell.BoundCompiler {
	return &wrapBound{value: bind.SubstituteFrameRefs(w.value, sub)}
}

func (w *wrapBound) CompileActions() (code.Compiled, error) {
	actions, err := bind.CompileStatement(w.value)
	if err != nil {
		return code.Compiled{}, err
	}
	actions.Add(code.Wrap())
	return actions, nil
}

// exportKeyword implements (export name): the symbol is lifted out of the
// current compilation context into the parent context, most commonly in
// files loaded by import.
type exportKeyword struct {
	keywordBase
}

// Bind resolves an invocation to a bound compiler node.
func (e *exportKeyword) Bind(b *bind.SymbolBindings, args cell.Cell) (cell.BoundCompiler, error) {
	pair, ok := args.(*cell.List)
	if !ok {
		return nil, bind.NewError(bind.ARGUMENTS_NOT_SUPPLIED, args)
	}
	atom, ok := pair.Car.(*cell.AtomCell)
	if !ok {
		return nil, bind.NewError(bind.VARIABLES_MUST_BE_ATOMS, pair.Car)
	}
	b.Export(atom.ID)
	return &nopBound{desc: "##export##"}, nil
}
