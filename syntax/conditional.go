package syntax

import (
	"github.com/dr8co/sema/bind"
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/code"
)

// ifKeyword implements
//
//	(if (condition…) (if_true…) (if_false…))
//
// Each part is a statement list. When the condition evaluates to a monad,
// the whole expression is lifted: the condition is flat-mapped and the
// branches choose on its unwrapped value. When either branch is monadic,
// the other branch's result is wrapped so both sides agree.
type ifKeyword struct {
	keywordBase
}

// Bind resolves an invocation to a bound compiler node.
func (i *ifKeyword) Bind(b *bind.SymbolBindings, args cell.Cell) (cell.BoundCompiler, error) {
	items, ok := cell.ListToSlice(args)
	if !ok || len(items) != 3 {
		return nil, bind.NewError(bind.ARGUMENTS_NOT_SUPPLIED, args)
	}

	cond, condRef, err := bind.BindSeveralStatements(items[0], b)
	if err != nil {
		return nil, err
	}
	ifTrue, _, err := bind.BindSeveralStatements(items[1], b)
	if err != nil {
		return nil, err
	}
	ifFalse, _, err := bind.BindSeveralStatements(items[2], b)
	if err != nil {
		return nil, err
	}

	if condRef != cell.MonadReference {
		return &ifBound{cond: cond, ifTrue: ifTrue, ifFalse: ifFalse}, nil
	}

	// Monadic condition: flat-map it into a cell and branch on the cell.
	condCell := b.AllocCell()
	condRefCell := cell.Cell(&cell.FrameReference{CellIndex: condCell, FrameDepth: 0, Kind: cell.ValueReference})
	branch := &ifBound{
		cond:    cell.ListFromSlice([]cell.Cell{condRefCell}),
		ifTrue:  ifTrue,
		ifFalse: ifFalse,
	}
	lift := &bind.MonadLift{
		Monad:     &cell.BoundSyntax{Compiler: &seqBound{statements: cond}},
		CellIndex: condCell,
		Body:      &cell.BoundSyntax{Compiler: branch},
	}
	return lift, nil
}

// ifBound is the bound form of a conditional with a plain-value condition.
type ifBound struct {
	cond    cell.Cell
	ifTrue  cell.Cell
	ifFalse cell.Cell
}

func (i *ifBound) Description() string { return "##if##" }

func (i *ifBound) ReferenceType() cell.ReferenceType {
	trueRef := refTypeOfStatements(i.ifTrue)
	falseRef := refTypeOfStatements(i.ifFalse)

	switch {
	case trueRef == cell.MonadReference || falseRef == cell.MonadReference:
		return cell.MonadReference
	case trueRef == cell.ReturnsMonadReference && falseRef == cell.ReturnsMonadReference:
		return cell.ReturnsMonadReference
	default:
		return cell.ValueReference
	}
}

func (i *ifBound) SubstituteFrameRefs(sub func(cell.FrameReference) cell.Cell) cell.BoundCompiler {
	return &ifBound{
		cond:    bind.SubstituteFrameRefs(i.cond, sub),
		ifTrue:  bind.SubstituteFrameRefs(i.ifTrue, sub),
		ifFalse: bind.SubstituteFrameRefs(i.ifFalse, sub),
	}
}

func (i *ifBound) CompileActions() (code.Compiled, error) {
	condActions, err := bind.CompileSeveralStatements(i.cond)
	if err != nil {
		return code.Compiled{}, err
	}
	trueActions, err := bind.CompileSeveralStatements(i.ifTrue)
	if err != nil {
		return code.Compiled{}, err
	}
	falseActions, err := bind.CompileSeveralStatements(i.ifFalse)
	if err != nil {
		return code.Compiled{}, err
	}

	trueRef := refTypeOfStatements(i.ifTrue)
	falseRef := refTypeOfStatements(i.ifFalse)

	// When either side is monadic both sides must produce a monad.
	if trueRef == cell.MonadReference || falseRef == cell.MonadReference {
		if trueRef != cell.MonadReference {
			trueActions.Add(code.Wrap())
		}
		if falseRef != cell.MonadReference {
			falseActions.Add(code.Wrap())
		}
	}

	// The true branch jumps over the false branch; the condition jumps over
	// the true branch when false.
	trueActions.Add(code.Jump(len(falseActions.Actions) + 1))
	condActions.Add(code.JumpIfFalse(len(trueActions.Actions) + 1))

	result := condActions
	result.Extend(trueActions)
	result.Extend(falseActions)

	return result, nil
}
