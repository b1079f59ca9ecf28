package bitcode

import (
	"github.com/dr8co/sema/bind"
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/code"
	"github.com/dr8co/sema/vm"
)

// assembleFn runs the fix-point assembler over a monad argument. Monad
// parameters to ordinary functions are rewritten so the monad's content
// arrives instead of the monad itself, so this needs help from the
// assemble keyword to see the monad.
var assembleFnCell cell.Cell = &cell.FrameMonadCell{Fn: vm.NewFn("assemble",
	func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		if err := vm.ExactArgs(args, 1); err != nil {
			return nil, err
		}
		value, ops, err := AssembleCell(args[0])
		if err != nil {
			return nil, err
		}
		return cell.ListFromSlice([]cell.Cell{&cell.BitCodeCell{Ops: ops}, value}), nil
	})}

// assembleKeyword implements (assemble <statement>): the statement's monad
// is resolved to a bit stream, and the result is the pair
// (bitcode residual-value).
type assembleKeyword struct{}

// Description returns a string shown when the value is displayed.
func (a *assembleKeyword) Description() string { return "##assemble##" }

// ReferenceType returns the reference kind of an invocation.
func (a *assembleKeyword) ReferenceType(_ cell.Cell) cell.ReferenceType {
	return cell.ValueReference
}

// PreBind installs forward declarations; assemble installs none.
func (a *assembleKeyword) PreBind(_ *bind.SymbolBindings, args cell.Cell) cell.Cell { return args }

// Bind resolves an invocation to a bound compiler node.
func (a *assembleKeyword) Bind(b *bind.SymbolBindings, args cell.Cell) (cell.BoundCompiler, error) {
	pair, ok := args.(*cell.List)
	if !ok {
		return nil, bind.NewError(bind.ARGUMENTS_NOT_SUPPLIED, args)
	}
	bound, err := bind.BindStatement(pair.Car, b)
	if err != nil {
		return nil, err
	}
	return &assembleBound{monad: bound}, nil
}

// RebindFromOuterFrame re-imports captured references; the keyword
// captures nothing.
func (a *assembleKeyword) RebindFromOuterFrame(_ *bind.SymbolBindings, _ cell.Cell, _ int) (bind.SyntaxCompiler, cell.Cell, bool) {
	return nil, nil, false
}

// assembleBound is the bound form of an assemble expression.
type assembleBound struct {
	monad cell.Cell
}

func (a *assembleBound) Description() string               { return "##assemble##" }
func (a *assembleBound) ReferenceType() cell.ReferenceType { return cell.ValueReference }

func (a *assembleBound) SubstituteFrameRefs(sub func(cell.FrameReference) cell.Cell) cell.BoundCompiler {
	return &assembleBound{monad: bind.SubstituteFrameRefs(a.monad, sub)}
}

func (a *assembleBound) CompileActions() (code.Compiled, error) {
	var result code.Compiled
	result.Add(code.PushValue(assembleFnCell))

	compiled, err := bind.CompileStatement(a.monad)
	if err != nil {
		return code.Compiled{}, err
	}
	result.Extend(compiled)

	result.Add(code.Push())
	result.Add(code.PopCall(1))

	return result, nil
}
