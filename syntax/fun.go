package syntax

import (
	"fmt"

	"github.com/dr8co/sema/bind"
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/code"
	"github.com/dr8co/sema/vm"
)

// funKeyword implements (fun (args…) body…) and (lambda (args…) body…):
// the body compiles in a fresh frame with the arguments mapped to cells
// 1..n. Free variables of the body are imported from the defining frame and
// captured into a closure. A function whose body evaluates to a monad is
// flagged as returning a monad and its statements are sequenced monadically.
type funKeyword struct {
	keywordBase
}

// Bind resolves an invocation to a bound compiler node.
func (f *funKeyword) Bind(b *bind.SymbolBindings, args cell.Cell) (cell.BoundCompiler, error) {
	items, ok := cell.ListToSlice(args)
	if !ok {
		return nil, bind.NewError(bind.ARGUMENTS_NOT_SUPPLIED, args)
	}
	if len(items) < 2 {
		return nil, bind.NewError(bind.MISSING_ARGUMENT, args)
	}

	argList, ok := cell.ListToSlice(items[0])
	if !ok {
		return nil, bind.NewError(bind.ARGUMENTS_NOT_SUPPLIED, items[0])
	}
	statements := cell.ListFromSlice(items[1:])

	inner := b.PushNewFrame()

	for _, arg := range argList {
		atom, ok := arg.(*cell.AtomCell)
		if !ok {
			return nil, bind.NewError(bind.VARIABLES_MUST_BE_ATOMS, arg)
		}
		index := inner.AllocCell()
		inner.SetSymbol(atom.ID, &cell.FrameReference{CellIndex: index, FrameDepth: 0, Kind: cell.ValueReference})
	}

	for _, statement := range items[1:] {
		bind.PreBindStatement(statement, inner)
	}

	bound, refType, err := bind.BindSeveralStatements(statements, inner)
	if err != nil {
		inner.Pop()
		return nil, err
	}
	compiled, err := bind.CompileSeveralStatements(bound)
	if err != nil {
		inner.Pop()
		return nil, err
	}

	monadic := refType == cell.MonadReference
	numCells := inner.NumCells()
	_, imports := inner.Pop()

	if len(imports) == 0 {
		lambda := &vm.Lambda{
			Actions:  compiled.ToActions(),
			NumCells: numCells,
			ArgCount: len(argList),
		}
		return &funBound{lambda: lambda, monadic: monadic}, nil
	}

	// Imports turn the function into a closure. Values already on the
	// defining frame are captured directly; deeper values are imported into
	// the defining frame first.
	cellImports := make([]vm.CellImport, 0, len(imports))
	for _, imp := range imports {
		ref, ok := imp.Outer.(*cell.FrameReference)
		if !ok {
			return nil, bind.NewError(bind.UNBOUND_SYMBOL, imp.Outer)
		}
		source := ref.CellIndex
		if ref.FrameDepth > 0 {
			source = b.AllocCell()
			b.Import(&cell.FrameReference{CellIndex: ref.CellIndex, FrameDepth: ref.FrameDepth - 1, Kind: ref.Kind}, source)
		}
		cellImports = append(cellImports, vm.CellImport{Source: source, Target: imp.Local})
	}

	closure := &vm.Closure{
		Actions:  compiled.ToActions(),
		Imports:  cellImports,
		NumCells: numCells,
		ArgCount: len(argList),
		Monadic:  monadic,
	}
	return &funBound{closure: closure, monadic: monadic}, nil
}

// funBound is the bound form of a function definition: either a lambda
// constant or a closure that captures its upvalues when evaluated.
type funBound struct {
	lambda  *vm.Lambda
	closure *vm.Closure
	monadic bool
}

func (f *funBound) Description() string {
	if f.closure != nil {
		return fmt.Sprintf("##fun#%s##", f.closure.Description())
	}
	return fmt.Sprintf("##fun#%s##", f.lambda.Description())
}

func (f *funBound) ReferenceType() cell.ReferenceType {
	if f.monadic {
		return cell.ReturnsMonadReference
	}
	return cell.ValueReference
}

func (f *funBound) SubstituteFrameRefs(sub func(cell.FrameReference) cell.Cell) cell.BoundCompiler {
	if f.closure == nil {
		// Lambdas capture nothing; there is nothing to rewrite.
		return f
	}

	// Imports whose substitution is another frame reference move to the
	// new cell; imports substituted by a known value become preset
	// captures.
	var imports []vm.CellImport
	preset := append([]vm.CapturedCell{}, f.closure.Preset...)

	for _, imp := range f.closure.Imports {
		replacement := sub(cell.FrameReference{CellIndex: imp.Source, FrameDepth: 0, Kind: cell.ValueReference})
		if replacement == nil {
			imports = append(imports, imp)
			continue
		}
		switch replacement := replacement.(type) {
		case *cell.FrameReference:
			imports = append(imports, vm.CellImport{Source: replacement.CellIndex, Target: imp.Target})
		case *cell.List, *cell.BoundSyntax:
			// A compound expression cannot be captured by value; keep the
			// original import.
			imports = append(imports, imp)
		default:
			preset = append(preset, vm.CapturedCell{Index: imp.Target, Value: replacement})
		}
	}

	closure := &vm.Closure{
		Actions:  f.closure.Actions,
		Imports:  imports,
		NumCells: f.closure.NumCells,
		ArgCount: f.closure.ArgCount,
		Preset:   preset,
		Monadic:  f.closure.Monadic,
	}
	return &funBound{closure: closure, monadic: f.monadic}
}

func (f *funBound) CompileActions() (code.Compiled, error) {
	if f.closure != nil {
		// A closure is called where it is defined to capture its upvalues.
		return code.Compiled{Actions: code.Actions{
			code.Value(&cell.FrameMonadCell{Fn: f.closure}),
			code.Call(),
		}}, nil
	}

	var fn cell.FrameMonad = f.lambda
	if f.monadic {
		fn = &vm.MonadFn{Inner: fn}
	}
	return code.Compiled{Actions: code.Actions{code.Value(&cell.FrameMonadCell{Fn: fn})}}, nil
}
