package bitcode

import (
	"fmt"

	"github.com/dr8co/sema/bind"
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/code"
)

// rawFn is a frame monad used as a flat_map mapping function: it receives
// the flat-mapped value raw in cell 0.
type rawFn struct {
	name string
	fn   func(value cell.Cell) (cell.Cell, error)
}

func (r *rawFn) Description() string { return "##" + r.name + "##" }
func (r *rawFn) ReturnsMonad() bool  { return true }

func (r *rawFn) Resolve(frame *cell.Frame) (cell.Cell, error) {
	return r.fn(frame.Cells[0])
}

var (
	// allocLabelCell is the shared 'allocate a label' monad; every
	// flat_map of it mints a fresh label.
	allocLabelCell = AllocLabel().ToCell()

	// wrapValueCell maps a label to a monad wrapping it, so the label can
	// be stored in a frame cell.
	wrapValueCell cell.Cell = &cell.FrameMonadCell{Fn: &rawFn{
		name: "wrap_label",
		fn: func(value cell.Cell) (cell.Cell, error) {
			return WithValue(value).ToCell(), nil
		},
	}}

	// readLabelCell maps a label to a monad reading its value.
	readLabelCell cell.Cell = &cell.FrameMonadCell{Fn: &rawFn{
		name: "read_label_value",
		fn: func(value cell.Cell) (cell.Cell, error) {
			return ReadLabelValue(value).ToCell(), nil
		},
	}}

	// setLabelCell maps a label to a monad that reads the current position
	// and stores it as the label's value.
	setLabelCell cell.Cell = &cell.FrameMonadCell{Fn: &rawFn{
		name: "set_label_value",
		fn: func(label cell.Cell) (cell.Cell, error) {
			readAndSet, err := ReadBitPos().FlatMap(func(pos cell.Cell) (*Monad, error) {
				return SetLabelValue(label, pos), nil
			})
			if err != nil {
				return nil, err
			}
			return readAndSet.ToCell(), nil
		},
	}}
)

// labelKeyword implements (label <name>): the name becomes a label whose
// value is its address when the surrounding scope is assembled. Labels are
// pre-bound so forward references resolve anywhere in the same context.
type labelKeyword struct{}

// Description returns a string shown when the value is displayed.
func (l *labelKeyword) Description() string { return "##label##" }

// ReferenceType returns the reference kind of an invocation.
func (l *labelKeyword) ReferenceType(_ cell.Cell) cell.ReferenceType {
	return cell.MonadReference
}

// PreBind allocates the label's cell and binds the name to syntax that
// reads the label's value.
func (l *labelKeyword) PreBind(b *bind.SymbolBindings, args cell.Cell) cell.Cell {
	pair, ok := args.(*cell.List)
	if !ok {
		return args
	}
	atom, ok := pair.Car.(*cell.AtomCell)
	if !ok {
		return args
	}

	// The label binds only once; a second pre-bind of the same scope keeps
	// the first cell.
	if existing, depth, found := b.LookUp(atom.ID); found && depth == 0 {
		if syntax, ok := existing.(*cell.Syntax); ok {
			if _, ok := syntax.Binder.(*labelBinding); ok {
				return args
			}
		}
	}

	labelCell := b.AllocCell()
	ref := &cell.FrameReference{CellIndex: labelCell, FrameDepth: 0, Kind: cell.MonadReference}
	b.SetSymbol(atom.ID, &cell.Syntax{Binder: &labelBinding{ref: ref}, Param: ref})
	b.Export(atom.ID)

	return args
}

// Bind resolves an invocation to a bound compiler node.
func (l *labelKeyword) Bind(b *bind.SymbolBindings, args cell.Cell) (cell.BoundCompiler, error) {
	pair, ok := args.(*cell.List)
	if !ok {
		return nil, bind.NewError(bind.ARGUMENTS_NOT_SUPPLIED, args)
	}
	atom, ok := pair.Car.(*cell.AtomCell)
	if !ok {
		return nil, bind.NewError(bind.VARIABLES_MUST_BE_ATOMS, pair.Car)
	}

	value, err := b.LookUpAndImport(atom.ID)
	if err != nil {
		return nil, err
	}
	syntax, ok := value.(*cell.Syntax)
	if !ok {
		return nil, bind.Errorf(bind.UNKNOWN_SYMBOL, "%s", cell.AtomName(atom.ID))
	}
	binding, ok := syntax.Binder.(*labelBinding)
	if !ok {
		return nil, bind.Errorf(bind.UNKNOWN_SYMBOL, "%s", cell.AtomName(atom.ID))
	}
	if binding.ref.FrameDepth != 0 {
		return nil, bind.NewError(bind.CELL_IN_OTHER_FRAME, binding.ref)
	}

	return &labelStatementBound{cellIndex: binding.ref.CellIndex}, nil
}

// RebindFromOuterFrame re-imports captured references; the keyword itself
// captures nothing.
func (l *labelKeyword) RebindFromOuterFrame(_ *bind.SymbolBindings, _ cell.Cell, _ int) (bind.SyntaxCompiler, cell.Cell, bool) {
	return nil, nil, false
}

// labelStatementBound is the bound form of a (label name) statement: frame
// setup allocates the label and stores it (wrapped) in its cell; the
// statement itself reads the position and writes it to the label.
type labelStatementBound struct {
	cellIndex int
}

func (l *labelStatementBound) Description() string {
	return fmt.Sprintf("##label#%d##", l.cellIndex)
}

func (l *labelStatementBound) ReferenceType() cell.ReferenceType { return cell.MonadReference }

func (l *labelStatementBound) SubstituteFrameRefs(sub func(cell.FrameReference) cell.Cell) cell.BoundCompiler {
	index := l.cellIndex
	if replacement := sub(cell.FrameReference{CellIndex: index, FrameDepth: 0, Kind: cell.MonadReference}); replacement != nil {
		if ref, ok := replacement.(*cell.FrameReference); ok {
			index = ref.CellIndex
		}
	}
	return &labelStatementBound{cellIndex: index}
}

func (l *labelStatementBound) CompileActions() (code.Compiled, error) {
	return code.Compiled{
		FrameSetup: code.Actions{
			code.Value(wrapValueCell),
			code.Push(),
			code.Value(allocLabelCell),
			code.FlatMap(),
			code.StoreCell(l.cellIndex),
		},
		Actions: code.Actions{
			code.Value(setLabelCell),
			code.Push(),
			code.CellValue(l.cellIndex),
			code.FlatMap(),
		},
	}, nil
}

// labelBinding is the syntax a label name binds to: using the name
// evaluates to a monad that reads the label's value.
type labelBinding struct {
	ref *cell.FrameReference
}

// Description returns a string shown when the value is displayed.
func (l *labelBinding) Description() string { return "##label_value##" }

// ReferenceType returns the reference kind of an invocation.
func (l *labelBinding) ReferenceType(_ cell.Cell) cell.ReferenceType {
	return cell.MonadReference
}

// PreBind installs forward declarations; label names install none.
func (l *labelBinding) PreBind(_ *bind.SymbolBindings, args cell.Cell) cell.Cell { return args }

// Bind resolves a use of the label name.
func (l *labelBinding) Bind(_ *bind.SymbolBindings, args cell.Cell) (cell.BoundCompiler, error) {
	if args != nil {
		return nil, bind.NewError(bind.CONSTANTS_NOT_CALLABLE, args)
	}
	if l.ref.FrameDepth != 0 {
		return nil, bind.NewError(bind.CELL_IN_OTHER_FRAME, l.ref)
	}
	return &labelUseBound{cellIndex: l.ref.CellIndex}, nil
}

// RebindFromOuterFrame imports the label's cell into the inner frame.
func (l *labelBinding) RebindFromOuterFrame(b *bind.SymbolBindings, _ cell.Cell, depth int) (bind.SyntaxCompiler, cell.Cell, bool) {
	if depth == 0 {
		return nil, nil, false
	}

	local := b.AllocCell()
	outer := &cell.FrameReference{CellIndex: l.ref.CellIndex, FrameDepth: l.ref.FrameDepth + depth - 1, Kind: cell.MonadReference}
	b.Import(outer, local)

	inner := &cell.FrameReference{CellIndex: local, FrameDepth: 0, Kind: cell.MonadReference}
	return &labelBinding{ref: inner}, inner, true
}

// labelUseBound is the bound form of a label name in value position.
type labelUseBound struct {
	cellIndex int
}

func (l *labelUseBound) Description() string {
	return fmt.Sprintf("##label_use#%d##", l.cellIndex)
}

func (l *labelUseBound) ReferenceType() cell.ReferenceType { return cell.MonadReference }

func (l *labelUseBound) SubstituteFrameRefs(sub func(cell.FrameReference) cell.Cell) cell.BoundCompiler {
	index := l.cellIndex
	if replacement := sub(cell.FrameReference{CellIndex: index, FrameDepth: 0, Kind: cell.MonadReference}); replacement != nil {
		if ref, ok := replacement.(*cell.FrameReference); ok {
			index = ref.CellIndex
		}
	}
	return &labelUseBound{cellIndex: index}
}

func (l *labelUseBound) CompileActions() (code.Compiled, error) {
	return code.Compiled{
		Actions: code.Actions{
			code.Value(readLabelCell),
			code.Push(),
			code.CellValue(l.cellIndex),
			code.FlatMap(),
		},
	}, nil
}
