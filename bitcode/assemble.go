package bitcode

import (
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/vm"
)

// DefaultMaxPasses bounds the assembler's fix-point iteration: a monad
// whose labels have not stabilized after this many passes fails rather
// than looping.
const DefaultMaxPasses = 1000

// Assembler evaluates a bit-code monad to a concrete bit stream, iterating
// flat-map chains until the label values stop changing.
type Assembler struct {
	labelValues   map[*Label]cell.Cell
	changedLabels map[*Label]bool
	bitcode       []cell.BitCodeOp
	bitPos        uint64
	bitOffset     int64
	maxPasses     int
}

// NewAssembler creates an assembler with the default pass limit.
func NewAssembler() *Assembler {
	return &Assembler{
		labelValues:   make(map[*Label]cell.Cell),
		changedLabels: make(map[*Label]bool),
		maxPasses:     DefaultMaxPasses,
	}
}

// Assemble evaluates a monad, returning its residual value and the
// generated bit stream.
func Assemble(monad *Monad) (cell.Cell, []cell.BitCodeOp, error) {
	assembler := NewAssembler()
	value, err := assembler.assemble(monad)
	if err != nil {
		return nil, nil, err
	}
	return value, assembler.bitcode, nil
}

// AssembleCell evaluates a cell holding a bit-code monad.
func AssembleCell(c cell.Cell) (cell.Cell, []cell.BitCodeOp, error) {
	monad, ok := FromCell(c)
	if !ok {
		return nil, nil, vm.NewError(vm.NOT_BITCODE, c)
	}
	return Assemble(monad)
}

func (a *Assembler) getLabel(labelCell cell.Cell) (*Label, error) {
	if any, ok := labelCell.(*cell.AnyCell); ok {
		if label, ok := any.Value.(*Label); ok {
			return label, nil
		}
	}
	return nil, vm.NewError(vm.NOT_A_LABEL, labelCell)
}

func (a *Assembler) appendBitcode(ops []cell.BitCodeOp) {
	if len(ops) == 0 {
		return
	}
	a.bitPos = cell.PositionAfter(a.bitPos, ops)
	a.bitcode = append(a.bitcode, ops...)
}

// assemble runs a single-pass traversal of one monad. Flat-map chains run
// their own inner fix-point loop: the stream is truncated back between
// passes so no duplicate emission survives, and inner label changes merge
// into the enclosing set.
func (a *Assembler) assemble(monad *Monad) (cell.Cell, error) {
	a.appendBitcode(monad.Bitcode)

	var result cell.Cell
	var err error

	switch monad.Kind {
	case ValueV:
		result = monad.Value

	case AllocLabelV:
		// Labels are minted during monad construction only.
		err = vm.Errorf(vm.LABELS_IN_ASSEMBLY, "alloc-label")

	case LabelValueV:
		var label *Label
		label, err = a.getLabel(monad.Value)
		if err == nil {
			if value, known := a.labelValues[label]; known {
				result = value
			} else {
				// Not known yet: nil forces another pass once the label
				// acquires a value.
				result = cell.Nil
			}
		}

	case SetLabelValueV:
		var label *Label
		label, err = a.getLabel(monad.Value)
		if err == nil {
			prior, known := a.labelValues[label]
			if !known || !cell.Equal(prior, monad.SetValue) {
				a.changedLabels[label] = true
			}
			a.labelValues[label] = monad.SetValue
			result = monad.SetValue
		}

	case BitPosV:
		pos := int64(a.bitPos) + a.bitOffset
		if pos < 0 {
			err = vm.Errorf(vm.BEFORE_START_OF_FILE, "bit position %d", pos)
		} else {
			result = cell.Bits(64, uint64(pos))
		}

	case SetBitPosV:
		number, ok := monad.SetValue.(*cell.Number)
		if !ok {
			err = vm.NewError(vm.NOT_A_NUMBER, monad.SetValue)
		} else {
			a.bitOffset = int64(number.ToUint()) - int64(a.bitPos)
			result = cell.Nil
		}

	case FlatMapV:
		result, err = a.assembleFlatMap(monad)
	}

	if err != nil {
		return nil, err
	}

	a.appendBitcode(monad.Following)
	return result, nil
}

func (a *Assembler) assembleFlatMap(monad *Monad) (cell.Cell, error) {
	// Track the labels changed by this chain separately so the enclosing
	// level keeps its own set.
	outerLabels := a.changedLabels
	a.changedLabels = make(map[*Label]bool)

	initialBitPos := a.bitPos
	initialCodeLen := len(a.bitcode)
	passes := 0

	var value cell.Cell
	for {
		var err error
		value, err = a.assemble(monad.Inner)
		if err != nil {
			a.changedLabels = outerLabels
			return nil, err
		}

		for _, mapper := range monad.Mappers {
			next, err := mapper(value)
			if err != nil {
				a.changedLabels = outerLabels
				return nil, err
			}
			value, err = a.assemble(next)
			if err != nil {
				a.changedLabels = outerLabels
				return nil, err
			}
		}

		if len(a.changedLabels) == 0 {
			break
		}

		// Labels moved: merge the changes up and run another pass over
		// exactly the same region of the stream.
		for label := range a.changedLabels {
			outerLabels[label] = true
		}

		passes++
		if passes > a.maxPasses {
			a.changedLabels = outerLabels
			return nil, vm.Errorf(vm.TOO_MANY_PASSES, "%d passes", a.maxPasses)
		}

		a.changedLabels = make(map[*Label]bool)
		a.bitPos = initialBitPos
		a.bitcode = a.bitcode[:initialCodeLen]
	}

	a.changedLabels = outerLabels
	return value, nil
}
