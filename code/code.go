// Package code defines the action stream executed by the virtual machine.
//
// The compiler lowers bound cell trees into linear lists of actions; the VM
// in the vm package interprets them against a frame. Unlike byte-encoded
// instruction sets, actions carry their operands directly: constants are
// cells and indices are ints, so no encoding or decoding step exists.
package code

import (
	"fmt"
	"strings"

	"github.com/dr8co/sema/cell"
)

// Opcode represents a single action kind.
type Opcode int

// Action opcodes.
//
// The accumulator is a single cell and the stack belongs to the current
// frame. A Call reads its argument list from cell 0 of the frame.
const (
	// OpValue loads a constant cell into the accumulator.
	OpValue Opcode = iota

	// OpPushValue pushes a constant cell onto the stack.
	OpPushValue

	// OpCellValue loads a frame cell into the accumulator.
	//
	// Operands: cell index.
	OpCellValue

	// OpStoreCell stores the accumulator into a frame cell.
	//
	// Operands: cell index.
	OpStoreCell

	// OpPush pushes the accumulator onto the stack.
	OpPush

	// OpPop pops the top of the stack into the accumulator.
	OpPop

	// OpPopList pops n values and loads a proper list of them into the
	// accumulator.
	//
	// Operands: value count.
	OpPopList

	// OpPopListWithCdr pops a cdr, then pops n values, and loads the
	// resulting improper list into the accumulator.
	//
	// Operands: value count.
	OpPopListWithCdr

	// OpPopCall pops n arguments into a list stored in cell 0, pops a
	// function from the stack, and calls it.
	//
	// Operands: argument count.
	OpPopCall

	// OpCall calls the accumulator as a function; the argument list is
	// already in cell 0.
	OpCall

	// OpWrap wraps the accumulator in a monad using the identity flat_map.
	OpWrap

	// OpFlatMap pops a function f from the stack; the accumulator is a
	// monad m; the accumulator becomes m.flat_map(f).
	OpFlatMap

	// OpNext pops a monad from the stack, sequences it with the monad in
	// the accumulator so the popped monad's value is discarded, and pushes
	// the composition.
	OpNext

	// OpJump adds a relative offset to the action pointer.
	//
	// Operands: relative offset.
	OpJump

	// OpJumpIfFalse adds a relative offset to the action pointer when the
	// accumulator is falsy.
	//
	// Operands: relative offset.
	OpJumpIfFalse
)

// Definition represents an action definition: its name and whether it takes
// a constant cell or an integer operand.
type Definition struct {
	// The name of the action.
	Name string

	// HasCell indicates the action carries a constant cell.
	HasCell bool

	// HasIndex indicates the action carries an integer operand.
	HasIndex bool
}

// definitions is a map of opcodes to their definitions.
var definitions = map[Opcode]*Definition{
	OpValue:          {"Value", true, false},
	OpPushValue:      {"PushValue", true, false},
	OpCellValue:      {"CellValue", false, true},
	OpStoreCell:      {"StoreCell", false, true},
	OpPush:           {"Push", false, false},
	OpPop:            {"Pop", false, false},
	OpPopList:        {"PopList", false, true},
	OpPopListWithCdr: {"PopListWithCdr", false, true},
	OpPopCall:        {"PopCall", false, true},
	OpCall:           {"Call", false, false},
	OpWrap:           {"Wrap", false, false},
	OpFlatMap:        {"FlatMap", false, false},
	OpNext:           {"Next", false, false},
	OpJump:           {"Jump", false, true},
	OpJumpIfFalse:    {"JumpIfFalse", false, true},
}

// Lookup returns the [Definition] for the given [Opcode].
func Lookup(op Opcode) (*Definition, error) {
	def, ok := definitions[op]
	if !ok {
		return nil, fmt.Errorf("opcode %d undefined", op)
	}
	return def, nil
}

// Action is one instruction of the stream: an opcode with its operands.
type Action struct {
	Op Opcode

	// Cell is the constant operand of Value and PushValue actions.
	Cell cell.Cell

	// Index is the integer operand: a cell index, a value count, or a
	// relative jump offset.
	Index int
}

// Value creates an action that loads a constant into the accumulator.
func Value(c cell.Cell) Action { return Action{Op: OpValue, Cell: c} }

// PushValue creates an action that pushes a constant onto the stack.
func PushValue(c cell.Cell) Action { return Action{Op: OpPushValue, Cell: c} }

// CellValue creates an action that loads a frame cell.
func CellValue(i int) Action { return Action{Op: OpCellValue, Index: i} }

// StoreCell creates an action that stores the accumulator into a frame cell.
func StoreCell(i int) Action { return Action{Op: OpStoreCell, Index: i} }

// Push creates an action that pushes the accumulator.
func Push() Action { return Action{Op: OpPush} }

// Pop creates an action that pops the stack into the accumulator.
func Pop() Action { return Action{Op: OpPop} }

// PopList creates an action that pops n values into a proper list.
func PopList(n int) Action { return Action{Op: OpPopList, Index: n} }

// PopListWithCdr creates an action that pops a cdr then n values into an
// improper list.
func PopListWithCdr(n int) Action { return Action{Op: OpPopListWithCdr, Index: n} }

// PopCall creates an action that pops n arguments and a function and calls
// it.
func PopCall(n int) Action { return Action{Op: OpPopCall, Index: n} }

// Call creates an action that calls the accumulator.
func Call() Action { return Action{Op: OpCall} }

// Wrap creates an action that wraps the accumulator in a monad.
func Wrap() Action { return Action{Op: OpWrap} }

// FlatMap creates an action that flat-maps the accumulator monad.
func FlatMap() Action { return Action{Op: OpFlatMap} }

// Next creates an action that sequences two monads.
func Next() Action { return Action{Op: OpNext} }

// Jump creates a relative jump action.
func Jump(delta int) Action { return Action{Op: OpJump, Index: delta} }

// JumpIfFalse creates a conditional relative jump action.
func JumpIfFalse(delta int) Action { return Action{Op: OpJumpIfFalse, Index: delta} }

// Actions is a sequence of actions.
type Actions []Action

// String provides a human-readable listing of the actions.
func (a Actions) String() string {
	var out strings.Builder

	for i, action := range a {
		def, err := Lookup(action.Op)
		if err != nil {
			fmt.Fprintf(&out, "%04d ERROR: %s\n", i, err)
			continue
		}
		switch {
		case def.HasCell:
			fmt.Fprintf(&out, "%04d %s %s\n", i, def.Name, action.Cell.Inspect())
		case def.HasIndex:
			fmt.Fprintf(&out, "%04d %s %d\n", i, def.Name, action.Index)
		default:
			fmt.Fprintf(&out, "%04d %s\n", i, def.Name)
		}
	}

	return out.String()
}

// Compiled holds the result of compiling one statement: actions run once
// when the surrounding frame is set up, and the statement's own actions.
// Labels use the frame setup section to allocate themselves before any
// statement runs, so forward references work regardless of statement order.
type Compiled struct {
	FrameSetup Actions
	Actions    Actions
}

// Extend appends another compiled fragment to this one.
func (c *Compiled) Extend(other Compiled) {
	c.FrameSetup = append(c.FrameSetup, other.FrameSetup...)
	c.Actions = append(c.Actions, other.Actions...)
}

// Add appends actions to the main section.
func (c *Compiled) Add(actions ...Action) {
	c.Actions = append(c.Actions, actions...)
}

// ToActions flattens the fragment: frame setup first, then the main
// actions.
func (c Compiled) ToActions() Actions {
	result := make(Actions, 0, len(c.FrameSetup)+len(c.Actions))
	result = append(result, c.FrameSetup...)
	result = append(result, c.Actions...)
	return result
}
