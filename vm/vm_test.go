package vm

import (
	"testing"

	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/code"
)

func TestExecStackOps(t *testing.T) {
	frame := cell.NewFrame(4, nil)

	actions := code.Actions{
		code.Value(cell.Plain(1)),
		code.Push(),
		code.Value(cell.Plain(2)),
		code.Push(),
		code.Value(cell.Plain(3)),
		code.Push(),
		code.PopList(3),
	}

	result, err := Exec(actions, frame)
	if err != nil {
		t.Fatal(err)
	}
	if result.Inspect() != "(1 2 3)" {
		t.Errorf("result = %s, want (1 2 3)", result.Inspect())
	}
}

func TestExecCellOps(t *testing.T) {
	frame := cell.NewFrame(4, nil)

	actions := code.Actions{
		code.Value(cell.Plain(42)),
		code.StoreCell(2),
		code.Value(cell.Nil),
		code.CellValue(2),
	}

	result, err := Exec(actions, frame)
	if err != nil {
		t.Fatal(err)
	}
	if !cell.Equal(result, cell.Plain(42)) {
		t.Errorf("result = %s, want 42", result.Inspect())
	}
}

func TestExecPopEmptyStack(t *testing.T) {
	frame := cell.NewFrame(1, nil)
	_, err := Exec(code.Actions{code.Pop()}, frame)

	vmErr, ok := err.(*Error)
	if !ok || vmErr.Code != STACK_IS_EMPTY {
		t.Errorf("expected stack-is-empty, got %v", err)
	}
}

func TestExecCallNonFunction(t *testing.T) {
	frame := cell.NewFrame(1, nil)
	_, err := Exec(code.Actions{code.Value(cell.Plain(1)), code.Call()}, frame)

	vmErr, ok := err.(*Error)
	if !ok || vmErr.Code != NOT_A_FUNCTION {
		t.Errorf("expected not-a-function, got %v", err)
	}
}

func TestExecCallNative(t *testing.T) {
	frame := cell.NewFrame(1, nil)

	double := NewFn("double", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		num, err := NumberArg(args, 0)
		if err != nil {
			return nil, err
		}
		return num.Add(num), nil
	})

	actions := code.Actions{
		code.PushValue(&cell.FrameMonadCell{Fn: double}),
		code.Value(cell.Plain(21)),
		code.Push(),
		code.PopCall(1),
	}

	result, err := Exec(actions, frame)
	if err != nil {
		t.Fatal(err)
	}
	if !cell.Equal(result, cell.Plain(42)) {
		t.Errorf("result = %s, want 42", result.Inspect())
	}
}

func TestExecJumps(t *testing.T) {
	frame := cell.NewFrame(1, nil)

	// if false then 1 else 2
	actions := code.Actions{
		code.Value(cell.False),
		code.JumpIfFalse(3),
		code.Value(cell.Plain(1)),
		code.Jump(2),
		code.Value(cell.Plain(2)),
	}

	result, err := Exec(actions, frame)
	if err != nil {
		t.Fatal(err)
	}
	if !cell.Equal(result, cell.Plain(2)) {
		t.Errorf("result = %s, want 2", result.Inspect())
	}
}

func TestWrapAndFlatMap(t *testing.T) {
	frame := cell.NewFrame(1, nil)

	// Wrap 21, then flat-map a function that returns the value unchanged;
	// ActionsFn wraps the plain result again.
	identity := &ActionsFn{
		StoreArg: -1,
		Actions:  code.Actions{},
		Monadic:  false,
		Desc:     "##identity##",
	}
	// The mapping function receives the value in cell 0.
	identity.Actions = code.Actions{code.CellValue(0)}

	actions := code.Actions{
		code.PushValue(&cell.FrameMonadCell{Fn: identity}),
		code.Value(cell.Plain(21)),
		code.Wrap(),
		code.FlatMap(),
	}

	result, err := Exec(actions, frame)
	if err != nil {
		t.Fatal(err)
	}

	monad, ok := result.(*cell.Monad)
	if !ok {
		t.Fatalf("result is not a monad: %s", result.Inspect())
	}
	value, ok := WrappedValue(monad)
	if !ok || !cell.Equal(value, cell.Plain(21)) {
		t.Errorf("wrapped value = %v, want 21", value)
	}
}

func TestNextSequencesMonads(t *testing.T) {
	frame := cell.NewFrame(1, nil)

	actions := code.Actions{
		code.Value(cell.Plain(1)),
		code.Wrap(),
		code.Push(),
		code.Value(cell.Plain(2)),
		code.Wrap(),
		code.Next(),
		code.Pop(),
	}

	result, err := Exec(actions, frame)
	if err != nil {
		t.Fatal(err)
	}

	monad, ok := result.(*cell.Monad)
	if !ok {
		t.Fatalf("result is not a monad: %s", result.Inspect())
	}
	value, ok := WrappedValue(monad)
	if !ok || !cell.Equal(value, cell.Plain(2)) {
		t.Errorf("sequenced value should be the second monad's, got %v", value)
	}
}

func TestLambdaCall(t *testing.T) {
	frame := cell.NewFrame(1, nil)

	// (fun (x) x) called with 42.
	identity := &Lambda{
		Actions:  code.Actions{code.CellValue(1)},
		NumCells: 2,
		ArgCount: 1,
	}

	actions := code.Actions{
		code.PushValue(&cell.FrameMonadCell{Fn: identity}),
		code.Value(cell.Plain(42)),
		code.Push(),
		code.PopCall(1),
	}

	result, err := Exec(actions, frame)
	if err != nil {
		t.Fatal(err)
	}
	if !cell.Equal(result, cell.Plain(42)) {
		t.Errorf("result = %s, want 42", result.Inspect())
	}
}
