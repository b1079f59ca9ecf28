// Package vm executes action streams against frames.
//
// The machine is deliberately small: a single-cell accumulator, the frame's
// value stack, and the frame's numbered cells. Functions are frame monads;
// calling one hands it the current frame with the argument list in cell 0.
// The machine is single-threaded and has no suspension: an action list
// either runs to completion or stops at the first error.
package vm

import (
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/code"
)

// Exec runs an action list against a frame and returns the final value of
// the accumulator.
func Exec(actions code.Actions, frame *cell.Frame) (cell.Cell, error) {
	var acc cell.Cell = cell.Nil

	ip := 0
	for ip < len(actions) {
		action := actions[ip]

		switch action.Op {
		case code.OpValue:
			acc = action.Cell

		case code.OpPushValue:
			frame.Push(action.Cell)

		case code.OpCellValue:
			if action.Index < 0 || action.Index >= len(frame.Cells) {
				return nil, Errorf(CELL_OUT_OF_BOUNDS, "cell %d of %d", action.Index, len(frame.Cells))
			}
			acc = frame.Cells[action.Index]

		case code.OpStoreCell:
			if action.Index < 0 || action.Index >= len(frame.Cells) {
				return nil, Errorf(CELL_OUT_OF_BOUNDS, "cell %d of %d", action.Index, len(frame.Cells))
			}
			frame.Cells[action.Index] = acc

		case code.OpPush:
			frame.Push(acc)

		case code.OpPop:
			value, ok := frame.Pop()
			if !ok {
				return nil, Errorf(STACK_IS_EMPTY, "pop")
			}
			acc = value

		case code.OpPopList:
			result := cell.Nil
			for i := 0; i < action.Index; i++ {
				value, ok := frame.Pop()
				if !ok {
					return nil, Errorf(STACK_IS_EMPTY, "pop-list")
				}
				result = cell.NewList(value, result)
			}
			acc = result

		case code.OpPopListWithCdr:
			result, ok := frame.Pop()
			if !ok {
				return nil, Errorf(STACK_IS_EMPTY, "pop-list-cdr")
			}
			for i := 0; i < action.Index; i++ {
				value, ok := frame.Pop()
				if !ok {
					return nil, Errorf(STACK_IS_EMPTY, "pop-list-cdr")
				}
				result = cell.NewList(value, result)
			}
			acc = result

		case code.OpPopCall:
			args := cell.Nil
			for i := 0; i < action.Index; i++ {
				value, ok := frame.Pop()
				if !ok {
					return nil, Errorf(STACK_IS_EMPTY, "pop-call")
				}
				args = cell.NewList(value, args)
			}
			fn, ok := frame.Pop()
			if !ok {
				return nil, Errorf(STACK_IS_EMPTY, "pop-call")
			}
			frame.Allocate(1)
			frame.Cells[0] = args
			result, err := CallFunction(fn, frame)
			if err != nil {
				return nil, err
			}
			acc = result

		case code.OpCall:
			result, err := CallFunction(acc, frame)
			if err != nil {
				return nil, err
			}
			acc = result

		case code.OpWrap:
			acc = WrapValue(acc)

		case code.OpFlatMap:
			fn, ok := frame.Pop()
			if !ok {
				return nil, Errorf(STACK_IS_EMPTY, "flat-map")
			}
			monad, ok := acc.(*cell.Monad)
			if !ok {
				return nil, NewError(NOT_A_MONAD, acc)
			}
			result, err := FlatMapMonad(monad, fn, frame)
			if err != nil {
				return nil, err
			}
			acc = result

		case code.OpNext:
			first, ok := frame.Pop()
			if !ok {
				return nil, Errorf(STACK_IS_EMPTY, "next")
			}
			firstMonad, ok := first.(*cell.Monad)
			if !ok {
				return nil, NewError(NOT_A_MONAD, first)
			}
			second, ok := acc.(*cell.Monad)
			if !ok {
				return nil, NewError(NOT_A_MONAD, acc)
			}
			composed, err := NextMonad(firstMonad, second, frame)
			if err != nil {
				return nil, err
			}
			frame.Push(composed)

		case code.OpJump:
			ip += action.Index
			continue

		case code.OpJumpIfFalse:
			if !cell.IsTruthy(acc) {
				ip += action.Index
				continue
			}
		}

		ip++
	}

	return acc, nil
}

// CallFunction calls a cell as a function against the given frame. The
// argument list must already be in cell 0.
func CallFunction(fn cell.Cell, frame *cell.Frame) (cell.Cell, error) {
	fm, ok := fn.(*cell.FrameMonadCell)
	if !ok {
		return nil, NewError(NOT_A_FUNCTION, fn)
	}
	return fm.Fn.Resolve(frame)
}
