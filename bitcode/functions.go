package bitcode

import (
	"github.com/dr8co/sema/bind"
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/vm"
)

// Install binds the bit-emission primitives and keywords into an
// environment.
func Install(b *bind.SymbolBindings) {
	for _, fn := range []*vm.NativeFn{dFn(), mFn(), aFn(), bitPosFn(), setBitPosFn()} {
		b.SetSymbol(cell.AtomID(fn.Name), &cell.FrameMonadCell{Fn: fn})
	}
	b.SetSymbol(cell.AtomID("label"), &cell.Syntax{Binder: &labelKeyword{}, Param: cell.Nil})
	b.SetSymbol(cell.AtomID("assemble"), &cell.Syntax{Binder: &assembleKeyword{}, Param: cell.Nil})
}

// opsForNumber converts a number to its emission: declared widths emit that
// many bits, plain numbers emit 32.
func opsForNumber(num *cell.Number) cell.BitCodeOp {
	switch num.Kind {
	case cell.BitNumber:
		return cell.BitsOp(num.Bits, num.Uval)
	case cell.SignedBitNumber:
		return cell.BitsOp(num.Bits, uint64(num.Ival))
	default:
		return cell.BitsOp(32, num.Uval)
	}
}

// (d n₁ …) emits numeric constants as bit fields, widths from the numbers'
// declared widths.
func dFn() *vm.NativeFn {
	return vm.NewMonadFn("d", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		ops := make([]cell.BitCodeOp, 0, len(args))
		for i := range args {
			num, err := vm.NumberArg(args, i)
			if err != nil {
				return nil, err
			}
			ops = append(ops, opsForNumber(num))
		}
		return WriteBitcode(ops).ToCell(), nil
	})
}

// (m addr) sets the emission position to addr.
func mFn() *vm.NativeFn {
	return vm.NewMonadFn("m", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		if err := vm.ExactArgs(args, 1); err != nil {
			return nil, err
		}
		addr, err := vm.NumberArg(args, 0)
		if err != nil {
			return nil, err
		}
		return WriteBitcode([]cell.BitCodeOp{cell.MoveOp(addr.ToUint())}).ToCell(), nil
	})
}

// (a pattern align) emits the pattern repeatedly until the position is
// aligned to align bits.
func aFn() *vm.NativeFn {
	return vm.NewMonadFn("a", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		if err := vm.ExactArgs(args, 2); err != nil {
			return nil, err
		}
		pattern, err := vm.NumberArg(args, 0)
		if err != nil {
			return nil, err
		}
		alignment, err := vm.NumberArg(args, 1)
		if err != nil {
			return nil, err
		}

		width := pattern.Width()
		if pattern.Kind == cell.PlainNumber {
			width = 32
		}
		op := cell.AlignOp(width, pattern.ToUint(), uint32(alignment.ToUint()))
		return WriteBitcode([]cell.BitCodeOp{op}).ToCell(), nil
	})
}

// (bit_pos) reads the emission position as a monadic value.
func bitPosFn() *vm.NativeFn {
	return vm.NewMonadFn("bit_pos", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		if err := vm.ExactArgs(args, 0); err != nil {
			return nil, err
		}
		return ReadBitPos().ToCell(), nil
	})
}

// (set_bit_pos x) sets the emission position from a value.
func setBitPosFn() *vm.NativeFn {
	return vm.NewMonadFn("set_bit_pos", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		if err := vm.ExactArgs(args, 1); err != nil {
			return nil, err
		}
		return SetBitPos(args[0]).ToCell(), nil
	})
}
