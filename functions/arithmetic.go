package functions

import (
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/vm"
)

func numbers(args []cell.Cell) ([]*cell.Number, error) {
	result := make([]*cell.Number, len(args))
	for i := range args {
		num, err := vm.NumberArg(args, i)
		if err != nil {
			return nil, err
		}
		result[i] = num
	}
	return result, nil
}

// (+ a b c) -> a+b+c
func addFn() *vm.NativeFn {
	return vm.NewFn("+", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		nums, err := numbers(args)
		if err != nil {
			return nil, err
		}
		result := cell.Plain(0)
		for _, num := range nums {
			result = result.Add(num)
		}
		return result, nil
	})
}

// (- a b c) -> a-b-c; (- a) negates
func subFn() *vm.NativeFn {
	return vm.NewFn("-", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		nums, err := numbers(args)
		if err != nil {
			return nil, err
		}
		switch len(nums) {
		case 0:
			return cell.Plain(0), nil
		case 1:
			return cell.SBits(nums[0].Width(), -nums[0].ToInt()), nil
		default:
			result := nums[0]
			for _, num := range nums[1:] {
				result = result.Sub(num)
			}
			return result, nil
		}
	})
}

// (* a b c) -> a*b*c
func mulFn() *vm.NativeFn {
	return vm.NewFn("*", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		nums, err := numbers(args)
		if err != nil {
			return nil, err
		}
		if len(nums) == 0 {
			return cell.Plain(0), nil
		}
		result := nums[0]
		for _, num := range nums[1:] {
			result = result.Mul(num)
		}
		return result, nil
	})
}

// (/ a b c) -> a/b/c
func divFn() *vm.NativeFn {
	return vm.NewFn("/", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		nums, err := numbers(args)
		if err != nil {
			return nil, err
		}
		if len(nums) == 0 {
			return cell.Plain(0), nil
		}
		result := nums[0]
		for _, num := range nums[1:] {
			if num.ToUint() == 0 && num.ToInt() == 0 {
				return nil, vm.NewError(vm.TYPE_MISMATCH, num)
			}
			result = result.Div(num)
		}
		return result, nil
	})
}

// (bits w n) -> n masked to w bits
func bitsFn() *vm.NativeFn {
	return vm.NewFn("bits", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		if err := vm.ExactArgs(args, 2); err != nil {
			return nil, err
		}
		width, err := vm.NumberArg(args, 0)
		if err != nil {
			return nil, err
		}
		number, err := vm.NumberArg(args, 1)
		if err != nil {
			return nil, err
		}

		bits := uint8(width.ToUint())
		value := number.ToUint()
		if bits < 64 {
			value &= (uint64(1) << bits) - 1
		}
		return cell.Bits(bits, value), nil
	})
}

// (sbits w n) -> n sign-extended from bit w-1
func sbitsFn() *vm.NativeFn {
	return vm.NewFn("sbits", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		if err := vm.ExactArgs(args, 2); err != nil {
			return nil, err
		}
		width, err := vm.NumberArg(args, 0)
		if err != nil {
			return nil, err
		}
		number, err := vm.NumberArg(args, 1)
		if err != nil {
			return nil, err
		}

		bits := uint8(width.ToUint())
		value := number.ToUint()
		if bits < 64 {
			value &= (uint64(1) << bits) - 1
			if value&(uint64(1)<<(bits-1)) != 0 {
				value |= ^uint64(0) << bits
			}
		}
		return cell.SBits(bits, int64(value)), nil
	})
}
