package functions

import (
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/vm"
)

// compareFn builds a comparison primitive from an order predicate.
func compareFn(name string, accept func(order int) bool) *vm.NativeFn {
	return vm.NewFn(name, func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		if err := vm.ExactArgs(args, 2); err != nil {
			return nil, err
		}
		order, ok := cell.Compare(args[0], args[1])
		if !ok {
			return nil, vm.NewError(vm.CANNOT_COMPARE, cell.ListFromSlice(args))
		}
		return cell.BooleanFor(accept(order)), nil
	})
}

// (= a b): structural equality, defined for every pair of cells.
func eqFn() *vm.NativeFn {
	return vm.NewFn("=", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		if err := vm.ExactArgs(args, 2); err != nil {
			return nil, err
		}
		return cell.BooleanFor(cell.Equal(args[0], args[1])), nil
	})
}

// (!= a b)
func neFn() *vm.NativeFn {
	return vm.NewFn("!=", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		if err := vm.ExactArgs(args, 2); err != nil {
			return nil, err
		}
		return cell.BooleanFor(!cell.Equal(args[0], args[1])), nil
	})
}

// (< a b)
func ltFn() *vm.NativeFn { return compareFn("<", func(order int) bool { return order < 0 }) }

// (<= a b)
func leFn() *vm.NativeFn { return compareFn("<=", func(order int) bool { return order <= 0 }) }

// (> a b)
func gtFn() *vm.NativeFn { return compareFn(">", func(order int) bool { return order > 0 }) }

// (>= a b)
func geFn() *vm.NativeFn { return compareFn(">=", func(order int) bool { return order >= 0 }) }
