// Package functions provides the primitive function surface of the
// language: list construction, arithmetic, comparison, bit construction and
// B-tree operators. Every primitive is a frame monad; argument parsing is
// the primitive's own responsibility.
package functions

import (
	"github.com/dr8co/sema/bind"
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/vm"
)

// Install binds the standard functions into an environment.
func Install(b *bind.SymbolBindings) {
	for _, fn := range []*vm.NativeFn{
		listFn(), consFn(), carFn(), cdrFn(),
		addFn(), subFn(), mulFn(), divFn(),
		eqFn(), neFn(), ltFn(), leFn(), gtFn(), geFn(),
		bitsFn(), sbitsFn(),
		btreeFn(), btreeInsertFn(), btreeLookupFn(),
	} {
		b.SetSymbol(cell.AtomID(fn.Name), &cell.FrameMonadCell{Fn: fn})
	}
}

// (list x y z) -> (x y z)
func listFn() *vm.NativeFn {
	return vm.NewFn("list", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		return cell.ListFromSlice(args), nil
	})
}

// (cons a b) -> (a . b)
func consFn() *vm.NativeFn {
	return vm.NewFn("cons", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		if err := vm.ExactArgs(args, 2); err != nil {
			return nil, err
		}
		return cell.NewList(args[0], args[1]), nil
	})
}

// (car (a . b)) -> a
func carFn() *vm.NativeFn {
	return vm.NewFn("car", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		if err := vm.ExactArgs(args, 1); err != nil {
			return nil, err
		}
		pair, err := vm.ListArg(args, 0)
		if err != nil {
			return nil, err
		}
		return pair.Car, nil
	})
}

// (cdr (a . b)) -> b
func cdrFn() *vm.NativeFn {
	return vm.NewFn("cdr", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		if err := vm.ExactArgs(args, 1); err != nil {
			return nil, err
		}
		pair, err := vm.ListArg(args, 0)
		if err != nil {
			return nil, err
		}
		return pair.Cdr, nil
	})
}

// (btree (key value) …) -> btree
func btreeFn() *vm.NativeFn {
	return vm.NewFn("btree", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		result := cell.Cell(cell.NewBTree())
		for _, arg := range args {
			pair, ok := cell.ListToSlice(arg)
			if !ok || len(pair) != 2 {
				return nil, vm.NewError(vm.TYPE_MISMATCH, arg)
			}
			inserted, err := cell.BTreeInsert(result, pair[0], pair[1])
			if err != nil {
				return nil, vm.NewError(vm.CANNOT_COMPARE, arg)
			}
			result = inserted
		}
		return result, nil
	})
}

// (btree_insert btree key value) -> btree
func btreeInsertFn() *vm.NativeFn {
	return vm.NewFn("btree_insert", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		if err := vm.ExactArgs(args, 3); err != nil {
			return nil, err
		}
		inserted, err := cell.BTreeInsert(args[0], args[1], args[2])
		if err != nil {
			return nil, vm.NewError(vm.NOT_A_BTREE, args[0])
		}
		return inserted, nil
	})
}

// (btree_lookup btree key) -> value, or nil when absent
func btreeLookupFn() *vm.NativeFn {
	return vm.NewFn("btree_lookup", func(args []cell.Cell, _ *cell.Frame) (cell.Cell, error) {
		if err := vm.ExactArgs(args, 2); err != nil {
			return nil, err
		}
		value, err := cell.BTreeSearch(args[0], args[1])
		if err != nil {
			return nil, vm.NewError(vm.NOT_A_BTREE, args[0])
		}
		return value, nil
	})
}
