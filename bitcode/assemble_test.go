package bitcode

import (
	"testing"

	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/vm"
)

func TestAssembleWriteBitcode(t *testing.T) {
	monad := WriteBitcode([]cell.BitCodeOp{cell.BitsOp(8, 0x9f)})

	value, ops, err := Assemble(monad)
	if err != nil {
		t.Fatal(err)
	}
	if !cell.IsNil(value) {
		t.Errorf("value = %s, want ()", value.Inspect())
	}
	if len(ops) != 1 || ops[0] != cell.BitsOp(8, 0x9f) {
		t.Errorf("ops = %v", ops)
	}
}

func TestAssembleFlatMapConcatenates(t *testing.T) {
	first := WriteBitcode([]cell.BitCodeOp{cell.BitsOp(8, 0x9f)})
	second := WriteBitcode([]cell.BitCodeOp{cell.BitsOp(16, 0x1c42)})

	composed, err := first.FlatMap(func(_ cell.Cell) (*Monad, error) {
		return second, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	_, ops, err := Assemble(composed)
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 2 || ops[0] != cell.BitsOp(8, 0x9f) || ops[1] != cell.BitsOp(16, 0x1c42) {
		t.Errorf("ops = %v", ops)
	}
}

func TestAssembleLabelForwardReference(t *testing.T) {
	// Read a label's value before it is set: the assembler needs a second
	// pass to converge.
	label := &cell.AnyCell{Value: NewLabel()}

	read := ReadLabelValue(label)
	chain, err := read.FlatMap(func(value cell.Cell) (*Monad, error) {
		// Emit a byte, then set the label to a constant.
		emit := WriteBitcode([]cell.BitCodeOp{cell.BitsOp(8, 0x01)})
		return emit.FlatMap(func(_ cell.Cell) (*Monad, error) {
			return SetLabelValue(label, cell.Bits(64, 0xbeef)), nil
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	// A final mapper surfaces the label's (now known) value.
	chain, err = chain.FlatMap(func(_ cell.Cell) (*Monad, error) {
		return ReadLabelValue(label), nil
	})
	if err != nil {
		t.Fatal(err)
	}

	value, ops, err := Assemble(chain)
	if err != nil {
		t.Fatal(err)
	}
	if !cell.Equal(value, cell.Bits(64, 0xbeef)) {
		t.Errorf("label value = %s, want $beefu64", value.Inspect())
	}
	if len(ops) != 1 {
		t.Errorf("re-assembly must not duplicate emissions: %v", ops)
	}
}

func TestAssembleBitPosition(t *testing.T) {
	emit := WriteBitcode([]cell.BitCodeOp{cell.BitsOp(8, 0xff)})
	chain, err := emit.FlatMap(func(_ cell.Cell) (*Monad, error) {
		return ReadBitPos(), nil
	})
	if err != nil {
		t.Fatal(err)
	}

	value, _, err := Assemble(chain)
	if err != nil {
		t.Fatal(err)
	}
	if value.Inspect() != "$8u64" {
		t.Errorf("bit position = %s, want $8u64", value.Inspect())
	}
}

func TestAssembleTooManyPasses(t *testing.T) {
	// A label that takes a different value on every pass never converges;
	// the pass limit turns that into an error.
	label := &cell.AnyCell{Value: NewLabel()}
	counter := uint64(0)

	read := ReadLabelValue(label)
	chain, err := read.FlatMap(func(_ cell.Cell) (*Monad, error) {
		counter++
		return SetLabelValue(label, cell.Plain(counter)), nil
	})
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = Assemble(chain)
	vmErr, ok := err.(*vm.Error)
	if !ok || vmErr.Code != vm.TOO_MANY_PASSES {
		t.Errorf("expected too-many-passes, got %v", err)
	}
}

func TestAssembleAllocDuringAssembly(t *testing.T) {
	// A bare AllocLabel reaching the assembler is an error: labels are
	// minted during monad construction only.
	_, _, err := Assemble(AllocLabel())

	vmErr, ok := err.(*vm.Error)
	if !ok || vmErr.Code != vm.LABELS_IN_ASSEMBLY {
		t.Errorf("expected cannot-allocate-labels-during-assembly, got %v", err)
	}
}

func TestAssembleDeterministic(t *testing.T) {
	build := func() *Monad {
		emit := WriteBitcode([]cell.BitCodeOp{cell.BitsOp(8, 0x10), cell.BitsOp(8, 0x20)})
		chain, _ := emit.FlatMap(func(_ cell.Cell) (*Monad, error) {
			return WriteBitcode([]cell.BitCodeOp{cell.MoveOp(32), cell.BitsOp(8, 0x30)}), nil
		})
		return chain
	}

	_, first, err := Assemble(build())
	if err != nil {
		t.Fatal(err)
	}
	_, second, err := Assemble(build())
	if err != nil {
		t.Fatal(err)
	}

	firstBytes := cell.BitCodeBytes(first)
	secondBytes := cell.BitCodeBytes(second)
	if len(firstBytes) != len(secondBytes) {
		t.Fatal("assembly is not deterministic")
	}
	for i := range firstBytes {
		if firstBytes[i] != secondBytes[i] {
			t.Fatal("assembly is not deterministic")
		}
	}
}
