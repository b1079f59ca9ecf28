package cell

import (
	"bytes"
	"testing"
)

func TestPositionAfter(t *testing.T) {
	tests := []struct {
		initial  uint64
		ops      []BitCodeOp
		expected uint64
	}{
		{0, []BitCodeOp{BitsOp(4, 4)}, 4},
		{0, []BitCodeOp{BitsOp(4, 4), BitsOp(4, 4)}, 8},
		{32, []BitCodeOp{BitsOp(4, 4)}, 36},
		{0, []BitCodeOp{MoveOp(65536)}, 65536},
		{0, []BitCodeOp{AlignOp(8, 0, 32)}, 0},
		{0, []BitCodeOp{BitsOp(4, 4), AlignOp(8, 0, 32)}, 32},
	}

	for _, tt := range tests {
		if got := PositionAfter(tt.initial, tt.ops); got != tt.expected {
			t.Errorf("PositionAfter(%d, %v) = %d, want %d", tt.initial, tt.ops, got, tt.expected)
		}
	}
}

func TestBitCodeBytes(t *testing.T) {
	tests := []struct {
		name     string
		ops      []BitCodeOp
		expected []byte
	}{
		{"nothing", nil, []byte{}},
		{"byte", []BitCodeOp{BitsOp(8, 42)}, []byte{42}},
		{"two bytes", []BitCodeOp{BitsOp(8, 42), BitsOp(8, 12)}, []byte{42, 12}},
		{"nybbles", []BitCodeOp{BitsOp(4, 0x2), BitsOp(4, 0x4)}, []byte{0x42}},
		{"12 bits", []BitCodeOp{BitsOp(12, 0x654)}, []byte{0x54, 0x6}},
		{"12 bits and a nybble", []BitCodeOp{BitsOp(12, 0x654), BitsOp(4, 0xf)}, []byte{0x54, 0xf6}},
		{"overwrite nybble", []BitCodeOp{BitsOp(8, 0x99), MoveOp(4), BitsOp(4, 0xa)}, []byte{0xa9}},
		{"overwrite middle nybble", []BitCodeOp{BitsOp(8, 0x99), MoveOp(2), BitsOp(4, 0x9)}, []byte{0xa5}},
		{"align fills with pattern", []BitCodeOp{BitsOp(8, 0xff), AlignOp(8, 0, 32)}, []byte{0xff, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BitCodeBytes(tt.ops)
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("BitCodeBytes(%v) = %x, want %x", tt.ops, got, tt.expected)
			}
		})
	}
}

func TestBitCodeBytesMove(t *testing.T) {
	got := BitCodeBytes([]BitCodeOp{MoveOp(8192 * 8), BitsOp(8, 0x42)})
	if len(got) != 8193 {
		t.Fatalf("length = %d, want 8193", len(got))
	}
	if got[0] != 0x00 || got[8192] != 0x42 {
		t.Errorf("bytes = [%x ... %x], want [00 ... 42]", got[0], got[8192])
	}
}

func TestBitCodeBytesLarge(t *testing.T) {
	ops := make([]BitCodeOp, 5000)
	for i := range ops {
		ops[i] = BitsOp(8, uint64(i)&0xff)
	}

	got := BitCodeBytes(ops)
	if len(got) != 5000 {
		t.Fatalf("length = %d, want 5000", len(got))
	}
	for i := range got {
		if got[i] != byte(i&0xff) {
			t.Fatalf("byte %d = %x, want %x", i, got[i], byte(i&0xff))
		}
	}
}

func TestHexdump(t *testing.T) {
	if got := Hexdump([]byte{0x02}); got != "00000000: 02                                  | ." {
		t.Errorf("Hexdump([02]) = %q", got)
	}
}
