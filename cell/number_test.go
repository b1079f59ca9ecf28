package cell

import "testing"

func TestNumberInspect(t *testing.T) {
	tests := []struct {
		number   *Number
		expected string
	}{
		{Plain(1234), "1234"},
		{Bits(8, 0x9f), "$9fu8"},
		{Bits(16, 0x1c42), "$1c42u16"},
		{Bits(4, 0b101), "101b4"},
		{Bits(64, 1), "$1u64"},
		{SBits(8, -1), "-1i8"},
		{SBits(3, -6), "-6i3"},
	}

	for _, tt := range tests {
		if got := tt.number.Inspect(); got != tt.expected {
			t.Errorf("Inspect() = %q, want %q", got, tt.expected)
		}
	}
}

func TestNumberCoercion(t *testing.T) {
	four := SBits(4, 4)
	two := Plain(2)

	division := four.Div(two)
	if division.Kind != SignedBitNumber || division.Bits != 4 || division.Ival != 2 {
		t.Errorf("4i4 / 2 = %s, want 2i4", division.Inspect())
	}
}

func TestNumberArithmetic(t *testing.T) {
	tests := []struct {
		got      *Number
		expected string
	}{
		{Plain(4).Add(Plain(10)).Add(Plain(6)), "20"},
		{Plain(6).Sub(Plain(3)).Sub(Plain(2)), "1"},
		{Plain(6).Mul(Plain(3)).Mul(Plain(2)), "36"},
		{Plain(100).Div(Plain(3)).Div(Plain(2)), "16"},
		{Bits(8, 1).Add(Bits(16, 1)), "$2u16"},
	}

	for _, tt := range tests {
		if got := tt.got.Inspect(); got != tt.expected {
			t.Errorf("got %q, want %q", got, tt.expected)
		}
	}
}

func TestNumberCmp(t *testing.T) {
	if Plain(2).Cmp(Plain(1)) != 1 {
		t.Error("2 should compare greater than 1")
	}
	if SBits(8, -1).Cmp(Plain(1)) != -1 {
		t.Error("-1i8 should compare less than 1")
	}
	if Bits(8, 5).Cmp(Plain(5)) != 0 {
		t.Error("$5u8 should compare equal to 5")
	}
}
