package cell

import (
	"github.com/bits-and-blooms/bitset"
)

// BitCodeBytes packs a bit-code sequence into a byte buffer.
//
// Bits are packed little-endian within each byte (bit 0 is the low bit) and
// bytes appear in ascending address order. Moves may leave gaps, which stay
// zero. The buffer length is the highest bit position reached, rounded up to
// a whole byte.
func BitCodeBytes(ops []BitCodeOp) []byte {
	bits := bitset.New(1024)

	var curBitPos, maxBitPos uint64

	writeBits := func(width uint8, value uint64) {
		for i := uint8(0); i < width; i++ {
			bits.SetTo(uint(curBitPos), value&(uint64(1)<<i) != 0)
			curBitPos++
		}
		if curBitPos > maxBitPos {
			maxBitPos = curBitPos
		}
	}

	for _, op := range ops {
		switch op.Kind {
		case BitsCode:
			writeBits(op.Width, op.Value)

		case MoveCode:
			curBitPos = op.Pos
			if curBitPos > maxBitPos {
				maxBitPos = curBitPos
			}

		case AlignCode:
			alignment := uint64(op.Align)
			if alignment == 0 || curBitPos%alignment == 0 {
				continue
			}
			boundary := curBitPos + alignment - curBitPos%alignment
			for curBitPos < boundary {
				chunk := uint64(op.Width)
				if chunk == 0 {
					chunk = 1
				}
				if chunk > boundary-curBitPos {
					chunk = boundary - curBitPos
				}
				writeBits(uint8(chunk), op.Value)
			}
		}
	}

	length := int(maxBitPos / 8)
	if maxBitPos%8 != 0 {
		length++
	}

	result := make([]byte, length)
	for i := 0; i < length*8; i++ {
		if bits.Test(uint(i)) {
			result[i/8] |= 1 << (i % 8)
		}
	}
	return result
}
