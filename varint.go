package ringfile

import (
	"encoding/binary"
	"fmt"
)

// MaxVarintLen is the longest encoding of a record length.
const MaxVarintLen = binary.MaxVarintLen64

// VarintLen returns the number of bytes AppendVarint uses to encode n.
func VarintLen(n uint64) int {
	size := 1
	for n >= 0x80 {
		n >>= 7
		size++
	}
	return size
}

// AppendVarint appends n to dst as 7-bit groups, least significant group
// first, with the high bit set on every byte except the last.
func AppendVarint(dst []byte, n uint64) []byte {
	return binary.AppendUvarint(dst, n)
}

// DecodeVarint decodes a length prefix from the start of src and returns the
// value and the number of bytes consumed.
func DecodeVarint(src []byte) (uint64, int, error) {
	v, n := binary.Uvarint(src)
	switch {
	case n == 0:
		return 0, 0, fmt.Errorf("%w: truncated varint (%d bytes)", ErrInvalidFraming, len(src))
	case n < 0:
		return 0, 0, fmt.Errorf("%w: varint overflows 64 bits after %d bytes", ErrInvalidFraming, -n)
	}
	return v, n, nil
}
