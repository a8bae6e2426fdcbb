// Package format decodes the on-disk building blocks of a SQLite
// database file: varints, serial-type record bodies, and B-tree pages.
// It performs no I/O of its own; every function here operates on a byte
// slice already read from disk by the pager.
package format

import (
	"fmt"

	"github.com/pageframe/litescan/internal/xerrors"
)

// DecodeVarint reads a base-128 big-endian variable-length integer from
// the start of buf. It returns the number of bytes consumed and the
// decoded value. The first eight bytes contribute seven payload bits
// each; a ninth byte, if reached, contributes all eight of its bits.
func DecodeVarint(buf []byte) (consumed int, value uint64, err error) {
	var result uint64
	for i := 0; i < 9; i++ {
		if i >= len(buf) {
			return 0, 0, xerrors.New("decode_varint", xerrors.ErrMalformedVarint, map[string]any{
				"have_bytes": len(buf),
				"byte_index": i,
			})
		}
		b := buf[i]
		if i == 8 {
			result = (result << 8) | uint64(b)
			return i + 1, result, nil
		}
		result = (result << 7) | uint64(b&0x7F)
		if b&0x80 == 0 {
			return i + 1, result, nil
		}
	}
	// Unreachable: the loop above always returns by i==8.
	return 0, 0, fmt.Errorf("unreachable varint state")
}
