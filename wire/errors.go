package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrVarintOverflow is returned when a varint does not terminate within
	// ten bytes.
	ErrVarintOverflow = errors.New("wire: varint overflows 64 bits")
	// ErrFieldIDRange is returned when a decoded tag carries a field id that
	// does not fit the field id space.
	ErrFieldIDRange = errors.New("wire: field id out of range")
)

// BufferUnderrunError reports a read past the end of the buffer.
type BufferUnderrunError struct {
	Pos  int // cursor position when the read started
	Need int // bytes the read required (0 when unknown, e.g. a truncated varint)
	Len  int // total buffer length
}

func (e *BufferUnderrunError) Error() string {
	if e.Need > 0 {
		return fmt.Sprintf("wire: buffer underrun at %d: need %d bytes, have %d", e.Pos, e.Need, e.Len-e.Pos)
	}
	return fmt.Sprintf("wire: buffer underrun at %d: truncated varint (len %d)", e.Pos, e.Len)
}

// UnsupportedWireTypeError reports a tag whose wire type is none of the
// four supported codes.
type UnsupportedWireTypeError struct {
	WireType Type
	Pos      int
}

func (e *UnsupportedWireTypeError) Error() string {
	return fmt.Sprintf("wire: unsupported wire type %d at %d", uint8(e.WireType), e.Pos)
}
