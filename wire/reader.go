package wire

import (
	"errors"
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Reader is a cursor over an immutable byte slice.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a Reader positioned at the start of b. The slice is not
// copied and must not be modified while the Reader is in use.
func NewReader(b []byte) *Reader { return &Reader{buf: b} }

// Pos returns the current cursor position.
func (r *Reader) Pos() int { return r.pos }

// Len returns the total length of the underlying buffer.
func (r *Reader) Len() int { return len(r.buf) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) underrun(need int) error {
	return &BufferUnderrunError{Pos: r.pos, Need: need, Len: len(r.buf)}
}

// Uint64 reads a base-128 varint.
func (r *Reader) Uint64() (uint64, error) {
	v, n := protowire.ConsumeVarint(r.buf[r.pos:])
	if n < 0 {
		if errors.Is(protowire.ParseError(n), io.ErrUnexpectedEOF) {
			return 0, r.underrun(0)
		}
		return 0, ErrVarintOverflow
	}
	r.pos += n
	return v, nil
}

// Uint32 reads a varint and truncates it to 32 bits.
func (r *Reader) Uint32() (uint32, error) {
	v, err := r.Uint64()
	return uint32(v), err
}

// Int32 reads a varint holding a two's complement int32 (sign extended to
// 64 bits on the wire when negative).
func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint64()
	return int32(v), err
}

// Int64 reads a varint holding a two's complement int64.
func (r *Reader) Int64() (int64, error) {
	v, err := r.Uint64()
	return int64(v), err
}

// Sint32 reads a zigzag encoded varint.
func (r *Reader) Sint32() (int32, error) {
	v, err := r.Uint64()
	return int32(protowire.DecodeZigZag(v & math.MaxUint32)), err
}

// Sint64 reads a zigzag encoded varint.
func (r *Reader) Sint64() (int64, error) {
	v, err := r.Uint64()
	return protowire.DecodeZigZag(v), err
}

// Bool reads a varint and reports whether it is non-zero.
func (r *Reader) Bool() (bool, error) {
	v, err := r.Uint64()
	return protowire.DecodeBool(v), err
}

// Fixed32 reads four little-endian bytes.
func (r *Reader) Fixed32() (uint32, error) {
	v, n := protowire.ConsumeFixed32(r.buf[r.pos:])
	if n < 0 {
		return 0, r.underrun(4)
	}
	r.pos += n
	return v, nil
}

// Sfixed32 reads four little-endian bytes as a signed value.
func (r *Reader) Sfixed32() (int32, error) {
	v, err := r.Fixed32()
	return int32(v), err
}

// Float reads an IEEE 754 single precision value.
func (r *Reader) Float() (float32, error) {
	v, err := r.Fixed32()
	return math.Float32frombits(v), err
}

// Fixed64 reads eight little-endian bytes.
func (r *Reader) Fixed64() (uint64, error) {
	v, n := protowire.ConsumeFixed64(r.buf[r.pos:])
	if n < 0 {
		return 0, r.underrun(8)
	}
	r.pos += n
	return v, nil
}

// Sfixed64 reads eight little-endian bytes as a signed value.
func (r *Reader) Sfixed64() (int64, error) {
	v, err := r.Fixed64()
	return int64(v), err
}

// Double reads an IEEE 754 double precision value.
func (r *Reader) Double() (float64, error) {
	v, err := r.Fixed64()
	return math.Float64frombits(v), err
}

// Length reads a varint length prefix and checks that many bytes remain.
func (r *Reader) Length() (int, error) {
	start := r.pos
	v, err := r.Uint64()
	if err != nil {
		return 0, err
	}
	if v > uint64(r.Remaining()) {
		r.pos = start
		return 0, &BufferUnderrunError{Pos: start, Need: int(min(v, math.MaxInt32)), Len: len(r.buf)}
	}
	return int(v), nil
}

// Bytes reads a length-delimited byte run. The result is a copy.
func (r *Reader) Bytes() ([]byte, error) {
	n, err := r.Length()
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// String reads a length-delimited UTF-8 string.
func (r *Reader) String() (string, error) {
	n, err := r.Length()
	if err != nil {
		return "", err
	}
	s := string(r.buf[r.pos : r.pos+n])
	r.pos += n
	return s, nil
}

// Tag reads one varint and splits it into field id and wire type.
func (r *Reader) Tag() (uint32, Type, error) {
	v, err := r.Uint64()
	if err != nil {
		return 0, 0, err
	}
	id, wt := SplitTag(v)
	if id > math.MaxUint32 {
		return 0, 0, ErrFieldIDRange
	}
	return uint32(id), wt, nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || n > r.Remaining() {
		return r.underrun(n)
	}
	r.pos += n
	return nil
}

// SkipVarint advances the cursor past exactly one varint.
func (r *Reader) SkipVarint() error {
	_, err := r.Uint64()
	return err
}

// SkipType advances past the payload of a field whose tag carried wt.
func (r *Reader) SkipType(wt Type) error {
	switch wt {
	case VarintType:
		return r.SkipVarint()
	case Fixed64Type:
		return r.Skip(8)
	case BytesType:
		n, err := r.Length()
		if err != nil {
			return err
		}
		return r.Skip(n)
	case Fixed32Type:
		return r.Skip(4)
	default:
		return &UnsupportedWireTypeError{WireType: wt, Pos: r.pos}
	}
}
