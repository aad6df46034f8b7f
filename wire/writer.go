package wire

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Writer is an append-only, growable byte builder.
//
// Fork starts a nested buffer; Ldelim closes it and splices it into the
// parent prefixed with its varint length. Reset discards the nested buffer
// (or the whole output when no fork is open).
type Writer struct {
	buf   []byte
	forks [][]byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Len returns the number of bytes in the current (innermost) buffer.
func (w *Writer) Len() int { return len(w.buf) }

// Uint64 writes v as a varint.
func (w *Writer) Uint64(v uint64) *Writer {
	w.buf = protowire.AppendVarint(w.buf, v)
	return w
}

// Uint32 writes v as a varint.
func (w *Writer) Uint32(v uint32) *Writer { return w.Uint64(uint64(v)) }

// Int32 writes v as a varint. Negative values are sign extended to ten
// bytes.
func (w *Writer) Int32(v int32) *Writer { return w.Uint64(uint64(int64(v))) }

// Int64 writes v as a varint.
func (w *Writer) Int64(v int64) *Writer { return w.Uint64(uint64(v)) }

// Sint32 writes v zigzag encoded.
func (w *Writer) Sint32(v int32) *Writer { return w.Uint64(protowire.EncodeZigZag(int64(v))) }

// Sint64 writes v zigzag encoded.
func (w *Writer) Sint64(v int64) *Writer { return w.Uint64(protowire.EncodeZigZag(v)) }

// Bool writes v as a one byte varint.
func (w *Writer) Bool(v bool) *Writer { return w.Uint64(protowire.EncodeBool(v)) }

// Fixed32 writes v as four little-endian bytes.
func (w *Writer) Fixed32(v uint32) *Writer {
	w.buf = protowire.AppendFixed32(w.buf, v)
	return w
}

// Sfixed32 writes v as four little-endian bytes.
func (w *Writer) Sfixed32(v int32) *Writer { return w.Fixed32(uint32(v)) }

// Float writes v as IEEE 754 single precision.
func (w *Writer) Float(v float32) *Writer { return w.Fixed32(math.Float32bits(v)) }

// Fixed64 writes v as eight little-endian bytes.
func (w *Writer) Fixed64(v uint64) *Writer {
	w.buf = protowire.AppendFixed64(w.buf, v)
	return w
}

// Sfixed64 writes v as eight little-endian bytes.
func (w *Writer) Sfixed64(v int64) *Writer { return w.Fixed64(uint64(v)) }

// Double writes v as IEEE 754 double precision.
func (w *Writer) Double(v float64) *Writer { return w.Fixed64(math.Float64bits(v)) }

// Bytes writes b prefixed with its varint length.
func (w *Writer) Bytes(b []byte) *Writer {
	w.buf = protowire.AppendBytes(w.buf, b)
	return w
}

// String writes s prefixed with its varint length.
func (w *Writer) String(s string) *Writer {
	w.buf = protowire.AppendString(w.buf, s)
	return w
}

// Raw appends b verbatim.
func (w *Writer) Raw(b []byte) *Writer {
	w.buf = append(w.buf, b...)
	return w
}

// Tag writes the tag for field id with wire type wt.
func (w *Writer) Tag(id uint32, wt Type) *Writer { return w.Uint64(MakeTag(id, wt)) }

// Fork pushes the current buffer and starts a nested one.
func (w *Writer) Fork() *Writer {
	w.forks = append(w.forks, w.buf)
	w.buf = nil
	return w
}

// Reset drops everything written since the last Fork. Without an open fork
// it clears the writer.
func (w *Writer) Reset() *Writer {
	n := len(w.forks)
	if n == 0 {
		w.buf = w.buf[:0]
		return w
	}
	w.buf = w.forks[n-1]
	w.forks = w.forks[:n-1]
	return w
}

// Ldelim closes the innermost fork and appends its content to the parent
// buffer prefixed with its varint length. It panics when no fork is open.
func (w *Writer) Ldelim() *Writer {
	n := len(w.forks)
	if n == 0 {
		panic("wire: Ldelim without Fork")
	}
	body := w.buf
	w.buf = w.forks[n-1]
	w.forks = w.forks[:n-1]
	w.buf = protowire.AppendBytes(w.buf, body)
	return w
}

// Depth returns the number of open forks.
func (w *Writer) Depth() int { return len(w.forks) }

// Finish returns the written bytes. Open forks are closed as if Ldelim had
// been called for each.
func (w *Writer) Finish() []byte {
	for len(w.forks) > 0 {
		w.Ldelim()
	}
	out := w.buf
	w.buf = nil
	return out
}
