package wire

import (
	"strconv"

	"google.golang.org/protobuf/encoding/protowire"
)

// Type is the 3-bit wire type code carried in the low bits of a field tag.
type Type uint8

const (
	VarintType  Type = 0 // int32, int64, uint32, uint64, sint32, sint64, bool, enum
	Fixed64Type Type = 1 // fixed64, sfixed64, double
	BytesType   Type = 2 // string, bytes, embedded messages, packed repeated scalars
	Fixed32Type Type = 5 // fixed32, sfixed32, float
)

// MaxFieldID is the largest field id representable in a tag.
const MaxFieldID = uint32(protowire.MaxValidNumber)

func (t Type) String() string {
	switch t {
	case VarintType:
		return "varint"
	case Fixed64Type:
		return "fixed64"
	case BytesType:
		return "bytes"
	case Fixed32Type:
		return "fixed32"
	default:
		return "unknown(" + strconv.Itoa(int(t)) + ")"
	}
}

// Known reports whether t is one of the four supported wire types.
func (t Type) Known() bool {
	switch t {
	case VarintType, Fixed64Type, BytesType, Fixed32Type:
		return true
	}
	return false
}

// MakeTag packs a field id and wire type into the tag value written on the
// wire.
func MakeTag(id uint32, wt Type) uint64 {
	return uint64(id)<<3 | uint64(wt&7)
}

// SplitTag is the inverse of MakeTag.
func SplitTag(tag uint64) (uint64, Type) {
	return tag >> 3, Type(tag & 7)
}

// SizeVarint returns the encoded length of v.
func SizeVarint(v uint64) int { return protowire.SizeVarint(v) }
