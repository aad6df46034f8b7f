package protoskema

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// valuesEqual compares a field value with a default.
//
// Under EqualLoose numbers, numeric strings and booleans compare by numeric
// value, with the empty string reading as zero. Under EqualStrict values
// must share a class: number with number, string with string, bool with
// bool. In both modes bytes compare by content and collections and
// messages are only equal when both are nil.
func valuesEqual(a, b any, mode EqualityMode) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ab, ok := a.([]byte); ok {
		bb, ok := b.([]byte)
		return ok && bytes.Equal(ab, bb)
	}
	if mode == EqualStrict {
		return strictEqual(a, b)
	}
	return looseEqual(a, b)
}

func strictEqual(a, b any) bool {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	if isNumber(a) && isNumber(b) {
		return numbersEqual(a, b)
	}
	return false
}

func looseEqual(a, b any) bool {
	if x, ok := a.(bool); ok {
		return looseEqual(boolNumber(x), b)
	}
	if y, ok := b.(bool); ok {
		return looseEqual(a, boolNumber(y))
	}
	xs, aStr := a.(string)
	ys, bStr := b.(string)
	switch {
	case aStr && bStr:
		return xs == ys
	case aStr && isNumber(b):
		f, ok := stringNumber(xs)
		return ok && numbersEqual(f, b)
	case bStr && isNumber(a):
		f, ok := stringNumber(ys)
		return ok && numbersEqual(a, f)
	case isNumber(a) && isNumber(b):
		return numbersEqual(a, b)
	}
	return false
}

func boolNumber(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// stringNumber reads s the way a numeric coercion of a string does: blank
// reads as zero, anything unparsable is not a number.
func stringNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

func numbersEqual(a, b any) bool {
	if x, ok := toInt64(a); ok {
		if y, ok := toInt64(b); ok {
			return x == y
		}
	}
	if x, ok := toUint64(a); ok {
		if y, ok := toUint64(b); ok {
			return x == y
		}
	}
	x, okx := toFloat64(a)
	y, oky := toFloat64(b)
	return okx && oky && x == y
}
