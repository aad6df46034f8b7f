package protoskema

import (
	"bytes"
	"math"
	"reflect"
	"strconv"

	"github.com/reoring/protoskema/wire"
)

// Kind is the resolved value kind of a field.
type Kind int

const (
	KindInvalid Kind = iota
	KindDouble
	KindFloat
	KindInt32
	KindInt64
	KindUint32
	KindUint64
	KindSint32
	KindSint64
	KindFixed32
	KindFixed64
	KindSfixed32
	KindSfixed64
	KindBool
	KindString
	KindBytes
	KindEnum
	KindMessage
)

var scalarKinds = map[string]Kind{
	"double":   KindDouble,
	"float":    KindFloat,
	"int32":    KindInt32,
	"int64":    KindInt64,
	"uint32":   KindUint32,
	"uint64":   KindUint64,
	"sint32":   KindSint32,
	"sint64":   KindSint64,
	"fixed32":  KindFixed32,
	"fixed64":  KindFixed64,
	"sfixed32": KindSfixed32,
	"sfixed64": KindSfixed64,
	"bool":     KindBool,
	"string":   KindString,
	"bytes":    KindBytes,
}

var kindNames = func() map[Kind]string {
	m := map[Kind]string{KindEnum: "enum", KindMessage: "message", KindInvalid: "invalid"}
	for n, k := range scalarKinds {
		m[k] = n
	}
	return m
}()

func (k Kind) String() string { return kindNames[k] }

// ScalarKind returns the kind named by a scalar type name such as "uint32".
func ScalarKind(name string) (Kind, bool) {
	k, ok := scalarKinds[name]
	return k, ok
}

// WireType returns the wire type a single value of kind k is written with.
func (k Kind) WireType() wire.Type {
	switch k {
	case KindDouble, KindFixed64, KindSfixed64:
		return wire.Fixed64Type
	case KindFloat, KindFixed32, KindSfixed32:
		return wire.Fixed32Type
	case KindString, KindBytes, KindMessage:
		return wire.BytesType
	default:
		return wire.VarintType
	}
}

// Packable reports whether repeated values of kind k may share one
// length-delimited run.
func (k Kind) Packable() bool {
	switch k {
	case KindString, KindBytes, KindMessage, KindInvalid:
		return false
	}
	return true
}

func (k Kind) validMapKey() bool {
	switch k {
	case KindDouble, KindFloat, KindBytes, KindEnum, KindMessage, KindInvalid:
		return false
	}
	return true
}

// zero returns the canonical zero value of a scalar kind.
func (k Kind) zero() any {
	switch k {
	case KindDouble:
		return float64(0)
	case KindFloat:
		return float32(0)
	case KindInt32, KindSint32, KindSfixed32, KindEnum:
		return int32(0)
	case KindInt64, KindSint64, KindSfixed64:
		return int64(0)
	case KindUint32, KindFixed32:
		return uint32(0)
	case KindUint64, KindFixed64:
		return uint64(0)
	case KindBool:
		return false
	case KindString:
		return ""
	case KindBytes:
		return []byte{}
	}
	return nil
}

// numberText is satisfied by ir.Number and the json.Number types of both
// encoding/json and goccy/go-json.
type numberText interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// coerceScalar converts v to the canonical Go type of k. e is consulted
// for enum names. The returned string describes a failure.
func coerceScalar(k Kind, v any, e *Enum) (any, string) {
	switch k {
	case KindDouble:
		f, ok := toFloat64(v)
		if !ok {
			return nil, "not a number"
		}
		return f, ""
	case KindFloat:
		f, ok := toFloat64(v)
		if !ok {
			return nil, "not a number"
		}
		return float32(f), ""
	case KindInt32, KindSint32, KindSfixed32:
		i, ok := toInt64(v)
		if !ok {
			return nil, "not an integer"
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return nil, "out of int32 range"
		}
		return int32(i), ""
	case KindInt64, KindSint64, KindSfixed64:
		i, ok := toInt64(v)
		if !ok {
			return nil, "not an integer"
		}
		return i, ""
	case KindUint32, KindFixed32:
		u, ok := toUint64(v)
		if !ok {
			return nil, "not an unsigned integer"
		}
		if u > math.MaxUint32 {
			return nil, "out of uint32 range"
		}
		return uint32(u), ""
	case KindUint64, KindFixed64:
		u, ok := toUint64(v)
		if !ok {
			return nil, "not an unsigned integer"
		}
		return u, ""
	case KindBool:
		switch b := v.(type) {
		case bool:
			return b, ""
		case string:
			if p, err := strconv.ParseBool(b); err == nil {
				return p, ""
			}
		}
		return nil, "not a bool"
	case KindString:
		switch s := v.(type) {
		case string:
			return s, ""
		case []byte:
			return string(s), ""
		}
		return nil, "not a string"
	case KindBytes:
		switch b := v.(type) {
		case []byte:
			return bytes.Clone(b), ""
		case string:
			return []byte(b), ""
		}
		return nil, "not bytes"
	case KindEnum:
		if s, ok := v.(string); ok && e != nil {
			if n, ok := e.ValueOf(s); ok {
				return n, ""
			}
		}
		i, ok := toInt64(v)
		if !ok {
			return nil, "not an enum value"
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return nil, "out of enum range"
		}
		return int32(i), ""
	}
	return nil, "unsupported kind " + k.String()
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return floatToInt(f)
		}
	case numberText:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return floatToInt(f)
		}
	}
	return 0, false
}

func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint:
		return uint64(n), true
	case uint64:
		return n, true
	case string:
		if u, err := strconv.ParseUint(n, 10, 64); err == nil {
			return u, true
		}
	case numberText:
		if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
			return u, true
		}
	}
	i, ok := toInt64(v)
	if !ok || i < 0 {
		return 0, false
	}
	return uint64(i), true
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	case numberText:
		f, err := n.Float64()
		return f, err == nil
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	if u, ok := toUint64(v); ok {
		return float64(u), true
	}
	return 0, false
}

// listOf returns the elements of any slice value except []byte, which is a
// scalar.
func listOf(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// entriesOf visits the entries of any Go map value.
func entriesOf(v any, fn func(k, v any) error) (bool, error) {
	switch m := v.(type) {
	case map[any]any:
		for k, e := range m {
			if err := fn(k, e); err != nil {
				return true, err
			}
		}
		return true, nil
	case map[string]any:
		for k, e := range m {
			if err := fn(k, e); err != nil {
				return true, err
			}
		}
		return true, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return false, nil
	}
	it := rv.MapRange()
	for it.Next() {
		if err := fn(it.Key().Interface(), it.Value().Interface()); err != nil {
			return true, err
		}
	}
	return true, nil
}

func writeScalar(w *wire.Writer, k Kind, v any) {
	switch k {
	case KindDouble:
		w.Double(v.(float64))
	case KindFloat:
		w.Float(v.(float32))
	case KindInt32:
		w.Int32(v.(int32))
	case KindEnum:
		w.Int32(v.(int32))
	case KindSint32:
		w.Sint32(v.(int32))
	case KindSfixed32:
		w.Sfixed32(v.(int32))
	case KindInt64:
		w.Int64(v.(int64))
	case KindSint64:
		w.Sint64(v.(int64))
	case KindSfixed64:
		w.Sfixed64(v.(int64))
	case KindUint32:
		w.Uint32(v.(uint32))
	case KindFixed32:
		w.Fixed32(v.(uint32))
	case KindUint64:
		w.Uint64(v.(uint64))
	case KindFixed64:
		w.Fixed64(v.(uint64))
	case KindBool:
		w.Bool(v.(bool))
	case KindString:
		w.String(v.(string))
	case KindBytes:
		w.Bytes(v.([]byte))
	}
}

func readScalar(r *wire.Reader, k Kind) (any, error) {
	switch k {
	case KindDouble:
		return r.Double()
	case KindFloat:
		return r.Float()
	case KindInt32, KindEnum:
		return r.Int32()
	case KindSint32:
		return r.Sint32()
	case KindSfixed32:
		return r.Sfixed32()
	case KindInt64:
		return r.Int64()
	case KindSint64:
		return r.Sint64()
	case KindSfixed64:
		return r.Sfixed64()
	case KindUint32:
		return r.Uint32()
	case KindFixed32:
		return r.Fixed32()
	case KindUint64:
		return r.Uint64()
	case KindFixed64:
		return r.Fixed64()
	case KindBool:
		return r.Bool()
	case KindString:
		return r.String()
	case KindBytes:
		return r.Bytes()
	}
	return nil, &ValueError{Value: k.String(), Reason: "not a scalar kind"}
}
