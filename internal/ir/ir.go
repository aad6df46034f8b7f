// Package ir defines the ordered JSON-like tree the schema loaders produce
// and the reflection layer consumes. Unlike map[string]any it keeps object
// keys in document order, which is the declaration order of fields.
//
// This package is internal and not part of the public API.
package ir

import (
	"bytes"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

// Number holds the literal text of a JSON number so no precision is lost
// before the consumer knows the target kind.
type Number string

// Int64 parses n as a base 10 integer, accepting integral floats such as
// "1e3" or "7.0".
func (n Number) Int64() (int64, error) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, strconv.ErrSyntax
	}
	return int64(f), nil
}

// Uint64 parses n as an unsigned base 10 integer.
func (n Number) Uint64() (uint64, error) {
	if u, err := strconv.ParseUint(string(n), 10, 64); err == nil {
		return u, nil
	}
	i, err := n.Int64()
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, strconv.ErrRange
	}
	return uint64(i), nil
}

// Float64 parses n as a float.
func (n Number) Float64() (float64, error) { return strconv.ParseFloat(string(n), 64) }

func (n Number) String() string { return string(n) }

// MarshalJSON emits the literal unchanged.
func (n Number) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("0"), nil
	}
	return []byte(n), nil
}

// Object is an insertion ordered string-keyed map. Values are nil, bool,
// string, Number (or any Go numeric kind when built programmatically),
// []any and *Object.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty Object.
func NewObject() *Object { return &Object{values: map[string]any{}} }

// Set stores v under k. An existing key keeps its original position.
func (o *Object) Set(k string, v any) *Object {
	if o.values == nil {
		o.values = map[string]any{}
	}
	if _, ok := o.values[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.values[k] = v
	return o
}

// Delete removes k.
func (o *Object) Delete(k string) {
	if _, ok := o.values[k]; !ok {
		return
	}
	delete(o.values, k)
	for i, kk := range o.keys {
		if kk == k {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Get returns the value stored under k.
func (o *Object) Get(k string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[k]
	return v, ok
}

// Has reports whether k is present.
func (o *Object) Has(k string) bool {
	_, ok := o.Get(k)
	return ok
}

// Keys returns the keys in insertion order. The slice must not be modified.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Object returns the nested object stored under k.
func (o *Object) Object(k string) (*Object, bool) {
	v, _ := o.Get(k)
	obj, ok := v.(*Object)
	return obj, ok
}

// String returns the string stored under k.
func (o *Object) String(k string) (string, bool) {
	v, _ := o.Get(k)
	s, ok := v.(string)
	return s, ok
}

// Array returns the array stored under k.
func (o *Object) Array(k string) ([]any, bool) {
	v, _ := o.Get(k)
	a, ok := v.([]any)
	return a, ok
}

// SortKeys reorders the keys with less. The sort is stable.
func (o *Object) SortKeys(less func(a, b string) bool) {
	sort.SliceStable(o.keys, func(i, j int) bool { return less(o.keys[i], o.keys[j]) })
}

// ToMap converts o into plain maps and slices, dropping key order.
func (o *Object) ToMap() map[string]any {
	out := make(map[string]any, o.Len())
	for _, k := range o.Keys() {
		out[k] = toPlain(o.values[k])
	}
	return out
}

func toPlain(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.ToMap()
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = toPlain(t[i])
		}
		return arr
	default:
		return v
	}
}

// MarshalJSON writes o with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range o.Keys() {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		b.Write(kb)
		b.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		b.Write(vb)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// FromMap converts a plain decoded value into the ordered form. Map keys
// have no inherent order, so they are sorted lexically.
func FromMap(m map[string]any) *Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	o := NewObject()
	for _, k := range keys {
		o.Set(k, FromValue(m[k]))
	}
	return o
}

// FromValue converts nested maps and slices of a plain decoded value.
func FromValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case *Object:
		return t
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = FromValue(t[i])
		}
		return arr
	case json.Number:
		return Number(t)
	default:
		return v
	}
}
