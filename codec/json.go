// Package codec converts dynamic messages to and from their JSON form.
//
// The mapping follows the usual conventions for tag/varint messages:
// 64-bit integers are decimal strings, bytes are standard base64, enums
// are value names, non-finite floats are "NaN", "Infinity" and
// "-Infinity", and map keys are strings.
package codec

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/reoring/protoskema"
	"github.com/reoring/protoskema/internal/ir"
)

// Options tune MarshalJSON and UnmarshalJSON. When several are passed the
// last one wins.
type Options struct {
	// EmitDefaults writes every scalar field, materialized or not.
	EmitDefaults bool
	// EnumsAsNumbers writes enum values as numbers instead of names.
	EnumsAsNumbers bool
	// DiscardUnknown ignores object keys that name no field.
	DiscardUnknown bool
}

func last(opts []Options) Options {
	if n := len(opts); n > 0 {
		return opts[n-1]
	}
	return Options{}
}

// MarshalJSON renders m as a JSON object with fields in declaration order.
func MarshalJSON(m *protoskema.Message, opts ...Options) ([]byte, error) {
	obj, err := ToJSONObject(m, opts...)
	if err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}

// ToJSONObject is MarshalJSON without the final serialization.
func ToJSONObject(m *protoskema.Message, opts ...Options) (*protoskema.JSONObject, error) {
	return messageObject(m, last(opts))
}

func messageObject(m *protoskema.Message, opt Options) (*ir.Object, error) {
	out := ir.NewObject()
	for _, f := range m.Type().Fields() {
		if !m.Has(f.Name()) && !(opt.EmitDefaults && !f.Repeated() && !f.IsMap()) {
			continue
		}
		v := m.Get(f.Name())
		if v == nil {
			continue
		}
		jv, err := fieldValue(f, v, opt)
		if err != nil {
			return nil, err
		}
		out.Set(f.Name(), jv)
	}
	return out, nil
}

func fieldValue(f *protoskema.Field, v any, opt Options) (any, error) {
	switch {
	case f.Repeated():
		list, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("codec: %s: expected a list, got %T", f.FullName(), v)
		}
		out := make([]any, len(list))
		for i, e := range list {
			jv, err := singleValue(f, e, opt)
			if err != nil {
				return nil, err
			}
			out[i] = jv
		}
		return out, nil
	case f.IsMap():
		entries, ok := v.(map[any]any)
		if !ok {
			return nil, fmt.Errorf("codec: %s: expected a map, got %T", f.FullName(), v)
		}
		out := make(map[string]any, len(entries))
		for k, e := range entries {
			jv, err := singleValue(f, e, opt)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = jv
		}
		return out, nil
	}
	return singleValue(f, v, opt)
}

func singleValue(f *protoskema.Field, v any, opt Options) (any, error) {
	switch f.Kind() {
	case protoskema.KindMessage:
		m, ok := v.(*protoskema.Message)
		if !ok {
			return nil, fmt.Errorf("codec: %s: expected a message, got %T", f.FullName(), v)
		}
		return messageObject(m, opt)
	case protoskema.KindEnum:
		n, _ := v.(int32)
		if e := f.ResolvedEnum(); e != nil && !opt.EnumsAsNumbers {
			if name, ok := e.NameOf(n); ok {
				return name, nil
			}
		}
		return n, nil
	case protoskema.KindBytes:
		b, _ := v.([]byte)
		return base64.StdEncoding.EncodeToString(b), nil
	case protoskema.KindInt64, protoskema.KindSint64, protoskema.KindSfixed64,
		protoskema.KindUint64, protoskema.KindFixed64:
		return fmt.Sprint(v), nil
	case protoskema.KindDouble:
		return floatValue(v.(float64)), nil
	case protoskema.KindFloat:
		return floatValue(float64(v.(float32))), nil
	}
	return v, nil
}

func floatValue(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return f
}

// UnmarshalJSON builds an instance of t from a JSON object.
func UnmarshalJSON(t *protoskema.Type, data []byte, opts ...Options) (*protoskema.Message, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}
	return fromObject(t, obj, last(opts))
}

func fromObject(t *protoskema.Type, obj map[string]any, opt Options) (*protoskema.Message, error) {
	m, err := t.Create(nil)
	if err != nil {
		return nil, err
	}
	for key, raw := range obj {
		f := t.Field(key)
		if f == nil {
			if opt.DiscardUnknown {
				continue
			}
			return nil, fmt.Errorf("codec: %s has no field %q", t.FullName(), key)
		}
		if raw == nil {
			continue
		}
		v, err := fromFieldValue(f, raw, opt)
		if err != nil {
			return nil, err
		}
		if err := m.Set(key, v); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func fromFieldValue(f *protoskema.Field, raw any, opt Options) (any, error) {
	switch {
	case f.Repeated():
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("codec: %s: expected an array", f.FullName())
		}
		out := make([]any, len(list))
		for i, e := range list {
			v, err := fromSingle(f, e, opt)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case f.IsMap():
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("codec: %s: expected an object", f.FullName())
		}
		out := make(map[any]any, len(obj))
		for k, e := range obj {
			v, err := fromSingle(f, e, opt)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	}
	return fromSingle(f, raw, opt)
}

func fromSingle(f *protoskema.Field, raw any, opt Options) (any, error) {
	switch f.Kind() {
	case protoskema.KindMessage:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("codec: %s: expected an object", f.FullName())
		}
		return fromObject(f.ResolvedType(), obj, opt)
	case protoskema.KindBytes:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("codec: %s: expected a base64 string", f.FullName())
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("codec: %s: %w", f.FullName(), err)
		}
		return b, nil
	case protoskema.KindDouble, protoskema.KindFloat:
		if s, ok := raw.(string); ok {
			switch s {
			case "NaN":
				return math.NaN(), nil
			case "Infinity":
				return math.Inf(1), nil
			case "-Infinity":
				return math.Inf(-1), nil
			}
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("codec: %s: %q is not a number", f.FullName(), s)
			}
		}
	}
	return raw, nil
}
