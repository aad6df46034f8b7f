package protoskema

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"

	js "github.com/reoring/protoskema/jsonschema"
)

// JSONSchema projects t onto a JSON Schema document describing the JSON
// form produced by package codec. Message valued fields reference $defs
// entries keyed by full name, so recursive types terminate.
func (t *Type) JSONSchema() (*js.Schema, error) {
	if err := t.setup(); err != nil {
		return nil, err
	}
	defs := map[string]*js.Schema{}
	if err := messageSchema(t, defs); err != nil {
		return nil, err
	}
	root := defs[t.FullName()]
	delete(defs, t.FullName())
	out := *root
	out.Schema = js.Draft
	if len(defs) > 0 {
		out.Defs = defs
	}
	// self references point at the document root
	fixSelfRefs(&out, js.DefRef(t.FullName()))
	for _, d := range defs {
		fixSelfRefs(d, js.DefRef(t.FullName()))
	}
	return &out, nil
}

func messageSchema(t *Type, defs map[string]*js.Schema) error {
	name := t.FullName()
	if _, ok := defs[name]; ok {
		return nil
	}
	if err := t.setup(); err != nil {
		return err
	}
	s := &js.Schema{Type: "object", Title: name, Properties: map[string]*js.Schema{}, AdditionalProperties: false}
	defs[name] = s
	for _, f := range t.fields {
		fs, err := fieldSchema(f, defs)
		if err != nil {
			return err
		}
		s.Properties[f.name] = fs
		if f.Required() {
			s.Required = append(s.Required, f.name)
		}
	}
	for _, o := range t.oneofs {
		// at most one member may be present
		alts := make([]*js.Schema, 0, len(o.members)+1)
		none := &js.Schema{Properties: map[string]*js.Schema{}}
		for _, m := range o.members {
			alts = append(alts, &js.Schema{Required: []string{m}})
			none.Properties[m] = &js.Schema{Type: "null"}
		}
		alts = append(alts, none)
		s.AllOf = append(s.AllOf, &js.Schema{OneOf: alts})
	}
	return nil
}

func fieldSchema(f *Field, defs map[string]*js.Schema) (*js.Schema, error) {
	elem, err := valueSchema(f, defs)
	if err != nil {
		return nil, err
	}
	switch f.rule {
	case RuleRepeated:
		return &js.Schema{Type: "array", Items: elem}, nil
	case RuleMap:
		keys := &js.Schema{Type: "string"}
		if f.keyKind != KindString {
			keys.Format = f.keyKind.String()
		}
		return &js.Schema{Type: "object", AdditionalProperties: elem, PropertyNames: keys}, nil
	}
	if f.kind != KindMessage {
		elem.Default = jsonDefault(f.kind, f.defaultValue, f.resolvedEnum)
	}
	return elem, nil
}

func valueSchema(f *Field, defs map[string]*js.Schema) (*js.Schema, error) {
	switch f.kind {
	case KindMessage:
		if err := messageSchema(f.resolvedType, defs); err != nil {
			return nil, err
		}
		return &js.Schema{Ref: js.DefRef(f.resolvedType.FullName())}, nil
	case KindEnum:
		s := &js.Schema{Type: "string"}
		for _, n := range f.resolvedEnum.names {
			s.Enum = append(s.Enum, n)
		}
		return s, nil
	case KindBool:
		return &js.Schema{Type: "boolean"}, nil
	case KindString:
		return &js.Schema{Type: "string"}, nil
	case KindBytes:
		return &js.Schema{Type: "string", Format: "byte"}, nil
	case KindDouble, KindFloat:
		return &js.Schema{Type: "number", Format: f.kind.String()}, nil
	case KindInt32, KindSint32, KindSfixed32:
		return &js.Schema{Type: "integer", Format: "int32", Minimum: js.Float(math.MinInt32), Maximum: js.Float(math.MaxInt32)}, nil
	case KindUint32, KindFixed32:
		return &js.Schema{Type: "integer", Format: "uint32", Minimum: js.Float(0), Maximum: js.Float(math.MaxUint32)}, nil
	case KindUint64, KindFixed64:
		return &js.Schema{Type: "string", Format: "uint64"}, nil
	default:
		// 64-bit integers do not fit a JSON number exactly
		return &js.Schema{Type: "string", Format: "int64"}, nil
	}
}

// jsonDefault renders a default the way package codec renders values.
func jsonDefault(k Kind, v any, e *Enum) any {
	switch k {
	case KindEnum:
		if n, ok := v.(int32); ok && e != nil {
			if name, ok := e.NameOf(n); ok {
				return name
			}
		}
		return v
	case KindBytes:
		b, _ := v.([]byte)
		if len(b) == 0 {
			return nil
		}
		return base64.StdEncoding.EncodeToString(b)
	case KindInt64, KindSint64, KindSfixed64, KindUint64, KindFixed64:
		if numbersEqual(v, 0) {
			return nil
		}
		return formatNumber(v)
	}
	if v == "" || v == false || (isNumber(v) && numbersEqual(v, 0)) {
		return nil
	}
	return v
}

func fixSelfRefs(s *js.Schema, self string) {
	if s == nil {
		return
	}
	if s.Ref == self {
		s.Ref = "#"
	}
	for _, p := range s.Properties {
		fixSelfRefs(p, self)
	}
	fixSelfRefs(s.Items, self)
	if ap, ok := s.AdditionalProperties.(*js.Schema); ok {
		fixSelfRefs(ap, self)
	}
}

func formatNumber(v any) string {
	switch n := v.(type) {
	case int64:
		return strconv.FormatInt(n, 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	}
	return fmt.Sprint(v)
}
