package protoskema

import (
	"fmt"

	"github.com/reoring/protoskema/internal/ir"
)

// JSONObject is the ordered JSON object the schema is described with. Key
// order is significant: it is the declaration order of fields, one-ofs and
// nested declarations.
type JSONObject = ir.Object

// NewJSONObject returns an empty JSONObject.
func NewJSONObject() *JSONObject { return ir.NewObject() }

// TypeFromJSON builds a message type from its JSON description. The object
// must have a "fields" member.
//
// Nested entries are classified in order: enum ("values"), message
// ("fields"), service ("methods"), extension field ("id" and "extend"),
// namespace ("nested"). The first match wins; anything else fails with a
// SchemaError coded unclassifiable.
func TypeFromJSON(name string, obj *JSONObject) (*Type, error) {
	fields, ok := obj.Object("fields")
	if !ok {
		return nil, schemaErr(CodeInvalidSchema, name, ErrInvalidSchema, "message type needs a fields object")
	}
	opts, err := optionsFromJSON(name, obj)
	if err != nil {
		return nil, err
	}
	t := NewType(name, opts)
	for _, fname := range fields.Keys() {
		fo, ok := fields.Object(fname)
		if !ok {
			return nil, schemaErr(CodeInvalidSchema, joinName(name, fname), ErrInvalidSchema, "field must be an object")
		}
		f, err := FieldFromJSON(fname, fo)
		if err != nil {
			return nil, err
		}
		if err := t.Add(f); err != nil {
			return nil, err
		}
	}
	if oneofs, ok := obj.Object("oneofs"); ok {
		for _, oname := range oneofs.Keys() {
			oo, ok := oneofs.Object(oname)
			if !ok {
				return nil, schemaErr(CodeInvalidSchema, joinName(name, oname), ErrInvalidSchema, "one-of must be an object")
			}
			o, err := OneOfFromJSON(oname, oo)
			if err != nil {
				return nil, err
			}
			if err := t.Add(o); err != nil {
				return nil, err
			}
		}
	}
	if v, ok := obj.Get("extensions"); ok {
		ranges, err := rangesFromJSON(name, "extensions", v)
		if err != nil {
			return nil, err
		}
		t.extensions = ranges
	}
	if v, ok := obj.Get("reserved"); ok {
		res, err := reservedFromJSON(name, v)
		if err != nil {
			return nil, err
		}
		t.reserved = res
	}
	if nested, ok := obj.Object("nested"); ok {
		if err := addNestedJSON(&t.Namespace, nested); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// FieldFromJSON builds a field from {id, type, rule?, keyType?, extend?,
// options?}.
func FieldFromJSON(name string, obj *JSONObject) (*Field, error) {
	rawID, ok := obj.Get("id")
	if !ok {
		return nil, schemaErr(CodeInvalidSchema, name, ErrInvalidSchema, "field needs an id")
	}
	id, ok := toUint64(rawID)
	if !ok || id == 0 || id > uint64(MaxFieldID) {
		return nil, schemaErr(CodeInvalidSchema, name, ErrInvalidSchema, "invalid field id %v", rawID)
	}
	typ, ok := obj.String("type")
	if !ok || typ == "" {
		return nil, schemaErr(CodeInvalidSchema, name, ErrInvalidSchema, "field needs a type")
	}
	spec := FieldSpec{ID: uint32(id), Type: typ}
	if rule, ok := obj.String("rule"); ok {
		switch Rule(rule) {
		case RuleOptional, RuleRequired, RuleRepeated:
			spec.Rule = Rule(rule)
		default:
			return nil, schemaErr(CodeInvalidSchema, name, ErrInvalidSchema, "unknown rule %q", rule)
		}
	}
	spec.KeyType, _ = obj.String("keyType")
	spec.Extend, _ = obj.String("extend")
	if spec.Options, ok = optionsOrNil(obj); !ok {
		return nil, schemaErr(CodeInvalidSchema, name, ErrInvalidSchema, "options must be an object")
	}
	return NewField(name, spec), nil
}

// OneOfFromJSON builds a one-of from {oneof: [fieldName, ...]}.
func OneOfFromJSON(name string, obj *JSONObject) (*OneOf, error) {
	raw, ok := obj.Array("oneof")
	if !ok {
		return nil, schemaErr(CodeInvalidSchema, name, ErrInvalidSchema, "one-of needs a oneof array")
	}
	members := make([]string, 0, len(raw))
	for _, m := range raw {
		s, ok := m.(string)
		if !ok {
			return nil, schemaErr(CodeInvalidSchema, name, ErrInvalidSchema, "one-of member %v is not a name", m)
		}
		members = append(members, s)
	}
	opts, err := optionsFromJSON(name, obj)
	if err != nil {
		return nil, err
	}
	return NewOneOf(name, members, opts), nil
}

// EnumFromJSON builds an enum from {values: {NAME: number}}.
func EnumFromJSON(name string, obj *JSONObject) (*Enum, error) {
	values, ok := obj.Object("values")
	if !ok {
		return nil, schemaErr(CodeInvalidSchema, name, ErrInvalidSchema, "enum needs a values object")
	}
	opts, err := optionsFromJSON(name, obj)
	if err != nil {
		return nil, err
	}
	e := NewEnum(name, opts)
	for _, k := range values.Keys() {
		raw, _ := values.Get(k)
		n, reason := coerceScalar(KindInt32, raw, nil)
		if reason != "" {
			return nil, schemaErr(CodeInvalidSchema, joinName(name, k), ErrInvalidSchema, "enum value %v: %s", raw, reason)
		}
		if err := e.AddValue(k, n.(int32)); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// ServiceFromJSON builds a service from {methods: {...}}.
func ServiceFromJSON(name string, obj *JSONObject) (*Service, error) {
	methods, ok := obj.Object("methods")
	if !ok {
		return nil, schemaErr(CodeInvalidSchema, name, ErrInvalidSchema, "service needs a methods object")
	}
	opts, err := optionsFromJSON(name, obj)
	if err != nil {
		return nil, err
	}
	s := NewService(name, opts)
	s.methods = methods
	return s, nil
}

// NamespaceFromJSON builds a plain namespace from {nested: {...}}.
func NamespaceFromJSON(name string, obj *JSONObject) (*Namespace, error) {
	opts, err := optionsFromJSON(name, obj)
	if err != nil {
		return nil, err
	}
	ns := NewNamespace(name, opts)
	if nested, ok := obj.Object("nested"); ok {
		if err := addNestedJSON(ns, nested); err != nil {
			return nil, err
		}
	}
	return ns, nil
}

// FromJSON classifies obj and builds the matching declaration.
func FromJSON(name string, obj *JSONObject) (Object, error) {
	switch {
	case obj.Has("values"):
		return EnumFromJSON(name, obj)
	case obj.Has("fields"):
		return TypeFromJSON(name, obj)
	case obj.Has("methods"):
		return ServiceFromJSON(name, obj)
	case obj.Has("id") && obj.Has("extend"):
		return FieldFromJSON(name, obj)
	case obj.Has("nested"):
		return NamespaceFromJSON(name, obj)
	}
	return nil, schemaErr(CodeUnclassifiable, name, ErrUnclassifiable, "cannot classify nested entry %q", name)
}

func addNestedJSON(ns *Namespace, nested *JSONObject) error {
	for _, key := range nested.Keys() {
		obj, ok := nested.Object(key)
		if !ok {
			return schemaErr(CodeUnclassifiable, joinName(ns.FullName(), key), ErrUnclassifiable,
				"cannot classify nested entry %q", key)
		}
		o, err := FromJSON(key, obj)
		if err != nil {
			return err
		}
		if err := ns.Add(o); err != nil {
			return err
		}
	}
	return nil
}

// AddJSON adds the declarations of {options?, nested?} to r.
func (r *Root) AddJSON(obj *JSONObject) error {
	opts, err := optionsFromJSON("", obj)
	if err != nil {
		return err
	}
	for k, v := range opts {
		r.SetOption(k, v)
	}
	if nested, ok := obj.Object("nested"); ok {
		return addNestedJSON(&r.Namespace, nested)
	}
	return nil
}

// RootFromJSON builds a root from {options?, nested?}.
func RootFromJSON(obj *JSONObject, opts ...RootOpt) (*Root, error) {
	r := NewRoot(opts...)
	if err := r.AddJSON(obj); err != nil {
		return nil, err
	}
	return r, nil
}

func optionsOrNil(obj *JSONObject) (map[string]any, bool) {
	v, ok := obj.Get("options")
	if !ok || v == nil {
		return nil, true
	}
	o, ok := v.(*ir.Object)
	if !ok {
		return nil, false
	}
	return o.ToMap(), true
}

func optionsFromJSON(path string, obj *JSONObject) (map[string]any, error) {
	opts, ok := optionsOrNil(obj)
	if !ok {
		return nil, schemaErr(CodeInvalidSchema, path, ErrInvalidSchema, "options must be an object")
	}
	return opts, nil
}

func rangeFromJSON(v any) (Range, bool) {
	pair, ok := v.([]any)
	if !ok || len(pair) != 2 {
		return Range{}, false
	}
	s, ok1 := toUint64(pair[0])
	e, ok2 := toUint64(pair[1])
	if !ok1 || !ok2 || s > uint64(MaxFieldID) || e > uint64(MaxFieldID) {
		return Range{}, false
	}
	return Range{Start: uint32(s), End: uint32(e)}, true
}

func rangesFromJSON(path, key string, v any) ([]Range, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, schemaErr(CodeInvalidSchema, path, ErrInvalidSchema, "%s must be an array", key)
	}
	out := make([]Range, 0, len(list))
	for _, e := range list {
		r, ok := rangeFromJSON(e)
		if !ok {
			return nil, schemaErr(CodeInvalidSchema, path, ErrInvalidSchema, "bad %s range %v", key, e)
		}
		out = append(out, r)
	}
	return out, nil
}

func reservedFromJSON(path string, v any) ([]Reserved, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, schemaErr(CodeInvalidSchema, path, ErrInvalidSchema, "reserved must be an array")
	}
	out := make([]Reserved, 0, len(list))
	for _, e := range list {
		if s, ok := e.(string); ok {
			out = append(out, Reserved{Name: s})
			continue
		}
		if r, ok := rangeFromJSON(e); ok {
			out = append(out, Reserved{Range: r})
			continue
		}
		if id, ok := toUint64(e); ok && id <= uint64(MaxFieldID) {
			out = append(out, Reserved{Range: Range{Start: uint32(id), End: uint32(id)}})
			continue
		}
		return nil, schemaErr(CodeInvalidSchema, path, ErrInvalidSchema, "bad reserved entry %v", e)
	}
	return out, nil
}

// ToJSON returns the JSON description of t, the inverse of TypeFromJSON.
// Merged extension sister fields are left out; they belong to their
// declaring scope.
func (t *Type) ToJSON() *JSONObject {
	o := ir.NewObject()
	if len(t.options) > 0 {
		o.Set("options", ir.FromMap(t.options))
	}
	fields := ir.NewObject()
	for _, f := range t.fields {
		if f.declaringField != nil {
			continue
		}
		fields.Set(f.name, f.ToJSON())
	}
	o.Set("fields", fields)
	if len(t.oneofs) > 0 {
		oneofs := ir.NewObject()
		for _, of := range t.oneofs {
			members := make([]any, len(of.members))
			for i, m := range of.members {
				members[i] = m
			}
			oneofs.Set(of.name, ir.NewObject().Set("oneof", members))
		}
		o.Set("oneofs", oneofs)
	}
	if len(t.extensions) > 0 {
		ext := make([]any, len(t.extensions))
		for i, r := range t.extensions {
			ext[i] = []any{r.Start, r.End}
		}
		o.Set("extensions", ext)
	}
	if len(t.reserved) > 0 {
		res := make([]any, len(t.reserved))
		for i, r := range t.reserved {
			if r.IsName() {
				res[i] = r.Name
			} else {
				res[i] = []any{r.Start, r.End}
			}
		}
		o.Set("reserved", res)
	}
	if len(t.nested) > 0 {
		o.Set("nested", nestedToJSON(t.nested))
	}
	return o
}

// ToJSON returns the JSON description of f.
func (f *Field) ToJSON() *JSONObject {
	o := ir.NewObject()
	switch f.rule {
	case RuleRequired, RuleRepeated:
		o.Set("rule", string(f.rule))
	case RuleMap:
		o.Set("keyType", f.keyType)
	}
	o.Set("type", f.typeName)
	o.Set("id", f.id)
	if f.extend != "" {
		o.Set("extend", f.extend)
	}
	if len(f.options) > 0 {
		o.Set("options", ir.FromMap(f.options))
	}
	return o
}

// ToJSON returns {values: {...}}.
func (e *Enum) ToJSON() *JSONObject {
	values := ir.NewObject()
	for _, n := range e.names {
		values.Set(n, e.values[n])
	}
	o := ir.NewObject()
	if len(e.options) > 0 {
		o.Set("options", ir.FromMap(e.options))
	}
	return o.Set("values", values)
}

// ToJSON returns {methods: {...}}.
func (s *Service) ToJSON() *JSONObject {
	o := ir.NewObject()
	if len(s.options) > 0 {
		o.Set("options", ir.FromMap(s.options))
	}
	return o.Set("methods", s.methods)
}

// ToJSON returns {options?, nested?}.
func (ns *Namespace) ToJSON() *JSONObject {
	o := ir.NewObject()
	if len(ns.options) > 0 {
		o.Set("options", ir.FromMap(ns.options))
	}
	if len(ns.nested) > 0 {
		o.Set("nested", nestedToJSON(ns.nested))
	}
	return o
}

func nestedToJSON(nested []Object) *JSONObject {
	o := ir.NewObject()
	for _, c := range nested {
		switch v := c.(type) {
		case *Type:
			o.Set(v.name, v.ToJSON())
		case *Field:
			o.Set(v.name, v.ToJSON())
		case *Enum:
			o.Set(v.name, v.ToJSON())
		case *Service:
			o.Set(v.name, v.ToJSON())
		case *Namespace:
			o.Set(v.name, v.ToJSON())
		default:
			panic(fmt.Sprintf("protoskema: unexpected nested %T", c))
		}
	}
	return o
}

// MarshalJSON implements json.Marshaler.
func (t *Type) MarshalJSON() ([]byte, error) { return t.ToJSON().MarshalJSON() }

// MarshalJSON implements json.Marshaler.
func (r *Root) MarshalJSON() ([]byte, error) { return r.ToJSON().MarshalJSON() }
