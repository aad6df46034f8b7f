package dsl

import (
	"fmt"

	"github.com/reoring/protoskema"
)

// Scalar type names accepted by Field and Map.
const (
	Double   = "double"
	Float    = "float"
	Int32    = "int32"
	Int64    = "int64"
	Uint32   = "uint32"
	Uint64   = "uint64"
	Sint32   = "sint32"
	Sint64   = "sint64"
	Fixed32  = "fixed32"
	Fixed64  = "fixed64"
	Sfixed32 = "sfixed32"
	Sfixed64 = "sfixed64"
	Bool     = "bool"
	String   = "string"
	Bytes    = "bytes"
)

type messageBuilder struct {
	name       string
	options    map[string]any
	fields     []*protoskema.FieldSpec
	names      []string
	oneofs     []oneofDecl
	extensions []protoskema.Range
	reserved   []protoskema.Reserved
	nested     []protoskema.Object
	errs       []error
}

type oneofDecl struct {
	name    string
	members []string
}

type fieldStep struct {
	b    *messageBuilder
	spec *protoskema.FieldSpec
}

// Message starts a message type declaration. Fields keep the order they are
// declared in, which is also their wire order.
func Message(name string) *messageBuilder {
	return &messageBuilder{name: name}
}

// Field declares an optional field. typ is a scalar name or a reference to
// another type or enum, resolved when the type is first used.
func (b *messageBuilder) Field(name string, id uint32, typ string) *fieldStep {
	spec := &protoskema.FieldSpec{ID: id, Rule: protoskema.RuleOptional, Type: typ}
	b.fields = append(b.fields, spec)
	b.names = append(b.names, name)
	return &fieldStep{b: b, spec: spec}
}

// Map declares a map field.
func (b *messageBuilder) Map(name string, id uint32, keyType, valueType string) *fieldStep {
	st := b.Field(name, id, valueType)
	st.spec.Rule = protoskema.RuleMap
	st.spec.KeyType = keyType
	return st
}

// Required marks the field as required and returns the builder.
func (f *fieldStep) Required() *messageBuilder {
	f.spec.Rule = protoskema.RuleRequired
	return f.b
}

// Optional marks the field as optional (default) and returns the builder.
func (f *fieldStep) Optional() *messageBuilder {
	f.spec.Rule = protoskema.RuleOptional
	return f.b
}

// Repeated marks the field as repeated and returns the builder.
func (f *fieldStep) Repeated() *messageBuilder {
	f.spec.Rule = protoskema.RuleRepeated
	return f.b
}

// Packed marks a repeated scalar field for packed encoding.
func (f *fieldStep) Packed() *messageBuilder {
	f.spec.Rule = protoskema.RuleRepeated
	return f.Option("packed", true)
}

// Default sets the default value of the current field.
func (f *fieldStep) Default(v any) *messageBuilder { return f.Option("default", v) }

// Option sets a field option.
func (f *fieldStep) Option(key string, v any) *messageBuilder {
	if f.spec.Options == nil {
		f.spec.Options = map[string]any{}
	}
	f.spec.Options[key] = v
	return f.b
}

func (f *fieldStep) Field(name string, id uint32, typ string) *fieldStep { return f.b.Field(name, id, typ) }
func (f *fieldStep) Map(name string, id uint32, k, v string) *fieldStep  { return f.b.Map(name, id, k, v) }
func (f *fieldStep) Build() (*protoskema.Type, error)                    { return f.b.Build() }
func (f *fieldStep) MustBuild() *protoskema.Type                         { return f.b.MustBuild() }

// OneOf ends the current field and groups fields into a one-of.
func (f *fieldStep) OneOf(name string, members ...string) *messageBuilder {
	return f.b.OneOf(name, members...)
}

// Extensions ends the current field and declares an extension range.
func (f *fieldStep) Extensions(start, end uint32) *messageBuilder {
	return f.b.Extensions(start, end)
}

// Reserved ends the current field and reserves an id range.
func (f *fieldStep) Reserved(start, end uint32) *messageBuilder {
	return f.b.Reserved(start, end)
}

// ReservedNames ends the current field and reserves field names.
func (f *fieldStep) ReservedNames(names ...string) *messageBuilder {
	return f.b.ReservedNames(names...)
}

// Nested ends the current field and adds a nested declaration.
func (f *fieldStep) Nested(o protoskema.Object, err error) *messageBuilder {
	return f.b.Nested(o, err)
}

// MessageOption ends the current field and sets a message option. Option
// on a field step sets a field option.
func (f *fieldStep) MessageOption(key string, v any) *messageBuilder {
	return f.b.Option(key, v)
}

// OneOf groups already declared fields so that at most one is set.
func (b *messageBuilder) OneOf(name string, members ...string) *messageBuilder {
	b.oneofs = append(b.oneofs, oneofDecl{name: name, members: members})
	return b
}

// Extensions declares an inclusive id range open to extension fields.
func (b *messageBuilder) Extensions(start, end uint32) *messageBuilder {
	b.extensions = append(b.extensions, protoskema.Range{Start: start, End: end})
	return b
}

// Reserved reserves an inclusive id range.
func (b *messageBuilder) Reserved(start, end uint32) *messageBuilder {
	b.reserved = append(b.reserved, protoskema.Reserved{Range: protoskema.Range{Start: start, End: end}})
	return b
}

// ReservedNames reserves field names.
func (b *messageBuilder) ReservedNames(names ...string) *messageBuilder {
	for _, n := range names {
		b.reserved = append(b.reserved, protoskema.Reserved{Name: n})
	}
	return b
}

// Option sets a message option.
func (b *messageBuilder) Option(key string, v any) *messageBuilder {
	if b.options == nil {
		b.options = map[string]any{}
	}
	b.options[key] = v
	return b
}

// Nested adds a nested declaration built elsewhere (a type, enum or
// extension field).
func (b *messageBuilder) Nested(o protoskema.Object, err error) *messageBuilder {
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.nested = append(b.nested, o)
	return b
}

// Build assembles the type. Declaration errors such as duplicate names or
// one-of members that are not fields are reported here.
func (b *messageBuilder) Build() (*protoskema.Type, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	t := protoskema.NewType(b.name, b.options)
	for i, spec := range b.fields {
		if err := t.Add(protoskema.NewField(b.names[i], *spec)); err != nil {
			return nil, err
		}
	}
	for _, o := range b.oneofs {
		if err := t.Add(protoskema.NewOneOf(o.name, o.members, nil)); err != nil {
			return nil, err
		}
	}
	t.SetExtensions(b.extensions)
	t.SetReserved(b.reserved)
	for _, n := range b.nested {
		if err := t.Add(n); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustBuild is Build that panics on error.
func (b *messageBuilder) MustBuild() *protoskema.Type {
	t, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("dsl: %s: %v", b.name, err))
	}
	return t
}
