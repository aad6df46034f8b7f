package protoskema

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/reoring/protoskema/wire"
)

// Rule is the cardinality of a field.
type Rule string

const (
	RuleOptional Rule = "optional"
	RuleRequired Rule = "required"
	RuleRepeated Rule = "repeated"
	RuleMap      Rule = "map"
)

// FieldSpec describes a field for NewField.
type FieldSpec struct {
	ID      uint32
	Rule    Rule   // Empty means optional; a KeyType forces RuleMap.
	Type    string // Scalar name or a (dotted) reference to a type or enum.
	KeyType string // Map key scalar name.
	Extend  string // Target type of an extension field.
	Options map[string]any
}

// Field is one member of a message type.
type Field struct {
	object
	id       uint32
	rule     Rule
	typeName string
	keyType  string
	extend   string

	kind         Kind
	keyKind      Kind
	resolvedType *Type
	resolvedEnum *Enum
	defaultValue any

	oneof          *OneOf
	declaringField *Field // set on the sister of an extension
	extensionField *Field // set on the declaring extension once merged
}

// NewField returns a detached field.
func NewField(name string, spec FieldSpec) *Field {
	rule := spec.Rule
	if rule == "" {
		rule = RuleOptional
	}
	if spec.KeyType != "" {
		rule = RuleMap
	}
	return &Field{
		object:   object{name: name, options: spec.Options},
		id:       spec.ID,
		rule:     rule,
		typeName: spec.Type,
		keyType:  spec.KeyType,
		extend:   spec.Extend,
	}
}

func newSister(f *Field) *Field {
	return NewField("."+f.FullName(), FieldSpec{ID: f.id, Rule: f.rule, Type: f.typeName, KeyType: f.keyType, Options: f.options})
}

func (f *Field) ID() uint32       { return f.id }
func (f *Field) Rule() Rule       { return f.rule }
func (f *Field) TypeName() string { return f.typeName }
func (f *Field) KeyType() string  { return f.keyType }
func (f *Field) Extend() string   { return f.extend }

// Kind returns the resolved value kind; KindInvalid before Resolve.
func (f *Field) Kind() Kind { return f.kind }

// KeyKind returns the resolved map key kind.
func (f *Field) KeyKind() Kind { return f.keyKind }

// ResolvedType returns the message type of a message valued field.
func (f *Field) ResolvedType() *Type { return f.resolvedType }

// ResolvedEnum returns the enum of an enum valued field.
func (f *Field) ResolvedEnum() *Enum { return f.resolvedEnum }

// Default returns the resolved default value.
func (f *Field) Default() any { return f.defaultValue }

// OneOf returns the one-of the field belongs to, if any.
func (f *Field) OneOf() *OneOf { return f.oneof }

// DeclaringField returns the extension declaration a merged sister field
// stands for.
func (f *Field) DeclaringField() *Field { return f.declaringField }

// ExtensionField returns the sister field created when an extension was
// merged into its target.
func (f *Field) ExtensionField() *Field { return f.extensionField }

func (f *Field) Required() bool { return f.rule == RuleRequired }
func (f *Field) Repeated() bool { return f.rule == RuleRepeated }
func (f *Field) IsMap() bool    { return f.rule == RuleMap }

// Packed reports whether repeated values are written as one packed run.
func (f *Field) Packed() bool {
	p, _ := f.options["packed"].(bool)
	return p && f.rule == RuleRepeated && f.kind.Packable()
}

func (f *Field) collection() bool { return f.rule == RuleRepeated || f.rule == RuleMap }

func (f *Field) extendTarget() *Type {
	if f.extend == "" || f.parent == nil {
		return nil
	}
	return f.parent.LookupType(f.extend)
}

// scope is the namespace type references are resolved from.
func (f *Field) scope() *Namespace {
	if f.declaringField != nil && f.declaringField.parent != nil {
		return f.declaringField.parent
	}
	return f.parent
}

// Resolve binds the declared type and computes the default value.
func (f *Field) Resolve() error {
	if f.resolved {
		return nil
	}
	path := f.FullName()
	if f.id == 0 || f.id > MaxFieldID {
		return schemaErr(CodeInvalidSchema, path, ErrInvalidSchema, "field id %d out of range", f.id)
	}
	if k, ok := scalarKinds[f.typeName]; ok {
		f.kind = k
	} else {
		var o Object
		if s := f.scope(); s != nil {
			o = s.Lookup(f.typeName)
		}
		switch t := o.(type) {
		case *Type:
			f.kind, f.resolvedType = KindMessage, t
		case *Enum:
			f.kind, f.resolvedEnum = KindEnum, t
		default:
			return schemaErr(CodeUnresolvedType, path, ErrUnresolvedType, "no type %q", f.typeName)
		}
	}
	if f.rule == RuleMap {
		k, ok := scalarKinds[f.keyType]
		if !ok || !k.validMapKey() {
			return schemaErr(CodeInvalidSchema, path, ErrInvalidSchema, "invalid map key type %q", f.keyType)
		}
		f.keyKind = k
	}
	if err := f.resolveDefault(); err != nil {
		return err
	}
	f.resolved = true
	return nil
}

func (f *Field) resolveDefault() error {
	if f.collection() || f.kind == KindMessage {
		f.defaultValue = nil
		return nil
	}
	if d, ok := f.options["default"]; ok && d != nil {
		v, reason := coerceScalar(f.kind, d, f.resolvedEnum)
		if reason != "" {
			return schemaErr(CodeInvalidSchema, f.FullName(), ErrInvalidSchema, "bad default %v: %s", d, reason)
		}
		f.defaultValue = v
		return nil
	}
	if f.kind == KindEnum && f.resolvedEnum != nil && len(f.resolvedEnum.names) > 0 {
		f.defaultValue = f.resolvedEnum.values[f.resolvedEnum.names[0]]
		return nil
	}
	f.defaultValue = f.kind.zero()
	return nil
}

func (f *Field) valueErr(v any, reason string) error {
	return &ValueError{Field: f.FullName(), Value: v, Reason: reason}
}

// coerce converts a caller supplied value into the canonical Go shape of
// the field: a scalar, *Message, []any or map[any]any.
func (f *Field) coerce(v any) (any, error) {
	switch f.rule {
	case RuleRepeated:
		list, ok := listOf(v)
		if !ok {
			return nil, f.valueErr(v, "not a list")
		}
		out := make([]any, len(list))
		for i, e := range list {
			c, err := f.coerceOne(e)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case RuleMap:
		out := map[any]any{}
		ok, err := entriesOf(v, func(k, e any) error {
			ck, reason := coerceScalar(f.keyKind, k, nil)
			if reason != "" {
				return f.valueErr(k, "map key "+reason)
			}
			ce, err := f.coerceOne(e)
			if err != nil {
				return err
			}
			out[ck] = ce
			return nil
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, f.valueErr(v, "not a map")
		}
		return out, nil
	}
	return f.coerceOne(v)
}

func (f *Field) coerceOne(v any) (any, error) {
	if f.kind != KindMessage {
		c, reason := coerceScalar(f.kind, v, f.resolvedEnum)
		if reason != "" {
			return nil, f.valueErr(v, reason)
		}
		return c, nil
	}
	switch m := v.(type) {
	case nil:
		return nil, nil
	case *Message:
		if m == nil {
			return nil, nil
		}
		if m.typ != f.resolvedType {
			return nil, f.valueErr(v, "message of type "+m.typ.FullName())
		}
		return m, nil
	case map[string]any:
		return f.resolvedType.Create(m)
	}
	return nil, f.valueErr(v, "not a message")
}

// Encode writes the tag(s) and payload of v. Empty collections write
// nothing.
func (f *Field) Encode(v any, w *wire.Writer) error {
	if err := f.Resolve(); err != nil {
		return err
	}
	return f.encode(v, w)
}

func (f *Field) encode(v any, w *wire.Writer) error {
	switch f.rule {
	case RuleRepeated:
		return f.encodeRepeated(v, w)
	case RuleMap:
		return f.encodeMap(v, w)
	}
	c, err := f.coerceOne(v)
	if err != nil {
		return err
	}
	return f.encodeValue(f.id, f.kind, c, w)
}

func (f *Field) encodeValue(id uint32, k Kind, v any, w *wire.Writer) error {
	if k != KindMessage {
		w.Tag(id, k.WireType())
		writeScalar(w, k, v)
		return nil
	}
	w.Tag(id, wire.BytesType).Fork()
	if m, _ := v.(*Message); m != nil {
		if err := f.resolvedType.encodeTo(m, w); err != nil {
			w.Reset()
			return err
		}
	}
	w.Ldelim()
	return nil
}

func (f *Field) encodeRepeated(v any, w *wire.Writer) error {
	if v == nil {
		return nil
	}
	c, err := f.coerce(v)
	if err != nil {
		return err
	}
	list := c.([]any)
	if len(list) == 0 {
		return nil
	}
	if f.Packed() {
		w.Tag(f.id, wire.BytesType).Fork()
		for _, e := range list {
			writeScalar(w, f.kind, e)
		}
		w.Ldelim()
		return nil
	}
	for _, e := range list {
		if err := f.encodeValue(f.id, f.kind, e, w); err != nil {
			return err
		}
	}
	return nil
}

func (f *Field) encodeMap(v any, w *wire.Writer) error {
	if v == nil {
		return nil
	}
	c, err := f.coerce(v)
	if err != nil {
		return err
	}
	entries := c.(map[any]any)
	keys := make([]any, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
	for _, k := range keys {
		w.Tag(f.id, wire.BytesType).Fork()
		f.encodeValue(1, f.keyKind, k, w)
		if err := f.encodeValue(2, f.kind, entries[k], w); err != nil {
			w.Reset()
			return err
		}
		w.Ldelim()
	}
	return nil
}

// lessKey orders canonical map keys so map output is deterministic.
func lessKey(a, b any) bool {
	switch x := a.(type) {
	case string:
		return x < b.(string)
	case bool:
		return !x && b.(bool)
	case int32:
		return x < b.(int32)
	case int64:
		return x < b.(int64)
	case uint32:
		return x < b.(uint32)
	case uint64:
		return x < b.(uint64)
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

// mapEntry is the decoded form of one map field record.
type mapEntry struct {
	key, value any
}

// Decode reads one occurrence of the field whose tag carried wt. Repeated
// fields return []any for a packed run and a single element otherwise; map
// fields return one entry.
func (f *Field) Decode(r *wire.Reader, wt wire.Type) (any, error) {
	if err := f.Resolve(); err != nil {
		return nil, err
	}
	v, err := f.decode(r, wt, DecodeOpt{})
	if e, ok := v.(mapEntry); ok {
		return map[any]any{e.key: e.value}, err
	}
	return v, err
}

func (f *Field) decode(r *wire.Reader, wt wire.Type, opt DecodeOpt) (any, error) {
	switch {
	case f.rule == RuleMap:
		if wt != wire.BytesType {
			return nil, f.wireMismatch(r, wt, wire.BytesType)
		}
		return f.decodeEntry(r, opt)
	case f.rule == RuleRepeated && wt == wire.BytesType && f.kind.Packable():
		n, err := r.Length()
		if err != nil {
			return nil, err
		}
		end := r.Pos() + n
		var out []any
		for r.Pos() < end {
			v, err := readScalar(r, f.kind)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		if r.Pos() != end {
			return nil, &MalformedWireFormatError{Type: f.FullName(), Pos: r.Pos(), Limit: end, Reason: "packed run overruns its length"}
		}
		return out, nil
	}
	if wt != f.kind.WireType() {
		return nil, f.wireMismatch(r, wt, f.kind.WireType())
	}
	return f.decodeValue(r, f.kind, opt)
}

func (f *Field) decodeValue(r *wire.Reader, k Kind, opt DecodeOpt) (any, error) {
	if k != KindMessage {
		return readScalar(r, k)
	}
	n, err := r.Length()
	if err != nil {
		return nil, err
	}
	return f.resolvedType.decodeLimit(r, r.Pos()+n, opt)
}

func (f *Field) decodeEntry(r *wire.Reader, opt DecodeOpt) (any, error) {
	n, err := r.Length()
	if err != nil {
		return nil, err
	}
	end := r.Pos() + n
	e := mapEntry{key: f.keyKind.zero(), value: f.kind.zero()}
	for r.Pos() < end {
		id, wt, err := r.Tag()
		if err != nil {
			return nil, err
		}
		switch id {
		case 1:
			if wt != f.keyKind.WireType() {
				return nil, f.wireMismatch(r, wt, f.keyKind.WireType())
			}
			if e.key, err = readScalar(r, f.keyKind); err != nil {
				return nil, err
			}
		case 2:
			if wt != f.kind.WireType() {
				return nil, f.wireMismatch(r, wt, f.kind.WireType())
			}
			if e.value, err = f.decodeValue(r, f.kind, opt); err != nil {
				return nil, err
			}
		default:
			if err := r.SkipType(wt); err != nil {
				return nil, err
			}
		}
	}
	if r.Pos() != end {
		return nil, &MalformedWireFormatError{Type: f.FullName(), Pos: r.Pos(), Limit: end, Reason: "map entry overruns its length"}
	}
	if f.kind == KindMessage && e.value == nil {
		m, err := f.resolvedType.Create(nil)
		if err != nil {
			return nil, err
		}
		e.value = m
	}
	return e, nil
}

func (f *Field) wireMismatch(r *wire.Reader, got, want wire.Type) error {
	return &MalformedWireFormatError{
		Type:   f.FullName(),
		Pos:    r.Pos(),
		Limit:  r.Len(),
		Reason: fmt.Sprintf("wire type %s, want %s", got, want),
	}
}

func copyValue(v any) any {
	if b, ok := v.([]byte); ok {
		return bytes.Clone(b)
	}
	return v
}
