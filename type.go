package protoskema

// Type is a message type: a namespace that also owns fields, one-ofs and
// the extension and reserved ranges, plus the create/encode/decode
// algorithms.
type Type struct {
	Namespace
	fields      []*Field
	fieldByName map[string]*Field
	oneofs      []*OneOf
	oneofByName map[string]*OneOf
	extensions  []Range
	reserved    []Reserved

	// derived, cleared by every field add/remove
	byID     map[uint32]*Field
	names    []string
	template map[string]any
}

// NewType returns an empty, detached message type.
func NewType(name string, options map[string]any) *Type {
	t := &Type{fieldByName: map[string]*Field{}, oneofByName: map[string]*OneOf{}}
	t.init(name, options, t)
	return t
}

// Fields returns the fields in declaration order. The slice must not be
// modified.
func (t *Type) Fields() []*Field { return t.fields }

// Field returns the field called name.
func (t *Type) Field(name string) *Field { return t.fieldByName[name] }

// OneOfs returns the one-ofs in declaration order.
func (t *Type) OneOfs() []*OneOf { return t.oneofs }

// OneOf returns the one-of called name.
func (t *Type) OneOf(name string) *OneOf { return t.oneofByName[name] }

// Extensions returns the extension ranges as declared.
func (t *Type) Extensions() []Range { return t.extensions }

// Reserved returns the reserved ranges and names as declared.
func (t *Type) Reserved() []Reserved { return t.reserved }

// SetExtensions replaces the extension ranges. Ranges are stored verbatim;
// overlaps and ordering are not checked.
func (t *Type) SetExtensions(r []Range) { t.extensions = append([]Range(nil), r...) }

// SetReserved replaces the reserved ranges and names.
func (t *Type) SetReserved(r []Reserved) { t.reserved = append([]Reserved(nil), r...) }

// IsExtensionID reports whether id falls in an extension range.
func (t *Type) IsExtensionID(id uint32) bool {
	for _, r := range t.extensions {
		if r.Contains(id) {
			return true
		}
	}
	return false
}

// IsReservedID reports whether id falls in a reserved range.
func (t *Type) IsReservedID(id uint32) bool {
	for _, r := range t.reserved {
		if !r.IsName() && r.Contains(id) {
			return true
		}
	}
	return false
}

// IsReservedName reports whether name is reserved.
func (t *Type) IsReservedName(name string) bool {
	for _, r := range t.reserved {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Add adds a field, a one-of or a nested declaration. Fields that declare
// extend are nested declarations, not members of t.
func (t *Type) Add(child Object) error {
	switch c := child.(type) {
	case *Field:
		if c.extend != "" {
			break
		}
		if err := t.adopt(c); err != nil {
			return err
		}
		t.fields = append(t.fields, c)
		t.fieldByName[c.name] = c
		t.clearCache()
		return nil
	case *OneOf:
		if t.nameTaken(c.name) {
			return schemaErr(CodeDuplicateName, joinName(t.FullName(), c.name), ErrDuplicateName,
				"duplicate name %q in %q", c.name, t.FullName())
		}
		for _, m := range c.members {
			if t.fieldByName[m] == nil {
				return schemaErr(CodeUnknownMember, joinName(t.FullName(), c.name), ErrUnknownMember,
					"one-of member %q is not a field of %q", m, t.FullName())
			}
		}
		if err := t.adopt(c); err != nil {
			return err
		}
		t.oneofs = append(t.oneofs, c)
		t.oneofByName[c.name] = c
		for _, m := range c.members {
			t.fieldByName[m].oneof = c
		}
		return nil
	case *Root:
		return schemaErr(CodeInvalidSchema, t.FullName(), ErrInvalidSchema, "a root cannot be nested")
	}
	return t.addNested(child)
}

// Remove removes a field, a one-of or a nested declaration. It fails with
// *NotMemberError when t does not own child.
func (t *Type) Remove(child Object) error {
	switch c := child.(type) {
	case *Field:
		if c.extend != "" {
			break
		}
		if t.fieldByName[c.name] != c {
			return &NotMemberError{Parent: t.FullName(), Name: c.name}
		}
		if c.oneof != nil {
			c.oneof.removeMember(c.name)
			c.oneof = nil
		}
		if d := c.declaringField; d != nil {
			d.extensionField = nil
			c.declaringField = nil
			if r := t.Root(); r != nil && d.parent != nil {
				r.register(d)
			}
		}
		delete(t.fieldByName, c.name)
		for i, f := range t.fields {
			if f == c {
				t.fields = append(t.fields[:i], t.fields[i+1:]...)
				break
			}
		}
		c.parent = nil
		c.resolved = false
		t.clearCache()
		return nil
	case *OneOf:
		if t.oneofByName[c.name] != c {
			return &NotMemberError{Parent: t.FullName(), Name: c.name}
		}
		for _, m := range c.members {
			if f := t.fieldByName[m]; f != nil && f.oneof == c {
				f.oneof = nil
			}
		}
		delete(t.oneofByName, c.name)
		for i, o := range t.oneofs {
			if o == c {
				t.oneofs = append(t.oneofs[:i], t.oneofs[i+1:]...)
				break
			}
		}
		c.parent = nil
		return nil
	}
	return t.removeNested(child)
}

func (t *Type) clearCache() {
	t.byID = nil
	t.names = nil
	t.template = nil
	t.resolved = false
}

// FieldsByID returns the fields keyed by numeric id. The map is built on
// first use after a change to the field set; two fields sharing an id fail
// here with a SchemaError coded duplicate_id.
func (t *Type) FieldsByID() (map[uint32]*Field, error) {
	if t.byID != nil {
		return t.byID, nil
	}
	byID := make(map[uint32]*Field, len(t.fields))
	for _, f := range t.fields {
		if prev, ok := byID[f.id]; ok {
			return nil, schemaErr(CodeDuplicateID, t.FullName(), ErrDuplicateID,
				"fields %q and %q share id %d", prev.name, f.name, f.id)
		}
		byID[f.id] = f
	}
	t.byID = byID
	Logger().Debug().Str("type", t.FullName()).Int("fields", len(byID)).Msg("field index built")
	return byID, nil
}

// FieldNames returns the field names in declaration order, which is also
// the order fields are written in. The slice must not be modified.
func (t *Type) FieldNames() []string {
	if t.names != nil {
		return t.names
	}
	names := make([]string, len(t.fields))
	for i, f := range t.fields {
		names[i] = f.name
	}
	t.names = names
	return names
}

// ResolveExtends merges the extension fields pending on the root that
// target t. Calling it again is a no-op until new extensions are added.
func (t *Type) ResolveExtends() error {
	r := t.Root()
	if r == nil {
		return nil
	}
	return r.resolveExtendsFor(t)
}

// Resolve resolves every field, one-of and nested declaration.
func (t *Type) Resolve() error {
	if t.resolved {
		return nil
	}
	for _, f := range t.fields {
		if err := f.Resolve(); err != nil {
			return err
		}
	}
	for _, o := range t.oneofs {
		if err := o.Resolve(); err != nil {
			return err
		}
	}
	return t.Namespace.Resolve()
}

// setup runs before create, encode and decode.
func (t *Type) setup() error {
	if err := t.ResolveExtends(); err != nil {
		return err
	}
	if err := t.Resolve(); err != nil {
		return err
	}
	_, err := t.FieldsByID()
	return err
}

func (t *Type) equality() EqualityMode {
	if r := t.Root(); r != nil {
		return r.opt.Equality
	}
	return EqualLoose
}

// defaultTemplate holds the scalar defaults shared by every instance.
// Collections, messages and bytes never go on it.
func (t *Type) defaultTemplate() map[string]any {
	if t.template != nil {
		return t.template
	}
	tmpl := make(map[string]any, len(t.fields))
	for _, f := range t.fields {
		if f.collection() || f.kind == KindMessage || f.kind == KindBytes {
			continue
		}
		tmpl[f.name] = f.defaultValue
	}
	t.template = tmpl
	return tmpl
}
