package protoskema

// OneOf groups fields of which at most one is set on a message. It has no
// wire representation of its own.
type OneOf struct {
	object
	members []string
}

// NewOneOf returns a detached one-of over the named fields. The fields must
// exist on the type the one-of is added to.
func NewOneOf(name string, members []string, options map[string]any) *OneOf {
	return &OneOf{object: object{name: name, options: options}, members: append([]string(nil), members...)}
}

// Members returns the member field names in declaration order.
func (o *OneOf) Members() []string { return o.members }

// Resolve is a no-op; member fields are resolved by their type.
func (o *OneOf) Resolve() error {
	o.resolved = true
	return nil
}

func (o *OneOf) owner() *Type {
	if o.parent == nil {
		return nil
	}
	t, _ := o.parent.self.(*Type)
	return t
}

// Which returns the name of the member set on m, or "".
func (o *OneOf) Which(m *Message) string {
	for _, name := range o.members {
		if v, ok := m.values[name]; ok && v != nil {
			return name
		}
	}
	return ""
}

// Set stores v in the member field and clears the other members.
func (o *OneOf) Set(m *Message, field string, v any) error {
	if !o.has(field) {
		return schemaErr(CodeUnknownMember, o.FullName(), ErrUnknownMember, "%q is not a member", field)
	}
	return m.Set(field, v)
}

// Clear removes whichever member is set on m.
func (o *OneOf) Clear(m *Message) {
	for _, name := range o.members {
		delete(m.values, name)
	}
}

func (o *OneOf) has(name string) bool {
	for _, n := range o.members {
		if n == name {
			return true
		}
	}
	return false
}

func (o *OneOf) clearOthers(m *Message, keep string) {
	for _, name := range o.members {
		if name != keep {
			delete(m.values, name)
		}
	}
}

func (o *OneOf) removeMember(name string) {
	for i, n := range o.members {
		if n == name {
			o.members = append(o.members[:i], o.members[i+1:]...)
			return
		}
	}
}
