package protoskema

// Message is a dynamic instance of a Type. Only materialized fields are
// stored on the instance; other scalar fields read through the default
// template shared by all instances of the type.
type Message struct {
	typ      *Type
	template map[string]any
	values   map[string]any
}

// NewMessage returns an instance with no materialized fields. It is meant
// for Constructor implementations; Create is the usual entry point.
func (t *Type) NewMessage() (*Message, error) {
	if err := t.setup(); err != nil {
		return nil, err
	}
	return t.newMessage(), nil
}

func (t *Type) newMessage() *Message {
	return &Message{typ: t, template: t.defaultTemplate(), values: map[string]any{}}
}

// Type returns the type m was created from.
func (m *Message) Type() *Type { return m.typ }

// Get returns the value of a field: the materialized value when present,
// otherwise the shared default. Unset collections, messages and bytes
// return nil.
func (m *Message) Get(name string) any {
	if v, ok := m.values[name]; ok {
		return v
	}
	return m.template[name]
}

// Has reports whether the field is materialized on m.
func (m *Message) Has(name string) bool {
	_, ok := m.values[name]
	return ok
}

// Set coerces v to the field's kind and materializes it. Setting a one-of
// member clears its siblings; setting nil clears the field.
func (m *Message) Set(name string, v any) error {
	f := m.typ.fieldByName[name]
	if f == nil {
		return &ValueError{Field: joinName(m.typ.FullName(), name), Value: v, Reason: "no such field"}
	}
	if v == nil {
		m.Clear(name)
		return nil
	}
	if err := f.Resolve(); err != nil {
		return err
	}
	c, err := f.coerce(v)
	if err != nil {
		return err
	}
	m.values[name] = c
	if f.oneof != nil {
		f.oneof.clearOthers(m, name)
	}
	return nil
}

// Clear drops the materialized value of a field.
func (m *Message) Clear(name string) { delete(m.values, name) }

// Keys returns the materialized field names in declaration order.
func (m *Message) Keys() []string {
	out := make([]string, 0, len(m.values))
	for _, name := range m.typ.FieldNames() {
		if _, ok := m.values[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// AsMap returns every field that has a value, materialized or default.
// Nested messages are left as *Message.
func (m *Message) AsMap() map[string]any {
	out := make(map[string]any, len(m.template)+len(m.values))
	for k, v := range m.template {
		out[k] = v
	}
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
