package protoskema

// Create returns a new instance populated from props. With a Constructor
// the call is delegated to it unchanged.
//
// Otherwise a field is materialized on the instance iff it is required, it
// is repeated or a map (every instance gets its own collection), the
// supplied value differs from the default, or the default is a reference
// value that must not be shared (bytes). Props that name no field are
// ignored.
func (t *Type) Create(props map[string]any, opts ...CreateOpt) (*Message, error) {
	var opt CreateOpt
	if n := len(opts); n > 0 {
		opt = opts[n-1]
	}
	if opt.Constructor != nil {
		return opt.Constructor(t, props)
	}
	if err := t.setup(); err != nil {
		return nil, err
	}
	m := t.newMessage()
	for _, f := range t.fields {
		if v := props[f.name]; v != nil {
			c, err := f.coerce(v)
			if err != nil {
				return nil, err
			}
			if c == nil {
				continue
			}
			if f.Required() || f.collection() || isReference(f.defaultValue) || !valuesEqual(c, f.defaultValue, EqualStrict) {
				m.values[f.name] = c
			}
			continue
		}
		switch {
		case f.rule == RuleRepeated:
			m.values[f.name] = []any{}
		case f.rule == RuleMap:
			m.values[f.name] = map[any]any{}
		case f.defaultValue == nil:
		case f.Required() || isReference(f.defaultValue):
			m.values[f.name] = copyValue(f.defaultValue)
		}
	}
	return m, nil
}

func isReference(v any) bool {
	_, ok := v.([]byte)
	return ok
}
