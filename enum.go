package protoskema

// Enum is a named set of int32 constants. Only what enum valued fields
// need is modelled: value lookup, defaults and JSON round trips.
type Enum struct {
	object
	names  []string
	values map[string]int32
}

// NewEnum returns a detached enum.
func NewEnum(name string, options map[string]any) *Enum {
	return &Enum{object: object{name: name, options: options}, values: map[string]int32{}}
}

// AddValue appends a named value. Names must be unique; numbers may alias.
func (e *Enum) AddValue(name string, n int32) error {
	if _, ok := e.values[name]; ok {
		return schemaErr(CodeDuplicateName, joinName(e.FullName(), name), ErrDuplicateName, "duplicate enum value %q", name)
	}
	e.names = append(e.names, name)
	e.values[name] = n
	return nil
}

// Names returns the value names in declaration order.
func (e *Enum) Names() []string { return e.names }

// ValueOf returns the number of the named value.
func (e *Enum) ValueOf(name string) (int32, bool) {
	n, ok := e.values[name]
	return n, ok
}

// NameOf returns the first name declared for n.
func (e *Enum) NameOf(n int32) (string, bool) {
	for _, name := range e.names {
		if e.values[name] == n {
			return name, true
		}
	}
	return "", false
}

func (e *Enum) Resolve() error {
	e.resolved = true
	return nil
}
