package protoskema

import "strings"

// Namespace is a container of named declarations: types, enums, services,
// nested namespaces and extension fields.
type Namespace struct {
	object
	self   Object // value embedding this namespace (*Namespace, *Type or *Root)
	nested []Object
	byName map[string]Object
}

// NewNamespace returns an empty, detached namespace.
func NewNamespace(name string, options map[string]any) *Namespace {
	ns := &Namespace{}
	ns.init(name, options, ns)
	return ns
}

func (ns *Namespace) init(name string, options map[string]any, self Object) {
	ns.name = name
	ns.options = options
	ns.self = self
	ns.byName = map[string]Object{}
}

func (ns *Namespace) namespace() *Namespace { return ns }

// Owner returns the value embedding ns: the namespace itself, a *Type or a
// *Root.
func (ns *Namespace) Owner() Object { return ns.self }

// Nested returns the nested declarations in insertion order. The slice must
// not be modified.
func (ns *Namespace) Nested() []Object { return ns.nested }

// Get returns the nested declaration called name.
func (ns *Namespace) Get(name string) Object { return ns.byName[name] }

// Root returns the root of the tree ns belongs to, or nil when the topmost
// ancestor is not a *Root.
func (ns *Namespace) Root() *Root {
	n := ns
	for n.parent != nil {
		n = n.parent
	}
	r, _ := n.self.(*Root)
	return r
}

func (ns *Namespace) nameTaken(name string) bool {
	if _, ok := ns.byName[name]; ok {
		return true
	}
	if t, ok := ns.self.(*Type); ok {
		if _, ok := t.fieldByName[name]; ok {
			return true
		}
		if _, ok := t.oneofByName[name]; ok {
			return true
		}
	}
	return false
}

// Add takes ownership of child. Adding a name that is already used by any
// child kind fails with a SchemaError coded duplicate_name. A child owned by
// another namespace is moved.
func (ns *Namespace) Add(child Object) error {
	if t, ok := ns.self.(*Type); ok {
		return t.Add(child)
	}
	switch c := child.(type) {
	case *Field:
		if c.extend == "" {
			return schemaErr(CodeInvalidSchema, joinName(ns.FullName(), c.name), ErrInvalidSchema,
				"field outside a message type must declare extend")
		}
	case *OneOf:
		return schemaErr(CodeInvalidSchema, joinName(ns.FullName(), c.name), ErrInvalidSchema,
			"one-of outside a message type")
	case *Root:
		return schemaErr(CodeInvalidSchema, ns.FullName(), ErrInvalidSchema, "a root cannot be nested")
	}
	return ns.addNested(child)
}

func (ns *Namespace) addNested(child Object) error {
	if err := ns.adopt(child); err != nil {
		return err
	}
	ns.nested = append(ns.nested, child)
	ns.byName[child.Name()] = child
	ns.resolved = false
	ns.attached(child)
	return nil
}

// adopt checks the name, detaches child from its previous parent and makes
// ns its parent.
func (ns *Namespace) adopt(child Object) error {
	name := child.Name()
	if ns.nameTaken(name) {
		return schemaErr(CodeDuplicateName, joinName(ns.FullName(), name), ErrDuplicateName,
			"duplicate name %q in %q", name, ns.FullName())
	}
	if n := child.namespace(); n != nil {
		for p := ns; p != nil; p = p.parent {
			if p == n {
				return schemaErr(CodeInvalidSchema, n.FullName(), ErrInvalidSchema, "cannot add a namespace to itself")
			}
		}
	}
	if p := child.Parent(); p != nil {
		if err := p.Remove(child); err != nil {
			return err
		}
	}
	child.base().parent = ns
	return nil
}

// Remove detaches child. It fails with *NotMemberError when ns does not own
// child.
func (ns *Namespace) Remove(child Object) error {
	if t, ok := ns.self.(*Type); ok {
		return t.Remove(child)
	}
	return ns.removeNested(child)
}

func (ns *Namespace) removeNested(child Object) error {
	if ns.byName[child.Name()] != child {
		return &NotMemberError{Parent: ns.FullName(), Name: child.Name()}
	}
	ns.detached(child)
	delete(ns.byName, child.Name())
	for i, o := range ns.nested {
		if o == child {
			ns.nested = append(ns.nested[:i], ns.nested[i+1:]...)
			break
		}
	}
	child.base().parent = nil
	return nil
}

func (ns *Namespace) attached(child Object) {
	if r := ns.Root(); r != nil {
		r.register(child)
	}
}

func (ns *Namespace) detached(child Object) {
	if r := ns.Root(); r != nil {
		r.unregister(child)
	}
}

// Resolve resolves every nested declaration.
func (ns *Namespace) Resolve() error {
	if ns.resolved {
		return nil
	}
	for _, o := range ns.nested {
		if err := o.Resolve(); err != nil {
			return err
		}
	}
	ns.resolved = true
	return nil
}

// Lookup finds a declaration by dotted path. Relative paths are searched in
// ns first and then in each ancestor; a leading dot makes the path absolute.
func (ns *Namespace) Lookup(path string) Object {
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, ".") {
		top := ns
		for top.parent != nil {
			top = top.parent
		}
		return top.lookupDown(strings.Split(path[1:], "."))
	}
	parts := strings.Split(path, ".")
	for n := ns; n != nil; n = n.parent {
		if o := n.lookupDown(parts); o != nil {
			return o
		}
	}
	return nil
}

func (ns *Namespace) lookupDown(parts []string) Object {
	o := ns.byName[parts[0]]
	if o == nil {
		return nil
	}
	if len(parts) == 1 {
		return o
	}
	n := o.namespace()
	if n == nil {
		return nil
	}
	return n.lookupDown(parts[1:])
}

// LookupType is Lookup restricted to message types.
func (ns *Namespace) LookupType(path string) *Type {
	t, _ := ns.Lookup(path).(*Type)
	return t
}

// LookupEnum is Lookup restricted to enums.
func (ns *Namespace) LookupEnum(path string) *Enum {
	e, _ := ns.Lookup(path).(*Enum)
	return e
}

func joinName(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
