package protoskema

// Object is implemented by every node of a schema tree: namespaces, types,
// fields, one-ofs, enums and services.
type Object interface {
	// Name is the local name, unique among the siblings of one parent.
	Name() string
	// FullName is the dotted path from the root, without a leading dot.
	FullName() string
	// Parent is the owning namespace, nil while detached.
	Parent() *Namespace
	// Options are the opaque schema options of the node.
	Options() map[string]any
	// Resolve binds type references. It is idempotent.
	Resolve() error

	base() *object
	namespace() *Namespace
}

type object struct {
	name     string
	options  map[string]any
	parent   *Namespace
	resolved bool
}

func (o *object) Name() string            { return o.name }
func (o *object) Parent() *Namespace      { return o.parent }
func (o *object) Options() map[string]any { return o.options }
func (o *object) base() *object           { return o }
func (o *object) namespace() *Namespace   { return nil }

func (o *object) FullName() string {
	if o.parent == nil {
		return o.name
	}
	p := o.parent.FullName()
	if p == "" {
		return o.name
	}
	return p + "." + o.name
}

// Option returns the option stored under key.
func (o *object) Option(key string) (any, bool) {
	v, ok := o.options[key]
	return v, ok
}

// SetOption stores an option value.
func (o *object) SetOption(key string, v any) {
	if o.options == nil {
		o.options = map[string]any{}
	}
	o.options[key] = v
}
