package protoskema

// Root is the top of a schema tree. It holds the schema wide options and
// the registry of extension fields waiting to be merged into their target
// types.
type Root struct {
	Namespace
	opt      RootOpt
	deferred []*Field
}

// NewRoot returns an empty root. When several options are passed the last
// one wins.
func NewRoot(opts ...RootOpt) *Root {
	r := &Root{}
	r.init("", nil, r)
	if len(opts) > 0 {
		r.opt = opts[len(opts)-1]
	}
	return r
}

// Equality returns the configured default suppression mode.
func (r *Root) Equality() EqualityMode { return r.opt.Equality }

// SetEquality changes the default suppression mode.
func (r *Root) SetEquality(m EqualityMode) { r.opt.Equality = m }

// Pending returns the extension fields not yet merged into a target type.
func (r *Root) Pending() []*Field {
	out := make([]*Field, len(r.deferred))
	copy(out, r.deferred)
	return out
}

// ResolveAll merges every pending extension whose target exists, resolves
// the whole tree and builds the per-type caches. Afterwards the tree is
// read-only for Create, Encode and Decode, so it can be shared between
// goroutines as long as nobody adds or removes declarations.
func (r *Root) ResolveAll() error {
	for _, f := range r.Pending() {
		if t := f.extendTarget(); t != nil {
			if err := t.ResolveExtends(); err != nil {
				return err
			}
		}
	}
	if err := r.Resolve(); err != nil {
		return err
	}
	return warmCaches(&r.Namespace)
}

func warmCaches(ns *Namespace) error {
	for _, o := range ns.nested {
		if t, ok := o.(*Type); ok {
			// merging an extension clears the target's resolved flag
			if err := t.Resolve(); err != nil {
				return err
			}
			if _, err := t.FieldsByID(); err != nil {
				return err
			}
			t.FieldNames()
			t.defaultTemplate()
		}
		if n := o.namespace(); n != nil {
			if err := warmCaches(n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Root) register(o Object) {
	if f, ok := o.(*Field); ok && f.extend != "" && f.extensionField == nil {
		for _, p := range r.deferred {
			if p == f {
				return
			}
		}
		r.deferred = append(r.deferred, f)
		Logger().Debug().Str("field", f.FullName()).Str("extend", f.extend).Msg("extension deferred")
		return
	}
	if n := o.namespace(); n != nil {
		for _, c := range n.nested {
			r.register(c)
		}
	}
}

func (r *Root) unregister(o Object) {
	if f, ok := o.(*Field); ok && f.extend != "" {
		for i, p := range r.deferred {
			if p == f {
				r.deferred = append(r.deferred[:i], r.deferred[i+1:]...)
				break
			}
		}
		if s := f.extensionField; s != nil {
			f.extensionField = nil
			s.declaringField = nil
			if p := s.Parent(); p != nil {
				_ = p.Remove(s)
			}
		}
		return
	}
	if n := o.namespace(); n != nil {
		for _, c := range n.nested {
			r.unregister(c)
		}
	}
}

// resolveExtendsFor merges the pending extensions targeting t. Each merged
// extension is represented on t by a sister field named after the full name
// of the declaring field.
func (r *Root) resolveExtendsFor(t *Type) error {
	if !r.hasPendingFor(t) {
		return nil
	}
	kept := r.deferred[:0]
	var firstErr error
	for _, f := range r.deferred {
		if firstErr != nil || f.extendTarget() != t {
			kept = append(kept, f)
			continue
		}
		sister := newSister(f)
		if err := t.Add(sister); err != nil {
			firstErr = err
			kept = append(kept, f)
			continue
		}
		f.extensionField = sister
		sister.declaringField = f
		Logger().Debug().Str("type", t.FullName()).Str("field", sister.name).Uint32("id", f.id).Msg("extension merged")
	}
	for i := len(kept); i < len(r.deferred); i++ {
		r.deferred[i] = nil
	}
	r.deferred = kept
	return firstErr
}

func (r *Root) hasPendingFor(t *Type) bool {
	for _, f := range r.deferred {
		if f.extendTarget() == t {
			return true
		}
	}
	return false
}
