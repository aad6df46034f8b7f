package dsl

import "github.com/reoring/protoskema"

// Extend declares an extension field adding id to the target type.
func Extend(target, name string, id uint32, typ string) *protoskema.Field {
	return protoskema.NewField(name, protoskema.FieldSpec{ID: id, Type: typ, Extend: target})
}

// Schema places declarations under a new root. Pass *protoskema.Namespace
// values to build packages.
func Schema(opt protoskema.RootOpt, decls ...protoskema.Object) (*protoskema.Root, error) {
	r := protoskema.NewRoot(opt)
	for _, d := range decls {
		if err := r.Add(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Package returns a namespace holding decls.
func Package(name string, decls ...protoskema.Object) (*protoskema.Namespace, error) {
	ns := protoskema.NewNamespace(name, nil)
	for _, d := range decls {
		if err := ns.Add(d); err != nil {
			return nil, err
		}
	}
	return ns, nil
}
