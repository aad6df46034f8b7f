// Package protoskema is a reflective schema engine and binary wire codec for
// tag/varint encoded messages.
//
// A schema is a tree of namespaces. Message types (Type) own ordered fields,
// one-of groups, extension and reserved ranges, and nested declarations.
// Trees are built programmatically (NewType, Add), from the JSON schema
// shape (TypeFromJSON, LoadJSON, LoadYAML) or with package dsl.
//
// Messages are dynamic: Type.Create returns a *Message whose unset scalar
// fields read through a default template shared by every instance of the
// type. Type.Encode and Type.Decode convert between messages and bytes via
// package wire.
//
// Lifecycle:
//
//	root, err := protoskema.LoadJSON(schemaBytes)
//	user := root.LookupType("pkg.User")
//	m, err := user.Create(map[string]any{"id": 7, "name": "x"})
//	w, err := user.Encode(m, nil)
//	b := w.Finish()                // 08 07 12 01 78
//	back, err := user.Decode(b)
//
// Design policy:
//   - Build and resolve the whole tree first, then treat it as read-only.
//     Encode, Decode and Create are then safe for concurrent use; Add and
//     Remove are not, because the lazily built caches are not locked.
//   - Extension fields declared anywhere under a Root are merged into their
//     target type by ResolveExtends, which Create, Encode and Decode call.
//   - Errors are returned, never recovered: a failed Decode returns a nil
//     message.
package protoskema
