// Package dsl declares protoskema types in Go code instead of JSON.
//
//	user := dsl.Message("User").
//		Field("id", 1, dsl.Uint32).Required().
//		Field("name", 2, dsl.String).
//		MustBuild()
//	root, err := dsl.Schema(protoskema.RootOpt{}, user)
//
// Builders only collect declarations; names and one-of membership are
// checked by Build, while type references are resolved lazily on first use
// like any other reflected type.
package dsl
