// Package wire implements the low level primitives of the binary message
// format: varints, fixed-width integers, field tags and length-delimited
// byte runs.
//
// Reader is a cursor over an immutable byte slice. Writer is an append-only
// builder; Fork and Ldelim let callers write a nested length-delimited
// payload without computing its size up front.
//
// The package has no knowledge of schemas. Field ids and wire types are
// carried as plain values.
package wire
