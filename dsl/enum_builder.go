package dsl

import "github.com/reoring/protoskema"

type enumBuilder struct {
	e   *protoskema.Enum
	err error
}

// Enum starts an enum declaration. The first value is the default of enum
// fields.
func Enum(name string) *enumBuilder {
	return &enumBuilder{e: protoskema.NewEnum(name, nil)}
}

// Value appends a named value.
func (b *enumBuilder) Value(name string, n int32) *enumBuilder {
	if b.err == nil {
		b.err = b.e.AddValue(name, n)
	}
	return b
}

func (b *enumBuilder) Build() (*protoskema.Enum, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.e, nil
}
