package protoskema

import "github.com/reoring/protoskema/wire"

// EqualityMode selects how Encode compares a field value with its default
// when deciding whether to omit it.
//
// Bytes compare by content in every mode: a materialized bytes value equal
// to the default, including an empty slice against the empty default, is
// omitted even though Message.Has reports it. Lists, maps and messages are
// never equal to a default, so they are written whenever they hold a value.
type EqualityMode int

const (
	// EqualLoose uses coercive comparison: numbers, numeric strings and
	// booleans compare by numeric value, so 0, "", "0" and false all match
	// a zero default. This is the compatible behavior. Bytes are not
	// coerced: only bytes with the same content match a bytes default.
	EqualLoose EqualityMode = iota
	// EqualStrict only treats values of the same value class as equal
	// (number with number, string with string, ...).
	EqualStrict
)

func (m EqualityMode) String() string {
	if m == EqualStrict {
		return "strict"
	}
	return "loose"
}

// RootOpt configures a Root.
type RootOpt struct {
	Equality EqualityMode
}

// Severity expresses the severity level for loading issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// LoadOpt bundles schema loading options.
type LoadOpt struct {
	OnDuplicateKey Severity // Duplicate object keys in the schema document.
	MaxDepth       int      // Maximum nesting depth; 0 means unlimited.
	MaxBytes       int64    // Maximum document size; 0 means unlimited.
	Root           RootOpt
}

// Constructor allocates a message instance, bypassing the default template
// machinery of Type.Create.
type Constructor func(t *Type, props map[string]any) (*Message, error)

// CreateOpt configures Type.Create.
type CreateOpt struct {
	Constructor Constructor
}

// DecodeOpt configures Type.Decode and its variants.
type DecodeOpt struct {
	Constructor Constructor
}

// Range is an inclusive field id interval.
type Range struct {
	Start, End uint32
}

// Contains reports whether id lies in r.
func (r Range) Contains(id uint32) bool { return id >= r.Start && id <= r.End }

// Reserved is either an id range or a reserved field name.
type Reserved struct {
	Range
	Name string
}

// IsName reports whether the entry reserves a name rather than ids.
func (r Reserved) IsName() bool { return r.Name != "" }

// MaxFieldID is the largest valid field id.
const MaxFieldID = wire.MaxFieldID
