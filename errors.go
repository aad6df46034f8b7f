package protoskema

import (
	"errors"
	"fmt"

	"github.com/reoring/protoskema/wire"
)

// Schema error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeDuplicateName  = "duplicate_name"
	CodeDuplicateID    = "duplicate_id"
	CodeUnclassifiable = "unclassifiable"
	CodeUnresolvedType = "unresolved_type"
	CodeUnknownMember  = "unknown_member"
	CodeInvalidSchema  = "invalid_schema"
	CodeParseError     = "parse_error"
	CodeDuplicateKey   = "duplicate_key"
	CodeTruncated      = "truncated"
)

// Sentinels matched by SchemaError.Unwrap, so callers can use errors.Is.
var (
	ErrDuplicateName  = errors.New("protoskema: duplicate name")
	ErrDuplicateID    = errors.New("protoskema: duplicate field id")
	ErrUnclassifiable = errors.New("protoskema: unclassifiable schema node")
	ErrUnresolvedType = errors.New("protoskema: unresolved type")
	ErrUnknownMember  = errors.New("protoskema: unknown one-of member")
	ErrInvalidSchema  = errors.New("protoskema: invalid schema")
)

// SchemaError reports a problem with the schema tree itself.
type SchemaError struct {
	Code    string // One of the Code* constants.
	Path    string // Full name of the offending object (e.g. pkg.User.name).
	Message string
	Err     error // Sentinel for errors.Is; optional underlying cause.
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("protoskema: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("protoskema: %s at %s: %s", e.Code, e.Path, e.Message)
}

func (e *SchemaError) Unwrap() error { return e.Err }

func schemaErr(code, path string, sentinel error, format string, args ...any) *SchemaError {
	return &SchemaError{Code: code, Path: path, Message: fmt.Sprintf(format, args...), Err: sentinel}
}

// NotMemberError is returned by Remove when the child is not owned by the
// namespace it is removed from.
type NotMemberError struct {
	Parent string
	Name   string
}

func (e *NotMemberError) Error() string {
	return fmt.Sprintf("protoskema: %q is not a member of %q", e.Name, e.Parent)
}

// MalformedWireFormatError reports a decode whose cursor did not land
// exactly on the expected limit, or a payload that contradicts the schema.
type MalformedWireFormatError struct {
	Type   string // full name of the message type being decoded
	Pos    int
	Limit  int
	Reason string
}

func (e *MalformedWireFormatError) Error() string {
	return fmt.Sprintf("protoskema: malformed %s at %d (limit %d): %s", e.Type, e.Pos, e.Limit, e.Reason)
}

// ValueError reports a message value that cannot be represented by its
// field's kind.
type ValueError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("protoskema: invalid value %v (%T) for %s: %s", e.Value, e.Value, e.Field, e.Reason)
}

// Wire level errors surface unchanged from package wire.
type (
	BufferUnderrunError      = wire.BufferUnderrunError
	UnsupportedWireTypeError = wire.UnsupportedWireTypeError
)

// AsSchemaError extracts a *SchemaError using errors.As internally.
func AsSchemaError(err error) (*SchemaError, bool) {
	var se *SchemaError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsWireError reports whether err is a decode failure caused by the input
// bytes rather than the schema.
func IsWireError(err error) bool {
	var (
		mw *MalformedWireFormatError
		bu *BufferUnderrunError
		uw *UnsupportedWireTypeError
	)
	return errors.As(err, &mw) || errors.As(err, &bu) || errors.As(err, &uw) ||
		errors.Is(err, wire.ErrVarintOverflow) || errors.Is(err, wire.ErrFieldIDRange)
}
