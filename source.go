package protoskema

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	eng "github.com/reoring/protoskema/internal/engine"
	"github.com/reoring/protoskema/internal/ir"
	jsonsrc "github.com/reoring/protoskema/source/json"
	yamlsrc "github.com/reoring/protoskema/source/yaml"
)

func lastLoadOpt(opts []LoadOpt) LoadOpt {
	if n := len(opts); n > 0 {
		return opts[n-1]
	}
	return LoadOpt{}
}

func dupStrictness(s Severity) eng.DuplicateStrictness {
	switch s {
	case Warn:
		return eng.DupWarn
	case Error:
		return eng.DupError
	}
	return eng.DupIgnore
}

func logIssue(si eng.SimpleIssue) {
	Logger().Warn().Str("code", si.Code).Str("path", si.Path).Msg(si.Message)
}

// LoadJSON parses a schema document {options?, nested?} into a new root.
func LoadJSON(data []byte, opts ...LoadOpt) (*Root, error) {
	opt := lastLoadOpt(opts)
	if err := checkSize(int64(len(data)), opt); err != nil {
		return nil, err
	}
	src := eng.WrapWithEnforcement(jsonsrc.NewBytes(data), eng.EnforceOptions{
		OnDuplicate: dupStrictness(opt.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		IssueSink:   logIssue,
	})
	v, err := eng.Build(src)
	if err != nil {
		return nil, loadErr(err)
	}
	return rootFromDocument(v, opt)
}

// ReadJSON is LoadJSON reading from r.
func ReadJSON(r io.Reader, opts ...LoadOpt) (*Root, error) {
	opt := lastLoadOpt(opts)
	if opt.MaxBytes > 0 {
		r = io.LimitReader(r, opt.MaxBytes+1)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return LoadJSON(buf.Bytes(), opts...)
}

// LoadYAML parses a schema document written in YAML. Mapping order is
// preserved, so it carries the same declaration order as JSON.
func LoadYAML(data []byte, opts ...LoadOpt) (*Root, error) {
	opt := lastLoadOpt(opts)
	if err := checkSize(int64(len(data)), opt); err != nil {
		return nil, err
	}
	v, err := yamlsrc.Build(data, yamlsrc.Options{
		OnDuplicate: dupStrictness(opt.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		IssueSink:   logIssue,
	})
	if err != nil {
		return nil, loadErr(err)
	}
	return rootFromDocument(v, opt)
}

func checkSize(n int64, opt LoadOpt) error {
	if opt.MaxBytes > 0 && n > opt.MaxBytes {
		return schemaErr(CodeTruncated, "/", ErrInvalidSchema, "document is %d bytes, limit %d", n, opt.MaxBytes)
	}
	return nil
}

func rootFromDocument(v any, opt LoadOpt) (*Root, error) {
	obj, ok := v.(*ir.Object)
	if !ok {
		return nil, schemaErr(CodeInvalidSchema, "/", ErrInvalidSchema, "schema document must be an object, got %T", v)
	}
	r, err := RootFromJSON(obj, opt.Root)
	if err != nil {
		return nil, err
	}
	Logger().Debug().Int("declarations", len(r.nested)).Int("pending_extensions", len(r.deferred)).Msg("schema loaded")
	return r, nil
}

func loadErr(err error) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return &SchemaError{Code: ie.Code, Path: ie.Path, Message: ie.Message, Err: ErrInvalidSchema}
	}
	return &SchemaError{Code: CodeParseError, Message: err.Error(), Err: fmt.Errorf("%w: %w", ErrInvalidSchema, err)}
}
