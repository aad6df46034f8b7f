// Package yaml builds the ordered ir tree from YAML documents using the
// gopkg.in/yaml.v3 node API, so mapping keys keep their document order.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	eng "github.com/reoring/protoskema/internal/engine"
	"github.com/reoring/protoskema/internal/ir"
)

// Options mirrors the enforcement knobs of the JSON path.
type Options struct {
	OnDuplicate eng.DuplicateStrictness
	MaxDepth    int
	IssueSink   func(eng.SimpleIssue)
}

// Build converts the first document in data.
func Build(data []byte, opt Options) (any, error) {
	docs, err := BuildAll(data, opt)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return docs[0], nil
}

// BuildAll converts every document of a multi-document stream.
func BuildAll(data []byte, opt Options) ([]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var out []any
	for {
		var n yaml.Node
		if err := dec.Decode(&n); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		v, err := convert(&n, "", 0, opt)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func convert(n *yaml.Node, path string, depth int, opt Options) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return convert(n.Content[0], path, depth, opt)
	case yaml.AliasNode:
		return convert(n.Alias, path, depth, opt)
	case yaml.MappingNode:
		if opt.MaxDepth > 0 && depth+1 > opt.MaxDepth {
			return nil, issue("parse_error", path, "max depth exceeded")
		}
		o := ir.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i].Value
			kp := path + "/" + k
			if o.Has(k) && opt.OnDuplicate != eng.DupIgnore {
				err := issue("duplicate_key", kp, "key '"+k+"' duplicated")
				if opt.OnDuplicate == eng.DupError {
					return nil, err
				}
				if opt.IssueSink != nil {
					opt.IssueSink(err.SimpleIssue)
				}
			}
			v, err := convert(n.Content[i+1], kp, depth+1, opt)
			if err != nil {
				return nil, err
			}
			o.Set(k, v)
		}
		return o, nil
	case yaml.SequenceNode:
		if opt.MaxDepth > 0 && depth+1 > opt.MaxDepth {
			return nil, issue("parse_error", path, "max depth exceeded")
		}
		arr := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := convert(c, fmt.Sprintf("%s/%d", path, i), depth+1, opt)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalar(n)
	}
	return nil, fmt.Errorf("yaml: unsupported node kind %d at line %d", n.Kind, n.Line)
}

func scalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int", "!!float":
		return ir.Number(n.Value), nil
	default:
		return n.Value, nil
	}
}

func issue(code, path, msg string) eng.IssueError {
	if path == "" {
		path = "/"
	}
	return eng.IssueError{SimpleIssue: eng.SimpleIssue{Code: code, Path: path, Message: msg}}
}
