package protoskema

import "github.com/reoring/protoskema/wire"

// Decode decodes a whole buffer.
func (t *Type) Decode(b []byte, opts ...DecodeOpt) (*Message, error) {
	r := wire.NewReader(b)
	return t.decodeLimit(r, r.Len(), lastDecodeOpt(opts))
}

// DecodeReader decodes from the reader's position to the end of its buffer.
func (t *Type) DecodeReader(r *wire.Reader, opts ...DecodeOpt) (*Message, error) {
	return t.decodeLimit(r, r.Len(), lastDecodeOpt(opts))
}

// DecodeN decodes exactly n bytes starting at the reader's position.
func (t *Type) DecodeN(r *wire.Reader, n int, opts ...DecodeOpt) (*Message, error) {
	if n < 0 || n > r.Remaining() {
		return nil, &BufferUnderrunError{Pos: r.Pos(), Need: n, Len: r.Len()}
	}
	return t.decodeLimit(r, r.Pos()+n, lastDecodeOpt(opts))
}

// DecodeDelimited reads a varint length prefix and decodes that many bytes.
func (t *Type) DecodeDelimited(r *wire.Reader, opts ...DecodeOpt) (*Message, error) {
	n, err := r.Length()
	if err != nil {
		return nil, err
	}
	return t.decodeLimit(r, r.Pos()+n, lastDecodeOpt(opts))
}

// Unmarshal is Decode without options.
func (t *Type) Unmarshal(b []byte) (*Message, error) { return t.Decode(b) }

func lastDecodeOpt(opts []DecodeOpt) DecodeOpt {
	if n := len(opts); n > 0 {
		return opts[n-1]
	}
	return DecodeOpt{}
}

func (t *Type) instance(opt DecodeOpt) (*Message, error) {
	if opt.Constructor == nil {
		return t.Create(nil)
	}
	m, err := opt.Constructor(t, nil)
	if err != nil {
		return nil, err
	}
	if m == nil || m.typ != t {
		return nil, &ValueError{Field: t.FullName(), Value: m, Reason: "constructor returned no instance of the type"}
	}
	if m.values == nil {
		m.values = map[string]any{}
	}
	return m, nil
}

// decodeLimit reads fields until the cursor reaches limit. Unknown field
// ids are skipped by wire type. The cursor must land exactly on limit.
func (t *Type) decodeLimit(r *wire.Reader, limit int, opt DecodeOpt) (*Message, error) {
	if err := t.setup(); err != nil {
		return nil, err
	}
	byID := t.byID
	m, err := t.instance(opt)
	if err != nil {
		return nil, err
	}
	for r.Pos() < limit {
		id, wt, err := r.Tag()
		if err != nil {
			return nil, err
		}
		f := byID[id]
		if f == nil {
			if err := r.SkipType(wt); err != nil {
				return nil, err
			}
			continue
		}
		v, err := f.decode(r, wt, opt)
		if err != nil {
			return nil, err
		}
		switch f.rule {
		case RuleRepeated:
			list, _ := m.values[f.name].([]any)
			if vs, ok := v.([]any); ok {
				list = append(list, vs...)
			} else {
				list = append(list, v)
			}
			m.values[f.name] = list
		case RuleMap:
			entries, _ := m.values[f.name].(map[any]any)
			if entries == nil {
				entries = map[any]any{}
			}
			e := v.(mapEntry)
			entries[e.key] = e.value
			m.values[f.name] = entries
		default:
			m.values[f.name] = v
			if f.oneof != nil {
				f.oneof.clearOthers(m, f.name)
			}
		}
	}
	if r.Pos() != limit {
		return nil, &MalformedWireFormatError{Type: t.FullName(), Pos: r.Pos(), Limit: limit, Reason: "cursor does not end on the message boundary"}
	}
	return m, nil
}
