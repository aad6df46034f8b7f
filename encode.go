package protoskema

import "github.com/reoring/protoskema/wire"

// Encode appends the wire form of m to w (a new writer when w is nil) and
// returns the writer. Fields are written in declaration order. A field
// that is not required is skipped when its value equals the default under
// the root's EqualityMode. On error w is left untouched.
func (t *Type) Encode(m *Message, w *wire.Writer) (*wire.Writer, error) {
	body := wire.NewWriter()
	if err := t.encodeTo(m, body); err != nil {
		return nil, err
	}
	if w == nil {
		return body, nil
	}
	return w.Raw(body.Finish()), nil
}

// EncodeDelimited is Encode with a varint length prefix.
func (t *Type) EncodeDelimited(m *Message, w *wire.Writer) (*wire.Writer, error) {
	if w == nil {
		w = wire.NewWriter()
	}
	w.Fork()
	if err := t.encodeTo(m, w); err != nil {
		w.Reset()
		return nil, err
	}
	return w.Ldelim(), nil
}

// Marshal returns the wire form of m.
func (t *Type) Marshal(m *Message) ([]byte, error) {
	w, err := t.Encode(m, nil)
	if err != nil {
		return nil, err
	}
	return w.Finish(), nil
}

func (t *Type) encodeTo(m *Message, w *wire.Writer) error {
	if err := t.setup(); err != nil {
		return err
	}
	if m == nil {
		return &ValueError{Field: t.FullName(), Reason: "nil message"}
	}
	if m.typ != t {
		return &ValueError{Field: t.FullName(), Value: m.typ.FullName(), Reason: "message of another type"}
	}
	mode := t.equality()
	for _, name := range t.FieldNames() {
		f := t.fieldByName[name]
		v := m.Get(name)
		if f.Required() {
			if v == nil && !f.collection() && f.kind != KindMessage {
				v = f.defaultValue
			}
		} else {
			if v == nil {
				continue
			}
			if !f.collection() && f.kind != KindMessage && valuesEqual(v, f.defaultValue, mode) {
				continue
			}
		}
		if err := f.encode(v, w); err != nil {
			return err
		}
	}
	return nil
}
