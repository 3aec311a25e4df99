package pack

import "fmt"

// Field is one positional member of a Struct descriptor. Refer, when
// non-empty, names the sibling field that carries this field's element
// count; set only on DynArray fields.
type Field struct {
	Name  string
	Desc  Descriptor
	Refer string
}

// Struct is the Descriptor for a C-compatible struct: positional fields
// laid out at align_offset(current, align(field)) unless Packed, in which
// case no padding is inserted. The struct's own alignment is the maximum
// alignment of its fields; its encoded size is padded to a multiple of that
// alignment when not packed.
type Struct struct {
	TypeName string
	Fields   []Field
	Packed   bool

	byName map[string]int
}

// NewStruct builds a Struct descriptor and indexes its fields by name.
func NewStruct(name string, packed bool, fields []Field) *Struct {
	s := &Struct{TypeName: name, Fields: fields, Packed: packed}
	s.byName = make(map[string]int, len(fields))
	for i, f := range fields {
		s.byName[f.Name] = i
	}
	return s
}

func (s *Struct) Name() string { return s.TypeName }

func (s *Struct) Align() int {
	max := 1
	for _, f := range s.Fields {
		if a := f.Desc.Align(); a > max {
			max = a
		}
	}
	return max
}

func (s *Struct) StaticSize() int {
	off := 0
	for _, f := range s.Fields {
		off = AlignOffset(off, f.Desc.Align(), s.Packed)
		off += f.Desc.StaticSize()
	}
	if !s.Packed {
		off = PadTo(off, s.Align())
	}
	return off
}

func (s *Struct) record(v interface{}) *Record {
	switch x := v.(type) {
	case *Record:
		return x
	case Record:
		return &x
	default:
		return NewRecord(s)
	}
}

func (s *Struct) Size(v interface{}) int {
	r := s.record(v)
	off := 0
	for _, f := range s.Fields {
		off = AlignOffset(off, f.Desc.Align(), s.Packed)
		off += f.Desc.Size(r.Values[f.Name])
	}
	if !s.Packed {
		off = PadTo(off, s.Align())
	}
	return off
}

// rewriteReferents is the pre-encode projection pass: every DynArray field
// with a Refer sibling has that sibling overwritten with the vec's current
// length, immediately before encoding.
func (s *Struct) rewriteReferents(r *Record) error {
	for _, f := range s.Fields {
		if f.Refer == "" {
			continue
		}
		idx, ok := s.byName[f.Refer]
		if !ok {
			return fmt.Errorf("pack: struct %s: unknown referent field %q", s.TypeName, f.Refer)
		}
		elems, _ := r.Values[f.Name].([]interface{})
		n, err := coerceLike(s.Fields[idx].Desc, uint64(len(elems)))
		if err != nil {
			return err
		}
		r.Values[f.Refer] = n
	}
	return nil
}

func (s *Struct) Encode(buf []byte, v interface{}) (int, error) {
	r := s.record(v)
	r.fillDefaults()
	if err := s.rewriteReferents(r); err != nil {
		return 0, err
	}
	off := 0
	for _, f := range s.Fields {
		pad := AlignOffset(off, f.Desc.Align(), s.Packed)
		if err := zeroPad(buf, off, pad); err != nil {
			return 0, err
		}
		off = pad
		n, err := f.Desc.Encode(buf[off:], r.Values[f.Name])
		if err != nil {
			return 0, fmt.Errorf("pack: struct %s field %s: %w", s.TypeName, f.Name, err)
		}
		off += n
	}
	if !s.Packed {
		target := PadTo(off, s.Align())
		if err := zeroPad(buf, off, target); err != nil {
			return 0, err
		}
		off = target
	}
	return off, nil
}

func zeroPad(buf []byte, from, to int) error {
	if to > len(buf) {
		return ErrShortBuffer
	}
	for i := from; i < to; i++ {
		buf[i] = 0
	}
	return nil
}

func (s *Struct) Decode(buf []byte, lenHint int) (interface{}, int, error) {
	r := NewRecord(s)
	off := 0
	for _, f := range s.Fields {
		off = AlignOffset(off, f.Desc.Align(), s.Packed)
		if off > len(buf) {
			return nil, 0, ErrShortBuffer
		}
		hint := 0
		if f.Refer != "" {
			lv, ok := r.Values[f.Refer]
			if !ok {
				return nil, 0, fmt.Errorf("pack: struct %s: referent %q decoded after field %q", s.TypeName, f.Refer, f.Name)
			}
			hint = int(asUint64(lv))
		}
		v, n, err := f.Desc.Decode(buf[off:], hint)
		if err != nil {
			return nil, 0, fmt.Errorf("pack: struct %s field %s: %w", s.TypeName, f.Name, err)
		}
		r.Values[f.Name] = v
		off += n
	}
	if !s.Packed {
		target := PadTo(off, s.Align())
		if target > len(buf) {
			return nil, 0, ErrShortBuffer
		}
		off = target
	}
	return r, off, nil
}

// coerceLike converts n to the Go representation Desc.Encode expects (the
// same primitive kind as the referent field), so the rewritten length value
// round-trips identically through a later Decode.
func coerceLike(d Descriptor, n uint64) (interface{}, error) {
	p, ok := d.(*Primitive)
	if !ok {
		return n, nil
	}
	switch p.Kind {
	case U8:
		return uint8(n), nil
	case U16:
		return uint16(n), nil
	case U32:
		return uint32(n), nil
	case U64:
		return n, nil
	case I8:
		return int8(n), nil
	case I16:
		return int16(n), nil
	case I32:
		return int32(n), nil
	case I64:
		return int64(n), nil
	default:
		return n, nil
	}
}

func asUint64(v interface{}) uint64 {
	u, _ := toUint64(U64, v)
	return u
}
