package pack

import (
	"errors"
	"fmt"
)

// FixedArray is the Descriptor for `[T; N]`: N elements of Elem with no
// referent length field. Align equals align(Elem); static size is
// N*static_size(Elem).
type FixedArray struct {
	Elem Descriptor
	N    int
}

func (a *FixedArray) Name() string { return fmt.Sprintf("[%s;%d]", a.Elem.Name(), a.N) }
func (a *FixedArray) Align() int { return a.Elem.Align() }
func (a *FixedArray) StaticSize() int {
	return a.N * a.Elem.StaticSize()
}

func (a *FixedArray) elems(v interface{}) []interface{} {
	switch x := v.(type) {
	case []interface{}:
		return x
	default:
		return nil
	}
}

func (a *FixedArray) Size(v interface{}) int {
	elems := a.elems(v)
	total := 0
	for i := 0; i < a.N; i++ {
		var e interface{}
		if i < len(elems) {
			e = elems[i]
		}
		total += a.Elem.Size(e)
	}
	return total
}

func (a *FixedArray) Encode(buf []byte, v interface{}) (int, error) {
	elems := a.elems(v)
	off := 0
	for i := 0; i < a.N; i++ {
		var e interface{}
		if i < len(elems) {
			e = elems[i]
		}
		n, err := a.Elem.Encode(buf[off:], e)
		if err != nil {
			return 0, err
		}
		off += n
	}
	return off, nil
}

func (a *FixedArray) Decode(buf []byte, lenHint int) (interface{}, int, error) {
	out := make([]interface{}, a.N)
	off := 0
	for i := 0; i < a.N; i++ {
		v, n, err := a.Elem.Decode(buf[off:], 0)
		if err != nil {
			return nil, 0, err
		}
		out[i] = v
		off += n
	}
	return out, off, nil
}

// DynArray is the Descriptor for `vec<T>`: a run of Elem whose element
// count is carried by a sibling struct field (the "referent"), not by the
// array itself. Align equals align(Elem); static size is 0.
type DynArray struct {
	Elem Descriptor
}

func (d *DynArray) Name() string { return fmt.Sprintf("vec<%s>", d.Elem.Name()) }
func (d *DynArray) Align() int { return d.Elem.Align() }
func (d *DynArray) StaticSize() int { return 0 }

func (d *DynArray) elems(v interface{}) []interface{} {
	switch x := v.(type) {
	case []interface{}:
		return x
	default:
		return nil
	}
}

func (d *DynArray) Size(v interface{}) int {
	total := 0
	for _, e := range d.elems(v) {
		total += d.Elem.Size(e)
	}
	return total
}

func (d *DynArray) Encode(buf []byte, v interface{}) (int, error) {
	off := 0
	for _, e := range d.elems(v) {
		n, err := d.Elem.Encode(buf[off:], e)
		if err != nil {
			return 0, err
		}
		off += n
	}
	return off, nil
}

// Decode reads exactly lenHint elements, as supplied by the referent
// sibling field the struct decoder already decoded.
func (d *DynArray) Decode(buf []byte, lenHint int) (interface{}, int, error) {
	if lenHint < 0 {
		return nil, 0, ErrShortVector
	}
	out := make([]interface{}, 0, lenHint)
	off := 0
	for i := 0; i < lenHint; i++ {
		v, n, err := d.Elem.Decode(buf[off:], 0)
		if err != nil {
			if errors.Is(err, ErrShortBuffer) {
				return nil, 0, ErrShortVector
			}
			return nil, 0, err
		}
		out = append(out, v)
		off += n
	}
	return out, off, nil
}
