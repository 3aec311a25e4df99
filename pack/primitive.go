package pack

import (
	"encoding/binary"
	"fmt"
	"math"
)

// PrimKind names one scalar wire type.
type PrimKind int

// Primitive kinds supported by the engine. Multibyte kinds are encoded big
// endian; Bool is a single 0/1 byte.
const (
	U8 PrimKind = iota
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
	Bool
)

func (k PrimKind) size() int {
	switch k {
	case U8, I8, Bool:
		return 1
	case U16, I16:
		return 2
	case U32, I32, F32:
		return 4
	case U64, I64, F64:
		return 8
	}
	panic("pack: unknown PrimKind")
}

func (k PrimKind) String() string {
	switch k {
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Bool:
		return "bool"
	}
	return "unknown"
}

// Primitive is the Descriptor for integers, floats and bool. Alignment
// equals the primitive's size, except Bool which always aligns to 1.
type Primitive struct {
	Kind PrimKind
}

// NewPrimitive returns the Descriptor for the given primitive kind.
func NewPrimitive(k PrimKind) *Primitive { return &Primitive{Kind: k} }

func (p *Primitive) Name() string { return p.Kind.String() }

func (p *Primitive) Align() int {
	if p.Kind == Bool {
		return 1
	}
	return p.Kind.size()
}

func (p *Primitive) StaticSize() int { return p.Kind.size() }

func (p *Primitive) Size(v interface{}) int { return p.Kind.size() }

// toUint64 coerces any Go numeric representation used by callers into a
// uint64 bit pattern suitable for the wire encoding of the primitive's kind.
func toUint64(kind PrimKind, v interface{}) (uint64, error) {
	switch x := v.(type) {
	case uint64:
		return x, nil
	case uint32:
		return uint64(x), nil
	case uint16:
		return uint64(x), nil
	case uint8:
		return uint64(x), nil
	case int64:
		return uint64(x), nil
	case int32:
		return uint64(uint32(x)), nil
	case int16:
		return uint64(uint16(x)), nil
	case int8:
		return uint64(uint8(x)), nil
	case int:
		return uint64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case float32:
		return uint64(math.Float32bits(x)), nil
	case float64:
		return math.Float64bits(x), nil
	default:
		return 0, fmt.Errorf("pack: cannot encode %T as %s", v, kind)
	}
}

func (p *Primitive) Encode(buf []byte, v interface{}) (int, error) {
	n := p.Kind.size()
	if err := needBytes(buf, n); err != nil {
		return 0, err
	}
	switch p.Kind {
	case F32:
		var f float32
		switch x := v.(type) {
		case float32:
			f = x
		case float64:
			f = float32(x)
		}
		binary.BigEndian.PutUint32(buf, math.Float32bits(f))
		return 4, nil
	case F64:
		var f float64
		switch x := v.(type) {
		case float64:
			f = x
		case float32:
			f = float64(x)
		}
		binary.BigEndian.PutUint64(buf, math.Float64bits(f))
		return 8, nil
	case Bool:
		b, _ := v.(bool)
		if b {
			buf[0] = 1
		} else {
			buf[0] = 0
		}
		return 1, nil
	}
	u, err := toUint64(p.Kind, v)
	if err != nil {
		return 0, err
	}
	switch n {
	case 1:
		buf[0] = byte(u)
	case 2:
		binary.BigEndian.PutUint16(buf, uint16(u))
	case 4:
		binary.BigEndian.PutUint32(buf, uint32(u))
	case 8:
		binary.BigEndian.PutUint64(buf, u)
	}
	return n, nil
}

func (p *Primitive) Decode(buf []byte, lenHint int) (interface{}, int, error) {
	n := p.Kind.size()
	if err := needBytes(buf, n); err != nil {
		return nil, 0, err
	}
	switch p.Kind {
	case Bool:
		return buf[0] != 0, 1, nil
	case U8:
		return buf[0], 1, nil
	case I8:
		return int8(buf[0]), 1, nil
	case U16:
		return binary.BigEndian.Uint16(buf), 2, nil
	case I16:
		return int16(binary.BigEndian.Uint16(buf)), 2, nil
	case U32:
		return binary.BigEndian.Uint32(buf), 4, nil
	case I32:
		return int32(binary.BigEndian.Uint32(buf)), 4, nil
	case U64:
		return binary.BigEndian.Uint64(buf), 8, nil
	case I64:
		return int64(binary.BigEndian.Uint64(buf)), 8, nil
	case F32:
		return math.Float32frombits(binary.BigEndian.Uint32(buf)), 4, nil
	case F64:
		return math.Float64frombits(binary.BigEndian.Uint64(buf)), 8, nil
	}
	panic("pack: unknown PrimKind")
}
