package pack

// Record is the generic runtime representation of a struct/message value:
// an ordered set of field values keyed by name, honoring the field order of
// its Struct descriptor. Typed access goes through the name-keyed
// Get*/Set* accessors below rather than per-message Go types, so the same
// engine serves every message shape in the catalog.
type Record struct {
	Desc   *Struct
	Values map[string]interface{}
}

// NewRecord returns an empty Record for desc with no fields set; Encode
// fills in zero values for anything left unset (see fillDefaults).
func NewRecord(desc *Struct) *Record {
	return &Record{Desc: desc, Values: make(map[string]interface{}, len(desc.Fields))}
}

// fillDefaults fills any field that has not been explicitly set with its
// descriptor's zero value, so callers may build a message by setting only
// the fields they care about.
func (r *Record) fillDefaults() {
	for _, f := range r.Desc.Fields {
		if _, ok := r.Values[f.Name]; ok {
			continue
		}
		r.Values[f.Name] = zeroValue(f.Desc)
	}
}

func zeroValue(d Descriptor) interface{} {
	switch x := d.(type) {
	case *Primitive:
		switch x.Kind {
		case Bool:
			return false
		case F32:
			return float32(0)
		case F64:
			return float64(0)
		default:
			return uint64(0)
		}
	case NullTermString, FixedString:
		return ""
	case *FixedArray:
		out := make([]interface{}, x.N)
		for i := range out {
			out[i] = zeroValue(x.Elem)
		}
		return out
	case *DynArray:
		return []interface{}{}
	case *Struct:
		r := NewRecord(x)
		r.fillDefaults()
		return r
	case *Enum:
		return x.Zero()
	case *Union:
		return x.Zero()
	default:
		return nil
	}
}

// Get returns the raw value stored for name, or nil if unset.
func (r *Record) Get(name string) interface{} { return r.Values[name] }

// Set stores v for name; encoding uses whatever representation v already
// carries, coercing it to the field's wire type.
func (r *Record) Set(name string, v interface{}) *Record {
	r.Values[name] = v
	return r
}

// GetUint64/GetUint32/... and the matching Set* accessors below give
// generated-style call sites (msg.GetUint32("context")) the same feel as
// macro-generated field accessors, without per-message Go types.

func (r *Record) GetUint64(name string) uint64 { return asUint64(r.Values[name]) }
func (r *Record) SetUint64(name string, v uint64) *Record { return r.Set(name, v) }

func (r *Record) GetUint32(name string) uint32 { return uint32(asUint64(r.Values[name])) }
func (r *Record) SetUint32(name string, v uint32) *Record { return r.Set(name, v) }

func (r *Record) GetUint16(name string) uint16 { return uint16(asUint64(r.Values[name])) }
func (r *Record) SetUint16(name string, v uint16) *Record { return r.Set(name, v) }

func (r *Record) GetUint8(name string) uint8 { return uint8(asUint64(r.Values[name])) }
func (r *Record) SetUint8(name string, v uint8) *Record { return r.Set(name, v) }

func (r *Record) GetInt32(name string) int32 { return int32(asUint64(r.Values[name])) }
func (r *Record) SetInt32(name string, v int32) *Record { return r.Set(name, v) }

func (r *Record) GetString(name string) string {
	s, _ := r.Values[name].(string)
	return s
}
func (r *Record) SetString(name string, v string) *Record { return r.Set(name, v) }

func (r *Record) GetVec(name string) []interface{} {
	v, _ := r.Values[name].([]interface{})
	return v
}
func (r *Record) SetVec(name string, v []interface{}) *Record { return r.Set(name, v) }

func (r *Record) GetStruct(name string) *Record {
	v, _ := r.Values[name].(*Record)
	return v
}

func (r *Record) GetEnum(name string) EnumValue {
	v, _ := r.Values[name].(EnumValue)
	return v
}

func (r *Record) GetUnion(name string) *UnionValue {
	v, _ := r.Values[name].(*UnionValue)
	return v
}
