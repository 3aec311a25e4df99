package pack

// EnumVariant binds a named variant to its literal wire value.
type EnumVariant struct {
	Name  string
	Value uint64
}

// EnumValue is the runtime representation of a decoded/encoded enum: the
// matched variant name (or the fallback name) and the raw base-type value.
type EnumValue struct {
	Name       string
	Value      uint64
	IsFallback bool
}

// Enum is the Descriptor for an enum backed by an unsigned base type.
// Unknown values decode into the Fallback variant when one is declared;
// without a fallback, unknown values are decode errors.
type Enum struct {
	TypeName string
	Base     PrimKind // U8, U16 or U32
	Variants []EnumVariant
	Fallback string // variant name, or "" if none declared

	byValue map[uint64]string
	byName  map[string]uint64
}

// NewEnum builds an Enum descriptor and indexes its variants.
func NewEnum(name string, base PrimKind, variants []EnumVariant, fallback string) *Enum {
	e := &Enum{TypeName: name, Base: base, Variants: variants, Fallback: fallback}
	e.byValue = make(map[uint64]string, len(variants))
	e.byName = make(map[string]uint64, len(variants))
	for _, v := range variants {
		e.byValue[v.Value] = v.Name
		e.byName[v.Name] = v.Value
	}
	return e
}

func (e *Enum) Name() string { return e.TypeName }
func (e *Enum) Align() int { return e.Base.size() }
func (e *Enum) StaticSize() int { return e.Base.size() }
func (e *Enum) Size(v interface{}) int { return e.Base.size() }

// Zero returns the enum's default value: its first declared variant, or the
// fallback carrying 0 if there are no named variants.
func (e *Enum) Zero() EnumValue {
	if len(e.Variants) > 0 {
		return EnumValue{Name: e.Variants[0].Name, Value: e.Variants[0].Value}
	}
	return EnumValue{Name: e.Fallback, Value: 0, IsFallback: e.Fallback != ""}
}

// ByName returns the EnumValue for a named variant, usable when building a
// message by hand (e.g. enum.ByName("B")).
func (e *Enum) ByName(name string) (EnumValue, bool) {
	v, ok := e.byName[name]
	if !ok {
		return EnumValue{}, false
	}
	return EnumValue{Name: name, Value: v}, true
}

func (e *Enum) Encode(buf []byte, v interface{}) (int, error) {
	ev, ok := v.(EnumValue)
	if !ok {
		ev = e.Zero()
	}
	prim := NewPrimitive(e.Base)
	return prim.Encode(buf, ev.Value)
}

func (e *Enum) Decode(buf []byte, lenHint int) (interface{}, int, error) {
	prim := NewPrimitive(e.Base)
	raw, n, err := prim.Decode(buf, 0)
	if err != nil {
		return nil, 0, err
	}
	value := asUint64(raw)
	if name, ok := e.byValue[value]; ok {
		return EnumValue{Name: name, Value: value}, n, nil
	}
	if e.Fallback != "" {
		return EnumValue{Name: e.Fallback, Value: value, IsFallback: true}, n, nil
	}
	return nil, 0, &EnumMismatchError{Type: e.TypeName, Value: value}
}
