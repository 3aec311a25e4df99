package schema

import (
	"fmt"

	"github.com/packetdp/vppclient/pack"
)

// MessageDef is one catalog entry for a message type: its pack layout, its
// compile-time name and CRC, and whether it carries a `retval` status
// field.
type MessageDef struct {
	Name      string
	CRC       string
	Struct    *pack.Struct
	HasRetval bool
}

// NewRecord returns a fresh Record for this message; fields left unset are
// filled with their zero values at encode time.
func (m *MessageDef) NewRecord() *pack.Record {
	return pack.NewRecord(m.Struct)
}

// ServiceDef binds a request message name to its reply type name and
// whether it is a streaming (request/stream) service.
type ServiceDef struct {
	Request string
	Reply   string
	Stream  bool
}

// Catalog is the schema-driven message catalog: every resolvable type
// descriptor, every message definition, every service binding, and the
// error-code table, reified from the JSON API documents at catalog-build
// time so the pack engine can walk it at run time.
type Catalog struct {
	Types      map[string]pack.Descriptor
	Messages   map[string]*MessageDef
	Services   map[string]*ServiceDef
	ErrorCodes map[int32]string
}

// Lookup returns the error text registered for a retval code, or "" if
// unknown.
func (c *Catalog) Lookup(code int32) string { return c.ErrorCodes[code] }

type builder struct {
	types   map[string]TypeDoc
	unions  map[string]TypeDoc
	enums   map[string]EnumDoc
	aliases map[string]AliasDoc

	resolved  map[string]pack.Descriptor
	resolving map[string]bool
}

func primitiveDescriptor(name string) (pack.Descriptor, bool) {
	switch name {
	case "u8":
		return pack.NewPrimitive(pack.U8), true
	case "u16":
		return pack.NewPrimitive(pack.U16), true
	case "u32":
		return pack.NewPrimitive(pack.U32), true
	case "u64":
		return pack.NewPrimitive(pack.U64), true
	case "i8":
		return pack.NewPrimitive(pack.I8), true
	case "i16":
		return pack.NewPrimitive(pack.I16), true
	case "i32":
		return pack.NewPrimitive(pack.I32), true
	case "i64":
		return pack.NewPrimitive(pack.I64), true
	case "f32", "f32le":
		return pack.NewPrimitive(pack.F32), true
	case "f64", "f64le":
		return pack.NewPrimitive(pack.F64), true
	case "bool":
		return pack.NewPrimitive(pack.Bool), true
	case "string":
		return pack.NullTermString{}, true
	}
	return nil, false
}

func primitiveKind(name string) (pack.PrimKind, error) {
	d, ok := primitiveDescriptor(name)
	if !ok {
		return 0, fmt.Errorf("schema: %q is not a valid enum base type", name)
	}
	p, ok := d.(*pack.Primitive)
	if !ok {
		return 0, fmt.Errorf("schema: %q is not an integer base type", name)
	}
	return p.Kind, nil
}

// Build parses already-collected documents into a Catalog. Duplicate
// type/union/enum/alias names across documents are idempotently skipped:
// the first definition encountered wins.
func Build(docs []*Document) (*Catalog, error) {
	b := &builder{
		types:     map[string]TypeDoc{},
		unions:    map[string]TypeDoc{},
		enums:     map[string]EnumDoc{},
		aliases:   map[string]AliasDoc{},
		resolved:  map[string]pack.Descriptor{},
		resolving: map[string]bool{},
	}

	messages := []TypeDoc{}
	services := map[string]*ServiceDef{}

	for _, doc := range docs {
		for _, t := range doc.Types {
			if _, ok := b.types[t.Name]; !ok {
				b.types[t.Name] = t
			}
		}
		for _, u := range doc.Unions {
			if _, ok := b.unions[u.Name]; !ok {
				b.unions[u.Name] = u
			}
		}
		for _, e := range append(append([]EnumDoc{}, doc.Enums...), doc.EnumFlags...) {
			if _, ok := b.enums[e.Name]; !ok {
				b.enums[e.Name] = e
			}
		}
		for name, a := range doc.Aliases {
			if _, ok := b.aliases[name]; !ok {
				b.aliases[name] = a
			}
		}
		messages = append(messages, doc.Messages...)
		for name, svc := range doc.Services {
			if _, ok := services[name]; !ok {
				services[name] = &ServiceDef{Request: name, Reply: svc.Reply, Stream: svc.Stream}
			}
		}
	}

	cat := &Catalog{
		Types:    map[string]pack.Descriptor{},
		Messages: map[string]*MessageDef{},
		Services: services,
	}

	for name := range b.types {
		d, err := b.resolve(name)
		if err != nil {
			return nil, err
		}
		cat.Types[name] = d
	}
	for name := range b.unions {
		d, err := b.resolve(name)
		if err != nil {
			return nil, err
		}
		cat.Types[name] = d
	}
	for name := range b.enums {
		d, err := b.resolve(name)
		if err != nil {
			return nil, err
		}
		cat.Types[name] = d
	}
	for name := range b.aliases {
		d, err := b.resolve(name)
		if err != nil {
			return nil, err
		}
		cat.Types[name] = d
	}

	for _, m := range messages {
		if _, ok := cat.Messages[m.Name]; ok {
			continue
		}
		s, err := b.buildStruct(m.Name, m.Fields)
		if err != nil {
			return nil, fmt.Errorf("schema: message %s: %w", m.Name, err)
		}
		hasRetval := false
		for _, f := range m.Fields {
			if f.Name == "retval" {
				hasRetval = true
			}
		}
		cat.Messages[m.Name] = &MessageDef{Name: m.Name, CRC: m.CRC(), Struct: s, HasRetval: hasRetval}
	}

	return cat, nil
}

// resolve returns the Descriptor for a named type, resolving it from the
// registry (types, unions, enums, aliases) or as a primitive, memoizing the
// result and detecting cycles.
func (b *builder) resolve(name string) (pack.Descriptor, error) {
	if d, ok := b.resolved[name]; ok {
		return d, nil
	}
	if d, ok := primitiveDescriptor(name); ok {
		b.resolved[name] = d
		return d, nil
	}
	if b.resolving[name] {
		return nil, fmt.Errorf("schema: cyclic type reference involving %q", name)
	}
	b.resolving[name] = true
	defer delete(b.resolving, name)

	if t, ok := b.types[name]; ok {
		s, err := b.buildStruct(name, t.Fields)
		if err != nil {
			return nil, err
		}
		b.resolved[name] = s
		return s, nil
	}
	if u, ok := b.unions[name]; ok {
		members := make([]pack.UnionMember, 0, len(u.Fields))
		for _, f := range u.Fields {
			d, err := b.fieldDescriptor(f)
			if err != nil {
				return nil, fmt.Errorf("schema: union %s member %s: %w", name, f.Name, err)
			}
			members = append(members, pack.UnionMember{Name: Rename(f.Name), Desc: d})
		}
		un := pack.NewUnion(name, members)
		b.resolved[name] = un
		return un, nil
	}
	if e, ok := b.enums[name]; ok {
		base, err := primitiveKind(e.EnumType)
		if err != nil {
			return nil, fmt.Errorf("schema: enum %s: %w", name, err)
		}
		variants := make([]pack.EnumVariant, 0, len(e.Entries))
		for _, ent := range e.Entries {
			variants = append(variants, pack.EnumVariant{Name: ent.Name, Value: ent.Value})
		}
		fallback := e.Fallback
		if fallback == "" {
			fallback = "Mismatch"
		}
		en := pack.NewEnum(name, base, variants, fallback)
		b.resolved[name] = en
		return en, nil
	}
	if a, ok := b.aliases[name]; ok {
		base, err := b.resolve(a.Type)
		if err != nil {
			return nil, fmt.Errorf("schema: alias %s: %w", name, err)
		}
		var d pack.Descriptor = base
		if a.Length > 0 {
			d = &pack.FixedArray{Elem: base, N: a.Length}
		}
		b.resolved[name] = d
		return d, nil
	}
	return nil, fmt.Errorf("schema: unknown type %q", name)
}

func (b *builder) fieldDescriptor(f Field) (pack.Descriptor, error) {
	switch {
	case f.IsNullString():
		return pack.NullTermString{}, nil
	case f.Type == "string" && f.IsFixedArray():
		return pack.FixedString{N: f.Len}, nil
	}
	base, err := b.resolve(f.Type)
	if err != nil {
		return nil, err
	}
	switch {
	case f.IsFixedArray():
		return &pack.FixedArray{Elem: base, N: f.Len}, nil
	case f.IsDynArray():
		return &pack.DynArray{Elem: base}, nil
	default:
		return base, nil
	}
}

// buildStruct reifies a field list into a pack.Struct. Schema-derived types
// and messages are always packed; the dataplane's wire layout carries no
// padding between fields.
func (b *builder) buildStruct(name string, fields []Field) (*pack.Struct, error) {
	pf := make([]pack.Field, 0, len(fields))
	for _, f := range fields {
		d, err := b.fieldDescriptor(f)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		refer := f.Refer
		if refer != "" {
			refer = Rename(refer)
		}
		pf = append(pf, pack.Field{Name: Rename(f.Name), Desc: d, Refer: refer})
	}
	return pack.NewStruct(name, true, pf), nil
}
