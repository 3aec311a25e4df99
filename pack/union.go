package pack

import "fmt"

// UnionMember names one alternative a Union can be projected as.
type UnionMember struct {
	Name string
	Desc Descriptor
}

// UnionValue is the runtime representation of a union: an opaque byte array
// sized to the widest member, exactly as wide regardless of which
// alternative was last written.
type UnionValue struct {
	Raw []byte
}

// Union is the Descriptor for an untagged union: a fixed-size byte array
// whose size equals the widest member's static size and whose alignment
// equals the widest member's alignment. A union carries no discriminator of
// its own; callers track which alternative is live via a sibling field.
type Union struct {
	TypeName string
	Members  []UnionMember

	byName     map[string]Descriptor
	staticSize int
	align      int
}

// NewUnion builds a Union descriptor sized to its widest member.
func NewUnion(name string, members []UnionMember) *Union {
	u := &Union{TypeName: name, Members: members, byName: make(map[string]Descriptor, len(members))}
	for _, m := range members {
		u.byName[m.Name] = m.Desc
		if s := m.Desc.StaticSize(); s > u.staticSize {
			u.staticSize = s
		}
		if a := m.Desc.Align(); a > u.align {
			u.align = a
		}
	}
	if u.align == 0 {
		u.align = 1
	}
	return u
}

func (u *Union) Name() string { return u.TypeName }
func (u *Union) Align() int { return u.align }
func (u *Union) StaticSize() int { return u.staticSize }
func (u *Union) Size(v interface{}) int { return u.staticSize }

// Zero returns an all-zero union value of the correct width.
func (u *Union) Zero() *UnionValue {
	return &UnionValue{Raw: make([]byte, u.staticSize)}
}

// From constructs a UnionValue by packing value as the named alternative
// and retaining the resulting bytes, zero-padded to the union's full width.
func (u *Union) From(member string, value interface{}) (*UnionValue, error) {
	desc, ok := u.byName[member]
	if !ok {
		return nil, fmt.Errorf("pack: union %s has no member %q", u.TypeName, member)
	}
	buf := make([]byte, u.staticSize)
	if _, err := desc.Encode(buf, value); err != nil {
		return nil, err
	}
	return &UnionValue{Raw: buf}, nil
}

// As projects the union's retained bytes as the named alternative.
func (u *Union) As(uv *UnionValue, member string) (interface{}, error) {
	desc, ok := u.byName[member]
	if !ok {
		return nil, fmt.Errorf("pack: union %s has no member %q", u.TypeName, member)
	}
	v, _, err := desc.Decode(uv.Raw, 0)
	return v, err
}

func (u *Union) Encode(buf []byte, v interface{}) (int, error) {
	uv, ok := v.(*UnionValue)
	if !ok || uv == nil {
		uv = u.Zero()
	}
	if err := needBytes(buf, u.staticSize); err != nil {
		return 0, err
	}
	n := copy(buf, uv.Raw)
	for ; n < u.staticSize; n++ {
		buf[n] = 0
	}
	return u.staticSize, nil
}

func (u *Union) Decode(buf []byte, lenHint int) (interface{}, int, error) {
	if err := needBytes(buf, u.staticSize); err != nil {
		return nil, 0, err
	}
	raw := make([]byte, u.staticSize)
	copy(raw, buf[:u.staticSize])
	return &UnionValue{Raw: raw}, u.staticSize, nil
}
