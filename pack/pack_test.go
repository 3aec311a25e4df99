package pack

import (
	"bytes"
	"testing"

	"github.com/go-test/deep"
)

func TestStructLayoutNonPacked(t *testing.T) {
	s := NewStruct("t1", false, []Field{
		{Name: "a", Desc: NewPrimitive(U8)},
		{Name: "b", Desc: NewPrimitive(U16)},
		{Name: "c", Desc: NewPrimitive(U32)},
	})
	r := NewRecord(s)
	r.SetUint8("a", 1)
	r.SetUint16("b", 2)
	r.SetUint32("c", 3)

	buf := make([]byte, s.Size(r))
	n, err := s.Encode(buf, r)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x01, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x03}
	if !bytes.Equal(buf[:n], want) {
		t.Fatalf("got % x want % x", buf[:n], want)
	}

	dv, dn, err := s.Decode(buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if dn != n {
		t.Fatalf("decode consumed %d want %d", dn, n)
	}
	dr := dv.(*Record)
	if dr.GetUint8("a") != 1 || dr.GetUint16("b") != 2 || dr.GetUint32("c") != 3 {
		t.Fatalf("round trip mismatch: %+v", dr.Values)
	}
}

func TestStructLayoutPacked(t *testing.T) {
	s := NewStruct("t1packed", true, []Field{
		{Name: "a", Desc: NewPrimitive(U8)},
		{Name: "b", Desc: NewPrimitive(U16)},
		{Name: "c", Desc: NewPrimitive(U32)},
	})
	r := NewRecord(s)
	r.SetUint8("a", 1).SetUint16("b", 2).SetUint32("c", 3)

	buf := make([]byte, s.Size(r))
	n, err := s.Encode(buf, r)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x01, 0x00, 0x02, 0x00, 0x00, 0x00, 0x03}
	if !bytes.Equal(buf[:n], want) {
		t.Fatalf("got % x want % x", buf[:n], want)
	}
	if n != s.StaticSize() {
		t.Fatalf("packed encode len %d != static size %d", n, s.StaticSize())
	}
}

func TestDynArrayReferent(t *testing.T) {
	s := NewStruct("withvec", true, []Field{
		{Name: "a", Desc: FixedString{N: 4}},
		{Name: "b", Desc: &FixedArray{Elem: NewPrimitive(U8), N: 2}},
		{Name: "c_len", Desc: NewPrimitive(U32)},
		{Name: "c", Desc: &DynArray{Elem: NewPrimitive(U8)}, Refer: "c_len"},
	})
	r := NewRecord(s)
	r.SetString("a", "ab")
	r.Set("b", []interface{}{uint8(1), uint8(2)})
	r.SetVec("c", []interface{}{uint8(4), uint8(5), uint8(6)})

	buf := make([]byte, s.Size(r))
	n, err := s.Encode(buf, r)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x61, 0x62, 0x00, 0x00, 0x01, 0x02, 0x00, 0x00, 0x00, 0x03, 0x04, 0x05, 0x06}
	if !bytes.Equal(buf[:n], want) {
		t.Fatalf("got % x want % x", buf[:n], want)
	}

	dv, _, err := s.Decode(buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	dr := dv.(*Record)
	if dr.GetUint32("c_len") != 3 {
		t.Fatalf("c_len = %d want 3", dr.GetUint32("c_len"))
	}
	got := dr.GetVec("c")
	want2 := []interface{}{uint8(4), uint8(5), uint8(6)}
	if diff := deep.Equal(got, want2); diff != nil {
		t.Fatalf("vec mismatch: %v", diff)
	}
}

func TestEnumFallback(t *testing.T) {
	e := NewEnum("color", U32, []EnumVariant{
		{Name: "A", Value: 0},
		{Name: "B", Value: 1},
		{Name: "C", Value: 2},
	}, "Mismatch")

	buf := make([]byte, 4)
	a, _ := e.ByName("A")
	n, err := e.Encode(buf, a)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf[:n], []byte{0, 0, 0, 0}) {
		t.Fatalf("A encoded as % x", buf[:n])
	}

	// Unknown discriminant decodes to the fallback, never an error.
	unknownBuf := []byte{0, 0, 0, 42}
	dv, _, err := e.Decode(unknownBuf, 0)
	if err != nil {
		t.Fatal(err)
	}
	ev := dv.(EnumValue)
	if !ev.IsFallback || ev.Name != "Mismatch" || ev.Value != 42 {
		t.Fatalf("unexpected fallback decode: %+v", ev)
	}
}

func TestEnumNoFallbackErrors(t *testing.T) {
	e := NewEnum("strict", U8, []EnumVariant{{Name: "A", Value: 0}}, "")
	_, _, err := e.Decode([]byte{9}, 0)
	if err == nil {
		t.Fatal("expected enum mismatch error")
	}
	if _, ok := err.(*EnumMismatchError); !ok {
		t.Fatalf("got %T, want *EnumMismatchError", err)
	}
}

func TestUnionIPv4IPv6(t *testing.T) {
	u := NewUnion("address", []UnionMember{
		{Name: "ipv4", Desc: NewPrimitive(U32)},
		{Name: "ipv6", Desc: &FixedArray{Elem: NewPrimitive(U32), N: 4}},
	})
	if u.StaticSize() != 16 {
		t.Fatalf("union static size = %d, want 16", u.StaticSize())
	}
	uv, err := u.From("ipv4", uint32(10))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(uv.Raw[:4], []byte{0, 0, 0, 0x0A}) {
		t.Fatalf("ipv4 bytes = % x", uv.Raw[:4])
	}
	for _, b := range uv.Raw[4:] {
		if b != 0 {
			t.Fatalf("trailing bytes not zero: % x", uv.Raw)
		}
	}

	projected, err := u.As(uv, "ipv4")
	if err != nil {
		t.Fatal(err)
	}
	if projected.(uint32) != 10 {
		t.Fatalf("projected ipv4 = %v", projected)
	}
}

func TestNullTerminatedStringRoundTrip(t *testing.T) {
	s := NullTermString{}
	buf := make([]byte, s.Size("hello"))
	n, err := s.Encode(buf, "hello")
	if err != nil {
		t.Fatal(err)
	}
	if buf[n-1] != 0 {
		t.Fatalf("missing trailing zero")
	}
	v, consumed, err := s.Decode(buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != n || v.(string) != "hello" {
		t.Fatalf("round trip failed: %v %d", v, consumed)
	}
}

func TestNullTerminatedStringMissingTerminator(t *testing.T) {
	s := NullTermString{}
	_, _, err := s.Decode([]byte("no terminator"), 0)
	if err != ErrMissingTerminator {
		t.Fatalf("got %v, want ErrMissingTerminator", err)
	}
}

func TestFixedStringPadAndTrim(t *testing.T) {
	fs := FixedString{N: 8}
	buf := make([]byte, 8)
	if _, err := fs.Encode(buf, "vpp"); err != nil {
		t.Fatal(err)
	}
	want := []byte{'v', 'p', 'p', 0, 0, 0, 0, 0}
	if !bytes.Equal(buf, want) {
		t.Fatalf("got % x want % x", buf, want)
	}
	v, n, err := fs.Decode(buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 8 || v.(string) != "vpp" {
		t.Fatalf("decode got %v %d", v, n)
	}
}

func TestShortBufferErrors(t *testing.T) {
	p := NewPrimitive(U32)
	_, _, err := p.Decode([]byte{1, 2}, 0)
	if err != ErrShortBuffer {
		t.Fatalf("got %v, want ErrShortBuffer", err)
	}
	_, err2 := p.Encode(make([]byte, 2), uint32(1))
	if err2 != ErrShortBuffer {
		t.Fatalf("got %v, want ErrShortBuffer", err2)
	}
}
