package schema

import (
	"strings"
	"testing"

	"github.com/packetdp/vppclient/pack"
)

const testDoc = `{
  "types": [
    ["ip4_address", ["u8", "as_u8", 4]]
  ],
  "enums": [
    ["mtu_proto", ["TCP", 0], ["UDP", 1], {"enumtype": "u8", "fallback": "Mismatch"}]
  ],
  "unions": [
    ["address_union", ["u32", "ipv4"], ["ip4_address", "ipv6_hack"]]
  ],
  "aliases": {
    "vl_api_ip4_address_t": {"type": "u8", "length": 4}
  },
  "messages": [
    ["acl_add",
      ["u16", "_vl_msg_id"],
      ["u32", "client_index"],
      ["u32", "context"],
      ["u32", "n_rules_len"],
      ["u8", "n_rules", 0, "n_rules_len"],
      {"crc": "0xdeadbeef"}],
    ["acl_add_reply",
      ["u16", "_vl_msg_id"],
      ["u32", "context"],
      ["i32", "retval"],
      {"crc": "0xfeedface"}]
  ],
  "services": {
    "acl_add": {"reply": "acl_add_reply"}
  }
}`

func mustBuild(t *testing.T, doc string) *Catalog {
	t.Helper()
	d, err := ParseDocument([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cat, err := Build([]*Document{d})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return cat
}

func TestBuildStructType(t *testing.T) {
	cat := mustBuild(t, testDoc)
	ip4, ok := cat.Types["ip4_address"]
	if !ok {
		t.Fatal("missing ip4_address type")
	}
	if ip4.StaticSize() != 4 {
		t.Fatalf("ip4_address static size = %d, want 4", ip4.StaticSize())
	}
}

func TestBuildEnumFallback(t *testing.T) {
	cat := mustBuild(t, testDoc)
	e, ok := cat.Types["mtu_proto"].(*pack.Enum)
	if !ok {
		t.Fatal("mtu_proto is not an enum descriptor")
	}
	buf := []byte{42}
	v, _, err := e.Decode(buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	ev := v.(pack.EnumValue)
	if !ev.IsFallback || ev.Name != "Mismatch" {
		t.Fatalf("expected fallback, got %+v", ev)
	}
}

func TestBuildUnion(t *testing.T) {
	cat := mustBuild(t, testDoc)
	u, ok := cat.Types["address_union"].(*pack.Union)
	if !ok {
		t.Fatal("address_union is not a union descriptor")
	}
	if u.StaticSize() != 4 {
		t.Fatalf("union static size = %d, want 4 (widest member is ip4_address)", u.StaticSize())
	}
}

func TestBuildAlias(t *testing.T) {
	cat := mustBuild(t, testDoc)
	a := cat.Types["vl_api_ip4_address_t"]
	if a.StaticSize() != 4 {
		t.Fatalf("alias static size = %d, want 4", a.StaticSize())
	}
}

func TestBuildMessageAndService(t *testing.T) {
	cat := mustBuild(t, testDoc)
	msg, ok := cat.Messages["acl_add"]
	if !ok {
		t.Fatal("missing acl_add message")
	}
	if msg.CRC != "0xdeadbeef" {
		t.Fatalf("crc = %q", msg.CRC)
	}
	reply := cat.Messages["acl_add_reply"]
	if !reply.HasRetval {
		t.Fatal("acl_add_reply should carry retval")
	}

	svc, ok := cat.Services["acl_add"]
	if !ok || svc.Reply != "acl_add_reply" || svc.Stream {
		t.Fatalf("unexpected service: %+v", svc)
	}

	r := msg.NewRecord()
	r.SetUint16("_vl_msg_id", 100).SetUint32("client_index", 7).SetUint32("context", 1)
	r.SetVec("n_rules", []interface{}{uint8(1), uint8(2)})

	buf := make([]byte, msg.Struct.Size(r))
	n, err := msg.Struct.Encode(buf, r)
	if err != nil {
		t.Fatal(err)
	}
	dv, dn, err := msg.Struct.Decode(buf[:n], 0)
	if err != nil {
		t.Fatal(err)
	}
	if dn != n {
		t.Fatalf("decode consumed %d, want %d", dn, n)
	}
	dr := dv.(*pack.Record)
	if dr.GetUint32("n_rules_len") != 2 {
		t.Fatalf("n_rules_len = %d, want 2 (rewritten from vec length)", dr.GetUint32("n_rules_len"))
	}
}

func TestReservedWordRename(t *testing.T) {
	if Rename("type") != "_type" {
		t.Fatalf("Rename(type) = %q", Rename("type"))
	}
	if Rename("context") != "context" {
		t.Fatalf("Rename(context) = %q", Rename("context"))
	}
}

func TestParseErrorCodes(t *testing.T) {
	header := `
/* comment */
_(NOERROR, 0, "No error")
_(EINVAL, -1, "Invalid argument")
`
	codes, err := ParseErrorCodes(strings.NewReader(header))
	if err != nil {
		t.Fatal(err)
	}
	if codes[0] != "No error" || codes[-1] != "Invalid argument" {
		t.Fatalf("unexpected codes: %+v", codes)
	}
}
