package stats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

const testBase = 0x10000

func putU32(buf []byte, off int, v uint32) { binary.LittleEndian.PutUint32(buf[off:off+4], v) }
func putU64(buf []byte, off int, v uint64) { binary.LittleEndian.PutUint64(buf[off:off+8], v) }

func putEntry(buf []byte, idx int, typ uint32, raw uint64, name string) {
	base := 48 + idx*entrySize
	putU32(buf, base, typ)
	putU64(buf, base+8, raw)
	copy(buf[base+16:base+16+nameWidth], name)
}

func putString(buf []byte, off int, s string) {
	copy(buf[off:], s)
}

// buildRegion constructs a synthetic stats segment byte-for-byte, playing
// the role a real dataplane's shared memory segment would: a header, a
// directory vector of 4 entries ("/if/names", "/if/rx", "/if/tx", "/acl0"),
// each resolved through a double pointer indirection, terminating in
// inline counter/name vectors.
func buildRegion(t *testing.T, epoch, inProgress uint64) []byte {
	t.Helper()
	buf := make([]byte, 900)

	putU64(buf, 0, ExpectedVersion)
	putU64(buf, 8, testBase)
	putU64(buf, 16, epoch)
	putU64(buf, 24, inProgress)
	putU64(buf, 32, testBase+48) // directory_vector

	putU32(buf, 40, 4) // 4 directory entries
	putEntry(buf, 0, dirTypeNameVector, testBase+624, "/if/names")
	putEntry(buf, 1, dirTypeCombined, testBase+632, "/if/rx")
	putEntry(buf, 2, dirTypeCombined, testBase+640, "/if/tx")
	putEntry(buf, 3, dirTypeCombined, testBase+648, "/acl0")

	putU64(buf, 624, testBase+664) // P1 -> names vector
	putU64(buf, 632, testBase+688) // Q1 -> rx vector
	putU64(buf, 640, testBase+728) // T1 -> tx vector
	putU64(buf, 648, testBase+768) // A1 -> acl vector

	putU32(buf, 656, 2) // names count
	putU64(buf, 664, testBase+832)
	putU64(buf, 672, testBase+840)

	putU32(buf, 680, 2) // rx count
	putU64(buf, 688, 100) // eth0 rx packets
	putU64(buf, 696, 2000) // eth0 rx bytes
	putU64(buf, 704, 300) // eth1 rx packets
	putU64(buf, 712, 4000) // eth1 rx bytes

	putU32(buf, 720, 2) // tx count
	putU64(buf, 728, 50)
	putU64(buf, 736, 900)
	putU64(buf, 744, 60)
	putU64(buf, 752, 1200)

	putU32(buf, 760, 4) // acl count (includes the reserved sentinel element)
	putU64(buf, 768, 0xdead) // reserved/sentinel slot (index 0)
	putU64(buf, 776, 0xbeef)
	putU64(buf, 784, 10)
	putU64(buf, 792, 1000)
	putU64(buf, 800, 20)
	putU64(buf, 808, 2000)
	putU64(buf, 816, 30)
	putU64(buf, 824, 3000)

	putString(buf, 832, "eth0")
	putString(buf, 840, "eth1")

	return buf
}

func TestNewRegionValidatesVersion(t *testing.T) {
	buf := make([]byte, headerSize)
	putU64(buf, 0, 1) // wrong version
	_, err := NewRegion(buf)
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("got %v, want ErrVersionMismatch", err)
	}
}

func TestNewRegionRejectsShortBuffer(t *testing.T) {
	_, err := NewRegion(make([]byte, 4))
	if !errors.Is(err, ErrRegionTooSmall) {
		t.Fatalf("got %v, want ErrRegionTooSmall", err)
	}
}

func TestRebaseNullForPointerNotGreaterThanBase(t *testing.T) {
	buf := buildRegion(t, 1, 0)
	r, err := NewRegion(buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.rebaseOffset(testBase); ok {
		t.Fatal("pointer == base should not rebase")
	}
	if _, ok := r.rebaseOffset(testBase - 1); ok {
		t.Fatal("pointer < base should not rebase")
	}
	if _, ok := r.rebaseOffset(testBase + 48); !ok {
		t.Fatal("pointer > base should rebase")
	}
}

func TestInterfaceProjectsNamesAndCounters(t *testing.T) {
	buf := buildRegion(t, 1, 0)
	r, err := NewRegion(buf)
	if err != nil {
		t.Fatal(err)
	}
	ifaces, err := r.Interface()
	if err != nil {
		t.Fatal(err)
	}
	if len(ifaces) != 2 {
		t.Fatalf("got %d interfaces, want 2", len(ifaces))
	}
	if ifaces[0].Name != "eth0" || ifaces[0].Rx.Packets != 100 || ifaces[0].Tx.Bytes != 900 {
		t.Fatalf("eth0 record wrong: %+v", ifaces[0])
	}
	if ifaces[1].Name != "eth1" || ifaces[1].Rx.Bytes != 4000 || ifaces[1].Tx.Packets != 60 {
		t.Fatalf("eth1 record wrong: %+v", ifaces[1])
	}
}

func TestACLDefaultIndexingSkipsFirstElement(t *testing.T) {
	buf := buildRegion(t, 1, 0)
	r, err := NewRegion(buf)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := r.ACL()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Packets != 10 || rows[0].Bytes != 1000 {
		t.Fatalf("rule 0 should be the second raw slot, got %+v", rows[0])
	}
	if rows[2].Packets != 30 {
		t.Fatalf("rule 2 should be the fourth raw slot, got %+v", rows[2])
	}
}

func TestACLLegacyIndexingSkipsLastElement(t *testing.T) {
	buf := buildRegion(t, 1, 0)
	r, err := NewRegion(buf)
	if err != nil {
		t.Fatal(err)
	}
	r.LegacyIndexing = true
	rows, err := r.ACL()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Packets != 0xdead {
		t.Fatalf("legacy rule 0 should be the raw first slot, got %+v", rows[0])
	}
}

func TestWriteInterfaceCSV(t *testing.T) {
	counters := []InterfaceCounter{{Name: "eth0", Rx: CounterPair{Packets: 1, Bytes: 2}, Tx: CounterPair{Packets: 3, Bytes: 4}}}
	var buf bytes.Buffer
	if err := WriteInterfaceCSV(&buf, counters); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "eth0") || !strings.Contains(out, "rx_packets") {
		t.Fatalf("unexpected csv output: %q", out)
	}
}

func TestWriteACLCSV(t *testing.T) {
	counters := []ACLCounter{{ACL: "/acl0", Rule: 0, CounterPair: CounterPair{Packets: 10, Bytes: 1000}}}
	var buf bytes.Buffer
	if err := WriteACLCSV(&buf, counters); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "/acl0") {
		t.Fatalf("unexpected csv output: %q", buf.String())
	}
}
