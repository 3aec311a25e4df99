package stats

import (
	"encoding/binary"
	"strings"
)

// Directory entry type tags. The dataplane's actual enumeration carries
// more variants (scalar index, error counters, ...); only the ones the
// interface and ACL views project are named here.
const (
	dirTypeScalarIndex = 0
	dirTypeSimple      = 1
	dirTypeCombined    = 2
	dirTypeNameVector  = 3
)

// DirEntry is one row of the directory vector: a type tag, an 8-byte union
// (an index, a double value, or a pointer; callers interpret it per Type),
// and a fixed 128-byte name.
type DirEntry struct {
	Type uint32
	Raw  uint64
	Name string
}

// directory walks the top-level directory vector and returns every entry.
// The directory vector is resolved with a single rebase; unlike the
// per-view arrays it names, it is not a pointer-to-pointer.
func (r *Region) directory() ([]DirEntry, error) {
	off, count, ok := r.resolveVector(r.header.DirectoryVector)
	if !ok {
		return nil, ErrDirectoryEntryNotFound
	}
	entries := make([]DirEntry, 0, count)
	for i := 0; i < count; i++ {
		base := off + i*entrySize
		if base+entrySize > len(r.data) {
			break
		}
		typ := binary.LittleEndian.Uint32(r.data[base : base+4])
		raw := le64(r.data[base+8 : base+16])
		name := cString(r.data[base+16 : base+16+nameWidth])
		entries = append(entries, DirEntry{Type: typ, Raw: raw, Name: name})
	}
	return entries, nil
}

func findEntry(entries []DirEntry, name string) (DirEntry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return DirEntry{}, false
}

func aclEntries(entries []DirEntry) []DirEntry {
	var out []DirEntry
	for _, e := range entries {
		// "/if/rx" must be distinguished from "/if/rx-*" siblings; the ACL
		// prefix has no such sibling-name ambiguity, so a plain HasPrefix
		// is sufficient here.
		if strings.HasPrefix(e.Name, "/acl") {
			out = append(out, e)
		}
	}
	return out
}
